package domain

// StatusIcon selects the icon of the info tooltip.
type StatusIcon int

const (
	StatusSuccess StatusIcon = iota + 1
	StatusFailure
)

// String returns the icon name.
func (icon StatusIcon) String() string {
	switch icon {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "none"
	}
}

const (
	MessageRegistered    = "You have successfully registered!"
	MessageSomethingWent = "Something went wrong! Please try again."
)

// StatusMessage is the content of the single info tooltip.
// A new message overwrites the previous one.
type StatusMessage struct {
	Icon StatusIcon
	Text string
}

// IsZero reports whether no message is set.
func (m StatusMessage) IsZero() bool {
	return m.Icon == 0 && m.Text == ""
}

// SuccessMessage builds a success StatusMessage.
func SuccessMessage(text string) StatusMessage {
	return StatusMessage{Icon: StatusSuccess, Text: text}
}

// FailureMessage builds a failure StatusMessage.
func FailureMessage(text string) StatusMessage {
	return StatusMessage{Icon: StatusFailure, Text: text}
}
