package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork matches failures where no response was received.
	ErrNetwork = errors.New("network failure")
	// ErrHTTPStatus matches failures where the backend answered with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrLogical matches 2xx responses that lack an expected field.
	ErrLogical = errors.New("logical failure")
)

// FailureKind classifies an APIError.
type FailureKind int

const (
	FailureNetwork FailureKind = iota + 1
	FailureProtocol
	FailureLogical
)

// String returns the kind name.
func (kind FailureKind) String() string {
	switch kind {
	case FailureNetwork:
		return "network"
	case FailureProtocol:
		return "protocol"
	case FailureLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// APIError is the failure half of every call crossing the client/network boundary.
type APIError struct {
	Kind   FailureKind
	Op     string // e.g. "POST /signin"
	Status int    // HTTP status, set for FailureProtocol
	Err    error  // underlying cause, may be nil
}

// NewNetworkError wraps a transport error.
func NewNetworkError(op string, err error) *APIError {
	return &APIError{Kind: FailureNetwork, Op: op, Err: err}
}

// NewStatusError reports a non-2xx response.
func NewStatusError(op string, status int) *APIError {
	return &APIError{Kind: FailureProtocol, Op: op, Status: status}
}

// NewLogicalError reports a 2xx response missing an expected field.
func NewLogicalError(op string, err error) *APIError {
	return &APIError{Kind: FailureLogical, Op: op, Err: err}
}

func (e *APIError) Error() string {
	switch e.Kind {
	case FailureProtocol:
		return fmt.Sprintf("%s: status %d %s", e.Op, e.Status, http.StatusText(e.Status))
	default:
		if e.Err == nil {
			return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
		}

		return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels ErrNetwork, ErrHTTPStatus and ErrLogical.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FailureNetwork
	case ErrHTTPStatus:
		return e.Kind == FailureProtocol
	case ErrLogical:
		return e.Kind == FailureLogical
	default:
		return false
	}
}

// StatusCode extracts the HTTP status of a protocol failure anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != FailureProtocol {
		return 0, false
	}

	return apiErr.Status, true
}

// IsUnauthorized reports whether err is a 401 or 403 protocol failure.
func IsUnauthorized(err error) bool {
	status, ok := StatusCode(err)

	return ok && (status == http.StatusUnauthorized || status == http.StatusForbidden)
}
