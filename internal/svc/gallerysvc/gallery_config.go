package gallerysvc

// GalleryConfig holds validation limits of the gallery service.
type GalleryConfig struct {
	// MinTextLength and MaxTextLength bound names, abouts and card titles.
	MinTextLength int `env:"MIN_TEXT_LENGTH" default:"2"`
	MaxTextLength int `env:"MAX_TEXT_LENGTH" default:"30"`
}
