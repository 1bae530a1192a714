package domain

import "errors"

var (
	ErrImageTypeNotSupported = errors.New("image type not supported")
	ErrImageTooLarge         = errors.New("image too large")
	ErrImageUnreachable      = errors.New("image unreachable")
)

// ImageInfo describes a probed remote image.
type ImageInfo struct {
	Link     string `json:"link"`
	MIMEType string `json:"mimeType"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
}
