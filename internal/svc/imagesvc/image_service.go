package imagesvc

import (
	"context"

	"github.com/mkrupp/mesto/internal/domain"
)

// ImageService inspects images referenced by card links.
type ImageService interface {
	// Probe downloads the image behind link and decodes its header.
	// Returns domain.ErrImageTypeNotSupported if no registered decoder recognizes it,
	// domain.ErrImageTooLarge if it exceeds MaxSize and domain.ErrImageUnreachable
	// if it cannot be fetched.
	Probe(ctx context.Context, link string) (domain.ImageInfo, error)

	// Preview downloads the image behind link and returns it scaled to width,
	// maintaining aspect ratio, encoded as PNG.
	Preview(ctx context.Context, link string, width int) ([]byte, error)

	// MaxSize returns the maximum number of bytes read from a link.
	MaxSize() int64
}
