package imagesvc

import "time"

// ImageConfig holds configuration parameters for the image service.
type ImageConfig struct {
	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`

	// MaxSize is the maximum image size in bytes. Default is 10MB.
	MaxSize int64 `env:"MAX_SIZE" default:"10485760"`

	// MaxPixels bounds the decoded source and the rendered preview in pixels.
	// Zero disables the limit. Default is 25 megapixels.
	MaxPixels int64 `env:"MAX_PIXELS" default:"25000000"`

	// Timeout bounds a single image download. Zero means no timeout.
	Timeout time.Duration `env:"TIMEOUT" default:"30s"`
}
