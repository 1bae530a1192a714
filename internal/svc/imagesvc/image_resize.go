package imagesvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"

	"github.com/mkrupp/mesto/internal/domain"
)

var (
	// ErrUnknownInterpolator is returned when an unsupported interpolation method is specified.
	ErrUnknownInterpolator = errors.New("unknown interpolator")

	// ErrInvalidWidth is returned when a preview width is not positive.
	ErrInvalidWidth = errors.New("invalid width")

	// ErrInvalidDimensions is returned for images reporting an empty size.
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// resizeImage scales an image to the given width while maintaining aspect ratio
// and encodes the result as PNG. Neither the source nor the result may exceed
// maxPixels; zero disables the limit.
func resizeImage(data []byte, ctype string, width int, interpolator string, maxPixels int64) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, fmt.Errorf("get interpolator: %w", err)
	}

	config, err := decodeImageConfig(bytes.NewReader(data), ctype)
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}

	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, config.Width, config.Height)
	}

	height := max(1, float64(config.Height)*float64(width)/float64(config.Width))

	if maxPixels > 0 {
		if int64(config.Width)*int64(config.Height) > maxPixels {
			return nil, fmt.Errorf("%w: source %dx%d", domain.ErrImageTooLarge, config.Width, config.Height)
		}

		if float64(width)*height > float64(maxPixels) {
			return nil, fmt.Errorf("%w: preview %dx%.0f", domain.ErrImageTooLarge, width, height)
		}
	}

	original, err := decodeImage(bytes.NewReader(data), ctype)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bitmap := image.NewRGBA(image.Rect(0, 0, width, int(height)))
	interpol.Scale(bitmap, bitmap.Bounds(), original, original.Bounds(), draw.Over, nil)

	var buffer bytes.Buffer

	if err := png.Encode(&buffer, bitmap); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buffer.Bytes(), nil
}

func decodeImageConfig(reader io.Reader, ctype string) (image.Config, error) {
	decoder, err := getConfigDecoderByType(ctype)
	if err != nil {
		return image.Config{}, err
	}

	//nolint:wrapcheck
	return decoder(reader)
}

func decodeImage(reader io.Reader, ctype string) (image.Image, error) {
	decoder, err := getDecoderByType(ctype)
	if err != nil {
		return nil, err
	}

	//nolint:wrapcheck
	return decoder(reader)
}
