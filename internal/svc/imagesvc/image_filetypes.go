package imagesvc

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/mkrupp/mesto/internal/domain"
)

const (
	MIMETypeJPEG = "image/jpeg"
	MIMETypePNG  = "image/png"
	MIMETypeGIF  = "image/gif"
	MIMETypeTIFF = "image/tiff"
	MIMETypeBMP  = "image/bmp"
	MIMETypeWEBP = "image/webp"
)

// webp files start with "RIFF", four size bytes and "WEBP".
const (
	riffHeader = "RIFF"
	webpMarker = "WEBP"
	webpOffset = 8
)

//nolint:gochecknoglobals
var (
	imageHeaders = map[string][]string{
		MIMETypeJPEG: {"\xFF\xD8"},
		MIMETypePNG:  {"\x89\x50\x4E\x47\x0D\x0A\x1A\x0A"},
		MIMETypeGIF:  {"GIF87a", "GIF89a"},
		MIMETypeTIFF: {"\x49\x49\x2A\x00", "\x4D\x4D\x00\x2A"},
		MIMETypeBMP:  {"BM"},
	}

	imageDecoders = map[string]func(io.Reader) (image.Image, error){
		MIMETypeJPEG: jpeg.Decode,
		MIMETypePNG:  png.Decode,
		MIMETypeGIF:  gif.Decode,
		MIMETypeTIFF: tiff.Decode,
		MIMETypeBMP:  bmp.Decode,
		MIMETypeWEBP: webp.Decode,
	}

	imageConfigDecoders = map[string]func(io.Reader) (image.Config, error){
		MIMETypeJPEG: jpeg.DecodeConfig,
		MIMETypePNG:  png.DecodeConfig,
		MIMETypeGIF:  gif.DecodeConfig,
		MIMETypeTIFF: tiff.DecodeConfig,
		MIMETypeBMP:  bmp.DecodeConfig,
		MIMETypeWEBP: webp.DecodeConfig,
	}
)

// detectImageType returns the MIME type of data based on its magic header.
func detectImageType(data []byte) (string, error) {
	for mimeType, headers := range imageHeaders {
		for _, header := range headers {
			if bytes.HasPrefix(data, []byte(header)) {
				return mimeType, nil
			}
		}
	}

	if bytes.HasPrefix(data, []byte(riffHeader)) &&
		len(data) >= webpOffset+len(webpMarker) &&
		string(data[webpOffset:webpOffset+len(webpMarker)]) == webpMarker {
		return MIMETypeWEBP, nil
	}

	return "", domain.ErrImageTypeNotSupported
}

func getDecoderByType(mimeType string) (func(io.Reader) (image.Image, error), error) {
	decoder, ok := imageDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return decoder, nil
}

func getConfigDecoderByType(mimeType string) (func(io.Reader) (image.Config, error), error) {
	decoder, ok := imageConfigDecoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrImageTypeNotSupported, mimeType)
	}

	return decoder, nil
}
