package imagesvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/infra/logging"
)

// HTTPImageService implements ImageService by downloading card links over HTTP.
type HTTPImageService struct {
	client *http.Client
	cfg    ImageConfig
	log    logging.Logger
}

var _ ImageService = (*HTTPImageService)(nil)

// NewHTTPImageService creates a new HTTPImageService with the given configuration.
// If client is nil, a client honoring the configured timeout is used.
func NewHTTPImageService(cfg ImageConfig, client *http.Client) (*HTTPImageService, error) {
	if _, err := getInterpolatorByName(cfg.Interpolator); err != nil {
		return nil, fmt.Errorf("new image service: %w", err)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout} //nolint:exhaustruct
	}

	return &HTTPImageService{
		client: client,
		cfg:    cfg,
		log:    logging.GetLogger("svc.imagesvc.http_image_service"),
	}, nil
}

// MaxSize implements ImageService.MaxSize.
func (imageSvc *HTTPImageService) MaxSize() int64 {
	return imageSvc.cfg.MaxSize
}

// Probe implements ImageService.Probe.
func (imageSvc *HTTPImageService) Probe(ctx context.Context, link string) (info domain.ImageInfo, err error) {
	log := imageSvc.log.With(logging.Group("image", "link", link))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "image probe failed", "error", err)
		} else {
			log.DebugContext(ctx, "image probed", logging.Group("image",
				"type", info.MIMEType,
				"width", info.Width,
				"height", info.Height,
			))
		}
	}()

	data, mimeType, err := imageSvc.download(ctx, link)
	if err != nil {
		return domain.ImageInfo{}, err
	}

	decoder, err := getConfigDecoderByType(mimeType)
	if err != nil {
		return domain.ImageInfo{}, err
	}

	config, err := decoder(bytes.NewReader(data))
	if err != nil {
		return domain.ImageInfo{}, fmt.Errorf("%w: decode config: %w", domain.ErrImageTypeNotSupported, err)
	}

	return domain.ImageInfo{
		Link:     link,
		MIMEType: mimeType,
		Width:    config.Width,
		Height:   config.Height,
		Size:     int64(len(data)),
	}, nil
}

// Preview implements ImageService.Preview.
func (imageSvc *HTTPImageService) Preview(ctx context.Context, link string, width int) (preview []byte, err error) {
	log := imageSvc.log.With(logging.Group("image",
		"link", link,
		logging.Group("target", "width", width),
	))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "image preview failed", "error", err)
		} else {
			log.DebugContext(ctx, "image preview rendered", logging.Group("image", "size", len(preview)))
		}
	}()

	data, mimeType, err := imageSvc.download(ctx, link)
	if err != nil {
		return nil, err
	}

	preview, err = resizeImage(data, mimeType, width, imageSvc.cfg.Interpolator, imageSvc.cfg.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("resize image: %w", err)
	}

	return preview, nil
}

func (imageSvc *HTTPImageService) download(ctx context.Context, link string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: new request: %w", domain.ErrImageUnreachable, err)
	}

	resp, err := imageSvc.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", domain.ErrImageUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("%w: status %d", domain.ErrImageUnreachable, resp.StatusCode)
	}

	if resp.ContentLength > imageSvc.cfg.MaxSize {
		return nil, "", domain.ErrImageTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, imageSvc.cfg.MaxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %w", domain.ErrImageUnreachable, err)
	}

	if int64(len(data)) > imageSvc.cfg.MaxSize {
		return nil, "", domain.ErrImageTooLarge
	}

	mimeType, err := detectImageType(data)
	if err != nil {
		return nil, "", err
	}

	return data, mimeType, nil
}
