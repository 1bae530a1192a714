package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkrupp/mesto/internal/domain"
	context_ "github.com/mkrupp/mesto/internal/infra/context"
	"github.com/mkrupp/mesto/internal/infra/logging"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	ContentTypeJSON     = "application/json"
)

// maxErrorBodySize bounds how much of a non-2xx body is read for diagnostics.
const maxErrorBodySize = 4096

// JSONClientConfig holds configuration for clients of the gallery REST API.
type JSONClientConfig struct {
	// BaseURL is the API root, without trailing slash
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`
	// Timeout bounds each request; zero means no timeout
	Timeout time.Duration `env:"TIMEOUT" default:"0s"`
}

// Request describes a single JSON API call.
type Request struct {
	Method string
	Path   string // Appended to the base URL
	Token  string // Bearer token; omitted from headers when empty
	Body   any    // JSON encoded when non-nil
}

// JSONClient performs JSON requests against the gallery API and classifies
// failures as domain.APIError values.
type JSONClient struct {
	httpClient *http.Client
	baseURL    string
	log        logging.Logger
}

// NewJSONClient creates a new JSONClient.
// If httpClient is nil, a client honoring cfg.Timeout is created.
func NewJSONClient(cfg JSONClientConfig, httpClient *http.Client, log logging.Logger) *JSONClient {
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	if log == nil {
		log = logging.GetLogger("infra.transport.http.json_client")
	}

	return &JSONClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        log,
	}
}

// BaseURL returns the API root the client talks to.
func (c *JSONClient) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes a 2xx JSON response into out (if non-nil).
// Transport errors yield a network failure, non-2xx statuses a protocol
// failure and undecodable 2xx bodies a logical failure.
func (c *JSONClient) Do(ctx context.Context, req Request, out any) (err error) {
	op := req.Method + " " + req.Path
	ctx, traceID := context_.EnsureTraceID(ctx)

	status := 0
	log := c.log.With(logging.Group("http", "method", req.Method, "path", req.Path))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "api request failed", "status", status, "error", err)
		} else {
			log.DebugContext(ctx, "api request done", "status", status)
		}
	}()

	var body io.Reader

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	httpReq.Header.Set("Accept", ContentTypeJSON)
	httpReq.Header.Set("Content-Type", ContentTypeJSON)
	httpReq.Header.Set(TraceIDHeader, traceID)

	if req.Token != "" {
		httpReq.Header.Set(AuthorizationHeader, BearerPrefix+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		log = log.With("body", strings.TrimSpace(string(detail)))

		return domain.NewStatusError(op, status)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return domain.NewLogicalError(op, fmt.Errorf("decode body: %w", err))
	}

	return nil
}
