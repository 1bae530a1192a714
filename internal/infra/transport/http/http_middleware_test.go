package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/mesto/internal/domain"
	context_ "github.com/mkrupp/mesto/internal/infra/context"
	"github.com/mkrupp/mesto/internal/infra/logging"
	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
)

type stubValidator map[string]domain.UserID

func (v stubValidator) ValidateToken(_ context.Context, token string) (domain.AuthToken, error) {
	userID, ok := v[token]
	if !ok {
		return domain.AuthToken{}, domain.ErrInvalidAuthToken
	}

	return domain.AuthToken{UserID: userID}, nil
}

func TestAuthorizingMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := context_.UserIDFromContext(r.Context())
		_, _ = w.Write([]byte(userID))
	})

	handler := http_.AuthorizingMiddleware(next, stubValidator{"good": "u1"}, logging.NewNopLogger())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantBody: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_TracesAndRescues(t *testing.T) {
	t.Parallel()

	handler := http_.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), logging.NewNopLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(http_.TraceIDHeader, "abc")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get(http_.TraceIDHeader))
	assert.JSONEq(t, `{"message":"Internal Server Error"}`, rec.Body.String())
}
