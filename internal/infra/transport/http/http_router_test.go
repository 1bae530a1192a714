package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	http_ "github.com/mkrupp/mesto/internal/infra/transport/http"
)

type pingTransport struct{}

func (pingTransport) Routes(router *mux.Router) {
	router.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_ = http_.WriteJSON(w, http.StatusOK, http_.ErrorResponse{Message: "pong"})
	}).Methods(http.MethodGet)
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	router := http_.NewRouter(pingTransport{})

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/ping", http.StatusOK, `{"message":"pong"}`},
		{http.MethodPost, "/ping", http.StatusMethodNotAllowed, `{"message":"Method Not Allowed"}`},
		{http.MethodGet, "/nope", http.StatusNotFound, `{"message":"Not Found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, http_.ContentTypeJSON, rec.Header().Get("Content-Type"))
		})
	}
}
