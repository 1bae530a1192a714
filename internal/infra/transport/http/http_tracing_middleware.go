package http

import (
	"net/http"

	context_ "github.com/mkrupp/mesto/internal/infra/context"
)

const TraceIDHeader = "X-Request-ID"

// TracingMiddleware adds the X-Request-ID header value, or a new trace ID if
// absent, to the request context and echoes it in the response.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = context_.NewTraceID()
		}

		w.Header().Set(TraceIDHeader, traceID)

		next.ServeHTTP(w, r.WithContext(context_.WithTraceID(r.Context(), traceID)))
	})
}
