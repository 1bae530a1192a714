package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RescueingMiddleware recovers from panics in HTTP handlers, logs the panic
// with its stack trace and answers 500.
func RescueingMiddleware(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.ErrorContext(r.Context(), "request panic", slog.Group("http",
					"uri", r.RequestURI,
					"method", r.Method,
				), slog.Group("error",
					"panic", p,
					"stack", string(debug.Stack()),
				))
				WriteError(w, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
