package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouteRegistrar is a transport that registers its endpoints on a shared router.
type RouteRegistrar interface {
	Routes(router *mux.Router)
}

// NewRouter registers the endpoints of all transports on one router.
// Unknown paths and methods are answered with a JSON error.
func NewRouter(transports ...RouteRegistrar) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed)
	})

	for _, transport := range transports {
		transport.Routes(router)
	}

	return router
}
