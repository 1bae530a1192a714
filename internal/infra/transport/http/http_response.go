package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)

	//nolint:wrapcheck
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorResponse carrying the status text.
func WriteError(w http.ResponseWriter, status int) {
	_ = WriteJSON(w, status, ErrorResponse{Message: http.StatusText(status)})
}
