// Package shared holds the JSON response helpers used by every handler so
// all endpoints speak the same envelope.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "civreg/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error to its HTTP status and writes the error
// envelope. Unknown errors become 500 without leaking details.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Error: string(dErrors.CodeInternal),
		})
		return
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorBody{
		Error:   string(de.Code),
		Message: de.Message,
	})
}
