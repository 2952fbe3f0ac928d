// Package httpx provides JSON response utilities shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/folio-api/folio/internal/shared"
)

// Envelope is the response body shape used by every endpoint.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Pagination *shared.Pagination `json:"pagination,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends a success envelope wrapping data.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Page sends a success envelope with pagination metadata.
func Page(w http.ResponseWriter, status int, data any, p shared.Pagination) {
	JSON(w, status, Envelope{Success: true, Data: data, Pagination: &p})
}

// Fail sends a failure envelope with a single message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// FailFields sends a failure envelope carrying field-level validation messages.
func FailFields(w http.ResponseWriter, status int, message string, errs []string) {
	JSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
