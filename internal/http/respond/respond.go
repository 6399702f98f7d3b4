package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, Envelope{Code: status, Message: message})
}

// ValidationError writes a 400 carrying per-field messages.
func ValidationError(w http.ResponseWriter, r *http.Request, fields []FieldError) {
	write(w, r, http.StatusBadRequest, Envelope{Code: http.StatusBadRequest, Message: "validation failed", Errors: fields})
}

func write(w http.ResponseWriter, r *http.Request, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("respond: encode payload failed")
	}
}
