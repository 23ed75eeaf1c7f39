package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error codes shared with API clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
)

type successEnvelope struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     errorBody `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) error {
	return writeJSON(w, status, successEnvelope{
		Success:  true,
		Data:     data,
		Metadata: map[string]any{"timestamp": time.Now().UTC()},
	})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	// the status line is already out; nothing useful to do with an encode error
	_ = writeJSON(w, status, errorEnvelope{
		Success:   false,
		Error:     errorBody{Message: message, Code: code, Details: details},
		Timestamp: time.Now().UTC(),
	})
}
