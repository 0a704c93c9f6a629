package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Envelope is the uniform response shape: a success flag, the payload
// on success, and a short code+message on failure. Internal errors are
// never serialized.
type Envelope struct {
	Success bool        `json:"success"`
	Data    any         `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []FieldItem `json:"errors,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FieldItem is one request-validation failure. Input echoes the
// submitted value except for sensitive fields, which are redacted
// before the item is built.
type FieldItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Input   string `json:"input,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, Envelope{Success: true, Data: data})
}

// Success writes a data-free acknowledgement with a short message, the
// shape used by flows whose payload must not reveal anything.
func Success(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, Envelope{Success: true, Message: message})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	write(w, r, status, Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message}})
}

// ErrorWithData carries a payload alongside the error body, used by
// readiness responses to report per-dependency results.
func ErrorWithData(w http.ResponseWriter, r *http.Request, status int, code, message string, data any) {
	write(w, r, status, Envelope{Success: false, Data: data, Error: &ErrorBody{Code: code, Message: message}})
}

func ValidationError(w http.ResponseWriter, r *http.Request, items []FieldItem) {
	for i := range items {
		if IsSensitiveField(items[i].Field) {
			items[i].Input = ""
		}
	}
	write(w, r, http.StatusUnprocessableEntity, Envelope{Success: false, Errors: items})
}

// IsSensitiveField reports whether a field's value must never be
// echoed back in a validation response.
func IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "password") || strings.Contains(lower, "token")
}

func write(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.ErrorContext(r.Context(), "write response", "error", err)
	}
}
