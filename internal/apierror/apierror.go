// Package apierror defines the error envelopes returned by the HTTP API.
// Handlers never hand raw error strings to clients; everything goes out as
// one of these shapes so driver errors and stack traces stay server-side.
package apierror

// APIError carries a single human-readable detail line. It is the body of
// every plain 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists per-field failures keyed by struct field name, with
// the violated validator tag as the value.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
