package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoChoices is returned when a successful response carries no completion
// or its first choice has no content.
var ErrNoChoices = errors.New("no response from API")

// APIError is the error object a provider embeds in a response payload.
type APIError struct {
	Message string `json:"message"`
	// Code is a number or a string depending on the upstream model host.
	Code any `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return "API Error: " + msg
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func newStatusError(status int, raw []byte) *StatusError {
	body := strings.TrimSpace(string(raw))

	var payload struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != nil && payload.Error.Message != "" {
		body = payload.Error.Message
	}
	return &StatusError{StatusCode: status, Body: body}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// Category groups failures into the kinds a user can act on.
type Category int

const (
	Unknown Category = iota
	InvalidCredential
	AccessForbidden
	ModelNotFound
	RateLimited
	ServiceUnavailable
	MalformedResponse
)

func (c Category) String() string {
	switch c {
	case InvalidCredential:
		return "invalid_credential"
	case AccessForbidden:
		return "access_forbidden"
	case ModelNotFound:
		return "model_not_found"
	case RateLimited:
		return "rate_limited"
	case ServiceUnavailable:
		return "service_unavailable"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is a normalized chat failure with a user-facing message.
type Error struct {
	Category   Category
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Normalize maps a dispatch failure to a Category and a fixed explanation.
// A recognized HTTP status always wins over the upstream message; otherwise
// the upstream message is kept verbatim. It returns nil for a nil error.
func Normalize(err error, model string) *Error {
	if err == nil {
		return nil
	}

	var normalized *Error
	if errors.As(err, &normalized) {
		return normalized
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fromStatus(err, statusErr.StatusCode, model)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrNoChoices) {
		return &Error{Category: MalformedResponse, Message: err.Error(), Err: err}
	}

	return &Error{Category: Unknown, Message: err.Error(), Err: err}
}

func fromStatus(err error, status int, model string) *Error {
	e := &Error{StatusCode: status, Err: err}

	switch {
	case status == http.StatusUnauthorized:
		e.Category = InvalidCredential
		e.Message = "Invalid API key. Please check your OpenRouter API key in settings."
	case status == http.StatusForbidden:
		e.Category = AccessForbidden
		e.Message = "Access forbidden. Please verify your OpenRouter API key has proper permissions."
	case status == http.StatusNotFound:
		e.Category = ModelNotFound
		e.Message = fmt.Sprintf("Model '%s' not found. Check the model name at https://openrouter.ai/models", model)
	case status == http.StatusTooManyRequests:
		e.Category = RateLimited
		e.Message = "Rate limit exceeded. Please try again later."
	case status >= 500 && status <= 599:
		e.Category = ServiceUnavailable
		e.Message = "OpenRouter service error. Please try again later."
	case status >= 400 && status <= 499:
		e.Category = Unknown
		e.Message = "Unable to connect to OpenRouter.\n\nEnsure you have:\n- A valid OpenRouter API key\n- Credits in your OpenRouter account\n- The correct model name"
	default:
		e.Category = Unknown
		e.Message = err.Error()
	}
	return e
}
