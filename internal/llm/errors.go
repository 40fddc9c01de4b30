package llm

import (
	"encoding/json"
	"fmt"
)

// ErrorKind is the closed set of failure categories the client reports.
type ErrorKind string

const (
	KindConfig            ErrorKind = "config"
	KindValidation        ErrorKind = "validation"
	KindAuth              ErrorKind = "auth"
	KindRateLimit         ErrorKind = "rate_limit"
	KindModelUnavailable  ErrorKind = "model_unavailable"
	KindServer            ErrorKind = "server"
	KindResponseStructure ErrorKind = "response_structure"
	KindAPI               ErrorKind = "api"
)

// Error is the single error type returned by the client. Status is zero when
// the failure was not tied to an HTTP response. Payload carries the raw API
// error body when one was readable; RawContent carries the model output that
// failed structured-output validation.
type Error struct {
	Kind       ErrorKind
	Message    string
	Status     int
	Payload    json.RawMessage
	RawContent string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("llm: %s: %s", e.Kind, e.Message)
}

// classifyStatus maps a non-2xx final response to a typed error. The API's
// own error message is used when the body parses as the standard error
// envelope; a malformed body falls back to a status-derived message.
func classifyStatus(status int, body []byte) *Error {
	message := fmt.Sprintf("chat completion request failed with status %d", status)

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	var payload json.RawMessage
	if json.Unmarshal(body, &envelope) == nil {
		payload = json.RawMessage(body)
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
	}

	kind := KindAPI
	switch {
	case status == 400:
		kind = KindValidation
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 404:
		kind = KindModelUnavailable
	case status == 429:
		kind = KindRateLimit
	case status == 500 || status == 502 || status == 503:
		kind = KindServer
	}

	return &Error{Kind: kind, Message: message, Status: status, Payload: payload}
}
