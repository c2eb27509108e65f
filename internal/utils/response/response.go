// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may return any JSON shape (a record, a list, a
// process instance). Error responses always look like:
//
//	{ "status": "error", "error": "validation error", "errors": { "email": "..." } }
package response

import (
	"encoding/json"
	"net/http"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message used for every 500 so internals never reach the client.
const InternalErrorMessage = "internal server error"

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
// Header() must be set before WriteHeader(), and WriteHeader() before the body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
// Do not use it for server errors; see InternalError.
func GeneralError(err error) Response {
	return Message(err.Error())
}

// Message builds an error Response from a plain message.
func Message(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError builds an error Response carrying one message per
// failed field.
func ValidationError(fields map[string]string) Response {
	return Response{
		Status: StatusError,
		Error:  "validation error",
		Errors: fields,
	}
}

// InternalError is the generic 500 body.
func InternalError() Response {
	return Message(InternalErrorMessage)
}
