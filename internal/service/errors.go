package service

import "net/http"

// Error is a service-level failure with an HTTP status the API layer can
// surface directly. Services reject invalid requests before any mutation,
// so a 4xx Error always means no state changed.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// BadRequest builds a 400 validation error.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound builds a 404 error for a missing referenced record.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict builds a 409 error.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Unauthorized builds a 401 error.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}
