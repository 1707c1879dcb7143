package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrUnknown is an unknown error.
	ErrUnknown ErrorCode = iota
	// ErrNoAPIKey is returned when the client has no API key configured.
	ErrNoAPIKey
	// ErrInvalidArgument is returned when an argument fails client-side validation.
	ErrInvalidArgument
	// ErrFileNotFound is returned when a code file cannot be read.
	ErrFileNotFound
	// ErrPreCheck is returned when the access level or language is not accepted by the API.
	ErrPreCheck
	// ErrTransport is returned for network failures and timeouts.
	ErrTransport
	// ErrBadRequest is returned for HTTP 400.
	ErrBadRequest
	// ErrUnauthorized is returned for HTTP 401.
	ErrUnauthorized
	// ErrMissingParameter is returned for HTTP 406.
	ErrMissingParameter
	// ErrIncorrectParameter is returned for HTTP 407.
	ErrIncorrectParameter
	// ErrStatus is returned for any other non-200 status.
	ErrStatus
	// ErrDecode is returned when the response body is not the expected JSON.
	ErrDecode
	// ErrRejected is returned when the envelope reports success=false.
	ErrRejected
)

// statusCodes holds the HTTP statuses the API is documented to answer with.
var statusCodes = map[int]struct {
	code    ErrorCode
	message string
}{
	http.StatusBadRequest:        {ErrBadRequest, "Bad request"},
	http.StatusUnauthorized:      {ErrUnauthorized, "Unauthorized"},
	http.StatusNotAcceptable:     {ErrMissingParameter, "Missing parameter"},
	http.StatusProxyAuthRequired: {ErrIncorrectParameter, "Incorrect parameter value"},
}

func statusError(status int) *Error {
	if known, ok := statusCodes[status]; ok {
		return &Error{Code: known.code, Status: status, Message: known.message}
	}
	return &Error{Code: ErrStatus, Status: status, Message: fmt.Sprintf("unexpected status %d", status)}
}

// Error represents an error from the CodeDump client.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("codedump: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode carried by err, or ErrUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// IsNoAPIKey returns true if the error indicates a missing API key.
func IsNoAPIKey(err error) bool {
	return CodeOf(err) == ErrNoAPIKey
}

// IsUnauthorized returns true if the API refused the credentials.
func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrUnauthorized
}

// IsRejected returns true if the API answered with success=false.
func IsRejected(err error) bool {
	return CodeOf(err) == ErrRejected
}

// IsFileNotFound returns true if a code file could not be loaded.
func IsFileNotFound(err error) bool {
	return CodeOf(err) == ErrFileNotFound
}

// IsInvalidArgument returns true if an argument failed validation.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == ErrInvalidArgument
}

// IsPreCheck returns true if the pre-check refused the access level or language.
func IsPreCheck(err error) bool {
	return CodeOf(err) == ErrPreCheck
}
