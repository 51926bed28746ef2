// Package apierror defines the failure kinds surfaced by the request handler.
//
// Every handler operation either returns a decoded payload or an *Error whose Kind tells the caller
// what went wrong. Callers branch on Kind (see KindOf and IsKind) rather than on concrete types.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind tags an Error with its failure category.
type Kind int

const (
	KindBase Kind = iota
	KindNetwork
	KindAuthentication
	KindServer
	KindBadRequest
)

const (
	DefaultNetworkMessage        = "Network Error"
	DefaultAuthenticationMessage = "Authentication Failed"
	DefaultServerMessage         = "Server Error"
	DefaultBadRequestMessage     = "Bad Request"
	DefaultUnknownMessage        = "Unknown Error"
)

// String returns the display name used in Error().
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "Network"
	case KindAuthentication:
		return "Authentication"
	case KindServer:
		return "Server"
	case KindBadRequest:
		return "BadRequest"
	default:
		return "Base"
	}
}

// Error is a failure record. StatusCode is 0 when the failure carries no HTTP status.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int

	// Cause is the underlying error, if any (transport failure, decode error).
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	code := "none"
	if e.StatusCode != 0 {
		code = strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (Status Code: %s)", e.Kind, e.Message, code)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a Base error with an arbitrary message and status code (0 for none).
func New(message string, statusCode int) *Error {
	return &Error{Kind: KindBase, Message: message, StatusCode: statusCode}
}

// Wrap builds a Base error that keeps cause for errors.Is/As.
func Wrap(message string, statusCode int, cause error) *Error {
	return &Error{Kind: KindBase, Message: message, StatusCode: statusCode, Cause: cause}
}

// Network builds a Network error. An empty message falls back to the default.
func Network(message string) *Error {
	return &Error{Kind: KindNetwork, Message: orDefault(message, DefaultNetworkMessage)}
}

// NetworkFrom wraps a transport failure, keeping its description as the message.
func NetworkFrom(cause error) *Error {
	e := Network("")
	if cause != nil {
		e.Message = cause.Error()
		e.Cause = cause
	}
	return e
}

// Authentication builds a 401 error.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: orDefault(message, DefaultAuthenticationMessage), StatusCode: http.StatusUnauthorized}
}

// Server builds a 500 error.
func Server(message string) *Error {
	return &Error{Kind: KindServer, Message: orDefault(message, DefaultServerMessage), StatusCode: http.StatusInternalServerError}
}

// BadRequest builds a 400 error.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: orDefault(message, DefaultBadRequestMessage), StatusCode: http.StatusBadRequest}
}

// FromStatus maps a non-success status code to its failure kind. An empty message selects the
// kind's default, or "Unknown Error" for codes without a dedicated kind.
func FromStatus(statusCode int, message string) *Error {
	switch statusCode {
	case http.StatusBadRequest:
		return BadRequest(message)
	case http.StatusUnauthorized:
		return Authentication(message)
	case http.StatusInternalServerError:
		return Server(message)
	default:
		return New(orDefault(message, DefaultUnknownMessage), statusCode)
	}
}

// As extracts *Error from err.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindBase when err is not an *Error.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindBase
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func orDefault(message, def string) string {
	if strings.TrimSpace(message) == "" {
		return def
	}
	return message
}
