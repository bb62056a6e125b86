package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call once, at the client boundary.
type Kind string

const (
	KindTransport    Kind = "transport"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindServer       Kind = "server"
	KindDecode       Kind = "decode"
)

// Error is returned by every Client call that does not succeed. Error()
// renders the server message, or "HTTP <status>" when the body had none.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsUnauthorized reports whether err means the bearer token was rejected.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// The plugin answers some rejected tokens with a non-401 status but this
// message, so it is matched here and nowhere else.
const expiredTokenMessage = "invalid or expired token"

func classifyStatus(status int, message string) Kind {
	if status == http.StatusUnauthorized || strings.Contains(strings.ToLower(message), expiredTokenMessage) {
		return KindUnauthorized
	}
	switch {
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}
