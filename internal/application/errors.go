package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session and none exists.
	ErrNotAuthenticated = errors.New("application: not authenticated")
	// ErrPermissionDenied is returned when the permission gate blocks an operation
	// before any request is made.
	ErrPermissionDenied = errors.New("application: permission denied")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrStaleResult is returned when a newer load superseded the one that produced a result.
	ErrStaleResult = errors.New("application: result superseded by a newer load")
	// ErrConnectionFailed is returned when the domain does not answer like a booking backend.
	ErrConnectionFailed = errors.New("application: connection check failed")
	// ErrInvalidCredentials is returned when the server rejects a login.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrNoStaffProfile is returned when an operation needs the signed-in staff member's id.
	ErrNoStaffProfile = errors.New("application: no cached staff profile")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Fields returns the offending field names in sorted order.
func (v *ValidationError) Fields() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Summary renders "field: message" pairs on one line.
func (v *ValidationError) Summary() string {
	parts := make([]string, 0, len(v.Fields()))
	for _, field := range v.Fields() {
		parts = append(parts, field+": "+v.FieldErrors[field])
	}
	return strings.Join(parts, "; ")
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
