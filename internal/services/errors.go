package services

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated covers missing, unknown and expired sessions. Handlers
// map it to 401; owner-scoped operations never degrade to anonymous.
var ErrUnauthenticated = errors.New("not authenticated")

// ValidationError is a client mistake, mapped to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamAuthError means the identity provider was unreachable or answered
// garbage; mapped to 500 and logged.
type UpstreamAuthError struct {
	Err error
}

func (e *UpstreamAuthError) Error() string {
	return "authentication service error: " + e.Err.Error()
}

func (e *UpstreamAuthError) Unwrap() error {
	return e.Err
}
