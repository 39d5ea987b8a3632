package fetcher

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL = errors.New("invalid collection url")
	ErrTransport  = errors.New("transport failure")
	ErrBadStatus  = errors.New("unexpected http status")
	ErrParse      = errors.New("parse failure")
)

// TransportError covers DNS, connection, TLS and mid-stream failures as well
// as context cancellation. No outcome accompanies it.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s", e.Message)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// StatusError reports a non-200 response. The body was still read.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: status code %d", e.Code)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// ParseError reports a body that is not valid JSON. The raw text stays on the outcome.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }
