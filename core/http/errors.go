package http

import (
	"github.com/pkg/errors"
)

// Error definitions
var (
	ErrEmptyRequest  = errors.New("empty request")
	ErrSyntax        = errors.New("invalid request syntax")
	ErrInvalidHeader = errors.New("invalid header token")

	ErrEmptyPath     = errors.New("empty request path")
	ErrEmptyVersion  = errors.New("empty protocol version")
	ErrNoHeaders     = errors.New("no headers")
	ErrEmptyBody     = errors.New("empty body")
	ErrContentLength = errors.New("content length mismatch")
	ErrContentType   = errors.New("unsupported content type")
)

// ParseError is returned by Parser.Parse for any rejected input
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse request: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func syntaxError(reason string) error {
	return errors.Wrap(ErrSyntax, reason)
}
