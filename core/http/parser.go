package http

import (
	"strconv"
)

// RequestParser turns one raw buffer into a Request
type RequestParser interface {
	Parse(raw []byte) (*Request, error)
}

// parsingState collects tokens while the scanner runs
type parsingState struct {
	request *Request
	field   string
	value   string
}

type validator func(req *Request) error

// Parser is a reusable, stateful request parser on top of Scanner.
// It is not safe for concurrent use; give each session its own.
type Parser struct {
	scanner    *Scanner
	state      parsingState
	validators []validator
}

// NewParser creates a parser with the default validation pipeline
func NewParser() *Parser {
	p := &Parser{
		validators: []validator{
			validatePath,
			validateVersion,
			validateHeaders,
			validateBody,
			validateContentLength,
			validateContentType,
		},
	}
	p.scanner = NewScanner(&ScannerCallbacks{
		OnMethod:              p.onMethod,
		OnURL:                 p.onURL,
		OnVersion:             p.onVersion,
		OnHeaderField:         p.onHeaderField,
		OnHeaderValue:         p.onHeaderValue,
		OnHeaderValueComplete: p.onHeaderValueComplete,
		OnBody:                p.onBody,
	})
	return p
}

// Parse parses raw into a fresh Request. Any failure is a *ParseError.
func (p *Parser) Parse(raw []byte) (*Request, error) {
	defer p.reset()

	if len(raw) == 0 {
		return nil, &ParseError{Err: ErrEmptyRequest}
	}

	p.state.request = NewRequest()
	if err := p.scanner.Execute(raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	req := p.state.request
	for _, validate := range p.validators {
		if err := validate(req); err != nil {
			return nil, &ParseError{Err: err}
		}
	}

	return req, nil
}

func (p *Parser) reset() {
	p.scanner.Reset()
	p.state = parsingState{}
}

// Scanner callbacks. Token slices alias the caller's buffer, so copy them.

func (p *Parser) onMethod(b []byte) error {
	p.state.request.Method = MethodFromString(string(b))
	return nil
}

func (p *Parser) onURL(b []byte) error {
	p.state.request.Path = string(b)
	return nil
}

func (p *Parser) onVersion(b []byte) error {
	p.state.request.Version = string(b)
	return nil
}

func (p *Parser) onHeaderField(b []byte) error {
	p.state.field = string(b)
	return nil
}

func (p *Parser) onHeaderValue(b []byte) error {
	p.state.value = string(b)
	return nil
}

func (p *Parser) onHeaderValueComplete() error {
	if p.state.field == "" || p.state.value == "" {
		return ErrInvalidHeader
	}
	p.state.request.SetHeader(p.state.field, p.state.value)
	p.state.field = ""
	p.state.value = ""
	return nil
}

func (p *Parser) onBody(b []byte) error {
	p.state.request.Body = append(p.state.request.Body[:0], b...)
	return nil
}

// Validators, run in order after a successful scan

func validatePath(req *Request) error {
	if req.Path == "" {
		return ErrEmptyPath
	}
	return nil
}

func validateVersion(req *Request) error {
	if req.Version == "" {
		return ErrEmptyVersion
	}
	return nil
}

func validateHeaders(req *Request) error {
	if len(req.Headers) == 0 {
		return ErrNoHeaders
	}
	return nil
}

func validateBody(req *Request) error {
	if req.Method != MethodGet && len(req.Body) == 0 {
		return ErrEmptyBody
	}
	return nil
}

func validateContentLength(req *Request) error {
	if req.Method == MethodGet || req.Method == MethodUnknown {
		return nil
	}
	v, ok := req.Header(HeaderContentLength)
	if !ok {
		return ErrContentLength
	}
	n, err := strconv.Atoi(v)
	if err != nil || n != len(req.Body) {
		return ErrContentLength
	}
	return nil
}

func validateContentType(req *Request) error {
	if req.Method == MethodGet || req.Method == MethodUnknown {
		return nil
	}
	if v, ok := req.Header(HeaderContentType); !ok || v != JSONContentType {
		return ErrContentType
	}
	return nil
}
