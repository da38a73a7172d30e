package http

import (
	"bytes"
	"strconv"
)

// ScannerCallbacks are invoked by Scanner for every token it recognizes.
// A callback returning an error aborts the scan with that error.
type ScannerCallbacks struct {
	OnMethod              func(b []byte) error
	OnURL                 func(b []byte) error
	OnVersion             func(b []byte) error
	OnHeaderField         func(b []byte) error
	OnHeaderValue         func(b []byte) error
	OnHeaderValueComplete func() error
	OnBody                func(b []byte) error
}

type scanState uint8

const (
	stateStart scanState = iota
	stateRequestLine
	stateHeaders
	stateBody
	stateDone
)

var knownMethods = map[string]struct{}{
	"GET": {}, "HEAD": {}, "POST": {}, "PUT": {}, "DELETE": {},
	"CONNECT": {}, "OPTIONS": {}, "TRACE": {}, "PATCH": {},
}

var (
	contentLengthKey    = []byte(HeaderContentLength)
	transferEncodingKey = []byte(HeaderTransferEncoding)
	versionPrefix       = []byte("HTTP/")
)

// Scanner is a push-based HTTP/1.1 request tokenizer. It walks a single
// buffer and reports tokens through callbacks; input that ends early is not
// an error, the scanner reports what it has fully seen and stops.
type Scanner struct {
	cb    *ScannerCallbacks
	state scanState

	contentLength int
	hasLength     bool
}

// NewScanner creates a scanner bound to callbacks
func NewScanner(cb *ScannerCallbacks) *Scanner {
	if cb == nil {
		cb = &ScannerCallbacks{}
	}
	return &Scanner{cb: cb}
}

// Reset returns the scanner to its initial state
func (s *Scanner) Reset() {
	s.state = stateStart
	s.contentLength = 0
	s.hasLength = false
}

// Execute tokenizes data. The scanner must be Reset before it is reused.
func (s *Scanner) Execute(data []byte) error {
	if s.state != stateStart {
		return syntaxError("scanner used without reset")
	}

	// Tolerate empty lines before the request line
	for len(data) > 0 && (data[0] == '\r' || data[0] == '\n') {
		data = data[1:]
	}

	s.state = stateRequestLine
	rest, complete, err := s.requestLine(data)
	if err != nil || !complete {
		return err
	}

	s.state = stateHeaders
	rest, complete, err = s.headers(rest)
	if err != nil || !complete {
		return err
	}

	s.state = stateBody
	if err := s.body(rest); err != nil {
		return err
	}

	s.state = stateDone
	return nil
}

// requestLine parses METHOD SP TARGET SP HTTP/x.y
func (s *Scanner) requestLine(data []byte) (rest []byte, complete bool, err error) {
	line := data
	lineEnd := bytes.IndexByte(data, '\n')
	if lineEnd != -1 {
		line = trimCR(data[:lineEnd])
		rest = data[lineEnd+1:]
		complete = true
	}

	method, line, terminated := nextToken(line)
	if !terminated && !complete {
		return nil, false, nil
	}
	if _, ok := knownMethods[string(method)]; !ok {
		return nil, false, syntaxError("invalid method")
	}
	if err := call(s.cb.OnMethod, method); err != nil {
		return nil, false, err
	}

	target, line, terminated := nextToken(line)
	if !terminated && !complete {
		return nil, false, nil
	}
	if len(target) == 0 {
		return nil, false, syntaxError("invalid url")
	}
	if err := call(s.cb.OnURL, target); err != nil {
		return nil, false, err
	}

	if !complete {
		return nil, false, nil
	}

	version := bytes.TrimRight(skipSpaces(line), " \t")
	if !validVersion(version) {
		return nil, false, syntaxError("invalid version")
	}
	if err := call(s.cb.OnVersion, version[len(versionPrefix):]); err != nil {
		return nil, false, err
	}

	return rest, true, nil
}

// headers parses the header block up to and including the empty line
func (s *Scanner) headers(data []byte) (rest []byte, complete bool, err error) {
	for {
		lineEnd := bytes.IndexByte(data, '\n')
		if lineEnd == -1 {
			// Unterminated header lines are never reported
			return nil, false, nil
		}

		line := trimCR(data[:lineEnd])
		data = data[lineEnd+1:]

		if len(line) == 0 {
			return data, true, nil
		}

		colon := bytes.IndexByte(line, ':')
		if colon == -1 {
			return nil, false, syntaxError("header without colon")
		}

		field := line[:colon]
		if bytes.ContainsAny(field, " \t") {
			return nil, false, ErrInvalidHeader
		}
		value := bytes.TrimSpace(line[colon+1:])

		if err := s.inspect(field, value); err != nil {
			return nil, false, err
		}

		if err := call(s.cb.OnHeaderField, field); err != nil {
			return nil, false, err
		}
		if len(value) > 0 {
			if err := call(s.cb.OnHeaderValue, value); err != nil {
				return nil, false, err
			}
		}
		if s.cb.OnHeaderValueComplete != nil {
			if err := s.cb.OnHeaderValueComplete(); err != nil {
				return nil, false, err
			}
		}
	}
}

// inspect picks up the framing headers the scanner itself depends on
func (s *Scanner) inspect(field, value []byte) error {
	switch {
	case bytes.EqualFold(field, contentLengthKey):
		n, err := strconv.Atoi(string(value))
		if err != nil || n < 0 {
			return syntaxError("invalid content length")
		}
		s.contentLength = n
		s.hasLength = true
	case bytes.EqualFold(field, transferEncodingKey):
		return syntaxError("transfer encoding is not supported")
	}
	return nil
}

// body reports up to Content-Length bytes; anything past it is rejected
func (s *Scanner) body(data []byte) error {
	if !s.hasLength {
		if len(data) > 0 {
			return syntaxError("unexpected data after message")
		}
		return nil
	}

	n := s.contentLength
	if n > len(data) {
		n = len(data)
	}
	if len(data) > s.contentLength {
		return syntaxError("unexpected data after message")
	}
	if n == 0 {
		return nil
	}
	return call(s.cb.OnBody, data[:n])
}

func call(fn func([]byte) error, b []byte) error {
	if fn == nil {
		return nil
	}
	return fn(b)
}

// nextToken skips leading spaces and returns the token up to the next space.
// terminated reports whether a space followed the token.
func nextToken(line []byte) (token, rest []byte, terminated bool) {
	line = skipSpaces(line)
	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return line, nil, false
	}
	return line[:sp], line[sp+1:], true
}

func skipSpaces(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}

func trimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

// validVersion accepts HTTP/<digit>.<digit>
func validVersion(v []byte) bool {
	if len(v) != len(versionPrefix)+3 || !bytes.HasPrefix(v, versionPrefix) {
		return false
	}
	d := v[len(versionPrefix):]
	return isDigit(d[0]) && d[1] == '.' && isDigit(d[2])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
