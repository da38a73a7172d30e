package http

// Method is the request method as far as routing cares about it
type Method uint8

const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
)

// MethodFromString maps a request-line token to a Method
func MethodFromString(s string) Method {
	switch s {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	default:
		return MethodUnknown
	}
}

// String returns the wire token of the method
func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// Request is a parsed HTTP request
type Request struct {
	Method  Method
	Path    string
	Version string

	// Last write wins on duplicated fields
	Headers map[string]string

	// Path parameters, filled by the router only
	Params map[string]string

	Body []byte
}

// NewRequest creates an empty request with initialized maps
func NewRequest() *Request {
	return &Request{
		Headers: make(map[string]string, 8),
		Params:  make(map[string]string, 2),
	}
}

// Header gets a request header
func (r *Request) Header(key string) (string, bool) {
	v, ok := r.Headers[key]
	return v, ok
}

// SetHeader sets a header, replacing an existing value
func (r *Request) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string, 8)
	}
	r.Headers[key] = value
}

// Param gets a path parameter
func (r *Request) Param(key string) (string, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// SetParam sets a path parameter
func (r *Request) SetParam(key, value string) {
	if r.Params == nil {
		r.Params = make(map[string]string, 2)
	}
	r.Params[key] = value
}

// KeepAlive reports whether the client asked to keep the connection open
func (r *Request) KeepAlive() bool {
	v, ok := r.Headers[HeaderConnection]
	return ok && v == KeepAliveConnection
}
