package http

// Serializer turns an Envelope into wire bytes
type Serializer interface {
	Serialize(env Envelope) []byte
}

// JSONSerializer writes JSON responses with a computed Content-Length
type JSONSerializer struct{}

// NewJSONSerializer creates the default serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize renders status line, fixed headers, extra headers and body
func (JSONSerializer) Serialize(env Envelope) []byte {
	body := env.Response.Message
	if body == "" {
		body = emptyJSONObject
	}

	size := 96 + len(env.Version) + len(body)
	for _, h := range env.Response.Headers {
		size += len(h.Name) + len(h.Value) + 4
	}

	buf := make([]byte, 0, size)
	buf = append(buf, "HTTP/"...)
	buf = append(buf, env.Version...)
	buf = append(buf, ' ')
	buf = appendInt(buf, int(env.Response.Code))
	buf = append(buf, ' ')
	buf = append(buf, env.Response.Code.Name()...)
	buf = append(buf, "\r\nContent-Type: "...)
	buf = append(buf, JSONContentType...)
	buf = append(buf, "\r\nContent-Length: "...)
	buf = appendInt(buf, len(body))
	buf = append(buf, "\r\n"...)

	for _, h := range env.Response.Headers {
		buf = append(buf, h.Name...)
		buf = append(buf, ": "...)
		buf = append(buf, h.Value...)
		buf = append(buf, "\r\n"...)
	}

	buf = append(buf, "\r\n"...)
	buf = append(buf, body...)
	return buf
}

// appendInt appends an integer to a byte slice
func appendInt(b []byte, i int) []byte {
	if i == 0 {
		return append(b, '0')
	}

	if i < 0 {
		b = append(b, '-')
		i = -i
	}

	var digits [20]byte
	n := 0
	for i > 0 {
		digits[n] = byte('0' + i%10)
		i /= 10
		n++
	}

	for n > 0 {
		n--
		b = append(b, digits[n])
	}

	return b
}
