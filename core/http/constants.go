package http

// HTTP header constants
const (
	HeaderContentType      = "Content-Type"
	HeaderContentLength    = "Content-Length"
	HeaderConnection       = "Connection"
	HeaderTransferEncoding = "Transfer-Encoding"
)

const (
	// JSONContentType is the only accepted request media type
	JSONContentType = "application/json"

	// KeepAliveConnection is the exact Connection value that keeps a session open
	KeepAliveConnection = "Keep-Alive"

	// DefaultVersion is used when a request could not be parsed
	DefaultVersion = "1.1"

	emptyJSONObject = "{}"
)
