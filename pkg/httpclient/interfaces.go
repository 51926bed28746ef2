package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// FilePart is one file attached to a multipart request.
type FilePart struct {
	Field    string
	FileName string
	Content  []byte
}

// Request describes a single outbound call. Body is sent as-is; a nil Body sends no payload.
// Multipart requests are encoded as multipart/form-data from FormFields and Files, and Body is ignored.
type Request struct {
	Method     string
	URL        string
	Headers    map[string]string
	Body       []byte
	Multipart  bool
	FormFields map[string]string
	Files      []FilePart
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Execute(ctx context.Context, req *Request) (Response, error)
}
