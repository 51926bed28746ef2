package httpclient

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the specified timeout. A zero timeout disables it.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// WrapResty adapts an already configured resty client.
func WrapResty(c *resty.Client) *RestyClient {
	if c == nil {
		c = resty.New()
	}
	return &RestyClient{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Execute sends req and returns the raw response. Non-2xx statuses are not errors here.
func (r *RestyClient) Execute(ctx context.Context, in *Request) (Response, error) {
	if in == nil {
		return nil, errors.New("nil request")
	}
	req := r.client.R().SetContext(ctx)
	if len(in.Headers) > 0 {
		req.SetHeaders(in.Headers)
	}

	switch {
	case in.Multipart && len(in.Files) == 0 && len(in.FormFields) == 0:
		// resty only switches to multipart once a part is added.
		w := multipart.NewWriter(&bytes.Buffer{})
		req.SetHeader("Content-Type", w.FormDataContentType()).
			SetBody([]byte("--" + w.Boundary() + "--\r\n"))
	case in.Multipart:
		for _, f := range in.Files {
			req.SetMultipartField(f.Field, f.FileName, "application/octet-stream", bytes.NewReader(f.Content))
		}
		for _, k := range sortedKeys(in.FormFields) {
			req.SetMultipartField(k, "", "", strings.NewReader(in.FormFields[k]))
		}
	case in.Body != nil:
		req.SetBody(in.Body)
	}

	resp, err := req.Execute(in.Method, in.URL)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
