// Package requesthandler issues JSON requests against a base URL and turns responses into decoded
// payloads or apierror failures.
package requesthandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-request-kit/internal/domain"
	"github.com/samvad-hq/samvad-request-kit/internal/logger"
	"github.com/samvad-hq/samvad-request-kit/pkg/apierror"
	"github.com/samvad-hq/samvad-request-kit/pkg/httpclient"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json; charset=UTF-8"
)

// Logger is the logging surface the handler relies on.
type Logger interface {
	Info(msg string)
	Debug(msg string)
	Warning(msg string)
	Error(msg string, cause error, trace []uintptr)
}

// Observer receives a record of every exchange once it completes. It is called synchronously.
type Observer interface {
	ObserveExchange(ctx context.Context, ex domain.Exchange)
}

// Handler is immutable after New and safe for concurrent use when its transport is.
type Handler struct {
	baseURL        string
	token          string
	logEnabled     bool
	nullBodyOnPost bool
	client         httpclient.Client
	log            Logger
	extraHeaders   map[string]string
	observer       Observer
}

// New creates a Handler for baseURL, which must be an absolute URL.
func New(baseURL string, opts ...Option) (*Handler, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	h := &Handler{
		baseURL:    baseURL,
		logEnabled: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.client == nil {
		h.client = httpclient.NewRestyClient(0)
	}
	if !h.logEnabled {
		h.log = nopLogger{}
	} else if h.log == nil {
		h.log = logger.Default()
	}
	return h, nil
}

// BaseURL returns the configured base URL.
func (h *Handler) BaseURL() string { return h.baseURL }

// Get issues a GET for endpoint with query attached and returns the decoded body.
func (h *Handler) Get(ctx context.Context, endpoint string, query map[string]string) (any, error) {
	uri, err := resolveURL(h.baseURL, endpoint, query)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, h.newRequest(http.MethodGet, uri, nil), translateJSON)
}

// Post sends body as JSON and returns the decoded response body.
func (h *Handler) Post(ctx context.Context, endpoint string, body any, opts ...CallOption) (any, error) {
	uri, err := resolveURL(h.callBase(opts), endpoint, nil)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	if payload == nil && h.nullBodyOnPost {
		payload = []byte("null")
	}
	return h.execute(ctx, h.newRequest(http.MethodPost, uri, payload), translateJSON)
}

// Put sends body as JSON and returns the decoded response body. A body is required.
func (h *Handler) Put(ctx context.Context, endpoint string, body any) (any, error) {
	if body == nil {
		return nil, apierror.New("PUT requires a request body", 0)
	}
	uri, err := resolveURL(h.baseURL, endpoint, nil)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, h.newRequest(http.MethodPut, uri, payload), translateJSON)
}

// Delete issues a DELETE, sending body as JSON only when it is non-nil.
func (h *Handler) Delete(ctx context.Context, endpoint string, body any) (any, error) {
	uri, err := resolveURL(h.baseURL, endpoint, nil)
	if err != nil {
		return nil, err
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, h.newRequest(http.MethodDelete, uri, payload), translateJSON)
}

// DownloadFile issues a GET and returns the raw response bytes when the status is 200.
// body is accepted for call-site compatibility but GET carries no payload, so it is not sent.
func (h *Handler) DownloadFile(ctx context.Context, endpoint string, body any, opts ...CallOption) ([]byte, error) {
	uri, err := resolveURL(h.callBase(opts), endpoint, nil)
	if err != nil {
		return nil, err
	}
	if body != nil {
		h.log.Debug("Download body is not transmitted with GET " + uri)
	}
	out, err := h.execute(ctx, h.newRequest(http.MethodGet, uri, nil), translateDownload)
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (h *Handler) callBase(opts []CallOption) string {
	var cfg callConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if strings.TrimSpace(cfg.baseURL) != "" {
		return cfg.baseURL
	}
	return h.baseURL
}

func (h *Handler) newRequest(method, uri string, body []byte) *httpclient.Request {
	return &httpclient.Request{
		Method:  method,
		URL:     uri,
		Headers: h.headers(),
		Body:    body,
	}
}

// headers builds a fresh header set per call.
func (h *Handler) headers() map[string]string {
	out := make(map[string]string, len(h.extraHeaders)+2)
	for k, v := range h.extraHeaders {
		if strings.EqualFold(k, headerContentType) {
			continue
		}
		if h.token != "" && strings.EqualFold(k, headerAuthorization) {
			continue
		}
		out[k] = v
	}
	out[headerContentType] = contentTypeJSON
	if h.token != "" {
		out[headerAuthorization] = "Bearer " + h.token
	}
	return out
}

type translateFunc func(resp httpclient.Response) (any, error)

func (h *Handler) execute(ctx context.Context, req *httpclient.Request, translate translateFunc) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	h.logRequest(req)

	resp, err := h.client.Execute(ctx, req)
	if err != nil {
		h.log.Error(fmt.Sprintf("Request failed: %s %s", req.Method, req.URL), err, nil)
		failure := apierror.NetworkFrom(err)
		h.observe(ctx, req, 0, start, failure)
		return nil, failure
	}
	h.logResponse(req, resp)

	out, err := translate(resp)
	h.observe(ctx, req, resp.StatusCode(), start, err)
	return out, err
}

func (h *Handler) logRequest(req *httpclient.Request) {
	h.log.Info(fmt.Sprintf("Request: %s %s", req.Method, req.URL))
	if len(req.Body) > 0 {
		h.log.Debug("Request body: " + string(req.Body))
	}
	if req.Multipart {
		h.log.Debug(fmt.Sprintf("Request multipart: %d field(s), %d file(s)", len(req.FormFields), len(req.Files)))
	}
}

func (h *Handler) logResponse(req *httpclient.Request, resp httpclient.Response) {
	h.log.Info(fmt.Sprintf("Response: %d %s", resp.StatusCode(), req.URL))
	h.log.Debug("Response body: " + string(resp.Body()))
}

func (h *Handler) observe(ctx context.Context, req *httpclient.Request, status int, start time.Time, err error) {
	if h.observer == nil {
		return
	}
	ex := domain.Exchange{
		Method:     req.Method,
		URL:        req.URL,
		StatusCode: status,
		DurationMS: time.Since(start).Milliseconds(),
		StartedAt:  start.UTC(),
	}
	if id, idErr := uuid.NewV7(); idErr == nil {
		ex.ID = id.String()
	} else {
		ex.ID = uuid.NewString()
	}
	if err != nil {
		ex.ErrorKind = apierror.KindOf(err).String()
		ex.Error = err.Error()
	}
	h.observer.ObserveExchange(ctx, ex)
}

// resolveURL appends endpoint to base verbatim and attaches query.
func resolveURL(base, endpoint string, query map[string]string) (string, error) {
	raw := base + endpoint
	if len(query) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", apierror.Wrap("Invalid request URL", 0, err)
	}
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apierror.Wrap("Failed to encode request body", 0, err)
	}
	return payload, nil
}

type nopLogger struct{}

func (nopLogger) Info(string)                    {}
func (nopLogger) Debug(string)                   {}
func (nopLogger) Warning(string)                 {}
func (nopLogger) Error(string, error, []uintptr) {}
