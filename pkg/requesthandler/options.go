package requesthandler

import (
	"github.com/samvad-hq/samvad-request-kit/pkg/httpclient"
)

// Option configures a Handler at construction.
type Option func(*Handler)

// WithToken sets the bearer token sent on every request. An empty token sends no Authorization header.
func WithToken(token string) Option {
	return func(h *Handler) { h.token = token }
}

// WithLogging toggles request/response logging. Logging is on by default.
func WithLogging(enabled bool) Option {
	return func(h *Handler) { h.logEnabled = enabled }
}

// WithClient injects the transport. Defaults to a resty-backed client without a timeout.
func WithClient(c httpclient.Client) Option {
	return func(h *Handler) {
		if c != nil {
			h.client = c
		}
	}
}

// WithLogger injects the logging sink. Defaults to the process-wide logger.
func WithLogger(l Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithAdditionalHeaders adds headers to every request. They never replace Content-Type, nor
// Authorization when a token is configured.
func WithAdditionalHeaders(headers map[string]string) Option {
	return func(h *Handler) {
		if len(headers) == 0 {
			return
		}
		if h.extraHeaders == nil {
			h.extraHeaders = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			h.extraHeaders[k] = v
		}
	}
}

// WithObserver registers a callback receiving a record of every exchange.
func WithObserver(o Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// WithNullBodyOnPost makes Post send a JSON null payload when body is nil, for servers that
// expect it. By default a nil body sends no payload, like Delete.
func WithNullBodyOnPost(enabled bool) Option {
	return func(h *Handler) { h.nullBodyOnPost = enabled }
}

// CallOption adjusts a single call.
type CallOption func(*callConfig)

type callConfig struct {
	baseURL string
}

// WithCustomBaseURL resolves the endpoint against baseURL instead of the configured one.
func WithCustomBaseURL(baseURL string) CallOption {
	return func(c *callConfig) { c.baseURL = baseURL }
}
