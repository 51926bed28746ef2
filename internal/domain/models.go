package domain

import "time"

// Exchange is the record of one request/response pair issued through the handler.
type Exchange struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// Failed reports whether the exchange ended in a failure.
func (e Exchange) Failed() bool { return e.Error != "" }
