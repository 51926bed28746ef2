package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-request-kit/internal/domain"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Event represents the payload published downstream for one exchange.
type Event struct {
	Source      string          `json:"source"`
	Exchange    domain.Exchange `json:"exchange"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEvent constructs an Event for an exchange observed by source.
func NewEvent(source string, ex domain.Exchange) Event {
	return Event{
		Source:      source,
		Exchange:    ex,
		PublishedAt: time.Now().UTC(),
	}
}

// Outcome is "failure" when the exchange failed and "success" otherwise.
func (e Event) Outcome() string {
	if e.Exchange.Failed() {
		return outcomeFailure
	}
	return outcomeSuccess
}

// attributes are the routing attributes attached to queue messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"exchange_id": e.Exchange.ID,
		"method":      e.Exchange.Method,
		"outcome":     e.Outcome(),
	}
	if e.Exchange.ErrorKind != "" {
		attrs["error_kind"] = e.Exchange.ErrorKind
	}
	for k, v := range attrs {
		if v == "" {
			delete(attrs, k)
		}
	}
	return attrs
}
