package publishers

import "context"

// Publisher sends exchange events to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// sender delivers a single event to a queue-like backend.
type sender interface {
	Send(ctx context.Context, evt Event) error
}
