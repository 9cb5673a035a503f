package queue

import "context"

// Job handles messages of a single type pulled off the queue.
type Job interface {
	// Name is a human-readable identifier used in logs.
	Name() string
	// Type is the message type this job consumes.
	Type() string
	// Handle processes one message payload. Returning an error schedules
	// a retry until the retry limit is reached.
	Handle(ctx context.Context, payload interface{}) error
}
