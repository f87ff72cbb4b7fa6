package fanout

import (
	"context"
	"time"

	"socialfeed/internal/core/fanout"
)

// Queue is the durable FIFO between write paths and the fan-out worker.
type Queue interface {
	Enqueue(ctx context.Context, event fanout.Event) error
	// Dequeue blocks up to timeout for the next serialized event and returns
	// (nil, nil) when none arrived.
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Producer is the write-path half of Queue.
type Producer interface {
	Enqueue(ctx context.Context, event fanout.Event) error
}
