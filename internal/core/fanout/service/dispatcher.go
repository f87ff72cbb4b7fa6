package fanoutapp

import (
	"context"

	"socialfeed/internal/core/fanout"
)

// Handler applies one decoded event to the timeline caches.
type Handler func(ctx context.Context, event fanout.Event) error

// Dispatcher routes raw queue payloads to the handler registered for their kind.
type Dispatcher struct {
	handlers map[fanout.Kind]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[fanout.Kind]Handler)}
}

// Register must be called before the dispatcher is shared between goroutines.
func (d *Dispatcher) Register(kind fanout.Kind, h Handler) {
	d.handlers[kind] = h
}

// Dispatch decodes raw and runs its handler. The decoded event is returned
// whenever decoding succeeded, even if handling failed, so callers can log it.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) (fanout.Event, error) {
	event, err := fanout.Unmarshal(raw)
	if err != nil {
		return fanout.Event{}, err
	}
	if err := event.Validate(); err != nil {
		return event, err
	}

	h, ok := d.handlers[event.Kind]
	if !ok {
		return event, fanout.ErrUnknownKind.New("%q", event.Kind)
	}
	if err := h(ctx, event); err != nil {
		if fanout.ErrProcessing.Has(err) {
			return event, err
		}
		return event, fanout.ErrProcessing.Wrap(err)
	}
	return event, nil
}
