package rxtest

import (
	"context"
	"sync"

	"github.com/xinjiayu/rxlite/observability"
)

// EventRecorder is an observability.Observer that keeps every event.
//
// EventRecorder is safe under concurrent OnEvent calls.
type EventRecorder struct {
	events []observability.Event
	mu     sync.Mutex
}

// NewEventRecorder constructs an EventRecorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// OnEvent appends the event to the recorder.
func (r *EventRecorder) OnEvent(ctx context.Context, event observability.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Events returns a snapshot copy of recorded events.
func (r *EventRecorder) Events() []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]observability.Event, len(r.events))
	copy(cp, r.events)
	return cp
}

// OfType returns the recorded events with the given type.
func (r *EventRecorder) OfType(eventType observability.EventType) []observability.Event {
	var out []observability.Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the recorder.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
