// Package rxtest provides recording observers and manually driven sources
// for testing code built on rxlite.
package rxtest

import (
	"sync"

	"github.com/xinjiayu/rxlite"
)

// Recorder records every signal it receives.
//
// Recorder is safe under concurrent delivery.
type Recorder[T any] struct {
	mu            sync.Mutex
	notifications []rxlite.Notification[T]
	done          chan struct{}
	closed        bool
}

// NewRecorder constructs a Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{done: make(chan struct{})}
}

func (r *Recorder[T]) OnNext(value T) {
	r.record(rxlite.NextNotification(value))
}

func (r *Recorder[T]) OnError(err error) {
	r.record(rxlite.ErrorNotification[T](err))
}

func (r *Recorder[T]) OnComplete() {
	r.record(rxlite.CompleteNotification[T]())
}

func (r *Recorder[T]) record(n rxlite.Notification[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, n)
	if n.IsTerminal() && !r.closed {
		r.closed = true
		close(r.done)
	}
}

// Done is closed when the first terminal signal is recorded.
func (r *Recorder[T]) Done() <-chan struct{} {
	return r.done
}

// Notifications returns a snapshot copy of everything recorded, in order.
func (r *Recorder[T]) Notifications() []rxlite.Notification[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]rxlite.Notification[T], len(r.notifications))
	copy(cp, r.notifications)
	return cp
}

// Values returns the recorded OnNext values in arrival order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.notifications))
	for _, n := range r.notifications {
		if n.Kind == rxlite.KindNext {
			out = append(out, n.Value)
		}
	}
	return out
}

// Errors returns every recorded error.
func (r *Recorder[T]) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []error
	for _, n := range r.notifications {
		if n.Kind == rxlite.KindError {
			out = append(out, n.Err)
		}
	}
	return out
}

// Err returns the first recorded error, or nil.
func (r *Recorder[T]) Err() error {
	if errs := r.Errors(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Completions counts recorded OnComplete calls.
func (r *Recorder[T]) Completions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.Kind == rxlite.KindComplete {
			count++
		}
	}
	return count
}

// Terminals counts recorded terminal signals of either kind.
func (r *Recorder[T]) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.IsTerminal() {
			count++
		}
	}
	return count
}
