package rxtest

import (
	"sync"

	"github.com/xinjiayu/rxlite"
)

// Manual is a source whose emitters are driven by the test after
// subscription. Each subscription's emitter is captured in order.
type Manual[T any] struct {
	mu       sync.Mutex
	emitters []rxlite.Emitter[T]
}

// NewManual constructs a Manual source.
func NewManual[T any]() *Manual[T] {
	return &Manual[T]{}
}

// Observable returns a cold Observable that captures the emitter of
// every subscription and emits nothing by itself.
func (m *Manual[T]) Observable(options ...rxlite.Option) rxlite.Observable[T] {
	return rxlite.Create(func(emitter rxlite.Emitter[T]) error {
		m.mu.Lock()
		m.emitters = append(m.emitters, emitter)
		m.mu.Unlock()
		return nil
	}, options...)
}

// Emitter returns the emitter of the i-th subscription.
func (m *Manual[T]) Emitter(i int) rxlite.Emitter[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emitters[i]
}

// Subscriptions counts how many times the source was subscribed.
func (m *Manual[T]) Subscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emitters)
}
