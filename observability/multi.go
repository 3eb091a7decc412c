package observability

import "context"

// MultiObserver 按顺序把事件广播给多个观察者
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver 创建广播观察者，nil和空操作观察者会被跳过
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if !IsNoOp(obs) {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
