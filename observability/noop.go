package observability

import "context"

// NoOpObserver 空操作观察者，丢弃所有事件
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
