// Blocking operators for rxlite
// 阻塞操作：等待终止信号或上下文取消
package rxlite

import (
	"context"
	"sync"
)

// ============================================================================
// 阻塞操作符实现
// ============================================================================

// BlockingSubscribe 订阅并阻塞直到终止信号到达，返回终止错误。
// 上下文取消时释放订阅并返回ctx.Err()。
func (o Observable[T]) BlockingSubscribe(ctx context.Context, observer Observer[T]) error {
	if observer == nil {
		observer = NewObserver[T](nil, nil, nil)
	}

	done := make(chan struct{})
	var (
		once     sync.Once
		terminal error
	)
	finish := func(err error) {
		once.Do(func() {
			terminal = err
			close(done)
		})
	}

	subscription := o.Subscribe(NewObserver(
		observer.OnNext,
		func(err error) {
			observer.OnError(err)
			finish(err)
		},
		func() {
			observer.OnComplete()
			finish(nil)
		},
	))

	select {
	case <-done:
		return terminal
	case <-ctx.Done():
		subscription.Dispose()
		return ctx.Err()
	}
}

// ToSlice 收集所有值直到完成
func (o Observable[T]) ToSlice(ctx context.Context) ([]T, error) {
	var (
		mu     sync.Mutex
		values []T
	)
	err := o.BlockingSubscribe(ctx, NewObserver(func(value T) {
		mu.Lock()
		values = append(values, value)
		mu.Unlock()
	}, nil, nil))

	mu.Lock()
	defer mu.Unlock()
	return values, err
}
