// Factory functions for rxlite
// 工厂函数：同步数据源在发射器报告已释放后立即停止
package rxlite

import "context"

// ============================================================================
// 基础工厂函数
// ============================================================================

// Just 依次发射给定的值然后完成
func Just[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// Empty 创建一个空的Observable，立即完成
func Empty[T any](options ...Option) Observable[T] {
	return Create(func(emitter Emitter[T]) error {
		emitter.OnComplete()
		return nil
	}, options...)
}

// Never 创建一个永不发射任何信号的Observable
func Never[T any](options ...Option) Observable[T] {
	return Create(func(emitter Emitter[T]) error {
		return nil
	}, options...)
}

// Error 创建一个立即发射错误的Observable
func Error[T any](err error, options ...Option) Observable[T] {
	return Create(func(emitter Emitter[T]) error {
		return err
	}, options...)
}

// Range 发射 start, start+1, ..., start+count-1
func Range(start, count int, options ...Option) Observable[int] {
	return Create(func(emitter Emitter[int]) error {
		for i := 0; i < count; i++ {
			if emitter.IsDisposed() {
				return nil
			}
			emitter.OnNext(start + i)
		}
		emitter.OnComplete()
		return nil
	}, options...)
}

// ============================================================================
// 从数据源创建
// ============================================================================

// FromSlice 从切片创建Observable，切片在创建时被复制
func FromSlice[T any](slice []T, options ...Option) Observable[T] {
	values := make([]T, len(slice))
	copy(values, slice)

	return Create(func(emitter Emitter[T]) error {
		for _, value := range values {
			if emitter.IsDisposed() {
				return nil
			}
			emitter.OnNext(value)
		}
		emitter.OnComplete()
		return nil
	}, options...)
}

// FromChannel 在独立goroutine中读取channel，channel关闭时完成。
// 释放订阅会停止读取，但不会关闭channel。
func FromChannel[T any](ch <-chan T, options ...Option) Observable[T] {
	return Create(func(emitter Emitter[T]) error {
		ctx, cancel := context.WithCancel(context.Background())
		emitter.SetDisposable(NewBaseDisposable(cancel))

		go func() {
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					return
				case value, ok := <-ch:
					if !ok {
						emitter.OnComplete()
						return
					}
					emitter.OnNext(value)
				}
			}
		}()
		return nil
	}, options...)
}

// Defer 每次订阅时调用factory创建新的Observable。factory的错误或panic
// 作为OnError发送；options作用于外层订阅（名称、上下文、事件观察者）
func Defer[T any](factory func() (Observable[T], error), options ...Option) Observable[T] {
	return Create(func(emitter Emitter[T]) error {
		obs, err := SafeExecute(func(struct{}) (Observable[T], error) {
			return factory()
		}, struct{}{})
		if err != nil {
			return err
		}

		emitter.SetDisposable(obs.Subscribe(&deferObserver[T]{Emitter: emitter}))
		return nil
	}, options...)
}

// deferObserver 把内层Observable的信号转发给外层发射器
type deferObserver[T any] struct {
	Emitter[T]
}

func (d *deferObserver[T]) onSubscribe(upstream Disposable) {
	d.Emitter.SetDisposable(upstream)
}
