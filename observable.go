// Observable implementation for rxlite
// 冷Observable：每次订阅都独立运行一次生产者
package rxlite

import (
	"context"
	"sync/atomic"
)

// ============================================================================
// Observable 核心实现
// ============================================================================

// Observable 包装生产者的不可变值。零值Observable在订阅时立即完成。
type Observable[T any] struct {
	source func(observer Observer[T]) Disposable
	config *Config
}

// Create 从生产者函数创建Observable
func Create[T any](producer Producer[T], options ...Option) Observable[T] {
	config := newConfig(options)

	return Observable[T]{
		config: config,
		source: func(observer Observer[T]) Disposable {
			return runProducer(producer, observer, config)
		},
	}
}

// runProducer 为一次订阅创建Disposable与受保护的发射器，然后同步运行生产者
func runProducer[T any](producer Producer[T], observer Observer[T], config *Config) Disposable {
	sub := newSubscription(config)
	emitter := &safeEmitter[T]{downstream: observer, sub: sub}

	sub.trace.subscribed()

	if ctx := config.Context; ctx.Done() != nil {
		if ctx.Err() != nil {
			sub.Dispose()
			return sub
		}
		stop := context.AfterFunc(ctx, sub.Dispose)
		sub.release = NewBaseDisposable(func() { stop() })
		sub.resources.Add(sub.release)
	}

	// 内部观察者必须在第一个信号之前拿到上游Disposable
	announce(observer, sub)

	if err := callProducer(producer, emitter); err != nil {
		emitter.OnError(err)
	}
	return sub
}

// callProducer 运行生产者。生产者自身的panic转换为*PanicError；
// 下游处理函数中的panic（发射器正在投递时）原样继续传播。
func callProducer[T any](producer Producer[T], emitter *safeEmitter[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if emitter.delivering.Load() > 0 {
				panic(r)
			}
			err = &PanicError{Value: r}
		}
	}()

	return producer(emitter)
}

// Subscribe 订阅观察者，返回本次订阅的Disposable
func (o Observable[T]) Subscribe(observer Observer[T]) Disposable {
	if observer == nil {
		observer = NewObserver[T](nil, nil, nil)
	}
	if o.source == nil {
		observer.OnComplete()
		return NewBaseDisposable(nil)
	}
	return o.source(observer)
}

// SubscribeWithCallbacks 使用回调函数订阅
func (o Observable[T]) SubscribeWithCallbacks(onNext func(T), onError func(error), onComplete func()) Disposable {
	return o.Subscribe(NewObserver(onNext, onError, onComplete))
}

// Config 返回Observable的配置
func (o Observable[T]) Config() *Config {
	if o.config == nil {
		return DefaultConfig()
	}
	return o.config
}

// derive 用包装上游观察者的方式构造派生Observable。
// 返回的Disposable就是源订阅的Disposable，释放自然向上游传播。
func derive[T, R any](src Observable[T], wrap func(downstream Observer[R]) Observer[T]) Observable[R] {
	return Observable[R]{
		config: src.config,
		source: func(observer Observer[R]) Disposable {
			return src.Subscribe(wrap(observer))
		},
	}
}

// ============================================================================
// 订阅与发射器
// ============================================================================

// subscription 一次订阅的Disposable，持有生产者通过SetDisposable绑定的资源
type subscription struct {
	resources *CompositeDisposable
	trace     *tracer
	// release 上下文取消的注册，终止信号之后提前解除
	release Disposable
}

func newSubscription(config *Config) *subscription {
	return &subscription{
		resources: NewCompositeDisposable(),
		trace:     newTracer(config),
	}
}

// Dispose 释放订阅及其资源
func (s *subscription) Dispose() {
	if s.resources.dispose() {
		s.trace.disposed()
	}
}

// IsDisposed 检查是否已释放
func (s *subscription) IsDisposed() bool {
	return s.resources.IsDisposed()
}

// terminated 终止信号之后解除与上下文的绑定，订阅本身不标记为已释放
func (s *subscription) terminated() {
	if s.release == nil {
		return
	}
	s.resources.Remove(s.release)
	s.release.Dispose()
}

// safeEmitter 在每次推送前检查释放状态，并保证最多一个终止信号
type safeEmitter[T any] struct {
	downstream Observer[T]
	sub        *subscription
	done       atomic.Bool
	// delivering 正在执行的下游调用数
	delivering atomic.Int32
}

func (e *safeEmitter[T]) OnNext(value T) {
	if e.done.Load() || e.sub.IsDisposed() {
		return
	}
	e.delivering.Add(1)
	e.downstream.OnNext(value)
	e.delivering.Add(-1)
}

func (e *safeEmitter[T]) OnError(err error) {
	if err == nil {
		err = ErrNilError
	}
	if e.sub.IsDisposed() || !e.done.CompareAndSwap(false, true) {
		return
	}
	e.sub.terminated()
	e.sub.trace.failed(err)
	e.delivering.Add(1)
	e.downstream.OnError(err)
	e.delivering.Add(-1)
}

func (e *safeEmitter[T]) OnComplete() {
	if e.sub.IsDisposed() || !e.done.CompareAndSwap(false, true) {
		return
	}
	e.sub.terminated()
	e.sub.trace.completed()
	e.delivering.Add(1)
	e.downstream.OnComplete()
	e.delivering.Add(-1)
}

func (e *safeEmitter[T]) IsDisposed() bool {
	return e.done.Load() || e.sub.IsDisposed()
}

func (e *safeEmitter[T]) SetDisposable(d Disposable) {
	e.sub.resources.Add(d)
}

// ============================================================================
// 转换操作符
// ============================================================================

// Map 转换操作符。transform失败时发送终止错误并丢弃之后的所有信号。
func Map[T, R any](src Observable[T], transform Transformer[T, R]) Observable[R] {
	return derive(src, func(downstream Observer[R]) Observer[T] {
		return &mapObserver[T, R]{downstream: downstream, transform: transform}
	})
}

type mapObserver[T, R any] struct {
	downstream Observer[R]
	transform  Transformer[T, R]
	trace      *tracer
	done       atomic.Bool
}

func (m *mapObserver[T, R]) onSubscribe(d Disposable) {
	if s, ok := d.(*subscription); ok {
		m.trace = s.trace
	}
	announce(m.downstream, d)
}

func (m *mapObserver[T, R]) OnNext(value T) {
	if m.done.Load() {
		return
	}
	result, err := SafeExecute(m.transform, value)
	if err != nil {
		if m.done.CompareAndSwap(false, true) {
			m.trace.operatorFailed("map", err)
			m.downstream.OnError(err)
		}
		return
	}
	m.downstream.OnNext(result)
}

func (m *mapObserver[T, R]) OnError(err error) {
	if m.done.CompareAndSwap(false, true) {
		m.downstream.OnError(err)
	}
}

func (m *mapObserver[T, R]) OnComplete() {
	if m.done.CompareAndSwap(false, true) {
		m.downstream.OnComplete()
	}
}

// Filter 过滤操作符，只转发满足谓词的值
func (o Observable[T]) Filter(predicate Predicate[T]) Observable[T] {
	return derive(o, func(downstream Observer[T]) Observer[T] {
		return &filterObserver[T]{downstream: downstream, predicate: predicate}
	})
}

type filterObserver[T any] struct {
	downstream Observer[T]
	predicate  Predicate[T]
	trace      *tracer
	done       atomic.Bool
}

func (f *filterObserver[T]) onSubscribe(d Disposable) {
	if s, ok := d.(*subscription); ok {
		f.trace = s.trace
	}
	announce(f.downstream, d)
}

func (f *filterObserver[T]) OnNext(value T) {
	if f.done.Load() {
		return
	}
	keep, err := SafeExecute(f.predicate, value)
	if err != nil {
		if f.done.CompareAndSwap(false, true) {
			f.trace.operatorFailed("filter", err)
			f.downstream.OnError(err)
		}
		return
	}
	if keep {
		f.downstream.OnNext(value)
	}
}

func (f *filterObserver[T]) OnError(err error) {
	if f.done.CompareAndSwap(false, true) {
		f.downstream.OnError(err)
	}
}

func (f *filterObserver[T]) OnComplete() {
	if f.done.CompareAndSwap(false, true) {
		f.downstream.OnComplete()
	}
}

// Filter 函数形式，便于与Map/FlatMap组合
func Filter[T any](src Observable[T], predicate Predicate[T]) Observable[T] {
	return src.Filter(predicate)
}
