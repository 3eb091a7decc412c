package rxlite

import (
	"sync"
	"sync/atomic"
)

// ============================================================================
// FlatMap 协调器
// ============================================================================

// FlatMap 将每个源值映射为内部Observable并把所有内部流合并到一个下游。
//
// 状态：Active（外部未完成）→ OuterDone（外部完成，等待内部流）→ Terminated。
// 来自外部或任一内部流的第一个终止信号获胜，其余终止信号被丢弃；
// 错误终止会释放外部订阅和所有仍在运行的内部订阅。
// 不同内部流之间不保证顺序，先到先转发；下游调用总是串行的。
func FlatMap[T, R any](src Observable[T], mapper FlatMapper[T, R]) Observable[R] {
	return Observable[R]{
		config: src.config,
		source: func(observer Observer[R]) Disposable {
			c := newFlatMapCoordinator(observer, mapper)
			announce(observer, c.sub)

			outer := &flatMapOuter[T, R]{c: c}
			c.upstreams.Add(src.Subscribe(outer))
			return c.sub
		},
	}
}

// flatMapCoordinator 每个外部订阅一份的协调状态
type flatMapCoordinator[T, R any] struct {
	mapper     FlatMapper[T, R]
	downstream *drainObserver[R]
	// upstreams 外部订阅与所有存活的内部订阅
	upstreams *CompositeDisposable
	// sub 交给订阅者的Disposable，释放时级联释放upstreams
	sub   Disposable
	trace *tracer

	mu        sync.Mutex
	active    int
	outerDone bool

	terminated atomic.Bool
}

func newFlatMapCoordinator[T, R any](observer Observer[R], mapper FlatMapper[T, R]) *flatMapCoordinator[T, R] {
	c := &flatMapCoordinator[T, R]{
		mapper:    mapper,
		upstreams: NewCompositeDisposable(),
	}
	c.sub = NewBaseDisposable(c.upstreams.Dispose)
	c.downstream = newDrainObserver(observer, Immediate)
	c.downstream.bind(c.sub)
	return c
}

func (c *flatMapCoordinator[T, R]) subscribeInner(inner Observable[R]) {
	in := &flatMapInner[T, R]{c: c}

	c.mu.Lock()
	c.active++
	active := c.active
	c.mu.Unlock()

	c.trace.innerSubscribed(active)
	c.track(in, inner.Subscribe(in))
}

// track 把内部订阅加入聚合，已完成的内部订阅不再加入
func (c *flatMapCoordinator[T, R]) track(in *flatMapInner[T, R], d Disposable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if in.done || in.upstream != nil {
		return
	}
	in.upstream = d
	c.upstreams.Add(d)
}

// innerDone 内部流完成；外部已完成且没有存活的内部流时完成下游
func (c *flatMapCoordinator[T, R]) innerDone(in *flatMapInner[T, R]) {
	c.mu.Lock()
	if in.done {
		c.mu.Unlock()
		return
	}
	in.done = true
	d := in.upstream
	c.active--
	finished := c.outerDone && c.active == 0
	c.mu.Unlock()

	if d != nil {
		c.upstreams.Remove(d)
	}
	if finished {
		c.complete()
	}
}

func (c *flatMapCoordinator[T, R]) outerComplete() {
	c.mu.Lock()
	c.outerDone = true
	finished := c.active == 0
	c.mu.Unlock()

	if finished {
		c.complete()
	}
}

func (c *flatMapCoordinator[T, R]) emit(value R) {
	if c.terminated.Load() {
		return
	}
	c.downstream.OnNext(value)
}

// fail 第一个终止信号：释放聚合后转发错误
func (c *flatMapCoordinator[T, R]) fail(err error) bool {
	if !c.terminated.CompareAndSwap(false, true) {
		return false
	}
	c.upstreams.Dispose()
	c.downstream.OnError(err)
	return true
}

func (c *flatMapCoordinator[T, R]) complete() {
	if !c.terminated.CompareAndSwap(false, true) {
		return
	}
	c.upstreams.Dispose()
	c.downstream.OnComplete()
}

// flatMapOuter 订阅源Observable的观察者
type flatMapOuter[T, R any] struct {
	c *flatMapCoordinator[T, R]
}

func (o *flatMapOuter[T, R]) onSubscribe(d Disposable) {
	if s, ok := d.(*subscription); ok {
		o.c.trace = s.trace
	}
	o.c.upstreams.Add(d)
}

func (o *flatMapOuter[T, R]) OnNext(value T) {
	c := o.c
	if c.terminated.Load() {
		return
	}

	inner, err := SafeExecute(c.mapper, value)
	if err != nil {
		if c.fail(err) {
			c.trace.operatorFailed("flatMap", err)
		}
		return
	}
	c.subscribeInner(inner)
}

func (o *flatMapOuter[T, R]) OnError(err error) {
	o.c.fail(err)
}

func (o *flatMapOuter[T, R]) OnComplete() {
	o.c.outerComplete()
}

// flatMapInner 订阅内部Observable的观察者，upstream与done由c.mu保护
type flatMapInner[T, R any] struct {
	c        *flatMapCoordinator[T, R]
	upstream Disposable
	done     bool
}

func (i *flatMapInner[T, R]) onSubscribe(d Disposable) {
	i.c.track(i, d)
}

func (i *flatMapInner[T, R]) OnNext(value R) {
	i.c.emit(value)
}

func (i *flatMapInner[T, R]) OnError(err error) {
	i.c.fail(err)
}

func (i *flatMapInner[T, R]) OnComplete() {
	i.c.innerDone(i)
}
