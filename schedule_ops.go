package rxlite

// ============================================================================
// 调度操作符
// ============================================================================

// SubscribeOn 在调度器上执行上游订阅（以及同步运行的生产者）。
// 任务运行前释放订阅则上游不会被订阅。
func (o Observable[T]) SubscribeOn(scheduler Scheduler) Observable[T] {
	return Observable[T]{
		config: o.config,
		source: func(observer Observer[T]) Disposable {
			d := NewCompositeDisposable()
			announce(observer, d)

			scheduler.Execute(func() {
				if d.IsDisposed() {
					return
				}
				d.Add(o.Subscribe(&subscribeOnObserver[T]{Observer: observer, d: d}))
			})
			return d
		},
	}
}

// ObserveOn 通过调度器投递每个信号。每个订阅有独立队列，同一时刻只有一个
// 排空任务，因此即使在多worker的调度器上顺序也保持不变。
func (o Observable[T]) ObserveOn(scheduler Scheduler) Observable[T] {
	return Observable[T]{
		config: o.config,
		source: func(observer Observer[T]) Disposable {
			drain := newDrainObserver(observer, scheduler)
			d := o.Subscribe(drain)
			drain.bind(d)
			return d
		},
	}
}

// subscribeOnObserver 把上游订阅加入d，并把真实的上游订阅转告下游，
// 下游的Map、Filter、FlatMap由此拿到上游的事件追踪
type subscribeOnObserver[T any] struct {
	Observer[T]
	d *CompositeDisposable
}

func (s *subscribeOnObserver[T]) onSubscribe(upstream Disposable) {
	s.d.Add(upstream)
	announce(s.Observer, upstream)
}
