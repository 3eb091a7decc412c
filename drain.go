package rxlite

import "sync"

// drainObserver 队列-排空式的串行化观察者。
// 同一时刻最多一个排空任务在运行，因此下游不会被并发调用；
// 重入的信号进入队列而不是死锁。排空任务通过scheduler执行。
type drainObserver[T any] struct {
	downstream Observer[T]
	scheduler  Scheduler

	mu       sync.Mutex
	queue    []Notification[T]
	draining bool
	done     bool
	upstream Disposable
}

func newDrainObserver[T any](downstream Observer[T], scheduler Scheduler) *drainObserver[T] {
	return &drainObserver[T]{downstream: downstream, scheduler: scheduler}
}

// bind 设置用于检查释放状态的Disposable，只有第一次生效
func (d *drainObserver[T]) bind(upstream Disposable) {
	d.mu.Lock()
	if d.upstream == nil {
		d.upstream = upstream
	}
	d.mu.Unlock()
}

func (d *drainObserver[T]) onSubscribe(upstream Disposable) {
	d.bind(upstream)
	announce(d.downstream, upstream)
}

func (d *drainObserver[T]) OnNext(value T) {
	d.push(NextNotification(value))
}

func (d *drainObserver[T]) OnError(err error) {
	d.push(ErrorNotification[T](err))
}

func (d *drainObserver[T]) OnComplete() {
	d.push(CompleteNotification[T]())
}

func (d *drainObserver[T]) push(n Notification[T]) {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	if n.IsTerminal() {
		d.done = true
	}
	d.queue = append(d.queue, n)
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	d.scheduler.Execute(d.drain)
}

func (d *drainObserver[T]) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		if d.upstream != nil && d.upstream.IsDisposed() {
			d.queue = nil
			d.draining = false
			d.mu.Unlock()
			return
		}
		n := d.queue[0]
		d.queue[0] = Notification[T]{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		n.Accept(d.downstream)
	}
}
