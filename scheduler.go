// Scheduler implementations for rxlite
// 调度器只负责执行任务，操作符链本身不依赖任何调度器
package rxlite

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Scheduler 调度器接口，接受一个任务，无返回值，已提交的任务不可取消
type Scheduler interface {
	// Execute 调度一个任务
	Execute(task func())
}

// ============================================================================
// 立即调度器 - Immediate Scheduler
// ============================================================================

// immediateScheduler 在调用者的goroutine中立即执行任务
type immediateScheduler struct{}

// NewImmediateScheduler 创建立即调度器
func NewImmediateScheduler() Scheduler {
	return immediateScheduler{}
}

// Execute 立即执行任务
func (immediateScheduler) Execute(task func()) {
	task()
}

// ============================================================================
// 新线程调度器 - New Thread Scheduler
// ============================================================================

// newThreadScheduler 为每个任务创建新的goroutine
type newThreadScheduler struct{}

// NewNewThreadScheduler 创建新线程调度器
func NewNewThreadScheduler() Scheduler {
	return newThreadScheduler{}
}

// Execute 在新goroutine中执行任务
func (newThreadScheduler) Execute(task func()) {
	go task()
}

// ============================================================================
// 计算调度器 - Computation Scheduler
// ============================================================================

// ComputationScheduler 固定大小的worker池，任务按提交顺序进入无界FIFO队列
type ComputationScheduler struct {
	group  errgroup.Group
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
}

// NewComputationScheduler 创建计算调度器，workers<=0时使用GOMAXPROCS
func NewComputationScheduler(workers int) *ComputationScheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &ComputationScheduler{}
	s.cond = sync.NewCond(&s.mu)

	for i := 0; i < workers; i++ {
		s.group.Go(s.worker)
	}

	return s
}

// NewSingleScheduler 单worker的计算调度器，所有任务严格按顺序执行
func NewSingleScheduler() *ComputationScheduler {
	return NewComputationScheduler(1)
}

// Execute 把任务放入队列；关闭之后提交的任务被丢弃
func (s *ComputationScheduler) Execute(task func()) {
	if task == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.queue = append(s.queue, task)
	s.cond.Signal()
}

// Close 停止接收新任务，等待已排队的任务执行完毕
func (s *ComputationScheduler) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	return s.group.Wait()
}

// worker 工作goroutine
func (s *ComputationScheduler) worker() error {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return nil
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		task()
	}
}

// ============================================================================
// 默认调度器
// ============================================================================

var (
	// Immediate 立即调度器实例
	Immediate Scheduler = NewImmediateScheduler()

	// NewThread 新线程调度器实例
	NewThread Scheduler = NewNewThreadScheduler()

	// Computation 进程级计算调度器，worker数为GOMAXPROCS
	Computation = NewComputationScheduler(0)
)
