// Package rxlite provides a minimal push-based reactive stream core for Go
// 基于推送模型的响应式流核心：Observable、Observer、Disposable 以及 Map/Filter/FlatMap
package rxlite

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 观察者契约
// ============================================================================

// Observer 观察者接口，三个信号通道
type Observer[T any] interface {
	// OnNext 接收下一个值
	OnNext(value T)
	// OnError 接收终止错误
	OnError(err error)
	// OnComplete 接收完成信号
	OnComplete()
}

// Emitter 交给生产者的发射句柄，在Observer之上增加释放状态查询
type Emitter[T any] interface {
	Observer[T]

	// IsDisposed 订阅已释放或已发送终止信号时返回true
	IsDisposed() bool

	// SetDisposable 绑定一个资源，订阅释放时一并释放
	SetDisposable(d Disposable)
}

// Producer 生产者函数，返回的错误会被转换为终止的OnError。
// 生产者自身的panic被恢复为*PanicError并作为OnError发送；
// 观察者回调中的panic不会被恢复，继续向订阅者的调用栈传播
type Producer[T any] func(emitter Emitter[T]) error

// Transformer 转换函数，用于Map
type Transformer[T, R any] func(value T) (R, error)

// Predicate 谓词函数，用于Filter
type Predicate[T any] func(value T) (bool, error)

// FlatMapper 将每个源值映射为内部Observable
type FlatMapper[T, R any] func(value T) (Observable[R], error)

// funcObserver 由三个独立回调组成的观察者
type funcObserver[T any] struct {
	onNext     func(T)
	onError    func(error)
	onComplete func()
}

// NewObserver 使用三个回调构造观察者，nil回调表示忽略该信号
func NewObserver[T any](onNext func(T), onError func(error), onComplete func()) Observer[T] {
	return &funcObserver[T]{onNext: onNext, onError: onError, onComplete: onComplete}
}

func (o *funcObserver[T]) OnNext(value T) {
	if o.onNext != nil {
		o.onNext(value)
	}
}

func (o *funcObserver[T]) OnError(err error) {
	if o.onError != nil {
		o.onError(err)
	}
}

func (o *funcObserver[T]) OnComplete() {
	if o.onComplete != nil {
		o.onComplete()
	}
}

// subscriptionAware 内部观察者在生产者运行前接收上游订阅的Disposable
type subscriptionAware interface {
	onSubscribe(d Disposable)
}

// announce 如果观察者关心上游订阅则通知它
func announce(observer any, d Disposable) {
	if aware, ok := observer.(subscriptionAware); ok {
		aware.onSubscribe(d)
	}
}

// ============================================================================
// 生命周期管理
// ============================================================================

// Disposable 可释放资源的接口
type Disposable interface {
	// Dispose 释放资源，可重复调用
	Dispose()
	// IsDisposed 检查是否已释放
	IsDisposed() bool
}

// baseDisposable 基础可释放资源实现
type baseDisposable struct {
	disposed int32
	action   func()
}

// NewBaseDisposable 创建基础可释放资源，action只在第一次Dispose时执行
func NewBaseDisposable(action func()) Disposable {
	return &baseDisposable{
		action: action,
	}
}

// Disposed 返回一个已经释放的Disposable
func Disposed() Disposable {
	return &baseDisposable{disposed: 1}
}

// Dispose 释放资源
func (d *baseDisposable) Dispose() {
	if atomic.CompareAndSwapInt32(&d.disposed, 0, 1) {
		if d.action != nil {
			d.action()
		}
	}
}

// IsDisposed 检查是否已释放
func (d *baseDisposable) IsDisposed() bool {
	return atomic.LoadInt32(&d.disposed) == 1
}

// CompositeDisposable 组合式资源管理器。
// 子资源按身份去重，因此实现必须是可比较的类型（通常是指针）。
type CompositeDisposable struct {
	mu        sync.RWMutex
	disposed  bool
	resources map[Disposable]struct{}
}

// NewCompositeDisposable 创建组合式资源管理器
func NewCompositeDisposable(disposables ...Disposable) *CompositeDisposable {
	cd := &CompositeDisposable{
		resources: make(map[Disposable]struct{}, len(disposables)),
	}
	for _, d := range disposables {
		if d != nil {
			cd.resources[d] = struct{}{}
		}
	}
	return cd
}

// Add 添加可释放资源，已释放时立即释放该资源
func (cd *CompositeDisposable) Add(disposable Disposable) {
	if disposable == nil {
		return
	}

	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		disposable.Dispose()
		return
	}
	cd.resources[disposable] = struct{}{}
	cd.mu.Unlock()
}

// Remove 移除资源但不释放它
func (cd *CompositeDisposable) Remove(disposable Disposable) bool {
	if disposable == nil {
		return false
	}

	cd.mu.Lock()
	defer cd.mu.Unlock()

	if _, ok := cd.resources[disposable]; !ok {
		return false
	}
	delete(cd.resources, disposable)
	return true
}

// Size 当前持有的资源数量
func (cd *CompositeDisposable) Size() int {
	cd.mu.RLock()
	defer cd.mu.RUnlock()
	return len(cd.resources)
}

// Dispose 释放所有资源
func (cd *CompositeDisposable) Dispose() {
	cd.dispose()
}

// dispose 第一次调用返回true；子资源在锁外释放
func (cd *CompositeDisposable) dispose() bool {
	cd.mu.Lock()
	if cd.disposed {
		cd.mu.Unlock()
		return false
	}
	cd.disposed = true
	resources := cd.resources
	cd.resources = nil
	cd.mu.Unlock()

	for resource := range resources {
		resource.Dispose()
	}
	return true
}

// IsDisposed 检查是否已释放
func (cd *CompositeDisposable) IsDisposed() bool {
	cd.mu.RLock()
	defer cd.mu.RUnlock()
	return cd.disposed
}

// ============================================================================
// 错误定义
// ============================================================================

// ErrNilError 以nil调用OnError时替换成的错误
var ErrNilError = errors.New("rxlite: OnError called with a nil error")

// PanicError 用户回调中恢复的panic
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("rxlite: recovered panic: %v", e.Value)
}

// Unwrap 当panic值本身是error时返回它
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ============================================================================
// 工具函数
// ============================================================================

// SafeExecute 安全执行用户回调，把panic转换为*PanicError
func SafeExecute[T, R any](fn func(T) (R, error), value T) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()

	return fn(value)
}
