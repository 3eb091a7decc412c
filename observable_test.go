package rxlite_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/xinjiayu/rxlite"
	"github.com/xinjiayu/rxlite/rxtest"
)

// ============================================================================
// 订阅与发射协议测试
// ============================================================================

func emitAll[T any](values ...T) rxlite.Producer[T] {
	return func(emitter rxlite.Emitter[T]) error {
		for _, v := range values {
			emitter.OnNext(v)
		}
		emitter.OnComplete()
		return nil
	}
}

// TestSubscribeWithObserver 测试使用Observer订阅
func TestSubscribeWithObserver(t *testing.T) {
	rec := rxtest.NewRecorder[int]()

	d := rxlite.Create(emitAll(1, 2, 3)).Subscribe(rec)

	if got := rec.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("期望[1 2 3]，实际得到%v", got)
	}
	if rec.Completions() != 1 {
		t.Errorf("期望完成1次，实际%d次", rec.Completions())
	}
	if rec.Err() != nil {
		t.Errorf("不应该有错误: %v", rec.Err())
	}
	if d.IsDisposed() {
		t.Error("完成不应该把订阅标记为已释放")
	}
}

// TestSubscribeWithCallbacks 测试三个回调的订阅方式
func TestSubscribeWithCallbacks(t *testing.T) {
	var items []string
	completed := false
	var received error

	d := rxlite.Create(emitAll("A", "B")).SubscribeWithCallbacks(
		func(v string) { items = append(items, v) },
		func(err error) { received = err },
		func() { completed = true },
	)

	if !slices.Equal(items, []string{"A", "B"}) {
		t.Errorf("期望[A B]，实际得到%v", items)
	}
	if !completed {
		t.Error("应该收到完成信号")
	}
	if received != nil {
		t.Errorf("不应该有错误: %v", received)
	}
	if d.IsDisposed() {
		t.Error("订阅不应该被释放")
	}
}

// TestSubscribeWithNilCallbacks nil回调被忽略
func TestSubscribeWithNilCallbacks(t *testing.T) {
	d := rxlite.Just(1, 2).SubscribeWithCallbacks(nil, nil, nil)
	if d == nil {
		t.Fatal("Subscribe必须返回Disposable")
	}
}

// TestSequencePreserved 任意序列都按原顺序到达且只完成一次
func TestSequencePreserved(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{name: "empty", values: nil},
		{name: "single", values: []int{42}},
		{name: "ordered", values: []int{1, 2, 3, 4, 5}},
		{name: "duplicates", values: []int{7, 7, 0, -1, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := rxtest.NewRecorder[int]()
			rxlite.Create(emitAll(tt.values...)).Subscribe(rec)

			got := rec.Values()
			if !slices.Equal(got, tt.values) {
				t.Errorf("期望%v，实际得到%v", tt.values, got)
			}
			if rec.Completions() != 1 || rec.Err() != nil {
				t.Errorf("期望恰好一次完成且无错误，实际%v", rec.Notifications())
			}
		})
	}
}

// TestProducerErrorIsTerminal 生产者返回的错误转换为终止OnError
func TestProducerErrorIsTerminal(t *testing.T) {
	boom := errors.New("测试错误")
	rec := rxtest.NewRecorder[string]()

	rxlite.Create(func(emitter rxlite.Emitter[string]) error {
		emitter.OnNext("OK")
		return boom
	}).Subscribe(rec)

	if got := rec.Values(); !slices.Equal(got, []string{"OK"}) {
		t.Errorf("期望[OK]，实际得到%v", got)
	}
	if !errors.Is(rec.Err(), boom) {
		t.Errorf("期望错误%v，实际%v", boom, rec.Err())
	}
	if rec.Completions() != 0 {
		t.Error("错误之后不应该完成")
	}
}

// TestProducerErrorAfterComplete 已经完成后返回的错误被丢弃
func TestProducerErrorAfterComplete(t *testing.T) {
	rec := rxtest.NewRecorder[int]()

	rxlite.Create(func(emitter rxlite.Emitter[int]) error {
		emitter.OnComplete()
		return errors.New("太迟了")
	}).Subscribe(rec)

	if rec.Terminals() != 1 || rec.Completions() != 1 {
		t.Errorf("期望只有一个完成信号，实际%v", rec.Notifications())
	}
}

// TestAtMostOneTerminal 终止信号之后的所有信号都被丢弃
func TestAtMostOneTerminal(t *testing.T) {
	rec := rxtest.NewRecorder[int]()
	var emitter rxlite.Emitter[int]

	rxlite.Create(func(e rxlite.Emitter[int]) error {
		emitter = e
		e.OnNext(1)
		e.OnError(errors.New("第一个"))
		e.OnError(errors.New("第二个"))
		e.OnComplete()
		e.OnNext(2)
		return nil
	}).Subscribe(rec)

	got := rec.Notifications()
	if len(got) != 2 || got[0].Kind != rxlite.KindNext || got[1].Kind != rxlite.KindError {
		t.Fatalf("期望[next error]，实际%v", got)
	}
	if got[1].Err.Error() != "第一个" {
		t.Errorf("第一个终止信号应该获胜，实际%v", got[1].Err)
	}
	if !emitter.IsDisposed() {
		t.Error("终止之后发射器应该报告已释放")
	}
}

// TestOnErrorNil nil错误被替换为ErrNilError
func TestOnErrorNil(t *testing.T) {
	rec := rxtest.NewRecorder[int]()
	rxlite.Create(func(e rxlite.Emitter[int]) error {
		e.OnError(nil)
		return nil
	}).Subscribe(rec)

	if !errors.Is(rec.Err(), rxlite.ErrNilError) {
		t.Errorf("期望ErrNilError，实际%v", rec.Err())
	}
}

// TestColdSubscriptions 每次订阅都重新运行生产者
func TestColdSubscriptions(t *testing.T) {
	runs := 0
	obs := rxlite.Create(func(e rxlite.Emitter[int]) error {
		runs++
		e.OnNext(runs)
		e.OnComplete()
		return nil
	})

	first := rxtest.NewRecorder[int]()
	second := rxtest.NewRecorder[int]()
	obs.Subscribe(first)
	obs.Subscribe(second)

	if runs != 2 {
		t.Errorf("期望生产者运行2次，实际%d次", runs)
	}
	if !slices.Equal(first.Values(), []int{1}) || !slices.Equal(second.Values(), []int{2}) {
		t.Errorf("订阅之间不应该共享状态: %v %v", first.Values(), second.Values())
	}
}

// ============================================================================
// 释放测试
// ============================================================================

// TestDisposableStopsEvents 释放之后不再投递任何信号
func TestDisposableStopsEvents(t *testing.T) {
	manual := rxtest.NewManual[int]()
	counter := 0
	completed := false

	var d rxlite.Disposable
	d = manual.Observable().Subscribe(rxlite.NewObserver(
		func(v int) {
			counter++
			if v == 2 {
				d.Dispose()
			}
		},
		nil,
		func() { completed = true },
	))

	emitter := manual.Emitter(0)
	for i := 0; i < 5; i++ {
		emitter.OnNext(i)
	}
	emitter.OnComplete()

	if counter != 3 {
		t.Errorf("期望收到0,1,2共3个值，实际%d个", counter)
	}
	if completed {
		t.Error("释放后不应该收到完成信号")
	}
	if !d.IsDisposed() || !emitter.IsDisposed() {
		t.Error("订阅和发射器都应该报告已释放")
	}
}

// TestDisposeIdempotent 重复释放与释放一次效果相同，绑定的资源只释放一次
func TestDisposeIdempotent(t *testing.T) {
	released := 0
	d := rxlite.Create(func(e rxlite.Emitter[int]) error {
		e.SetDisposable(rxlite.NewBaseDisposable(func() { released++ }))
		return nil
	}).Subscribe(rxtest.NewRecorder[int]())

	d.Dispose()
	d.Dispose()

	if released != 1 {
		t.Errorf("期望资源释放1次，实际%d次", released)
	}
	if !d.IsDisposed() {
		t.Error("释放应该是单调的")
	}
}

// TestWithContextDisposes 上下文取消时释放订阅
func TestWithContextDisposes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	manual := rxtest.NewManual[int]()
	rec := rxtest.NewRecorder[int]()

	d := manual.Observable(rxlite.WithContext(ctx)).Subscribe(rec)
	manual.Emitter(0).OnNext(1)
	cancel()

	deadline := time.Now().Add(time.Second)
	for !d.IsDisposed() {
		if time.Now().After(deadline) {
			t.Fatal("上下文取消后订阅应该被释放")
		}
		time.Sleep(time.Millisecond)
	}

	manual.Emitter(0).OnNext(2)
	if got := rec.Values(); !slices.Equal(got, []int{1}) {
		t.Errorf("期望[1]，实际%v", got)
	}
}

// TestWithCancelledContext 已取消的上下文不运行生产者
func TestWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	manual := rxtest.NewManual[int]()

	d := manual.Observable(rxlite.WithContext(ctx)).Subscribe(rxtest.NewRecorder[int]())

	if !d.IsDisposed() {
		t.Error("订阅应该立即被释放")
	}
	if manual.Subscriptions() != 0 {
		t.Error("生产者不应该运行")
	}
}

// TestZeroObservable 零值Observable立即完成
func TestZeroObservable(t *testing.T) {
	var obs rxlite.Observable[int]
	rec := rxtest.NewRecorder[int]()

	d := obs.Subscribe(rec)

	if rec.Completions() != 1 {
		t.Errorf("期望完成1次，实际%v", rec.Notifications())
	}
	if d.IsDisposed() {
		t.Error("完成不等于释放，返回的Disposable应该未释放")
	}
	d.Dispose()
	if !d.IsDisposed() {
		t.Error("Dispose之后应该是已释放状态")
	}
}

// TestObserverPanicPropagates 观察者自身的panic不被捕获
func TestObserverPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "handler bug" {
			t.Errorf("期望panic传播到调用者，实际%v", r)
		}
	}()

	rxlite.Just(1).SubscribeWithCallbacks(func(int) { panic("handler bug") }, nil, nil)
	t.Error("不应该执行到这里")
}

// TestContextReleasedAfterTerminal 终止之后取消上下文不再释放订阅
func TestContextReleasedAfterTerminal(t *testing.T) {
	tests := []struct {
		name   string
		source func(opts ...rxlite.Option) rxlite.Observable[int]
	}{
		{
			name: "complete",
			source: func(opts ...rxlite.Option) rxlite.Observable[int] {
				return rxlite.FromSlice([]int{1, 2}, opts...)
			},
		},
		{
			name: "error",
			source: func(opts ...rxlite.Option) rxlite.Observable[int] {
				return rxlite.Error[int](errors.New("失败"), opts...)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			events := rxtest.NewEventRecorder()
			rec := rxtest.NewRecorder[int]()

			d := tt.source(rxlite.WithContext(ctx), rxlite.WithObserver(events)).Subscribe(rec)
			if rec.Terminals() != 1 {
				t.Fatalf("期望1个终止信号，实际%v", rec.Notifications())
			}

			cancel()
			time.Sleep(50 * time.Millisecond)

			if d.IsDisposed() {
				t.Error("终止之后取消上下文不应该释放订阅")
			}
			if n := len(events.OfType(rxlite.EventDispose)); n != 0 {
				t.Errorf("不应该产生释放事件，实际%d个", n)
			}

			d.Dispose()
			if n := len(events.OfType(rxlite.EventDispose)); n != 1 {
				t.Errorf("显式Dispose应该产生1个释放事件，实际%d个", n)
			}
		})
	}
}

// TestContextCancelBeforeTerminal 终止之前取消上下文仍然释放订阅
func TestContextCancelBeforeTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	manual := rxtest.NewManual[int]()
	events := rxtest.NewEventRecorder()

	d := manual.Observable(rxlite.WithContext(ctx), rxlite.WithObserver(events)).
		Subscribe(rxtest.NewRecorder[int]())
	cancel()

	deadline := time.Now().Add(time.Second)
	for !d.IsDisposed() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !d.IsDisposed() {
		t.Fatal("取消上下文应该释放订阅")
	}
	if n := len(events.OfType(rxlite.EventDispose)); n != 1 {
		t.Errorf("期望1个释放事件，实际%d个", n)
	}
}

// TestProducerPanicBecomesError 生产者的panic转换为PanicError
func TestProducerPanicBecomesError(t *testing.T) {
	rec := rxtest.NewRecorder[int]()

	rxlite.Create(func(emitter rxlite.Emitter[int]) error {
		emitter.OnNext(1)
		panic("producer bug")
	}).Subscribe(rec)

	if got := rec.Values(); !slices.Equal(got, []int{1}) {
		t.Errorf("panic之前的值应该送达，实际%v", got)
	}
	var pe *rxlite.PanicError
	if !errors.As(rec.Err(), &pe) {
		t.Fatalf("期望PanicError，实际%v", rec.Err())
	}
	if pe.Value != "producer bug" {
		t.Errorf("期望panic值producer bug，实际%v", pe.Value)
	}
	if rec.Terminals() != 1 {
		t.Errorf("期望1个终止信号，实际%d个", rec.Terminals())
	}
}

// TestProducerPanicAfterTerminal 终止之后的panic不产生第二个终止信号
func TestProducerPanicAfterTerminal(t *testing.T) {
	rec := rxtest.NewRecorder[int]()

	rxlite.Create(func(emitter rxlite.Emitter[int]) error {
		emitter.OnComplete()
		panic("late bug")
	}).Subscribe(rec)

	if rec.Completions() != 1 || rec.Terminals() != 1 {
		t.Errorf("期望只有完成信号，实际%v", rec.Notifications())
	}
}

// TestObserverErrorHandlerPanicPropagates OnError回调中的panic同样传播
func TestObserverErrorHandlerPanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "error handler bug" {
			t.Errorf("期望panic传播到调用者，实际%v", r)
		}
	}()

	rxlite.Error[int](errors.New("失败")).SubscribeWithCallbacks(nil, func(error) {
		panic("error handler bug")
	}, nil)
	t.Error("不应该执行到这里")
}
