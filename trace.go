package rxlite

import (
	"time"

	"github.com/google/uuid"

	"github.com/xinjiayu/rxlite/observability"
)

// 生命周期事件类型
const (
	EventSubscribe      observability.EventType = "rx.subscribe"
	EventComplete       observability.EventType = "rx.complete"
	EventError          observability.EventType = "rx.error"
	EventDispose        observability.EventType = "rx.dispose"
	EventInnerSubscribe observability.EventType = "rx.flatmap.inner"
	EventOperatorError  observability.EventType = "rx.operator.error"
)

// tracer 单个订阅的事件发射器；未配置观察者时所有方法都是空操作
type tracer struct {
	config *Config
	id     string
}

// newTracer 只有在配置了观察者时才生成订阅ID
func newTracer(config *Config) *tracer {
	if observability.IsNoOp(config.Observer) {
		return nil
	}
	return &tracer{config: config, id: uuid.NewString()}
}

func (t *tracer) emit(eventType observability.EventType, level observability.Level, data map[string]any) {
	if t == nil {
		return
	}
	if data == nil {
		data = make(map[string]any, 1)
	}
	data["subscription"] = t.id

	t.config.Observer.OnEvent(t.config.Context, observability.Event{
		Type:      eventType,
		Level:     level,
		Timestamp: time.Now(),
		Source:    t.config.Name,
		Data:      data,
	})
}

func (t *tracer) subscribed() {
	t.emit(EventSubscribe, observability.LevelVerbose, nil)
}

func (t *tracer) completed() {
	t.emit(EventComplete, observability.LevelVerbose, nil)
}

func (t *tracer) failed(err error) {
	if t == nil {
		return
	}
	t.emit(EventError, observability.LevelWarning, map[string]any{"error": err.Error()})
}

func (t *tracer) disposed() {
	t.emit(EventDispose, observability.LevelVerbose, nil)
}

func (t *tracer) operatorFailed(operator string, err error) {
	if t == nil {
		return
	}
	t.emit(EventOperatorError, observability.LevelWarning, map[string]any{
		"operator": operator,
		"error":    err.Error(),
	})
}

func (t *tracer) innerSubscribed(active int) {
	if t == nil {
		return
	}
	t.emit(EventInnerSubscribe, observability.LevelVerbose, map[string]any{"active": active})
}
