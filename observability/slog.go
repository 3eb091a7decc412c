package observability

import (
	"context"
	"log/slog"
)

// SlogObserver 把事件写入slog.Logger。
// 事件类型作为日志消息，级别经SlogLevel映射，Data的键展开为顶层属性
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver 创建slog观察者。logger为nil时每次都使用slog.Default()，
// 之后调用slog.SetDefault同样生效
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	level := event.Level.SlogLevel()
	if !logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
