// Package observability 把rxlite的订阅生命周期事件输出到外部。
// 事件级别沿用OpenTelemetry SeverityNumber的区间，可以原样转发到OTel管道。
package observability

import (
	"context"
	"log/slog"
	"time"
)

// ============================================================================
// 事件级别
// ============================================================================

// Level 事件级别
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String 返回级别对应的OTel严重性文本
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel 映射到slog的级别
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ============================================================================
// 事件与观察者
// ============================================================================

// EventType 事件类型，例如 "rx.subscribe"
type EventType string

// Event 一条生命周期记录。Source是产生事件的Observable名称，
// Data中的 "subscription" 键总是携带订阅ID
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer 事件观察者接口
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// IsNoOp 判断观察者是否丢弃所有事件（nil也算），
// 是则调用方可以完全跳过事件的构造
func IsNoOp(obs Observer) bool {
	if obs == nil {
		return true
	}
	_, ok := obs.(NoOpObserver)
	return ok
}
