package observability

import (
	"fmt"
	"sync"
)

// ============================================================================
// 观察者注册表
// ============================================================================

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(nil),
	}
	mutex sync.RWMutex
)

// GetObserver 按名称获取已注册的观察者。
// "noop" 和 "slog"（使用默认logger）总是存在
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver 注册观察者，同名时覆盖
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}
