package rxlite

import (
	"context"

	"github.com/xinjiayu/rxlite/observability"
)

// ============================================================================
// 配置选项
// ============================================================================

// Option 配置选项接口
type Option interface {
	Apply(config *Config)
}

// Config 配置结构，由Create使用并被派生操作符继承
type Config struct {
	// Name 出现在生命周期事件的Source字段
	Name string
	// Observer 生命周期事件的接收者
	Observer observability.Observer
	// Context 取消时释放所有存活的订阅
	Context context.Context
}

// DefaultConfig 默认配置：不追踪、不可取消
func DefaultConfig() *Config {
	return &Config{
		Name:     "observable",
		Observer: observability.NoOpObserver{},
		Context:  context.Background(),
	}
}

// optionFunc 函数形式的选项
type optionFunc func(config *Config)

// Apply 应用选项
func (f optionFunc) Apply(config *Config) {
	f(config)
}

// WithName 设置Observable名称
func WithName(name string) Option {
	return optionFunc(func(config *Config) {
		config.Name = name
	})
}

// WithObserver 设置生命周期事件的接收者
func WithObserver(observer observability.Observer) Option {
	return optionFunc(func(config *Config) {
		if observer == nil {
			observer = observability.NoOpObserver{}
		}
		config.Observer = observer
	})
}

// WithObserverName 从注册表中按名称选择事件接收者，未注册的名称保持原配置
func WithObserverName(name string) Option {
	return optionFunc(func(config *Config) {
		if observer, err := observability.GetObserver(name); err == nil {
			config.Observer = observer
		}
	})
}

// WithContext 绑定上下文，上下文取消时释放订阅
func WithContext(ctx context.Context) Option {
	return optionFunc(func(config *Config) {
		if ctx != nil {
			config.Context = ctx
		}
	})
}

// newConfig 应用选项
func newConfig(options []Option) *Config {
	config := DefaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt.Apply(config)
		}
	}
	return config
}
