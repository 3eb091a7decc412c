package rxlite

import "fmt"

// Kind 通知类型
type Kind int

const (
	// KindNext 值通知
	KindNext Kind = iota
	// KindError 错误通知
	KindError
	// KindComplete 完成通知
	KindComplete
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Notification 把一个信号表示为值，便于排队和回放
type Notification[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// NextNotification 创建值通知
func NextNotification[T any](value T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: value}
}

// ErrorNotification 创建错误通知
func ErrorNotification[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// CompleteNotification 创建完成通知
func CompleteNotification[T any]() Notification[T] {
	return Notification[T]{Kind: KindComplete}
}

// IsTerminal 错误或完成
func (n Notification[T]) IsTerminal() bool {
	return n.Kind != KindNext
}

// Accept 把通知投递给观察者
func (n Notification[T]) Accept(observer Observer[T]) {
	switch n.Kind {
	case KindNext:
		observer.OnNext(n.Value)
	case KindError:
		observer.OnError(n.Err)
	case KindComplete:
		observer.OnComplete()
	}
}

func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}
