// Package bridge 提供工作协程与 UI 线程之间的请求/应答通道
//
// 工作协程调用阻塞式的门面函数，请求被投递到 UI 事件循环，
// 由当前活动窗口处理后解决 Future，工作协程随即继续执行
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/KodaTao/FormChassis/pkg/observability"
)

// 错误定义
var (
	ErrNoActiveWindow = errors.New("no active window to handle the request")
	ErrLoopStopped    = errors.New("ui loop stopped")
	ErrInputCanceled  = errors.New("input canceled by user")

	ErrRequestPanicked = errors.New("request handler panicked")
)

// Handler 处理桥接请求的窗口，在 UI 线程中被调用
type Handler interface {
	HandleRequest(req Request) (any, error)
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(req Request) (any, error)

func (f HandlerFunc) HandleRequest(req Request) (any, error) {
	return f(req)
}

// Loop UI 事件循环
type Loop interface {
	Post(fn func()) bool
	Done() <-chan struct{}
}

// Bridge 请求通道
// 同一工作协程的请求严格按 FIFO 顺序处理，因为每个请求都会阻塞到被解决为止
type Bridge struct {
	loop    Loop
	dialogs *DialogRegistry

	mu      sync.RWMutex
	handler Handler
}

// New 创建桥接，dialogs 为 nil 时使用空的对话框注册表
func New(loop Loop, dialogs *DialogRegistry) *Bridge {
	if dialogs == nil {
		dialogs = NewDialogRegistry()
	}
	return &Bridge{loop: loop, dialogs: dialogs}
}

// Bind 设置活动窗口
func (b *Bridge) Bind(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handler = h
}

// Unbind 如果 h 仍是活动窗口则解除绑定
func (b *Bridge) Unbind(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handler == h {
		b.handler = nil
	}
}

// Active 当前活动窗口
func (b *Bridge) Active() Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.handler
}

// Dialogs 自定义对话框注册表
func (b *Bridge) Dialogs() *DialogRegistry {
	return b.dialogs
}

// Request 投递请求并阻塞直到 UI 线程给出结果
// 不能在 UI 线程中调用
func (b *Bridge) Request(ctx context.Context, req Request) (any, error) {
	start := time.Now()
	future := NewFuture()

	posted := b.loop.Post(func() {
		h := handlerFrom(ctx)
		if h == nil {
			h = b.Active()
		}
		if h == nil {
			future.Resolve(nil, ErrNoActiveWindow)
			return
		}

		var pc panics.Catcher
		pc.Try(func() {
			future.Resolve(h.HandleRequest(req))
		})
		if r := pc.Recovered(); r != nil {
			observability.ErrorContext(ctx, "Bridge request panicked",
				"op", req.Op(),
				"panic", r.Value,
				"stack", string(r.Stack),
			)
			future.Resolve(nil, fmt.Errorf("%w: %s: %v", ErrRequestPanicked, req.Op(), r.Value))
		}
	})
	if !posted {
		return nil, ErrLoopStopped
	}

	var (
		result any
		err    error
	)
	select {
	case <-future.Done():
		result, err = future.Result()
	case <-b.loop.Done():
		// 循环退出前可能已经处理了这个请求
		select {
		case <-future.Done():
			result, err = future.Result()
		default:
			err = ErrLoopStopped
		}
	}

	observability.BridgeRequestLog(ctx, req.Op(), time.Since(start).Milliseconds(), err)
	observability.RecordBridgeRequest(req.Op())
	return result, err
}

type ctxKey struct{}

type handlerKey struct{}

// WithBridge 把桥接放入 context，执行器在运行用户函数前调用
func WithBridge(ctx context.Context, b *Bridge) context.Context {
	return context.WithValue(ctx, ctxKey{}, b)
}

// FromContext 取出 context 中的桥接
func FromContext(ctx context.Context) (*Bridge, bool) {
	b, ok := ctx.Value(ctxKey{}).(*Bridge)
	return b, ok && b != nil
}

// WithHandler 把发起运行的窗口放入 context，该运行的请求都交给它处理，
// 不受之后打开的其他窗口影响
func WithHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey{}, h)
}

func handlerFrom(ctx context.Context) Handler {
	h, _ := ctx.Value(handlerKey{}).(Handler)
	return h
}
