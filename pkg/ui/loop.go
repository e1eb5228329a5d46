// Package ui 提供单线程的 UI 事件循环
// 所有控件访问都必须在循环所在的 goroutine 中进行，其他 goroutine 通过 Post 投递闭包
package ui

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc/panics"

	"github.com/KodaTao/FormChassis/pkg/observability"
)

// ErrStopped 循环已停止
var ErrStopped = errors.New("ui loop stopped")

// Loop 按 FIFO 顺序逐个执行投递的闭包
// 队列无界，Post 永不阻塞，因此 UI 线程向自身投递也不会死锁
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}
}

// NewLoop 创建事件循环，需要调用 Run 才开始处理
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post 投递闭包，循环已停止时返回 false
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call 投递闭包并等待其执行完毕
// 不能在循环 goroutine 内调用
func (l *Loop) Call(fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// 停止前已入队的闭包仍会执行
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Run 在当前 goroutine 中运行循环，直到 ctx 结束或调用 Stop
// 退出前执行完已入队的闭包
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	observability.Debug("UI loop started")

	for {
		l.drain()

		select {
		case <-l.wake:
		case <-ctx.Done():
			l.stop()
			l.drain()
			observability.Debug("UI loop stopped", "reason", ctx.Err())
			return ctx.Err()
		}

		l.mu.Lock()
		stopped := l.stopped
		l.mu.Unlock()
		if stopped {
			l.drain()
			observability.Debug("UI loop stopped")
			return nil
		}
	}
}

// Stop 请求循环退出，之后的 Post 都会失败
func (l *Loop) Stop() {
	l.stop()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Done 循环退出后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		run(fn)
	}
}

// run 执行单个闭包，panic 不会让循环退出
func run(fn func()) {
	var pc panics.Catcher
	pc.Try(fn)
	if r := pc.Recovered(); r != nil {
		observability.Error("UI task panicked",
			"panic", r.Value,
			"stack", string(r.Stack),
		)
	}
}
