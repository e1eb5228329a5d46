// Package executor 在工作协程中运行用户函数，并把生命周期事件投递给监听器
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

// 错误定义
var (
	ErrAlreadyExecuting = errors.New("function is already executing")
	ErrNotExecuting     = errors.New("no function is executing")
	ErrNilFunction      = errors.New("function info cannot be nil")
)

// 运行状态标签，用于日志与指标
const (
	StatusSuccess        = "success"
	StatusParameterError = "parameter_error"
	StatusRuntimeError   = "runtime_error"
)

var _ function.Runner = (*Executor)(nil)

// Executor 函数执行器
// 同一时刻最多运行一次；事件在配置了 Dispatcher 时于 UI 线程按序投递，否则在工作协程中直接调用
type Executor struct {
	dispatcher function.Dispatcher

	mu        sync.Mutex
	state     State
	runID     string
	cancel    context.CancelFunc
	cancelled bool
	done      chan struct{}
	listeners []function.ExecutionListener
}

// Option 执行器选项
type Option func(*Executor)

// WithDispatcher 设置事件投递的 UI 循环
func WithDispatcher(d function.Dispatcher) Option {
	return func(e *Executor) {
		e.dispatcher = d
	}
}

// WithListener 添加监听器
func WithListener(l function.ExecutionListener) Option {
	return func(e *Executor) {
		e.listeners = append(e.listeners, l)
	}
}

// New 创建执行器
func New(opts ...Option) *Executor {
	e := &Executor{state: Idle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFactory 返回默认执行器的工厂
func NewFactory(opts ...Option) function.ExecutorFactory {
	return func(d function.Dispatcher) function.Runner {
		return New(append(opts, WithDispatcher(d))...)
	}
}

// AddListener 添加监听器，重复添加无效
func (e *Executor) AddListener(l function.ExecutionListener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, existing := range e.listeners {
		if existing == l {
			return
		}
	}
	e.listeners = append(e.listeners, l)
}

// RemoveListener 移除监听器
func (e *Executor) RemoveListener(l function.ExecutionListener) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, existing := range e.listeners {
		if existing == l {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

// State 当前状态
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsExecuting 是否有运行尚未结束
func (e *Executor) IsExecuting() bool {
	return e.State() != Idle
}

// IsCancelled 本次运行是否已请求取消，新的运行开始时重置
func (e *Executor) IsCancelled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelled
}

// RunID 最近一次运行的 ID
func (e *Executor) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Wait 阻塞到当前运行的 OnExecuteFinish 投递完毕，空闲时立即返回
// 配置了 Dispatcher 时不能在 UI 线程中调用
func (e *Executor) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Execute 在新的工作协程中运行 info.Fn
// 非空闲时返回 ErrAlreadyExecuting，且不会产生任何事件
func (e *Executor) Execute(ctx context.Context, info *function.FnInfo, args *function.Arguments) error {
	if info == nil || info.Fn == nil {
		return ErrNilFunction
	}
	if args == nil {
		args = function.NewArguments()
	}

	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		observability.Warn("Execute ignored, function is running", "function", info.Name)
		return ErrAlreadyExecuting
	}
	runID := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.state = Starting
	e.runID = runID
	e.cancel = cancel
	e.cancelled = false
	e.done = done
	e.mu.Unlock()

	runCtx = observability.WithRun(runCtx, runID, info.Name)
	runCtx, span := observability.StartRunSpan(runCtx, info.Name, runID)
	observability.RunStarted()

	e.emit(func(l function.ExecutionListener) { l.BeforeExecute(info, args) })

	go func() {
		status, execErr := e.run(runCtx, info, args)
		observability.EndSpan(span, status, execErr)
		observability.RunFinished()
		e.finish(info, cancel, done)
	}()
	return nil
}

// TryCancel 请求取消当前运行
// 只取消运行的 context，用户函数需要自行检查 IsFunctionCancelled
func (e *Executor) TryCancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Idle {
		observability.Warn("Cancel ignored, no function is running")
		return ErrNotExecuting
	}
	e.cancelled = true
	if e.cancel != nil {
		e.cancel()
	}
	observability.Info("Cancel requested", "run_id", e.runID)
	return nil
}

func (e *Executor) run(ctx context.Context, info *function.FnInfo, args *function.Arguments) (string, error) {
	e.setState(Running)
	e.emit(func(l function.ExecutionListener) { l.OnExecuteStart(info) })

	start := time.Now()
	var (
		result any
		err    error
		pc     panics.Catcher
	)
	pc.Try(func() {
		result, err = info.Fn(ctx, args)
	})

	var execErr *function.ExecuteError
	if r := pc.Recovered(); r != nil {
		execErr = function.ClassifyError(panicError(r.Value), string(r.Stack))
		observability.ErrorContext(ctx, "Function panicked", "panic", r.Value)
	} else if err != nil {
		execErr = function.ClassifyError(err, errorChain(err))
	}

	duration := time.Since(start)
	status := StatusSuccess
	if execErr != nil {
		status = execErr.Kind.String()
		e.setState(ErrorRaised)
		e.emit(func(l function.ExecutionListener) { l.OnExecuteError(info, execErr) })
	} else {
		e.setState(ResultReady)
		e.emit(func(l function.ExecutionListener) { l.OnExecuteResult(info, result) })
	}

	observability.FunctionCallLog(ctx, info.Name, status, duration.Milliseconds())
	observability.RecordExecution(info.Name, status, duration.Seconds())

	if execErr != nil {
		return status, execErr
	}
	return status, nil
}

// finish 在投递 OnExecuteFinish 之前回到 Idle，监听器可以在回调中立即开始下一次运行
func (e *Executor) finish(info *function.FnInfo, cancel context.CancelFunc, done chan struct{}) {
	e.setState(Finished)
	listeners := e.snapshot()

	e.post(func() {
		cancel()
		e.mu.Lock()
		e.state = Idle
		e.cancel = nil
		e.mu.Unlock()

		defer close(done)
		for _, l := range listeners {
			l.OnExecuteFinish(info)
		}
	})
}

func (e *Executor) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

func (e *Executor) snapshot() []function.ExecutionListener {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]function.ExecutionListener(nil), e.listeners...)
}

// emit 把事件投递给调用时刻的全部监听器
func (e *Executor) emit(event func(l function.ExecutionListener)) {
	listeners := e.snapshot()
	e.post(func() {
		for _, l := range listeners {
			event(l)
		}
	})
}

func (e *Executor) post(fn func()) {
	if e.dispatcher == nil {
		fn()
		return
	}
	if !e.dispatcher.Post(fn) {
		// UI 循环已退出，直接调用以保证状态回到 Idle
		observability.Warn("Dispatcher stopped, delivering event on worker")
		fn()
	}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("function panicked: %w", err)
	}
	return fmt.Errorf("function panicked: %v", v)
}

// errorChain 把错误链逐层展开为多行文本
func errorChain(err error) string {
	var b strings.Builder
	for i := 0; err != nil; i++ {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", i), err, err)
		err = errors.Unwrap(err)
	}
	return b.String()
}
