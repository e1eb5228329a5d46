package function

import (
	"context"
	"fmt"
)

// ErrorKind 执行错误分类
type ErrorKind int

const (
	// RuntimeErrorKind 用户函数返回的普通错误或 panic
	RuntimeErrorKind ErrorKind = iota
	// ParameterErrorKind 用户函数返回的 ParameterError
	ParameterErrorKind
)

func (k ErrorKind) String() string {
	if k == ParameterErrorKind {
		return "parameter_error"
	}
	return "runtime_error"
}

// ExecuteError 一次运行失败的结果
type ExecuteError struct {
	Kind ErrorKind
	Err  error

	// Traceback panic 时的调用栈，普通错误为错误链的展开
	Traceback string
}

// ClassifyError 根据错误链判断错误类别
func ClassifyError(err error, traceback string) *ExecuteError {
	kind := RuntimeErrorKind
	if _, ok := AsParameterError(err); ok {
		kind = ParameterErrorKind
	}
	return &ExecuteError{Kind: kind, Err: err, Traceback: traceback}
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ExecuteError) Unwrap() error {
	return e.Err
}

// ParameterError 当 Kind 为 ParameterErrorKind 时返回对应的参数错误
func (e *ExecuteError) ParameterError() (*ParameterError, bool) {
	if e.Kind != ParameterErrorKind {
		return nil, false
	}
	return AsParameterError(e.Err)
}

// ExecutionListener 执行生命周期监听器
// 单次运行中的事件顺序固定为：
// BeforeExecute → OnExecuteStart → (OnExecuteResult | OnExecuteError) → OnExecuteFinish
type ExecutionListener interface {
	BeforeExecute(info *FnInfo, args *Arguments)
	OnExecuteStart(info *FnInfo)
	OnExecuteResult(info *FnInfo, result any)
	OnExecuteError(info *FnInfo, err *ExecuteError)
	OnExecuteFinish(info *FnInfo)
}

// NopListener 空实现，便于只关心部分事件的监听器嵌入
type NopListener struct{}

func (NopListener) BeforeExecute(*FnInfo, *Arguments) {}
func (NopListener) OnExecuteStart(*FnInfo) {}
func (NopListener) OnExecuteResult(*FnInfo, any) {}
func (NopListener) OnExecuteError(*FnInfo, *ExecuteError) {}
func (NopListener) OnExecuteFinish(*FnInfo) {}

// Dispatcher 把闭包投递到 UI 线程
// 返回 false 表示 UI 循环已停止
type Dispatcher interface {
	Post(fn func()) bool
}

// Runner 执行器契约
type Runner interface {
	Execute(ctx context.Context, info *FnInfo, args *Arguments) error
	TryCancel() error
	IsExecuting() bool
	IsCancelled() bool
	AddListener(l ExecutionListener)
	RemoveListener(l ExecutionListener)
}

// ExecutorFactory 创建自定义执行器
type ExecutorFactory func(dispatcher Dispatcher) Runner
