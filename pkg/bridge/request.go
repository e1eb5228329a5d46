package bridge

import (
	"sync"
)

// Request 工作协程发往 UI 线程的请求
// 取值仅限本包定义的请求类型
type Request interface {
	// Op 请求的操作名，用于日志与指标
	Op() string
	isRequest()
}

// MessageBoxKind 消息框类别
type MessageBoxKind int

const (
	InfoMessageBox MessageBoxKind = iota
	WarningMessageBox
	CriticalMessageBox
	QuestionMessageBox
)

func (k MessageBoxKind) String() string {
	switch k {
	case WarningMessageBox:
		return "warning"
	case CriticalMessageBox:
		return "critical"
	case QuestionMessageBox:
		return "question"
	}
	return "info"
}

// 标准按钮
const (
	ButtonOk     = "Ok"
	ButtonCancel = "Cancel"
	ButtonYes    = "Yes"
	ButtonNo     = "No"
)

// MessageBoxRequest 显示消息框，结果为被点击的按钮
type MessageBoxRequest struct {
	Kind          MessageBoxKind
	Title         string
	Text          string
	Buttons       []string
	DefaultButton string
}

// CustomDialogRequest 显示已注册的自定义对话框
type CustomDialogRequest struct {
	Name    string
	Factory DialogFactory
	Options map[string]any
}

// Show 以 parent 为父窗口运行对话框
func (r *CustomDialogRequest) Show(parent any) (any, error) {
	return r.Factory(parent, r.Options)
}

// InputKind 输入对话框类别
type InputKind int

const (
	StringInput InputKind = iota
	TextInput
	IntInput
	FloatInput
	ItemInput
)

func (k InputKind) String() string {
	switch k {
	case TextInput:
		return "text"
	case IntInput:
		return "int"
	case FloatInput:
		return "float"
	case ItemInput:
		return "item"
	}
	return "string"
}

// InputRequest 标准输入对话框
// 结果为输入的值，用户取消时为 nil
type InputRequest struct {
	Kind     InputKind
	Title    string
	Label    string
	Default  any
	Min, Max any
	Decimals int
	Items    []string
	Editable bool
}

// InvokeRequest 在 UI 线程以窗口为父对象执行任意输入操作
type InvokeRequest struct {
	Fn func(parent any) (any, error)
}

// AppendOutputRequest 追加输出
type AppendOutputRequest struct {
	Text           string
	HTML           bool
	ScrollToBottom bool
}

// ClearOutputRequest 清空输出
type ClearOutputRequest struct{}

// ProgressRequest 更新进度
type ProgressRequest struct {
	Value   int
	Message string
}

// ProgressbarConfig 进度条配置
type ProgressbarConfig struct {
	Min, Max       int
	Inverted       bool
	ShowMessage    bool
	MessageFormat  string
	InitialMessage string
}

// ProgressbarRequest 显示或隐藏进度条
type ProgressbarRequest struct {
	Visible bool
	Config  ProgressbarConfig
}

func (*MessageBoxRequest) Op() string   { return "show_messagebox" }
func (*CustomDialogRequest) Op() string { return "show_custom_dialog" }
func (*InputRequest) Op() string        { return "get_input" }
func (*InvokeRequest) Op() string       { return "get_input" }
func (*AppendOutputRequest) Op() string { return "append_output" }
func (*ClearOutputRequest) Op() string  { return "clear_output" }
func (*ProgressRequest) Op() string     { return "update_progress" }
func (*ProgressbarRequest) Op() string  { return "progressbar" }

func (*MessageBoxRequest) isRequest()   {}
func (*CustomDialogRequest) isRequest() {}
func (*InputRequest) isRequest()        {}
func (*InvokeRequest) isRequest()       {}
func (*AppendOutputRequest) isRequest() {}
func (*ClearOutputRequest) isRequest()  {}
func (*ProgressRequest) isRequest()     {}
func (*ProgressbarRequest) isRequest()  {}

// Future 一次性结果，只能被解决一次
type Future struct {
	once   sync.Once
	done   chan struct{}
	result any
	err    error
}

// NewFuture 创建未解决的 Future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve 设置结果，重复调用返回 false
func (f *Future) Resolve(result any, err error) bool {
	resolved := false
	f.once.Do(func() {
		f.result, f.err = result, err
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done 解决后关闭
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result 阻塞直到解决
func (f *Future) Result() (any, error) {
	<-f.done
	return f.result, f.err
}
