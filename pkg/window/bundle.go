package window

import (
	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/widget"
)

// ResultCallback 运行成功后在 UI 线程中调用
type ResultCallback func(w *ExecuteWindow, result any, args *function.Arguments)

// ErrorCallback 运行失败后在 UI 线程中调用
type ErrorCallback func(w *ExecuteWindow, err *function.ExecuteError, args *function.Arguments)

// FnBundle 注册时生成的函数包
// 创建后只读
type FnBundle struct {
	FnInfo          *function.FnInfo
	WidgetConfigs   *widget.ConfigMap
	WindowConfig    *Config
	WindowListener  Listener
	WindowToolbar   *action.Toolbar
	WindowMenus     []*action.Menu
	OnExecuteResult ResultCallback
	OnExecuteError  ErrorCallback
}

// Listener 执行窗口生命周期监听器
type Listener interface {
	OnCreate(w *ExecuteWindow)
	OnShow(w *ExecuteWindow)
	OnHide(w *ExecuteWindow)
	// OnClose 返回 false 阻止关闭
	OnClose(w *ExecuteWindow) bool
	OnDestroy(w *ExecuteWindow)
}

// NopListener 空实现，OnClose 总是允许关闭
type NopListener struct{}

func (NopListener) OnCreate(*ExecuteWindow)     {}
func (NopListener) OnShow(*ExecuteWindow)       {}
func (NopListener) OnHide(*ExecuteWindow)       {}
func (NopListener) OnClose(*ExecuteWindow) bool { return true }
func (NopListener) OnDestroy(*ExecuteWindow)    {}
