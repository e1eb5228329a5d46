package window

import (
	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/widget"
)

// Host 具体 UI 工具包实现的窗口外观
// 所有方法都在 UI 线程中调用
type Host interface {
	SetTitle(title string)
	SetDocument(document string, format function.DocumentFormat)
	SetChrome(toolbar *action.Toolbar, menus []*action.Menu)

	// AddParameterWidget 把控件加入分组，分组按首次出现的顺序排列
	AddParameterWidget(group string, w widget.ParameterWidget)
	RemoveParameterWidgets()
	// ScrollToParameter 把参数控件滚动到可见区域
	ScrollToParameter(name string)
	SetParametersEnabled(enabled bool)

	AppendOutput(text string, html, scrollToBottom bool)
	ClearOutput()

	ShowProgressbar(cfg bridge.ProgressbarConfig)
	HideProgressbar()
	UpdateProgress(value int, message string)

	// SetExecuting 切换执行与取消按钮的状态
	SetExecuting(executing, cancelable bool)

	// ShowMessageBox 模态显示消息框，返回被点击的按钮
	ShowMessageBox(req *bridge.MessageBoxRequest) string
	// GetInput 模态显示输入框，用户取消时返回 nil
	GetInput(req *bridge.InputRequest) any

	Show()
	Hide()
	Close()
}
