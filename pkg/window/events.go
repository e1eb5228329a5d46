package window

import (
	"fmt"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

var (
	_ bridge.Handler             = (*ExecuteWindow)(nil)
	_ function.ExecutionListener = (*ExecuteWindow)(nil)
)

// HandleRequest 处理工作协程发来的请求，在 UI 线程中调用
func (w *ExecuteWindow) HandleRequest(req bridge.Request) (any, error) {
	if w.closed {
		return nil, ErrWindowClosed
	}

	switch r := req.(type) {
	case *bridge.MessageBoxRequest:
		return w.host.ShowMessageBox(r), nil
	case *bridge.CustomDialogRequest:
		return r.Show(w)
	case *bridge.InputRequest:
		return w.host.GetInput(r), nil
	case *bridge.InvokeRequest:
		return r.Fn(w)
	case *bridge.AppendOutputRequest:
		w.AppendOutput(r.Text, r.HTML, r.ScrollToBottom)
	case *bridge.ClearOutputRequest:
		w.ClearOutput()
	case *bridge.ProgressRequest:
		w.UpdateProgress(r.Value, r.Message)
	case *bridge.ProgressbarRequest:
		if r.Visible {
			w.ShowProgressbar(r.Config)
		} else {
			w.HideProgressbar()
		}
	default:
		return nil, fmt.Errorf("unsupported request: %s", req.Op())
	}
	return nil, nil
}

// BeforeExecute 实现 function.ExecutionListener
func (w *ExecuteWindow) BeforeExecute(info *function.FnInfo, args *function.Arguments) {
	w.lastArgs = args
	if w.config.AutoClearOutput {
		w.ClearOutput()
	}
	w.ClearParameterErrors()
	if w.config.DisableWidgetsOnExecute {
		w.host.SetParametersEnabled(false)
	}
	w.host.SetExecuting(true, w.cancelable())
}

// OnExecuteStart 实现 function.ExecutionListener
func (w *ExecuteWindow) OnExecuteStart(info *function.FnInfo) {
	observability.Debug("Function started", "function", info.Name)
}

// OnExecuteResult 实现 function.ExecutionListener
func (w *ExecuteWindow) OnExecuteResult(info *function.FnInfo, result any) {
	if w.bundle.OnExecuteResult != nil {
		w.bundle.OnExecuteResult(w, result, w.lastArgs)
	}

	msg := fmt.Sprintf(w.config.ResultMessage, result)
	if w.config.PrintFunctionResult {
		w.AppendOutput(msg, false, true)
	}
	if w.config.ShowFunctionResultDialog {
		w.host.ShowMessageBox(&bridge.MessageBoxRequest{
			Kind:          bridge.InfoMessageBox,
			Title:         w.config.ResultDialogTitle,
			Text:          msg,
			Buttons:       []string{bridge.ButtonOk},
			DefaultButton: bridge.ButtonOk,
		})
	}
}

// OnExecuteError 实现 function.ExecutionListener
// 参数错误只交给 ProcessParameterError，不按运行时错误处理
func (w *ExecuteWindow) OnExecuteError(info *function.FnInfo, err *function.ExecuteError) {
	if w.bundle.OnExecuteError != nil {
		w.bundle.OnExecuteError(w, err, w.lastArgs)
	}

	if pe, ok := err.ParameterError(); ok {
		w.ProcessParameterError(pe)
		return
	}

	msg := fmt.Sprintf(w.config.ErrorMessage, err.Kind, err.Err)
	if w.config.ShowErrorTraceback && err.Traceback != "" {
		msg += "\n" + err.Traceback
	}
	if w.config.PrintFunctionError {
		w.AppendOutput(msg, false, true)
	}
	if w.config.ShowFunctionErrorDialog {
		w.host.ShowMessageBox(&bridge.MessageBoxRequest{
			Kind:          bridge.CriticalMessageBox,
			Title:         w.config.ErrorDialogTitle,
			Text:          msg,
			Buttons:       []string{bridge.ButtonOk},
			DefaultButton: bridge.ButtonOk,
		})
	}
}

// OnExecuteFinish 实现 function.ExecutionListener
func (w *ExecuteWindow) OnExecuteFinish(info *function.FnInfo) {
	if w.closed {
		return
	}
	if w.config.DisableWidgetsOnExecute {
		w.host.SetParametersEnabled(true)
	}
	w.host.SetExecuting(false, w.cancelable())
}
