// Package window 实现函数执行窗口的控制逻辑
//
// 窗口拥有参数控件、输出区和进度条，只在 UI 线程中访问；
// 工作协程通过 bridge 发来的请求间接操作窗口
package window

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/executor"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/value"
	"github.com/KodaTao/FormChassis/pkg/widget"
)

// 错误定义
var (
	ErrNilBundle        = errors.New("function bundle cannot be nil")
	ErrNilHost          = errors.New("window host cannot be nil")
	ErrWindowClosed     = errors.New("window is closed")
	ErrActionNotFound   = errors.New("action not found")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrCloseVetoed      = errors.New("close vetoed by window listener")
)

// Group 参数分组
type Group struct {
	Name       string
	Parameters []string
}

// ExecuteWindow 函数执行窗口
type ExecuteWindow struct {
	bundle     *FnBundle
	config     *Config
	host       Host
	listener   Listener
	runner     function.Runner
	dispatcher function.Dispatcher
	bridge     *bridge.Bridge
	ctx        context.Context

	names    []string
	widgets  map[string]widget.ParameterWidget
	groups   []*Group
	progress bridge.ProgressbarConfig
	lastArgs *function.Arguments
	extra    []function.ExecutionListener
	closed   bool
}

// Option 窗口选项
type Option func(*ExecuteWindow)

// WithBridge 设置工作协程使用的桥接，窗口显示时绑定为活动窗口
func WithBridge(b *bridge.Bridge) Option {
	return func(w *ExecuteWindow) {
		w.bridge = b
	}
}

// WithDispatcher 设置执行器事件投递的 UI 循环
func WithDispatcher(d function.Dispatcher) Option {
	return func(w *ExecuteWindow) {
		w.dispatcher = d
	}
}

// WithContext 设置运行的父 context
func WithContext(ctx context.Context) Option {
	return func(w *ExecuteWindow) {
		w.ctx = ctx
	}
}

// WithExecutionListener 额外的执行监听器，例如执行记录
func WithExecutionListener(l function.ExecutionListener) Option {
	return func(w *ExecuteWindow) {
		w.extra = append(w.extra, l)
	}
}

// New 创建执行窗口并实例化参数控件
func New(bundle *FnBundle, host Host, opts ...Option) (*ExecuteWindow, error) {
	if bundle == nil || bundle.FnInfo == nil {
		return nil, ErrNilBundle
	}
	if host == nil {
		return nil, ErrNilHost
	}

	cfg := bundle.WindowConfig
	if cfg == nil {
		cfg = DefaultConfig()
	}
	listener := bundle.WindowListener
	if listener == nil {
		listener = NopListener{}
	}

	w := &ExecuteWindow{
		bundle:   bundle,
		config:   cfg,
		host:     host,
		listener: listener,
		ctx:      context.Background(),
		widgets:  make(map[string]widget.ParameterWidget),
	}

	for _, opt := range opts {
		opt(w)
	}

	if factory := bundle.FnInfo.Executor; factory != nil {
		w.runner = factory(w.dispatcher)
	} else {
		w.runner = executor.New(executor.WithDispatcher(w.dispatcher))
	}
	// 窗口自身最先收到事件
	w.runner.AddListener(w)
	for _, l := range w.extra {
		w.runner.AddListener(l)
	}

	if err := w.createWidgets(); err != nil {
		return nil, err
	}

	title := cfg.Title
	if title == "" {
		title = bundle.FnInfo.DisplayName
	}
	host.SetTitle(title)
	host.SetDocument(bundle.FnInfo.Document, bundle.FnInfo.DocumentFormat)
	host.SetChrome(bundle.WindowToolbar, bundle.WindowMenus)
	host.SetExecuting(false, w.cancelable())

	w.listener.OnCreate(w)
	return w, nil
}

func (w *ExecuteWindow) createWidgets() error {
	configs := w.bundle.WidgetConfigs
	if configs == nil {
		return nil
	}

	byName := make(map[string]*Group)
	for _, name := range configs.Names() {
		entry, _ := configs.Get(name)
		pw, err := entry.Class.Create(w, name, entry.Config)
		if err != nil {
			return fmt.Errorf("create widget for %q: %w", name, err)
		}

		groupName := entry.Config.Base().Group
		if groupName == "" {
			groupName = w.config.DefaultParameterGroupName
		}
		g, ok := byName[groupName]
		if !ok {
			g = &Group{Name: groupName}
			byName[groupName] = g
			w.groups = append(w.groups, g)
		}
		g.Parameters = append(g.Parameters, name)

		w.names = append(w.names, name)
		w.widgets[name] = pw
		w.host.AddParameterWidget(groupName, pw)
	}
	return nil
}

// Bundle 窗口对应的函数包
func (w *ExecuteWindow) Bundle() *FnBundle { return w.bundle }

// Config 窗口配置
func (w *ExecuteWindow) Config() *Config { return w.config }

// Runner 窗口的执行器
func (w *ExecuteWindow) Runner() function.Runner { return w.runner }

// Groups 参数分组，按首次出现的顺序
func (w *ExecuteWindow) Groups() []Group {
	groups := make([]Group, len(w.groups))
	for i, g := range w.groups {
		groups[i] = Group{Name: g.Name, Parameters: append([]string(nil), g.Parameters...)}
	}
	return groups
}

// ParameterWidget 获取参数控件
func (w *ExecuteWindow) ParameterWidget(name string) (widget.ParameterWidget, bool) {
	pw, ok := w.widgets[name]
	return pw, ok
}

// Show 显示窗口并绑定为桥接的活动窗口
func (w *ExecuteWindow) Show() {
	if w.bridge != nil {
		w.bridge.Bind(w)
	}
	w.host.Show()
	w.listener.OnShow(w)
}

// Hide 隐藏窗口
func (w *ExecuteWindow) Hide() {
	w.listener.OnHide(w)
	w.host.Hide()
}

// Close 关闭窗口，执行期间或监听器否决时失败
func (w *ExecuteWindow) Close() error {
	if w.closed {
		return nil
	}
	if w.runner.IsExecuting() {
		w.warn(w.config.FunctionExecutingMessage)
		return executor.ErrAlreadyExecuting
	}
	if !w.listener.OnClose(w) {
		return ErrCloseVetoed
	}

	w.closed = true
	if w.bridge != nil {
		w.bridge.Unbind(w)
	}
	w.runner.RemoveListener(w)
	w.host.RemoveParameterWidgets()
	w.widgets = make(map[string]widget.ParameterWidget)
	w.names = nil
	w.groups = nil
	w.host.Close()
	w.listener.OnDestroy(w)
	return nil
}

// IsClosed 窗口是否已关闭
func (w *ExecuteWindow) IsClosed() bool { return w.closed }

// ---- 按钮 ----

// OnExecute 执行按钮：收集参数并启动执行
func (w *ExecuteWindow) OnExecute() error {
	if w.closed {
		return ErrWindowClosed
	}
	if w.runner.IsExecuting() {
		w.warn(w.config.FunctionExecutingMessage)
		return executor.ErrAlreadyExecuting
	}

	args, err := w.GetParameterValues()
	if err != nil {
		if pe, ok := function.AsParameterError(err); ok {
			w.ProcessParameterError(pe)
		}
		return err
	}

	ctx := w.ctx
	if w.bridge != nil {
		ctx = bridge.WithHandler(bridge.WithBridge(ctx, w.bridge), w)
	}
	return w.runner.Execute(ctx, w.bundle.FnInfo, args)
}

// OnCancel 取消按钮
func (w *ExecuteWindow) OnCancel() error {
	if !w.cancelable() {
		w.warn(w.config.UncancelableMessage)
		return fmt.Errorf("%s: %s", w.bundle.FnInfo.Name, w.config.UncancelableMessage)
	}
	return w.runner.TryCancel()
}

// OnClear 清空按钮，执行期间拒绝
func (w *ExecuteWindow) OnClear() error {
	if w.runner.IsExecuting() {
		w.warn(w.config.FunctionExecutingMessage)
		return executor.ErrAlreadyExecuting
	}
	w.ClearOutput()
	return nil
}

// TriggerAction 触发工具栏或菜单中的动作
func (w *ExecuteWindow) TriggerAction(id string) error {
	a, ok := action.FindAction(id, w.bundle.WindowToolbar, w.bundle.WindowMenus)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActionNotFound, id)
	}
	w.ActionTriggered(a)
	return nil
}

// ActionTriggered 以窗口为参数调用动作回调
func (w *ExecuteWindow) ActionTriggered(a *action.Action) {
	observability.Debug("Action triggered", "action", a.ID, "function", w.bundle.FnInfo.Name)
	a.Trigger(w)
}

func (w *ExecuteWindow) cancelable() bool {
	return w.bundle.FnInfo.Cancelable && w.config.EnableCancel
}

// ---- 参数 ----

// GetParameterValue 读取单个参数
func (w *ExecuteWindow) GetParameterValue(name string) (value.Value, error) {
	pw, ok := w.widgets[name]
	if !ok {
		return value.Null(), fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return pw.GetValue()
}

// GetParameterValues 按参数顺序读取全部参数，遇到第一个错误即返回
func (w *ExecuteWindow) GetParameterValues() (*function.Arguments, error) {
	args := function.NewArguments()
	for _, name := range w.names {
		v, err := w.widgets[name].GetValue()
		if err != nil {
			return nil, err
		}
		args.Set(name, v)
	}
	return args, nil
}

// SetParameterValue 设置单个参数
func (w *ExecuteWindow) SetParameterValue(name string, v any) error {
	pw, ok := w.widgets[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return pw.SetValue(value.From(v))
}

// SetParameterValues 批量设置参数，按参数声明顺序赋值
// 存在未知参数或任一赋值失败时，所有参数保持调用前的值
func (w *ExecuteWindow) SetParameterValues(values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		if _, ok := w.widgets[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return w.position(names[i]) < w.position(names[j]) })

	previous := make([]value.Value, len(names))
	for i, name := range names {
		v, err := w.widgets[name].GetValue()
		if err != nil {
			return err
		}
		previous[i] = v
	}

	for i, name := range names {
		if err := w.widgets[name].SetValue(value.From(values[name])); err != nil {
			w.rollback(names[:i], previous[:i])
			return err
		}
	}
	return nil
}

func (w *ExecuteWindow) rollback(names []string, previous []value.Value) {
	for i, name := range names {
		pw := w.widgets[name]
		if r, ok := pw.(widget.ValueRestorer); ok {
			r.RestoreValue(previous[i])
			continue
		}
		if err := pw.SetValue(previous[i]); err != nil {
			observability.Warn("Failed to restore parameter value", "parameter", name, "error", err)
		}
	}
}

func (w *ExecuteWindow) position(name string) int {
	for i, n := range w.names {
		if n == name {
			return i
		}
	}
	return len(w.names)
}

// ProcessParameterError 高亮出错的参数控件并提示
func (w *ExecuteWindow) ProcessParameterError(pe *function.ParameterError) {
	if pw, ok := w.widgets[pe.ParameterName]; ok {
		pw.OnParameterError(pe.ParameterName, pe.Message)
		w.host.ScrollToParameter(pe.ParameterName)
	} else {
		observability.Warn("Parameter error for unknown parameter",
			"function", w.bundle.FnInfo.Name,
			"parameter", pe.ParameterName,
		)
	}
	if w.config.ShowParameterErrorDialog {
		w.host.ShowMessageBox(&bridge.MessageBoxRequest{
			Kind:          bridge.CriticalMessageBox,
			Title:         w.config.ParameterErrorDialogTitle,
			Text:          pe.Error(),
			Buttons:       []string{bridge.ButtonOk},
			DefaultButton: bridge.ButtonOk,
		})
	}
}

// ClearParameterErrors 清除所有控件的错误提示
func (w *ExecuteWindow) ClearParameterErrors() {
	for _, name := range w.names {
		w.widgets[name].OnClearParameterError(name)
	}
}

// ---- 输出 ----

// AppendOutput 追加输出
func (w *ExecuteWindow) AppendOutput(text string, html, scrollToBottom bool) {
	w.host.AppendOutput(text, html, scrollToBottom)
}

// ClearOutput 清空输出
func (w *ExecuteWindow) ClearOutput() {
	w.host.ClearOutput()
}

// ShowProgressbar 显示进度条
func (w *ExecuteWindow) ShowProgressbar(cfg bridge.ProgressbarConfig) {
	w.progress = cfg
	w.host.ShowProgressbar(cfg)
	if cfg.InitialMessage != "" {
		w.host.UpdateProgress(cfg.Min, cfg.InitialMessage)
	}
}

// HideProgressbar 隐藏进度条
func (w *ExecuteWindow) HideProgressbar() {
	w.host.HideProgressbar()
}

// UpdateProgress 更新进度，未给出消息时按进度条的 MessageFormat 生成
func (w *ExecuteWindow) UpdateProgress(current int, message string) {
	if message == "" && w.progress.ShowMessage && w.progress.MessageFormat != "" {
		message = fmt.Sprintf(w.progress.MessageFormat, current)
	}
	w.host.UpdateProgress(current, message)
}

// UpdateDocument 替换文档
func (w *ExecuteWindow) UpdateDocument(document string, format function.DocumentFormat) {
	w.host.SetDocument(document, format)
}

func (w *ExecuteWindow) warn(text string) {
	w.host.ShowMessageBox(&bridge.MessageBoxRequest{
		Kind:          bridge.WarningMessageBox,
		Text:          text,
		Buttons:       []string{bridge.ButtonOk},
		DefaultButton: bridge.ButtonOk,
	})
}
