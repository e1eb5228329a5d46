// Package windowtest 提供记录调用的 window.Host，用于测试
package windowtest

import (
	"strings"
	"sync"

	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/widget"
)

// Host 记录窗口对宿主的所有调用
// InputReply 与 MessageBoxReply 模拟用户的操作，未设置时输入视为取消、消息框返回默认按钮
type Host struct {
	mu sync.Mutex

	InputReply      func(req *bridge.InputRequest) any
	MessageBoxReply func(req *bridge.MessageBoxRequest) string

	title             string
	document          string
	groups            []string
	widgets           map[string][]string
	output            []string
	progress          []int
	progressVisible   bool
	executing         bool
	parametersEnabled bool
	scrolled          []string
	messageBoxes      []*bridge.MessageBoxRequest
	inputs            []*bridge.InputRequest
	shown             bool
	closed            bool
}

// New 创建宿主
func New() *Host {
	return &Host{widgets: make(map[string][]string), parametersEnabled: true}
}

func (h *Host) SetTitle(title string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.title = title
}

func (h *Host) SetDocument(document string, _ function.DocumentFormat) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.document = document
}

func (h *Host) SetChrome(*action.Toolbar, []*action.Menu) {}

func (h *Host) AddParameterWidget(group string, w widget.ParameterWidget) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.widgets[group]; !ok {
		h.groups = append(h.groups, group)
	}
	h.widgets[group] = append(h.widgets[group], w.ParameterName())
}

func (h *Host) RemoveParameterWidgets() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groups = nil
	h.widgets = make(map[string][]string)
}

func (h *Host) ScrollToParameter(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scrolled = append(h.scrolled, name)
}

func (h *Host) SetParametersEnabled(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parametersEnabled = enabled
}

func (h *Host) AppendOutput(text string, _, _ bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.output = append(h.output, text)
}

func (h *Host) ClearOutput() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.output = nil
}

func (h *Host) ShowProgressbar(bridge.ProgressbarConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progressVisible = true
}

func (h *Host) HideProgressbar() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progressVisible = false
}

func (h *Host) UpdateProgress(value int, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = append(h.progress, value)
}

func (h *Host) SetExecuting(executing, _ bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executing = executing
}

func (h *Host) ShowMessageBox(req *bridge.MessageBoxRequest) string {
	h.mu.Lock()
	h.messageBoxes = append(h.messageBoxes, req)
	reply := h.MessageBoxReply
	h.mu.Unlock()

	if reply != nil {
		return reply(req)
	}
	return req.DefaultButton
}

func (h *Host) GetInput(req *bridge.InputRequest) any {
	h.mu.Lock()
	h.inputs = append(h.inputs, req)
	reply := h.InputReply
	h.mu.Unlock()

	if reply != nil {
		return reply(req)
	}
	return nil
}

func (h *Host) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown = true
}

func (h *Host) Hide() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown = false
}

func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

// ---- 查询 ----

func (h *Host) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

func (h *Host) Document() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.document
}

// Groups 分组名，按加入顺序
func (h *Host) Groups() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.groups...)
}

// GroupWidgets 分组中的参数名
func (h *Host) GroupWidgets(group string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.widgets[group]...)
}

func (h *Host) Output() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.output...)
}

// OutputText 以换行连接的全部输出
func (h *Host) OutputText() string {
	return strings.Join(h.Output(), "\n")
}

func (h *Host) Progress() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.progress...)
}

func (h *Host) ProgressVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progressVisible
}

func (h *Host) Executing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executing
}

func (h *Host) ParametersEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.parametersEnabled
}

func (h *Host) Scrolled() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.scrolled...)
}

func (h *Host) MessageBoxes() []*bridge.MessageBoxRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*bridge.MessageBoxRequest(nil), h.messageBoxes...)
}

func (h *Host) Inputs() []*bridge.InputRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*bridge.InputRequest(nil), h.inputs...)
}

func (h *Host) Shown() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

func (h *Host) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
