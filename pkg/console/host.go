package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/action"
	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/widget"
	"github.com/KodaTao/FormChassis/pkg/window"
)

var _ window.Host = (*Host)(nil)

// progressWidth 进度条字符宽度
const progressWidth = 30

// Host 在终端中呈现一个执行窗口
type Host struct {
	toolkit *Toolkit
	name    string

	title    string
	progress bridge.ProgressbarConfig
}

func (h *Host) styles() *Styles { return h.toolkit.styles }

func (h *Host) SetTitle(title string) {
	h.title = title
}

func (h *Host) SetDocument(document string, _ function.DocumentFormat) {
	if document == "" {
		return
	}
	h.toolkit.println(h.styles().Muted.Render(document))
}

func (h *Host) SetChrome(toolbar *action.Toolbar, menus []*action.Menu) {
	var ids []string
	collect := func(a *action.Action) bool {
		ids = append(ids, a.ID)
		return true
	}
	if toolbar != nil {
		toolbar.Walk(collect)
	}
	for _, m := range menus {
		m.Walk(collect)
	}
	if len(ids) > 0 {
		h.toolkit.println(h.styles().Muted.Render("actions: " + strings.Join(ids, ", ")))
	}
}

func (h *Host) AddParameterWidget(group string, w widget.ParameterWidget) {
	line := fmt.Sprintf("  [%s] %s", group, h.styles().Label.Render(w.Label()))
	if desc := w.Description(); desc != "" {
		line += " " + h.styles().Muted.Render(desc)
	}
	h.toolkit.println(line)
}

func (h *Host) RemoveParameterWidgets() {}

func (h *Host) ScrollToParameter(name string) {
	h.toolkit.println(h.styles().Warning.Render("> check parameter " + name))
}

func (h *Host) SetParametersEnabled(bool) {}

func (h *Host) AppendOutput(text string, html, _ bool) {
	if html {
		text = stripTags(text)
	}
	h.toolkit.println(h.styles().Output.Render(text))
}

func (h *Host) ClearOutput() {
	h.toolkit.println(h.styles().Muted.Render("--- output cleared ---"))
}

func (h *Host) ShowProgressbar(cfg bridge.ProgressbarConfig) {
	h.progress = cfg
}

func (h *Host) HideProgressbar() {
	h.progress = bridge.ProgressbarConfig{}
}

func (h *Host) UpdateProgress(current int, message string) {
	h.toolkit.println(h.styles().Progress.Render(renderProgress(h.progress, current, message)))
}

func (h *Host) SetExecuting(executing, _ bool) {
	if executing {
		h.toolkit.println(h.styles().Muted.Render("running " + h.name + " ..."))
		return
	}
	h.toolkit.quitIfIdle()
}

func (h *Host) ShowMessageBox(req *bridge.MessageBoxRequest) string {
	style := h.styles().Info
	switch req.Kind {
	case bridge.WarningMessageBox:
		style = h.styles().Warning
	case bridge.CriticalMessageBox:
		style = h.styles().Error
	}
	text := req.Text
	if req.Title != "" {
		text = req.Title + "\n" + text
	}
	h.toolkit.println(h.styles().Box.Render(style.Render(text)))

	if len(req.Buttons) <= 1 {
		return req.DefaultButton
	}
	line, ok := h.toolkit.readLine(fmt.Sprintf("[%s] (default %s): ", strings.Join(req.Buttons, "/"), req.DefaultButton))
	if !ok {
		return req.DefaultButton
	}
	for _, b := range req.Buttons {
		if strings.EqualFold(strings.TrimSpace(line), b) {
			return b
		}
	}
	return req.DefaultButton
}

// GetInput 读取一行作为输入，输入结束时视为取消
// 空行取默认值
func (h *Host) GetInput(req *bridge.InputRequest) any {
	prompt := req.Label
	if req.Title != "" {
		prompt = req.Title + ": " + prompt
	}
	if req.Kind == bridge.ItemInput {
		prompt += " [" + strings.Join(req.Items, ", ") + "]"
	}
	if req.Default != nil {
		prompt += fmt.Sprintf(" (default %v)", req.Default)
	}

	line, ok := h.toolkit.readLine(prompt + ": ")
	if !ok {
		return nil
	}
	if line == "" && req.Default != nil {
		return req.Default
	}

	switch req.Kind {
	case bridge.IntInput:
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			h.toolkit.println(h.styles().Error.Render("not an integer: " + line))
			return nil
		}
		return n
	case bridge.FloatInput:
		f, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			h.toolkit.println(h.styles().Error.Render("not a number: " + line))
			return nil
		}
		return f
	case bridge.ItemInput:
		if req.Editable {
			return line
		}
		for _, item := range req.Items {
			if item == line {
				return item
			}
		}
		h.toolkit.println(h.styles().Error.Render("unknown item: " + line))
		return nil
	}
	return line
}

func (h *Host) Show() {
	title := h.title
	if title == "" {
		title = h.name
	}
	h.toolkit.println(h.styles().Title.Render(title))
}

func (h *Host) Hide() {}

func (h *Host) Close() {
	h.toolkit.println(h.styles().Muted.Render("closed " + h.name))
}

// renderProgress 生成文本进度条
func renderProgress(cfg bridge.ProgressbarConfig, current int, message string) string {
	span := cfg.Max - cfg.Min
	filled := 0
	if span > 0 {
		filled = (current - cfg.Min) * progressWidth / span
	}
	filled = max(0, min(progressWidth, filled))
	if cfg.Inverted {
		filled = progressWidth - filled
	}

	bar := "[" + strings.Repeat("#", filled) + strings.Repeat(" ", progressWidth-filled) + "]"
	if message != "" {
		bar += " " + message
	}
	return bar
}

// stripTags 去掉 HTML 标签，只保留文本
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
