package bridge

import (
	"context"
	"fmt"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/value"
)

// 以下函数供用户函数在工作协程中调用，ctx 为执行器传入的 context

func request(ctx context.Context, req Request) (any, error) {
	b, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoActiveWindow
	}
	return b.Request(ctx, req)
}

// IsFunctionCancelled 用户是否请求取消当前运行，不会阻塞
func IsFunctionCancelled(ctx context.Context) bool {
	return ctx.Err() != nil
}

// MessageBoxOption 消息框选项
type MessageBoxOption func(*MessageBoxRequest)

// WithTitle 设置标题
func WithTitle(title string) MessageBoxOption {
	return func(r *MessageBoxRequest) { r.Title = title }
}

// WithButtons 设置按钮与默认按钮
func WithButtons(defaultButton string, buttons ...string) MessageBoxOption {
	return func(r *MessageBoxRequest) {
		r.Buttons = buttons
		r.DefaultButton = defaultButton
	}
}

func showMessageBox(ctx context.Context, kind MessageBoxKind, text string, buttons []string, opts []MessageBoxOption) (string, error) {
	req := &MessageBoxRequest{Kind: kind, Text: text, Buttons: buttons}
	if len(buttons) > 0 {
		req.DefaultButton = buttons[0]
	}
	for _, opt := range opts {
		opt(req)
	}
	result, err := request(ctx, req)
	if err != nil {
		return "", err
	}
	s, _ := result.(string)
	return s, nil
}

// ShowInfoMessageBox 显示信息消息框，返回被点击的按钮
func ShowInfoMessageBox(ctx context.Context, text string, opts ...MessageBoxOption) (string, error) {
	return showMessageBox(ctx, InfoMessageBox, text, []string{ButtonOk}, opts)
}

// ShowWarningMessageBox 显示警告消息框
func ShowWarningMessageBox(ctx context.Context, text string, opts ...MessageBoxOption) (string, error) {
	return showMessageBox(ctx, WarningMessageBox, text, []string{ButtonOk}, opts)
}

// ShowCriticalMessageBox 显示错误消息框
func ShowCriticalMessageBox(ctx context.Context, text string, opts ...MessageBoxOption) (string, error) {
	return showMessageBox(ctx, CriticalMessageBox, text, []string{ButtonOk}, opts)
}

// ShowQuestionMessageBox 显示询问消息框，默认按钮为 Yes / No
func ShowQuestionMessageBox(ctx context.Context, text string, opts ...MessageBoxOption) (string, error) {
	return showMessageBox(ctx, QuestionMessageBox, text, []string{ButtonYes, ButtonNo}, opts)
}

// ShowCustomDialog 显示已注册的自定义对话框
func ShowCustomDialog(ctx context.Context, name string, options map[string]any) (any, error) {
	b, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoActiveWindow
	}
	factory, err := b.Dialogs().Get(name)
	if err != nil {
		return nil, err
	}
	return b.Request(ctx, &CustomDialogRequest{Name: name, Factory: factory, Options: options})
}

// InputOption 输入对话框选项
type InputOption func(*InputRequest)

// WithDefault 设置初始值
func WithDefault(v any) InputOption {
	return func(r *InputRequest) { r.Default = v }
}

// WithRange 设置数值范围
func WithRange(min, max any) InputOption {
	return func(r *InputRequest) { r.Min, r.Max = min, max }
}

// WithDecimals 设置浮点输入的小数位数
func WithDecimals(decimals int) InputOption {
	return func(r *InputRequest) { r.Decimals = decimals }
}

// WithEditable 选项输入允许自由编辑
func WithEditable(editable bool) InputOption {
	return func(r *InputRequest) { r.Editable = editable }
}

func getInput(ctx context.Context, kind InputKind, title, label string, opts []InputOption) (value.Value, error) {
	req := &InputRequest{Kind: kind, Title: title, Label: label}
	for _, opt := range opts {
		opt(req)
	}
	result, err := request(ctx, req)
	if err != nil {
		return value.Null(), err
	}
	v := value.From(result)
	if v.IsNull() {
		return v, ErrInputCanceled
	}
	return v, nil
}

// GetString 请求单行文本输入，用户取消时返回 ErrInputCanceled
func GetString(ctx context.Context, title, label string, opts ...InputOption) (string, error) {
	v, err := getInput(ctx, StringInput, title, label, opts)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// GetText 请求多行文本输入
func GetText(ctx context.Context, title, label string, opts ...InputOption) (string, error) {
	v, err := getInput(ctx, TextInput, title, label, opts)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// GetInt 请求整数输入
func GetInt(ctx context.Context, title, label string, opts ...InputOption) (int64, error) {
	v, err := getInput(ctx, IntInput, title, label, opts)
	if err != nil {
		return 0, err
	}
	return v.AsInt()
}

// GetFloat 请求浮点输入
func GetFloat(ctx context.Context, title, label string, opts ...InputOption) (float64, error) {
	v, err := getInput(ctx, FloatInput, title, label, opts)
	if err != nil {
		return 0, err
	}
	return v.AsFloat()
}

// GetItem 请求从列表中选择一项
func GetItem(ctx context.Context, title, label string, items []string, opts ...InputOption) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("get item: no items")
	}
	v, err := getInput(ctx, ItemInput, title, label, append([]InputOption{func(r *InputRequest) { r.Items = items }}, opts...))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// GetInput 在 UI 线程以窗口为父对象执行 fn，用于自定义的输入方式
func GetInput(ctx context.Context, fn func(parent any) (any, error)) (any, error) {
	return request(ctx, &InvokeRequest{Fn: fn})
}

// AppendOutput 向输出区追加内容
func AppendOutput(ctx context.Context, text string, html, scrollToBottom bool) error {
	_, err := request(ctx, &AppendOutputRequest{Text: text, HTML: html, ScrollToBottom: scrollToBottom})
	return err
}

// PrintOutput 按 fmt.Sprintln 的规则格式化后追加到输出区
func PrintOutput(ctx context.Context, args ...any) error {
	return AppendOutput(ctx, strings.TrimSuffix(fmt.Sprintln(args...), "\n"), false, true)
}

// PrintHTML 追加 HTML 内容
func PrintHTML(ctx context.Context, html string) error {
	return AppendOutput(ctx, html, true, true)
}

// ClearOutput 清空输出区
func ClearOutput(ctx context.Context) error {
	_, err := request(ctx, &ClearOutputRequest{})
	return err
}

// UpdateProgress 更新进度条
func UpdateProgress(ctx context.Context, current int, message string) error {
	_, err := request(ctx, &ProgressRequest{Value: current, Message: message})
	return err
}

// ShowProgressbar 显示进度条
func ShowProgressbar(ctx context.Context, cfg ProgressbarConfig) error {
	_, err := request(ctx, &ProgressbarRequest{Visible: true, Config: cfg})
	return err
}

// HideProgressbar 隐藏进度条
func HideProgressbar(ctx context.Context) error {
	_, err := request(ctx, &ProgressbarRequest{Visible: false})
	return err
}
