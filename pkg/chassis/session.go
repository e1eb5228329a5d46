package chassis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/KodaTao/FormChassis/pkg/bridge"
	"github.com/KodaTao/FormChassis/pkg/history"
	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/ui"
	"github.com/KodaTao/FormChassis/pkg/value"
	"github.com/KodaTao/FormChassis/pkg/widget"
	"github.com/KodaTao/FormChassis/pkg/window"
)

// ErrNoToolkit 未提供界面工具包
var ErrNoToolkit = errors.New("run: toolkit is required")

// Toolkit 具体的界面实现
type Toolkit interface {
	// NewHost 为执行窗口创建宿主，在 UI 线程中调用
	NewHost(bundle *window.FnBundle) (window.Host, error)

	// Start 在 UI 循环启动后于 UI 线程中调用一次
	// 实现方可以启动自己的输入协程，通过 Session.Post 回到 UI 线程
	Start(s *Session) error
}

// SelectWindowConfig 函数选择窗口配置
type SelectWindowConfig struct {
	Title        string `mapstructure:"title"`
	DefaultGroup string `mapstructure:"default_group"`
}

// RunOptions 运行选项
type RunOptions struct {
	// Argv 第一个元素为要直接打开的函数，其余为 name=value 形式的初始参数
	Argv []string

	// ShowSelectWindow 只有一个函数时也显示选择窗口
	ShowSelectWindow   bool
	SelectWindowConfig SelectWindowConfig

	Toolkit Toolkit
}

// Session 一次 Run 的运行期状态
// 除 Post、Quit 外的方法都只能在 UI 线程中调用
type Session struct {
	app     *App
	opts    RunOptions
	loop    *ui.Loop
	bridge  *bridge.Bridge
	ctx     context.Context
	windows []*window.ExecuteWindow
	selects bool
}

// Run 运行应用，阻塞到所有窗口关闭、调用 Quit 或 ctx 结束
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.Toolkit == nil {
		return ErrNoToolkit
	}
	if a.bundles.Count() == 0 {
		return ErrNoFunctions
	}
	if err := a.Initialize(); err != nil {
		return err
	}
	if opts.SelectWindowConfig.Title == "" {
		opts.SelectWindowConfig.Title = "Select Function"
	}
	if opts.SelectWindowConfig.DefaultGroup == "" {
		opts.SelectWindowConfig.DefaultGroup = "Main Functions"
	}

	loop := a.config.Loop
	if loop == nil {
		loop = ui.NewLoop()
	}
	b := a.config.Bridge
	if b == nil {
		b = bridge.New(loop, a.dialogs)
	}

	s := &Session{app: a, opts: opts, loop: loop, bridge: b, ctx: ctx}
	s.selects = opts.ShowSelectWindow || (a.bundles.Count() > 1 && len(opts.Argv) == 0)

	var startErr error
	loop.Post(func() {
		if startErr = s.start(); startErr != nil {
			loop.Stop()
		}
	})

	observability.Info("FormChassis running",
		"functions", a.bundles.Count(),
		"select_window", s.selects,
	)
	err := loop.Run(ctx)
	s.closeAll()
	if startErr != nil {
		return startErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) start() error {
	if len(s.opts.Argv) > 0 {
		name := s.opts.Argv[0]
		w, err := s.Open(name)
		if err != nil {
			return err
		}
		if err := applyArgv(w, s.opts.Argv[1:]); err != nil {
			return err
		}
	} else if !s.selects {
		if _, err := s.Open(s.app.bundles.Names()[0]); err != nil {
			return err
		}
	}
	return s.opts.Toolkit.Start(s)
}

// applyArgv 设置 name=value 形式的参数初值，先检查全部参数名再逐个设置
func applyArgv(w *window.ExecuteWindow, argv []string) error {
	type pair struct{ name, text string }
	pairs := make([]pair, 0, len(argv))
	for _, arg := range argv {
		name, text, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid argument %q, want name=value", arg)
		}
		if _, ok := w.ParameterWidget(name); !ok {
			return fmt.Errorf("%w: %s", window.ErrUnknownParameter, name)
		}
		pairs = append(pairs, pair{name, text})
	}

	for _, p := range pairs {
		if err := SetParameterText(w, p.name, p.text); err != nil {
			return err
		}
	}
	return nil
}

// SetParameterText 以文本设置参数
// 控件支持文本输入时按控件自己的规则解析，否则按字面量解析
func SetParameterText(w *window.ExecuteWindow, name, text string) error {
	pw, ok := w.ParameterWidget(name)
	if !ok {
		return fmt.Errorf("%w: %s", window.ErrUnknownParameter, name)
	}
	if ts, ok := pw.(widget.TextSetter); ok {
		return ts.SetText(text)
	}
	return pw.SetValue(value.ParseLiteralOr(text))
}

// App 所属应用
func (s *Session) App() *App { return s.app }

// Options 运行选项
func (s *Session) Options() RunOptions { return s.opts }

// ShowSelectWindow 是否需要显示函数选择窗口
func (s *Session) ShowSelectWindow() bool { return s.selects }

// Bridge 工作协程使用的桥接
func (s *Session) Bridge() *bridge.Bridge { return s.bridge }

// Bundles 按注册顺序返回函数包
func (s *Session) Bundles() []*window.FnBundle { return s.app.Bundles() }

// Groups 按函数分组返回函数名，分组按首次出现的顺序
func (s *Session) Groups() ([]string, map[string][]string) {
	var order []string
	groups := make(map[string][]string)
	for _, b := range s.app.Bundles() {
		g := b.FnInfo.Group
		if g == "" {
			g = s.opts.SelectWindowConfig.DefaultGroup
		}
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], b.FnInfo.Name)
	}
	return order, groups
}

// Windows 当前打开的执行窗口
func (s *Session) Windows() []*window.ExecuteWindow {
	return append([]*window.ExecuteWindow(nil), s.windows...)
}

// Post 把闭包投递到 UI 线程，可在任意 goroutine 调用
func (s *Session) Post(fn func()) bool {
	return s.loop.Post(fn)
}

// Quit 结束运行，可在任意 goroutine 调用
func (s *Session) Quit() {
	s.loop.Stop()
}

// Open 打开函数的执行窗口
func (s *Session) Open(name string) (*window.ExecuteWindow, error) {
	b, ok := s.app.bundles.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	host, err := s.opts.Toolkit.NewHost(b)
	if err != nil {
		return nil, fmt.Errorf("create host for %s: %w", name, err)
	}

	// 包装监听器以便在窗口销毁时更新会话
	bundle := *b
	bundle.WindowListener = &sessionListener{inner: b.WindowListener, session: s}

	w, err := window.New(&bundle, host,
		window.WithBridge(s.bridge),
		window.WithDispatcher(s.loop),
		window.WithContext(s.ctx),
	)
	if err != nil {
		return nil, err
	}
	if repo := s.app.History(); repo != nil {
		history.NewRecorder(repo).Attach(w.Runner())
	}

	s.windows = append(s.windows, w)
	w.Show()
	observability.Info("Execute window opened", "function", name)
	return w, nil
}

func (s *Session) closeAll() {
	for _, w := range s.Windows() {
		if err := w.Close(); err != nil {
			observability.Warn("Window not closed on exit",
				"function", w.Bundle().FnInfo.Name,
				"error", err,
			)
		}
	}
}

func (s *Session) remove(w *window.ExecuteWindow) {
	for i, existing := range s.windows {
		if existing == w {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			break
		}
	}
	// 没有选择窗口时，最后一个执行窗口关闭即退出
	if len(s.windows) == 0 && !s.selects {
		s.loop.Stop()
	}
}

// sessionListener 转发到用户的窗口监听器
type sessionListener struct {
	inner   window.Listener
	session *Session
}

func (l *sessionListener) OnCreate(w *window.ExecuteWindow) {
	if l.inner != nil {
		l.inner.OnCreate(w)
	}
}

func (l *sessionListener) OnShow(w *window.ExecuteWindow) {
	if l.inner != nil {
		l.inner.OnShow(w)
	}
}

func (l *sessionListener) OnHide(w *window.ExecuteWindow) {
	if l.inner != nil {
		l.inner.OnHide(w)
	}
}

func (l *sessionListener) OnClose(w *window.ExecuteWindow) bool {
	if l.inner != nil {
		return l.inner.OnClose(w)
	}
	return true
}

func (l *sessionListener) OnDestroy(w *window.ExecuteWindow) {
	if l.inner != nil {
		l.inner.OnDestroy(w)
	}
	l.session.remove(w)
}
