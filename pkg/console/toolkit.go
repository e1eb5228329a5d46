package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/KodaTao/FormChassis/pkg/chassis"
	"github.com/KodaTao/FormChassis/pkg/observability"
	"github.com/KodaTao/FormChassis/pkg/window"
)

var _ chassis.Toolkit = (*Toolkit)(nil)

// Toolkit 终端界面工具包
//
// 输入流中的每一行是一条命令，输入结束后等待所有运行结束再退出
type Toolkit struct {
	in     io.Reader
	out    io.Writer
	styles *Styles

	// AutoExecute 启动后立即执行已打开的窗口
	AutoExecute bool

	mu      sync.Mutex
	outMu   sync.Mutex
	waiting chan string
	eof     bool
	session *chassis.Session
	hosts   []*Host
	current *window.ExecuteWindow
}

// New 创建工具包，styles 为 nil 时使用默认样式
func New(in io.Reader, out io.Writer, styles *Styles) *Toolkit {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Toolkit{in: in, out: out, styles: styles}
}

// NewHost 实现 chassis.Toolkit
func (t *Toolkit) NewHost(bundle *window.FnBundle) (window.Host, error) {
	h := &Host{toolkit: t, name: bundle.FnInfo.Name}
	t.mu.Lock()
	t.hosts = append(t.hosts, h)
	t.mu.Unlock()
	return h, nil
}

// Start 实现 chassis.Toolkit
func (t *Toolkit) Start(s *chassis.Session) error {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()

	if windows := s.Windows(); len(windows) > 0 {
		t.current = windows[len(windows)-1]
	}
	if s.ShowSelectWindow() {
		t.printSelect(s)
	}
	if t.AutoExecute && t.current != nil {
		t.execute()
	}

	go t.pump()
	return nil
}

// pump 逐行读取输入；有模态输入等待时把行交给它，否则作为命令投递到 UI 线程
func (t *Toolkit) pump() {
	scanner := bufio.NewScanner(t.in)
	for scanner.Scan() {
		line := scanner.Text()

		t.mu.Lock()
		waiting := t.waiting
		t.waiting = nil
		session := t.session
		t.mu.Unlock()

		if waiting != nil {
			waiting <- line
			continue
		}
		session.Post(func() { t.command(line) })
	}
	if err := scanner.Err(); err != nil {
		observability.Warn("Console input failed", "error", err)
	}

	t.mu.Lock()
	t.eof = true
	if t.waiting != nil {
		close(t.waiting)
		t.waiting = nil
	}
	session := t.session
	t.mu.Unlock()

	session.Post(t.quitIfIdle)
}

// readLine 在 UI 线程中阻塞读取下一行，输入结束时返回 false
func (t *Toolkit) readLine(prompt string) (string, bool) {
	t.mu.Lock()
	if t.eof {
		t.mu.Unlock()
		return "", false
	}
	ch := make(chan string, 1)
	t.waiting = ch
	t.mu.Unlock()

	t.print(t.styles.Prompt.Render(prompt))
	line, ok := <-ch
	return line, ok
}

// quitIfIdle 输入结束且没有运行中的函数时退出
func (t *Toolkit) quitIfIdle() {
	t.mu.Lock()
	eof := t.eof
	session := t.session
	t.mu.Unlock()
	if !eof || session == nil {
		return
	}
	for _, w := range session.Windows() {
		if w.Runner().IsExecuting() {
			return
		}
	}
	session.Quit()
}

func (t *Toolkit) command(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "help", "?":
		t.printHelp()
	case "list", "ls":
		t.printSelect(t.session)
	case "open":
		if len(args) != 1 {
			err = fmt.Errorf("usage: open <function>")
			break
		}
		var w *window.ExecuteWindow
		if w, err = t.session.Open(args[0]); err == nil {
			t.current = w
		}
	case "set":
		err = t.set(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))
	case "show":
		err = t.show()
	case "run", "execute", "x":
		err = t.execute()
	case "cancel":
		err = t.withWindow(func(w *window.ExecuteWindow) error { return w.OnCancel() })
	case "clear":
		err = t.withWindow(func(w *window.ExecuteWindow) error { return w.OnClear() })
	case "action":
		if len(args) != 1 {
			err = fmt.Errorf("usage: action <id>")
			break
		}
		err = t.withWindow(func(w *window.ExecuteWindow) error { return w.TriggerAction(args[0]) })
	case "close":
		err = t.withWindow(func(w *window.ExecuteWindow) error {
			if err := w.Close(); err != nil {
				return err
			}
			t.current = nil
			if windows := t.session.Windows(); len(windows) > 0 {
				t.current = windows[len(windows)-1]
			}
			return nil
		})
	case "quit", "exit":
		t.session.Quit()
	default:
		err = fmt.Errorf("unknown command %q, type help for usage", cmd)
	}
	if err != nil {
		t.println(t.styles.Error.Render(err.Error()))
	}
}

func (t *Toolkit) withWindow(fn func(w *window.ExecuteWindow) error) error {
	if t.current == nil || t.current.IsClosed() {
		return fmt.Errorf("no window is open, use: open <function>")
	}
	return fn(t.current)
}

func (t *Toolkit) execute() error {
	return t.withWindow(func(w *window.ExecuteWindow) error { return w.OnExecute() })
}

func (t *Toolkit) set(assignment string) error {
	name, text, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("usage: set <name>=<value>")
	}
	return t.withWindow(func(w *window.ExecuteWindow) error {
		return chassis.SetParameterText(w, strings.TrimSpace(name), strings.TrimSpace(text))
	})
}

func (t *Toolkit) show() error {
	return t.withWindow(func(w *window.ExecuteWindow) error {
		for _, g := range w.Groups() {
			t.println(t.styles.Group.Render(g.Name))
			for _, name := range g.Parameters {
				pw, _ := w.ParameterWidget(name)
				v, err := pw.GetValue()
				text := v.Repr()
				if err != nil {
					text = t.styles.Error.Render(err.Error())
				}
				t.println(fmt.Sprintf("  %s = %s", t.styles.Label.Render(pw.Label()), text))
			}
		}
		return nil
	})
}

func (t *Toolkit) printSelect(s *chassis.Session) {
	cfg := s.Options().SelectWindowConfig
	t.println(t.styles.Title.Render(cfg.Title))
	order, groups := s.Groups()
	for _, g := range order {
		t.println(t.styles.Group.Render(g))
		for _, name := range groups[g] {
			b, _ := s.App().GetBundle(name)
			t.println(fmt.Sprintf("  %s %s", t.styles.Label.Render(name), t.styles.Muted.Render(b.FnInfo.DisplayName)))
		}
	}
}

func (t *Toolkit) printHelp() {
	t.println(strings.Join([]string{
		"list                 list functions",
		"open <function>      open an execute window",
		"set <name>=<value>   set a parameter",
		"show                 show parameter values",
		"run                  execute the function",
		"cancel               request cancellation",
		"clear                clear the output",
		"action <id>          trigger a toolbar or menu action",
		"close                close the current window",
		"quit                 exit",
	}, "\n"))
}

func (t *Toolkit) print(s string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprint(t.out, s)
}

func (t *Toolkit) println(s string) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprintln(t.out, s)
}
