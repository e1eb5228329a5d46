package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/ui"
)

// recorder 记录事件顺序
type recorder struct {
	mu     sync.Mutex
	events []string
	err    *function.ExecuteError
	result any
	onDone func()
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) BeforeExecute(*function.FnInfo, *function.Arguments) { r.add("before") }
func (r *recorder) OnExecuteStart(*function.FnInfo)                     { r.add("start") }
func (r *recorder) OnExecuteResult(_ *function.FnInfo, result any) {
	r.mu.Lock()
	r.result = result
	r.mu.Unlock()
	r.add("result")
}
func (r *recorder) OnExecuteError(_ *function.FnInfo, err *function.ExecuteError) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	r.add("error")
}
func (r *recorder) OnExecuteFinish(*function.FnInfo) {
	r.add("finish")
	if r.onDone != nil {
		r.onDone()
	}
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func fnInfo(name string, fn function.CallFunc) *function.FnInfo {
	return &function.FnInfo{Name: name, Fn: fn, Parameters: function.NewParameterMap()}
}

func equal(a, b []string) bool {
	return strings.Join(a, ",") == strings.Join(b, ",")
}

func TestExecute_Success(t *testing.T) {
	rec := &recorder{}
	e := New(WithListener(rec))

	args := function.NewArguments()
	err := e.Execute(context.Background(), fnInfo("add", func(ctx context.Context, args *function.Arguments) (any, error) {
		return 3, nil
	}), args)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	e.Wait()

	if want := []string{"before", "start", "result", "finish"}; !equal(rec.got(), want) {
		t.Errorf("events = %v, want %v", rec.got(), want)
	}
	if rec.result != 3 {
		t.Errorf("result = %v, want 3", rec.result)
	}
	if e.IsExecuting() {
		t.Error("executor should be idle after finish")
	}
	if e.RunID() == "" {
		t.Error("run id should be assigned")
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fn       function.CallFunc
		wantKind function.ErrorKind
		wantMsg  string
	}{
		{
			name: "runtime error",
			fn: func(context.Context, *function.Arguments) (any, error) {
				return nil, fmt.Errorf("wrapped: %w", errors.New("boom"))
			},
			wantKind: function.RuntimeErrorKind,
			wantMsg:  "boom",
		},
		{
			name: "parameter error",
			fn: func(context.Context, *function.Arguments) (any, error) {
				return nil, function.NewParameterError("a", "must be positive")
			},
			wantKind: function.ParameterErrorKind,
			wantMsg:  "must be positive",
		},
		{
			name: "panic",
			fn: func(context.Context, *function.Arguments) (any, error) {
				panic("kaboom")
			},
			wantKind: function.RuntimeErrorKind,
			wantMsg:  "kaboom",
		},
		{
			name: "panic with parameter error",
			fn: func(context.Context, *function.Arguments) (any, error) {
				panic(function.NewParameterError("b", "bad"))
			},
			wantKind: function.ParameterErrorKind,
			wantMsg:  "bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			e := New(WithListener(rec))
			if err := e.Execute(context.Background(), fnInfo("f", tt.fn), nil); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			e.Wait()

			if want := []string{"before", "start", "error", "finish"}; !equal(rec.got(), want) {
				t.Fatalf("events = %v, want %v", rec.got(), want)
			}
			if rec.err.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", rec.err.Kind, tt.wantKind)
			}
			if !strings.Contains(rec.err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", rec.err.Error(), tt.wantMsg)
			}
			if rec.err.Traceback == "" {
				t.Error("Traceback should not be empty")
			}
		})
	}
}

func TestExecute_AlreadyExecuting(t *testing.T) {
	rec := &recorder{}
	e := New(WithListener(rec))

	release := make(chan struct{})
	info := fnInfo("slow", func(context.Context, *function.Arguments) (any, error) {
		<-release
		return nil, nil
	})
	if err := e.Execute(context.Background(), info, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if err := e.Execute(context.Background(), info, nil); !errors.Is(err, ErrAlreadyExecuting) {
		t.Errorf("second Execute() = %v, want ErrAlreadyExecuting", err)
	}
	close(release)
	e.Wait()

	// 第二次调用不应产生任何事件
	if want := []string{"before", "start", "result", "finish"}; !equal(rec.got(), want) {
		t.Errorf("events = %v, want %v", rec.got(), want)
	}
}

func TestTryCancel(t *testing.T) {
	e := New()
	if err := e.TryCancel(); !errors.Is(err, ErrNotExecuting) {
		t.Errorf("TryCancel() when idle = %v, want ErrNotExecuting", err)
	}

	rec := &recorder{}
	e.AddListener(rec)
	started := make(chan struct{})
	info := fnInfo("loop", func(ctx context.Context, _ *function.Arguments) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, nil
	})
	if err := e.Execute(context.Background(), info, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	<-started
	if err := e.TryCancel(); err != nil {
		t.Fatalf("TryCancel() error = %v", err)
	}
	if !e.IsCancelled() {
		t.Error("IsCancelled() should be true after TryCancel")
	}
	e.Wait()

	// 取消后正常返回视为成功
	if want := []string{"before", "start", "result", "finish"}; !equal(rec.got(), want) {
		t.Errorf("events = %v, want %v", rec.got(), want)
	}
}

func TestIdleBeforeFinish(t *testing.T) {
	e := New()
	var stateInFinish State = -1
	rec := &recorder{onDone: func() { stateInFinish = e.State() }}
	e.AddListener(rec)

	if err := e.Execute(context.Background(), fnInfo("f", func(context.Context, *function.Arguments) (any, error) {
		return nil, nil
	}), nil); err != nil {
		t.Fatal(err)
	}
	e.Wait()
	if stateInFinish != Idle {
		t.Errorf("state during OnExecuteFinish = %v, want IDLE", stateInFinish)
	}
}

func TestRemoveListener(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	e := New()
	e.AddListener(a)
	e.AddListener(a)
	e.AddListener(b)
	e.RemoveListener(b)

	if err := e.Execute(context.Background(), fnInfo("f", func(context.Context, *function.Arguments) (any, error) {
		return nil, nil
	}), nil); err != nil {
		t.Fatal(err)
	}
	e.Wait()

	if len(a.got()) != 4 {
		t.Errorf("listener a got %d events, want 4", len(a.got()))
	}
	if len(b.got()) != 0 {
		t.Errorf("removed listener got %v", b.got())
	}
}

func TestEventsOnDispatcher(t *testing.T) {
	loop := ui.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	defer func() {
		cancel()
		<-loop.Done()
	}()

	rec := &recorder{}
	finished := make(chan struct{})
	rec.onDone = func() { close(finished) }

	factory := NewFactory(WithListener(rec))
	runner := factory(loop)

	// 在 UI 线程上启动，与窗口的用法一致
	if err := loop.Call(func() {
		if err := runner.Execute(context.Background(), fnInfo("f", func(context.Context, *function.Arguments) (any, error) {
			return "ok", nil
		}), nil); err != nil {
			t.Errorf("Execute() error = %v", err)
		}
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("OnExecuteFinish not delivered")
	}
	if want := []string{"before", "start", "result", "finish"}; !equal(rec.got(), want) {
		t.Errorf("events = %v, want %v", rec.got(), want)
	}
	if runner.IsExecuting() {
		t.Error("runner should be idle")
	}
}

func TestStateString(t *testing.T) {
	if Running.String() != "RUNNING" || State(42).String() != "UNKNOWN" {
		t.Error("unexpected State.String() output")
	}
}
