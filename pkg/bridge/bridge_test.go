package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KodaTao/FormChassis/pkg/ui"
)

func startBridge(t *testing.T) (*Bridge, *ui.Loop) {
	t.Helper()
	loop := ui.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return New(loop, nil), loop
}

type recordingHandler struct {
	mu       sync.Mutex
	requests []Request
	reply    func(Request) (any, error)
}

func (h *recordingHandler) HandleRequest(req Request) (any, error) {
	h.mu.Lock()
	h.requests = append(h.requests, req)
	h.mu.Unlock()
	if h.reply != nil {
		return h.reply(req)
	}
	return nil, nil
}

func (h *recordingHandler) ops() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := make([]string, len(h.requests))
	for i, r := range h.requests {
		ops[i] = r.Op()
	}
	return ops
}

func TestGetString(t *testing.T) {
	b, _ := startBridge(t)
	h := &recordingHandler{reply: func(req Request) (any, error) {
		in, ok := req.(*InputRequest)
		if !ok || in.Kind != StringInput {
			return nil, errors.New("unexpected request")
		}
		return "hello", nil
	}}
	b.Bind(h)

	ctx := WithBridge(context.Background(), b)
	got, err := GetString(ctx, "Name", "Your name")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestGetInputCanceled(t *testing.T) {
	b, _ := startBridge(t)
	b.Bind(&recordingHandler{})

	ctx := WithBridge(context.Background(), b)
	_, err := GetInt(ctx, "Count", "How many", WithRange(0, 10))
	assert.ErrorIs(t, err, ErrInputCanceled)
}

func TestRequestsKeepOrder(t *testing.T) {
	b, _ := startBridge(t)
	h := &recordingHandler{}
	b.Bind(h)

	ctx := WithBridge(context.Background(), b)
	require.NoError(t, PrintOutput(ctx, "a", 1))
	require.NoError(t, UpdateProgress(ctx, 50, "half"))
	require.NoError(t, ClearOutput(ctx))
	require.NoError(t, ShowProgressbar(ctx, ProgressbarConfig{Max: 100}))
	require.NoError(t, HideProgressbar(ctx))

	assert.Equal(t, []string{"append_output", "update_progress", "clear_output", "progressbar", "progressbar"}, h.ops())

	first := h.requests[0].(*AppendOutputRequest)
	assert.Equal(t, "a 1", first.Text)
	assert.True(t, first.ScrollToBottom)
}

func TestNoActiveWindow(t *testing.T) {
	_, err := GetString(context.Background(), "t", "l")
	assert.ErrorIs(t, err, ErrNoActiveWindow)

	b, _ := startBridge(t)
	ctx := WithBridge(context.Background(), b)
	err = PrintOutput(ctx, "x")
	assert.ErrorIs(t, err, ErrNoActiveWindow)

	h := &recordingHandler{}
	b.Bind(h)
	b.Unbind(&recordingHandler{})
	assert.Same(t, h, b.Active(), "Unbind of another handler must not clear the active one")
	b.Unbind(h)
	assert.Nil(t, b.Active())
}

func TestLoopStopped(t *testing.T) {
	loop := ui.NewLoop()
	go loop.Run(context.Background())
	loop.Stop()
	<-loop.Done()

	b := New(loop, nil)
	b.Bind(&recordingHandler{})
	_, err := b.Request(context.Background(), &ClearOutputRequest{})
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestRequestUnblocksWhenLoopStops(t *testing.T) {
	b, loop := startBridge(t)
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	b.Bind(HandlerFunc(func(req Request) (any, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return "late", nil
	}))

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Request(context.Background(), &InputRequest{})
		errCh <- err
	}()

	// 第一个请求阻塞在 UI 线程上，第二个请求排在队列中
	<-entered
	go func() {
		_, _ = b.Request(context.Background(), &ClearOutputRequest{})
	}()
	loop.Stop()
	close(release)

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("request did not return")
	}
}

func TestMessageBoxes(t *testing.T) {
	b, _ := startBridge(t)
	b.Bind(HandlerFunc(func(req Request) (any, error) {
		mb := req.(*MessageBoxRequest)
		return mb.DefaultButton, nil
	}))
	ctx := WithBridge(context.Background(), b)

	got, err := ShowQuestionMessageBox(ctx, "Continue?")
	require.NoError(t, err)
	assert.Equal(t, ButtonYes, got)

	got, err = ShowInfoMessageBox(ctx, "Done", WithTitle("Info"), WithButtons(ButtonCancel, ButtonOk, ButtonCancel))
	require.NoError(t, err)
	assert.Equal(t, ButtonCancel, got)
}

func TestCustomDialog(t *testing.T) {
	b, _ := startBridge(t)
	b.Bind(HandlerFunc(func(req Request) (any, error) {
		return req.(*CustomDialogRequest).Show("window")
	}))
	require.NoError(t, b.Dialogs().Register("confirm", func(parent any, options map[string]any) (any, error) {
		return parent.(string) + ":" + options["text"].(string), nil
	}, false))
	ctx := WithBridge(context.Background(), b)

	got, err := ShowCustomDialog(ctx, "confirm", map[string]any{"text": "ok"})
	require.NoError(t, err)
	assert.Equal(t, "window:ok", got)

	_, err = ShowCustomDialog(ctx, "missing", nil)
	var notReg *NotRegisteredError
	assert.ErrorAs(t, err, &notReg)
}

func TestDialogRegistry(t *testing.T) {
	r := NewDialogRegistry()
	f := func(parent any, options map[string]any) (any, error) { return nil, nil }

	require.NoError(t, r.Register("a", f, false))
	var dup *AlreadyRegisteredError
	assert.ErrorAs(t, r.Register("a", f, false), &dup)
	assert.NoError(t, r.Register("a", f, true))
	assert.Equal(t, []string{"a"}, r.Names())

	require.NoError(t, r.Unregister("a"))
	var notReg *NotRegisteredError
	assert.ErrorAs(t, r.Unregister("a"), &notReg)
}

func TestFuture(t *testing.T) {
	f := NewFuture()
	assert.True(t, f.Resolve(1, nil))
	assert.False(t, f.Resolve(2, nil))
	got, err := f.Result()
	assert.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestIsFunctionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, IsFunctionCancelled(ctx))
	cancel()
	assert.True(t, IsFunctionCancelled(ctx))
}

func TestHandlerPanicResolvesRequest(t *testing.T) {
	b, _ := startBridge(t)
	b.Bind(HandlerFunc(func(req Request) (any, error) {
		if inv, ok := req.(*InvokeRequest); ok {
			return inv.Fn(nil)
		}
		return nil, nil
	}))
	ctx := WithBridge(context.Background(), b)

	errCh := make(chan error, 1)
	go func() {
		_, err := GetInput(ctx, func(any) (any, error) { panic("dialog boom") })
		errCh <- err
	}()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrRequestPanicked)
		assert.Contains(t, err.Error(), "dialog boom")
	case <-time.After(2 * time.Second):
		t.Fatal("request did not return after the handler panicked")
	}

	// 循环仍然可用
	require.NoError(t, PrintOutput(ctx, "still alive"))
}

func TestRunHandlerOverridesActive(t *testing.T) {
	b, _ := startBridge(t)
	first := &recordingHandler{}
	second := &recordingHandler{}
	b.Bind(first)

	ctx := WithHandler(WithBridge(context.Background(), b), first)
	b.Bind(second)

	require.NoError(t, PrintOutput(ctx, "to first"))
	require.NoError(t, PrintOutput(WithBridge(context.Background(), b), "to active"))

	assert.Equal(t, []string{"append_output"}, first.ops())
	assert.Equal(t, []string{"append_output"}, second.ops())
}
