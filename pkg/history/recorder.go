package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/observability"
)

// runSource 提供运行 ID 与取消状态的执行器
type runSource interface {
	RunID() string
	IsCancelled() bool
}

// Recorder 执行监听器，在每次运行结束时写入一条记录
type Recorder struct {
	function.NopListener

	repo *Repository

	mu      sync.Mutex
	runner  function.Runner
	current *ExecutionRecord
}

// NewRecorder 创建记录器
func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Attach 把记录器注册到执行器
func (r *Recorder) Attach(runner function.Runner) *Recorder {
	r.mu.Lock()
	r.runner = runner
	r.mu.Unlock()

	runner.AddListener(r)
	return r
}

// BeforeExecute 实现 function.ExecutionListener
func (r *Recorder) BeforeExecute(info *function.FnInfo, args *function.Arguments) {
	rec := &ExecutionRecord{
		RunID:     r.runID(),
		Function:  info.Name,
		StartedAt: time.Now(),
		Arguments: encodeArguments(args),
	}

	r.mu.Lock()
	r.current = rec
	r.mu.Unlock()
}

// OnExecuteResult 实现 function.ExecutionListener
func (r *Recorder) OnExecuteResult(_ *function.FnInfo, result any) {
	r.update(func(rec *ExecutionRecord) {
		rec.Status = StatusSuccess
		if result != nil {
			rec.Message = fmt.Sprint(result)
		}
	})
}

// OnExecuteError 实现 function.ExecutionListener
func (r *Recorder) OnExecuteError(_ *function.FnInfo, err *function.ExecuteError) {
	r.update(func(rec *ExecutionRecord) {
		rec.Status = Status(err.Kind.String())
		rec.Message = err.Err.Error()
		if pe, ok := err.ParameterError(); ok {
			rec.Parameter = pe.ParameterName
			rec.Message = pe.Message
		}
	})
}

// OnExecuteFinish 实现 function.ExecutionListener
func (r *Recorder) OnExecuteFinish(info *function.FnInfo) {
	r.mu.Lock()
	rec := r.current
	r.current = nil
	runner := r.runner
	r.mu.Unlock()
	if rec == nil {
		return
	}

	rec.DurationMs = time.Since(rec.StartedAt).Milliseconds()
	if src, ok := runner.(runSource); ok {
		rec.Cancelled = src.IsCancelled()
	}
	if err := r.repo.Create(rec); err != nil {
		observability.Error("Failed to save execution record",
			"function", info.Name,
			"run_id", rec.RunID,
			"error", err,
		)
	}
}

func (r *Recorder) update(fn func(rec *ExecutionRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		fn(r.current)
	}
}

func (r *Recorder) runID() string {
	r.mu.Lock()
	runner := r.runner
	r.mu.Unlock()

	if src, ok := runner.(runSource); ok && src.RunID() != "" {
		return src.RunID()
	}
	return uuid.NewString()
}

func encodeArguments(args *function.Arguments) string {
	if args == nil || args.Len() == 0 {
		return ""
	}
	m := make(map[string]string, args.Len())
	for _, name := range args.Names() {
		v, _ := args.Get(name)
		m[name] = v.Repr()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}
