package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KodaTao/FormChassis/pkg/executor"
	"github.com/KodaTao/FormChassis/pkg/function"
	"github.com/KodaTao/FormChassis/pkg/storage"
	"github.com/KodaTao/FormChassis/pkg/value"
)

// setupTestRepo 创建内存数据库
func setupTestRepo(t *testing.T) *Repository {
	db, err := storage.Open(storage.Config{Path: storage.MemoryPath}, &ExecutionRecord{})
	require.NoError(t, err)
	return NewRepository(db)
}

func run(t *testing.T, e *executor.Executor, info *function.FnInfo, args *function.Arguments) {
	t.Helper()
	require.NoError(t, e.Execute(context.Background(), info, args))
	e.Wait()
}

func TestRecorder(t *testing.T) {
	repo := setupTestRepo(t)
	e := executor.New()
	NewRecorder(repo).Attach(e)

	ok := &function.FnInfo{Name: "add", Fn: func(ctx context.Context, args *function.Arguments) (any, error) {
		return 3, nil
	}}
	args := function.NewArguments()
	args.Set("a", value.Int(1))
	run(t, e, ok, args)
	firstRun := e.RunID()

	bad := &function.FnInfo{Name: "check", Fn: func(ctx context.Context, args *function.Arguments) (any, error) {
		return nil, function.NewParameterError("x", "must be positive")
	}}
	run(t, e, bad, nil)

	boom := &function.FnInfo{Name: "check", Fn: func(ctx context.Context, args *function.Arguments) (any, error) {
		return nil, errors.New("boom")
	}}
	run(t, e, boom, nil)

	rec, err := repo.GetByRunID(firstRun)
	require.NoError(t, err)
	assert.Equal(t, "add", rec.Function)
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.Equal(t, "3", rec.Message)
	assert.JSONEq(t, `{"a":"1"}`, rec.Arguments)
	assert.False(t, rec.Failed())

	records, err := repo.List(Filter{Function: "check"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	failed, err := repo.List(Filter{Status: StatusParameterError})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "x", failed[0].Parameter)
	assert.Equal(t, "must be positive", failed[0].Message)

	counts, err := repo.CountByStatus("check")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[StatusParameterError])
	assert.Equal(t, int64(1), counts[StatusRuntimeError])
}

func TestRecorderCancelled(t *testing.T) {
	repo := setupTestRepo(t)
	e := executor.New()
	NewRecorder(repo).Attach(e)

	started := make(chan struct{})
	info := &function.FnInfo{Name: "wait", Fn: func(ctx context.Context, args *function.Arguments) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, nil
	}}
	require.NoError(t, e.Execute(context.Background(), info, nil))
	<-started
	require.NoError(t, e.TryCancel())
	e.Wait()

	rec, err := repo.GetByRunID(e.RunID())
	require.NoError(t, err)
	assert.True(t, rec.Cancelled)
	assert.Equal(t, StatusSuccess, rec.Status)
}

func TestRepository_Prune(t *testing.T) {
	repo := setupTestRepo(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(&ExecutionRecord{RunID: string(rune('a' + i)), Function: "f", Status: StatusSuccess}))
	}

	removed, err := repo.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	records, err := repo.List(Filter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = repo.GetByRunID("a")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
