package warehouse

import (
	"context"
	"sync"

	"go-analytics-pipeline/internal/model"
)

// Executor is a query executor that owns a client.
type Executor interface {
	Execute(ctx context.Context, spec model.ReportSpec) (model.RecordSet, error)
	Close() error
}

// LazyExecutor opens its executor on the first Execute, so commands that
// never query do not need warehouse credentials.
type LazyExecutor struct {
	mu   sync.Mutex
	open func(ctx context.Context) (Executor, error)
	exec Executor
}

func NewLazyExecutor(open func(ctx context.Context) (Executor, error)) *LazyExecutor {
	return &LazyExecutor{open: open}
}

// NewLazyBigQueryExecutor defers NewBigQueryExecutor until the first query.
func NewLazyBigQueryExecutor(projectID, credentialsFile string) *LazyExecutor {
	return NewLazyExecutor(func(ctx context.Context) (Executor, error) {
		return NewBigQueryExecutor(ctx, projectID, credentialsFile)
	})
}

func (l *LazyExecutor) Execute(ctx context.Context, spec model.ReportSpec) (model.RecordSet, error) {
	exec, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return exec.Execute(ctx, spec)
}

func (l *LazyExecutor) get(ctx context.Context) (Executor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exec != nil {
		return l.exec, nil
	}
	// The client outlives the request that opened it.
	exec, err := l.open(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	l.exec = exec
	return exec, nil
}

// Close closes the executor if it was ever opened.
func (l *LazyExecutor) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exec == nil {
		return nil
	}
	err := l.exec.Close()
	l.exec = nil
	return err
}
