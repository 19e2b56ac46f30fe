// Package service exposes the two entry points, process and update
// dashboard, on top of the pipeline runner and the dashboard updater.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/logger"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/pipeline"
)

// History records runs. The run store satisfies it.
type History interface {
	SaveRun(ctx context.Context, run model.Run) error
	FinishRun(ctx context.Context, run model.Run) error
	SaveRunError(ctx context.Context, runID string, err error) error
}

// Dashboard refreshes the dashboard from the published artifacts. The result
// document is always filled in; err carries the tagged failure.
type Dashboard interface {
	Update(ctx context.Context) (model.RefreshResult, error)
}

// Service runs the entry points. dashboardErr explains a nil dashboard.
type Service struct {
	runner       *pipeline.Runner
	dashboard    Dashboard
	dashboardErr error
	history      History
	metrics      *metrics.Metrics
	now          func() time.Time
	newID        func() string
	closers      []io.Closer
}

type Option func(*Service)

func WithHistory(h History) Option { return func(s *Service) { s.history = h } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// WithDashboardError marks the dashboard as unavailable for the given reason.
func WithDashboardError(err error) Option { return func(s *Service) { s.dashboardErr = err } }

func withCloser(c io.Closer) Option { return func(s *Service) { s.closers = append(s.closers, c) } }

// New creates a Service. dashboard may be nil when the dashboard is not
// configured; UpdateDashboard then reports a config error.
func New(runner *pipeline.Runner, dashboard Dashboard, opts ...Option) *Service {
	s := &Service{
		runner:    runner,
		dashboard: dashboard,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the collectors the service records into, possibly nil.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// Process runs every report of the catalog and publishes the results.
func (s *Service) Process(ctx context.Context) model.PipelineResult {
	ctx, run := s.begin(ctx, model.RunKindProcess)

	if s.runner == nil {
		err := apperror.Config("pipeline", errors.New("runner is not configured"))
		s.finish(ctx, run, model.StatusError, nil, err)
		return model.PipelineFailure(s.now(), err)
	}

	summary, err := s.runner.Execute(ctx)
	result := s.runner.Result(summary, err)
	s.finish(ctx, run, result.Status, summary.Keys, err)
	return result
}

// UpdateDashboard refreshes the dashboard once all artifacts are present.
func (s *Service) UpdateDashboard(ctx context.Context) model.RefreshResult {
	ctx, run := s.begin(ctx, model.RunKindDashboard)

	if s.dashboard == nil {
		err := s.dashboardErr
		if err == nil {
			err = apperror.Config("datastudio", errors.New("dashboard is not configured"))
		}
		s.metrics.RecordRefresh(model.StatusError)
		s.finish(ctx, run, model.StatusError, nil, err)
		return model.RefreshFailure(s.now(), err)
	}

	result, err := s.dashboard.Update(ctx)
	s.finish(ctx, run, result.Status, nil, err)
	return result
}

func (s *Service) begin(ctx context.Context, kind string) (context.Context, model.Run) {
	run := model.Run{
		ID:        s.newID(),
		Kind:      kind,
		Status:    model.StatusRunning,
		StartedAt: s.now(),
	}
	ctx = logger.WithRunID(ctx, run.ID)
	slog.InfoContext(ctx, "run started", "kind", kind)

	if s.history != nil {
		if err := s.history.SaveRun(ctx, run); err != nil {
			slog.WarnContext(ctx, "failed to record run", "error", err)
		}
	}
	return ctx, run
}

func (s *Service) finish(ctx context.Context, run model.Run, status string, files []string, runErr error) {
	finished := s.now()
	run.Status = status
	run.Files = files
	run.FinishedAt = &finished
	if runErr != nil {
		run.Message = runErr.Error()
	}
	slog.InfoContext(ctx, "run finished", "kind", run.Kind, "status", status, "duration_ms", finished.Sub(run.StartedAt).Milliseconds())

	if s.history == nil {
		return
	}
	if err := s.history.FinishRun(ctx, run); err != nil {
		slog.WarnContext(ctx, "failed to record run result", "error", err)
	}
	if runErr != nil {
		if err := s.history.SaveRunError(ctx, run.ID, runErr); err != nil {
			slog.WarnContext(ctx, "failed to record run error", "error", err)
		}
	}
}

// Close releases the clients the service owns.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunReader reads the recorded run history.
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	GetRun(ctx context.Context, id string) (model.Run, error)
	ListRunErrors(ctx context.Context, runID string) ([]model.RunError, error)
}

// Runs returns the run history when one is configured and readable.
func (s *Service) Runs() (RunReader, bool) {
	r, ok := s.history.(RunReader)
	return r, ok
}
