package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/model"
)

// QueryExecutor runs one report query against the data source.
type QueryExecutor interface {
	Execute(ctx context.Context, spec model.ReportSpec) (model.RecordSet, error)
}

// ResultPublisher writes a record set under a key.
type ResultPublisher interface {
	Publish(ctx context.Context, key string, rs model.RecordSet) (model.PublishedArtifact, error)
}

// Summary describes a finished run.
type Summary struct {
	Keys   []string             `json:"keys"`
	Stages []model.StageMetrics `json:"stages"`
}

// Runner executes the catalog in order, publishing each report before moving
// to the next. The first failure stops the run.
type Runner struct {
	executor  QueryExecutor
	publisher ResultPublisher
	catalog   []model.ReportSpec
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Option func(*Runner)

func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }

func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

func NewRunner(executor QueryExecutor, publisher ResultPublisher, catalog []model.ReportSpec, opts ...Option) (*Runner, error) {
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}
	r := &Runner{
		executor:  executor,
		publisher: publisher,
		catalog:   append([]model.ReportSpec(nil), catalog...),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Catalog returns the reports in execution order.
func (r *Runner) Catalog() []model.ReportSpec {
	return append([]model.ReportSpec(nil), r.catalog...)
}

// Execute runs every report. On failure it returns the keys written so far
// together with the tagged error of the failing report.
func (r *Runner) Execute(ctx context.Context) (Summary, error) {
	start := r.now()
	tracker := NewTracker(r.metrics, r.now)
	keys := make([]string, 0, len(r.catalog))

	slog.InfoContext(ctx, "pipeline started", "reports", len(r.catalog))

	for _, spec := range r.catalog {
		tracker.StartStage(spec.Name)

		rows, err := r.executor.Execute(ctx, spec)
		if err != nil {
			tracker.FailStage(spec.Name)
			if apperror.KindOf(err) == apperror.KindUnknown {
				err = apperror.Query(spec.Name, err)
			}
			slog.ErrorContext(ctx, "report query failed", "report", spec.Name, "error", err)
			return Summary{Keys: keys, Stages: tracker.Stages()}, err
		}
		tracker.QueryDone(spec.Name, len(rows))

		artifact, err := r.publisher.Publish(ctx, spec.Key(), rows)
		if err != nil {
			tracker.FailStage(spec.Name)
			if apperror.KindOf(err) == apperror.KindUnknown {
				err = apperror.Publish(spec.Key(), err)
			}
			slog.ErrorContext(ctx, "report publish failed", "report", spec.Name, "key", spec.Key(), "error", err)
			return Summary{Keys: keys, Stages: tracker.Stages()}, err
		}
		tracker.EndStage(spec.Name)

		keys = append(keys, artifact.Key)
		slog.InfoContext(ctx, "report published", "report", spec.Name, "key", artifact.Key, "records", artifact.RecordCount)
	}

	slog.InfoContext(ctx, "pipeline completed", "files", len(keys), "duration_ms", r.now().Sub(start).Milliseconds())
	return Summary{Keys: keys, Stages: tracker.Stages()}, nil
}

// Run executes the catalog and folds the outcome into a result document.
func (r *Runner) Run(ctx context.Context) model.PipelineResult {
	summary, err := r.Execute(ctx)
	return r.Result(summary, err)
}

// Result converts an Execute outcome into the result document.
func (r *Runner) Result(summary Summary, err error) model.PipelineResult {
	if err != nil {
		r.metrics.RecordRun(model.StatusError)
		return model.PipelineFailure(r.now(), err)
	}

	r.metrics.RecordRun(model.StatusSuccess)
	return model.PipelineResult{
		Status:         model.StatusSuccess,
		Timestamp:      model.FormatTimestamp(r.now()),
		FilesProcessed: summary.Keys,
	}
}
