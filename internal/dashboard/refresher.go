package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/pipeline"
)

// Refresher issues a single update call per refresh. It does not retry or
// poll for completion.
type Refresher struct {
	client   Client
	interval int
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Refresher)

func WithMetrics(m *metrics.Metrics) Option { return func(r *Refresher) { r.metrics = m } }

func WithClock(now func() time.Time) Option { return func(r *Refresher) { r.now = now } }

// NewRefresher creates a Refresher that requests the given refresh interval
// in seconds.
func NewRefresher(client Client, interval int, opts ...Option) *Refresher {
	r := &Refresher{client: client, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh points the dashboard at ds and sets its refresh schedule. The
// returned result always describes the outcome; err is the tagged failure.
func (r *Refresher) Refresh(ctx context.Context, dashboardID string, ds DataSource) (model.RefreshResult, error) {
	req := UpdateRequest{
		DataSource:      ds,
		RefreshSchedule: RefreshSchedule{RefreshInterval: r.interval},
	}

	if err := r.client.UpdateReport(ctx, dashboardID, req); err != nil {
		err = apperror.Refresh(dashboardID, err)
		slog.ErrorContext(ctx, "dashboard refresh failed", "dashboard_id", dashboardID, "error", err)
		return r.failure(err), err
	}

	r.metrics.RecordRefresh(model.StatusSuccess)
	slog.InfoContext(ctx, "dashboard refreshed", "dashboard_id", dashboardID, "refresh_interval", r.interval)
	return model.RefreshResult{
		Status:      model.StatusSuccess,
		Timestamp:   model.FormatTimestamp(r.now()),
		DashboardID: dashboardID,
	}, nil
}

func (r *Refresher) failure(err error) model.RefreshResult {
	r.metrics.RecordRefresh(model.StatusError)
	return model.RefreshFailure(r.now(), err)
}

// ArtifactSource reads published artifacts.
type ArtifactSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Updater checks that every artifact of the latest run is readable before
// refreshing the dashboard.
type Updater struct {
	artifacts   ArtifactSource
	refresher   *Refresher
	dashboardID string
	source      DataSource
	keys        []string
}

// NewUpdater creates an Updater over the standard artifact keys.
func NewUpdater(artifacts ArtifactSource, refresher *Refresher, dashboardID string, source DataSource) *Updater {
	return &Updater{
		artifacts:   artifacts,
		refresher:   refresher,
		dashboardID: dashboardID,
		source:      source,
		keys:        model.ArtifactKeys(),
	}
}

// LoadArtifacts reads and decodes every artifact, keyed by artifact key.
func (u *Updater) LoadArtifacts(ctx context.Context) (map[string]model.RecordSet, error) {
	out := make(map[string]model.RecordSet, len(u.keys))
	for _, key := range u.keys {
		data, err := u.artifacts.Get(ctx, key)
		if err != nil {
			return nil, apperror.Refresh("load "+key, err)
		}
		rs, err := pipeline.DecodeRecordSet(data)
		if err != nil {
			return nil, apperror.Refresh("decode "+key, err)
		}
		out[key] = rs
		slog.DebugContext(ctx, "artifact loaded", "key", key, "records", len(rs))
	}
	return out, nil
}

// Update loads the artifacts and, only if all of them are present, refreshes
// the dashboard.
func (u *Updater) Update(ctx context.Context) (model.RefreshResult, error) {
	if u.dashboardID == "" {
		err := apperror.Config("datastudio.dashboard_id", errors.New("is required"))
		return u.refresher.failure(err), err
	}

	loaded, err := u.LoadArtifacts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "dashboard update aborted", "error", err)
		return u.refresher.failure(err), err
	}

	total := 0
	for _, rs := range loaded {
		total += len(rs)
	}
	slog.InfoContext(ctx, "artifacts ready", "artifacts", len(loaded), "records", total)

	return u.refresher.Refresh(ctx, u.dashboardID, u.source)
}

// UpdateDashboard is Update without the error; failures are reported in the
// result document.
func (u *Updater) UpdateDashboard(ctx context.Context) model.RefreshResult {
	result, _ := u.Update(ctx)
	return result
}
