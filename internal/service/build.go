package service

import (
	"context"
	"io"
	"log/slog"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/blobstore"
	"go-analytics-pipeline/internal/config"
	"go-analytics-pipeline/internal/dashboard"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/pipeline"
	"go-analytics-pipeline/internal/store"
	"go-analytics-pipeline/internal/warehouse"
)

const defaultLocalDir = "output"

type buildOptions struct {
	executor        pipeline.QueryExecutor
	store           blobstore.Store
	dashboardClient dashboard.Client
	metrics         *metrics.Metrics
	local           bool
}

type BuildOption func(*buildOptions)

// UseExecutor replaces the BigQuery executor.
func UseExecutor(e pipeline.QueryExecutor) BuildOption {
	return func(o *buildOptions) { o.executor = e }
}

// UseStore replaces the configured blob store.
func UseStore(s blobstore.Store) BuildOption {
	return func(o *buildOptions) { o.store = s }
}

// UseDashboardClient replaces the Data Studio client.
func UseDashboardClient(c dashboard.Client) BuildOption {
	return func(o *buildOptions) { o.dashboardClient = c }
}

func UseMetrics(m *metrics.Metrics) BuildOption {
	return func(o *buildOptions) { o.metrics = m }
}

// PublishLocally writes artifacts to storage.local_dir instead of the bucket.
func PublishLocally() BuildOption {
	return func(o *buildOptions) { o.local = true }
}

// Build wires the service from configuration. A dashboard that cannot be set
// up does not fail the build; UpdateDashboard reports the reason instead.
func Build(ctx context.Context, cfg *config.Config, opts ...BuildOption) (svc *Service, err error) {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}

	var closers []io.Closer
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i].Close()
			}
		}
	}()

	table := warehouse.Table{ProjectID: cfg.GCP.ProjectID, DatasetID: cfg.GCP.DatasetID, TableID: cfg.GCP.TableID}
	catalog, err := warehouse.Catalog(table, cfg.Queries.Dir)
	if err != nil {
		return nil, err
	}

	executor := o.executor
	if executor == nil {
		bq := warehouse.NewLazyBigQueryExecutor(cfg.GCP.ProjectID, cfg.GCP.CredentialsFile)
		closers = append(closers, bq)
		executor = bq
	}

	artifacts := o.store
	if artifacts == nil {
		artifacts, err = openStore(ctx, cfg, o.local, &closers)
		if err != nil {
			return nil, err
		}
	}

	runner, err := pipeline.NewRunner(executor, pipeline.NewPublisher(artifacts), catalog, pipeline.WithMetrics(o.metrics))
	if err != nil {
		return nil, err
	}

	serviceOpts := []Option{WithMetrics(o.metrics)}

	var dash Dashboard
	client, dashErr := dashboardClient(ctx, cfg, o.dashboardClient)
	if dashErr != nil {
		slog.WarnContext(ctx, "dashboard updates disabled", "error", dashErr)
		serviceOpts = append(serviceOpts, WithDashboardError(dashErr))
	} else {
		refresher := dashboard.NewRefresher(client, cfg.DataStudio.RefreshInterval, dashboard.WithMetrics(o.metrics))
		source := dashboard.NewBigQuerySource(cfg.GCP.ProjectID, cfg.GCP.DatasetID, cfg.GCP.TableID)
		dash = dashboard.NewUpdater(artifacts, refresher, cfg.DataStudio.DashboardID, source)
	}

	if cfg.History.DBPath != "" {
		history, err := store.Open(ctx, cfg.History.DBPath)
		if err != nil {
			return nil, err
		}
		closers = append(closers, history)
		serviceOpts = append(serviceOpts, WithHistory(history))
	}

	for _, c := range closers {
		serviceOpts = append(serviceOpts, withCloser(c))
	}
	return New(runner, dash, serviceOpts...), nil
}

func openStore(ctx context.Context, cfg *config.Config, local bool, closers *[]io.Closer) (blobstore.Store, error) {
	if local || cfg.UseLocalStorage() {
		dir := cfg.Storage.LocalDir
		if dir == "" {
			dir = defaultLocalDir
		}
		slog.InfoContext(ctx, "publishing to local directory", "dir", dir, "prefix", cfg.Storage.Prefix)
		return blobstore.NewDirStore(dir, cfg.Storage.Prefix), nil
	}

	gcs, err := blobstore.NewGCSStore(ctx, cfg.Storage.Bucket, cfg.Storage.Prefix, cfg.GCP.CredentialsFile)
	if err != nil {
		return nil, apperror.Publish("connect", err)
	}
	*closers = append(*closers, gcs)
	return gcs, nil
}

func dashboardClient(ctx context.Context, cfg *config.Config, override dashboard.Client) (dashboard.Client, error) {
	if override != nil {
		return override, nil
	}
	if err := cfg.RequireDashboard(); err != nil {
		return nil, err
	}
	client, err := dashboard.NewDataStudioClient(ctx, cfg.DataStudio.CredentialsFile, cfg.DataStudio.Endpoint)
	if err != nil {
		return nil, apperror.Config("datastudio.credentials_file", err)
	}
	return client, nil
}
