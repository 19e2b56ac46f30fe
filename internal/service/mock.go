package service

import (
	"context"
	"log/slog"
	"time"

	"go-analytics-pipeline/internal/blobstore"
	"go-analytics-pipeline/internal/config"
	"go-analytics-pipeline/internal/dashboard"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/mockdata"
	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/pipeline"
	"go-analytics-pipeline/internal/warehouse"
	"go-analytics-pipeline/pkg/utils"
)

// MockDashboardID is the placeholder report id of offline runs.
const MockDashboardID = "mock-dashboard-id"

// MockFile is one artifact written by an offline run.
type MockFile struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// MockReport describes an offline run.
type MockReport struct {
	Result        model.PipelineResult `json:"result"`
	DataDir       string               `json:"data_dir,omitempty"`
	Files         []MockFile           `json:"files,omitempty"`
	DashboardFile string               `json:"dashboard_file,omitempty"`
	DashboardURL  string               `json:"dashboard_url,omitempty"`
}

// RunMock runs the full catalog against generated data, publishing into the
// mock output directory, and writes the dashboard layout next to it. Nothing
// leaves the machine.
func RunMock(ctx context.Context, cfg *config.Config, gen *mockdata.Generator, m *metrics.Metrics) MockReport {
	om := utils.NewOutputManager(".")

	dataDir, err := om.CreateOutputDir(cfg.Mock.OutputDir)
	if err != nil {
		return MockReport{Result: model.PipelineFailure(time.Now(), err)}
	}

	table := warehouse.Table{ProjectID: cfg.GCP.ProjectID, DatasetID: cfg.GCP.DatasetID, TableID: cfg.GCP.TableID}
	catalog, err := warehouse.Catalog(table, cfg.Queries.Dir)
	if err != nil {
		return MockReport{Result: model.PipelineFailure(time.Now(), err)}
	}

	runner, err := pipeline.NewRunner(gen, pipeline.NewPublisher(blobstore.NewDirStore(dataDir, "")), catalog, pipeline.WithMetrics(m))
	if err != nil {
		return MockReport{Result: model.PipelineFailure(time.Now(), err)}
	}

	report := MockReport{DataDir: dataDir}
	report.Result = New(runner, nil, WithMetrics(m)).Process(ctx)
	if !report.Result.Succeeded() {
		return report
	}
	for _, key := range report.Result.FilesProcessed {
		filePath, err := om.GetOutputFilePath(cfg.Mock.OutputDir, key)
		if err != nil {
			report.Result = model.PipelineFailure(time.Now(), err)
			return report
		}
		size, err := om.GetFileSize(filePath)
		if err != nil {
			report.Result = model.PipelineFailure(time.Now(), err)
			return report
		}
		report.Files = append(report.Files, MockFile{
			URL:  om.GetFileURL(cfg.Mock.OutputDir, key),
			Type: om.GetFileType(key),
			Size: size,
		})
	}

	def := dashboard.DefaultDefinition(cfg.DataStudio.RefreshInterval)
	path, err := om.WriteJSON(cfg.Mock.DashboardDir, dashboard.DefinitionFile, def)
	if err != nil {
		report.Result = model.PipelineFailure(time.Now(), err)
		return report
	}
	report.DashboardFile = path
	report.DashboardURL = dashboard.ReportURL(MockDashboardID)

	slog.InfoContext(ctx, "mock run completed", "data_dir", dataDir, "dashboard_file", path)
	return report
}
