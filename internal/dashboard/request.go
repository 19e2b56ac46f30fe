// Package dashboard refreshes the hosted analytics dashboard once new
// artifacts have been published.
package dashboard

import "context"

// DataSourceBigQuery is the only data source type the dashboard reads from.
const DataSourceBigQuery = "BIGQUERY"

// DataSource points the dashboard at the warehouse table.
type DataSource struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId"`
	DatasetID string `json:"datasetId"`
	TableID   string `json:"tableId"`
}

// NewBigQuerySource builds a BIGQUERY data source descriptor.
func NewBigQuerySource(projectID, datasetID, tableID string) DataSource {
	return DataSource{
		Type:      DataSourceBigQuery,
		ProjectID: projectID,
		DatasetID: datasetID,
		TableID:   tableID,
	}
}

type RefreshSchedule struct {
	RefreshInterval int `json:"refreshInterval"` // seconds
}

// UpdateRequest is the body of a report update call.
type UpdateRequest struct {
	DataSource      DataSource      `json:"dataSource"`
	RefreshSchedule RefreshSchedule `json:"refreshSchedule"`
}

// Client sends report updates to the dashboard service.
type Client interface {
	UpdateReport(ctx context.Context, reportID string, req UpdateRequest) error
}
