package model

import "time"

// Result statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusRunning = "running"
)

// TimestampLayout matches an ISO-8601 local timestamp with microseconds
const TimestampLayout = "2006-01-02T15:04:05.000000"

// PipelineResult is the document returned by a process run
type PipelineResult struct {
	Status         string   `json:"status"`
	Timestamp      string   `json:"timestamp"`
	FilesProcessed []string `json:"files_processed,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// RefreshResult is the document returned by a dashboard update
type RefreshResult struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DashboardID string `json:"dashboard_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Succeeded reports whether the run finished with status success
func (r PipelineResult) Succeeded() bool { return r.Status == StatusSuccess }

// Succeeded reports whether the refresh was accepted
func (r RefreshResult) Succeeded() bool { return r.Status == StatusSuccess }

// FormatTimestamp renders t the way result documents carry it
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// PipelineFailure builds the error document for a run that could not start
// or did not finish.
func PipelineFailure(t time.Time, err error) PipelineResult {
	return PipelineResult{Status: StatusError, Timestamp: FormatTimestamp(t), Error: err.Error()}
}

// RefreshFailure builds the error document for a failed dashboard update.
func RefreshFailure(t time.Time, err error) RefreshResult {
	return RefreshResult{Status: StatusError, Timestamp: FormatTimestamp(t), Error: err.Error()}
}
