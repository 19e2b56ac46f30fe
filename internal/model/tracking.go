package model

import "time"

// Run kinds
const (
	RunKindProcess   = "process"
	RunKindDashboard = "dashboard"
)

// Run is one recorded invocation of an entry point
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Message    string     `json:"message,omitempty"`
	Files      []string   `json:"files,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunError is an error recorded against a run
type RunError struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	ErrorKind string    `json:"error_kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// StageMetrics tracks one report's execution within a run
type StageMetrics struct {
	Report          string        `json:"report"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	QueryDuration   time.Duration `json:"query_duration"`
	PublishDuration time.Duration `json:"publish_duration"`
	RecordCount     int           `json:"record_count"`
	Status          string        `json:"status"` // "running", "completed", "failed"
}
