package pipeline

import (
	"sync"
	"time"

	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/model"
)

// Tracker records per-report stage timings for one run and mirrors them
// into the metrics collectors.
type Tracker struct {
	mu      sync.RWMutex
	metrics *metrics.Metrics
	now     func() time.Time
	stages  []model.StageMetrics
	index   map[string]int
}

func NewTracker(m *metrics.Metrics, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		metrics: m,
		now:     now,
		index:   make(map[string]int),
	}
}

// StartStage opens the stage for report.
func (t *Tracker) StartStage(report string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.index[report] = len(t.stages)
	t.stages = append(t.stages, model.StageMetrics{
		Report:    report,
		StartTime: t.now(),
		Status:    "running",
	})
}

// QueryDone records the query duration and row count.
func (t *Tracker) QueryDone(report string, records int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stage(report)
	if st == nil {
		return
	}
	st.QueryDuration = t.now().Sub(st.StartTime)
	st.RecordCount = records
	t.metrics.RecordQuery(report, st.QueryDuration.Seconds())
}

// EndStage marks the stage completed after a successful publish.
func (t *Tracker) EndStage(report string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stage(report)
	if st == nil {
		return
	}
	end := t.now()
	st.EndTime = &end
	st.PublishDuration = end.Sub(st.StartTime) - st.QueryDuration
	st.Status = "completed"
	t.metrics.RecordPublish(report, st.RecordCount, st.PublishDuration.Seconds())
}

// FailStage marks the stage failed.
func (t *Tracker) FailStage(report string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.stage(report)
	if st == nil {
		return
	}
	end := t.now()
	st.EndTime = &end
	st.Status = "failed"
}

// Stages returns a copy of the recorded stages in execution order.
func (t *Tracker) Stages() []model.StageMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.StageMetrics, len(t.stages))
	copy(out, t.stages)
	return out
}

func (t *Tracker) stage(report string) *model.StageMetrics {
	i, ok := t.index[report]
	if !ok {
		return nil
	}
	return &t.stages[i]
}
