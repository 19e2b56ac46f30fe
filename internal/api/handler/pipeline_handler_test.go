package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/store"
)

type fakeEntryPoints struct {
	process model.PipelineResult
	refresh model.RefreshResult
}

func (f fakeEntryPoints) Process(context.Context) model.PipelineResult { return f.process }
func (f fakeEntryPoints) UpdateDashboard(context.Context) model.RefreshResult { return f.refresh }

type fakeRuns struct {
	runs      []model.Run
	errs      []model.RunError
	lastLimit int
	failList  bool
}

func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]model.Run, error) {
	f.lastLimit = limit
	if f.failList {
		return nil, errors.New("disk I/O error")
	}
	return f.runs, nil
}

func (f *fakeRuns) GetRun(_ context.Context, id string) (model.Run, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return model.Run{}, fmt.Errorf("%s: %w", id, store.ErrRunNotFound)
}

func (f *fakeRuns) ListRunErrors(_ context.Context, runID string) ([]model.RunError, error) {
	var out []model.RunError
	for _, e := range f.errs {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func serve(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestProcessStatusCodes(t *testing.T) {
	ok := New(fakeEntryPoints{process: model.PipelineResult{Status: model.StatusSuccess, Timestamp: "t", FilesProcessed: model.ArtifactKeys()}}, nil)
	rec := serve(ok.Process, http.MethodPost, "/api/v1/process")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "success" || len(body["files_processed"].([]interface{})) != 3 {
		t.Fatalf("unexpected body %v", body)
	}
	if _, present := body["error"]; present {
		t.Fatalf("did not expect error field on success")
	}

	failed := New(fakeEntryPoints{process: model.PipelineResult{Status: model.StatusError, Timestamp: "t", Error: "query daily_stats: boom"}}, nil)
	rec = serve(failed.Process, http.MethodPost, "/api/v1/process")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
}

func TestRefreshDashboard(t *testing.T) {
	h := New(fakeEntryPoints{refresh: model.RefreshResult{Status: model.StatusSuccess, Timestamp: "t", DashboardID: "dash-1"}}, nil)
	rec := serve(h.RefreshDashboard, http.MethodPost, "/api/v1/dashboard/refresh")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got model.RefreshResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.DashboardID != "dash-1" {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestRunsWithoutHistory(t *testing.T) {
	h := New(fakeEntryPoints{}, nil)
	for _, fn := range []http.HandlerFunc{h.ListRuns, h.GetRun, h.GetRunErrors} {
		if rec := serve(fn, http.MethodGet, "/api/v1/runs/x"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 without history, got %d", rec.Code)
		}
	}
}

func TestListRuns(t *testing.T) {
	runs := &fakeRuns{runs: []model.Run{{ID: "r1", Kind: model.RunKindProcess, Status: model.StatusSuccess, StartedAt: time.Now()}}}
	h := New(fakeEntryPoints{}, runs)

	rec := serve(h.ListRuns, http.MethodGet, "/api/v1/runs")
	if rec.Code != http.StatusOK || runs.lastLimit != defaultRunsLimit {
		t.Fatalf("unexpected response %d with limit %d", rec.Code, runs.lastLimit)
	}

	rec = serve(h.ListRuns, http.MethodGet, "/api/v1/runs?limit=5")
	if rec.Code != http.StatusOK || runs.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d (%d)", runs.lastLimit, rec.Code)
	}

	for _, bad := range []string{"0", "-1", "abc", "100000"} {
		if rec := serve(h.ListRuns, http.MethodGet, "/api/v1/runs?limit="+bad); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for limit %q, got %d", bad, rec.Code)
		}
	}

	runs.failList = true
	if rec := serve(h.ListRuns, http.MethodGet, "/api/v1/runs"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestGetRunAndErrors(t *testing.T) {
	runs := &fakeRuns{
		runs: []model.Run{{ID: "r1", Kind: model.RunKindDashboard, Status: model.StatusError}},
		errs: []model.RunError{{ID: 1, RunID: "r1", ErrorKind: "refresh", Message: "refresh load daily_stats.json: blob not found"}},
	}
	h := New(fakeEntryPoints{}, runs)

	rec := serve(h.GetRun, http.MethodGet, "/api/v1/runs/r1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(h.GetRun, http.MethodGet, "/api/v1/runs/missing"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := serve(h.GetRun, http.MethodGet, "/api/v1/runs/"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = serve(h.GetRunErrors, http.MethodGet, "/api/v1/runs/r1/errors")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		RunID  string           `json:"run_id"`
		Errors []model.RunError `json:"errors"`
		Count  int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RunID != "r1" || body.Count != 1 || body.Errors[0].ErrorKind != "refresh" {
		t.Fatalf("unexpected body %+v", body)
	}
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	writeJSON(brokenWriter{httptest.NewRecorder()}, http.StatusOK, map[string]string{"status": "ok"})

	line := buf.String()
	if !strings.Contains(line, `"level":"DEBUG"`) || !strings.Contains(line, "connection reset") {
		t.Fatalf("expected debug log with the write error, got %q", line)
	}
}
