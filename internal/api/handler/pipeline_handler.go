package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-analytics-pipeline/internal/model"
	"go-analytics-pipeline/internal/service"
	"go-analytics-pipeline/internal/store"
)

const (
	runsPrefix       = "/api/v1/runs/"
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// EntryPoints is the pair of operations the API exposes.
type EntryPoints interface {
	Process(ctx context.Context) model.PipelineResult
	UpdateDashboard(ctx context.Context) model.RefreshResult
}

type Handler struct {
	svc  EntryPoints
	runs service.RunReader
}

// New creates a Handler. runs may be nil when no run history is configured.
func New(svc EntryPoints, runs service.RunReader) *Handler {
	return &Handler{svc: svc, runs: runs}
}

// Process runs the analytics pipeline
// @Summary Run the pipeline
// @Description Execute every report query in catalog order and publish each result as a JSON artifact. The run stops at the first failure.
// @Tags pipeline
// @Produce json
// @Success 200 {object} model.PipelineResult "All artifacts published"
// @Failure 502 {object} model.PipelineResult "A query or publish step failed"
// @Router /process [post]
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	result := h.svc.Process(r.Context())
	writeJSON(w, statusFor(result.Status), result)
}

// RefreshDashboard updates the dashboard from the latest artifacts
// @Summary Refresh the dashboard
// @Description Load the three published artifacts and, when all exist, update the dashboard data source and refresh schedule.
// @Tags dashboard
// @Produce json
// @Success 200 {object} model.RefreshResult "Dashboard updated"
// @Failure 502 {object} model.RefreshResult "Missing artifact or dashboard service error"
// @Router /dashboard/refresh [post]
func (h *Handler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	result := h.svc.UpdateDashboard(r.Context())
	writeJSON(w, statusFor(result.Status), result)
}

// ListRuns retrieves recent runs
// @Summary List runs
// @Description Get the most recent process and dashboard runs, newest first
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} model.Run "Recent runs"
// @Failure 400 {string} string "Invalid limit"
// @Failure 404 {string} string "Run history is not configured"
// @Failure 500 {string} string "Internal server error"
// @Router /runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "Run history is not configured", http.StatusNotFound)
		return
	}

	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRunsLimit {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves one run
// @Summary Get run
// @Description Retrieve a recorded run by id
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} model.Run "Run details"
// @Failure 400 {string} string "Run ID is required"
// @Failure 404 {string} string "Run not found"
// @Router /runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "Run history is not configured", http.StatusNotFound)
		return
	}

	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, runsPrefix), "/")
	if runID == "" || strings.Contains(runID, "/") {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}

	run, err := h.runs.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRunErrors retrieves errors recorded for a run
// @Summary Get run errors
// @Description Retrieve the tagged errors recorded against a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {string} string "Run ID is required"
// @Failure 500 {string} string "Internal server error"
// @Router /runs/{id}/errors [get]
func (h *Handler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "Run history is not configured", http.StatusNotFound)
		return
	}

	// /api/v1/runs/{id}/errors
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 5 || pathParts[3] == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return
	}
	runID := pathParts[3]

	runErrors, err := h.runs.ListRunErrors(r.Context(), runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"errors": runErrors,
		"count":  len(runErrors),
	})
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps a result document status to the HTTP status code.
func statusFor(status string) int {
	if status == model.StatusSuccess {
		return http.StatusOK
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response body", "status", code, "error", err)
	}
}
