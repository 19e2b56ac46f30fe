package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-analytics-pipeline/docs"
	"go-analytics-pipeline/internal/api/handler"
	"go-analytics-pipeline/internal/metrics"
	"go-analytics-pipeline/internal/service"
	"go-analytics-pipeline/pkg/router"
)

// NewRouter builds the HTTP API around svc.
func NewRouter(svc *service.Service) *router.Router {
	var runs service.RunReader
	if r, ok := svc.Runs(); ok {
		runs = r
	}

	r := router.New()
	RegisterRoutes(r, handler.New(svc, runs), svc.Metrics())
	return r
}

func RegisterRoutes(r *router.Router, h *handler.Handler, m *metrics.Metrics) {
	r.POST("/api/v1/process", h.Process)
	r.POST("/api/v1/dashboard/refresh", h.RefreshDashboard)
	r.GET("/api/v1/runs", h.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	r.GET("/api/v1/runs/*", h.GetRun)
	r.GET("/api/v1/healthz", h.Health)

	if m != nil {
		r.Handle(http.MethodGet, "/metrics", m.Handler())
	}
	r.Handle(http.MethodGet, "/swagger/*", httpSwagger.WrapHandler)
}
