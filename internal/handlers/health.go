package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/monitoring"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	module *monitoring.Module
}

// NewHealthHandler constructs a HealthHandler. A nil module reports healthy with no checks.
func NewHealthHandler(module *monitoring.Module) *HealthHandler {
	return &HealthHandler{module: module}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.render(c, func(m *monitoring.HealthManager) monitoring.HealthReport {
		return m.EvaluateAll(requestContext(c))
	})
}

// GET /health/live
func (h *HealthHandler) Liveness(c *gin.Context) {
	h.render(c, func(m *monitoring.HealthManager) monitoring.HealthReport {
		return m.EvaluateLiveness(requestContext(c))
	})
}

// GET /health/ready
func (h *HealthHandler) Readiness(c *gin.Context) {
	h.render(c, func(m *monitoring.HealthManager) monitoring.HealthReport {
		return m.EvaluateReadiness(requestContext(c))
	})
}

func (h *HealthHandler) render(c *gin.Context, evaluate func(*monitoring.HealthManager) monitoring.HealthReport) {
	report := monitoring.HealthReport{Success: true, Status: monitoring.StatusUp, Checks: []monitoring.ProbeResult{}}
	if manager := h.module.Health(); manager != nil {
		report = evaluate(manager)
	}

	status := http.StatusOK
	if report.Status == monitoring.StatusDown {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"success": report.Success,
		"status":  report.Status,
		"checks":  report.Checks,
		"version": h.module.Version(),
		"uptime":  int64(h.module.Uptime().Seconds()),
	})
}
