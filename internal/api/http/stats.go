package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/nuclear-add/internal/backend"
	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
)

// StatsSnapshot is a point-in-time view of the service
type StatsSnapshot struct {
	Timestamp time.Time                  `json:"timestamp"`
	Metrics   monitoring.Snapshot        `json:"metrics"`
	Backend   BackendStats               `json:"backend"`
	Anomalies map[errtrace.ErrorType]int `json:"anomalies"`
	Events    int                        `json:"events"`
}

// BackendStats describes the bound backend and its breaker, if any
type BackendStats struct {
	Name    string `json:"name"`
	Breaker string `json:"breaker,omitempty"`
}

// StatsHandler serves aggregated service statistics
type StatsHandler struct {
	engine  *engine.Engine
	metrics *monitoring.Metrics
}

// NewStatsHandler creates a stats handler. metrics may be nil.
func NewStatsHandler(e *engine.Engine, metrics *monitoring.Metrics) *StatsHandler {
	return &StatsHandler{engine: e, metrics: metrics}
}

// Collect gathers a snapshot
func (s *StatsHandler) Collect() StatsSnapshot {
	b := s.engine.Backend()
	bs := BackendStats{Name: b.Name()}
	if g, ok := b.(*backend.Guarded); ok {
		bs.Breaker = g.State().String()
	}

	tracer := s.engine.Tracer()
	return StatsSnapshot{
		Timestamp: time.Now().UTC(),
		Metrics:   s.metrics.Snapshot(),
		Backend:   bs,
		Anomalies: tracer.Summary(),
		Events:    tracer.Len(),
	}
}

// GetStats handles GET /v1/stats
func (s *StatsHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Collect())
}
