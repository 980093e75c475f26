package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/service"
	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/response"
)

type performanceSource interface {
	Latest() (service.Performance, bool, error)
	Fetch(ctx context.Context) (service.Performance, error)
}

// MonitorHandler serves the performance snapshot collected by the poller.
type MonitorHandler struct {
	monitor performanceSource
	metrics *metrics.Recorder
}

// NewMonitorHandler constructs a monitor handler.
func NewMonitorHandler(monitor performanceSource, rec *metrics.Recorder) *MonitorHandler {
	return &MonitorHandler{monitor: monitor, metrics: rec}
}

// Performance returns the latest snapshot. With ?refresh=true the feeds are
// read first. Before any successful poll it answers 503 with the last error.
func (h *MonitorHandler) Performance(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		if _, err := h.monitor.Fetch(c.Request.Context()); err != nil {
			c.Header("X-Poll-Error", appErrors.Banner(err, "Failed to fetch performance data"))
		}
	}
	snapshot, ok, err := h.monitor.Latest()
	if !ok {
		message := "performance data not collected yet"
		if err != nil {
			message = appErrors.Banner(err, message)
		}
		response.Error(c, appErrors.New(appErrors.KindServerError, http.StatusServiceUnavailable, message))
		return
	}
	if err != nil {
		response.JSON(c, http.StatusOK, snapshot, nil, appErrors.Banner(err, ""))
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Stats returns the console request counters.
func (h *MonitorHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MonitorHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness checks.
func (h *MonitorHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 200 once a snapshot is available.
func (h *MonitorHandler) Ready(c *gin.Context) {
	if _, ok, _ := h.monitor.Latest(); !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "waiting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
