package metrics

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder encapsulates Prometheus instrumentation of the console's calls to
// the backend. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	staleDiscarded  *prometheus.CounterVec
	monitorPolls    *prometheus.CounterVec
	mutationsTotal  *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec

	requestCount   uint64
	requestErrors  uint64
	discardedCount uint64
}

// Snapshot is a lightweight view for the monitor API.
type Snapshot struct {
	Requests  uint64 `json:"requests"`
	Errors    uint64 `json:"errors"`
	Discarded uint64 `json:"discarded"`
}

// New registers the console collectors on a private registry.
func New() *Recorder {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_api_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"method", "resource", "status"})

	staleDiscarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_list_refresh_discarded_total",
		Help: "List responses dropped because a newer request was issued or the list was closed",
	}, []string{"resource"})

	monitorPolls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_monitor_polls_total",
		Help: "Performance monitor polls by outcome",
	}, []string{"result"})

	mutationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_mutations_total",
		Help: "Create, update, delete and action requests by outcome",
	}, []string{"resource", "action", "result"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_http_request_duration_seconds",
		Help:    "Duration of requests served by the monitor server",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, staleDiscarded, monitorPolls, mutationsTotal, httpDuration, goroutines)

	return &Recorder{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		staleDiscarded:  staleDiscarded,
		monitorPolls:    monitorPolls,
		mutationsTotal:  mutationsTotal,
		httpDuration:    httpDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Recorder) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Recorder) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one backend call. Status 0 means transport failure.
func (m *Recorder) ObserveRequest(method, resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, resource, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, resource, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	if status == 0 || status >= http.StatusBadRequest {
		atomic.AddUint64(&m.requestErrors, 1)
	}
}

// ObserveHTTP records one request served by the monitor server.
func (m *Recorder) ObserveHTTP(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// RecordDiscarded counts a list response dropped as stale.
func (m *Recorder) RecordDiscarded(resource string) {
	if m == nil {
		return
	}
	m.staleDiscarded.WithLabelValues(resource).Inc()
	atomic.AddUint64(&m.discardedCount, 1)
}

// RecordMutation counts a mutation by outcome.
func (m *Recorder) RecordMutation(resource, action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutationsTotal.WithLabelValues(resource, action, result).Inc()
}

// RecordPoll counts one monitor poll.
func (m *Recorder) RecordPoll(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.monitorPolls.WithLabelValues(result).Inc()
}

// Snapshot returns the aggregated counters.
func (m *Recorder) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Requests:  atomic.LoadUint64(&m.requestCount),
		Errors:    atomic.LoadUint64(&m.requestErrors),
		Discarded: atomic.LoadUint64(&m.discardedCount),
	}
}
