package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shehrozeikram/SGCEducation-sub002/internal/client"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/models"
	"github.com/shehrozeikram/SGCEducation-sub002/internal/resource"
	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

// MonitorIntervals are the auto-refresh choices. Zero means off.
var MonitorIntervals = []time.Duration{0, 10 * time.Second, 30 * time.Second, 60 * time.Second}

// Performance is one full read of the performance feeds.
type Performance struct {
	Health    models.SystemHealth   `json:"health"`
	Database  models.DatabaseStats  `json:"database"`
	Sessions  models.ActiveSessions `json:"sessions"`
	Errors    models.ErrorRates     `json:"errors"`
	Metrics   models.Metrics        `json:"metrics"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// PerformanceMonitor polls the five performance feeds. At most one polling
// goroutine runs; changing the interval or stopping waits for it to exit.
type PerformanceMonitor struct {
	client    requester
	logger    *zap.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newTicker func(time.Duration) ticker

	mu       sync.Mutex
	latest   *Performance
	lastErr  error
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	onUpdate []func(Performance, error)
}

// NewPerformanceMonitor constructs a monitor with polling off.
func NewPerformanceMonitor(c requester, logger *zap.Logger, m *metrics.Recorder) *PerformanceMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceMonitor{
		client:  c,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newTicker: func(d time.Duration) ticker {
			return timeTicker{t: time.NewTicker(d)}
		},
	}
}

// OnUpdate registers fn to run after every poll.
func (m *PerformanceMonitor) OnUpdate(fn func(Performance, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = append(m.onUpdate, fn)
}

// Fetch reads every feed once. On failure the previous snapshot is kept.
func (m *PerformanceMonitor) Fetch(ctx context.Context) (Performance, error) {
	var p Performance
	feeds := []struct {
		path string
		out  interface{}
	}{
		{resource.PathSystemHealth, &p.Health},
		{resource.PathDatabaseStats, &p.Database},
		{resource.PathActiveSessions, &p.Sessions},
		{resource.PathErrorRates, &p.Errors},
		{resource.PathMetrics, &p.Metrics},
	}
	var err error
	for _, feed := range feeds {
		if err = m.fetchOne(ctx, feed.path, feed.out); err != nil {
			break
		}
	}
	if err != nil && ctx.Err() != nil {
		// Cancelled by Stop or the caller: state and listeners stay untouched.
		m.mu.Lock()
		if m.latest != nil {
			p = *m.latest
		}
		m.mu.Unlock()
		return p, ctx.Err()
	}
	m.metrics.RecordPoll(err == nil)

	m.mu.Lock()
	if err == nil {
		p.FetchedAt = m.now()
		m.latest = &p
		m.lastErr = nil
	} else {
		m.lastErr = banner(err, "Failed to fetch performance data")
		err = m.lastErr
		if m.latest != nil {
			p = *m.latest
		}
	}
	listeners := append([]func(Performance, error){}, m.onUpdate...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(p, err)
	}
	return p, err
}

func (m *PerformanceMonitor) fetchOne(ctx context.Context, path string, out interface{}) error {
	resp, err := m.client.Do(ctx, client.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Latest returns the last successful snapshot and the last poll error.
func (m *PerformanceMonitor) Latest() (Performance, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return Performance{}, false, m.lastErr
	}
	return *m.latest, true, m.lastErr
}

// Interval returns the active polling interval, zero when off.
func (m *PerformanceMonitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// SetInterval cancels the running poller, if any, and starts a new one
// bound to ctx unless interval is zero.
func (m *PerformanceMonitor) SetInterval(ctx context.Context, interval time.Duration) error {
	if !validInterval(interval) {
		return fmt.Errorf("unsupported monitor interval %s", interval)
	}
	m.Stop()
	if interval == 0 {
		return nil
	}

	pctx, cancel := context.WithCancel(ctx)
	t := m.newTicker(interval)
	m.mu.Lock()
	m.interval = interval
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.poll(pctx, t)
	m.logger.Info("performance polling started", zap.Duration("interval", interval))
	return nil
}

// Stop cancels polling and waits for the poller to exit.
func (m *PerformanceMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.interval = 0
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
	m.logger.Info("performance polling stopped")
}

func (m *PerformanceMonitor) poll(ctx context.Context, t ticker) {
	defer m.wg.Done()
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			if _, err := m.Fetch(ctx); err != nil && ctx.Err() == nil {
				m.logger.Warn("performance poll failed", zap.Error(err))
			}
		}
	}
}

func validInterval(d time.Duration) bool {
	for _, allowed := range MonitorIntervals {
		if d == allowed {
			return true
		}
	}
	return false
}
