package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/shehrozeikram/SGCEducation-sub002/pkg/errors"
)

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func newFakeTicker() *fakeTicker { return &fakeTicker{ch: make(chan time.Time)} }

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func TestPerformanceFetch(t *testing.T) {
	h := newHarness(t, seedSchool)
	h.login(t, "root@sgc.test")
	mon := h.console.Monitor

	_, ok, err := mon.Latest()
	assert.False(t, ok)
	assert.NoError(t, err)

	p, err := mon.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, p.FetchedAt.IsZero())
	assert.Equal(t, 4, p.Sessions.Total)

	paths := map[string]bool{}
	for _, r := range h.api.Requests() {
		paths[r.Path] = true
	}
	assert.Len(t, paths, 5)

	latest, ok, err := mon.Latest()
	require.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, p.FetchedAt, latest.FetchedAt)
}

func TestPerformanceFailureKeepsPreviousSnapshot(t *testing.T) {
	h := newHarness(t, seedSchool)
	h.login(t, "root@sgc.test")
	mon := h.console.Monitor
	ctx := context.Background()

	first, err := mon.Fetch(ctx)
	require.NoError(t, err)

	var seen []error
	mon.OnUpdate(func(_ Performance, err error) { seen = append(seen, err) })

	h.api.FailNext(http.MethodGet, "performance/database-stats", http.StatusInternalServerError, "")
	p, err := mon.Fetch(ctx)
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch performance data", appErrors.Banner(err, ""))
	assert.Equal(t, first.FetchedAt, p.FetchedAt)

	latest, ok, lastErr := mon.Latest()
	require.True(t, ok)
	assert.Equal(t, first.FetchedAt, latest.FetchedAt)
	assert.Error(t, lastErr)
	require.Len(t, seen, 1)
	assert.Error(t, seen[0])
}

func TestPerformanceForbiddenForAdmins(t *testing.T) {
	h := newHarness(t, seedSchool)
	h.login(t, "ada@sgc.test")

	_, err := h.console.Monitor.Fetch(context.Background())
	require.Error(t, err)
	_, ok, _ := h.console.Monitor.Latest()
	assert.False(t, ok)
}

func TestPerformancePollingInterval(t *testing.T) {
	h := newHarness(t, seedSchool)
	h.login(t, "root@sgc.test")
	mon := h.console.Monitor

	var (
		mu      sync.Mutex
		tickers []*fakeTicker
	)
	mon.newTicker = func(time.Duration) ticker {
		mu.Lock()
		defer mu.Unlock()
		ft := newFakeTicker()
		tickers = append(tickers, ft)
		return ft
	}
	polled := make(chan error, 4)
	mon.OnUpdate(func(_ Performance, err error) { polled <- err })

	assert.Error(t, mon.SetInterval(context.Background(), 15*time.Second))
	assert.Zero(t, mon.Interval())

	require.NoError(t, mon.SetInterval(context.Background(), 10*time.Second))
	assert.Equal(t, 10*time.Second, mon.Interval())

	tickers[0].ch <- time.Now()
	select {
	case err := <-polled:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not run")
	}

	require.NoError(t, mon.SetInterval(context.Background(), 30*time.Second))
	assert.True(t, tickers[0].isStopped(), "previous poller stops before the next starts")
	require.Len(t, tickers, 2)

	require.NoError(t, mon.SetInterval(context.Background(), 0))
	assert.True(t, tickers[1].isStopped())
	assert.Zero(t, mon.Interval())
}

func TestCancelledFetchLeavesStateAlone(t *testing.T) {
	h := newHarness(t, seedSchool)
	h.login(t, "root@sgc.test")
	mon := h.console.Monitor

	first, err := mon.Fetch(context.Background())
	require.NoError(t, err)

	calls := 0
	mon.OnUpdate(func(Performance, error) { calls++ })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, err := mon.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, first.FetchedAt, p.FetchedAt)
	assert.Zero(t, calls)

	_, ok, lastErr := mon.Latest()
	assert.True(t, ok)
	assert.NoError(t, lastErr)
}
