package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCountsRequests(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "institutions", 200, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "institutions", 500, 10*time.Millisecond)
	m.ObserveRequest(http.MethodPut, "institutions", 0, time.Millisecond)
	m.RecordDiscarded("institutions")
	m.RecordMutation("institutions", "toggle-status", nil)
	m.RecordMutation("institutions", "toggle-status", errors.New("x"))
	m.RecordPoll(true)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.Requests)
	assert.Equal(t, uint64(2), snap.Errors)
	assert.Equal(t, uint64(1), snap.Discarded)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `console_api_requests_total{method="GET",resource="institutions",status="200"} 1`))
	assert.True(t, strings.Contains(body, "console_list_refresh_discarded_total"))
	assert.True(t, strings.Contains(body, `console_mutations_total{action="toggle-status",resource="institutions",result="error"} 1`))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var m *Recorder
	m.ObserveRequest(http.MethodGet, "users", 200, time.Millisecond)
	m.RecordDiscarded("users")
	m.RecordPoll(false)
	m.RecordMutation("users", "create", nil)
	assert.Equal(t, Snapshot{}, m.Snapshot())
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
