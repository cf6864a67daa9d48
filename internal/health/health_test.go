package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestOverallStatusRollup(t *testing.T) {
	hc := NewChecker()

	assert.Equal(t, StatusHealthy, hc.OverallStatus(map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusHealthy},
	}))
	assert.Equal(t, StatusDegraded, hc.OverallStatus(map[string]Result{
		"a": {Status: StatusHealthy},
		"b": {Status: StatusDegraded},
	}))
	assert.Equal(t, StatusUnhealthy, hc.OverallStatus(map[string]Result{
		"a": {Status: StatusDegraded},
		"b": {Status: StatusUnhealthy},
	}))
}

func TestPingCheck(t *testing.T) {
	ok := NewPingCheck("redis", stubPinger{}, time.Second)
	res := ok.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)

	down := NewPingCheck("redis", stubPinger{err: errors.New("connection refused")}, time.Second)
	res = down.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.Contains(t, res.Message, "connection refused")
}

func TestHTTPHandler(t *testing.T) {
	hc := NewChecker()
	hc.Register(NewPingCheck("redis", stubPinger{}, time.Second))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	hc.HTTPHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHTTPHandlerUnhealthy(t *testing.T) {
	hc := NewChecker()
	hc.Register(NewPingCheck("kafka", stubPinger{err: errors.New("no brokers")}, time.Second))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	hc.HTTPHandler()(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
