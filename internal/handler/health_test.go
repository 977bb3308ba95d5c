package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error {
	return f.err
}

type fakeConn struct {
	connected bool
}

func (f *fakeConn) IsConnected() bool {
	return f.connected
}

func readyRec(h *HealthHandler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	return rec
}

func readyReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["reason"]
}

func TestReady_AllBackendsHealthy(t *testing.T) {
	h := NewHealthHandler(&fakePinger{}, &fakePinger{}, &fakeConn{connected: true})
	rec := readyRec(h)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_VolatileStoreDown(t *testing.T) {
	h := NewHealthHandler(&fakePinger{err: context.DeadlineExceeded}, &fakePinger{}, nil)
	rec := readyRec(h)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "volatile store unreachable", readyReason(t, rec))
}

func TestReady_DurableStoreDown(t *testing.T) {
	h := NewHealthHandler(&fakePinger{}, &fakePinger{err: context.DeadlineExceeded}, nil)
	rec := readyRec(h)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "durable store unreachable", readyReason(t, rec))
}

func TestReady_EventRelayDisconnected(t *testing.T) {
	h := NewHealthHandler(&fakePinger{}, &fakePinger{}, &fakeConn{connected: false})
	rec := readyRec(h)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "event relay disconnected", readyReason(t, rec))
}

func TestReady_EventRelayNotConfigured(t *testing.T) {
	h := NewHealthHandler(&fakePinger{}, &fakePinger{}, nil)
	rec := readyRec(h)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_AlwaysOK(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
