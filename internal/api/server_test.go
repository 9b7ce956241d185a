package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gserver/internal/config"
	"github.com/udisondev/gserver/internal/server"
	"github.com/udisondev/gserver/internal/testutil"
)

type fakeRegistry struct {
	infos []server.ClientInfo
}

func (r *fakeRegistry) Snapshot() []server.ClientInfo {
	return r.infos
}

func (r *fakeRegistry) Lookup(id uint64) (server.ClientInfo, bool) {
	for _, info := range r.infos {
		if info.ID == id {
			return info, true
		}
	}
	return server.ClientInfo{}, false
}

func (r *fakeRegistry) Count() int {
	return len(r.infos)
}

func newTestAPI(t *testing.T) *Server {
	t.Helper()
	reg := &fakeRegistry{infos: []server.ClientInfo{
		{ID: 1, IP: "10.0.0.1", Account: "tester", Role: "CLIENT3", Generation: "GEN_5", State: "AUTHENTICATED"},
		{ID: 2, IP: "10.0.0.2", State: "CONNECTED"},
	}}
	return NewServer(config.StatusAPI{Enabled: true, Address: "127.0.0.1:0"}, reg, false)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health(t *testing.T) {
	s := newTestAPI(t)

	rec := get(t, s.Handler(), "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["connections"])
}

func TestAPI_Connections(t *testing.T) {
	s := newTestAPI(t)

	rec := get(t, s.Handler(), "/api/connections")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total       int                 `json:"total"`
		Connections []server.ClientInfo `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Connections, 2)
	assert.Equal(t, "tester", body.Connections[0].Account)
	assert.Equal(t, "GEN_5", body.Connections[0].Generation)
}

func TestAPI_Connection(t *testing.T) {
	s := newTestAPI(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"found", "/api/connections/2", http.StatusOK},
		{"missing", "/api/connections/99", http.StatusNotFound},
		{"bad id", "/api/connections/abc", http.StatusBadRequest},
		{"negative id", "/api/connections/-1", http.StatusBadRequest},
		{"unknown endpoint", "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.path)
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	rec := get(t, s.Handler(), "/api/connections/2")
	var info server.ClientInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, uint64(2), info.ID)
	assert.Equal(t, "10.0.0.2", info.IP)
}

func TestAPI_OverClientManager(t *testing.T) {
	cm := server.NewClientManager()
	s := NewServer(config.StatusAPI{}, cm, false)

	rec := get(t, s.Handler(), "/api/connections")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":0,"connections":[]}`, rec.Body.String())
}

func TestAPI_ServeAndShutdown(t *testing.T) {
	s := newTestAPI(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.NoError(t, testutil.WaitForTCPReady(ln.Addr().String(), 2*time.Second))

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
