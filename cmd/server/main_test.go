package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maryakemi70/HY4RES-WP2/internal/metrics"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/store"
	"github.com/maryakemi70/HY4RES-WP2/internal/ws"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestNewMux_Health(t *testing.T) {
	hub := ws.NewHub(nil)
	mux := newMux(http.NotFoundHandler(), hub, nil, "", nil)

	code, body := get(t, mux, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok clients=0\n", body)
}

func TestNewMux_Metrics(t *testing.T) {
	metrics.Init()
	metrics.ObserveQuery("balance", metrics.ResultSuccess, 5*time.Millisecond)

	mux := newMux(http.NotFoundHandler(), ws.NewHub(nil), nil, "", nil)

	code, body := get(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `lcia_query_total{kind="balance",result="success"}`)
	assert.Contains(t, body, "lcia_query_latency_seconds_bucket")
}

func TestNewMux_WebSocketRoute(t *testing.T) {
	called := false
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
	mux := newMux(wsHandler, ws.NewHub(nil), nil, "", nil)

	code, _ := get(t, mux, "/ws")
	assert.True(t, called)
	assert.Equal(t, http.StatusSwitchingProtocols, code)
}

func TestNewMux_Frontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>lcia</html>"), 0o644))

	mux := newMux(http.NotFoundHandler(), ws.NewHub(nil), nil, dir, nil)
	code, body := get(t, mux, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "lcia")

	mux = newMux(http.NotFoundHandler(), ws.NewHub(nil), nil, filepath.Join(dir, "missing"), nil)
	code, _ = get(t, mux, "/")
	assert.Equal(t, http.StatusNotFound, code)
}

func testStore() *store.Store {
	day := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	var pts []model.TimePoint
	for h := 0; h < 48; h++ {
		pts = append(pts, model.TimePoint{Timestamp: day.Add(time.Duration(h) * time.Hour), Value: float64(h)})
	}
	st := store.New(nil)
	st.Add(model.NewSeries(model.QuantityDemand, pts), store.Source{Path: "demand.csv", Column: "Energy Consumption kWh"})
	return st
}

func TestSeriesAPI_Sources(t *testing.T) {
	mux := newMux(http.NotFoundHandler(), ws.NewHub(nil), testStore(), "", nil)

	code, body := get(t, mux, "/api/sources")
	require.Equal(t, http.StatusOK, code)

	var srcs []sourceInfo
	require.NoError(t, json.Unmarshal([]byte(body), &srcs))
	require.Len(t, srcs, 1)
	assert.Equal(t, "Demand", srcs[0].Quantity)
	assert.Equal(t, "kWh", srcs[0].Unit)
	assert.Equal(t, 48, srcs[0].Points)
	assert.Equal(t, "2021-05-01T00:00:00", srcs[0].Start)
	assert.Equal(t, "2021-05-02T23:00:00", srcs[0].End)
}

func TestSeriesAPI_Points(t *testing.T) {
	mux := newMux(http.NotFoundHandler(), ws.NewHub(nil), testStore(), "", nil)

	tests := []struct {
		name  string
		path  string
		code  int
		count int
		first string
	}{
		{"default window", "/api/series/Demand", http.StatusOK, 24, "2021-05-01T00:00:00"},
		{"second day", "/api/series/Demand?start=2021-05-02", http.StatusOK, 24, "2021-05-02T00:00:00"},
		{"beyond data", "/api/series/Demand?start=2021-05-02&days=5", http.StatusOK, 24, "2021-05-02T00:00:00"},
		{"unknown series", "/api/series/Production", http.StatusNotFound, 0, ""},
		{"bad start", "/api/series/Demand?start=May", http.StatusBadRequest, 0, ""},
		{"bad days", "/api/series/Demand?days=0", http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := get(t, mux, tt.path)
			require.Equal(t, tt.code, code)
			if tt.code != http.StatusOK {
				return
			}
			var pts []pointInfo
			require.NoError(t, json.Unmarshal([]byte(body), &pts))
			require.Len(t, pts, tt.count)
			assert.Equal(t, tt.first, pts[0].Timestamp)
		})
	}
}
