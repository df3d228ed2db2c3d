package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/dispatcher"
	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/internal/logging"
	"github.com/launchdash/dashboard/internal/monitor"
	"github.com/launchdash/dashboard/pkg/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func launch(site string, payload float64, class core.Outcome, category string) core.Launch {
	return core.Launch{LaunchSite: site, PayloadMassKg: payload, Class: class, BoosterCategory: category, BoosterVersion: "F9"}
}

func testTable() *dataset.Table {
	return dataset.New([]core.Launch{
		launch("CCAFS LC-40", 0, core.Failure, "v1.0"),
		launch("CCAFS LC-40", 2296, core.Success, "v1.1"),
		launch("VAFB SLC-4E", 9600, core.Success, "FT"),
		launch("KSC LC-39A", 2490, core.Success, "FT"),
		launch("KSC LC-39A", 3600, core.Failure, "FT"),
		launch("CCAFS SLC-40", 4990, core.Success, "B5"),
	})
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d, err := dispatcher.New(logging.NewDispatcherLogger(logger))
	require.NoError(t, err)

	table := testTable()
	c := cache.NewFigureCache(0)
	m := callbacks.NewManager(callbacks.Dependencies{Table: table, Cache: c, Logger: logger})
	m.RegisterHandlers(d)

	mon := monitor.NewService(monitor.Dependencies{Callbacks: m, Cache: c, StorageType: "memory"})
	s, err := New(Dependencies{
		Callbacks: m,
		Layout:    table.Layout("SpaceX Launch Records Dashboard", dataset.SliderConfig{Min: 0, Max: 10000, Step: 1}),
		Monitor:   mon,
		Logger:    logger,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Hub().Close()
		ts.Close()
		d.Close()
	})
	return s, ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestNew_RequiresCallbacks(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}

func TestHealthcheck(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts, "/healthcheck")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestPage(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page := string(body)
	assert.Contains(t, page, "<h1>SpaceX Launch Records Dashboard</h1>")
	assert.Contains(t, page, "color: #503D36")
	assert.Contains(t, page, "font-size: 40px")
	assert.Contains(t, page, `placeholder="Select a Launch Site"`)
	assert.Contains(t, page, "Payload range (Kg):")
	assert.Contains(t, page, `<option value="All" selected>All Sites</option>`)
	assert.Contains(t, page, `<option value="VAFB SLC-4E">VAFB SLC-4E</option>`)
	assert.Contains(t, page, EChartsCDN)
	assert.Contains(t, page, `id="success-pie-chart"`)
	assert.Contains(t, page, `id="success-payload-scatter-chart"`)
	assert.Contains(t, page, `value="9600"`)
	assert.Contains(t, page, `step="1" value="0"`)
	assert.NotContains(t, page, `<option value="1000"`)
}

func TestPage_NoStepAttribute(t *testing.T) {
	s, ts := newTestServer(t)
	s.deps.Layout = testTable().Layout("t", dataset.SliderConfig{Min: 0, Max: 10000})

	resp, body := get(t, ts, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(body), "step=")
	assert.Contains(t, string(body), `value="9600"`)
}

func TestLayout(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts, "/api/layout")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var l dataset.Layout
	require.NoError(t, json.Unmarshal(body, &l))
	assert.Equal(t, "SpaceX Launch Records Dashboard", l.Title)
	assert.Len(t, l.Components, 6)
}

func TestFigure(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"pie all", "/api/figures/success-pie-chart", http.StatusOK, "Success count per site"},
		{"pie site", "/api/figures/success-pie-chart?site=KSC+LC-39A", http.StatusOK, "Success count for KSC LC-39A"},
		{"scatter default range", "/api/figures/success-payload-scatter-chart", http.StatusOK, "Correlation between Payload and Success for all Sites"},
		{"scatter range", "/api/figures/success-payload-scatter-chart?site=All&min=2000&max=5000", http.StatusOK, "scatter"},
		{"unknown output", "/api/figures/nope", http.StatusNotFound, "unknown output"},
		{"unknown site", "/api/figures/success-pie-chart?site=Boca+Chica", http.StatusBadRequest, "unknown launch site"},
		{"bad bound", "/api/figures/success-payload-scatter-chart?min=abc", http.StatusBadRequest, "invalid payload bound"},
		{"nan bounds", "/api/figures/success-payload-scatter-chart?min=NaN&max=NaN", http.StatusBadRequest, "invalid payload bound"},
		{"infinite bound", "/api/figures/success-payload-scatter-chart?min=3000&max=Inf", http.StatusBadRequest, "invalid payload bound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestFigurePNG(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts, "/api/figures/success-pie-chart.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(body), "\x89PNG"))

	resp, _ = get(t, ts, "/api/figures/success-payload-scatter-chart.png?min=100000&max=200000")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLaunches(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts, "/api/launches?site=CCAFS+LC-40")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []launchJSON
	require.NoError(t, json.Unmarshal(body, &rows))
	assert.Len(t, rows, 2)

	_, body = get(t, ts, "/api/launches?min=2000&max=5000")
	require.NoError(t, json.Unmarshal(body, &rows))
	assert.Len(t, rows, 4)

	// reversed bounds are swapped
	_, body = get(t, ts, "/api/launches?min=5000&max=2000")
	require.NoError(t, json.Unmarshal(body, &rows))
	assert.Len(t, rows, 4)

	resp, _ = get(t, ts, "/api/launches?site=nowhere")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts, "/api/launches?min=NaN&max=NaN")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts, "/api/figures/success-payload-scatter-chart.png?min=NaN")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", figure.ErrInvalidRange), http.StatusBadRequest},
		{dataset.ErrUnknownSite, http.StatusBadRequest},
		{figure.ErrEmptyFigure, http.StatusUnprocessableEntity},
		{callbacks.ErrUnknownOutput, http.StatusNotFound},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"bound": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to encode response")
}

func TestSitesGeoJSON(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := get(t, ts, "/api/sites.geojson")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []any  `json:"features"`
	}
	require.NoError(t, json.Unmarshal(body, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 4)
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t)
	get(t, ts, "/api/figures/success-pie-chart")

	resp, body := get(t, ts, "/api/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st monitor.Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, "memory", st.StorageType)
	assert.Equal(t, 6, st.Rows)
	assert.Equal(t, 1, st.CallbacksProcessed)
}

func TestStatus_NoMonitor(t *testing.T) {
	s, ts := newTestServer(t)
	s.deps.Monitor = nil
	resp, _ := get(t, ts, "/api/status")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx, ln, config.ServerConfig{ShutdownTimeout: time.Second})
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthcheck")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	http.DefaultClient.CloseIdleConnections()
}
