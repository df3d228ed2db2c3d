package callbacks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/dispatcher"
	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/pkg/core"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) { l.add(msg) }
func (l *mockLogger) Info(msg string, keysAndValues ...any)  { l.add(msg) }
func (l *mockLogger) Error(msg string, keysAndValues ...any) { l.add(msg) }

func (l *mockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

type recorded struct {
	output, site string
	rows         int
}

// mockRecorder implements InteractionRecorder for testing
type mockRecorder struct {
	mu    sync.Mutex
	calls []recorded
	err   error
}

func (r *mockRecorder) RecordCallback(_ context.Context, output, site string, rows int, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{output, site, rows})
	return r.err
}

func (r *mockRecorder) snapshot() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func launch(site string, payload float64, class core.Outcome, category string) core.Launch {
	return core.Launch{LaunchSite: site, PayloadMassKg: payload, Class: class, BoosterCategory: category}
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

func setup(t *testing.T, deps Dependencies) (*Manager, *dispatcher.Dispatcher) {
	t.Helper()
	if deps.Table == nil {
		deps.Table = testTable()
	}
	d, err := dispatcher.New(&mockLogger{})
	require.NoError(t, err)
	m := NewManager(deps)
	m.RegisterHandlers(d)
	t.Cleanup(d.Close)
	return m, d
}

func TestRegisterHandlers(t *testing.T) {
	_, d := setup(t, Dependencies{})

	assert.True(t, d.HasHandler(core.SuccessPieChart))
	assert.True(t, d.HasHandler(core.PayloadScatterChart))
	assert.True(t, d.HasHandler(InteractionCommand))
}

func TestDependents(t *testing.T) {
	tests := []struct {
		name    string
		changed []string
		want    []string
	}{
		{"site drives both", []string{core.SiteDropdown}, []string{core.SuccessPieChart, core.PayloadScatterChart}},
		{"slider drives scatter only", []string{core.PayloadSlider}, []string{core.PayloadScatterChart}},
		{"both inputs", []string{core.PayloadSlider, core.SiteDropdown}, []string{core.SuccessPieChart, core.PayloadScatterChart}},
		{"initial render", nil, []string{core.SuccessPieChart, core.PayloadScatterChart}},
		{"unrelated component", []string{"something-else"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dependents(tt.changed))
		})
	}
}

func TestUpdate_NotRegistered(t *testing.T) {
	m := NewManager(Dependencies{Table: testTable()})

	_, err := m.Update(nil, core.Inputs{})
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestUpdate_SliderOnlyRecomputesScatter(t *testing.T) {
	m, _ := setup(t, Dependencies{})

	r := core.PayloadRange{2000, 5000}
	results, err := m.Update([]string{core.PayloadSlider}, core.Inputs{Site: core.AllSites, Payload: &r})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.PayloadScatterChart, results[0].Output)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 4, results[0].Figure.(*figure.ScatterFigure).Len())
}

func TestUpdate_SiteChangeRecomputesBoth(t *testing.T) {
	m, _ := setup(t, Dependencies{})

	results, err := m.Update([]string{core.SiteDropdown}, core.Inputs{Site: "KSC LC-39A"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	pie := results[0].Figure.(*figure.PieFigure)
	assert.Equal(t, 2, pie.Total())

	// A missing slider value falls back to the data bounds.
	scatter := results[1].Figure.(*figure.ScatterFigure)
	assert.Equal(t, core.PayloadRange{0, 9600}, scatter.Range)
	assert.Equal(t, 2, scatter.Len())

	processed, _ := m.Stats()
	assert.Equal(t, 2, processed)
}

func TestUpdate_UnknownSiteReportsPerOutput(t *testing.T) {
	m, _ := setup(t, Dependencies{})

	results, err := m.Update([]string{core.SiteDropdown}, core.Inputs{Site: "Boca Chica"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, dataset.ErrUnknownSite, r.Output)
		assert.Nil(t, r.Figure)
	}
}

func TestFigure_UnknownOutput(t *testing.T) {
	m, _ := setup(t, Dependencies{})

	_, err := m.Figure(InteractionCommand, core.Inputs{})
	assert.ErrorIs(t, err, ErrUnknownOutput)

	_, err = m.Figure("nope", core.Inputs{})
	assert.ErrorIs(t, err, ErrUnknownOutput)
}

func TestFigure_UsesCache(t *testing.T) {
	c := cache.NewFigureCache(0)
	m, _ := setup(t, Dependencies{Cache: c})

	f1, err := m.Figure(core.SuccessPieChart, core.Inputs{Site: ""})
	require.NoError(t, err)
	f2, err := m.Figure(core.SuccessPieChart, core.Inputs{Site: core.AllSites})
	require.NoError(t, err)

	assert.Same(t, f1, f2)
	assert.Equal(t, 1, c.Hits.Value())
	assert.Equal(t, 1, c.Len())
}

func TestInteractionsRecorded(t *testing.T) {
	rec := &mockRecorder{}
	m, d := setup(t, Dependencies{Recorder: rec})

	r := core.PayloadRange{0, 10000}
	_, err := m.Update(nil, core.Inputs{Site: "", Payload: &r})
	require.NoError(t, err)

	// Close drains the buffered interaction queue.
	d.Close()

	calls := rec.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, recorded{core.SuccessPieChart, core.AllSites, 4}, calls[0])
	assert.Equal(t, recorded{core.PayloadScatterChart, core.AllSites, 6}, calls[1])
}

func TestHandleInteraction_BadArgs(t *testing.T) {
	m, _ := setup(t, Dependencies{Recorder: &mockRecorder{}})

	tests := []struct {
		name string
		args []string
	}{
		{"too few", []string{"a"}},
		{"bad rows", []string{"a", "b", "x", "1"}},
		{"bad duration", []string{"a", "b", "1", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.handleInteraction(dispatcher.Event{Command: InteractionCommand, Args: tt.args})
			assert.Error(t, err)
		})
	}
}

func TestHandleInteraction_RecorderError(t *testing.T) {
	boom := errors.New("influx down")
	m, _ := setup(t, Dependencies{Recorder: &mockRecorder{err: boom}})

	_, err := m.handleInteraction(dispatcher.Event{Args: []string{"o", "s", "1", "2"}})
	assert.ErrorIs(t, err, boom)
}
