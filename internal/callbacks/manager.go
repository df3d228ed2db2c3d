// Package callbacks wires the dashboard's reactive callback graph onto the
// dispatcher. Each chart output is a dispatcher command; an interaction
// re-runs exactly the outputs whose inputs changed.
package callbacks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/dispatcher"
	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/pkg/core"
)

// InteractionCommand is the buffered command that records callback executions.
const InteractionCommand = ":INTERACTION:"

var (
	// ErrUnknownOutput is returned for an output ID that is not in the graph.
	ErrUnknownOutput = errors.New("unknown output")
	// ErrNotRegistered is returned when the manager has no dispatcher yet.
	ErrNotRegistered = errors.New("callbacks not registered with a dispatcher")
)

// Output is one node of the callback graph.
type Output struct {
	ID     string
	Inputs []string
}

// Graph lists every output in render order together with the inputs it reads.
var Graph = []Output{
	{ID: core.SuccessPieChart, Inputs: []string{core.SiteDropdown}},
	{ID: core.PayloadScatterChart, Inputs: []string{core.SiteDropdown, core.PayloadSlider}},
}

// InteractionRecorder stores one completed callback execution.
type InteractionRecorder interface {
	RecordCallback(ctx context.Context, output, site string, rows int, took time.Duration) error
}

// Dependencies holds all dependencies for the callback manager
type Dependencies struct {
	Table *dataset.Table
	// Cache memoizes figures; nil disables memoization.
	Cache *cache.FigureCache
	// Recorder receives interaction metrics; nil disables recording.
	Recorder InteractionRecorder
	Logger   *slog.Logger
}

// Result is the outcome of one output callback.
type Result struct {
	Output string
	Figure figure.Figure
	Err    error
}

// Manager runs the dashboard callbacks.
type Manager struct {
	deps Dependencies
	d    *dispatcher.Dispatcher

	processed    cache.SafeCounter
	mu           sync.Mutex
	lastDuration time.Duration
}

// NewManager creates a new callback manager
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

// Table returns the launch table the callbacks read.
func (m *Manager) Table() *dataset.Table {
	return m.deps.Table
}

// Dependents returns the outputs that read at least one changed input, in
// graph order. An empty change list is the initial render and selects every
// output.
func Dependents(changed []string) []string {
	var out []string
	for _, o := range Graph {
		if len(changed) == 0 || readsAny(o, changed) {
			out = append(out, o.ID)
		}
	}
	return out
}

// IsOutput reports whether id names an output of the graph.
func IsOutput(id string) bool {
	for _, o := range Graph {
		if o.ID == id {
			return true
		}
	}
	return false
}

func readsAny(o Output, changed []string) bool {
	for _, in := range o.Inputs {
		for _, c := range changed {
			if in == c {
				return true
			}
		}
	}
	return false
}

// Update runs every callback that depends on a changed input and returns one
// result per recomputed output. A failing output does not stop the others.
func (m *Manager) Update(changed []string, in core.Inputs) ([]Result, error) {
	if m.d == nil {
		return nil, ErrNotRegistered
	}
	outputs := Dependents(changed)
	results := make([]Result, 0, len(outputs))
	for _, id := range outputs {
		f, err := m.Figure(id, in)
		results = append(results, Result{Output: id, Figure: f, Err: err})
	}
	return results, nil
}

// Figure runs the callback of a single output.
func (m *Manager) Figure(output string, in core.Inputs) (figure.Figure, error) {
	if m.d == nil {
		return nil, ErrNotRegistered
	}
	if !IsOutput(output) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOutput, output)
	}
	res, err := m.d.Dispatch(dispatcher.Event{Command: output, Inputs: in})
	if err != nil {
		return nil, err
	}
	return res.(figure.Figure), nil
}

// Stats reports the number of executed callbacks and the duration of the last one.
func (m *Manager) Stats() (processed int, last time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processed.Value(), m.lastDuration
}

func (m *Manager) observe(took time.Duration) {
	m.processed.Inc()
	m.mu.Lock()
	m.lastDuration = took
	m.mu.Unlock()
}
