package callbacks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/dispatcher"
	"github.com/launchdash/dashboard/internal/figure"
	"github.com/launchdash/dashboard/pkg/core"
)

// RegisterHandlers registers all callbacks with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	m.d = d

	// Figure callbacks - sync, the caller waits for the chart
	d.Register(core.SuccessPieChart, m.handlePie, dispatcher.Logged())
	d.Register(core.PayloadScatterChart, m.handleScatter, dispatcher.Logged())

	// Interaction metrics - buffered, dropped when the writer falls behind
	d.Register(InteractionCommand, m.handleInteraction, dispatcher.Buffered(1000))
}

func (m *Manager) handlePie(e dispatcher.Event) (any, error) {
	start := time.Now()
	f, err := m.build(core.SuccessPieChart, e.Inputs, func() (figure.Figure, error) {
		return figure.Pie(m.deps.Table, e.Inputs.Site)
	})
	if err != nil {
		return nil, err
	}
	m.finish(core.SuccessPieChart, e.Inputs, f.(*figure.PieFigure).Total(), time.Since(start))
	return f, nil
}

func (m *Manager) handleScatter(e dispatcher.Event) (any, error) {
	start := time.Now()
	in := e.Inputs
	if in.Payload == nil {
		r := m.deps.Table.DefaultPayload()
		in.Payload = &r
	}
	f, err := m.build(core.PayloadScatterChart, in, func() (figure.Figure, error) {
		return figure.Scatter(m.deps.Table, in.Site, *in.Payload)
	})
	if err != nil {
		return nil, err
	}
	m.finish(core.PayloadScatterChart, in, f.(*figure.ScatterFigure).Len(), time.Since(start))
	return f, nil
}

func (m *Manager) build(output string, in core.Inputs, fn func() (figure.Figure, error)) (figure.Figure, error) {
	if m.deps.Cache == nil {
		return fn()
	}
	return m.deps.Cache.GetOrBuild(cache.Key(output, in), fn)
}

// finish updates the stats and queues the interaction for the metrics writer.
func (m *Manager) finish(output string, in core.Inputs, rows int, took time.Duration) {
	m.observe(took)
	if m.deps.Recorder == nil {
		return
	}

	site := in.Site
	if in.IsAllSites() {
		site = core.AllSites
	}
	_, err := m.d.Dispatch(dispatcher.Event{
		Command: InteractionCommand,
		Args: []string{
			output,
			site,
			strconv.Itoa(rows),
			strconv.FormatInt(took.Microseconds(), 10),
		},
	})
	if err != nil {
		m.deps.Logger.Debug("interaction not recorded", "output", output, "error", err)
	}
}

func (m *Manager) handleInteraction(e dispatcher.Event) (any, error) {
	if len(e.Args) != 4 {
		return nil, fmt.Errorf("interaction: expected 4 args, got %d", len(e.Args))
	}
	rows, err := strconv.Atoi(e.Args[2])
	if err != nil {
		return nil, fmt.Errorf("interaction rows: %w", err)
	}
	micros, err := strconv.ParseInt(e.Args[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("interaction duration: %w", err)
	}

	took := time.Duration(micros) * time.Microsecond
	if err := m.deps.Recorder.RecordCallback(context.Background(), e.Args[0], e.Args[1], rows, took); err != nil {
		return nil, fmt.Errorf("recording interaction: %w", err)
	}
	return nil, nil
}
