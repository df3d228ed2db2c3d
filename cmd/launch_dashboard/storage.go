package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/dataset"
	"github.com/launchdash/dashboard/internal/dispatcher"
	"github.com/launchdash/dashboard/internal/influx"
	"github.com/launchdash/dashboard/internal/logging"
	"github.com/launchdash/dashboard/internal/parser"
	"github.com/launchdash/dashboard/internal/storage"
	"github.com/launchdash/dashboard/pkg/core"
)

func initStorage() (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := storage.NewBackend(storageCfg, ZLogger)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err, "type", storageCfg.Type)
		return nil, fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}

	storageType = storageCfg.Type
	if storageType == "" {
		storageType = storage.TypeMemory
	}
	Logger.Info("Storage backend initialized", "type", storageType)
	return backend, nil
}

func closeStorage(backend storage.Backend) {
	if err := backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
		return
	}
	if e, ok := backend.(storage.Exportable); ok && e.ExportPath() != "" {
		Logger.Info("Dataset exported", "path", e.ExportPath())
	}
}

// importCSV parses the configured CSV and stores it as a new dataset.
func importCSV(backend storage.Backend) (core.DatasetInfo, error) {
	path := config.GetDataConfig().CSVPath
	res, err := parser.NewParser(Logger).ParseFile(path)
	if err != nil {
		return core.DatasetInfo{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	info := res.Info(path)
	if err := backend.ImportLaunches(&info, res.Launches); err != nil {
		return core.DatasetInfo{}, fmt.Errorf("failed to import launches: %w", err)
	}
	Logger.Info("Imported launch records",
		"path", path,
		"dataset", info.ID,
		"rows", info.Rows,
		"skipped", info.Skipped,
	)
	return info, nil
}

// loadTable imports the CSV when data.importOnStart is set and then reads the
// latest dataset back from the backend.
func loadTable(backend storage.Backend) (*dataset.Table, error) {
	if config.GetDataConfig().ImportOnStart {
		if _, err := importCSV(backend); err != nil {
			return nil, err
		}
	}

	launches, err := backend.Launches()
	if errors.Is(err, core.ErrNoDataset) {
		return nil, fmt.Errorf("%w: enable data.importOnStart or run the import command", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read launches: %w", err)
	}

	table := dataset.New(launches)
	datasetRows = table.Len()
	Logger.Info("Launch table loaded", "rows", table.Len(), "sites", len(table.Sites()))
	return table, nil
}

// callbackStack is the dispatcher and callback manager pair serving figures.
type callbackStack struct {
	dispatcher *dispatcher.Dispatcher
	callbacks  *callbacks.Manager
	cache      *cache.FigureCache
	influx     *influx.Manager
}

// newCallbackStack wires the callbacks for table. Interaction metrics are
// recorded only when withMetrics is set and influx is enabled.
func newCallbackStack(ctx context.Context, table *dataset.Table, withMetrics bool) (*callbackStack, error) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	s := &callbackStack{dispatcher: d}
	deps := callbacks.Dependencies{
		Table:  table,
		Logger: Logger,
	}
	if config.GetDashboardConfig().CacheFigures {
		s.cache = cache.NewFigureCache(config.GetDashboardConfig().CacheSize)
		deps.Cache = s.cache
	}

	influxCfg := config.GetInfluxConfig()
	if withMetrics && influxCfg.Enabled {
		m := influx.NewManager(ZLogger, influxCfg)
		if err := m.Connect(ctx); err != nil {
			Logger.Error("Failed to set up interaction metrics", "error", err)
		} else {
			s.influx = m
			deps.Recorder = m
		}
	}

	s.callbacks = callbacks.NewManager(deps)
	s.callbacks.RegisterHandlers(d)
	Logger.Debug("Callback handlers registered", "commands", d.Commands())
	return s, nil
}

// Close drains queued interactions before closing the metrics writer.
func (s *callbackStack) Close() {
	s.dispatcher.Close()
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			Logger.Error("Failed to close influx manager", "error", err)
		}
	}
}

func layoutFor(table *dataset.Table) dataset.Layout {
	cfg := config.GetDashboardConfig()
	return table.Layout(cfg.Title, dataset.SliderConfig{
		Min:  cfg.PayloadSlider.Min,
		Max:  cfg.PayloadSlider.Max,
		Step: cfg.PayloadSlider.Step,
	})
}
