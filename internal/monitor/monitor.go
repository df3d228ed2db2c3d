package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/launchdash/dashboard/internal/cache"
	"github.com/launchdash/dashboard/internal/callbacks"
	"github.com/launchdash/dashboard/pkg/core"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Callbacks   *callbacks.Manager
	Cache       *cache.FigureCache
	StorageType string
	// Dataset reports the dataset currently served, nil when unknown
	Dataset func() (core.DatasetInfo, error)
	// Sessions reports the number of open WebSocket sessions, nil when unknown
	Sessions   func() int
	StatusFile string
	Logger     *slog.Logger
	Now        func() time.Time
}

// Status is a point-in-time snapshot of the dashboard.
type Status struct {
	Time               time.Time `json:"time"`
	Uptime             string    `json:"uptime"`
	StorageType        string    `json:"storageType"`
	DatasetID          uint      `json:"datasetId,omitempty"`
	SourcePath         string    `json:"sourcePath,omitempty"`
	Rows               int       `json:"rows"`
	Sites              int       `json:"sites"`
	CachedFigures      int       `json:"cachedFigures"`
	CacheHits          int       `json:"cacheHits"`
	CacheMisses        int       `json:"cacheMisses"`
	CallbacksProcessed int       `json:"callbacksProcessed"`
	LastCallbackMs     float64   `json:"lastCallbackMs"`
	Sessions           int       `json:"sessions"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	started   time.Time
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps:    deps,
		started: deps.Now(),
	}
}

// IsRunning returns whether the status writer is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status collects the current status. Missing dependencies leave their
// fields at zero.
func (s *Service) Status() Status {
	now := s.deps.Now()
	st := Status{
		Time:        now,
		Uptime:      now.Sub(s.started).Truncate(time.Second).String(),
		StorageType: s.deps.StorageType,
	}

	if m := s.deps.Callbacks; m != nil {
		t := m.Table()
		st.Rows = t.Len()
		st.Sites = len(t.Sites())
		processed, last := m.Stats()
		st.CallbacksProcessed = processed
		st.LastCallbackMs = float64(last.Microseconds()) / 1000
	}
	if c := s.deps.Cache; c != nil {
		st.CachedFigures = c.Len()
		st.CacheHits = c.Hits.Value()
		st.CacheMisses = c.Misses.Value()
	}
	if s.deps.Dataset != nil {
		if ds, err := s.deps.Dataset(); err == nil {
			st.DatasetID = ds.ID
			st.SourcePath = ds.SourcePath
		}
	}
	if s.deps.Sessions != nil {
		st.Sessions = s.deps.Sessions()
	}
	return st
}

// Start writes the status to the status file every interval until Stop.
// It is a no-op without a status file or when already running.
func (s *Service) Start(interval time.Duration) error {
	if s.deps.StatusFile == "" {
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	statusFile, err := os.Create(s.deps.StatusFile)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("error creating status file: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer statusFile.Close()
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "path", s.deps.StatusFile)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := s.writeStatus(statusFile); err != nil {
				logger.Error("Error writing status file", "error", err)
			}
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()

	return nil
}

func (s *Service) writeStatus(f *os.File) error {
	raw, err := json.MarshalIndent(s.Status(), "", "  ")
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	_, err = f.Write(append(raw, '\n'))
	return err
}

// Stop stops the status writer and waits for it to exit
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning || s.stopChan == nil {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.done
	s.stopChan = nil
	s.mu.Unlock()

	close(stop)
	<-done
}
