// Package memory implements the storage backend that keeps the imported
// dataset in process memory and optionally exports it as JSON on close.
package memory

import (
	"sync"
	"time"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/pkg/core"
)

// Backend stores the latest dataset in memory
type Backend struct {
	cfg      config.MemoryConfig
	dataset  *core.DatasetInfo
	launches []core.Launch

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close exports the dataset when an export directory is configured
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg.ExportDir == "" || b.dataset == nil {
		return nil
	}
	return b.exportJSON()
}

// ImportLaunches replaces the stored dataset. ds.ID and ds.Rows are assigned
// here; LoadedAt defaults to now.
func (b *Backend) ImportLaunches(ds *core.DatasetInfo, launches []core.Launch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	ds.ID = b.idCounter
	ds.Rows = len(launches)
	if ds.LoadedAt.IsZero() {
		ds.LoadedAt = time.Now().UTC()
	}

	stored := *ds
	stored.Columns = append([]string(nil), ds.Columns...)
	b.dataset = &stored
	b.launches = append(make([]core.Launch, 0, len(launches)), launches...)
	return nil
}

// Launches returns a copy of the stored rows in import order
func (b *Backend) Launches() ([]core.Launch, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.dataset == nil {
		return nil, core.ErrNoDataset
	}
	return append(make([]core.Launch, 0, len(b.launches)), b.launches...), nil
}

// LatestDataset returns the metadata of the last import
func (b *Backend) LatestDataset() (core.DatasetInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.dataset == nil {
		return core.DatasetInfo{}, core.ErrNoDataset
	}
	return *b.dataset, nil
}

// ExportPath returns the file written by the last export, empty if none
func (b *Backend) ExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
