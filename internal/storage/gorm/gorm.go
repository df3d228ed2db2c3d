// Package gormstorage implements the storage backend on top of GORM. The
// SQLite and Postgres backends embed it and only differ in how they open
// the connection.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/launchdash/dashboard/internal/database"
	"github.com/launchdash/dashboard/internal/model"
	"github.com/launchdash/dashboard/internal/model/convert"
	"github.com/launchdash/dashboard/internal/queue"
	"github.com/launchdash/dashboard/pkg/core"
)

// DefaultBatchSize is the number of launch rows per INSERT.
const DefaultBatchSize = 500

// ErrNoDB is returned by Init when no connection was injected.
var ErrNoDB = errors.New("gorm backend has no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB        *gorm.DB
	Logger    zerolog.Logger
	BatchSize int
}

// Backend implements storage.Backend with GORM.
type Backend struct {
	deps    Dependencies
	pending *queue.Queue[model.Launch]
	// serializes imports so a flush never mixes two datasets
	mu sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.BatchSize <= 0 {
		deps.BatchSize = DefaultBatchSize
	}
	return &Backend{
		deps:    deps,
		pending: queue.New[model.Launch](),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	b.deps.Logger.Info().Str("dialect", b.deps.DB.Name()).Msg("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}
	b.deps.Logger.Info().Msg("Database setup complete")
	return nil
}

// Close releases the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// ImportLaunches stores ds as a new dataset row and writes its launches in
// batches. ds.ID, ds.Rows and ds.LoadedAt are filled in.
func (b *Backend) ImportLaunches(ds *core.DatasetInfo, launches []core.Launch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ds.ID = 0
	ds.Rows = len(launches)
	gormDataset, err := convert.DatasetToGorm(*ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset columns: %w", err)
	}
	if gormDataset.LoadedAt.IsZero() {
		gormDataset.LoadedAt = b.deps.DB.NowFunc()
	}

	err = b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&gormDataset).Error; err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}
		for _, l := range launches {
			b.pending.Push(convert.LaunchToGorm(gormDataset.ID, l))
		}
		return b.flush(tx)
	})
	if err != nil {
		b.pending.Clear()
		return err
	}

	ds.ID = gormDataset.ID
	ds.LoadedAt = gormDataset.LoadedAt
	b.deps.Logger.Info().
		Uint("dataset", ds.ID).
		Int("rows", ds.Rows).
		Str("source", ds.SourcePath).
		Msg("Imported launches")
	return nil
}

// flush drains the pending queue into the database one batch per insert.
func (b *Backend) flush(tx *gorm.DB) error {
	written := 0
	for batch := b.pending.PopBatch(b.deps.BatchSize); batch != nil; batch = b.pending.PopBatch(b.deps.BatchSize) {
		if err := tx.Create(&batch).Error; err != nil {
			return fmt.Errorf("failed to insert %d launches after %d: %w", len(batch), written, err)
		}
		written += len(batch)
		b.deps.Logger.Debug().Int("count", len(batch)).Int("written", written).Msg("Wrote launch batch")
	}
	return nil
}

// LatestDataset returns the most recently imported dataset.
func (b *Backend) LatestDataset() (core.DatasetInfo, error) {
	var ds model.Dataset
	err := b.deps.DB.Order("id DESC").Take(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.DatasetInfo{}, core.ErrNoDataset
	}
	if err != nil {
		return core.DatasetInfo{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	return convert.DatasetToCore(ds), nil
}

// Launches returns the rows of the latest dataset in file order.
func (b *Backend) Launches() ([]core.Launch, error) {
	ds, err := b.LatestDataset()
	if err != nil {
		return nil, err
	}

	var rows []model.Launch
	err = b.deps.DB.
		Omit("location").
		Where("dataset_id = ?", ds.ID).
		Order("row_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load launches: %w", err)
	}

	out := make([]core.Launch, 0, len(rows))
	for _, r := range rows {
		out = append(out, convert.LaunchToCore(r))
	}
	return out, nil
}
