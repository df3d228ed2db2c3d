// Package sqlitestorage implements the storage backend on SQLite. With a dump
// interval the database lives in memory and is periodically written to disk
// via VACUUM INTO; otherwise it is opened directly at the configured path.
package sqlitestorage

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/database"
	gormstorage "github.com/launchdash/dashboard/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
	once     sync.Once
}

// New opens the SQLite database described by cfg.
func New(cfg config.SQLiteConfig, log zerolog.Logger) (*Backend, error) {
	path := cfg.Path
	if cfg.DumpInterval > 0 {
		path = ""
	}

	db, err := database.OpenSqlite(path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
		db:      db,
		cfg:     cfg,
		log:     log,
	}, nil
}

// InMemory reports whether the database is held in memory.
func (b *Backend) InMemory() bool {
	return b.cfg.Path == "" || b.cfg.DumpInterval > 0
}

// Init migrates the schema and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.Path != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go func() {
			defer close(b.done)
			database.DumpLoop(b.db, b.cfg.Path, b.cfg.DumpInterval, b.stopChan, b.log)
		}()
	}
	return nil
}

// Close stops the dump goroutine, which writes a final dump, then closes
// the connection.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
			<-b.done
		}
		err = b.Backend.Close()
	})
	return err
}
