// Package postgres implements the storage backend on PostgreSQL.
package postgres

import (
	"github.com/rs/zerolog"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/database"
	gormstorage "github.com/launchdash/dashboard/internal/storage/gorm"
)

// Backend wraps the GORM backend and owns the Postgres connection.
type Backend struct {
	*gormstorage.Backend
	cfg config.DBConfig
	log zerolog.Logger
}

// New creates a Postgres backend. The connection is opened by Init.
func New(cfg config.DBConfig, log zerolog.Logger) *Backend {
	return &Backend{cfg: cfg, log: log}
}

// Init connects, pings and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.OpenPostgres(b.cfg, b.log)
	if err != nil {
		return err
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log, BatchSize: 1000})
	return b.Backend.Init()
}

// Close closes the connection if Init succeeded.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
