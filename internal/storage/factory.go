// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/storage/memory"
	"github.com/launchdash/dashboard/internal/storage/postgres"
	sqlitestorage "github.com/launchdash/dashboard/internal/storage/sqlite"
)

// Storage type names accepted in storage.type.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// NewBackend creates a storage backend based on configuration. Init is not
// called.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case TypeMemory, "":
		return memory.New(cfg.Memory), nil
	case TypeSQLite:
		return sqlitestorage.New(cfg.SQLite, log)
	case TypePostgres:
		return postgres.New(cfg.DB, log), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
