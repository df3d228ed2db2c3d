package database

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/launchdash/dashboard/internal/config"
	"github.com/launchdash/dashboard/internal/model"
)

// ErrNoDumpPath is returned when a dump is requested without a target file.
var ErrNoDumpPath = errors.New("sqlite file path not set")

var sqlitePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
	"PRAGMA foreign_keys = ON;",
}

// PostgresDSN builds the connection string for cfg.
func PostgresDSN(cfg config.DBConfig) string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
	)
}

// OpenPostgres opens and pings a Postgres connection.
func OpenPostgres(cfg config.DBConfig, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  PostgresDSN(cfg),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        1000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	log.Info().Msg("Connected to Postgres DB")
	return db, nil
}

// OpenSqlite opens a SQLite database at path. An empty path opens a private
// in-memory database that is only persisted through DumpSqliteToDisk.
func OpenSqlite(path string, log zerolog.Logger) (*gorm.DB, error) {
	dsn := path
	if path == "" {
		// a unique name keeps separate in-memory databases from sharing state
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	for _, pragma := range sqlitePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	if path == "" {
		log.Info().Msg("Using local SQLite DB in memory with periodic disk dump")
	} else {
		log.Info().Str("path", path).Msg("Using local SQLite DB")
	}
	return db, nil
}

// Migrate creates or updates the launch tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DumpSqliteToDisk vacuums db into a file at path, replacing any previous dump.
func DumpSqliteToDisk(db *gorm.DB, path string) error {
	if path == "" {
		return ErrNoDumpPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing existing DB file: %w", err)
		}
	}

	if err := db.Exec("VACUUM INTO 'file:" + strings.ReplaceAll(path, "'", "''") + "';").Error; err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %w", err)
	}
	return nil
}

// DumpLoop dumps db every interval until stop is closed, then dumps once more.
func DumpLoop(db *gorm.DB, path string, interval time.Duration, stop <-chan struct{}, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	dump := func() {
		start := time.Now()
		if err := DumpSqliteToDisk(db, path); err != nil {
			log.Error().Err(err).Msg("Failed to dump SQLite DB")
			return
		}
		log.Debug().Dur("duration", time.Since(start)).Str("path", path).Msg("Dumped memory DB to disk")
	}

	for {
		select {
		case <-ticker.C:
			dump()
		case <-stop:
			dump()
			return
		}
	}
}
