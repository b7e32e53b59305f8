// Package backend opens the configured report store.
package backend

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/internal/storage/postgres"
	"github.com/scrypster/folio/internal/storage/sqlite"
)

// DatabaseFile is the SQLite file name inside the data directory.
const DatabaseFile = "folio.db"

// Open returns the report store selected by cfg.Engine. A DataPath of
// ":memory:" opens a throwaway in-memory SQLite database.
func Open(cfg config.StorageConfig, logger logrus.FieldLogger) (storage.ReportStore, error) {
	switch cfg.Engine {
	case "", "sqlite":
		dsn := ":memory:"
		if cfg.DataPath != ":memory:" {
			if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
				return nil, fmt.Errorf("backend: create data dir: %w", err)
			}
			dsn = filepath.Join(cfg.DataPath, DatabaseFile)
		}
		return sqlite.NewReportStore(dsn, sqlite.WithLogger(logger))
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%w: postgres engine requires a DSN", storage.ErrInvalidInput)
		}
		return postgres.NewReportStore(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: unknown storage engine %q", storage.ErrInvalidInput, cfg.Engine)
	}
}
