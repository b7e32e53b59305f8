// Package sqlite provides a SQLite implementation of storage.ReportStore.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/folio/internal/storage"
)

// ReportStore implements storage.ReportStore using SQLite.
type ReportStore struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

// Option configures a ReportStore.
type Option func(*ReportStore)

// WithLogger sets the logger used for recovery and shutdown messages.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *ReportStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewReportStore opens (or creates) a SQLite report store with WAL
// self-healing. If the initial open fails due to stale WAL files left
// behind by a crashed process, it verifies no other process holds them and
// retries once after removing the stale -shm/-wal files.
func NewReportStore(dsn string, opts ...Option) (*ReportStore, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	base := &ReportStore{logger: logger}
	for _, opt := range opts {
		opt(base)
	}

	db, err := openDB(dsn)
	if err == nil {
		base.db = db
		return base, nil
	}

	if !isRecoverableWALError(err) {
		return nil, err
	}

	dbPath := dbPathFromDSN(dsn)
	if dbPath == "" || !isWALStale(dbPath) {
		return nil, err
	}

	removeStaleWAL(dbPath, base.logger)

	db, retryErr := openDB(dsn)
	if retryErr != nil {
		return nil, fmt.Errorf("sqlite: failed after WAL recovery: %w (original: %v)", retryErr, err)
	}

	base.logger.WithField("path", dbPath).Warn("sqlite: recovered from stale WAL files")
	base.db = db
	return base, nil
}

// openDB opens a SQLite database, configures WAL mode, and creates the schema.
func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY under concurrent load; it also
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return db, nil
}

// Save creates or replaces a record.
func (s *ReportStore) Save(ctx context.Context, record *storage.Record) error {
	if record == nil {
		return storage.ErrInvalidInput
	}
	if record.ID == "" {
		return fmt.Errorf("%w: record ID is required", storage.ErrInvalidInput)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	reportJSON, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("sqlite: failed to marshal report: %w", err)
	}

	stats := record.Report.Stats
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (
			id, source, created_at, is_valid, score,
			total_entities, duplicates, broken_references, unused_entities, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			created_at = excluded.created_at,
			is_valid = excluded.is_valid,
			score = excluded.score,
			total_entities = excluded.total_entities,
			duplicates = excluded.duplicates,
			broken_references = excluded.broken_references,
			unused_entities = excluded.unused_entities,
			report = excluded.report
	`,
		record.ID, record.Source, record.CreatedAt.UnixNano(), record.Report.IsValid, record.Score,
		stats.TotalEntities, stats.Duplicates, stats.BrokenReferences, stats.UnusedEntities,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save report %s: %w", record.ID, err)
	}
	return nil
}

const selectColumns = `SELECT id, source, created_at, score, report FROM reports`

// Get retrieves a record by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*storage.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: record ID is required", storage.ErrInvalidInput)
	}
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	return scanRecord(row)
}

// Latest returns the newest record.
func (s *ReportStore) Latest(ctx context.Context) (*storage.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` ORDER BY created_at DESC, id DESC LIMIT 1`)
	return scanRecord(row)
}

// List returns records newest first.
func (s *ReportStore) List(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[storage.Record], error) {
	opts.Normalize()

	where := ""
	if opts.ValidOnly {
		where = ` WHERE is_valid = 1`
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+where).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: failed to count reports: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list reports: %w", err)
	}
	defer rows.Close()

	var items []storage.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate reports: %w", err)
	}

	return storage.NewPage(items, total, opts), nil
}

// GetDB returns the underlying database connection.
func (s *ReportStore) GetDB() *sql.DB {
	return s.db
}

// Close flushes the WAL into the main database file and releases resources.
// The TRUNCATE checkpoint removes the -shm and -wal files so that another
// folio process can open the database without stale WAL state.
func (s *ReportStore) Close() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.WithError(err).Warn("sqlite: WAL checkpoint on close failed")
	}

	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*storage.Record, error) {
	var (
		r          storage.Record
		createdAt  int64
		reportJSON string
	)
	err := row.Scan(&r.ID, &r.Source, &createdAt, &r.Score, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to scan report: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &r.Report); err != nil {
		return nil, fmt.Errorf("sqlite: failed to decode report %s: %w", r.ID, err)
	}
	r.CreatedAt = time.Unix(0, createdAt).UTC()
	return &r, nil
}

// dbPathFromDSN extracts the filesystem path from a SQLite DSN.
// Handles bare paths ("/path/to/db.sqlite") and file: URIs ("file:/path/to/db.sqlite?mode=rwc").
// Returns empty string for in-memory databases or unparseable DSNs.
func dbPathFromDSN(dsn string) string {
	if dsn == ":memory:" || dsn == "" {
		return ""
	}

	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == ":memory:" || path == "" {
			return ""
		}
		return path
	}

	return dsn
}

// isRecoverableWALError returns true if the error matches patterns caused by
// stale WAL files left behind after a crash.
func isRecoverableWALError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database is locked")
}

// isWALStale checks whether -shm/-wal files exist for the given database path
// and no other process currently holds them open (via lsof).
// Returns false if lsof is unavailable.
func isWALStale(dbPath string) bool {
	shmPath := dbPath + "-shm"
	walPath := dbPath + "-wal"

	if !fileExists(shmPath) && !fileExists(walPath) {
		return false
	}

	lsofPath, err := exec.LookPath("lsof")
	if err != nil {
		return false
	}

	output, err := exec.Command(lsofPath, "-t", dbPath, shmPath, walPath).Output()
	if err != nil {
		// lsof exits 1 when nothing has the files open.
		return true
	}
	return strings.TrimSpace(string(output)) == ""
}

func removeStaleWAL(dbPath string, logger logrus.FieldLogger) {
	for _, suffix := range []string{"-shm", "-wal"} {
		path := dbPath + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", path).Warn("sqlite: failed to remove stale WAL file")
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
