// Package postgres provides a PostgreSQL implementation of storage.ReportStore.
package postgres

// Schema creates the report history table. Every statement is idempotent.
// The full report is kept as JSONB; the summary columns back the list
// filters and make ad-hoc trend queries cheap.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
    id                TEXT PRIMARY KEY,
    source            TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_valid          BOOLEAN NOT NULL,
    score             INTEGER NOT NULL,
    total_entities    INTEGER NOT NULL DEFAULT 0,
    duplicates        INTEGER NOT NULL DEFAULT 0,
    broken_references INTEGER NOT NULL DEFAULT 0,
    unused_entities   INTEGER NOT NULL DEFAULT 0,
    report            JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_valid ON reports(is_valid, created_at DESC);
`
