package sqlite

// Schema creates the report history table. Every statement is idempotent.
// created_at holds Unix nanoseconds so ordering is exact.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
	id                TEXT PRIMARY KEY,
	source            TEXT NOT NULL DEFAULT '',
	created_at        INTEGER NOT NULL,
	is_valid          INTEGER NOT NULL,
	score             INTEGER NOT NULL,
	total_entities    INTEGER NOT NULL DEFAULT 0,
	duplicates        INTEGER NOT NULL DEFAULT 0,
	broken_references INTEGER NOT NULL DEFAULT 0,
	unused_entities   INTEGER NOT NULL DEFAULT 0,
	report            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reports_valid ON reports(is_valid, created_at DESC);
`
