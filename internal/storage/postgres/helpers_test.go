package postgres

import (
	"context"
	"fmt"
)

// TruncateForTest removes all rows from the reports table.
// It is exported so that the postgres_test package can call it.
func (s *ReportStore) TruncateForTest(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "TRUNCATE TABLE reports")
	if err != nil {
		return fmt.Errorf("postgres: failed to truncate reports: %w", err)
	}
	return nil
}
