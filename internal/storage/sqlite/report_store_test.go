package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/pkg/types"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	store, err := NewReportStore(":memory:")
	require.NoError(t, err, "failed to create test store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newRecord(id string, at time.Time, valid bool) *storage.Record {
	report := types.Report{
		IsValid:  valid,
		Errors:   []types.Issue{},
		Warnings: []types.Issue{},
		Stats:    types.Stats{TotalEntities: 4},
	}
	if !valid {
		report.Errors = append(report.Errors, types.Issue{
			Kind: types.IssueDuplicate, Entity: types.KindCompany, ID: "acme", Message: "duplicate company id acme",
		})
		report.Stats.Duplicates = 1
	}
	return &storage.Record{ID: id, Source: "file:data.json", CreatedAt: at, Report: report, Score: 90}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)

	require.NoError(t, store.Save(ctx, newRecord("r1", at, false)))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "file:data.json", got.Source)
	assert.True(t, at.Equal(got.CreatedAt), "timestamps round-trip with nanosecond precision")
	assert.Equal(t, 90, got.Score)
	assert.False(t, got.Report.IsValid)
	require.Len(t, got.Report.Errors, 1)
	assert.Equal(t, "acme", got.Report.Errors[0].ID)
	assert.Equal(t, 1, got.Report.Stats.Duplicates)
}

func TestSave_Upserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	require.NoError(t, store.Save(ctx, newRecord("r1", at, false)))
	updated := newRecord("r1", at, true)
	updated.Score = 100
	require.NoError(t, store.Save(ctx, updated))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Score)
	assert.True(t, got.Report.IsValid)

	page, err := store.List(ctx, storage.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestSave_InvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(ctx, &storage.Record{}), storage.ErrInvalidInput)
}

func TestSave_DefaultsCreatedAt(t *testing.T) {
	store := newTestStore(t)
	r := newRecord("r1", time.Time{}, true)

	require.NoError(t, store.Save(context.Background(), r))
	assert.False(t, r.CreatedAt.IsZero())
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Get(context.Background(), "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, newRecord("old", base, true)))
	require.NoError(t, store.Save(ctx, newRecord("new", base.Add(time.Hour), false)))
	require.NoError(t, store.Save(ctx, newRecord("mid", base.Add(time.Minute), true)))

	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, newRecord(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute), i%2 == 0)))
	}

	page, err := store.List(ctx, storage.ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "r4", page.Items[0].ID)
	assert.Equal(t, "r3", page.Items[1].ID)

	page, err = store.List(ctx, storage.ListOptions{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "r0", page.Items[0].ID)
	assert.False(t, page.HasMore)
}

func TestList_ValidOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, newRecord("a", base, true)))
	require.NoError(t, store.Save(ctx, newRecord("b", base.Add(time.Second), false)))
	require.NoError(t, store.Save(ctx, newRecord("c", base.Add(2*time.Second), true)))

	page, err := store.List(ctx, storage.ListOptions{ValidOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].ID)
	assert.Equal(t, "a", page.Items[1].ID)
}

func TestList_EmptyStore(t *testing.T) {
	store := newTestStore(t)
	page, err := store.List(context.Background(), storage.ListOptions{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
}

func TestConcurrentSaves(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, newRecord(fmt.Sprintf("c%d", i), time.Now().UTC(), true)))
		}(i)
	}
	wg.Wait()

	page, err := store.List(ctx, storage.ListOptions{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Total)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	store, err := NewReportStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, newRecord("kept", time.Now().UTC(), true)))
	require.NoError(t, store.Close())

	reopened, err := NewReportStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.ID)
}

func TestDBPathFromDSN(t *testing.T) {
	assert.Equal(t, "", dbPathFromDSN(":memory:"))
	assert.Equal(t, "", dbPathFromDSN("file::memory:?cache=shared"))
	assert.Equal(t, "/tmp/x.db", dbPathFromDSN("/tmp/x.db"))
	assert.Equal(t, "/tmp/x.db", dbPathFromDSN("file:/tmp/x.db?mode=rwc"))
}

func TestIsRecoverableWALError(t *testing.T) {
	assert.False(t, isRecoverableWALError(nil))
	assert.True(t, isRecoverableWALError(fmt.Errorf("open: disk I/O error")))
	assert.True(t, isRecoverableWALError(fmt.Errorf("database is locked")))
	assert.False(t, isRecoverableWALError(fmt.Errorf("no such table")))
}
