package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/logging"
	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/internal/storage/sqlite"
	"github.com/scrypster/folio/pkg/types"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []engine.Event
}

func (p *recordingPublisher) Broadcast(message any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, message.(engine.Event))
}

func (p *recordingPublisher) all() []engine.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]engine.Event(nil), p.events...)
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]byte, error) { return nil, errors.New("bucket unreachable") }
func (failingSource) Name() string                         { return "s3://down/data.json" }

func newStore(t *testing.T) *sqlite.ReportStore {
	t.Helper()
	store, err := sqlite.NewReportStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func fileSource(t *testing.T, body string) *source.FileSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return source.NewFileSource(path)
}

const brokenReference = `{
	"technologies": [{"id": "react", "name": "React", "category": "frontend"}],
	"projects": [{"id": "site", "name": "Site", "status": "completed", "technologies": ["vue"]}]
}`

func TestRun_PersistsAndPublishes(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	at := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	c := engine.NewChecker(
		engine.WithStore(store),
		engine.WithPublisher(pub),
		engine.WithLogger(logging.Discard()),
		engine.WithClock(func() time.Time { return at }),
	)

	record, err := c.Run(context.Background(), fileSource(t, brokenReference))
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Report.IsValid)
	assert.Equal(t, 1, record.Report.Stats.BrokenReferences)
	assert.Equal(t, 1, record.Report.Stats.UnusedEntities)
	assert.Equal(t, 83, record.Score)
	assert.True(t, at.Equal(record.CreatedAt))

	stored, err := store.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Score, stored.Score)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, engine.EventReportCreated, events[0].Type)
	assert.Equal(t, record.ID, events[0].Record.ID)
}

func TestRun_SchemaErrorStopsBeforeIntegrityChecks(t *testing.T) {
	store := newStore(t)
	pub := &recordingPublisher{}
	c := engine.NewChecker(engine.WithStore(store), engine.WithPublisher(pub))

	_, err := c.Run(context.Background(), fileSource(t, `{"companies": [{"id": "x"}]}`))

	var violation *schema.SchemaViolation
	require.True(t, errors.As(err, &violation))

	page, err := store.List(context.Background(), storage.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total, "schema failures are not persisted")

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, engine.EventRunFailed, events[0].Type)
	assert.NotEmpty(t, events[0].Error)
}

func TestRun_LoadError(t *testing.T) {
	pub := &recordingPublisher{}
	c := engine.NewChecker(engine.WithPublisher(pub))

	_, err := c.Run(context.Background(), failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unreachable")
	require.Len(t, pub.all(), 1)
	assert.Equal(t, "s3://down/data.json", pub.all()[0].Source)
}

func TestRun_Trace(t *testing.T) {
	c := engine.NewChecker(engine.WithStore(newStore(t)))
	tc := engine.NewTraceCollector()
	ctx := engine.WithTraceCollector(context.Background(), tc)

	record, err := c.Run(ctx, fileSource(t, brokenReference))
	require.NoError(t, err)

	events := tc.Events()
	require.Len(t, events, 4)
	assert.Equal(t, engine.KindLoaded, events[0].Kind)
	assert.Greater(t, events[0].Bytes, 0)
	assert.Equal(t, engine.KindSchemaChecked, events[1].Kind)
	assert.Empty(t, events[1].Error)
	assert.Equal(t, engine.KindValidated, events[2].Kind)
	assert.Equal(t, 2, events[2].Count)
	assert.Equal(t, engine.KindPersisted, events[3].Kind)
	assert.Equal(t, record.ID, events[3].RecordID)
}

func TestRun_TraceRecordsSchemaFailure(t *testing.T) {
	c := engine.NewChecker()
	tc := engine.NewTraceCollector()
	ctx := engine.WithTraceCollector(context.Background(), tc)

	_, err := c.Run(ctx, fileSource(t, `{"companies": [{"id": "x"}]}`))
	require.Error(t, err)

	events := tc.Events()
	require.Len(t, events, 2)
	assert.Equal(t, engine.KindSchemaChecked, events[1].Kind)
	assert.Equal(t, 2, events[1].Count, "missing name and type")
	assert.NotEmpty(t, events[1].Error)
}

func TestCheck_WithoutStore(t *testing.T) {
	c := engine.NewChecker()
	record, err := c.Check(context.Background(), "inline", types.EmptySnapshot())
	require.NoError(t, err)
	assert.True(t, record.Report.IsValid)
	assert.Equal(t, 100, record.Score)
	assert.Equal(t, "inline", record.Source)
}

func TestCheck_UniqueIDs(t *testing.T) {
	c := engine.NewChecker()
	a, err := c.Check(context.Background(), "a", types.EmptySnapshot())
	require.NoError(t, err)
	b, err := c.Check(context.Background(), "b", types.EmptySnapshot())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTraceCollectorFromContext_Absent(t *testing.T) {
	_, ok := engine.TraceCollectorFromContext(context.Background())
	assert.False(t, ok)
}

func TestCheckDocument(t *testing.T) {
	c := engine.NewChecker()

	record, err := c.CheckDocument(context.Background(), "api", []byte(brokenReference))
	require.NoError(t, err)
	assert.False(t, record.Report.IsValid)
	assert.Equal(t, "api", record.Source)

	_, err = c.CheckDocument(context.Background(), "api", []byte(`{"companies": [`))
	require.Error(t, err)
	var violation *schema.SchemaViolation
	assert.False(t, errors.As(err, &violation), "syntax errors are not schema violations")
}
