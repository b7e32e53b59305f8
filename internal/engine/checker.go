// Package engine runs the full validation pipeline: load a snapshot from a
// source, check its structure, run the integrity passes, score the result,
// persist it and tell subscribers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/internal/metrics"
	"github.com/scrypster/folio/internal/quality"
	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/pkg/types"
)

// Event types published to subscribers.
const (
	EventReportCreated = "report.created"
	EventRunFailed     = "run.failed"
)

// Event is the message broadcast after every run.
type Event struct {
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Record    *storage.Record `json:"record,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Publisher receives run events. The websocket hub implements it.
type Publisher interface {
	Broadcast(message any)
}

// Checker wires the pipeline stages together. Store and publisher are
// optional; without them runs are neither persisted nor broadcast.
type Checker struct {
	quality   *quality.Engine
	store     storage.ReportStore
	publisher Publisher
	logger    logrus.FieldLogger
	now       func() time.Time
	newID     func() string
}

// Option configures a Checker.
type Option func(*Checker)

// WithStore persists every completed run.
func WithStore(store storage.ReportStore) Option {
	return func(c *Checker) { c.store = store }
}

// WithPublisher broadcasts run events.
func WithPublisher(p Publisher) Option {
	return func(c *Checker) { c.publisher = p }
}

// WithLogger sets the logger for the checker and its quality engine.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a Checker.
func NewChecker(opts ...Option) *Checker {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)
	c := &Checker{
		logger: discard,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.quality = quality.NewEngine(quality.WithLogger(c.logger))
	return c
}

// Quality returns the logging quality engine used by the checker.
func (c *Checker) Quality() *quality.Engine {
	return c.quality
}

// Run loads a snapshot from src and checks it. Load and schema failures
// stop the run before integrity checks; they are counted, logged and
// broadcast, then returned.
func (c *Checker) Run(ctx context.Context, src source.Source) (*storage.Record, error) {
	start := time.Now()

	data, err := src.Load(ctx)
	if err != nil {
		c.fail(src.Name(), metrics.ResultLoadError, start, err)
		return nil, fmt.Errorf("engine: load %s: %w", src.Name(), err)
	}
	ev := newTraceEvent(KindLoaded)
	ev.Source = src.Name()
	ev.Bytes = len(data)
	emitToContext(ctx, ev)

	return c.document(ctx, src.Name(), data, start)
}

// CheckDocument decodes a raw snapshot document and checks it. A
// structural failure is returned as *schema.SchemaViolation (or a JSON
// syntax error) and recorded like a failed run.
func (c *Checker) CheckDocument(ctx context.Context, name string, data []byte) (*storage.Record, error) {
	return c.document(ctx, name, data, time.Now())
}

func (c *Checker) document(ctx context.Context, name string, data []byte, start time.Time) (*storage.Record, error) {
	snap, err := schema.DecodeSnapshot(data)
	ev := newTraceEvent(KindSchemaChecked)
	if err != nil {
		var violation *schema.SchemaViolation
		if errors.As(err, &violation) {
			ev.Count = len(violation.Fields)
		}
		ev.Error = err.Error()
		emitToContext(ctx, ev)
		c.fail(name, metrics.ResultSchemaError, start, err)
		return nil, err
	}
	emitToContext(ctx, ev)

	c.logger.WithFields(logrus.Fields{"source": name, "entities": snap.Len()}).Debug("engine: snapshot loaded")
	return c.check(ctx, name, snap, start)
}

// Check validates an already-decoded snapshot and records the result
// under name.
func (c *Checker) Check(ctx context.Context, name string, snap types.Snapshot) (*storage.Record, error) {
	return c.check(ctx, name, snap, time.Now())
}

func (c *Checker) check(ctx context.Context, name string, snap types.Snapshot, start time.Time) (*storage.Record, error) {
	report := c.quality.Validate(snap)
	score := quality.Score(report.Stats)

	ev := newTraceEvent(KindValidated)
	ev.Count = report.Stats.TotalEntities
	emitToContext(ctx, ev)

	record := &storage.Record{
		ID:        c.newID(),
		Source:    name,
		CreatedAt: c.now().UTC(),
		Report:    report,
		Score:     score,
	}

	if c.store != nil {
		if err := c.store.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("engine: persist report: %w", err)
		}
		ev := newTraceEvent(KindPersisted)
		ev.RecordID = record.ID
		emitToContext(ctx, ev)
	}

	metrics.ObserveReport(report, score, time.Since(start))

	c.logger.WithFields(logrus.Fields{
		"source":   name,
		"record":   record.ID,
		"valid":    report.IsValid,
		"errors":   len(report.Errors),
		"warnings": len(report.Warnings),
		"score":    score,
	}).Info("engine: validation complete")

	c.publish(Event{Type: EventReportCreated, Source: name, Timestamp: record.CreatedAt, Record: record})
	return record, nil
}

func (c *Checker) fail(name, result string, start time.Time, err error) {
	metrics.ObserveFailure(result, time.Since(start))
	c.logger.WithError(err).WithFields(logrus.Fields{
		"source": name,
		"result": result,
	}).Warn("engine: run failed")
	c.publish(Event{Type: EventRunFailed, Source: name, Timestamp: c.now().UTC(), Error: err.Error()})
}

func (c *Checker) publish(e Event) {
	if c.publisher != nil {
		c.publisher.Broadcast(e)
	}
}
