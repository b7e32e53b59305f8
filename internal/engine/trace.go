package engine

import (
	"context"
	"sync"
	"time"
)

// TraceEventKind classifies each trace event by pipeline stage.
type TraceEventKind string

const (
	// KindLoaded is emitted after the raw document has been read.
	KindLoaded TraceEventKind = "loaded"

	// KindSchemaChecked is emitted after structural validation, pass or fail.
	KindSchemaChecked TraceEventKind = "schema_checked"

	// KindValidated is emitted after the integrity passes.
	KindValidated TraceEventKind = "validated"

	// KindPersisted is emitted once the record has been stored.
	KindPersisted TraceEventKind = "persisted"
)

// TraceEvent is a single structured event emitted during a run.
type TraceEvent struct {
	Kind TraceEventKind `json:"kind"`
	At   time.Time      `json:"at"`

	// Source names where the snapshot came from (loaded).
	Source string `json:"source,omitempty"`

	// Bytes is the raw document size (loaded).
	Bytes int `json:"bytes,omitempty"`

	// Count is the entity count (validated) or violation count (schema_checked).
	Count int `json:"count,omitempty"`

	// Error carries the failure message, if the stage failed.
	Error string `json:"error,omitempty"`

	// RecordID is set on persisted.
	RecordID string `json:"record_id,omitempty"`
}

type contextKey string

const traceKey contextKey = "run_trace"

// TraceCollector accumulates TraceEvents for a single run. It is safe for
// concurrent use.
type TraceCollector struct {
	mu        sync.Mutex
	events    []TraceEvent
	startedAt time.Time
}

// NewTraceCollector returns a fresh collector.
func NewTraceCollector() *TraceCollector {
	return &TraceCollector{startedAt: time.Now()}
}

// Emit appends an event to the collector.
func (tc *TraceCollector) Emit(e TraceEvent) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.events = append(tc.events, e)
}

// Events returns the collected events in emission order.
func (tc *TraceCollector) Events() []TraceEvent {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]TraceEvent, len(tc.events))
	copy(out, tc.events)
	return out
}

// ElapsedMS returns the elapsed time since the collector was created, in milliseconds.
func (tc *TraceCollector) ElapsedMS() int64 {
	return time.Since(tc.startedAt).Milliseconds()
}

// WithTraceCollector stores a collector in the context.
func WithTraceCollector(ctx context.Context, tc *TraceCollector) context.Context {
	return context.WithValue(ctx, traceKey, tc)
}

// TraceCollectorFromContext retrieves the collector from the context.
// Returns (nil, false) if none is present.
func TraceCollectorFromContext(ctx context.Context) (*TraceCollector, bool) {
	tc, ok := ctx.Value(traceKey).(*TraceCollector)
	return tc, ok
}

// emitToContext emits only when a collector is present in the context.
func emitToContext(ctx context.Context, e TraceEvent) {
	if tc, ok := TraceCollectorFromContext(ctx); ok {
		tc.Emit(e)
	}
}

func newTraceEvent(kind TraceEventKind) TraceEvent {
	return TraceEvent{Kind: kind, At: time.Now()}
}
