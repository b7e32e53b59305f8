package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/internal/engine"
	"github.com/scrypster/folio/internal/notify"
	"github.com/scrypster/folio/internal/storage"
)

// eventForwarder publishes checker events from a CLI process to a running
// server by writing event files into the shared data directory.
type eventForwarder struct {
	writer *notify.EventWriter
	logger logrus.FieldLogger
}

func newEventForwarder(w *notify.EventWriter, logger logrus.FieldLogger) *eventForwarder {
	return &eventForwarder{writer: w, logger: logger}
}

// Broadcast implements engine.Publisher. Only persisted reports are
// forwarded; the server re-reads them from the store.
func (f *eventForwarder) Broadcast(message any) {
	ev, ok := message.(engine.Event)
	if !ok || ev.Type != engine.EventReportCreated || ev.Record == nil {
		return
	}
	if err := f.writer.Notify(notify.EventReportSaved, ev.Record.ID); err != nil {
		f.logger.WithError(err).Warn("notify: failed to write event")
	}
}

// relayReportEvents returns an EventWatcher callback that loads each saved
// report and republishes it to pub.
func relayReportEvents(ctx context.Context, store storage.ReportStore, pub engine.Publisher, logger logrus.FieldLogger) func(eventType, recordID string) {
	return func(eventType, recordID string) {
		if eventType != notify.EventReportSaved {
			return
		}
		record, err := store.Get(ctx, recordID)
		if err != nil {
			logger.WithError(err).WithField("record", recordID).Warn("notify: cannot load reported record")
			return
		}
		pub.Broadcast(engine.Event{
			Type:      engine.EventReportCreated,
			Source:    record.Source,
			Timestamp: record.CreatedAt,
			Record:    record,
		})
	}
}
