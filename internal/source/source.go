// Package source loads raw snapshot documents from where they are kept:
// a local data.json, an S3-compatible bucket, or a remote HTTP endpoint.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/scrypster/folio/internal/config"
	"github.com/scrypster/folio/internal/schema"
	"github.com/scrypster/folio/pkg/types"
)

var (
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("source: unknown driver")

	// ErrCircuitOpen is returned when the remote endpoint has failed
	// repeatedly and requests are being rejected.
	ErrCircuitOpen = errors.New("source: circuit breaker is open")

	// ErrTooLarge is returned when a remote document exceeds the size limit.
	ErrTooLarge = errors.New("source: document too large")
)

// maxDocumentBytes bounds how much of a remote document is read.
const maxDocumentBytes = 32 << 20

// readDocument reads at most limit bytes from r. A body longer than limit
// is an ErrTooLarge error rather than a truncated document.
func readDocument(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxDocumentBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// Source yields the raw bytes of a snapshot document.
type Source interface {
	// Load returns the full document.
	Load(ctx context.Context) ([]byte, error)

	// Name identifies the source in logs and report records.
	Name() string
}

// Open builds the source selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileSource(cfg.Path), nil
	case "s3":
		return NewS3Source(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Key:       cfg.S3Key,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	case "http":
		return NewHTTPSource(HTTPConfig{
			URL:        cfg.HTTPURL,
			Timeout:    cfg.HTTPTimeout,
			RatePerSec: cfg.HTTPRatePerSec,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// LoadSnapshot loads the document and validates it against the snapshot
// schema. Schema failures are returned as *schema.SchemaViolation.
func LoadSnapshot(ctx context.Context, src Source) (types.Snapshot, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("source: load %s: %w", src.Name(), err)
	}
	return schema.DecodeSnapshot(data)
}
