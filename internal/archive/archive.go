package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scrypster/folio/pkg/types"
)

// Archive manages the artifact directory.
type Archive struct {
	dir    string
	policy RetentionPolicy
	logger logrus.FieldLogger
	now    func() time.Time
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger for retention messages.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Archive) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

// New returns an Archive rooted at dir.
func New(dir string, policy RetentionPolicy, opts ...Option) *Archive {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	a := &Archive{dir: dir, policy: policy, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dir returns the artifact directory.
func (a *Archive) Dir() string { return a.dir }

// ArtifactPath returns the path of data.json.
func (a *Archive) ArtifactPath() string { return filepath.Join(a.dir, ArtifactName) }

// Write stores the snapshot as minified data.json plus a timestamped copy,
// then applies the retention policy to the timestamped copies.
func (a *Archive) Write(snapshot types.Snapshot) (Info, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return Info{}, fmt.Errorf("archive: marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return Info{}, fmt.Errorf("archive: create directory: %w", err)
	}

	ts := a.now().UTC()
	copyPath := filepath.Join(a.dir, FileName(ts))
	if err := writeAtomic(copyPath, data); err != nil {
		return Info{}, err
	}
	if err := writeAtomic(a.ArtifactPath(), data); err != nil {
		return Info{}, err
	}

	removed, err := applyRetention(a.dir, a.policy, ts)
	if len(removed) > 0 {
		a.logger.WithField("removed", len(removed)).Info("archive: pruned old snapshots")
	}
	if err != nil {
		a.logger.WithError(err).Warn("archive: retention incomplete")
	}

	return Info{Path: copyPath, Timestamp: ts.Truncate(time.Microsecond), Size: int64(len(data))}, nil
}

// List returns the timestamped snapshots, newest first. A missing
// directory yields an empty list.
func (a *Archive) List() ([]Info, error) {
	if _, err := os.Stat(a.dir); os.IsNotExist(err) {
		return []Info{}, nil
	}
	infos, err := listSnapshots(a.dir)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []Info{}
	}
	return infos, nil
}

// Prune applies the retention policy without writing a new snapshot.
func (a *Archive) Prune() ([]string, error) {
	return applyRetention(a.dir, a.policy, a.now().UTC())
}

// writeAtomic writes data to a temp file in the same directory and renames
// it into place so readers never see a partial artifact.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("archive: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("archive: close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("archive: chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("archive: rename %s: %w", path, err)
	}
	return nil
}
