package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scrypster/folio/internal/source"
	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readSnapshot loads and structurally validates a snapshot file.
func readSnapshot(ctx context.Context, path string) (types.Snapshot, error) {
	return source.LoadSnapshot(ctx, source.NewFileSource(path))
}

// writeSnapshot writes snap as indented JSON to path, or to stdout when
// path is "-". Files are replaced atomically.
func writeSnapshot(stdout io.Writer, path string, snap types.Snapshot) error {
	if path == "-" {
		return writeJSON(stdout, snap)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// printRecord writes a human-readable validation summary.
func printRecord(w io.Writer, record *storage.Record) {
	r := record.Report
	status := "VALID"
	if !r.IsValid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "%s  %s  score %d/100\n", status, record.Source, record.Score)
	fmt.Fprintf(w, "entities %d, duplicates %d, broken references %d, unused %d\n",
		r.Stats.TotalEntities, r.Stats.Duplicates, r.Stats.BrokenReferences, r.Stats.UnusedEntities)
	for _, issue := range r.Errors {
		fmt.Fprintf(w, "  error    %-18s %s\n", issue.Kind, issue.Message)
	}
	for _, issue := range r.Warnings {
		fmt.Fprintf(w, "  warning  %-18s %s\n", issue.Kind, issue.Message)
	}
}
