package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/folio/internal/storage"
	"github.com/scrypster/folio/pkg/types"
)

const (
	validSnapshot = `{
		"companies": [{"id": "acme", "name": "Acme", "type": "MainPartner"}],
		"technologies": [{"id": "go", "name": "Go", "category": "language"}],
		"projects": [{"id": "site", "name": "Site", "status": "completed", "partners": ["acme"], "technologies": ["go"]}]
	}`
	duplicateSnapshot = `{
		"companies": [
			{"id": "acme", "name": "Acme", "type": "MainPartner"},
			{"id": "ACME", "name": "Acme (old)", "type": "MainPartner"}
		],
		"projects": [{"id": "site", "name": "Site", "status": "completed", "partners": ["acme"]}]
	}`
)

// cliEnv isolates a CLI run: no config file, all state under a temp dir.
func cliEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FOLIO_CONFIG", "")
	t.Setenv("FOLIO_LOG_LEVEL", "silent")
	t.Setenv("FOLIO_STORAGE_ENGINE", "sqlite")
	t.Setenv("FOLIO_DATA_PATH", filepath.Join(dir, "data"))
	t.Setenv("FOLIO_SOURCE", "file")
	t.Setenv("FOLIO_SOURCE_PATH", filepath.Join(dir, "data.json"))
	t.Setenv("FOLIO_ARCHIVE_DIR", filepath.Join(dir, "public"))
	return dir
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestValidate_ValidFile(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", validSnapshot)

	code, out, _ := runCLI(t, "validate", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "score 100/100")
}

func TestValidate_InvalidExitsOne(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", duplicateSnapshot)

	code, out, _ := runCLI(t, "validate", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "duplicate")
}

func TestValidate_JSONOutput(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", duplicateSnapshot)

	code, out, _ := runCLI(t, "validate", "--json", "--trace", path)
	assert.Equal(t, 1, code)

	var parsed struct {
		Record *storage.Record  `json:"record"`
		Trace  []map[string]any `json:"trace"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.NotNil(t, parsed.Record)
	assert.Equal(t, 1, parsed.Record.Report.Stats.Duplicates)
	assert.Equal(t, 90, parsed.Record.Score)
	assert.Len(t, parsed.Trace, 3, "loaded, schema_checked, validated")
}

func TestValidate_SchemaViolation(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", `{"companies": [{"id": "acme"}]}`)

	code, out, _ := runCLI(t, "validate", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "SCHEMA")
	assert.Contains(t, out, "companies[0].name")
}

func TestValidate_ConfiguredSource(t *testing.T) {
	dir := cliEnv(t)
	writeFile(t, dir, "data.json", validSnapshot)

	code, _, _ := runCLI(t, "validate")
	assert.Equal(t, 0, code)
}

func TestValidate_MissingFile(t *testing.T) {
	dir := cliEnv(t)
	code, _, errOut := runCLI(t, "validate", filepath.Join(dir, "nope.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")
}

func TestValidate_SaveThenReports(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", validSnapshot)

	code, _, _ := runCLI(t, "validate", "--save", path)
	require.Equal(t, 0, code)

	code, out, _ := runCLI(t, "reports", "--json")
	require.Equal(t, 0, code)
	var page storage.PaginatedResult[storage.Record]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "file:"+path, page.Items[0].Source)

	code, out, _ = runCLI(t, "reports", "show", "latest")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "VALID")

	// The saved run left an event file for a running server.
	entries, err := os.ReadDir(filepath.Join(dir, "data", "events"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReportsShow_Unknown(t *testing.T) {
	cliEnv(t)
	code, _, errOut := runCLI(t, "reports", "show", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not found")
}

func TestDedupe(t *testing.T) {
	dir := cliEnv(t)
	in := writeFile(t, dir, "in.json", duplicateSnapshot)
	out := filepath.Join(dir, "out.json")

	code, stdout, _ := runCLI(t, "dedupe", in, out)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "removed 1 duplicate")
	assert.Regexp(t, `company\s+1`, stdout)
	assert.NotContains(t, stdout, "technology")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var snap types.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	require.Len(t, snap.Companies, 1)
	assert.Equal(t, "Acme", snap.Companies[0].Name)
}

func TestMerge(t *testing.T) {
	dir := cliEnv(t)
	base := writeFile(t, dir, "base.json", validSnapshot)
	overlay := writeFile(t, dir, "overlay.json", `{
		"companies": [{"id": "acme", "name": "Acme Corp", "type": "MainPartner"}],
		"technologies": [{"id": "rust", "name": "Rust", "category": "language"}]
	}`)

	code, stdout, _ := runCLI(t, "merge", base, overlay, "-o", "-")
	require.Equal(t, 0, code)

	var snap types.Snapshot
	require.NoError(t, json.Unmarshal([]byte(stdout), &snap))
	assert.Equal(t, "Acme Corp", snap.Companies[0].Name)
	assert.Len(t, snap.Technologies, 2)

	out := filepath.Join(dir, "merged.json")
	code, stdout, _ = runCLI(t, "merge", base, overlay, "--out", out)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "company")
	assert.Contains(t, stdout, "technology")
	assert.FileExists(t, out)
}

func TestScore(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "admin.json", `{
		"projects": [{"title": "Shop"}, {"title": "Shop"}],
		"skills": [{"name": "Go"}]
	}`)

	code, out, _ := runCLI(t, "score", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "score 90/100")
	assert.Contains(t, out, "duplicate project title: Shop")
}

func TestExport_WritesArtifact(t *testing.T) {
	dir := cliEnv(t)
	writeFile(t, dir, "data.json", validSnapshot)

	code, out, _ := runCLI(t, "export")
	require.Equal(t, 0, code, out)
	assert.FileExists(t, filepath.Join(dir, "public", "data.json"))

	code, out, _ = runCLI(t, "export", "list")
	require.Equal(t, 0, code)
	assert.Equal(t, 1, strings.Count(out, "snapshot-"))
}

func TestExport_RefusesInvalidUnlessForced(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", duplicateSnapshot)

	code, out, _ := runCLI(t, "export", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "not exported")
	assert.NoFileExists(t, filepath.Join(dir, "public", "data.json"))

	code, _, _ = runCLI(t, "export", "--force", path)
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "public", "data.json"))
}

func TestExport_DedupeMakesSnapshotValid(t *testing.T) {
	dir := cliEnv(t)
	path := writeFile(t, dir, "in.json", duplicateSnapshot)

	code, _, _ := runCLI(t, "export", "--dedupe", path)
	assert.Equal(t, 0, code)
}

func TestInvalidConfigIsReported(t *testing.T) {
	cliEnv(t)
	t.Setenv("FOLIO_STORAGE_ENGINE", "mysql")
	code, _, errOut := runCLI(t, "reports")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown storage engine")
}
