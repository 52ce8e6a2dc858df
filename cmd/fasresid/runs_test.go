package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/residuals.report/internal/store"
)

// archiveTestRun computes the testdata flatfile into a fresh archive and
// returns the archive path and the run ID.
func archiveTestRun(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")

	_, err := executeRoot(t, "compute",
		"--in", filepath.Join("testdata", "flatfile.csv"),
		"--out", filepath.Join(dir, "resid.csv"),
		"--coefficients", filepath.Join("testdata", "ba18_coeffs.csv"),
		"--db", dbPath,
	)
	require.NoError(t, err)

	out, err := executeRoot(t, "runs", "list", "--db", dbPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1, out)
	fields := strings.Fields(lines[0])
	require.NotEmpty(t, fields)
	return dbPath, fields[0]
}

func TestRunsList(t *testing.T) {
	dbPath, id := archiveTestRun(t)

	out, err := executeRoot(t, "runs", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "ba18")
	assert.Contains(t, out, "3 records")
	assert.Contains(t, out, filepath.Join("testdata", "flatfile.csv"))
}

func TestRunsShow(t *testing.T) {
	dbPath, id := archiveTestRun(t)

	out, err := executeRoot(t, "runs", "show", "--db", dbPath, id)
	require.NoError(t, err)

	assert.Contains(t, out, "# id: "+id+"\n")
	assert.Contains(t, out, "region=california")
	header, body, ok := strings.Cut(out, "row,freq_hz,resid\n")
	require.True(t, ok, out)
	assert.Contains(t, header, "# version: ")

	cells := strings.Split(strings.TrimSpace(body), "\n")
	assert.Len(t, cells, 9, "3 records x 3 frequencies")
	assert.True(t, strings.HasPrefix(cells[0], "0,0.1,"), cells[0])
}

func TestRunsShow_UnknownRun(t *testing.T) {
	dbPath, _ := archiveTestRun(t)

	_, err := executeRoot(t, "runs", "show", "--db", dbPath, "no-such-run")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestRunsDelete(t *testing.T) {
	dbPath, id := archiveTestRun(t)

	out, err := executeRoot(t, "runs", "delete", "--db", dbPath, id)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id+"\n", out)

	out, err = executeRoot(t, "runs", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))

	_, err = executeRoot(t, "runs", "delete", "--db", dbPath, id)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestRuns_RequiresExistingArchive(t *testing.T) {
	_, err := executeRoot(t, "runs", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db")

	missing := filepath.Join(t.TempDir(), "missing.db")
	_, err = executeRoot(t, "runs", "list", "--db", missing)
	require.Error(t, err)
	assert.NoFileExists(t, missing)
}

func TestRunsMigrate(t *testing.T) {
	dbPath, _ := archiveTestRun(t)

	out, err := executeRoot(t, "runs", "migrate", "status", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 1 (dirty: false)\n", out)

	out, err = executeRoot(t, "runs", "migrate", "down", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "schema version 0 (dirty: false)\n", out)

	// Reopening migrates the archive up again, now empty.
	out, err = executeRoot(t, "runs", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}
