package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talenttrack/internal/ingest"
)

func TestCollectPDFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF-b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.PDF"), []byte("%PDF-a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	files, err := collectPDFs(dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "A.PDF", files[0].Name)
	assert.Equal(t, []byte("%PDF-a"), files[0].Data)
	assert.Equal(t, "b.pdf", files[1].Name)
}

func TestCollectPDFs_MissingDir(t *testing.T) {
	_, err := collectPDFs(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReportBatchErrors(t *testing.T) {
	var buf bytes.Buffer
	reportBatchErrors(&buf, []ingest.BatchError{{Batch: 2, Message: "timeout"}})
	assert.Equal(t, "batch 2 failed: timeout\n", buf.String())
}

func TestRunCommandFlags(t *testing.T) {
	for _, name := range []string{"dir", "vacancy-id", "title", "filter", "dry-run"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), name)
	}
}
