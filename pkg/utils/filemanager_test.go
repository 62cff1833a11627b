package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	am := NewArtifactManager(filepath.Join(root, "out"), filepath.Join(root, "archive", "runs"))

	require.NoError(t, am.EnsureDirectories())
	assert.DirExists(t, am.OutputDir)
	assert.DirExists(t, am.ArchiveDir)
}

func TestArchiveRun(t *testing.T) {
	root := t.TempDir()
	am := NewArtifactManager(filepath.Join(root, "out"), filepath.Join(root, "archive"))
	am.now = fixedClock
	require.NoError(t, am.EnsureDirectories())

	report := filepath.Join(am.OutputDir, "report1_regional_summary.csv")
	require.NoError(t, os.WriteFile(report, []byte("Region\n"), 0644))
	missing := filepath.Join(am.OutputDir, "reports.xlsx")

	start := fixedClock()
	dir, err := am.ArchiveRun(RunManifest{
		RunID:        "abc",
		Source:       "dpwh.csv",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Second),
		TotalRows:    7,
		FilteredRows: 6,
	}, []string{report, missing, ""})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(am.ArchiveDir, "20240309_143005_abc"), dir)

	copied, err := os.ReadFile(filepath.Join(dir, "report1_regional_summary.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Region\n", string(copied))
	assert.NoFileExists(t, filepath.Join(dir, "reports.xlsx"))

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), "Run ID:         abc")
	assert.Contains(t, string(manifest), "Duration:       2s")
	assert.Contains(t, string(manifest), "  report1_regional_summary.csv\n")
	assert.FileExists(t, report, "artifacts are copied, not moved")
}

func TestArchiveRun_Disabled(t *testing.T) {
	am := NewArtifactManager(t.TempDir(), "")

	dir, err := am.ArchiveRun(RunManifest{RunID: "abc"}, nil)
	require.NoError(t, err)
	assert.Empty(t, dir)
}
