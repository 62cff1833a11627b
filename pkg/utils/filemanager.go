// =============================================================================
// Flood Control Pipeline - Artifact Manager
// =============================================================================
//
// Directory management and run archival for report artifacts.
//
// ARCHIVAL STRATEGY:
//   - Artifacts stay in the output directory and are overwritten every run
//   - When an archive directory is configured, each run's artifacts are
//     COPIED to <archive_dir>/<YYYYMMDD_HHMMSS>_<run_id>/
//   - A run manifest (run_manifest.txt) is written next to the copies
//   - Missing artifacts (e.g. a disabled workbook) are skipped, not errors
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ManifestFile is the name of the manifest written into each run archive.
const ManifestFile = "run_manifest.txt"

// =============================================================================
// ARTIFACT MANAGER
// =============================================================================

// ArtifactManager owns the output and archive directories of a pipeline run.
type ArtifactManager struct {
	// OutputDir is where artifacts are written.
	OutputDir string

	// ArchiveDir receives per-run copies. Empty disables archival.
	ArchiveDir string

	// now is replaceable in tests.
	now func() time.Time
}

// NewArtifactManager creates an ArtifactManager for the given directories.
func NewArtifactManager(outputDir, archiveDir string) *ArtifactManager {
	return &ArtifactManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		now:        time.Now,
	}
}

// EnsureDirectories creates the output and archive directories if they don't
// exist. An empty archive directory is skipped.
func (am *ArtifactManager) EnsureDirectories() error {
	for _, dir := range []string{am.OutputDir, am.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// RUN ARCHIVAL
// =============================================================================

// RunManifest describes one archived run.
type RunManifest struct {
	RunID        string
	Source       string
	StartTime    time.Time
	EndTime      time.Time
	TotalRows    int
	FilteredRows int
	ParseErrors  int
	Artifacts    []string
}

// ArchiveRun copies every existing artifact into a run-stamped archive
// directory and writes the run manifest there.
//
// PARAMETERS:
//   - manifest: The run being archived. RunID names the directory.
//   - artifacts: Paths of the files to copy. Paths that don't exist are skipped.
//
// RETURNS:
//   - The archive directory of this run, or "" when archival is disabled.
//   - An error if a copy or the manifest fails.
func (am *ArtifactManager) ArchiveRun(manifest RunManifest, artifacts []string) (string, error) {
	if am.ArchiveDir == "" {
		return "", nil
	}

	runDir := am.runDir(manifest.RunID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	manifest.Artifacts = manifest.Artifacts[:0]
	for _, path := range artifacts {
		if path == "" || !FileExists(path) {
			continue
		}
		dst := filepath.Join(runDir, filepath.Base(path))
		if err := copyFile(path, dst); err != nil {
			return "", fmt.Errorf("failed to copy %s to archive: %w", path, err)
		}
		manifest.Artifacts = append(manifest.Artifacts, filepath.Base(path))
	}

	if err := writeManifest(filepath.Join(runDir, ManifestFile), manifest); err != nil {
		return "", err
	}
	return runDir, nil
}

// runDir builds <archive_dir>/<timestamp>_<run_id>.
func (am *ArtifactManager) runDir(runID string) string {
	stamp := am.now().Format("20060102_150405")
	if runID == "" {
		return filepath.Join(am.ArchiveDir, stamp)
	}
	return filepath.Join(am.ArchiveDir, stamp+"_"+runID)
}

func writeManifest(path string, m RunManifest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Flood Control Pipeline - Run Manifest\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Source:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Dataset:\n"+
		"  Total Rows:     %d\n"+
		"  Filtered Rows:  %d\n"+
		"  Parse Errors:   %d\n\n",
		m.RunID,
		m.Source,
		m.StartTime.Format("2006-01-02 15:04:05"),
		m.EndTime.Format("2006-01-02 15:04:05"),
		m.EndTime.Sub(m.StartTime).String(),
		m.TotalRows,
		m.FilteredRows,
		m.ParseErrors)

	writer.WriteString("Artifacts:\n")
	writer.WriteString("--------------------------------------------------------------------------------\n")
	for _, name := range m.Artifacts {
		fmt.Fprintf(writer, "  %s\n", name)
	}
	writer.WriteString("\n================================================================================\n" +
		"End of Manifest\n")

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush manifest: %w", err)
	}
	return file.Close()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
