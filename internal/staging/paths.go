// Package staging lays out the per-job working directory and cleans up
// abandoned job directories.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dirs resolves paths inside one job's staging directory.
type Dirs struct {
	Root string
}

// ForJob returns the staging layout for a job uuid under the staging root.
func ForJob(stagingRoot, jobUUID string) Dirs {
	return Dirs{Root: filepath.Join(stagingRoot, jobUUID)}
}

// SourceWAV is the preprocessed mono working copy of the input.
func (d Dirs) SourceWAV() string { return filepath.Join(d.Root, "source.wav") }

// TurnsJSON holds raw diarization turns between the diarize and merge stages.
func (d Dirs) TurnsJSON() string { return filepath.Join(d.Root, "turns.json") }

// SpansJSON holds raw ASR spans between the transcribe and merge stages.
func (d Dirs) SpansJSON() string { return filepath.Join(d.Root, "spans.json") }

// SegmentWAV is the synthesized audio for one segment index.
func (d Dirs) SegmentWAV(index int) string {
	return filepath.Join(d.Root, "segments", fmt.Sprintf("%03d.wav", index))
}

// AlignedWAV is the duration-aligned audio for one segment index.
func (d Dirs) AlignedWAV(index int) string {
	return filepath.Join(d.Root, "aligned", fmt.Sprintf("%03d.wav", index))
}

// OutputWAV is the mixed track before export moves it to the output directory.
func (d Dirs) OutputWAV() string { return filepath.Join(d.Root, "output.wav") }

// Ensure creates the staging directory tree for the job.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Root, filepath.Join(d.Root, "segments"), filepath.Join(d.Root, "aligned")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create staging directory %q: %w", dir, err)
		}
	}
	return nil
}

// Remove deletes the job's staging directory.
func (d Dirs) Remove() error {
	return os.RemoveAll(d.Root)
}
