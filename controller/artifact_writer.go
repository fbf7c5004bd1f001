package controller

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"

	"mav-playback/engine"
	"mav-playback/models"
	"mav-playback/utils"
	"mav-playback/views"
)

// ArtifactWriter owns the output files of a run. Everything is written into
// a hidden staging directory next to the final location and only renamed
// into place once all exports succeeded, so an aborted run leaves nothing
// that looks like a finished result.
type ArtifactWriter struct {
	outDir  string
	prefix  string
	bufSize int

	mu         sync.Mutex // Commit and Abort may race with a signal handler
	stagingDir string
	committed  bool
}

// NewArtifactWriter prepares a writer for <outDir>/<prefix>_*.
func NewArtifactWriter(cfg utils.OutputConfig, prefix string) *ArtifactWriter {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &ArtifactWriter{
		outDir:  dir,
		prefix:  prefix,
		bufSize: cfg.BufferSizeKB * 1024,
	}
}

// Begin creates the staging directory.
func (a *ArtifactWriter) Begin() error {
	final := filepath.Dir(a.finalPrefix())
	if err := os.MkdirAll(final, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	pattern := "." + utils.SessionName(filepath.Base(a.prefix)) + "_*"
	dir, err := os.MkdirTemp(final, pattern)
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	a.stagingDir = dir
	utils.L().Info("artifact writer staging in %s", dir)
	return nil
}

// StagingDir returns the directory exports are written to before commit.
func (a *ArtifactWriter) StagingDir() string { return a.stagingDir }

// StagedPath is where an artifact lives until Commit.
func (a *ArtifactWriter) StagedPath(kind views.ArtifactKind) string {
	return views.ArtifactPath(a.stagedPrefix(), kind)
}

// FinalPath is where an artifact lands after Commit.
func (a *ArtifactWriter) FinalPath(kind views.ArtifactKind) string {
	return views.ArtifactPath(a.finalPrefix(), kind)
}

// BufferSize returns the writer buffer size in bytes for staged files.
func (a *ArtifactWriter) BufferSize() int { return a.bufSize }

func (a *ArtifactWriter) stagedPrefix() string {
	return filepath.Join(a.stagingDir, filepath.Base(a.prefix))
}

func (a *ArtifactWriter) finalPrefix() string {
	return filepath.Join(a.outDir, a.prefix)
}

// Commit halts the engine, runs its three exports into staging and moves
// every staged artifact into place. Any export failure aborts the run's
// output instead.
func (a *ArtifactWriter) Commit(eng engine.Engine, stats *models.RunStatistics) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stagingDir == "" {
		return errors.New("artifact writer: commit before begin")
	}
	if a.committed {
		return errors.New("artifact writer: already committed")
	}

	eng.Shutdown()

	exports := []struct {
		what string
		run  func() error
	}{
		{"pose trajectory", func() error {
			return eng.ExportPoseTrajectory(a.StagedPath(views.ArtifactCameraTrajectory))
		}},
		{"keyframe trajectory", func() error {
			return eng.ExportKeyframeTrajectory(a.StagedPath(views.ArtifactKeyFrameTrajectory))
		}},
		{"run statistics", func() error {
			return eng.ExportRunStatistics(a.stagedPrefix(), stats.Timestamps, stats.Durations, stats.Poses)
		}},
	}
	for _, e := range exports {
		if err := e.run(); err != nil {
			a.abortLocked()
			return fmt.Errorf("export %s: %w", e.what, err)
		}
	}

	entries, err := os.ReadDir(a.stagingDir)
	if err != nil {
		a.abortLocked()
		return fmt.Errorf("read staging dir: %w", err)
	}
	finalDir := filepath.Dir(a.finalPrefix())
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var size uint64
		if info, err := e.Info(); err == nil {
			size = uint64(info.Size())
		}
		src := filepath.Join(a.stagingDir, e.Name())
		dst := filepath.Join(finalDir, e.Name())
		if err := os.Rename(src, dst); err != nil {
			a.abortLocked()
			return fmt.Errorf("move %s into place: %w", e.Name(), err)
		}
		utils.L().Info("artifact written: %s (%s)", dst, humanize.Bytes(size))
	}

	a.committed = true
	if err := os.RemoveAll(a.stagingDir); err != nil {
		utils.L().Warn("remove staging dir %s: %v", a.stagingDir, err)
	}
	return nil
}

// Committed reports whether every artifact has been moved into place.
func (a *ArtifactWriter) Committed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.committed
}

// Abort discards everything staged so far. Safe to call after Commit,
// where it does nothing.
func (a *ArtifactWriter) Abort() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.abortLocked()
}

func (a *ArtifactWriter) abortLocked() error {
	if a.committed || a.stagingDir == "" {
		return nil
	}
	if err := os.RemoveAll(a.stagingDir); err != nil {
		return fmt.Errorf("remove staging dir: %w", err)
	}
	utils.L().Warn("run aborted, staged artifacts discarded (%s)", a.stagingDir)
	a.stagingDir = ""
	return nil
}
