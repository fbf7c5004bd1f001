package controller

import (
	"errors"

	"mav-playback/models"
	"mav-playback/utils"
	"mav-playback/views"
)

// FrameObserver receives a report after every processed frame. OnFrame
// runs on the playback loop and must not block; slow consumers drop.
type FrameObserver interface {
	OnFrame(r models.FrameReport)
	Close() error
}

// SyncLogRecorder writes every frame report as one CSV row: which inertial
// samples went to which frame and how the pacing behaved.
type SyncLogRecorder struct {
	w *views.CSVWriter
}

// NewSyncLogRecorder creates the sync log at path.
func NewSyncLogRecorder(path string, bufSizeBytes int) (*SyncLogRecorder, error) {
	kind := views.ArtifactSyncLog
	w, err := views.NewCSVWriter(path, bufSizeBytes, kind.Delimiter(), models.FrameReport{}.CSVHeader())
	if err != nil {
		return nil, err
	}
	utils.L().Info("sync log recorder ready  path=%s", path)
	return &SyncLogRecorder{w: w}, nil
}

func (s *SyncLogRecorder) OnFrame(r models.FrameReport) {
	s.w.WriteRow(r.CSVRow())
}

// Close flushes and closes the log.
func (s *SyncLogRecorder) Close() error {
	rows := s.w.Rows()
	if err := s.w.Close(); err != nil {
		return err
	}
	utils.L().Info("sync log recorder stopped  (rows_written=%d)", rows)
	return nil
}

// closeObservers closes all observers and joins their errors.
func closeObservers(obs []FrameObserver) error {
	var errs []error
	for _, o := range obs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
