package controller

import (
	"fmt"

	"mav-playback/models"
	"mav-playback/utils"
)

// WindowAssigner partitions a sequence's inertial stream across its frames
// with a single forward-only cursor. Windows never overlap, never skip a
// sample and are handed out in frame order. One assigner serves exactly
// one sequence; a new sequence gets a new assigner.
//
// Initialisation moves the cursor past every sample at or before the first
// frame. Those samples are skipped, frame 0 always receives an empty window
// and every later window holds only samples after the previous frame.
type WindowAssigner struct {
	imu     []models.InertialSample
	frames  []models.FrameRecord
	cursor  int
	skipped int
	next    int // next frame index expected by Window
}

// NewWindowAssigner positions the cursor for the given sequence. It fails
// with a dataset integrity error when the inertial stream starts after the
// first frame, since no sample can precede it.
func NewWindowAssigner(imu []models.InertialSample, frames []models.FrameRecord) (*WindowAssigner, error) {
	if len(frames) == 0 {
		return nil, utils.DatasetIntegrityError("", fmt.Errorf("no frames to assign inertial windows to"))
	}
	if len(imu) == 0 {
		return nil, utils.DatasetIntegrityError("", fmt.Errorf("no inertial samples"))
	}

	t0 := frames[0].Timestamp
	c := 0
	for c < len(imu) && imu[c].Timestamp <= t0 {
		c++
	}
	if c == 0 {
		return nil, utils.DatasetIntegrityError("", fmt.Errorf(
			"inertial stream starts at %.9fs, after first frame at %.9fs", imu[0].Timestamp, t0))
	}

	return &WindowAssigner{
		imu:     imu,
		frames:  frames,
		cursor:  c,
		skipped: c,
	}, nil
}

// Window returns the inertial samples for frame i and advances the cursor
// past them. Frames must be requested in order starting at 0. The returned
// slice aliases the immutable sample array and must not be modified.
func (w *WindowAssigner) Window(i int) ([]models.InertialSample, error) {
	if i != w.next {
		return nil, fmt.Errorf("window requested for frame %d, expected frame %d", i, w.next)
	}
	w.next++
	if i == 0 {
		return nil, nil
	}

	t := w.frames[i].Timestamp
	start := w.cursor
	for w.cursor < len(w.imu) && w.imu[w.cursor].Timestamp <= t {
		w.cursor++
	}
	if start == w.cursor {
		return nil, nil
	}
	return w.imu[start:w.cursor:w.cursor], nil
}

// Cursor is the index of the next undelivered sample.
func (w *WindowAssigner) Cursor() int { return w.cursor }

// Skipped is the number of samples consumed by initialisation and never
// delivered to any window.
func (w *WindowAssigner) Skipped() int { return w.skipped }

// Remaining is the number of samples that have not been delivered yet.
func (w *WindowAssigner) Remaining() int { return len(w.imu) - w.cursor }
