package controller

import (
	"fmt"
	"image"
	"strconv"
	"time"

	"mav-playback/engine"
	"mav-playback/models"
	"mav-playback/services/ingest"
	"mav-playback/utils"
)

// ImageLoader decodes the four views of one frame.
type ImageLoader interface {
	Load(paths [models.NumViews]string) ([models.NumViews]image.Image, error)
}

// PlaybackController drives the per-frame loop of a sequence: load the
// views, cut the inertial window, track, record, then wait out the rest of
// the capture interval. Everything runs on the caller's goroutine; the
// pacing sleep is the only suspension point.
type PlaybackController struct {
	engine engine.Engine
	images ImageLoader
	clock  Clock
	pacing utils.PacingConfig
	stats  *models.RunStatistics

	observers []FrameObserver
	metrics   *Metrics

	behind int // frames behind schedule in the current sequence
}

// NewPlaybackController wires the loop to its engine and image source.
// A nil clock means the system clock.
func NewPlaybackController(eng engine.Engine, images ImageLoader, clock Clock,
	pacing utils.PacingConfig, stats *models.RunStatistics) *PlaybackController {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PlaybackController{
		engine: eng,
		images: images,
		clock:  clock,
		pacing: pacing,
		stats:  stats,
	}
}

// AddObserver registers a consumer of per-frame reports.
func (pc *PlaybackController) AddObserver(o FrameObserver) {
	pc.observers = append(pc.observers, o)
}

// SetMetrics attaches the run's metrics; nil disables them.
func (pc *PlaybackController) SetMetrics(m *Metrics) { pc.metrics = m }

// Stats returns the run statistics the loop appends to.
func (pc *PlaybackController) Stats() *models.RunStatistics { return pc.stats }

// CloseObservers closes every registered observer.
func (pc *PlaybackController) CloseObservers() error {
	return closeObservers(pc.observers)
}

// RunSequence plays one sequence to the end. Any load or decode failure
// stops the run at the failing frame; there is no retry and no skipping.
func (pc *PlaybackController) RunSequence(seq *ingest.Sequence) error {
	assigner, err := NewWindowAssigner(seq.Inertial, seq.Frames)
	if err != nil {
		return fmt.Errorf("sequence %d: %w", seq.Index, err)
	}
	label := strconv.Itoa(seq.Index)
	pc.metrics.observeSkipped(label, assigner.Skipped())
	pc.behind = 0

	utils.L().Info("sequence %d: playback started  (frames=%d, imu=%d, skipped=%d, pacing=%v, speed=%.2f)",
		seq.Index, len(seq.Frames), len(seq.Inertial), assigner.Skipped(), pc.pacing.Enabled, pc.pacing.Speed)

	for i := range seq.Frames {
		if err := pc.step(seq, assigner, i, label); err != nil {
			return err
		}
	}

	utils.L().Info("sequence %d: playback finished  (frames=%d, behind=%d, undelivered_imu=%d)",
		seq.Index, len(seq.Frames), pc.behind, assigner.Remaining())
	return nil
}

func (pc *PlaybackController) step(seq *ingest.Sequence, assigner *WindowAssigner, i int, label string) error {
	frame := seq.Frames[i]

	views, err := pc.images.Load(frame.Paths)
	if err != nil {
		return fmt.Errorf("sequence %d frame %d: %w", seq.Index, i, err)
	}

	window, err := assigner.Window(i)
	if err != nil {
		return fmt.Errorf("sequence %d: %w", seq.Index, err)
	}

	start := pc.clock.Now()
	pose, err := pc.engine.ProcessFrame(views, frame.Timestamp, window)
	elapsed := pc.clock.Now().Sub(start)
	if err != nil {
		return fmt.Errorf("sequence %d frame %d: tracking: %w", seq.Index, i, err)
	}
	pc.stats.Append(seq.Index, frame.Timestamp, elapsed, pose)

	target := TargetInterval(seq.Frames, i)
	delay := PacingDelay(elapsed, target, pc.pacing.Speed)
	behind := target > 0 && delay == 0
	var sleep time.Duration
	if pc.pacing.Enabled {
		sleep = delay
	}
	if behind {
		pc.behind++
	}

	report := models.FrameReport{
		RunID:      pc.stats.RunID,
		Sequence:   seq.Index,
		FrameIndex: i,
		Timestamp:  frame.Timestamp,
		WindowSize: len(window),
		Cursor:     assigner.Cursor(),
		TrackingMs: durationMs(elapsed),
		TargetMs:   target * 1000,
		SleepMs:    durationMs(sleep),
		Behind:     behind,
		Pose:       pose,
	}
	if len(window) > 0 {
		report.WindowStart = window[0].Timestamp
		report.WindowEnd = window[len(window)-1].Timestamp
	}
	for _, o := range pc.observers {
		o.OnFrame(report)
	}
	pc.metrics.observeFrame(label, len(window), elapsed, sleep, behind)

	utils.L().Debug("seq %d frame %d  t=%.6f  imu=%d  track=%.2fms  sleep=%.2fms",
		seq.Index, i, frame.Timestamp, len(window), report.TrackingMs, report.SleepMs)

	if sleep > 0 {
		pc.clock.Sleep(sleep)
	}
	return nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
