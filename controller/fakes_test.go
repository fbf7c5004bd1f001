package controller

import (
	"errors"
	"image"
	"os"
	"time"

	"mav-playback/engine"
	"mav-playback/models"
	"mav-playback/services/ingest"
	"mav-playback/views"
)

// fakeClock advances only when told to: by the engine's simulated tracking
// cost and by pacing sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakeEngine echoes identity poses and records every call.
type fakeEngine struct {
	clock *fakeClock
	cost  func(frame int) time.Duration

	starts     []time.Time
	timestamps []float64
	windows    [][]models.InertialSample
	segments   int
	shutdown   bool
	exportErr  error
	calls      []string
}

func (e *fakeEngine) Initialize(string, string, engine.SensorMode) error { return nil }

func (e *fakeEngine) ProcessFrame(_ [models.NumViews]image.Image, ts float64, w []models.InertialSample) (models.Pose, error) {
	if e.shutdown {
		return models.Pose{}, errors.New("shut down")
	}
	if e.clock != nil {
		e.starts = append(e.starts, e.clock.Now())
		if e.cost != nil {
			e.clock.advance(e.cost(len(e.timestamps)))
		}
	}
	e.timestamps = append(e.timestamps, ts)
	e.windows = append(e.windows, w)
	e.calls = append(e.calls, "process")
	return models.IdentityPose(), nil
}

func (e *fakeEngine) BeginNewSegment() {
	e.segments++
	e.calls = append(e.calls, "segment")
}

func (e *fakeEngine) Shutdown() {
	e.shutdown = true
	e.calls = append(e.calls, "shutdown")
}

func (e *fakeEngine) ExportPoseTrajectory(path string) error {
	e.calls = append(e.calls, "export_pose")
	return e.touch(path)
}

func (e *fakeEngine) ExportKeyframeTrajectory(path string) error {
	e.calls = append(e.calls, "export_keyframe")
	if e.exportErr != nil {
		return e.exportErr
	}
	return e.touch(path)
}

func (e *fakeEngine) ExportRunStatistics(prefix string, ts []float64, _ []time.Duration, _ []models.Pose) error {
	e.calls = append(e.calls, "export_stats")
	if err := e.touch(views.ArtifactPath(prefix, views.ArtifactAllFrameTrajectory)); err != nil {
		return err
	}
	return e.touch(views.ArtifactPath(prefix, views.ArtifactTrackingTime))
}

func (e *fakeEngine) touch(path string) error {
	return os.WriteFile(path, []byte("# fake\n"), 0644)
}

// fakeImages returns blank images, or fails on a chosen frame token.
type fakeImages struct {
	failToken string
	loads     int
}

func (f *fakeImages) Load(paths [models.NumViews]string) ([models.NumViews]image.Image, error) {
	f.loads++
	var out [models.NumViews]image.Image
	for v, p := range paths {
		if f.failToken != "" && p == f.failToken {
			return out, errors.New("corrupt image " + p)
		}
		out[v] = image.NewGray(image.Rect(0, 0, 4, 4))
	}
	return out, nil
}

// recordingObserver keeps every report.
type recordingObserver struct {
	reports []models.FrameReport
	closed  bool
}

func (o *recordingObserver) OnFrame(r models.FrameReport) { o.reports = append(o.reports, r) }
func (o *recordingObserver) Close() error                 { o.closed = true; return nil }

func testSequence(index int, frameNs []int64, imuNs []int64) *ingest.Sequence {
	frames := framesAt(frameNs...)
	for i := range frames {
		tok := "f" + string(rune('a'+i%26))
		frames[i].Token = tok
		frames[i].Paths = [models.NumViews]string{tok, tok, tok, tok}
	}
	return &ingest.Sequence{
		Index:    index,
		Frames:   frames,
		Inertial: samplesAt(imuNs...),
	}
}
