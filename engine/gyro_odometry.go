package engine

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"mav-playback/models"
	"mav-playback/utils"
	"mav-playback/views"
)

var (
	errNotInitialized = errors.New("engine not initialized")
	errShutdown       = errors.New("engine already shut down")
)

type trackedFrame struct {
	timestamp float64
	segment   int
	pose      models.Pose
}

// GyroOdometry is an orientation-only reference engine: it integrates the
// angular rate of each inertial window and reports the attitude with a
// zero translation. Keyframes are taken every KeyframeInterval frames or
// once the attitude has moved KeyframeAngleDeg since the last keyframe.
// It exercises the full engine contract so the driver can run end to end
// without a visual tracker.
type GyroOdometry struct {
	cfg     utils.EngineConfig
	bufSize int

	initialized bool
	stopped     bool

	segment     int
	orientation models.Quaternion
	lastIMU     float64
	haveIMU     bool

	sinceKeyframe int
	lastKeyframe  models.Quaternion
	newSegment    bool

	frames    []trackedFrame
	keyframes []trackedFrame
}

// NewGyroOdometry creates an uninitialised engine. bufSizeBytes sizes the
// export writers.
func NewGyroOdometry(cfg utils.EngineConfig, bufSizeBytes int) *GyroOdometry {
	if cfg.KeyframeInterval <= 0 {
		cfg.KeyframeInterval = 5
	}
	if cfg.KeyframeAngleDeg <= 0 {
		cfg.KeyframeAngleDeg = 10
	}
	return &GyroOdometry{
		cfg:          cfg,
		bufSize:      bufSizeBytes,
		orientation:  models.IdentityQuaternion(),
		lastKeyframe: models.IdentityQuaternion(),
		newSegment:   true,
	}
}

// Initialize checks that the vocabulary and settings files are readable.
// The reference engine has no use for their contents.
func (g *GyroOdometry) Initialize(vocabularyPath, settingsPath string, mode SensorMode) error {
	if mode != MultiCameraInertial {
		return utils.ConfigurationError("", fmt.Errorf("unsupported sensor mode %v", mode))
	}
	if err := checkReadable(vocabularyPath); err != nil {
		return utils.ConfigurationError(vocabularyPath, fmt.Errorf("vocabulary: %w", err))
	}
	if err := checkReadable(settingsPath); err != nil {
		return utils.ConfigurationError(settingsPath, fmt.Errorf("wrong path to settings: %w", err))
	}
	g.initialized = true
	utils.L().Info("gyro odometry ready  (mode=%v, keyframe_interval=%d, keyframe_angle=%.1f°)",
		mode, g.cfg.KeyframeInterval, g.cfg.KeyframeAngleDeg)
	return nil
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ProcessFrame integrates the window's angular rate into the attitude.
// Each sample's rate is held over the interval since the previous sample;
// the first sample of a segment only anchors time.
func (g *GyroOdometry) ProcessFrame(frames [models.NumViews]image.Image, timestamp float64, window []models.InertialSample) (models.Pose, error) {
	if !g.initialized {
		return models.Pose{}, errNotInitialized
	}
	if g.stopped {
		return models.Pose{}, errShutdown
	}
	for v, img := range frames {
		if img == nil {
			return models.Pose{}, fmt.Errorf("view %d: missing image", v)
		}
	}

	for _, s := range window {
		if g.haveIMU {
			dt := s.Timestamp - g.lastIMU
			if dt > 0 {
				dq := models.ExpRotation(
					float64(s.Gyro.X)*dt,
					float64(s.Gyro.Y)*dt,
					float64(s.Gyro.Z)*dt,
				)
				g.orientation = g.orientation.Mul(dq).Normalize()
			}
		}
		g.lastIMU = s.Timestamp
		g.haveIMU = true
	}

	pose := models.Pose{Rotation: g.orientation}
	tf := trackedFrame{timestamp: timestamp, segment: g.segment, pose: pose}
	g.frames = append(g.frames, tf)

	g.sinceKeyframe++
	angle := g.lastKeyframe.AngleTo(g.orientation) * 180 / math.Pi
	if g.newSegment || g.sinceKeyframe >= g.cfg.KeyframeInterval || angle >= g.cfg.KeyframeAngleDeg {
		g.keyframes = append(g.keyframes, tf)
		g.lastKeyframe = g.orientation
		g.sinceKeyframe = 0
		g.newSegment = false
	}

	return pose, nil
}

// BeginNewSegment drops per-sequence state: the attitude restarts at
// identity and inertial time continuity is broken.
func (g *GyroOdometry) BeginNewSegment() {
	g.segment++
	g.orientation = models.IdentityQuaternion()
	g.lastKeyframe = models.IdentityQuaternion()
	g.haveIMU = false
	g.sinceKeyframe = 0
	g.newSegment = true
	utils.L().Info("gyro odometry: segment %d started", g.segment)
}

// Shutdown stops tracking; further ProcessFrame calls fail.
func (g *GyroOdometry) Shutdown() {
	if g.stopped {
		return
	}
	g.stopped = true
	utils.L().Info("gyro odometry stopped  (frames=%d, keyframes=%d, segments=%d)",
		len(g.frames), len(g.keyframes), g.segment+1)
}

// Frames returns the number of frames tracked so far.
func (g *GyroOdometry) Frames() int { return len(g.frames) }

// Keyframes returns the number of keyframes selected so far.
func (g *GyroOdometry) Keyframes() int { return len(g.keyframes) }

// ExportPoseTrajectory writes every tracked frame in EuRoC order:
// timestamp in integer nanoseconds, then translation and quaternion.
func (g *GyroOdometry) ExportPoseTrajectory(path string) error {
	return g.exportEuRoC(path, views.ArtifactCameraTrajectory, g.frames)
}

// ExportKeyframeTrajectory writes the keyframes in the same format.
func (g *GyroOdometry) ExportKeyframeTrajectory(path string) error {
	return g.exportEuRoC(path, views.ArtifactKeyFrameTrajectory, g.keyframes)
}

func (g *GyroOdometry) exportEuRoC(path string, kind views.ArtifactKind, frames []trackedFrame) error {
	w, err := views.NewCSVWriter(path, g.bufSize, kind.Delimiter(), views.SchemaColumns[kind])
	if err != nil {
		return err
	}
	for _, f := range frames {
		row := append([]string{fmt.Sprintf("%d", utils.SecondsToNano(f.timestamp))}, f.pose.TUMFields()...)
		w.WriteRow(row)
	}
	if err := w.Close(); err != nil {
		return err
	}
	utils.L().Info("saved %s  (%d rows) to %s", kind, len(frames), path)
	return nil
}

// ExportRunStatistics writes the driver's per-frame record: the real-time
// pose of every frame in TUM format (seconds) and the tracking time of
// every frame.
func (g *GyroOdometry) ExportRunStatistics(prefix string, timestamps []float64, durations []time.Duration, poses []models.Pose) error {
	if len(timestamps) != len(durations) || len(timestamps) != len(poses) {
		return fmt.Errorf("run statistics length mismatch: %d timestamps, %d durations, %d poses",
			len(timestamps), len(durations), len(poses))
	}

	kind := views.ArtifactAllFrameTrajectory
	traj, err := views.NewCSVWriter(views.ArtifactPath(prefix, kind), g.bufSize, kind.Delimiter(), views.SchemaColumns[kind])
	if err != nil {
		return err
	}
	for i, ts := range timestamps {
		traj.WriteRow(append([]string{formatSeconds(ts)}, poses[i].TUMFields()...))
	}
	if err := traj.Close(); err != nil {
		return err
	}

	kind = views.ArtifactTrackingTime
	times, err := views.NewCSVWriter(views.ArtifactPath(prefix, kind), g.bufSize, kind.Delimiter(), views.SchemaColumns[kind])
	if err != nil {
		return err
	}
	for i, ts := range timestamps {
		ms := float64(durations[i]) / float64(time.Millisecond)
		times.WriteRow([]string{formatSeconds(ts), fmt.Sprintf("%.3f", ms)})
	}
	if err := times.Close(); err != nil {
		return err
	}

	utils.L().Info("saved run statistics  (%d frames) with prefix %s", len(timestamps), prefix)
	return nil
}

func formatSeconds(ts float64) string { return fmt.Sprintf("%.9f", ts) }
