// Package engine defines the boundary between the playback driver and a
// tracking engine, plus a reference engine used when no other engine is
// linked in.
package engine

import (
	"image"
	"time"

	"mav-playback/models"
)

// SensorMode selects the sensor configuration an engine is initialised for.
type SensorMode int

const (
	// MultiCameraInertial is four synchronised cameras plus one IMU.
	MultiCameraInertial SensorMode = iota
)

func (m SensorMode) String() string {
	switch m {
	case MultiCameraInertial:
		return "multi-camera-inertial"
	}
	return "unknown"
}

// Engine is everything the driver needs from a tracking engine. Each call
// is blocking from the driver's point of view; the engine may run its own
// background work between calls.
type Engine interface {
	Initialize(vocabularyPath, settingsPath string, mode SensorMode) error

	// ProcessFrame tracks one synchronised frame. window holds the
	// inertial samples since the previous frame, possibly none. Tracking
	// problems are not errors: the engine returns its best pose.
	ProcessFrame(views [models.NumViews]image.Image, timestamp float64, window []models.InertialSample) (models.Pose, error)

	// BeginNewSegment starts a new trajectory segment when the driver
	// moves on to the next sequence.
	BeginNewSegment()

	// Shutdown stops all internal activity. Only exports may follow.
	Shutdown()

	ExportPoseTrajectory(path string) error
	ExportKeyframeTrajectory(path string) error
	ExportRunStatistics(prefix string, timestamps []float64, durations []time.Duration, poses []models.Pose) error
}
