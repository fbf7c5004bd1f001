package views

// Artifact layout: the single source of truth for file names and column
// order of everything a run writes next to its output prefix.

// ArtifactKind identifies one output file of a run.
type ArtifactKind int

const (
	ArtifactCameraTrajectory ArtifactKind = iota
	ArtifactKeyFrameTrajectory
	ArtifactAllFrameTrajectory
	ArtifactTrackingTime
	ArtifactSyncLog
)

var artifactNames = map[ArtifactKind]string{
	ArtifactCameraTrajectory:   "camera_trajectory",
	ArtifactKeyFrameTrajectory: "keyframe_trajectory",
	ArtifactAllFrameTrajectory: "all_frame_trajectory",
	ArtifactTrackingTime:       "tracking_time",
	ArtifactSyncLog:            "sync_log",
}

func (a ArtifactKind) String() string {
	if n, ok := artifactNames[a]; ok {
		return n
	}
	return "unknown"
}

var artifactSuffixes = map[ArtifactKind]string{
	ArtifactCameraTrajectory:   "_CameraTrajectory.txt",
	ArtifactKeyFrameTrajectory: "_KeyFrameTrajectory.txt",
	ArtifactAllFrameTrajectory: "_AllFrameTrajectory.txt",
	ArtifactTrackingTime:       "_TrackingTime.txt",
	ArtifactSyncLog:            "_SyncLog.csv",
}

// ArtifactPath returns "<prefix><suffix>" for the given kind.
func ArtifactPath(prefix string, kind ArtifactKind) string {
	return prefix + artifactSuffixes[kind]
}

// Delimiter returns the field separator used by the artifact.
func (a ArtifactKind) Delimiter() rune {
	if a == ArtifactSyncLog {
		return ','
	}
	return ' '
}

// SchemaColumns lists the header of each space-separated artifact. The
// leading "#" keeps the header a comment for trajectory evaluation tools.
// The sync log takes its header from models.FrameReport.
var SchemaColumns = map[ArtifactKind][]string{
	ArtifactCameraTrajectory: {
		"#", "timestamp_ns", "tx", "ty", "tz", "qx", "qy", "qz", "qw",
	},
	ArtifactKeyFrameTrajectory: {
		"#", "timestamp_ns", "tx", "ty", "tz", "qx", "qy", "qz", "qw",
	},
	ArtifactAllFrameTrajectory: {
		"#", "timestamp_s", "tx", "ty", "tz", "qx", "qy", "qz", "qw",
	},
	ArtifactTrackingTime: {
		"#", "timestamp_s", "tracking_ms",
	},
}
