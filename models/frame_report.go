package models

// FrameReport summarises one processed frame for observers: the sync log,
// the live monitor and the MQTT publisher all consume it.
type FrameReport struct {
	RunID       string  `json:"run_id"`
	Sequence    int     `json:"sequence"`
	FrameIndex  int     `json:"frame_index"`
	Timestamp   float64 `json:"timestamp"` // seconds
	WindowSize  int     `json:"window_size"`
	WindowStart float64 `json:"window_start,omitempty"` // first sample time, seconds
	WindowEnd   float64 `json:"window_end,omitempty"`   // last sample time, seconds
	Cursor      int     `json:"cursor"`
	TrackingMs  float64 `json:"tracking_ms"`
	TargetMs    float64 `json:"target_ms"`
	SleepMs     float64 `json:"sleep_ms"`
	Behind      bool    `json:"behind"` // tracking took at least the target interval
	Pose        Pose    `json:"pose"`
}

// CSVHeader returns the sync-log column order.
func (FrameReport) CSVHeader() []string {
	return []string{
		"run_id", "sequence", "frame_index", "timestamp_s",
		"window_size", "window_start_s", "window_end_s", "cursor",
		"tracking_ms", "target_ms", "sleep_ms", "behind",
	}
}

// CSVRow serialises one report; window bounds are blank for empty windows.
func (r *FrameReport) CSVRow() []string {
	start, end := "", ""
	if r.WindowSize > 0 {
		start, end = ftoa(r.WindowStart, 9), ftoa(r.WindowEnd, 9)
	}
	behind := "0"
	if r.Behind {
		behind = "1"
	}
	return []string{
		r.RunID, itoa(r.Sequence), itoa(r.FrameIndex), ftoa(r.Timestamp, 9),
		itoa(r.WindowSize), start, end, itoa(r.Cursor),
		ftoa(r.TrackingMs, 3), ftoa(r.TargetMs, 3), ftoa(r.SleepMs, 3), behind,
	}
}
