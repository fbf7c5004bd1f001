package models

import (
	"slices"
	"time"
)

// RunStatistics accumulates per-frame results across the whole run. It is
// append-only; the playback controller writes it and the artifact writer
// reads it once the loop has finished.
type RunStatistics struct {
	RunID      string
	Timestamps []float64       // frame timestamps, seconds
	Durations  []time.Duration // tracking call wall time
	Poses      []Pose
	Sequences  []int // sequence index of each frame
}

// NewRunStatistics preallocates for the total number of frames in the run.
func NewRunStatistics(runID string, capacity int) *RunStatistics {
	return &RunStatistics{
		RunID:      runID,
		Timestamps: make([]float64, 0, capacity),
		Durations:  make([]time.Duration, 0, capacity),
		Poses:      make([]Pose, 0, capacity),
		Sequences:  make([]int, 0, capacity),
	}
}

// Append records one processed frame.
func (s *RunStatistics) Append(seq int, ts float64, d time.Duration, p Pose) {
	s.Timestamps = append(s.Timestamps, ts)
	s.Durations = append(s.Durations, d)
	s.Poses = append(s.Poses, p)
	s.Sequences = append(s.Sequences, seq)
}

// Len is the number of frames recorded so far.
func (s *RunStatistics) Len() int { return len(s.Timestamps) }

// MeanDuration returns the average tracking time, or zero for an empty run.
func (s *RunStatistics) MeanDuration() time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total / time.Duration(len(s.Durations))
}

// MedianDuration returns the median tracking time.
func (s *RunStatistics) MedianDuration() time.Duration {
	n := len(s.Durations)
	if n == 0 {
		return 0
	}
	sorted := make([]time.Duration, n)
	copy(sorted, s.Durations)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
