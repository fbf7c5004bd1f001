package controller

import (
	"time"

	"mav-playback/models"
	"mav-playback/utils"
)

// Clock is the time source of the playback loop. Tests substitute a fake
// that records sleeps instead of blocking.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock reads the monotonic wall clock and really sleeps.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// TargetInterval returns the capture interval to reproduce after frame i:
// the gap to the next frame, or for the last frame the gap from the
// previous one, or zero for a single-frame sequence. Seconds.
func TargetInterval(frames []models.FrameRecord, i int) float64 {
	switch {
	case i < len(frames)-1:
		return frames[i+1].Timestamp - frames[i].Timestamp
	case i > 0:
		return frames[i].Timestamp - frames[i-1].Timestamp
	}
	return 0
}

// PacingDelay is how long to wait after a frame whose tracking took
// elapsed, to keep a target interval. speed scales playback (2 = twice as
// fast as capture). Zero when processing already used up the interval.
func PacingDelay(elapsed time.Duration, targetSeconds, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	target := utils.SecondsToDuration(targetSeconds / speed)
	if elapsed >= target {
		return 0
	}
	return target - elapsed
}
