package utils

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// NanoTokenToSeconds parses an integer-nanosecond token as written in
// EuRoC-style timestamp files and CSV logs and returns seconds.
// The token is parsed as a float so that exponent notation survives,
// matching how the recorded datasets have been consumed historically.
func NanoTokenToSeconds(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("timestamp %q is not finite", tok)
	}
	return v / 1e9, nil
}

// SecondsToDuration converts a playback interval in seconds to a Duration,
// rounded to the nanosecond.
func SecondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// SecondsToNano converts seconds back to integer nanoseconds for
// trajectory files keyed by the original capture tick.
func SecondsToNano(s float64) int64 {
	return int64(math.Round(s * 1e9))
}

// SessionName returns a unique name for staging directories:
//
//	<prefix>_YYYYMMDD_HHMMSS
func SessionName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, time.Now().Format("20060102_150405"))
}
