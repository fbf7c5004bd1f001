package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTargetInterval(t *testing.T) {
	t.Parallel()

	frames := framesAt(0, 50*ms, 120*ms)

	tests := []struct {
		name string
		i    int
		want float64
	}{
		{"gap to next frame", 0, 0.050},
		{"middle frame", 1, 0.070},
		{"last frame uses previous gap", 2, 0.070},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TargetInterval(frames, tt.i), 1e-12)
		})
	}

	assert.Zero(t, TargetInterval(framesAt(100), 0), "single frame")
}

func TestPacingDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30*time.Millisecond, PacingDelay(20*time.Millisecond, 0.050, 1))
	assert.Zero(t, PacingDelay(50*time.Millisecond, 0.050, 1), "exactly on time")
	assert.Zero(t, PacingDelay(90*time.Millisecond, 0.050, 1), "behind schedule")
	assert.Equal(t, 5*time.Millisecond, PacingDelay(20*time.Millisecond, 0.050, 2))
	assert.Equal(t, 30*time.Millisecond, PacingDelay(20*time.Millisecond, 0.050, 0), "non-positive speed is real time")
	assert.Zero(t, PacingDelay(0, 0, 1))
}
