package utils

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

func TestLoadPlaybackConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadPlaybackConfig("")
	require.NoError(t, err)
	assert.Equal(t, "mav0/cam1/data", cfg.Dataset.Views.A)
	assert.Equal(t, "mav0/cam3/data", cfg.Dataset.Views.D)
	assert.Equal(t, "mav0/imu0/data.csv", cfg.Dataset.IMUPath)
	assert.True(t, cfg.Pacing.Enabled)
	assert.Equal(t, 1.0, cfg.Pacing.Speed)
	assert.Equal(t, 256, cfg.Output.BufferSizeKB)
	assert.False(t, cfg.Monitor.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
}

func TestLoadPlaybackConfigOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "playback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset:
  image_ext: jpg
pacing:
  enabled: false
  speed: 0
image:
  scale: 0.5
output:
  dir: results
monitor:
  enabled: true
  addr: "127.0.0.1:9000"
mqtt:
  enabled: true
  broker: tcp://broker:1883
  topic: mav/frames
  qos: 1
log:
  level: debug
`), 0644))

	cfg, err := LoadPlaybackConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ".jpg", cfg.Dataset.ImageExt)
	assert.Equal(t, "mav0/cam0/data", cfg.Dataset.Views.B, "untouched keys keep defaults")
	assert.False(t, cfg.Pacing.Enabled)
	assert.Equal(t, 1.0, cfg.Pacing.Speed, "non-positive speed falls back to real time")
	assert.Equal(t, 0.5, cfg.Image.Scale)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, "127.0.0.1:9000", cfg.Monitor.Addr)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "mav-playback", cfg.MQTT.ClientID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadPlaybackConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "pacing: [\n"},
		{"scale above one", "image:\n  scale: 2\n"},
		{"bad qos", "mqtt:\n  enabled: true\n  qos: 3\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"empty view", "dataset:\n  views:\n    c: \"\"\n"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("c%d.yaml", i))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadPlaybackConfig(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := LoadPlaybackConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestPlaybackErrorKinds(t *testing.T) {
	t.Parallel()

	base := errors.New("strconv: invalid syntax")
	err := fmt.Errorf("sequence 0: %w", ParseError("imu.csv", 12, base))

	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "sequence 0: parse error: imu.csv:12: strconv: invalid syntax", err.Error())
	assert.Equal(t, "parse", ErrorKind(err))

	assert.Equal(t, "configuration", ErrorKind(ConfigurationError("", errors.New("x"))))
	assert.Equal(t, "dataset_integrity", ErrorKind(DatasetIntegrityError("t.txt", nil)))
	assert.Equal(t, "decode", ErrorKind(DecodeError("a.png", nil)))
	assert.Equal(t, "unknown", ErrorKind(errors.New("other")))
	assert.Equal(t, "decode error: a.png", DecodeError("a.png", nil).Error())
}

// ---------------------------------------------------------------------------
// Timestamps and logging
// ---------------------------------------------------------------------------

func TestNanoTokenToSeconds(t *testing.T) {
	t.Parallel()

	s, err := NanoTokenToSeconds("1403636579763555584")
	require.NoError(t, err)
	assert.InDelta(t, 1403636579.763555584, s, 1e-6)

	s, err = NanoTokenToSeconds("100")
	require.NoError(t, err)
	assert.InDelta(t, 100e-9, s, 1e-18)

	for _, bad := range []string{"", "abc", "NaN", "Inf"} {
		_, err := NanoTokenToSeconds(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, int64(250), SecondsToNano(250e-9))
	assert.Equal(t, 50*time.Millisecond, SecondsToDuration(0.05))
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	lvl, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, WARN, lvl)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, "ERROR", ERROR.String())
}

func TestLoggerLevelsAndFatal(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	code := -1
	l := &Logger{
		level: INFO,
		inner: log.New(&out, "", 0),
		errw:  log.New(&errOut, "", 0),
		exit:  func(c int) { code = c },
	}

	l.Debug("hidden")
	l.Info("frame %d", 3)
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO]")
	assert.Empty(t, errOut.String(), "info stays off stderr")

	l.Fatal("cannot continue: %v", "boom")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "cannot continue: boom")
}
