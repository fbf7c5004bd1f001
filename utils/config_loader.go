package utils

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ─── Section configs ────────────────────────────────────────────────────

// ViewDirs maps the four synchronised camera views to image directories
// relative to a sequence folder.
type ViewDirs struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
	C string `yaml:"c"`
	D string `yaml:"d"`
}

// Slice returns the directories in view order A, B, C, D.
func (v ViewDirs) Slice() [4]string { return [4]string{v.A, v.B, v.C, v.D} }

type DatasetConfig struct {
	Views    ViewDirs `yaml:"views"`
	IMUPath  string   `yaml:"imu_path"`
	ImageExt string   `yaml:"image_ext"`
}

type PacingConfig struct {
	Enabled bool    `yaml:"enabled"`
	Speed   float64 `yaml:"speed"` // 1.0 = original capture rate
}

type ImageConfig struct {
	Grayscale bool    `yaml:"grayscale"`
	Scale     float64 `yaml:"scale"` // 1.0 = native resolution
}

type EngineConfig struct {
	KeyframeInterval int     `yaml:"keyframe_interval"`
	KeyframeAngleDeg float64 `yaml:"keyframe_angle_deg"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	SyncLog bool   `yaml:"sync_log"`
	// BufferSizeKB sizes the buffered writers behind every text artifact.
	BufferSizeKB int `yaml:"buffer_size_kb"`
}

type MonitorConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Addr          string `yaml:"addr"`
	ClientBuffer  int    `yaml:"client_buffer"`
	ShutdownGrace int    `yaml:"shutdown_grace_ms"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// PlaybackConfig is the top-level structure for playback.yaml.
type PlaybackConfig struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Image   ImageConfig   `yaml:"image"`
	Engine  EngineConfig  `yaml:"engine"`
	Output  OutputConfig  `yaml:"output"`
	Monitor MonitorConfig `yaml:"monitor"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Log     LogConfig     `yaml:"log"`
}

// DefaultPlaybackConfig returns the layout of the multi-camera EuRoC-style
// recordings (left=cam1, right=cam0, side-left=cam4, side-right=cam3) with
// real-time pacing switched on.
func DefaultPlaybackConfig() *PlaybackConfig {
	return &PlaybackConfig{
		Dataset: DatasetConfig{
			Views: ViewDirs{
				A: "mav0/cam1/data",
				B: "mav0/cam0/data",
				C: "mav0/cam4/data",
				D: "mav0/cam3/data",
			},
			IMUPath:  "mav0/imu0/data.csv",
			ImageExt: ".png",
		},
		Pacing: PacingConfig{Enabled: true, Speed: 1.0},
		Image:  ImageConfig{Grayscale: true, Scale: 1.0},
		Engine: EngineConfig{KeyframeInterval: 5, KeyframeAngleDeg: 10},
		Output: OutputConfig{SyncLog: true, BufferSizeKB: 256},
		Monitor: MonitorConfig{
			Addr:          ":8090",
			ClientBuffer:  64,
			ShutdownGrace: 500,
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "mav-playback",
			Topic:    "playback/frame",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Validate fills zero values with defaults and rejects settings that
// cannot be honoured.
func (c *PlaybackConfig) Validate() error {
	def := DefaultPlaybackConfig()

	views := c.Dataset.Views.Slice()
	for i, v := range views {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("dataset.views: view %c has no directory", 'a'+i)
		}
	}
	if c.Dataset.IMUPath == "" {
		return fmt.Errorf("dataset.imu_path is required")
	}
	if c.Dataset.ImageExt == "" {
		c.Dataset.ImageExt = def.Dataset.ImageExt
	}
	if !strings.HasPrefix(c.Dataset.ImageExt, ".") {
		c.Dataset.ImageExt = "." + c.Dataset.ImageExt
	}

	if c.Pacing.Speed <= 0 {
		c.Pacing.Speed = def.Pacing.Speed
	}
	if c.Image.Scale <= 0 {
		c.Image.Scale = def.Image.Scale
	}
	if c.Image.Scale > 1 {
		return fmt.Errorf("image.scale must be in (0, 1], got %g", c.Image.Scale)
	}
	if c.Engine.KeyframeInterval <= 0 {
		c.Engine.KeyframeInterval = def.Engine.KeyframeInterval
	}
	if c.Engine.KeyframeAngleDeg <= 0 {
		c.Engine.KeyframeAngleDeg = def.Engine.KeyframeAngleDeg
	}
	if c.Output.BufferSizeKB <= 0 {
		c.Output.BufferSizeKB = def.Output.BufferSizeKB
	}

	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		return fmt.Errorf("monitor.addr is required when monitor.enabled")
	}
	if c.Monitor.ClientBuffer <= 0 {
		c.Monitor.ClientBuffer = def.Monitor.ClientBuffer
	}
	if c.Monitor.ShutdownGrace <= 0 {
		c.Monitor.ShutdownGrace = def.Monitor.ShutdownGrace
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt.enabled")
		}
		if c.MQTT.Topic == "" {
			return fmt.Errorf("mqtt.topic is required when mqtt.enabled")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0-2, got %d", c.MQTT.QoS)
		}
		if c.MQTT.ClientID == "" {
			c.MQTT.ClientID = def.MQTT.ClientID
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ─── Loader ─────────────────────────────────────────────────────────────

// LoadPlaybackConfig reads playback.yaml over the defaults. An empty path
// yields the defaults. Any failure is a configuration error.
func LoadPlaybackConfig(path string) (*PlaybackConfig, error) {
	cfg := DefaultPlaybackConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ConfigurationError(path, fmt.Errorf("read playback config: %w", err))
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ConfigurationError(path, fmt.Errorf("parse playback config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, ConfigurationError(path, err)
	}
	return cfg, nil
}
