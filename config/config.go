package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/swdee/go-hybridtrack/postprocess"
	"github.com/swdee/go-hybridtrack/tracker"
)

// Policy names accepted by tracker.policy
const (
	PolicyInterval = "interval"
	PolicyTracker  = "tracker"
)

type Config struct {
	Model    ModelConfig    `mapstructure:"model"`
	Detector DetectorConfig `mapstructure:"detector"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Source   SourceConfig   `mapstructure:"source"`
	Log      LogConfig      `mapstructure:"log"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Wire     WireConfig     `mapstructure:"wire"`
}

type ModelConfig struct {
	Path    string `mapstructure:"path"`
	Labels  string `mapstructure:"labels"`
	Threads int    `mapstructure:"threads"`
}

type DetectorConfig struct {
	Confidence    float32 `mapstructure:"confidence"`
	NMS           float32 `mapstructure:"nms"`
	MaxDetections int     `mapstructure:"max_detections"`
}

type TrackerConfig struct {
	FrameRate        int    `mapstructure:"frame_rate"`
	TrackBuffer      int    `mapstructure:"track_buffer"`
	KeyframeInterval int    `mapstructure:"keyframe_interval"`
	Policy           string `mapstructure:"policy"`
}

type SourceConfig struct {
	// URI is a video file, stream URL, camera device id or image directory
	URI       string `mapstructure:"uri"`
	MaxFrames int    `mapstructure:"max_frames"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type StatsConfig struct {
	// CSVPath is where the latency report is written, empty to skip
	CSVPath string `mapstructure:"csv_path"`
}

type WireConfig struct {
	// Publish writes each frame's tracks in the wire format to stdout
	Publish   bool `mapstructure:"publish"`
	Precision int  `mapstructure:"precision"`
}

// Load reads configuration from a YAML file, filling unset values with
// defaults
func Load(configPath string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("model.path", d.Model.Path)
	v.SetDefault("model.labels", d.Model.Labels)
	v.SetDefault("model.threads", d.Model.Threads)

	v.SetDefault("detector.confidence", d.Detector.Confidence)
	v.SetDefault("detector.nms", d.Detector.NMS)
	v.SetDefault("detector.max_detections", d.Detector.MaxDetections)

	v.SetDefault("tracker.frame_rate", d.Tracker.FrameRate)
	v.SetDefault("tracker.track_buffer", d.Tracker.TrackBuffer)
	v.SetDefault("tracker.keyframe_interval", d.Tracker.KeyframeInterval)
	v.SetDefault("tracker.policy", d.Tracker.Policy)

	v.SetDefault("source.uri", d.Source.URI)
	v.SetDefault("source.max_frames", d.Source.MaxFrames)

	v.SetDefault("log.mode", d.Log.Mode)
	v.SetDefault("stats.csv_path", d.Stats.CSVPath)

	v.SetDefault("wire.publish", d.Wire.Publish)
	v.SetDefault("wire.precision", d.Wire.Precision)
}

// Default returns the configuration used when no file is given
func Default() *Config {

	dp := postprocess.YOLO11Params()
	tp := tracker.DefaultParams()

	return &Config{
		Model: ModelConfig{
			Path:    "../data/yolo11n_float32.tflite",
			Labels:  "../data/coco_80_labels_list.txt",
			Threads: 4,
		},
		Detector: DetectorConfig{
			Confidence:    dp.ConfidenceThreshold,
			NMS:           dp.IoUThreshold,
			MaxDetections: dp.MaxDetections,
		},
		Tracker: TrackerConfig{
			FrameRate:        tp.FrameRate,
			TrackBuffer:      tp.TrackBuffer,
			KeyframeInterval: tp.KeyframeInterval,
			Policy:           PolicyInterval,
		},
		Source: SourceConfig{
			URI: "../data/palace.mp4",
		},
		Log: LogConfig{
			Mode: "debug",
		},
		Wire: WireConfig{
			Precision: 4,
		},
	}
}

// Validate checks the values are usable
func (c *Config) Validate() error {

	if c.Detector.Confidence < 0 || c.Detector.Confidence > 1 {
		return fmt.Errorf("detector.confidence %v must be within [0,1]", c.Detector.Confidence)
	}

	if c.Detector.NMS < 0 || c.Detector.NMS > 1 {
		return fmt.Errorf("detector.nms %v must be within [0,1]", c.Detector.NMS)
	}

	if c.Detector.MaxDetections < 0 {
		return fmt.Errorf("detector.max_detections %d must not be negative", c.Detector.MaxDetections)
	}

	if c.Tracker.FrameRate <= 0 {
		return fmt.Errorf("tracker.frame_rate %d must be positive", c.Tracker.FrameRate)
	}

	if c.Tracker.KeyframeInterval < 1 {
		return fmt.Errorf("tracker.keyframe_interval %d must be at least 1", c.Tracker.KeyframeInterval)
	}

	if c.Tracker.Policy != PolicyInterval && c.Tracker.Policy != PolicyTracker {
		return fmt.Errorf("tracker.policy %q must be %q or %q", c.Tracker.Policy, PolicyInterval, PolicyTracker)
	}

	if c.Wire.Precision < 0 {
		return fmt.Errorf("wire.precision %d must not be negative", c.Wire.Precision)
	}

	return nil
}

// DecoderParams returns the detector settings as decoder parameters
func (c *Config) DecoderParams() postprocess.DecoderParams {
	return postprocess.DecoderParams{
		ConfidenceThreshold: c.Detector.Confidence,
		IoUThreshold:        c.Detector.NMS,
		MaxDetections:       c.Detector.MaxDetections,
	}
}

// TrackerParams returns the tracker settings as tracker parameters
func (c *Config) TrackerParams() tracker.Params {
	return tracker.Params{
		FrameRate:        c.Tracker.FrameRate,
		TrackBuffer:      c.Tracker.TrackBuffer,
		KeyframeInterval: c.Tracker.KeyframeInterval,
	}
}
