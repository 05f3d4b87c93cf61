package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestDefault(t *testing.T) {

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, float32(0.1), cfg.Detector.Confidence)
	assert.Equal(t, float32(0.45), cfg.Detector.NMS)
	assert.Equal(t, 3, cfg.Tracker.KeyframeInterval)
	assert.Equal(t, 30, cfg.Tracker.FrameRate)
	assert.Equal(t, 30, cfg.Tracker.TrackBuffer)
	assert.Equal(t, PolicyInterval, cfg.Tracker.Policy)
}

func TestLoadOverrides(t *testing.T) {

	path := writeConfig(t, `
model:
  path: /models/yolo11s_int8.tflite
detector:
  confidence: 0.25
tracker:
  keyframe_interval: 5
  policy: tracker
wire:
  publish: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/models/yolo11s_int8.tflite", cfg.Model.Path)
	assert.Equal(t, float32(0.25), cfg.Detector.Confidence)
	assert.Equal(t, 5, cfg.Tracker.KeyframeInterval)
	assert.Equal(t, PolicyTracker, cfg.Tracker.Policy)
	assert.True(t, cfg.Wire.Publish)

	// unset values keep their defaults
	assert.Equal(t, float32(0.45), cfg.Detector.NMS)
	assert.Equal(t, 30, cfg.Tracker.FrameRate)
	assert.Equal(t, 4, cfg.Wire.Precision)

	assert.Equal(t, float32(0.25), cfg.DecoderParams().ConfidenceThreshold)
	assert.Equal(t, 5, cfg.TrackerParams().KeyframeInterval)
}

func TestLoadInvalid(t *testing.T) {

	tests := []struct {
		name string
		body string
	}{
		{"confidence above one", "detector:\n  confidence: 1.5\n"},
		{"zero keyframe interval", "tracker:\n  keyframe_interval: 0\n"},
		{"unknown policy", "tracker:\n  policy: random\n"},
		{"zero frame rate", "tracker:\n  frame_rate: 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
