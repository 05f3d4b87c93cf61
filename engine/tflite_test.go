package engine

import (
	"testing"

	tflite "github.com/mattn/go-tflite"
	"github.com/stretchr/testify/assert"
	"github.com/swdee/go-hybridtrack"
)

func TestTensorType(t *testing.T) {

	tests := []struct {
		in       tflite.TensorType
		expected hybridtrack.TensorType
	}{
		{tflite.Float32, hybridtrack.TensorFloat32},
		{tfliteFloat16, hybridtrack.TensorFloat16},
		{tflite.Int16, hybridtrack.TensorInt16},
		{tflite.UInt8, hybridtrack.TensorUint8},
		{tflite.Int8, hybridtrack.TensorInt8},
		{tflite.Int32, hybridtrack.TensorInt32},
		{tflite.String, hybridtrack.TensorUnknown},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, tensorType(tc.in), "tflite type %v", tc.in)
	}
}

func TestNewTFLiteMissingModel(t *testing.T) {

	_, err := NewTFLite("testdata/does-not-exist.tflite", TFLiteOptions{Threads: 1})
	assert.Error(t, err)
}
