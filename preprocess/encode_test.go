package preprocess

import (
	"encoding/binary"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-hybridtrack"
)

func inputDesc(typ hybridtrack.TensorType, zp int32) hybridtrack.TensorDesc {
	return hybridtrack.TensorDesc{
		Name:  "images",
		Dims:  []int{1, 2, 2, 3},
		Type:  typ,
		ZP:    zp,
		Scale: 1.0 / 255,
	}
}

func TestEncodeQuantized(t *testing.T) {

	tests := []struct {
		name     string
		typ      hybridtrack.TensorType
		zp       int32
		expected byte
	}{
		{"uint8 zero point 0", hybridtrack.TensorUint8, 0, 200},
		{"uint8 zero point 128", hybridtrack.TensorUint8, 128, 72},
		{"int8 zero point -128 wraps", hybridtrack.TensorInt8, -128, 72},
		{"int8 zero point 0", hybridtrack.TensorInt8, 0, 200},
	}

	canvas := solid(2, 2, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := NewEncoder(inputDesc(tc.typ, tc.zp))
			require.NoError(t, err)

			out, err := enc.Encode(canvas)
			require.NoError(t, err)
			require.Len(t, out, 2*2*3)

			for i, v := range out {
				if v != tc.expected {
					t.Errorf("byte %d: expected %d, got %d", i, tc.expected, v)
				}
			}
		})
	}
}

func TestEncodeFloat32(t *testing.T) {

	enc, err := NewEncoder(inputDesc(hybridtrack.TensorFloat32, 0))
	require.NoError(t, err)

	canvas := solid(2, 2, color.RGBA{R: 255, G: 0, B: 51, A: 255})

	out, err := enc.Encode(canvas)
	require.NoError(t, err)
	require.Len(t, out, 2*2*3*4)

	get := func(i int) float32 {
		return math.Float32frombits(binary.NativeEndian.Uint32(out[i*4:]))
	}

	// NHWC ordering with no alpha channel
	for p := 0; p < 4; p++ {
		assert.InDelta(t, 1.0, get(p*3), 1e-6)
		assert.InDelta(t, 0.0, get(p*3+1), 1e-6)
		assert.InDelta(t, 0.2, get(p*3+2), 1e-6)
	}
}

func TestEncodeReusesBuffer(t *testing.T) {

	enc, err := NewEncoder(inputDesc(hybridtrack.TensorUint8, 0))
	require.NoError(t, err)

	first, err := enc.Encode(solid(2, 2, red))
	require.NoError(t, err)

	second, err := enc.Encode(solid(2, 2, PadColor))
	require.NoError(t, err)

	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, 1, enc.out.allocs)
}

func TestEncoderUnsupportedType(t *testing.T) {

	for _, typ := range []hybridtrack.TensorType{
		hybridtrack.TensorFloat16, hybridtrack.TensorInt16,
		hybridtrack.TensorInt32, hybridtrack.TensorUnknown,
	} {
		_, err := NewEncoder(inputDesc(typ, 0))
		assert.ErrorIs(t, err, hybridtrack.ErrUnsupportedTensorType, typ.String())
	}
}

func TestEncodeSizeMismatch(t *testing.T) {

	enc, err := NewEncoder(inputDesc(hybridtrack.TensorUint8, 0))
	require.NoError(t, err)

	_, err = enc.Encode(solid(3, 2, red))
	assert.ErrorIs(t, err, hybridtrack.ErrInvalidFrame)
}
