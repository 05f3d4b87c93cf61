package hybridtrack

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16LookupTable[i] = float16.Frombits(uint16(i)).Float32()
	}
}

// Float16ToFloat32 converts the IEEE 754 half precision bit pattern to a
// float32
func Float16ToFloat32(bits uint16) float32 {
	return f16LookupTable[bits]
}

// Float32ToFloat16 converts a float32 to its half precision bit pattern
func Float32ToFloat16(f float32) uint16 {
	return float16.Fromfloat32(f).Bits()
}
