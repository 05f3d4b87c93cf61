package postprocess

// deqntAffineToF32 converts a quantized value back to a float32 using the
// provided zero point and scale
func deqntAffineToF32(qnt int32, zp int32, scale float32) float32 {
	return float32(qnt-zp) * scale
}

// clamp restricts val to be within the range min and max
func clamp(val, min, max float32) float32 {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
