// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// pcmScale maps a 16-bit sample onto [-1, 1). Using a power of two keeps
// int16 -> float32 -> int16 conversions lossless.
const pcmScale = 32768.0

// Float32ToInt16 converts a normalized sample to 16-bit PCM, clamping values
// outside [-1, 1].
func Float32ToInt16(x float32) int16 {
	v := x * pcmScale
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Int16ToFloat32 converts a 16-bit PCM sample to a float in [-1, 1).
func Int16ToFloat32(s int16) float32 {
	return float32(s) / pcmScale
}

// Int16FromBytes rebuilds a little-endian signed sample from its two bytes.
func Int16FromBytes(low, high byte) int16 {
	return int16(uint16(high)<<8 | uint16(low))
}
