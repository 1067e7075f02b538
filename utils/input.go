package swerveutils

import "math"

// Deadband zeroes stick values inside radius and rescales the remainder so
// the output stays continuous at the deadband edge.
func Deadband(v, radius float64) float64 {
	if radius <= 0 {
		return v
	}
	if math.Abs(v) < radius {
		return 0
	}
	return math.Copysign((math.Abs(v)-radius)/(1-radius), v)
}

// CubeCurve applies a cubic response curve to a stick value. Sign and the
// [-1, 1] range are preserved; small deflections are softened for fine
// control.
func CubeCurve(v float64) float64 {
	return v * v * v
}
