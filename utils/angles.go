package swerveutils

import "math"

// WrapTo360 normalizes an angle in degrees to [0, 360).
func WrapTo360(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// SteerDelta returns the signed shortest rotation from current to target in
// degrees. The result is in (-180, 180]; two opposite azimuths resolve to
// +180, never -180. Inputs outside [0, 360) are wrapped first.
func SteerDelta(target, current float64) float64 {
	delta := math.Mod(WrapTo360(target)-WrapTo360(current)+540, 360) - 180
	if delta <= -180 {
		delta += 360
	}
	return delta
}

// SteerPower converts an angular error in degrees into a normalized motor
// power. A full half turn of error maps to full power; the result is clamped
// to [-maxPower, maxPower].
func SteerPower(deltaDeg, maxPower float64) float64 {
	return Clamp(deltaDeg/180, -maxPower, maxPower)
}

// Aligned reports whether an angular error is within tolerance. Wheels gate
// their drive power on this.
func Aligned(deltaDeg, toleranceDeg float64) bool {
	return math.Abs(deltaDeg) <= toleranceDeg
}

// Clamp limits v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
