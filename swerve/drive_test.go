package swerve

import (
	"math"
	"testing"

	"go.viam.com/test"
)

// squareWheels returns four corners of a square wheelbase with normalized
// positions, in fl, fr, bl, br order.
func squareWheels() []*wheel {
	positions := [][2]float64{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	names := []string{"fl", "fr", "bl", "br"}
	wheels := make([]*wheel, len(positions))
	radius := math.Sqrt2
	for i, p := range positions {
		wheels[i] = &wheel{
			name:    names[i],
			xNorm:   p[0] / radius,
			yNorm:   p[1] / radius,
			lockDeg: math.Atan2(p[0], p[1]) * 180 / math.Pi,
		}
	}
	return wheels
}

func TestMixWheelStates(t *testing.T) {
	wheels := squareWheels()

	t.Run("pure translation", func(t *testing.T) {
		for _, tc := range []struct {
			vx, vy  float64
			azimuth float64
		}{
			{0, 1, 0},    // forward
			{1, 0, 90},   // strafe right
			{0, -1, 180}, // reverse
			{-1, 0, -90}, // strafe left
		} {
			states := mixWheelStates(wheels, tc.vx, tc.vy, 0)
			for _, state := range states {
				test.That(t, state.azimuthDeg, test.ShouldAlmostEqual, tc.azimuth)
				test.That(t, state.power, test.ShouldAlmostEqual, 1)
			}
		}
	})

	t.Run("pure rotation", func(t *testing.T) {
		states := mixWheelStates(wheels, 0, 0, 1)
		// wheels point along the rotation tangent at their corner
		test.That(t, states[0].azimuthDeg, test.ShouldAlmostEqual, -135) // fl
		test.That(t, states[1].azimuthDeg, test.ShouldAlmostEqual, -45)  // fr
		test.That(t, states[2].azimuthDeg, test.ShouldAlmostEqual, 135)  // bl
		test.That(t, states[3].azimuthDeg, test.ShouldAlmostEqual, 45)   // br
		for _, state := range states {
			test.That(t, state.power, test.ShouldAlmostEqual, 1)
		}
	})

	t.Run("desaturation", func(t *testing.T) {
		states := mixWheelStates(wheels, 1, 1, 0)
		for _, state := range states {
			test.That(t, state.azimuthDeg, test.ShouldAlmostEqual, 45)
			test.That(t, state.power, test.ShouldAlmostEqual, 1)
		}

		// translation plus rotation exceeds full power on some wheels; all
		// are rescaled so the fastest wheel sits at 1
		states = mixWheelStates(wheels, 0, 1, 1)
		maxPower := 0.0
		for _, state := range states {
			test.That(t, state.power, test.ShouldBeLessThanOrEqualTo, 1)
			if state.power > maxPower {
				maxPower = state.power
			}
		}
		test.That(t, maxPower, test.ShouldAlmostEqual, 1)
	})

	t.Run("idle", func(t *testing.T) {
		states := mixWheelStates(wheels, 0, 0, 0)
		for _, state := range states {
			test.That(t, state.power, test.ShouldAlmostEqual, 0)
		}
	})
}

func TestDriveAzimuth(t *testing.T) {
	test.That(t, DriveAzimuth(0), test.ShouldAlmostEqual, 180)
	test.That(t, DriveAzimuth(90), test.ShouldAlmostEqual, 270)
	test.That(t, DriveAzimuth(-90), test.ShouldAlmostEqual, 90)
	test.That(t, DriveAzimuth(180), test.ShouldAlmostEqual, 0)
	test.That(t, DriveAzimuth(-179), test.ShouldAlmostEqual, 1)
}

func TestRotateVector(t *testing.T) {
	x, y := rotateVector(1, 0, 90)
	test.That(t, x, test.ShouldAlmostEqual, 0)
	test.That(t, y, test.ShouldAlmostEqual, 1)

	x, y = rotateVector(0, 1, -90)
	test.That(t, x, test.ShouldAlmostEqual, 1)
	test.That(t, y, test.ShouldAlmostEqual, 0)

	x, y = rotateVector(1, 1, 0)
	test.That(t, x, test.ShouldAlmostEqual, 1)
	test.That(t, y, test.ShouldAlmostEqual, 1)

	// a full turn is the identity
	x, y = rotateVector(0.5, -0.25, 360)
	test.That(t, x, test.ShouldAlmostEqual, 0.5)
	test.That(t, y, test.ShouldAlmostEqual, -0.25)
}

func TestLockPattern(t *testing.T) {
	wheels := squareWheels()
	test.That(t, wheels[0].lockDeg, test.ShouldAlmostEqual, -45)  // fl
	test.That(t, wheels[1].lockDeg, test.ShouldAlmostEqual, 45)   // fr
	test.That(t, wheels[2].lockDeg, test.ShouldAlmostEqual, -135) // bl
	test.That(t, wheels[3].lockDeg, test.ShouldAlmostEqual, 135)  // br
}
