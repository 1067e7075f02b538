package swerveutils

import (
	"testing"

	"go.viam.com/test"
)

func TestDeadband(t *testing.T) {
	// inside the band
	test.That(t, Deadband(0.05, 0.1), test.ShouldAlmostEqual, 0)
	test.That(t, Deadband(-0.099, 0.1), test.ShouldAlmostEqual, 0)

	// continuous at the band edge, full scale at full deflection
	test.That(t, Deadband(0.1, 0.1), test.ShouldAlmostEqual, 0)
	test.That(t, Deadband(1, 0.1), test.ShouldAlmostEqual, 1)
	test.That(t, Deadband(-1, 0.1), test.ShouldAlmostEqual, -1)
	test.That(t, Deadband(0.55, 0.1), test.ShouldAlmostEqual, 0.5)
	test.That(t, Deadband(-0.55, 0.1), test.ShouldAlmostEqual, -0.5)

	// disabled band passes values through
	test.That(t, Deadband(0.05, 0), test.ShouldAlmostEqual, 0.05)
}

func TestCubeCurve(t *testing.T) {
	test.That(t, CubeCurve(1), test.ShouldAlmostEqual, 1)
	test.That(t, CubeCurve(-1), test.ShouldAlmostEqual, -1)
	test.That(t, CubeCurve(0.5), test.ShouldAlmostEqual, 0.125)
	test.That(t, CubeCurve(-0.5), test.ShouldAlmostEqual, -0.125)
	test.That(t, CubeCurve(0), test.ShouldAlmostEqual, 0)
}
