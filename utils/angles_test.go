package swerveutils

import (
	"testing"

	"go.viam.com/test"
)

func TestWrapTo360(t *testing.T) {
	test.That(t, WrapTo360(0), test.ShouldAlmostEqual, 0)
	test.That(t, WrapTo360(360), test.ShouldAlmostEqual, 0)
	test.That(t, WrapTo360(365.5), test.ShouldAlmostEqual, 5.5)
	test.That(t, WrapTo360(-90), test.ShouldAlmostEqual, 270)
	test.That(t, WrapTo360(-720), test.ShouldAlmostEqual, 0)
}

func TestSteerDelta(t *testing.T) {
	// no wrap needed
	test.That(t, SteerDelta(90, 45), test.ShouldAlmostEqual, 45)
	test.That(t, SteerDelta(45, 90), test.ShouldAlmostEqual, -45)

	// shortest path across the 0/360 seam
	test.That(t, SteerDelta(10, 350), test.ShouldAlmostEqual, 20)
	test.That(t, SteerDelta(350, 10), test.ShouldAlmostEqual, -20)

	// opposite azimuths resolve to +180, never -180
	test.That(t, SteerDelta(270, 90), test.ShouldAlmostEqual, 180)
	test.That(t, SteerDelta(0, 180), test.ShouldAlmostEqual, 180)

	// inputs outside [0, 360) are wrapped first
	test.That(t, SteerDelta(-10, 10), test.ShouldAlmostEqual, -20)
	test.That(t, SteerDelta(370, 350), test.ShouldAlmostEqual, 20)
	test.That(t, SteerDelta(0, 0), test.ShouldAlmostEqual, 0)
}

func TestSteerPower(t *testing.T) {
	test.That(t, SteerPower(90, 1), test.ShouldAlmostEqual, 0.5)
	test.That(t, SteerPower(-90, 1), test.ShouldAlmostEqual, -0.5)
	test.That(t, SteerPower(0, 1), test.ShouldAlmostEqual, 0)

	// clamped to the configured maximum in both directions
	test.That(t, SteerPower(180, 0.6), test.ShouldAlmostEqual, 0.6)
	test.That(t, SteerPower(-180, 0.6), test.ShouldAlmostEqual, -0.6)
	test.That(t, SteerPower(30, 0.6), test.ShouldAlmostEqual, 30.0/180)
}

func TestAligned(t *testing.T) {
	test.That(t, Aligned(0, 5.4), test.ShouldBeTrue)
	test.That(t, Aligned(5.4, 5.4), test.ShouldBeTrue)
	test.That(t, Aligned(-5.4, 5.4), test.ShouldBeTrue)
	test.That(t, Aligned(5.5, 5.4), test.ShouldBeFalse)
	test.That(t, Aligned(-170, 5.4), test.ShouldBeFalse)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(2, -1, 1), test.ShouldAlmostEqual, 1)
	test.That(t, Clamp(-2, -1, 1), test.ShouldAlmostEqual, -1)
	test.That(t, Clamp(0.25, -1, 1), test.ShouldAlmostEqual, 0.25)
}
