package swerve

import (
	"testing"

	"go.viam.com/test"
)

func validConfig() *Config {
	return &Config{
		Wheels: []WheelConfig{
			{Name: "fl", DriveMotor: "fl-drive", SteerServo: "fl-steer", XMm: -300, YMm: 300},
			{Name: "fr", DriveMotor: "fr-drive", SteerServo: "fr-steer", XMm: 300, YMm: 300},
			{Name: "bl", DriveMotor: "bl-drive", SteerServo: "bl-steer", XMm: -300, YMm: -300},
			{Name: "br", DriveMotor: "br-drive", SteerServo: "br-steer", XMm: 300, YMm: -300},
		},
		Gyro:                 "imu",
		WidthMm:              600,
		LengthMm:             600,
		WheelCircumferenceMm: 319,
		MaxLinearMmPerSec:    4000,
		MaxAngularDegsPerSec: 360,
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		deps, optional, err := validConfig().Validate("")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, deps, test.ShouldResemble, []string{
			"fl-drive", "fl-steer",
			"fr-drive", "fr-steer",
			"bl-drive", "bl-steer",
			"br-drive", "br-steer",
			"imu",
		})
		test.That(t, optional, test.ShouldBeEmpty)
	})

	t.Run("optional vision wiring", func(t *testing.T) {
		conf := validConfig()
		conf.PoseTracker = "photon"
		conf.VisionService = "targets"
		conf.Camera = "front-cam"
		_, optional, err := conf.Validate("")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, optional, test.ShouldResemble, []string{"photon", "targets", "front-cam"})
	})

	t.Run("too few wheels", func(t *testing.T) {
		conf := validConfig()
		conf.Wheels = conf.Wheels[:1]
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "at least two wheels")
	})

	t.Run("incomplete wheel", func(t *testing.T) {
		conf := validConfig()
		conf.Wheels[2].SteerServo = ""
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "steer_servo")

		conf = validConfig()
		conf.Wheels[1].XMm = 0
		conf.Wheels[1].YMm = 0
		_, _, err = conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "nonzero chassis position")
	})

	t.Run("duplicate wheel name", func(t *testing.T) {
		conf := validConfig()
		conf.Wheels[3].Name = "fl"
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate wheel name")
	})

	t.Run("missing gyro", func(t *testing.T) {
		conf := validConfig()
		conf.Gyro = ""
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "gyro")
	})

	t.Run("missing maxima", func(t *testing.T) {
		conf := validConfig()
		conf.MaxLinearMmPerSec = 0
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "max_linear_mm_per_sec")

		conf = validConfig()
		conf.MaxAngularDegsPerSec = 0
		_, _, err = conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "max_angular_degs_per_sec")
	})

	t.Run("vision without camera", func(t *testing.T) {
		conf := validConfig()
		conf.VisionService = "targets"
		_, _, err := conf.Validate("")
		test.That(t, err.Error(), test.ShouldContainSubstring, "configured together")
	})
}
