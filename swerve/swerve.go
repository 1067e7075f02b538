// Package swerve implements a swerve drivetrain base.
package swerve

/*
	This component wires independently steered wheel modules into the rdk
	base API. Each wheel pairs a drive motor with a steering servo built on
	an absolute encoder. Chassis velocity commands are mixed into per wheel
	azimuth and power, and a wheel only receives drive power once its
	steering is within tolerance of the commanded azimuth. Trajectory
	following, odometry fusion and vision pose estimation stay in the
	framework services this base is wired to.
*/

import swerveutils "swerve-drive/utils"

// Model is the swerve base model of the swerve-drive module.
var Model = swerveutils.SwerveFamily.WithModel("base")
