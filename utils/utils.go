// Package swerveutils contains helpers shared by the swerve-drive components.
package swerveutils

import "go.viam.com/rdk/resource"

// SwerveFamily is the model family for the swerve-drive module.
var SwerveFamily = resource.NewModelFamily("frc", "swerve-drive")
