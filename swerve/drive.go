package swerve

import (
	"context"
	"math"

	"go.uber.org/multierr"

	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/components/servo"
	rdkutils "go.viam.com/rdk/utils"

	swerveutils "swerve-drive/utils"
)

// Wheels commanded below this power are parked rather than re-steered.
const idlePowerThreshold = 0.01

// wheel is one corner of the drivetrain.
type wheel struct {
	name  string
	drive motor.Motor
	steer servo.Servo

	// chassis position normalized by the farthest wheel radius
	xNorm, yNorm float64
	// azimuth pointing the wheel along its corner, for the X lock
	lockDeg float64
}

// wheelState is a commanded azimuth and normalized drive power for one wheel.
type wheelState struct {
	azimuthDeg float64 // (-180, 180], 0 forward, positive toward the right
	power      float64
}

// drive mixes a normalized chassis velocity into wheel commands and applies
// them. vx is rightward, vy forward, omega counterclockwise.
func (sb *swerveBase) drive(ctx context.Context, vx, vy, omega float64, fieldRelative bool) error {
	if fieldRelative {
		heading, err := sb.Heading(ctx)
		if err != nil {
			return err
		}
		vx, vy = rotateVector(vx, vy, -heading)
	}
	return sb.applyWheelStates(ctx, mixWheelStates(sb.wheels, vx, vy, omega))
}

// mixWheelStates sums the chassis translation with each wheel's rotation
// tangent and rescales so no wheel exceeds full power.
func mixWheelStates(wheels []*wheel, vx, vy, omega float64) []wheelState {
	states := make([]wheelState, len(wheels))
	maxPower := 1.0
	for i, w := range wheels {
		wx := vx - omega*w.yNorm
		wy := vy + omega*w.xNorm
		power := math.Hypot(wx, wy)
		azimuth := 0.0
		if power > 0 {
			azimuth = rdkutils.RadToDeg(math.Atan2(wx, wy))
		}
		states[i] = wheelState{azimuthDeg: azimuth, power: power}
		if power > maxPower {
			maxPower = power
		}
	}
	for i := range states {
		states[i].power /= maxPower
	}
	return states
}

// applyWheelStates steers every wheel toward its commanded azimuth and gates
// drive power until the steering is within tolerance.
func (sb *swerveBase) applyWheelStates(ctx context.Context, states []wheelState) error {
	var allErrs error
	for i, w := range sb.wheels {
		state := states[i]
		if math.Abs(state.power) < idlePowerThreshold {
			allErrs = multierr.Combine(allErrs, w.drive.Stop(ctx, nil))
			continue
		}

		cmd := DriveAzimuth(state.azimuthDeg)
		if err := w.steer.Move(ctx, uint32(math.Round(cmd))%360, nil); err != nil {
			allErrs = multierr.Combine(allErrs, err)
			continue
		}
		aligned, err := sb.wheelAligned(ctx, w, cmd)
		if err != nil {
			allErrs = multierr.Combine(allErrs, err)
			continue
		}
		if !aligned {
			allErrs = multierr.Combine(allErrs, w.drive.Stop(ctx, nil))
			continue
		}
		power := swerveutils.Clamp(state.power, -sb.maxDrivePower, sb.maxDrivePower)
		allErrs = multierr.Combine(allErrs, w.drive.SetPower(ctx, power, nil))
	}
	return allErrs
}

// wheelAligned reports whether a wheel's steering is close enough to the
// commanded azimuth to safely apply drive power.
func (sb *swerveBase) wheelAligned(ctx context.Context, w *wheel, cmdDeg float64) (bool, error) {
	pos, err := w.steer.Position(ctx, nil)
	if err != nil {
		return false, err
	}
	return swerveutils.Aligned(swerveutils.SteerDelta(cmdDeg, float64(pos)), sb.alignTolerance), nil
}

// Lock steers the wheels into an X pattern and stops the drive motors, so
// the robot resists being pushed.
func (sb *swerveBase) Lock(ctx context.Context) error {
	var allErrs error
	for _, w := range sb.wheels {
		allErrs = multierr.Combine(allErrs, w.drive.Stop(ctx, nil))
		cmd := DriveAzimuth(w.lockDeg)
		allErrs = multierr.Combine(allErrs, w.steer.Move(ctx, uint32(math.Round(cmd))%360, nil))
	}
	return allErrs
}

// DriveAzimuth converts a signed wheel azimuth in (-180, 180] into the
// [0, 360) frame the steering servos are commanded in. The +180 shift moves
// the wrap point away from straight ahead, so small corrections around the
// forward azimuth never cross the seam; steering offsets are calibrated
// against this shifted frame.
func DriveAzimuth(azimuthDeg float64) float64 {
	return swerveutils.WrapTo360(azimuthDeg + 180)
}

// rotateVector rotates (x, y) counterclockwise by deg. With x rightward and
// y forward this maps field-frame sticks into the robot frame when given the
// negated heading.
func rotateVector(x, y, deg float64) (float64, float64) {
	sin, cos := math.Sincos(rdkutils.DegToRad(deg))
	return x*cos - y*sin, x*sin + y*cos
}
