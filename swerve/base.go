package swerve

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/rdk/components/base"
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/components/movementsensor"
	"go.viam.com/rdk/components/posetracker"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/vision"
	"go.viam.com/rdk/spatialmath"
	rdkutils "go.viam.com/rdk/utils"

	swerveutils "swerve-drive/utils"
)

var (
	defaultCameraWidthPx     = 640
	defaultAlignToleranceDeg = 5.4
	defaultUpdateRateHz      = 50.0

	// Field center, where autonomous routines expect the robot after a reset.
	defaultStartPose = PoseConfig{XMm: 8774, YMm: 4026, HeadingDeg: 0}
)

// init registers the swerve drivetrain base.
func init() {
	resource.RegisterComponent(
		base.API,
		Model,
		resource.Registration[base.Base, *Config]{
			Constructor: newSwerveBase,
		},
	)
}

// swerveBase implements base.Base over independently steered wheel modules.
type swerveBase struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger

	wheels []*wheel
	gyro   movementsensor.MovementSensor
	poses  posetracker.PoseTracker
	vision vision.Service

	poseBody      string
	cameraName    string
	cameraWidthPx int

	geometries     []spatialmath.Geometry
	props          base.Properties
	maxLinear      float64 // mm/s
	maxAngular     float64 // deg/s
	maxDrivePower  float64
	alignTolerance float64
	fieldOriented  bool
	updatePeriod   time.Duration
	startPose      PoseConfig

	opMgr *operation.SingleOperationManager

	mu            sync.Mutex
	headingOffset float64
	pose          PoseConfig

	cancelCtx               context.Context
	cancelFunc              context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

func newSwerveBase(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (base.Base, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	sb := &swerveBase{
		Named:      conf.ResourceName().AsNamed(),
		logger:     logger,
		opMgr:      operation.NewSingleOperationManager(),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}

	if err := sb.wireDependencies(deps, newConf); err != nil {
		cancelFunc()
		return nil, err
	}
	if err := sb.applyConfig(conf.Name, newConf); err != nil {
		cancelFunc()
		return nil, err
	}

	sb.startPoseLoop()
	return sb, nil
}

// wireDependencies looks up every configured resource handle.
func (sb *swerveBase) wireDependencies(deps resource.Dependencies, newConf *Config) error {
	maxRadius := 0.0
	for _, w := range newConf.Wheels {
		if r := math.Hypot(w.XMm, w.YMm); r > maxRadius {
			maxRadius = r
		}
	}

	sb.wheels = make([]*wheel, 0, len(newConf.Wheels))
	for _, wc := range newConf.Wheels {
		driveMotor, err := motor.FromDependencies(deps, wc.DriveMotor)
		if err != nil {
			return err
		}
		steerServo, err := servo.FromProvider(deps, wc.SteerServo)
		if err != nil {
			return err
		}
		sb.wheels = append(sb.wheels, &wheel{
			name:    wc.Name,
			drive:   driveMotor,
			steer:   steerServo,
			xNorm:   wc.XMm / maxRadius,
			yNorm:   wc.YMm / maxRadius,
			lockDeg: rdkutils.RadToDeg(math.Atan2(wc.XMm, wc.YMm)),
		})
	}

	gyro, err := movementsensor.FromDependencies(deps, newConf.Gyro)
	if err != nil {
		return err
	}
	sb.gyro = gyro

	if newConf.PoseTracker != "" {
		poses, err := posetracker.FromDependencies(deps, newConf.PoseTracker)
		if err != nil {
			return err
		}
		sb.poses = poses
	}
	if newConf.VisionService != "" {
		visionSvc, err := vision.FromDependencies(deps, newConf.VisionService)
		if err != nil {
			return err
		}
		sb.vision = visionSvc
		sb.cameraName = newConf.Camera
	}
	return nil
}

// applyConfig sets tuning values from the configuration, filling defaults.
func (sb *swerveBase) applyConfig(name string, newConf *Config) error {
	sb.poseBody = newConf.PoseBody
	sb.cameraWidthPx = newConf.CameraWidthPx
	if sb.cameraWidthPx == 0 {
		sb.cameraWidthPx = defaultCameraWidthPx
	}

	sb.maxLinear = newConf.MaxLinearMmPerSec
	sb.maxAngular = newConf.MaxAngularDegsPerSec
	sb.maxDrivePower = newConf.MaxDrivePower
	if sb.maxDrivePower <= 0 || sb.maxDrivePower > 1 {
		sb.maxDrivePower = 1
	}
	sb.alignTolerance = newConf.AlignToleranceDeg
	if sb.alignTolerance == 0 {
		sb.alignTolerance = defaultAlignToleranceDeg
	}
	sb.fieldOriented = newConf.FieldOriented

	updateRate := newConf.UpdateRateHz
	if updateRate <= 0 {
		updateRate = defaultUpdateRateHz
	}
	sb.updatePeriod = time.Duration(float64(time.Second) / updateRate)

	sb.startPose = defaultStartPose
	if newConf.StartPose != nil {
		sb.startPose = *newConf.StartPose
	}
	sb.pose = sb.startPose

	sb.props = base.Properties{
		WidthMeters:              newConf.WidthMm / 1000,
		WheelCircumferenceMeters: newConf.WheelCircumferenceMm / 1000,
	}
	if newConf.WidthMm > 0 && newConf.LengthMm > 0 {
		height := newConf.WheelCircumferenceMm / math.Pi
		if height <= 0 {
			height = 100
		}
		box, err := spatialmath.NewBox(
			spatialmath.NewZeroPose(),
			r3.Vector{X: newConf.WidthMm, Y: newConf.LengthMm, Z: height},
			name,
		)
		if err != nil {
			return err
		}
		sb.geometries = []spatialmath.Geometry{box}
	}
	return nil
}

// SetPower drives with normalized chassis power. linear.Y is forward,
// linear.X rightward, angular.Z counterclockwise.
func (sb *swerveBase) SetPower(ctx context.Context, linear, angular r3.Vector, extra map[string]interface{}) error {
	sb.opMgr.CancelRunning(ctx)
	return sb.drive(ctx, linear.X, linear.Y, angular.Z, sb.fieldOriented)
}

// SetVelocity drives at the given velocity, scaled against the configured
// maxima. linear is mm/s, angular deg/s.
func (sb *swerveBase) SetVelocity(ctx context.Context, linear, angular r3.Vector, extra map[string]interface{}) error {
	sb.opMgr.CancelRunning(ctx)
	vx := swerveutils.Clamp(linear.X/sb.maxLinear, -1, 1)
	vy := swerveutils.Clamp(linear.Y/sb.maxLinear, -1, 1)
	omega := swerveutils.Clamp(angular.Z/sb.maxAngular, -1, 1)
	return sb.drive(ctx, vx, vy, omega, sb.fieldOriented)
}

// MoveStraight drives forward (or back) the given distance open loop against
// the configured maximum speed. Wheels pick up power as they align.
func (sb *swerveBase) MoveStraight(ctx context.Context, distanceMm int, mmPerSec float64, extra map[string]interface{}) error {
	ctx, done := sb.opMgr.New(ctx)
	defer done()

	if distanceMm == 0 || mmPerSec == 0 {
		return sb.Stop(ctx, nil)
	}
	power := swerveutils.Clamp(math.Abs(mmPerSec)/sb.maxLinear, 0, 1)
	if distanceMm < 0 {
		power = -power
	}
	duration := time.Duration(float64(time.Second) * math.Abs(float64(distanceMm)) / math.Abs(mmPerSec))

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if err := sb.drive(ctx, 0, power, 0, false); err != nil {
			return multierr.Combine(err, sb.Stop(ctx, nil))
		}
		if !utils.SelectContextOrWait(ctx, sb.updatePeriod) {
			return multierr.Combine(ctx.Err(), sb.Stop(ctx, nil))
		}
	}
	return sb.Stop(ctx, nil)
}

// Spin rotates in place by angleDeg, counterclockwise positive, bounded by
// gyro heading progress.
func (sb *swerveBase) Spin(ctx context.Context, angleDeg, degsPerSec float64, extra map[string]interface{}) error {
	ctx, done := sb.opMgr.New(ctx)
	defer done()

	if angleDeg == 0 || degsPerSec == 0 {
		return sb.Stop(ctx, nil)
	}
	power := swerveutils.Clamp(math.Abs(degsPerSec)/sb.maxAngular, 0, 1)
	dir := math.Copysign(1, angleDeg)

	prev, err := sb.Heading(ctx)
	if err != nil {
		return err
	}
	traveled := 0.0
	// allow double the nominal time before giving up on the gyro
	deadline := time.Now().Add(2*time.Duration(float64(time.Second)*math.Abs(angleDeg)/math.Abs(degsPerSec)) + time.Second)

	for math.Abs(traveled) < math.Abs(angleDeg) {
		if time.Now().After(deadline) {
			return multierr.Combine(errors.New("spin timed out before reaching the target angle"), sb.Stop(ctx, nil))
		}
		if err := sb.drive(ctx, 0, 0, dir*power, false); err != nil {
			return multierr.Combine(err, sb.Stop(ctx, nil))
		}
		if !utils.SelectContextOrWait(ctx, sb.updatePeriod) {
			return multierr.Combine(ctx.Err(), sb.Stop(ctx, nil))
		}
		heading, err := sb.Heading(ctx)
		if err != nil {
			return multierr.Combine(err, sb.Stop(ctx, nil))
		}
		traveled += swerveutils.SteerDelta(heading, prev)
		prev = heading
	}
	return sb.Stop(ctx, nil)
}

// Stop halts every drive motor and steering seek.
func (sb *swerveBase) Stop(ctx context.Context, extra map[string]interface{}) error {
	var allErrs error
	for _, w := range sb.wheels {
		allErrs = multierr.Combine(allErrs, w.drive.Stop(ctx, nil), w.steer.Stop(ctx, nil))
	}
	return allErrs
}

// IsMoving reports whether an operation is running or any wheel is powered.
func (sb *swerveBase) IsMoving(ctx context.Context) (bool, error) {
	if sb.opMgr.OpRunning() {
		return true, nil
	}
	for _, w := range sb.wheels {
		moving, err := w.drive.IsMoving(ctx)
		if err != nil {
			return false, err
		}
		if moving {
			return true, nil
		}
	}
	return false, nil
}

// Properties returns the configured drivetrain dimensions.
func (sb *swerveBase) Properties(ctx context.Context, extra map[string]interface{}) (base.Properties, error) {
	return sb.props, nil
}

// Geometries returns the chassis collision geometry.
func (sb *swerveBase) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return sb.geometries, nil
}

// DoCommand exposes drivetrain actions that are not part of the base API.
func (sb *swerveBase) DoCommand(ctx context.Context, req map[string]interface{}) (map[string]interface{}, error) {
	cmd, ok := req["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch cmd {
	case "lock":
		if err := sb.Lock(ctx); err != nil {
			return nil, err
		}
		return map[string]interface{}{"locked": true}, nil
	case "reset_pose":
		if err := sb.ResetPose(ctx); err != nil {
			return nil, err
		}
		return map[string]interface{}{"reset": true}, nil
	case "pose":
		sb.mu.Lock()
		pose := sb.pose
		sb.mu.Unlock()
		return map[string]interface{}{
			"x_mm":        pose.XMm,
			"y_mm":        pose.YMm,
			"heading_deg": pose.HeadingDeg,
		}, nil
	case "aim":
		aligned, err := sb.Aim(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"aligned": aligned}, nil
	default:
		return nil, errors.Errorf("unknown command %q", cmd)
	}
}

// Close shuts down the pose loop and stops the drivetrain.
func (sb *swerveBase) Close(ctx context.Context) error {
	sb.cancelFunc()
	sb.activeBackgroundWorkers.Wait()
	return sb.Stop(ctx, nil)
}
