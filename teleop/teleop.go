// Package teleop binds a gamepad to the swerve drivetrain.
package teleop

/*
	This service is the robot's driver-control wiring: left stick to chassis
	translation, right stick to rotation, one button to lock the wheels and
	one to reset the pose estimate. Stick values are shaped (deadband, cube
	curve, translation scaling) before they reach the base, so fine control
	near center stays gentle while full deflection keeps full speed.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/rdk/components/base"
	"go.viam.com/rdk/components/input"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/services/generic"

	swerveutils "swerve-drive/utils"
)

// Model is the driver-control service model of the swerve-drive module.
var Model = swerveutils.SwerveFamily.WithModel("teleop")

var (
	defaultDeadzone         = 0.1
	defaultScaleTranslation = 0.8
	defaultUpdateRateHz     = 50.0
)

// init registers the driver-control service.
func init() {
	resource.RegisterService(
		generic.API,
		Model,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newTeleop,
		},
	)
}

// teleopService forwards shaped controller input to a base.
type teleopService struct {
	resource.Named
	resource.AlwaysRebuild
	logger     logging.Logger
	base       base.Base
	controller input.Controller

	deadzone         float64
	scaleTranslation float64
	scaleRotation    float64
	cube             bool
	invertForward    float64
	invertStrafe     float64
	invertRotation   float64
	lockButton       input.Control
	resetButton      input.Control
	updatePeriod     time.Duration

	mu      sync.Mutex
	forward float64
	strafe  float64
	rotate  float64

	cancelCtx               context.Context
	cancelFunc              context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

func newTeleop(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (resource.Resource, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	driveBase, err := base.FromDependencies(deps, newConf.Base)
	if err != nil {
		return nil, err
	}
	controller, err := input.FromDependencies(deps, newConf.InputController)
	if err != nil {
		return nil, err
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	t := &teleopService{
		Named:      conf.ResourceName().AsNamed(),
		logger:     logger,
		base:       driveBase,
		controller: controller,
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,

		deadzone:         newConf.Deadzone,
		scaleTranslation: newConf.ScaleTranslation,
		scaleRotation:    newConf.ScaleRotation,
		cube:             newConf.CubeInputs == nil || *newConf.CubeInputs,
		invertForward:    signFor(newConf.InvertForward),
		invertStrafe:     signFor(newConf.InvertStrafe),
		invertRotation:   signFor(newConf.InvertRotation),
		lockButton:       input.ButtonWest,
		resetButton:      input.ButtonNorth,
	}
	if t.deadzone == 0 {
		t.deadzone = defaultDeadzone
	}
	if t.scaleTranslation == 0 {
		t.scaleTranslation = defaultScaleTranslation
	}
	if t.scaleRotation == 0 {
		t.scaleRotation = 1
	}
	if newConf.LockButton != "" {
		t.lockButton = input.Control(newConf.LockButton)
	}
	if newConf.ResetButton != "" {
		t.resetButton = input.Control(newConf.ResetButton)
	}
	updateRate := newConf.UpdateRateHz
	if updateRate <= 0 {
		updateRate = defaultUpdateRateHz
	}
	t.updatePeriod = time.Duration(float64(time.Second) / updateRate)

	if err := t.registerCallbacks(ctx); err != nil {
		cancelFunc()
		return nil, err
	}
	t.startRefreshLoop()
	return t, nil
}

// registerCallbacks subscribes to the sticks and buttons this service binds.
func (t *teleopService) registerCallbacks(ctx context.Context) error {
	axisEvents := []input.EventType{input.PositionChangeAbs}
	for _, control := range []input.Control{input.AbsoluteX, input.AbsoluteY, input.AbsoluteRX} {
		if err := t.controller.RegisterControlCallback(ctx, control, axisEvents, t.onAxis, nil); err != nil {
			return errors.Wrapf(err, "failed to bind %s", control)
		}
	}

	press := []input.EventType{input.ButtonPress}
	if err := t.controller.RegisterControlCallback(ctx, t.lockButton, press, t.onLock, nil); err != nil {
		return errors.Wrap(err, "failed to bind wheel lock button")
	}
	if err := t.controller.RegisterControlCallback(ctx, t.resetButton, press, t.onResetPose, nil); err != nil {
		return errors.Wrap(err, "failed to bind pose reset button")
	}
	return nil
}

// signFor maps an invert flag to an axis multiplier.
func signFor(inverted bool) float64 {
	if inverted {
		return -1
	}
	return 1
}

// onAxis caches the stick state and pushes a fresh drive command. Sticks
// report up as negative, so forward is negated.
func (t *teleopService) onAxis(ctx context.Context, ev input.Event) {
	t.mu.Lock()
	switch ev.Control {
	case input.AbsoluteY:
		t.forward = -ev.Value * t.invertForward
	case input.AbsoluteX:
		t.strafe = ev.Value * t.invertStrafe
	case input.AbsoluteRX:
		t.rotate = -ev.Value * t.invertRotation
	}
	forward, strafe, rotate := t.forward, t.strafe, t.rotate
	t.mu.Unlock()

	t.pushDrive(ctx, forward, strafe, rotate)
}

// startRefreshLoop keeps re-issuing the held stick command, so wheels pick up
// drive power as their steering aligns even with no new controller events.
func (t *teleopService) startRefreshLoop() {
	t.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			if !utils.SelectContextOrWait(t.cancelCtx, t.updatePeriod) {
				return
			}
			t.mu.Lock()
			forward, strafe, rotate := t.forward, t.strafe, t.rotate
			t.mu.Unlock()
			if forward == 0 && strafe == 0 && rotate == 0 {
				continue
			}
			t.pushDrive(t.cancelCtx, forward, strafe, rotate)
		}
	}, t.activeBackgroundWorkers.Done)
}

// pushDrive shapes the cached stick state and forwards it to the base.
func (t *teleopService) pushDrive(ctx context.Context, forward, strafe, rotate float64) {
	forward = swerveutils.Deadband(forward, t.deadzone)
	strafe = swerveutils.Deadband(strafe, t.deadzone)
	rotate = swerveutils.Deadband(rotate, t.deadzone)
	if t.cube {
		forward = swerveutils.CubeCurve(forward)
		strafe = swerveutils.CubeCurve(strafe)
	}

	linear := r3.Vector{X: strafe * t.scaleTranslation, Y: forward * t.scaleTranslation}
	angular := r3.Vector{Z: rotate * t.scaleRotation}
	if err := t.base.SetPower(ctx, linear, angular, nil); err != nil {
		t.logger.Errorw("drive command failed", "error", err)
	}
}

func (t *teleopService) onLock(ctx context.Context, ev input.Event) {
	if _, err := t.base.DoCommand(ctx, map[string]interface{}{"command": "lock"}); err != nil {
		t.logger.Errorw("wheel lock failed", "error", err)
	}
}

func (t *teleopService) onResetPose(ctx context.Context, ev input.Event) {
	if _, err := t.base.DoCommand(ctx, map[string]interface{}{"command": "reset_pose"}); err != nil {
		t.logger.Errorw("pose reset failed", "error", err)
	}
}

// DoCommand reports the current shaped drive command for inspection.
func (t *teleopService) DoCommand(ctx context.Context, req map[string]interface{}) (map[string]interface{}, error) {
	cmd, ok := req["command"].(string)
	if !ok {
		return nil, errors.New("missing command string")
	}
	switch cmd {
	case "state":
		t.mu.Lock()
		defer t.mu.Unlock()
		return map[string]interface{}{
			"forward": t.forward,
			"strafe":  t.strafe,
			"rotate":  t.rotate,
		}, nil
	default:
		return nil, errors.Errorf("unknown command %q", cmd)
	}
}

// Close stops the refresh loop and the base, so a reconfigure never leaves
// the robot driving.
func (t *teleopService) Close(ctx context.Context) error {
	t.cancelFunc()
	t.activeBackgroundWorkers.Wait()
	return t.base.Stop(ctx, nil)
}
