// Package steer implements the wheel azimuth servo of a swerve module.
package steer

/*
	This component closes the steering loop of one swerve wheel. The wheel
	azimuth is measured by an absolute encoder mounted above the module and
	driven by the rotation motor. A background loop continuously seeks the
	last commanded azimuth along the shortest arc, with power proportional
	to the remaining error and clamped to a configured maximum.
*/

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/rdk/components/encoder"
	"go.viam.com/rdk/components/motor"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"

	swerveutils "swerve-drive/utils"
)

// Model is the steering servo model of the swerve-drive module.
var Model = swerveutils.SwerveFamily.WithModel("steer")

var (
	defaultMaxSpeed     = 0.6
	defaultToleranceDeg = 5.4 // 0.03 of full steering power
	defaultLoopHz       = 50.0
)

// init registers a steering servo built on a motor and absolute encoder pair.
func init() {
	resource.RegisterComponent(
		servo.API,
		Model,
		resource.Registration[servo.Servo, *Config]{
			Constructor: newSteerServo,
		},
	)
}

func newSteerServo(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (servo.Servo, error) {
	newConf, err := parseConfig(conf)
	if err != nil {
		return nil, err
	}
	if err := validateConfig(newConf); err != nil {
		return nil, err
	}

	m, err := motor.FromDependencies(deps, newConf.Motor)
	if err != nil {
		return nil, err
	}
	enc, err := encoder.FromDependencies(deps, newConf.Encoder)
	if err != nil {
		return nil, err
	}
	props, err := enc.Properties(ctx, nil)
	if err != nil {
		return nil, err
	}
	if !props.AngleDegreesSupported {
		return nil, errors.Errorf("encoder %s cannot report degrees", newConf.Encoder)
	}

	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	s := &steerServo{
		Named:      conf.ResourceName().AsNamed(),
		logger:     logger,
		motor:      m,
		encoder:    enc,
		opMgr:      operation.NewSingleOperationManager(),
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}
	applyConfig(s, newConf)

	if newConf.StartPos != nil {
		s.setTarget(*newConf.StartPos)
	}
	s.startSeekLoop()

	return s, nil
}

// steerServo implements servo.Servo on a motor and absolute encoder pair.
type steerServo struct {
	resource.Named
	resource.AlwaysRebuild
	logger  logging.Logger
	motor   motor.Motor
	encoder encoder.Encoder
	opMgr   *operation.SingleOperationManager

	offsetDeg    float64
	invert       bool
	maxSpeed     float64
	toleranceDeg float64
	loopPeriod   time.Duration
	holdPos      bool

	mu      sync.Mutex
	target  float64
	seeking bool

	cancelCtx               context.Context
	cancelFunc              context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// Move steers the wheel to the given absolute azimuth in degrees. The seek
// runs in the background so the drivetrain can stream azimuth updates every
// cycle; pass extra["block"] = true to wait until the wheel is aligned.
func (s *steerServo) Move(ctx context.Context, angleDeg uint32, extra map[string]interface{}) error {
	s.setTarget(float64(angleDeg))
	if block, ok := extra["block"].(bool); !ok || !block {
		return nil
	}

	ctx, done := s.opMgr.New(ctx)
	defer done()
	return s.waitForAlignment(ctx)
}

// Position returns the current wheel azimuth in degrees.
func (s *steerServo) Position(ctx context.Context, extra map[string]interface{}) (uint32, error) {
	deg, err := s.position(ctx)
	if err != nil {
		return 0, err
	}
	return uint32(math.Round(deg)) % 360, nil
}

// Stop halts the seek and the rotation motor.
func (s *steerServo) Stop(ctx context.Context, extra map[string]interface{}) error {
	_, done := s.opMgr.New(ctx)
	defer done()

	s.mu.Lock()
	s.seeking = false
	s.mu.Unlock()
	return s.motor.Stop(ctx, nil)
}

// IsMoving reports whether the servo is still seeking an unaligned target.
func (s *steerServo) IsMoving(ctx context.Context) (bool, error) {
	s.mu.Lock()
	seeking := s.seeking
	target := s.target
	s.mu.Unlock()
	if !seeking {
		return false, nil
	}
	current, err := s.position(ctx)
	if err != nil {
		return false, err
	}
	return !swerveutils.Aligned(swerveutils.SteerDelta(target, current), s.toleranceDeg), nil
}

// Close stops the seek loop and releases the motor.
func (s *steerServo) Close(ctx context.Context) error {
	s.cancelFunc()
	s.activeBackgroundWorkers.Wait()
	return s.motor.Stop(ctx, nil)
}

// Target returns the last commanded azimuth in degrees.
func (s *steerServo) Target() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *steerServo) setTarget(deg float64) {
	s.mu.Lock()
	s.target = swerveutils.WrapTo360(deg)
	s.seeking = true
	s.mu.Unlock()
}

// position returns the offset-corrected wheel azimuth in [0, 360).
func (s *steerServo) position(ctx context.Context) (float64, error) {
	deg, _, err := s.encoder.Position(ctx, encoder.PositionTypeDegrees, nil)
	if err != nil {
		return 0, err
	}
	return swerveutils.WrapTo360(deg - s.offsetDeg), nil
}

// startSeekLoop runs the steering loop until the servo closes.
func (s *steerServo) startSeekLoop() {
	s.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			if !utils.SelectContextOrWait(s.cancelCtx, s.loopPeriod) {
				return
			}
			if err := s.seekOnce(s.cancelCtx); err != nil {
				s.logger.Errorw("steering seek failed", "error", err)
			}
		}
	}, s.activeBackgroundWorkers.Done)
}

// seekOnce applies one proportional correction toward the current target.
func (s *steerServo) seekOnce(ctx context.Context) error {
	s.mu.Lock()
	seeking := s.seeking
	target := s.target
	s.mu.Unlock()
	if !seeking {
		return nil
	}

	current, err := s.position(ctx)
	if err != nil {
		return err
	}
	delta := swerveutils.SteerDelta(target, current)
	if swerveutils.Aligned(delta, s.toleranceDeg) {
		if !s.holdPos {
			s.mu.Lock()
			s.seeking = false
			s.mu.Unlock()
		}
		return s.motor.Stop(ctx, nil)
	}

	power := swerveutils.SteerPower(delta, s.maxSpeed)
	if s.invert {
		power = -power
	}
	return s.motor.SetPower(ctx, power, nil)
}

// waitForAlignment blocks until the wheel reaches the current target.
func (s *steerServo) waitForAlignment(ctx context.Context) error {
	for {
		if !utils.SelectContextOrWait(ctx, s.loopPeriod) {
			return ctx.Err()
		}
		current, err := s.position(ctx)
		if err != nil {
			return err
		}
		if swerveutils.Aligned(swerveutils.SteerDelta(s.Target(), current), s.toleranceDeg) {
			return nil
		}
	}
}
