package steer

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/rdk/resource"
)

// parseConfig parses the provided configuration into a Config.
func parseConfig(conf resource.Config) (*Config, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	return newConf, nil
}

// validateConfig validates the provided Config.
func validateConfig(newConf *Config) error {
	if newConf.Motor == "" {
		return errors.New("need motor for steering servo")
	}
	if newConf.Encoder == "" {
		return errors.New("need absolute encoder for steering servo")
	}
	return nil
}

// applyConfig sets steerServo fields from the configuration, filling defaults.
func applyConfig(s *steerServo, newConf *Config) {
	s.offsetDeg = newConf.AngleOffsetDeg
	s.invert = newConf.InvertMotor

	s.maxSpeed = newConf.MaxSpeed
	if s.maxSpeed == 0 {
		s.maxSpeed = defaultMaxSpeed
	}
	s.toleranceDeg = newConf.ToleranceDeg
	if s.toleranceDeg == 0 {
		s.toleranceDeg = defaultToleranceDeg
	}
	loopHz := newConf.LoopHz
	if loopHz <= 0 {
		loopHz = defaultLoopHz
	}
	s.loopPeriod = time.Duration(float64(time.Second) / loopHz)

	// Holding keeps the loop correcting after the target is reached so
	// bumps are rejected; releasing lets the motor rest once aligned.
	s.holdPos = newConf.HoldPos == nil || *newConf.HoldPos
}
