// Package steer contains the steering servo config and its validation.
package steer

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// Config is the config for a swerve steering servo.
type Config struct {
	Motor   string `json:"motor"`
	Encoder string `json:"encoder"`

	AngleOffsetDeg float64  `json:"angle_offset_deg,omitempty"`       // absolute encoder reading at the zero azimuth
	InvertMotor    bool     `json:"invert_motor,omitempty"`           // flips the rotation motor direction
	MaxSpeed       float64  `json:"max_speed,omitempty"`              // normalized power clamp. Defaults to 0.6
	ToleranceDeg   float64  `json:"tolerance_deg,omitempty"`          // aligned when within this error. Defaults to 5.4
	LoopHz         float64  `json:"loop_hz,omitempty"`                // seek loop rate. Defaults to 50
	StartPos       *float64 `json:"starting_position_degs,omitempty"` // azimuth sought on startup
	HoldPos        *bool    `json:"hold_position,omitempty"`          // defaults true. False releases the motor once aligned
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) ([]string, []string, error) {
	var deps []string
	if config.Motor == "" {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("need motor for steering servo"))
	}
	if config.Encoder == "" {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("need absolute encoder for steering servo"))
	}
	if config.MaxSpeed < 0 || config.MaxSpeed > 1 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("max_speed must be in [0, 1]"))
	}
	deps = append(deps, config.Motor, config.Encoder)
	return deps, nil, nil
}
