// Package teleop contains the driver-control config and its validation.
package teleop

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// Config binds a gamepad to a drivetrain base.
type Config struct {
	Base            string `json:"base"`
	InputController string `json:"input_controller"`

	Deadzone         float64 `json:"deadzone,omitempty"`          // defaults to 0.1
	ScaleTranslation float64 `json:"scale_translation,omitempty"` // defaults to 0.8
	ScaleRotation    float64 `json:"scale_rotation,omitempty"`    // defaults to 1
	CubeInputs       *bool   `json:"cube_inputs,omitempty"`       // defaults to true

	InvertForward  bool `json:"invert_forward,omitempty"`
	InvertStrafe   bool `json:"invert_strafe,omitempty"`
	InvertRotation bool `json:"invert_rotation,omitempty"`

	LockButton  string `json:"lock_button,omitempty"`  // defaults to ButtonWest
	ResetButton string `json:"reset_button,omitempty"` // defaults to ButtonNorth

	UpdateRateHz float64 `json:"update_rate_hz,omitempty"` // drive command refresh rate. Defaults to 50
}

// Validate ensures all parts of the config are valid and returns the bound
// resources.
func (config *Config) Validate(path string) ([]string, []string, error) {
	if config.Base == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "base")
	}
	if config.InputController == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "input_controller")
	}
	if config.Deadzone < 0 || config.Deadzone >= 1 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("deadzone must be in [0, 1)"))
	}
	return []string{config.Base, config.InputController}, nil, nil
}
