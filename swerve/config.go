package swerve

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"
)

// WheelConfig describes one swerve module corner.
type WheelConfig struct {
	Name       string  `json:"name"`
	DriveMotor string  `json:"drive_motor"`
	SteerServo string  `json:"steer_servo"`
	XMm        float64 `json:"x_mm"` // right of chassis center
	YMm        float64 `json:"y_mm"` // forward of chassis center
}

// Validate ensures a wheel entry is complete.
func (conf *WheelConfig) Validate(path string) error {
	if conf.Name == "" {
		return resource.NewConfigValidationFieldRequiredError(path, "name")
	}
	if conf.DriveMotor == "" {
		return resource.NewConfigValidationFieldRequiredError(path, "drive_motor")
	}
	if conf.SteerServo == "" {
		return resource.NewConfigValidationFieldRequiredError(path, "steer_servo")
	}
	if conf.XMm == 0 && conf.YMm == 0 {
		return resource.NewConfigValidationError(path,
			errors.Errorf("wheel %s needs a nonzero chassis position", conf.Name))
	}
	return nil
}

// PoseConfig is a field pose: x forward along the field, y to the left wall,
// heading counterclockwise from the field x axis.
type PoseConfig struct {
	XMm        float64 `json:"x_mm"`
	YMm        float64 `json:"y_mm"`
	HeadingDeg float64 `json:"heading_deg"`
}

// A Config describes a swerve drivetrain and the resources it is wired to.
type Config struct {
	Wheels []WheelConfig `json:"wheels"`
	Gyro   string        `json:"gyro"`

	// Optional vision wiring. The pose tracker supplies externally estimated
	// field translation; the vision service plus camera drive target aiming.
	PoseTracker   string `json:"pose_tracker,omitempty"`
	PoseBody      string `json:"pose_body,omitempty"`
	VisionService string `json:"vision_service,omitempty"`
	Camera        string `json:"camera,omitempty"`
	CameraWidthPx int    `json:"camera_width_px,omitempty"` // defaults to 640

	WidthMm              float64 `json:"width_mm"`
	LengthMm             float64 `json:"length_mm"`
	WheelCircumferenceMm float64 `json:"wheel_circumference_mm"`

	MaxLinearMmPerSec    float64     `json:"max_linear_mm_per_sec"`
	MaxAngularDegsPerSec float64     `json:"max_angular_degs_per_sec"`
	MaxDrivePower        float64     `json:"max_drive_power,omitempty"`     // defaults to 1
	AlignToleranceDeg    float64     `json:"align_tolerance_deg,omitempty"` // defaults to 5.4
	FieldOriented        bool        `json:"field_oriented,omitempty"`
	UpdateRateHz         float64     `json:"update_rate_hz,omitempty"` // defaults to 50
	StartPose            *PoseConfig `json:"start_pose,omitempty"`
}

// Validate ensures all parts of the config are valid and returns the
// resources the drivetrain depends on.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	var deps, optional []string

	if len(conf.Wheels) < 2 {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("need at least two wheels"))
	}
	seen := map[string]bool{}
	for idx, w := range conf.Wheels {
		if err := w.Validate(fmt.Sprintf("%s.%s.%d", path, "wheels", idx)); err != nil {
			return nil, nil, err
		}
		if seen[w.Name] {
			return nil, nil, resource.NewConfigValidationError(path,
				errors.Errorf("duplicate wheel name %s", w.Name))
		}
		seen[w.Name] = true
		deps = append(deps, w.DriveMotor, w.SteerServo)
	}

	if conf.Gyro == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "gyro")
	}
	deps = append(deps, conf.Gyro)

	if conf.MaxLinearMmPerSec <= 0 {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "max_linear_mm_per_sec")
	}
	if conf.MaxAngularDegsPerSec <= 0 {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "max_angular_degs_per_sec")
	}

	if (conf.VisionService == "") != (conf.Camera == "") {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("vision_service and camera must be configured together"))
	}
	if conf.PoseTracker != "" {
		optional = append(optional, conf.PoseTracker)
	}
	if conf.VisionService != "" {
		optional = append(optional, conf.VisionService, conf.Camera)
	}
	return deps, optional, nil
}
