package swerve

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	rdkutils "go.viam.com/rdk/utils"

	swerveutils "swerve-drive/utils"
)

const (
	// fraction of the half image width within which a target counts as centered
	aimToleranceFrac = 0.05
	maxAimPower      = 0.3
)

// Heading returns the offset-corrected gyro yaw in degrees, counterclockwise
// positive, in (-180, 180]. This is the pose heading, not the raw gyro; it
// moves when the pose is reset.
func (sb *swerveBase) Heading(ctx context.Context) (float64, error) {
	orientation, err := sb.gyro.Orientation(ctx, nil)
	if err != nil {
		return 0, err
	}
	yaw := rdkutils.RadToDeg(orientation.EulerAngles().Yaw)

	sb.mu.Lock()
	offset := sb.headingOffset
	sb.mu.Unlock()
	return swerveutils.SteerDelta(yaw, offset), nil
}

// ResetPose zeroes the heading against the current gyro yaw and restores the
// configured start pose. Autonomous routines run this before following paths.
func (sb *swerveBase) ResetPose(ctx context.Context) error {
	orientation, err := sb.gyro.Orientation(ctx, nil)
	if err != nil {
		return err
	}

	sb.mu.Lock()
	sb.headingOffset = swerveutils.WrapTo360(rdkutils.RadToDeg(orientation.EulerAngles().Yaw) - sb.startPose.HeadingDeg)
	sb.pose = sb.startPose
	sb.mu.Unlock()
	return nil
}

// startPoseLoop keeps the cached pose estimate current, preferring the vision
// pose tracker for translation when one is wired in.
func (sb *swerveBase) startPoseLoop() {
	sb.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			if !utils.SelectContextOrWait(sb.cancelCtx, sb.updatePeriod) {
				return
			}
			if err := sb.updatePose(sb.cancelCtx); err != nil {
				sb.logger.Debugw("pose update failed", "error", err)
			}
		}
	}, sb.activeBackgroundWorkers.Done)
}

// updatePose refreshes heading from the gyro and, when a pose tracker is
// configured, translation from its externally estimated pose.
func (sb *swerveBase) updatePose(ctx context.Context) error {
	heading, err := sb.Heading(ctx)
	if err != nil {
		return err
	}
	sb.mu.Lock()
	sb.pose.HeadingDeg = heading
	sb.mu.Unlock()

	if sb.poses == nil {
		return nil
	}
	var bodies []string
	if sb.poseBody != "" {
		bodies = []string{sb.poseBody}
	}
	bodyPoses, err := sb.poses.Poses(ctx, bodies, nil)
	if err != nil {
		return err
	}
	body := sb.poseBody
	if body == "" {
		// no body configured: pick the first by name so multi-body
		// trackers update the pose consistently
		names := make([]string, 0, len(bodyPoses))
		for name := range bodyPoses {
			names = append(names, name)
		}
		sort.Strings(names)
		if len(names) > 0 {
			body = names[0]
		}
	}
	if poseInFrame, ok := bodyPoses[body]; ok {
		point := poseInFrame.Pose().Point()
		sb.mu.Lock()
		sb.pose.XMm = point.X
		sb.pose.YMm = point.Y
		sb.mu.Unlock()
	}
	return nil
}

// Aim issues one proportional rotation step toward the best detection from
// the aiming camera and reports whether the target is centered. Callers run
// it repeatedly until aligned.
func (sb *swerveBase) Aim(ctx context.Context) (bool, error) {
	if sb.vision == nil {
		return false, errors.New("no vision service configured")
	}

	detections, err := sb.vision.DetectionsFromCamera(ctx, sb.cameraName, nil)
	if err != nil {
		return false, err
	}
	if len(detections) == 0 {
		return false, sb.Stop(ctx, nil)
	}
	best := detections[0]
	for _, d := range detections[1:] {
		if d.Score() > best.Score() {
			best = d
		}
	}

	box := best.BoundingBox()
	centerX := float64(box.Min.X+box.Max.X) / 2
	halfWidth := float64(sb.cameraWidthPx) / 2
	// offset in [-1, 1] across the image, positive right of center
	offset := (centerX - halfWidth) / halfWidth
	if math.Abs(offset) <= aimToleranceFrac {
		return true, sb.Stop(ctx, nil)
	}
	// target right of center means rotate clockwise
	return false, sb.drive(ctx, 0, 0, -offset*maxAimPower, false)
}
