package main

import (
	"context"

	"go.viam.com/rdk/components/base"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/services/generic"
	"go.viam.com/utils"

	"swerve-drive/steer"
	"swerve-drive/swerve"
	"swerve-drive/teleop"
)

func main() {
	utils.ContextualMain(mainWithArgs, module.NewLoggerFromArgs("swerve-drive"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	mod, err := module.NewModuleFromArgs(ctx)
	if err != nil {
		return err
	}

	if err := mod.AddModelFromRegistry(ctx, servo.API, steer.Model); err != nil {
		return err
	}
	if err := mod.AddModelFromRegistry(ctx, base.API, swerve.Model); err != nil {
		return err
	}
	if err := mod.AddModelFromRegistry(ctx, generic.API, teleop.Model); err != nil {
		return err
	}

	err = mod.Start(ctx)
	defer mod.Close(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
