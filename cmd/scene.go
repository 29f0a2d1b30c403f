package cmd

import (
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/urfave/cli"
)

// Display information about the built-in demo scene.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := scene.DemoScene()
	if err != nil {
		return err
	}
	if err = sc.Validate(); err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", sc.Stats())
	return nil
}
