package main

import (
	"os"

	"github.com/surajsubudhi10/PistonOptix/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pistonoptix"
	app.Usage = "progressive path tracer"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log level (debug, info, notice, warning or error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "list-devices",
			Usage: "list available render devices",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of launch workers (0 uses one per CPU)",
				},
			},
			Action: cmd.ListDevices,
		},
		{
			Name:   "scene-info",
			Usage:  "display statistics for the built-in demo scene",
			Action: cmd.ShowSceneInfo,
		},
		{
			Name:  "render",
			Usage: "render the built-in demo scene",
			Description: `
Progressively render the demo scene without a window. Each frame adds one
sample per pixel to the accumulated image until the frame count or the
sample cap is reached. The result is saved as a png, webp or tga image
depending on the output file extension.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 100,
					Usage: "number of frames to render",
				},
				cli.IntFlag{
					Name:  "spp",
					Value: 0,
					Usage: "sample cap (0 accumulates until the last frame)",
				},
				cli.IntFlag{
					Name:  "min-path-length",
					Value: 2,
					Usage: "path segments before russian roulette kicks in",
				},
				cli.IntFlag{
					Name:  "max-path-length",
					Value: 5,
					Usage: "maximum path segments",
				},
				cli.Float64Flag{
					Name:  "scene-epsilon",
					Value: 500,
					Usage: "self intersection offset in units of 1e-7",
				},
				cli.StringFlag{
					Name:  "builder",
					Value: "Trbvh",
					Usage: "acceleration structure builder (Trbvh, Sbvh, Bvh or NoAccel)",
				},
				cli.BoolFlag{
					Name:  "present-every-frame",
					Usage: "present every frame instead of once per second",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of launch workers (0 uses one per CPU)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
				cli.IntFlag{
					Name:  "out-width",
					Usage: "scale the saved image to this width",
				},
				cli.IntFlag{
					Name:  "out-height",
					Usage: "scale the saved image to this height",
				},
			},
			Action: cmd.RenderFrames,
		},
	}

	app.Run(os.Args)
}
