package cmd

import (
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/renderer"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/accel"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/urfave/cli"
)

// Render the demo scene progressively and save the result.
func RenderFrames(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}
	frames := ctx.Int("frames")
	if frames <= 0 {
		return fmt.Errorf("invalid frame count %d", frames)
	}

	sc, err := scene.DemoScene()
	if err != nil {
		return err
	}

	dev := device.New("host", device.WithWorkers(opts.Workers))
	r, err := renderer.New(dev, sc, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	display := renderer.NewTextureDisplay()
	if err = r.AttachDisplay(display); err != nil {
		return err
	}

	logger.Noticef("rendering %d frame(s) at %dx%d", frames, opts.FrameW, opts.FrameH)
	start := time.Now()
	for i := 0; i < frames; i++ {
		presented, err := r.Render()
		if err != nil {
			if !fault.Classify(err).Recoverable() {
				return err
			}
			logger.Warningf("skipping frame %d: %v", i, err)
			continue
		}
		if presented {
			logger.Infof("frame %d presented (iteration %d)", i, r.Iteration())
		}
	}
	logger.Noticef("rendered %d samples in %d ms (%d display updates)", r.Iteration(), time.Since(start).Nanoseconds()/1e6, display.Presents())

	// Display stats
	logger.Noticef("frame statistics\n%s", r.Stats().Table())

	out := ctx.String("out")
	if err = r.ScreenshotScaled(out, ctx.Int("out-width"), ctx.Int("out-height")); err != nil {
		return err
	}

	return nil
}

func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.SampleCap = uint32(ctx.Int("spp"))
	opts.PresentEveryFrame = ctx.Bool("present-every-frame")
	opts.MinPathLength = uint32(ctx.Int("min-path-length"))
	opts.MaxPathLength = uint32(ctx.Int("max-path-length"))
	opts.SceneEpsilonFactor = float32(ctx.Float64("scene-epsilon"))
	opts.Workers = ctx.Int("workers")

	builder, err := accel.ParseBuilder(ctx.String("builder"))
	if err != nil {
		return opts, err
	}
	opts.Builder = builder

	return opts, opts.Validate()
}
