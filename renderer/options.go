package renderer

import (
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/tracer/accel"
	"github.com/surajsubudhi10/PistonOptix/types"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of launches before accumulation stops. 0 renders forever.
	SampleCap uint32

	// Present every launch instead of once per PresentInterval.
	PresentEveryFrame bool
	PresentInterval   time.Duration

	// Path segments before russian roulette kicks in and the hard limit.
	MinPathLength uint32
	MaxPathLength uint32

	// Ray offset used to avoid self intersections, in units of 1e-7.
	SceneEpsilonFactor float32

	// Acceleration structure builder for all geometry groups.
	Builder accel.Builder

	// Register the output buffer with the display for interop.
	Interop bool

	// Launch workers. 0 uses one per CPU.
	Workers int

	// Radiance returned by escaping rays.
	MissColor types.Vec3
}

// Get the default renderer options.
func DefaultOptions() Options {
	return Options{
		FrameW:             1280,
		FrameH:             720,
		PresentInterval:    time.Second,
		MinPathLength:      2,
		MaxPathLength:      5,
		SceneEpsilonFactor: 500,
		Builder:            accel.Trbvh,
		Interop:            true,
		MissColor:          types.XYZ(1, 1, 1),
	}
}

// Validate the options.
func (opts Options) Validate() error {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return fmt.Errorf("renderer: invalid frame dimensions %dx%d: %w", opts.FrameW, opts.FrameH, ErrInvalidOptions)
	}
	if err := validatePathLengths(opts.MinPathLength, opts.MaxPathLength); err != nil {
		return err
	}
	if opts.SceneEpsilonFactor < 0 {
		return fmt.Errorf("renderer: negative scene epsilon factor %f: %w", opts.SceneEpsilonFactor, ErrInvalidOptions)
	}
	if _, err := accel.ParseBuilder(string(opts.Builder)); err != nil {
		return fmt.Errorf("renderer: %v: %w", err, ErrInvalidOptions)
	}
	if opts.Workers < 0 {
		return fmt.Errorf("renderer: invalid worker count %d: %w", opts.Workers, ErrInvalidOptions)
	}
	return nil
}

func validatePathLengths(min, max uint32) error {
	if max == 0 || min > max {
		return fmt.Errorf("renderer: invalid path lengths (min %d, max %d): %w", min, max, ErrInvalidOptions)
	}
	return nil
}

// Scene epsilon in world units.
func sceneEpsilon(factor float32) float32 {
	return factor * 1e-7
}
