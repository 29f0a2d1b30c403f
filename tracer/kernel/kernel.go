// Package kernel implements the host trace kernel. Each launch computes
// one sample per pixel and folds it into the progressive output buffer.
package kernel

import (
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/dispatch"
	"github.com/surajsubudhi10/PistonOptix/tracer/graph"
	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// Size in bytes of one RGBA32F output pixel.
const PixelSize = 16

// The device variables that must be set before a launch.
var RequiredVariables = []string{
	params.VarIterationIndex,
	params.VarSceneEpsilon,
	params.VarPathLengths,
	params.VarNumberOfLights,
	params.VarCameraPosition,
	params.VarCameraU,
	params.VarCameraV,
	params.VarCameraW,
	params.VarTopObject,
}

// Launch parameters resolved from device variables.
type Frame struct {
	Iteration   uint32
	Epsilon     float32
	PathLengths params.PathLengths
	Camera      [4]types.Vec3
	Root        *graph.RootGroup
	Materials   []params.PackedMaterial
	Lights      []params.PackedLight
	Tables      *dispatch.Tables
	Miss        types.Vec3
	Width       int
	Height      int
}

// An Estimator computes one radiance sample for a pixel.
type Estimator func(fr *Frame, x, y int, rng *RNG) (types.Vec3, error)

// Kernel binds the scene buffers and dispatch tables to a launch.
type Kernel struct {
	logger log.Logger
	dev    *device.Device

	tables    *dispatch.Tables
	materials *params.MaterialTable
	lights    *params.LightTable
	output    *device.Buffer

	// Radiance returned by rays that escape the scene.
	Miss types.Vec3

	// Per pixel estimator; defaults to PathTrace.
	Estimator Estimator

	// Samples from the current launch. They are only folded into the
	// output once every pixel succeeded.
	samples []types.Vec4
}

// Create a kernel writing into output.
func New(dev *device.Device, tables *dispatch.Tables, materials *params.MaterialTable, lights *params.LightTable, output *device.Buffer) *Kernel {
	return &Kernel{
		logger:    log.New("trace kernel"),
		dev:       dev,
		tables:    tables,
		materials: materials,
		lights:    lights,
		output:    output,
		Miss:      types.XYZ(1, 1, 1),
		Estimator: PathTrace,
	}
}

// Launch computes one sample for every pixel of a w x h viewport and folds
// it into the output buffer. Pixels are only updated if the whole launch
// succeeds. A 0 x 0 launch validates the bindings without tracing.
func (k *Kernel) Launch(w, h int) (time.Duration, error) {
	fr, err := k.frame(w, h)
	if err != nil {
		return 0, err
	}

	if n := w * h; cap(k.samples) < n {
		k.samples = make([]types.Vec4, n)
	} else {
		k.samples = k.samples[:n]
	}

	elapsed, err := k.dev.Launch(w, h, func(x, y int) error {
		rng := NewRNG(uint32(y*w+x), fr.Iteration)
		radiance, err := k.Estimator(fr, x, y, rng)
		if err != nil {
			return err
		}
		k.samples[y*w+x] = radiance.Vec4(1)
		return nil
	})
	if err != nil {
		return 0, err
	}

	pixels := k.output.Float32s()
	resolve, err := k.dev.Launch(w, h, func(x, y int) error {
		idx := y*w + x
		Accumulate(pixels[idx*4:idx*4+4], k.samples[idx], fr.Iteration)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return elapsed + resolve, nil
}

func (k *Kernel) frame(w, h int) (*Frame, error) {
	if err := k.dev.Validate(RequiredVariables...); err != nil {
		return nil, fmt.Errorf("trace kernel: %v: %w", err, fault.ErrLaunch)
	}
	if !k.output.Allocated() || k.output.ElementSize() != PixelSize || (w*h != 0 && k.output.Count() != w*h) {
		return nil, fmt.Errorf("trace kernel: output buffer %s holds %d elements; launch needs %dx%d RGBA32F pixels: %w", k.output.Name(), k.output.Count(), w, h, fault.ErrLaunch)
	}

	fr := &Frame{
		Materials: k.materials.Packed(),
		Lights:    k.lights.Packed(),
		Tables:    k.tables,
		Miss:      k.Miss,
		Width:     w,
		Height:    h,
	}

	var numLights uint32
	err := firstErr(
		variable(k.dev, params.VarIterationIndex, &fr.Iteration),
		variable(k.dev, params.VarSceneEpsilon, &fr.Epsilon),
		variable(k.dev, params.VarPathLengths, &fr.PathLengths),
		variable(k.dev, params.VarNumberOfLights, &numLights),
		variable(k.dev, params.VarCameraPosition, &fr.Camera[0]),
		variable(k.dev, params.VarCameraU, &fr.Camera[1]),
		variable(k.dev, params.VarCameraV, &fr.Camera[2]),
		variable(k.dev, params.VarCameraW, &fr.Camera[3]),
		variable(k.dev, params.VarTopObject, &fr.Root),
	)
	if err != nil {
		return nil, err
	}

	if int(numLights) != len(fr.Lights) {
		return nil, fmt.Errorf("trace kernel: %s is %d but the light buffer holds %d lights: %w", params.VarNumberOfLights, numLights, len(fr.Lights), fault.ErrLaunch)
	}

	return fr, nil
}

func variable[T any](dev *device.Device, name string, dst *T) error {
	v, _ := dev.Variable(name)
	typed, ok := v.(T)
	if !ok {
		return fmt.Errorf("trace kernel: variable %s has type %T; expected %T: %w", name, v, *dst, fault.ErrLaunch)
	}
	*dst = typed
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
