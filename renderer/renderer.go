package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/accum"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/dispatch"
	"github.com/surajsubudhi10/PistonOptix/tracer/geometry"
	"github.com/surajsubudhi10/PistonOptix/tracer/graph"
	"github.com/surajsubudhi10/PistonOptix/tracer/kernel"
	"github.com/surajsubudhi10/PistonOptix/tracer/params"
)

// Renderer sequences scene setup and the per-frame progressive loop. All
// methods must be called from a single goroutine; parameter edits are
// therefore always visible to the next launch.
type Renderer struct {
	logger log.Logger
	dev    *device.Device
	opts   Options

	scene   *scene.Description
	camera  *scene.Camera
	display Display

	tables    *dispatch.Tables
	materials *params.MaterialTable
	lights    *params.LightTable
	assembler *graph.Assembler
	root      *graph.RootGroup
	output    *device.Buffer
	kernel    *kernel.Kernel
	accum     *accum.Controller

	pathLengths   params.PathLengths
	epsilonFactor float32

	valid     bool
	stats     FrameStats
	initStats InitStats
}

// Create a renderer for sc. The renderer owns dev and closes it on Close.
// If initialization fails the returned renderer is marked invalid, all
// resources are released and the error describes the failed phase.
func New(dev *device.Device, sc *scene.Description, opts Options) (*Renderer, error) {
	return newRenderer(dev, sc, opts, accum.SystemClock())
}

func newRenderer(dev *device.Device, sc *scene.Description, opts Options, clock accum.Clock) (*Renderer, error) {
	r := &Renderer{
		logger:        log.New("renderer"),
		dev:           dev,
		opts:          opts,
		scene:         sc,
		pathLengths:   params.PathLengths{Min: opts.MinPathLength, Max: opts.MaxPathLength},
		epsilonFactor: opts.SceneEpsilonFactor,
		accum: accum.New(clock, accum.Options{
			Cap:               opts.SampleCap,
			PresentEveryFrame: opts.PresentEveryFrame,
			PresentInterval:   opts.PresentInterval,
		}),
	}

	if err := r.init(); err != nil {
		r.logger.Errorf("initialization failed: %v", err)
		r.release()
		return r, err
	}

	r.valid = true
	r.logger.Noticef("renderer initialized in %d ms\n%s", r.initStats.Total().Nanoseconds()/1e6, r.initStats.Table())
	return r, nil
}

func (r *Renderer) init() error {
	if err := r.opts.Validate(); err != nil {
		return err
	}
	if r.scene == nil {
		return ErrSceneNotDefined
	}
	if err := r.scene.Validate(); err != nil {
		return err
	}
	if err := r.dev.Init(); err != nil {
		return err
	}

	// Programs
	start := time.Now()
	bounds, intersect, err := geometry.RegisterPrograms(r.dev)
	if err != nil {
		return err
	}
	reg := dispatch.NewRegistry()
	if err = dispatch.RegisterDefaults(reg, r.dev); err != nil {
		return err
	}
	r.initStats.Programs = time.Since(start)

	// Dispatch and parameter tables
	start = time.Now()
	if r.tables, err = reg.Install(r.dev); err != nil {
		return err
	}
	r.materials = params.NewMaterialTable(r.dev)
	if _, err = r.materials.Rebuild(params.MaterialGUIs(r.scene.Materials)); err != nil {
		return err
	}
	r.lights = params.NewLightTable(r.dev)
	if _, err = r.lights.Rebuild(r.scene.Lights); err != nil {
		return err
	}
	r.initStats.Tables = time.Since(start)

	// Scene
	start = time.Now()
	r.assembler = graph.NewAssembler(r.dev, geometry.NewBuilder(r.dev, bounds, intersect), r.opts.Builder)
	if r.root, err = r.assembler.Assemble(r.scene.Nodes, r.scene.Meshes); err != nil {
		return err
	}
	r.dev.SetVariable(params.VarTopObject, r.root)

	r.output = r.dev.Buffer(params.OutputBufferName)
	if err = r.output.Allocate(kernel.PixelSize, int(r.opts.FrameW*r.opts.FrameH)); err != nil {
		return err
	}
	r.kernel = kernel.New(r.dev, r.tables, r.materials, r.lights, r.output)
	r.kernel.Miss = r.opts.MissColor

	r.camera = r.scene.Camera
	if r.camera == nil {
		r.camera = scene.NewCamera(60)
	}
	r.camera.SetViewport(r.opts.FrameW, r.opts.FrameH)
	fr, _ := r.camera.Frustum()
	r.setCameraVariables(fr)

	r.dev.SetVariable(params.VarIterationIndex, uint32(0))
	r.dev.SetVariable(params.VarPathLengths, r.pathLengths)
	r.dev.SetVariable(params.VarSceneEpsilon, sceneEpsilon(r.epsilonFactor))
	r.initStats.Scene = time.Since(start)

	// Validation
	start = time.Now()
	if err = r.dev.Validate(kernel.RequiredVariables...); err != nil {
		return err
	}
	if err = r.materials.Verify(); err != nil {
		return err
	}
	if err = r.lights.Verify(); err != nil {
		return err
	}
	r.initStats.Validate = time.Since(start)

	// An empty launch makes sure everything is bound before the first frame.
	start = time.Now()
	if _, err = r.kernel.Launch(0, 0); err != nil {
		return err
	}
	r.initStats.Launch = time.Since(start)

	return nil
}

// Attach a display. If interop is enabled and the display can consume
// device buffers it is registered with the output buffer.
func (r *Renderer) AttachDisplay(d Display) error {
	if !r.valid {
		return ErrRendererInvalid
	}

	if consumer, ok := d.(device.InteropConsumer); ok && r.opts.Interop {
		if err := r.output.RegisterInterop(consumer); err != nil {
			return err
		}
	}
	r.display = d
	return nil
}

// Render a frame. Returns true if a new image was presented. A failed
// launch skips the frame and leaves the accumulation state untouched so
// the next call retries it.
func (r *Renderer) Render() (bool, error) {
	if !r.valid {
		return false, ErrRendererInvalid
	}

	start := time.Now()
	if fr, changed := r.camera.Frustum(); changed {
		r.setCameraVariables(fr)
		r.accum.Restart("camera changed")
	}

	launched := false
	if r.accum.ShouldLaunch() {
		iteration := r.accum.Iteration()
		r.dev.SetVariable(params.VarIterationIndex, iteration)
		if _, err := r.kernel.Launch(int(r.opts.FrameW), int(r.opts.FrameH)); err != nil {
			r.accum.LaunchFailed(err)
			r.stats = r.frameStats(false, false, start)
			return false, err
		}
		r.accum.LaunchCompleted()
		launched = true
	}

	presented := r.accum.PresentThisFrame(launched)
	if presented && r.display != nil {
		if err := r.display.Present(r.output.Float32s(), int(r.opts.FrameW), int(r.opts.FrameH)); err != nil {
			r.stats = r.frameStats(launched, false, start)
			return false, err
		}
	}

	r.stats = r.frameStats(launched, presented, start)
	return presented, nil
}

func (r *Renderer) frameStats(launched, presented bool, start time.Time) FrameStats {
	iteration := r.accum.Iteration()
	if iteration > 0 {
		iteration--
	}
	return FrameStats{
		Iteration:  iteration,
		State:      r.accum.State().String(),
		Launched:   launched,
		Presented:  presented,
		Resets:     r.accum.Resets(),
		RenderTime: time.Since(start),
	}
}

// UpdateMaterial replaces a material and restarts accumulation. Edits
// always restart, even if the values did not change.
func (r *Renderer) UpdateMaterial(index int, mat params.MaterialGUI) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if mat.Brdf >= scene.NumBrdfTypes {
		return fmt.Errorf("renderer: material %d uses unknown brdf type %d: %w", index, mat.Brdf, fault.ErrConsistency)
	}
	if err := r.materials.Set(index, mat); err != nil {
		return err
	}
	r.accum.Restart(fmt.Sprintf("material %d updated", index))
	return nil
}

// Material returns the editable copy of a material.
func (r *Renderer) Material(index int) (params.MaterialGUI, bool) {
	if r.materials == nil {
		return params.MaterialGUI{}, false
	}
	return r.materials.Get(index)
}

// UpdateLight replaces a light and restarts accumulation.
func (r *Renderer) UpdateLight(index int, light scene.Light) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if light.Type >= scene.NumLightTypes {
		return fmt.Errorf("renderer: light %d uses unknown light type %d: %w", index, light.Type, fault.ErrConsistency)
	}
	if err := r.lights.Set(index, light); err != nil {
		return err
	}
	r.accum.Restart(fmt.Sprintf("light %d updated", index))
	return nil
}

// SetCamera replaces the camera and restarts accumulation.
func (r *Renderer) SetCamera(cam *scene.Camera) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if cam == nil {
		return errors.New("renderer: nil camera")
	}

	cam.SetViewport(r.opts.FrameW, r.opts.FrameH)
	fr, _ := cam.Frustum()
	r.camera = cam
	r.setCameraVariables(fr)
	r.accum.Restart("camera replaced")
	return nil
}

// Camera returns the active camera. Changes to it are picked up by the
// next Render call.
func (r *Renderer) Camera() *scene.Camera {
	return r.camera
}

func (r *Renderer) setCameraVariables(fr scene.Frustum) {
	r.dev.SetVariable(params.VarCameraPosition, fr.Position)
	r.dev.SetVariable(params.VarCameraU, fr.U)
	r.dev.SetVariable(params.VarCameraV, fr.V)
	r.dev.SetVariable(params.VarCameraW, fr.W)
}

// SetSampleCap changes the sample cap. Accumulated samples stay valid.
func (r *Renderer) SetSampleCap(n uint32) {
	r.accum.SetCap(n)
}

// SetPresentEveryFrame switches between presenting every launch and
// presenting once per present interval.
func (r *Renderer) SetPresentEveryFrame(flag bool) {
	r.accum.SetPresentEveryFrame(flag)
}

// SetPathLengths changes the russian roulette threshold and the maximum
// path length and restarts accumulation.
func (r *Renderer) SetPathLengths(min, max uint32) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if err := validatePathLengths(min, max); err != nil {
		return err
	}

	r.pathLengths = params.PathLengths{Min: min, Max: max}
	r.dev.SetVariable(params.VarPathLengths, r.pathLengths)
	r.accum.Restart("path lengths changed")
	return nil
}

// SetSceneEpsilon changes the self intersection offset factor and restarts
// accumulation.
func (r *Renderer) SetSceneEpsilon(factor float32) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if factor < 0 {
		return fmt.Errorf("renderer: negative scene epsilon factor %f: %w", factor, ErrInvalidOptions)
	}

	r.epsilonFactor = factor
	r.dev.SetVariable(params.VarSceneEpsilon, sceneEpsilon(factor))
	r.accum.Restart("scene epsilon changed")
	return nil
}

// Resize the viewport. Any interop consumer is detached while the output
// buffer is resized and attached again afterwards.
func (r *Renderer) Resize(w, h uint32) error {
	if !r.valid {
		return ErrRendererInvalid
	}
	if w == 0 || h == 0 {
		return fmt.Errorf("renderer: invalid frame dimensions %dx%d: %w", w, h, ErrInvalidOptions)
	}

	consumer := r.output.Interop()
	if consumer != nil {
		if err := r.output.UnregisterInterop(); err != nil {
			return err
		}
	}

	resizeErr := r.output.Resize(int(w * h))
	if consumer != nil {
		if err := r.output.RegisterInterop(consumer); err != nil {
			return err
		}
	}
	if resizeErr != nil {
		return resizeErr
	}

	r.opts.FrameW, r.opts.FrameH = w, h
	r.camera.SetViewport(w, h)
	fr, _ := r.camera.Frustum()
	r.setCameraVariables(fr)
	r.accum.Restart(fmt.Sprintf("viewport resized to %dx%d", w, h))
	return nil
}

// Output returns a copy of the progressive output buffer as w*h RGBA32F
// pixels.
func (r *Renderer) Output() []float32 {
	if r.output == nil || !r.output.Allocated() {
		return nil
	}
	return append([]float32(nil), r.output.Float32s()...)
}

// Get the current frame dimensions.
func (r *Renderer) FrameSize() (uint32, uint32) {
	return r.opts.FrameW, r.opts.FrameH
}

// Get statistics for the last rendered frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Get the initialization timing breakdown.
func (r *Renderer) InitStats() InitStats {
	return r.initStats
}

// Iteration returns the number of launches accumulated since the last
// restart.
func (r *Renderer) Iteration() uint32 {
	return r.accum.Iteration()
}

// PresentNext reports whether the next frame is presented regardless of
// the present policy.
func (r *Renderer) PresentNext() bool {
	return r.accum.PresentNext()
}

// State returns the accumulation state.
func (r *Renderer) State() accum.State {
	return r.accum.State()
}

// Resets returns the number of accumulation restarts.
func (r *Renderer) Resets() int {
	return r.accum.Resets()
}

// IsValid is false if initialization failed or the renderer was closed.
func (r *Renderer) IsValid() bool {
	return r.valid
}

// Close releases all resources and the device.
func (r *Renderer) Close() {
	r.release()
	r.valid = false
}

func (r *Renderer) release() {
	if r.output != nil {
		if r.output.Interop() != nil {
			if err := r.output.UnregisterInterop(); err != nil {
				r.logger.Warningf("could not detach display: %v", err)
			}
		}
		r.output.Release()
	}
	if r.assembler != nil {
		r.assembler.Release()
	}
	if r.tables != nil {
		r.tables.Release()
	}
	if r.materials != nil {
		r.materials.Release()
	}
	if r.lights != nil {
		r.lights.Release()
	}
	r.dev.Close()
}
