package renderer

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/accum"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRenderProgressive(t *testing.T) {
	r, dev := setupRenderer(t, testOptions())
	defer r.Close()

	display := NewTextureDisplay()
	if err := r.AttachDisplay(display); err != nil {
		t.Fatal(err)
	}
	if !display.Attached() {
		t.Fatal("expected display to be attached to the output buffer")
	}

	for i := 0; i < 2; i++ {
		presented, err := r.Render()
		if err != nil {
			t.Fatal(err)
		}
		if !presented {
			t.Fatalf("expected frame %d to be presented", i)
		}
	}
	if r.Iteration() != 2 {
		t.Fatalf("expected iteration 2; got %d", r.Iteration())
	}
	if r.State() != accum.Accumulating {
		t.Fatalf("expected state to be accumulating; got %s", r.State())
	}
	if display.Presents() != 2 {
		t.Fatalf("expected 2 presented frames; got %d", display.Presents())
	}
	if stats := r.Stats(); stats.Iteration != 1 || !stats.Launched {
		t.Fatalf("expected stats for launch 1; got %+v", stats)
	}

	pix, w, h := display.Texture()
	if w != 8 || h != 8 || len(pix) != 8*8*4 {
		t.Fatalf("expected an 8x8 texture; got %dx%d with %d values", w, h, len(pix))
	}

	cam := scene.NewCamera(45)
	cam.Place(types.XYZ(0, 0, 1), types.XYZ(0, 0, -2))
	if err := r.SetCamera(cam); err != nil {
		t.Fatal(err)
	}
	if !r.PresentNext() {
		t.Fatal("expected the next frame to be presented after a camera change")
	}
	if r.Iteration() != 0 || r.State() != accum.Reset {
		t.Fatalf("expected accumulation to restart; got iteration %d, state %s", r.Iteration(), r.State())
	}

	pos, _ := dev.Variable(params.VarCameraPosition)
	if pos.(types.Vec3) != types.XYZ(0, 0, 1) {
		t.Fatalf("expected camera position to be published; got %v", pos)
	}
}

func TestCameraEditsRestart(t *testing.T) {
	r, dev := setupRenderer(t, testOptions())
	defer r.Close()

	for i := 0; i < 3; i++ {
		if _, err := r.Render(); err != nil {
			t.Fatal(err)
		}
	}

	r.Camera().Dolly(0.5)
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Iteration() != 1 || r.Resets() != 1 {
		t.Fatalf("expected the frame after a camera move to be the first of a new run; got iteration %d, resets %d", r.Iteration(), r.Resets())
	}

	r.Camera().Position = types.XYZ(0.5, 0, 0)
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Iteration() != 1 || r.Resets() != 2 {
		t.Fatalf("expected a direct position write to restart accumulation; got iteration %d, resets %d", r.Iteration(), r.Resets())
	}
	pos, _ := dev.Variable(params.VarCameraPosition)
	if pos.(types.Vec3) != types.XYZ(0.5, 0, 0) {
		t.Fatalf("expected camera position to be published; got %v", pos)
	}
}

func TestUpdateMaterialAlwaysRestarts(t *testing.T) {
	r, _ := setupRenderer(t, testOptions())
	defer r.Close()

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	before := append([]byte(nil), r.materials.Buffer().Bytes()...)

	mat, ok := r.Material(0)
	if !ok {
		t.Fatal("expected material 0 to exist")
	}
	for i := 0; i < 2; i++ {
		if err := r.UpdateMaterial(0, mat); err != nil {
			t.Fatal(err)
		}
	}

	if r.Resets() != 2 {
		t.Fatalf("expected 2 restarts; got %d", r.Resets())
	}
	if !r.PresentNext() || r.Iteration() != 0 {
		t.Fatalf("expected a fresh accumulation run; got iteration %d", r.Iteration())
	}
	if !bytes.Equal(before, r.materials.Buffer().Bytes()) {
		t.Fatal("expected identical material values to produce identical packed data")
	}

	if err := r.UpdateMaterial(5, mat); err == nil {
		t.Fatal("expected an error for an out of range material")
	}
	if r.Resets() != 2 {
		t.Fatalf("expected a rejected edit not to restart; got %d restarts", r.Resets())
	}
}

func TestUpdateLight(t *testing.T) {
	r, dev := setupRenderer(t, testOptions())
	defer r.Close()

	if err := r.UpdateLight(0, scene.NewDirectionalLight(types.XYZ(0, 0, 1), types.XYZ(3, 3, 3))); err != nil {
		t.Fatal(err)
	}
	if r.Resets() != 1 {
		t.Fatalf("expected 1 restart; got %d", r.Resets())
	}
	if n, _ := dev.Variable(params.VarNumberOfLights); n.(uint32) != 1 {
		t.Fatalf("expected light count 1; got %v", n)
	}
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
}

func TestEditsRejectUnknownTypes(t *testing.T) {
	r, _ := setupRenderer(t, testOptions())
	defer r.Close()

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	materials := append([]byte(nil), r.materials.Buffer().Bytes()...)
	lights := append([]byte(nil), r.lights.Buffer().Bytes()...)

	mat, _ := r.Material(0)
	mat.Brdf = scene.NumBrdfTypes
	if err := r.UpdateMaterial(0, mat); !errors.Is(err, fault.ErrConsistency) {
		t.Fatalf("expected a consistency error for an unknown brdf; got %v", err)
	}

	light := scene.NewDirectionalLight(types.XYZ(0, 0, 1), types.XYZ(1, 1, 1))
	light.Type = scene.NumLightTypes
	if err := r.UpdateLight(0, light); !errors.Is(err, fault.ErrConsistency) {
		t.Fatalf("expected a consistency error for an unknown light type; got %v", err)
	}

	if r.Resets() != 0 || r.Iteration() != 1 {
		t.Fatalf("expected rejected edits to leave accumulation alone; got %d resets at iteration %d", r.Resets(), r.Iteration())
	}
	if !bytes.Equal(materials, r.materials.Buffer().Bytes()) {
		t.Fatal("expected the packed materials to be unchanged")
	}
	if !bytes.Equal(lights, r.lights.Buffer().Bytes()) {
		t.Fatal("expected the packed lights to be unchanged")
	}
	if got, _ := r.Material(0); got.Brdf != scene.Lambert {
		t.Fatalf("expected material 0 to keep brdf %d; got %d", scene.Lambert, got.Brdf)
	}

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Iteration() != 2 {
		t.Fatalf("expected iteration 2; got %d", r.Iteration())
	}
}

func TestRenderWithoutLights(t *testing.T) {
	sc := quadScene(t)
	sc.Lights = nil
	r, dev := setupRendererWithScene(t, sc, testOptions())
	defer r.Close()

	if n, _ := dev.Variable(params.VarNumberOfLights); n.(uint32) != 0 {
		t.Fatalf("expected light count 0; got %v", n)
	}
	if got := r.lights.Buffer().Count(); got != 0 {
		t.Fatalf("expected an empty light buffer; got %d entries", got)
	}

	display := NewTextureDisplay()
	if err := r.AttachDisplay(display); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := r.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if r.Iteration() != 2 || r.State() != accum.Accumulating {
		t.Fatalf("expected iteration 2 while accumulating; got iteration %d, state %s", r.Iteration(), r.State())
	}
	if display.Presents() != 2 {
		t.Fatalf("expected 2 presented frames; got %d", display.Presents())
	}

	cam := scene.NewCamera(45)
	cam.Place(types.XYZ(0, 0, 1), types.XYZ(0, 0, -2))
	if err := r.SetCamera(cam); err != nil {
		t.Fatal(err)
	}
	if !r.PresentNext() || r.Iteration() != 0 {
		t.Fatalf("expected accumulation to restart; got iteration %d", r.Iteration())
	}
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
}

func TestLaunchFailureKeepsState(t *testing.T) {
	r, _ := setupRenderer(t, testOptions())
	defer r.Close()

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	before := r.Output()

	// A host mapping blocks launches.
	if _, err := r.output.Map(); err != nil {
		t.Fatal(err)
	}
	presented, err := r.Render()
	if !errors.Is(err, fault.ErrLaunch) {
		t.Fatalf("expected a launch error; got %v", err)
	}
	if presented {
		t.Fatal("expected a failed frame not to be presented")
	}
	if r.Iteration() != 1 || r.State() != accum.Accumulating {
		t.Fatalf("expected accumulation state to be unchanged; got iteration %d, state %s", r.Iteration(), r.State())
	}
	if err = r.output.Unmap(); err != nil {
		t.Fatal(err)
	}

	after := r.Output()
	for idx := range before {
		if before[idx] != after[idx] {
			t.Fatalf("expected output to be unchanged by a failed launch; value %d changed from %f to %f", idx, before[idx], after[idx])
		}
	}

	if _, err = r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Iteration() != 2 {
		t.Fatalf("expected the retried launch to complete iteration 2; got %d", r.Iteration())
	}
}

func TestSampleCap(t *testing.T) {
	opts := testOptions()
	opts.SampleCap = 3
	r, _ := setupRenderer(t, opts)
	defer r.Close()

	for i := 0; i < 5; i++ {
		if _, err := r.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if r.Iteration() != 3 || r.State() != accum.Capped {
		t.Fatalf("expected to stop at 3 samples; got iteration %d, state %s", r.Iteration(), r.State())
	}
	if r.Stats().Launched {
		t.Fatal("expected capped frames not to launch")
	}

	r.SetSampleCap(4)
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if r.Iteration() != 4 || r.Resets() != 0 {
		t.Fatalf("expected raising the cap to resume without restarting; got iteration %d, resets %d", r.Iteration(), r.Resets())
	}
}

func TestPresentInterval(t *testing.T) {
	opts := testOptions()
	opts.PresentEveryFrame = false
	opts.PresentInterval = time.Second

	clock := &fakeClock{}
	sc := quadScene(t)
	dev := device.New("test", device.WithWorkers(2))
	r, err := newRenderer(dev, sc, opts, clock)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	expect := func(exp bool) {
		t.Helper()
		presented, err := r.Render()
		if err != nil {
			t.Fatal(err)
		}
		if presented != exp {
			t.Fatalf("expected presented to be %t at iteration %d", exp, r.Iteration())
		}
	}

	expect(true)
	expect(false)
	clock.Advance(999 * time.Millisecond)
	expect(false)
	clock.Advance(time.Millisecond)
	expect(true)
	expect(false)

	r.SetPresentEveryFrame(true)
	expect(true)
}

func TestResizeReattachesDisplay(t *testing.T) {
	r, _ := setupRenderer(t, testOptions())
	defer r.Close()

	display := NewTextureDisplay()
	if err := r.AttachDisplay(display); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}

	if err := r.Resize(4, 2); err != nil {
		t.Fatal(err)
	}
	if attaches, detaches := display.InteropEvents(); attaches != 2 || detaches != 1 {
		t.Fatalf("expected display to be detached once and attached twice; got %d detaches and %d attaches", detaches, attaches)
	}
	if !display.Attached() {
		t.Fatal("expected display to be attached after resizing")
	}
	if r.Iteration() != 0 || r.Resets() != 1 {
		t.Fatalf("expected resizing to restart accumulation; got iteration %d, resets %d", r.Iteration(), r.Resets())
	}

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
	if _, w, h := display.Texture(); w != 4 || h != 2 {
		t.Fatalf("expected a 4x2 frame; got %dx%d", w, h)
	}
	if got := len(r.Output()); got != 4*2*4 {
		t.Fatalf("expected 32 output values; got %d", got)
	}

	if err := r.Resize(0, 2); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions; got %v", err)
	}
}

func TestParameterEdits(t *testing.T) {
	r, dev := setupRenderer(t, testOptions())
	defer r.Close()

	if err := r.SetPathLengths(3, 2); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("expected ErrInvalidOptions; got %v", err)
	}
	if err := r.SetPathLengths(1, 8); err != nil {
		t.Fatal(err)
	}
	if err := r.SetSceneEpsilon(100); err != nil {
		t.Fatal(err)
	}
	if r.Resets() != 2 {
		t.Fatalf("expected 2 restarts; got %d", r.Resets())
	}

	eps, _ := dev.Variable(params.VarSceneEpsilon)
	if got := eps.(float32); got < 0.99e-5 || got > 1.01e-5 {
		t.Fatalf("expected scene epsilon 1e-5; got %g", got)
	}
	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}
}

func TestInvalidRenderer(t *testing.T) {
	specs := []struct {
		descr string
		sc    func(t *testing.T) *scene.Description
		opts  func() Options
		err   error
	}{
		{"missing scene", func(*testing.T) *scene.Description { return nil }, testOptions, ErrSceneNotDefined},
		{"bad frame size", quadScene, func() Options {
			opts := testOptions()
			opts.FrameW = 0
			return opts
		}, ErrInvalidOptions},
		{"missing mesh", func(t *testing.T) *scene.Description {
			sc := quadScene(t)
			sc.Nodes = append(sc.Nodes, scene.NewNode("ghost", 0, types.Ident4(), 42))
			return sc
		}, testOptions, fault.ErrBuildPrecondition},
	}

	for _, spec := range specs {
		dev := device.New("test")
		r, err := New(dev, spec.sc(t), spec.opts())
		if !errors.Is(err, spec.err) {
			t.Fatalf("[%s] expected error %v; got %v", spec.descr, spec.err, err)
		}
		if r.IsValid() {
			t.Fatalf("[%s] expected renderer to be invalid", spec.descr)
		}
		if dev.LiveBuffers() != 0 {
			t.Fatalf("[%s] expected all buffers to be released; got %d", spec.descr, dev.LiveBuffers())
		}
		if _, err = r.Render(); !errors.Is(err, ErrRendererInvalid) {
			t.Fatalf("[%s] expected ErrRendererInvalid; got %v", spec.descr, err)
		}
		if err = r.UpdateMaterial(0, params.MaterialGUI{}); !errors.Is(err, ErrRendererInvalid) {
			t.Fatalf("[%s] expected ErrRendererInvalid; got %v", spec.descr, err)
		}
	}
}

func TestScreenshot(t *testing.T) {
	r, _ := setupRenderer(t, testOptions())
	defer r.Close()

	if _, err := r.Render(); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"frame.png", "frame.webp", "frame.TGA"} {
		path := filepath.Join(dir, name)
		if err := r.Screenshot(path); err != nil {
			t.Fatalf("[%s] %v", name, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("[%s] expected a non-empty file; got %v", name, err)
		}
	}

	path := filepath.Join(dir, "scaled.png")
	if err := r.ScreenshotScaled(path, 16, 4); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	im, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := im.Bounds(); b.Dx() != 16 || b.Dy() != 4 {
		t.Fatalf("expected a 16x4 image; got %v", b)
	}

	if err = r.Screenshot(filepath.Join(dir, "frame.jpg")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat; got %v", err)
	}
}

func TestToneMap(t *testing.T) {
	specs := []struct {
		in  float32
		exp uint8
	}{
		{-1, 0},
		{0, 0},
		{1, 255},
		{4, 255},
		{0.5, 186},
	}

	for _, spec := range specs {
		if got := toneMap(spec.in); got != spec.exp {
			t.Fatalf("expected toneMap(%f) to be %d; got %d", spec.in, spec.exp, got)
		}
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.FrameW = 8
	opts.FrameH = 8
	opts.PresentEveryFrame = true
	return opts
}

// A grey quad two units in front of the default camera lit by one
// directional light.
func quadScene(t *testing.T) *scene.Description {
	sc := scene.NewDescription()
	quadID := sc.AddMesh(scene.UnitQuad())
	sc.Nodes = []scene.Node{
		scene.NewNode("quad", 0, types.Translate4(types.XYZ(0, 0, -2)), quadID),
	}
	sc.Materials = []scene.Material{
		{Name: "grey", Albedo: types.XYZ(0.5, 0.5, 0.5), Brdf: scene.Lambert},
	}
	sc.Lights = []scene.Light{
		scene.NewDirectionalLight(types.XYZ(0, 0, 1), types.XYZ(1, 1, 1)),
	}
	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}
	return sc
}

func setupRenderer(t *testing.T, opts Options) (*Renderer, *device.Device) {
	return setupRendererWithScene(t, quadScene(t), opts)
}

func setupRendererWithScene(t *testing.T, sc *scene.Description, opts Options) (*Renderer, *device.Device) {
	dev := device.New("test", device.WithWorkers(2))
	r, err := New(dev, sc, opts)
	if err != nil {
		t.Fatal(err)
	}
	return r, dev
}
