package dispatch

import (
	"math"
	"testing"

	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

func TestBrdfCallables(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	reg := NewRegistry()
	if err := RegisterDefaults(reg, dev); err != nil {
		t.Fatal(err)
	}
	tables, err := reg.Install(dev)
	if err != nil {
		t.Fatal(err)
	}

	mat := &params.PackedMaterial{Albedo: types.XYZ(0.5, 0.5, 0.5), Metallic: 0.5, Roughness: 0.5}
	surface := &Surface{
		Material: mat,
		Normal:   types.XYZ(0, 1, 0),
		Wo:       types.XYZ(0, 1, 1).Normalize(),
	}

	// Lambert is constant over the hemisphere.
	f := tables.EvalBrdf(uint32(scene.Lambert), surface, types.XYZ(0, 1, 0))
	if exp := 0.5 / float32(math.Pi); !approx(f[0], exp) {
		t.Fatalf("expected lambert eval %f; got %f", exp, f[0])
	}
	if f = tables.EvalBrdf(uint32(scene.Lambert), surface, types.XYZ(0, -1, 0)); f != (types.Vec3{}) {
		t.Fatalf("expected zero below the surface; got %v", f)
	}

	for brdf := scene.BrdfType(0); brdf < scene.NumBrdfTypes; brdf++ {
		for _, u := range []types.Vec2{{0.1, 0.2}, {0.5, 0.5}, {0.9, 0.7}, {0.3, 0.95}} {
			wi, ok := tables.SampleBrdf(uint32(brdf), surface, u)
			if !ok {
				continue
			}
			if !approx(wi.Len(), 1) {
				t.Fatalf("[%s] expected a unit direction; got length %f", brdf, wi.Len())
			}
			if wi.Dot(surface.Normal) <= 0 {
				t.Fatalf("[%s] expected sampled direction above the surface; got %v", brdf, wi)
			}
			if pdf := tables.PdfBrdf(uint32(brdf), surface, wi); pdf <= 0 {
				t.Fatalf("[%s] expected a positive pdf for a sampled direction; got %f", brdf, pdf)
			}
		}
	}

	if _, ok := tables.SampleBrdf(uint32(scene.NumBrdfTypes), surface, types.Vec2{}); ok {
		t.Fatal("expected sampling an unknown brdf to fail")
	}
}

func TestLightCallables(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	reg := NewRegistry()
	if err := RegisterDefaults(reg, dev); err != nil {
		t.Fatal(err)
	}
	tables, err := reg.Install(dev)
	if err != nil {
		t.Fatal(err)
	}

	lt := params.NewLightTable(dev)
	_, err = lt.Rebuild([]scene.Light{
		// Unit quad at y=2 facing down.
		scene.NewQuadLight(types.XYZ(-0.5, 2, -0.5), types.XYZ(1, 0, 0), types.XYZ(0, 0, 1), types.XYZ(4, 4, 4)),
		scene.NewDirectionalLight(types.XYZ(0, 1, 0), types.XYZ(2, 2, 2)),
		scene.NewSphereLight(types.XYZ(0, 5, 0), 1, types.XYZ(1, 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	lights := lt.Packed()

	rec := tables.SampleLight(&lights[0], types.Vec3{}, types.Vec2{0.5, 0.5})
	if !approx(rec.Distance, 2) || !approx(rec.Direction[1], 1) {
		t.Fatalf("expected quad center straight above at distance 2; got %v at %f", rec.Direction, rec.Distance)
	}
	if !approx(rec.Pdf, 4) {
		t.Fatalf("expected solid angle pdf 4; got %f", rec.Pdf)
	}

	// Points above the quad are behind its emitting side.
	if rec = tables.SampleLight(&lights[0], types.XYZ(0, 4, 0), types.Vec2{0.5, 0.5}); rec.Pdf != 0 {
		t.Fatalf("expected no contribution behind the light; got pdf %f", rec.Pdf)
	}

	rec = tables.SampleLight(&lights[1], types.Vec3{}, types.Vec2{0.3, 0.3})
	if rec.Pdf != 1 || !math.IsInf(float64(rec.Distance), 1) || rec.Emission != types.XYZ(2, 2, 2) {
		t.Fatalf("expected a deterministic directional sample; got %+v", rec)
	}

	// The bottom pole of the sphere faces the origin.
	rec = tables.SampleLight(&lights[2], types.Vec3{}, types.Vec2{0.5, 0.75})
	if !approx(rec.Distance, 4) || rec.Pdf <= 0 {
		t.Fatalf("expected sample at distance 4 with a positive pdf; got %f, %f", rec.Distance, rec.Pdf)
	}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}
