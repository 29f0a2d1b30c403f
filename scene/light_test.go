package scene

import (
	"math"
	"testing"

	"github.com/surajsubudhi10/PistonOptix/types"
)

func TestLightDerivedFields(t *testing.T) {
	sphere := NewSphereLight(types.XYZ(0, 4, 0), 2, types.XYZ(1, 1, 1))
	if exp := float32(16 * math.Pi); math.Abs(float64(sphere.Area-exp)) > 1e-4 {
		t.Fatalf("expected sphere light area to be %f; got %f", exp, sphere.Area)
	}
	if sphere.IsDelta() {
		t.Fatal("expected sphere light not to be a delta light")
	}

	quad := NewQuadLight(types.XYZ(0, 4, 0), types.XYZ(2, 0, 0), types.XYZ(0, 0, 3), types.XYZ(5, 5, 5))
	if quad.Area != 6 {
		t.Fatalf("expected quad light area to be 6; got %f", quad.Area)
	}
	if exp := types.XYZ(0, -1, 0); quad.Direction != exp {
		t.Fatalf("expected quad light direction to be %v; got %v", exp, quad.Direction)
	}

	dir := NewDirectionalLight(types.XYZ(0, 10, 0), types.XYZ(1, 1, 1))
	if exp := types.XYZ(0, 1, 0); dir.Direction != exp {
		t.Fatalf("expected directional light direction to be normalized; got %v", dir.Direction)
	}
	if !dir.IsDelta() {
		t.Fatal("expected directional light to be a delta light")
	}
}

func TestTypeNames(t *testing.T) {
	for brdf := Lambert; brdf < NumBrdfTypes; brdf++ {
		got, ok := BrdfTypeFromName(brdf.String())
		if !ok || got != brdf {
			t.Fatalf("expected name lookup of %s to succeed", brdf)
		}
	}
	for lt := SphereLight; lt < NumLightTypes; lt++ {
		got, ok := LightTypeFromName(lt.String())
		if !ok || got != lt {
			t.Fatalf("expected name lookup of %s to succeed", lt)
		}
	}
	if _, ok := BrdfTypeFromName("glass"); ok {
		t.Fatal("expected lookup of unknown brdf to fail")
	}
}
