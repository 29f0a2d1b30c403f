package params

import (
	"errors"
	"reflect"
	"testing"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

func TestPackedLayouts(t *testing.T) {
	if PackedMaterialSize != 32 {
		t.Fatalf("expected packed material size to be 32; got %d", PackedMaterialSize)
	}
	if PackedLightSize != 80 {
		t.Fatalf("expected packed light size to be 80; got %d", PackedLightSize)
	}
}

func TestMaterialTableRebuild(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	mt := NewMaterialTable(dev)
	buf, err := mt.Rebuild(testMaterials())
	if err != nil {
		t.Fatal(err)
	}

	if buf.Count() != 2 || buf.ElementSize() != PackedMaterialSize {
		t.Fatalf("expected buffer with 2 elements of %d bytes; got %d elements of %d bytes", PackedMaterialSize, buf.Count(), buf.ElementSize())
	}

	packed := mt.Packed()
	if packed[1].Brdf != uint32(scene.MicrofacetReflection) || packed[1].Roughness != 0.25 {
		t.Fatalf("expected material 1 to be packed in order; got %+v", packed[1])
	}
	if err = mt.Verify(); err != nil {
		t.Fatal(err)
	}

	// Rebuilding releases the previous buffer.
	if _, err = mt.Rebuild(testMaterials()[:1]); err != nil {
		t.Fatal(err)
	}
	if got := dev.LiveBuffers(); got != 1 {
		t.Fatalf("expected 1 live buffer after rebuild; got %d", got)
	}
}

func TestMaterialTableEmpty(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	mt := NewMaterialTable(dev)
	buf, err := mt.Rebuild(nil)
	if err != nil {
		t.Fatal(err)
	}
	if buf == nil || !buf.Allocated() {
		t.Fatal("expected an allocated buffer for an empty material list")
	}
	if buf.Count() != 0 {
		t.Fatalf("expected a zero element buffer; got %d elements", buf.Count())
	}
	if err = mt.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestMaterialTableUpdate(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	mt := NewMaterialTable(dev)
	if err := mt.Update(testMaterials()); !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("expected ErrNotBuilt; got %v", err)
	}

	buf, err := mt.Rebuild(testMaterials())
	if err != nil {
		t.Fatal(err)
	}

	items := testMaterials()
	items[0].Albedo = types.XYZ(0, 1, 0)
	items[0].Expanded = true
	if err = mt.Update(items); err != nil {
		t.Fatal(err)
	}
	if mt.Buffer() != buf {
		t.Fatal("expected update to reuse the existing buffer")
	}
	if mt.Packed()[0].Albedo != types.XYZ(0, 1, 0) {
		t.Fatalf("expected updated albedo to be flattened; got %v", mt.Packed()[0].Albedo)
	}

	if err = mt.Update(items[:1]); !errors.Is(err, ErrCountChanged) {
		t.Fatalf("expected ErrCountChanged; got %v", err)
	}
}

func TestMaterialTableSet(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	mt := NewMaterialTable(dev)
	if _, err := mt.Rebuild(testMaterials()); err != nil {
		t.Fatal(err)
	}

	before := append([]PackedMaterial(nil), mt.Packed()...)

	gui, _ := mt.Get(1)
	gui.Metallic = 0.75
	if err := mt.Set(1, gui); err != nil {
		t.Fatal(err)
	}

	after := mt.Packed()
	if !reflect.DeepEqual(before[0], after[0]) {
		t.Fatal("expected material 0 to be left untouched")
	}
	if after[1].Metallic != 0.75 {
		t.Fatalf("expected metallic 0.75; got %f", after[1].Metallic)
	}
	if got, _ := mt.Get(1); got.Metallic != 0.75 {
		t.Fatalf("expected host copy to be updated; got %f", got.Metallic)
	}

	if err := mt.Set(2, gui); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange; got %v", err)
	}
}

func TestMaterialTableVerify(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	mt := NewMaterialTable(dev)
	if err := mt.Verify(); !errors.Is(err, fault.ErrConsistency) {
		t.Fatalf("expected a consistency error for a missing buffer; got %v", err)
	}

	if _, err := mt.Rebuild(testMaterials()); err != nil {
		t.Fatal(err)
	}
	mt.Buffer().Release()
	if err := mt.Verify(); !errors.Is(err, fault.ErrConsistency) {
		t.Fatalf("expected a consistency error for a released buffer; got %v", err)
	}
}

func TestLightTable(t *testing.T) {
	dev := createTestDevice(t)
	defer dev.Close()

	lt := NewLightTable(dev)
	lights := []scene.Light{
		scene.NewSphereLight(types.XYZ(0, 5, 0), 0.5, types.XYZ(1, 1, 1)),
		scene.NewQuadLight(types.XYZ(0, 4, 0), types.XYZ(2, 0, 0), types.XYZ(0, 0, 3), types.XYZ(5, 5, 5)),
		scene.NewDirectionalLight(types.XYZ(0, 2, 0), types.XYZ(3, 3, 3)),
	}

	if _, err := lt.Rebuild(lights); err != nil {
		t.Fatal(err)
	}

	if count, _ := dev.Variable(VarNumberOfLights); count != uint32(3) {
		t.Fatalf("expected %s to be 3; got %v", VarNumberOfLights, count)
	}

	packed := lt.Packed()
	if packed[1].Type != uint32(scene.QuadLight) || packed[1].Area != 6 {
		t.Fatalf("expected quad light with area 6; got type %d area %f", packed[1].Type, packed[1].Area)
	}
	if packed[2].Delta != 1 || packed[0].Delta != 0 {
		t.Fatalf("expected only the directional light to be a delta light; got %d, %d", packed[0].Delta, packed[2].Delta)
	}
	if packed[2].Direction != types.XYZ(0, 1, 0) {
		t.Fatalf("expected directional light direction to be normalized; got %v", packed[2].Direction)
	}
	if err := lt.Verify(); err != nil {
		t.Fatal(err)
	}

	// Editing the spanning vectors recomputes the area when flattened.
	quad, _ := lt.Get(1)
	quad.V = types.XYZ(0, 0, 1)
	if err := lt.Set(1, quad); err != nil {
		t.Fatal(err)
	}
	if got := lt.Packed()[1].Area; got != 2 {
		t.Fatalf("expected area 2 after edit; got %f", got)
	}

	if _, err := lt.Rebuild(nil); err != nil {
		t.Fatal(err)
	}
	if count, _ := dev.Variable(VarNumberOfLights); count != uint32(0) {
		t.Fatalf("expected %s to be 0; got %v", VarNumberOfLights, count)
	}
	if err := lt.Verify(); err != nil {
		t.Fatal(err)
	}

	dev.SetVariable(VarNumberOfLights, uint32(4))
	if err := lt.Verify(); !errors.Is(err, fault.ErrConsistency) {
		t.Fatalf("expected a consistency error for a mismatched light count; got %v", err)
	}
}

func TestRebuildResourceFailure(t *testing.T) {
	dev := device.New("test", device.WithMemoryLimit(PackedMaterialSize))
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	mt := NewMaterialTable(dev)
	if _, err := mt.Rebuild(testMaterials()); !errors.Is(err, fault.ErrResource) {
		t.Fatalf("expected a resource error; got %v", err)
	}
	if mt.Buffer() != nil {
		t.Fatal("expected no buffer after a failed rebuild")
	}
}

func testMaterials() []MaterialGUI {
	return MaterialGUIs([]scene.Material{
		{Name: "red", Albedo: types.XYZ(1, 0, 0), Brdf: scene.Lambert},
		{Name: "metal", Albedo: types.XYZ(0.5, 0.5, 0.5), Metallic: 1, Roughness: 0.25, Brdf: scene.MicrofacetReflection},
	})
}

func createTestDevice(t *testing.T) *device.Device {
	dev := device.New("test")
	if err := dev.Init(); err != nil {
		t.Fatal(err)
	}
	return dev
}
