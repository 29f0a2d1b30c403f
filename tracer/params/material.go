package params

import (
	"unsafe"

	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// MaterialGUI is the host editable copy of a material. Fields that are
// only relevant to an editing UI are never packed.
type MaterialGUI struct {
	scene.Material

	// Whether the material panel is expanded in the editor.
	Expanded bool
}

// PackedMaterial is the device layout of a material.
type PackedMaterial struct {
	Albedo    types.Vec3
	Metallic  float32
	Roughness float32
	Brdf      uint32
	_         [2]uint32
}

// PackedMaterialSize is the stride of the material buffer.
const PackedMaterialSize = int(unsafe.Sizeof(PackedMaterial{}))

// Convert a scene material list into editable copies.
func MaterialGUIs(materials []scene.Material) []MaterialGUI {
	out := make([]MaterialGUI, len(materials))
	for idx, mat := range materials {
		out[idx] = MaterialGUI{Material: mat}
	}
	return out
}

func packMaterial(m MaterialGUI) PackedMaterial {
	return PackedMaterial{
		Albedo:    m.Albedo,
		Metallic:  m.Metallic,
		Roughness: m.Roughness,
		Brdf:      uint32(m.Brdf),
	}
}

// MaterialTable keeps the GUI material list and the packed material buffer
// in lockstep. A material index always addresses the same element in both.
type MaterialTable struct {
	t *table[MaterialGUI, PackedMaterial]
}

// Create a material table backed by dev.
func NewMaterialTable(dev *device.Device) *MaterialTable {
	return &MaterialTable{
		t: newTable[MaterialGUI, PackedMaterial](dev, "material table", MaterialBufferName, packMaterial),
	}
}

// Allocate a new buffer sized for items and flatten them into it.
func (mt *MaterialTable) Rebuild(items []MaterialGUI) (*device.Buffer, error) {
	return mt.t.rebuild(items)
}

// Flatten items into the existing buffer. Fails with ErrCountChanged if
// the number of items differs from the last rebuild.
func (mt *MaterialTable) Update(items []MaterialGUI) error {
	return mt.t.update(items)
}

// Replace the material at index.
func (mt *MaterialTable) Set(index int, item MaterialGUI) error {
	return mt.t.set(index, item)
}

// Get a copy of the material at index.
func (mt *MaterialTable) Get(index int) (MaterialGUI, bool) {
	if index < 0 || index >= len(mt.t.items) {
		return MaterialGUI{}, false
	}
	return mt.t.items[index], true
}

func (mt *MaterialTable) Count() int {
	return len(mt.t.items)
}

func (mt *MaterialTable) Buffer() *device.Buffer {
	return mt.t.buffer
}

// Get a view of the packed materials. The view is invalidated by Rebuild.
func (mt *MaterialTable) Packed() []PackedMaterial {
	if mt.t.buffer == nil || mt.t.buffer.Count() == 0 {
		return nil
	}
	return unsafe.Slice((*PackedMaterial)(unsafe.Pointer(&mt.t.buffer.Bytes()[0])), mt.t.buffer.Count())
}

// Verify that the buffer matches the declared material count.
func (mt *MaterialTable) Verify() error {
	return mt.t.verify()
}

func (mt *MaterialTable) Release() {
	mt.t.release()
}
