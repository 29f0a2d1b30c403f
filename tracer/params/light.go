package params

import (
	"fmt"
	"unsafe"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// PackedLight is the device layout of a light. Each vec3 shares a 16 byte
// slot with a scalar.
type PackedLight struct {
	Position  types.Vec3
	Area      float32
	Direction types.Vec3
	Radius    float32
	Emission  types.Vec3
	Type      uint32
	U         types.Vec3
	Delta     uint32
	V         types.Vec3
	_         uint32
}

// PackedLightSize is the stride of the light buffer.
const PackedLightSize = int(unsafe.Sizeof(PackedLight{}))

func packLight(l scene.Light) PackedLight {
	l.Derive()

	var delta uint32
	if l.IsDelta() {
		delta = 1
	}

	return PackedLight{
		Position:  l.Position,
		Area:      l.Area,
		Direction: l.Direction,
		Radius:    l.Radius,
		Emission:  l.Emission,
		Type:      uint32(l.Type),
		U:         l.U,
		Delta:     delta,
		V:         l.V,
	}
}

// LightTable mirrors the scene lights into the light buffer and publishes
// the light count to the device.
type LightTable struct {
	t *table[scene.Light, PackedLight]
}

// Create a light table backed by dev.
func NewLightTable(dev *device.Device) *LightTable {
	lt := &LightTable{
		t: newTable[scene.Light, PackedLight](dev, "light table", LightBufferName, packLight),
	}
	lt.t.onChange = func(count int) {
		dev.SetVariable(VarNumberOfLights, uint32(count))
	}
	return lt
}

// Allocate a new buffer sized for items and flatten them into it.
func (lt *LightTable) Rebuild(items []scene.Light) (*device.Buffer, error) {
	return lt.t.rebuild(items)
}

// Flatten items into the existing buffer. Fails with ErrCountChanged if
// the number of items differs from the last rebuild.
func (lt *LightTable) Update(items []scene.Light) error {
	return lt.t.update(items)
}

// Replace the light at index.
func (lt *LightTable) Set(index int, item scene.Light) error {
	return lt.t.set(index, item)
}

// Get a copy of the light at index.
func (lt *LightTable) Get(index int) (scene.Light, bool) {
	if index < 0 || index >= len(lt.t.items) {
		return scene.Light{}, false
	}
	return lt.t.items[index], true
}

func (lt *LightTable) Count() int {
	return len(lt.t.items)
}

func (lt *LightTable) Buffer() *device.Buffer {
	return lt.t.buffer
}

// Get a view of the packed lights. The view is invalidated by Rebuild.
func (lt *LightTable) Packed() []PackedLight {
	if lt.t.buffer == nil || lt.t.buffer.Count() == 0 {
		return nil
	}
	return unsafe.Slice((*PackedLight)(unsafe.Pointer(&lt.t.buffer.Bytes()[0])), lt.t.buffer.Count())
}

// Verify that the buffer matches the declared light count and that the
// published count agrees with it.
func (lt *LightTable) Verify() error {
	if err := lt.t.verify(); err != nil {
		return err
	}

	published, _ := lt.t.dev.Variable(VarNumberOfLights)
	if count, ok := published.(uint32); !ok || int(count) != lt.Count() {
		return fmt.Errorf("light table: %s is %v but %d lights are declared: %w", VarNumberOfLights, published, lt.Count(), fault.ErrConsistency)
	}
	return nil
}

func (lt *LightTable) Release() {
	lt.t.release()
}
