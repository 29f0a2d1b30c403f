// Package accel implements the acceleration structures used by the tracer.
package accel

import (
	"fmt"
	"strconv"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// Builder selects the algorithm used for building an acceleration structure.
type Builder string

const (
	Trbvh   Builder = "Trbvh"
	Sbvh    Builder = "Sbvh"
	Bvh     Builder = "Bvh"
	NoAccel Builder = "NoAccel"
)

// Parse a builder name.
func ParseBuilder(name string) (Builder, error) {
	switch b := Builder(name); b {
	case Trbvh, Sbvh, Bvh, NoAccel:
		return b, nil
	}

	return "", fmt.Errorf("accel: unknown builder %q", name)
}

// SupportsSplits returns true for builders that read triangle data directly
// from the geometry buffers and can therefore split primitives.
func (b Builder) SupportsSplits() bool {
	return b == Trbvh || b == Sbvh
}

// Minimum leaf size used by each builder.
func (b Builder) minLeafItems(itemCount int) int {
	switch b {
	case Sbvh:
		return 1
	case NoAccel:
		return itemCount
	}
	return 4
}

// Property names understood by split-capable builders.
const (
	PropVertexBufferName   = "vertex_buffer_name"
	PropVertexBufferStride = "vertex_buffer_stride"
	PropIndexBufferName    = "index_buffer_name"
	PropIndexBufferStride  = "index_buffer_stride"
)

// TriangleLayout tells a split-capable builder how to read triangle data
// from the geometry buffers. A stride that does not match the bound buffer
// corrupts the hierarchy so strides are always explicit and checked.
type TriangleLayout struct {
	VertexBufferName string
	VertexStride     int
	IndexBufferName  string
	IndexStride      int
}

// Acceleration is a bounding volume hierarchy over a list of items.
type Acceleration struct {
	builder Builder
	layout  *TriangleLayout
	props   map[string]string

	nodes []Node

	// Leaves reference ranges of this list which holds the original item
	// indices.
	itemIndices []uint32

	dirty bool
}

// Create an acceleration structure.
func New(builder Builder) *Acceleration {
	return &Acceleration{
		builder: builder,
		props:   make(map[string]string),
		dirty:   true,
	}
}

// Get the builder.
func (a *Acceleration) Builder() Builder {
	return a.builder
}

// Configure the triangle buffer layout. Only split-capable builders accept
// a layout.
func (a *Acceleration) SetTriangleLayout(layout TriangleLayout) error {
	if !a.builder.SupportsSplits() {
		return fmt.Errorf("accel: builder %s does not read triangle buffers", a.builder)
	}
	if layout.VertexBufferName == "" || layout.IndexBufferName == "" {
		return fmt.Errorf("accel: triangle layout requires vertex and index buffer names")
	}
	if layout.VertexStride <= 0 || layout.IndexStride <= 0 {
		return fmt.Errorf("accel: invalid triangle layout strides (vertex %d, index %d)", layout.VertexStride, layout.IndexStride)
	}

	a.layout = &layout
	a.props[PropVertexBufferName] = layout.VertexBufferName
	a.props[PropVertexBufferStride] = strconv.Itoa(layout.VertexStride)
	a.props[PropIndexBufferName] = layout.IndexBufferName
	a.props[PropIndexBufferStride] = strconv.Itoa(layout.IndexStride)
	a.dirty = true
	return nil
}

// Get a builder property.
func (a *Acceleration) Property(name string) (string, bool) {
	v, ok := a.props[name]
	return v, ok
}

// Bind checks the configured triangle layout against the buffers it will
// read. Acceleration structures without a layout accept any buffers.
func (a *Acceleration) Bind(vertices, indices *device.Buffer) error {
	if a.layout == nil {
		return nil
	}

	if vertices.Name() != a.layout.VertexBufferName || indices.Name() != a.layout.IndexBufferName {
		return fmt.Errorf(
			"accel: layout expects buffers %q and %q; got %q and %q: %w",
			a.layout.VertexBufferName, a.layout.IndexBufferName, vertices.Name(), indices.Name(), fault.ErrConsistency,
		)
	}
	if vertices.ElementSize() != a.layout.VertexStride {
		return fmt.Errorf("accel: vertex stride %d does not match buffer %s element size %d: %w", a.layout.VertexStride, vertices.Name(), vertices.ElementSize(), fault.ErrConsistency)
	}
	if indices.ElementSize() != a.layout.IndexStride {
		return fmt.Errorf("accel: index stride %d does not match buffer %s element size %d: %w", a.layout.IndexStride, indices.Name(), indices.ElementSize(), fault.ErrConsistency)
	}

	return nil
}

// Mark the structure for rebuilding.
func (a *Acceleration) MarkDirty() {
	a.dirty = true
}

// Check whether the structure needs to be rebuilt.
func (a *Acceleration) Dirty() bool {
	return a.dirty
}

// Get the flattened hierarchy.
func (a *Acceleration) Nodes() []Node {
	return a.nodes
}

// Get the item indices referenced by leaf nodes.
func (a *Acceleration) ItemIndices() []uint32 {
	return a.itemIndices
}

// Build the hierarchy over items with the given bounding boxes.
func (a *Acceleration) Build(bounds [][2]types.Vec3) error {
	for idx, bbox := range bounds {
		if !bbox[0].IsFinite() || !bbox[1].IsFinite() {
			return fmt.Errorf("accel: item %d has a non-finite bounding box: %w", idx, fault.ErrResource)
		}
	}

	workList := make([]BoundedVolume, len(bounds))
	for idx, bbox := range bounds {
		workList[idx] = &item{
			index:  uint32(idx),
			bbox:   bbox,
			center: bbox[0].Add(bbox[1]).Mul(0.5),
		}
	}

	itemIndices := make([]uint32, 0, len(bounds))
	leafCb := func(leaf *Node, items []BoundedVolume) {
		leaf.SetPrimitives(uint32(len(itemIndices)), uint32(len(items)))
		for _, it := range items {
			itemIndices = append(itemIndices, it.(*item).index)
		}
	}

	a.nodes = BuildBVH(workList, a.builder.minLeafItems(len(workList)), leafCb, SurfaceAreaHeuristic)
	a.itemIndices = itemIndices
	a.dirty = false
	return nil
}

// Traverse the hierarchy along a ray. For every item whose leaf box is hit
// within [tMin, tMax], visit is invoked with the current tMax and returns the
// updated tMax (e.g. the closest hit so far). Traversal stops early if visit
// returns a negative value. Returns the final tMax.
func (a *Acceleration) Traverse(origin, dir types.Vec3, tMin, tMax float32, visit func(itemIndex uint32, tMax float32) float32) float32 {
	if len(a.nodes) == 0 {
		return tMax
	}

	invDir := types.Vec3{1 / dir[0], 1 / dir[1], 1 / dir[2]}

	var stack [64]int32
	stackLen := 1
	stack[0] = 0

	for stackLen > 0 {
		stackLen--
		node := &a.nodes[stack[stackLen]]
		if !slabTest(node.Min, node.Max, origin, invDir, tMin, tMax) {
			continue
		}

		if node.IsLeaf() {
			first, count := node.GetPrimitives()
			for i := first; i < first+count; i++ {
				tMax = visit(a.itemIndices[i], tMax)
				if tMax < 0 {
					return tMax
				}
			}
			continue
		}

		if stackLen+2 > len(stack) {
			// Degenerate hierarchy; fall back to a linear scan.
			return a.traverseLinear(tMax, visit)
		}
		stack[stackLen] = node.RData
		stack[stackLen+1] = node.LData
		stackLen += 2
	}

	return tMax
}

func (a *Acceleration) traverseLinear(tMax float32, visit func(uint32, float32) float32) float32 {
	for _, idx := range a.itemIndices {
		tMax = visit(idx, tMax)
		if tMax < 0 {
			return tMax
		}
	}
	return tMax
}

func slabTest(min, max, origin, invDir types.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		t0 := (min[axis] - origin[axis]) * invDir[axis]
		t1 := (max[axis] - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		// NaN comparisons are false; keep the current interval in that case.
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}

type item struct {
	index  uint32
	bbox   [2]types.Vec3
	center types.Vec3
}

func (it *item) BBox() [2]types.Vec3 {
	return it.bbox
}

func (it *item) Center() types.Vec3 {
	return it.center
}
