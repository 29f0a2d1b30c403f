// Package graph links device geometry into a two level hierarchy of
// transforms and acceleration structures with a single traversal entry
// point.
package graph

import (
	"fmt"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/tracer/accel"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/geometry"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// GeometryGroup collects geometry instances under a bottom-level
// acceleration structure.
type GeometryGroup struct {
	Children []*geometry.Instance
	Accel    *accel.Acceleration

	// Resolved intersection programs, one per child.
	intersect []geometry.IntersectFunc

	// Offset of each child's primitives in the acceleration item space.
	primOffsets []uint32
	bbox        [2]types.Vec3
}

// Create a geometry group.
func NewGeometryGroup(acc *accel.Acceleration, children ...*geometry.Instance) *GeometryGroup {
	return &GeometryGroup{
		Children: children,
		Accel:    acc,
	}
}

// Build the bottom-level acceleration structure using the bounds program
// attached to each child's geometry.
func (gg *GeometryGroup) Build(dev *device.Device) error {
	gg.intersect = gg.intersect[:0]
	gg.primOffsets = gg.primOffsets[:0]

	var bounds [][2]types.Vec3
	for _, child := range gg.Children {
		g := child.Geometry
		if err := gg.Accel.Bind(g.Vertices, g.Indices); err != nil {
			return fmt.Errorf("graph: geometry %s: %w", g.Name, err)
		}

		boundsFn, intersectFn, err := resolvePrograms(dev, g)
		if err != nil {
			return err
		}

		gg.intersect = append(gg.intersect, intersectFn)
		gg.primOffsets = append(gg.primOffsets, uint32(len(bounds)))
		for prim := 0; prim < g.PrimitiveCount(); prim++ {
			bounds = append(bounds, boundsFn(g, prim))
		}
	}

	if err := gg.Accel.Build(bounds); err != nil {
		return err
	}

	if len(bounds) == 0 {
		gg.bbox = [2]types.Vec3{}
		return nil
	}

	gg.bbox = [2]types.Vec3{
		{inf, inf, inf},
		{-inf, -inf, -inf},
	}
	for _, b := range bounds {
		gg.bbox[0] = types.MinVec3(gg.bbox[0], b[0])
		gg.bbox[1] = types.MaxVec3(gg.bbox[1], b[1])
	}
	return nil
}

// Get the object space bounding box. Only valid after Build.
func (gg *GeometryGroup) BBox() [2]types.Vec3 {
	return gg.bbox
}

// Split an acceleration item index into a child and primitive index.
func (gg *GeometryGroup) locate(item uint32) (child int, prim int) {
	child = len(gg.primOffsets) - 1
	for child > 0 && gg.primOffsets[child] > item {
		child--
	}
	return child, int(item - gg.primOffsets[child])
}

func resolvePrograms(dev *device.Device, g *geometry.Geometry) (geometry.BoundsFunc, geometry.IntersectFunc, error) {
	boundsProg, err := dev.Program(g.BoundsProgram)
	if err != nil {
		return nil, nil, fmt.Errorf("graph: geometry %s bounds program: %v: %w", g.Name, err, fault.ErrConsistency)
	}
	intersectProg, err := dev.Program(g.IntersectProgram)
	if err != nil {
		return nil, nil, fmt.Errorf("graph: geometry %s intersect program: %v: %w", g.Name, err, fault.ErrConsistency)
	}

	boundsFn, ok := boundsProg.Fn.(geometry.BoundsFunc)
	if !ok {
		return nil, nil, fmt.Errorf("graph: program %s is not a bounds program: %w", boundsProg.Name, fault.ErrConsistency)
	}
	intersectFn, ok := intersectProg.Fn.(geometry.IntersectFunc)
	if !ok {
		return nil, nil, fmt.Errorf("graph: program %s is not an intersection program: %w", intersectProg.Name, fault.ErrConsistency)
	}

	return boundsFn, intersectFn, nil
}

// Transform places a geometry group in the world. The inverse is always
// derived from the forward matrix.
type Transform struct {
	matrix  types.Mat4
	inverse types.Mat4
	Child   *GeometryGroup
}

// Create a transform node. Fails if the matrix is singular.
func NewTransform(matrix types.Mat4, child *GeometryGroup) (*Transform, error) {
	inverse, ok := matrix.Inv()
	if !ok {
		return nil, fmt.Errorf("graph: transform matrix is not invertible: %w", fault.ErrBuildPrecondition)
	}

	return &Transform{
		matrix:  matrix,
		inverse: inverse,
		Child:   child,
	}, nil
}

// Get the object to world matrix.
func (t *Transform) Matrix() types.Mat4 {
	return t.matrix
}

// Get the world to object matrix.
func (t *Transform) Inverse() types.Mat4 {
	return t.inverse
}

// Calculate the world space bounding box of the transformed child.
func (t *Transform) WorldBBox() [2]types.Vec3 {
	local := t.Child.BBox()
	out := [2]types.Vec3{{inf, inf, inf}, {-inf, -inf, -inf}}
	for corner := 0; corner < 8; corner++ {
		p := types.Vec3{
			local[corner&1][0],
			local[(corner>>1)&1][1],
			local[(corner>>2)&1][2],
		}
		wp := t.matrix.MulPoint(p)
		out[0] = types.MinVec3(out[0], wp)
		out[1] = types.MaxVec3(out[1], wp)
	}
	return out
}

// RootGroup is the traversal entry point. Children can only be appended.
type RootGroup struct {
	children []*Transform
	Accel    *accel.Acceleration
}

// Create a root group with a top-level acceleration structure.
func NewRootGroup(acc *accel.Acceleration) *RootGroup {
	return &RootGroup{Accel: acc}
}

// Append a transform and mark the top-level structure dirty.
func (r *RootGroup) Append(t *Transform) {
	r.children = append(r.children, t)
	r.Accel.MarkDirty()
}

// Get a copy of the child list.
func (r *RootGroup) Children() []*Transform {
	return append([]*Transform(nil), r.children...)
}

// Get the number of children.
func (r *RootGroup) ChildCount() int {
	return len(r.children)
}

// Build the top-level acceleration structure over the world space bounds
// of all children. Child groups must be built first.
func (r *RootGroup) Build() error {
	bounds := make([][2]types.Vec3, len(r.children))
	for idx, child := range r.children {
		bounds[idx] = child.WorldBBox()
	}
	return r.Accel.Build(bounds)
}
