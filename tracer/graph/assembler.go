package graph

import (
	"fmt"
	"time"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/accel"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/tracer/geometry"
)

// Assembler links scene nodes into a root group.
type Assembler struct {
	logger   log.Logger
	dev      *device.Device
	geoBuild *geometry.Builder
	builder  accel.Builder

	// Geometry built so far, keyed by mesh id.
	geometry map[uint32]*geometry.Geometry
}

// Create an assembler that uses builder for every acceleration structure.
func NewAssembler(dev *device.Device, geoBuild *geometry.Builder, builder accel.Builder) *Assembler {
	return &Assembler{
		logger:   log.New("scene assembler"),
		dev:      dev,
		geoBuild: geoBuild,
		builder:  builder,
		geometry: make(map[uint32]*geometry.Geometry),
	}
}

// Assemble builds a root group with one transform per (node, mesh) pair in
// node order. Geometry is shared between nodes referencing the same mesh
// while each pair gets its own instance and group so that material
// assignments stay independent. On error no root is returned and any
// geometry built by this call is released.
func (a *Assembler) Assemble(nodes []scene.Node, meshes map[uint32]*scene.Mesh) (*RootGroup, error) {
	start := time.Now()

	var built []uint32
	fail := func(err error) (*RootGroup, error) {
		for _, meshID := range built {
			a.geometry[meshID].Release()
			delete(a.geometry, meshID)
		}
		return nil, err
	}

	root := NewRootGroup(accel.New(a.builder))
	for nodeIndex, node := range nodes {
		for _, meshID := range node.MeshIDs {
			geo, err := a.geometryFor(meshID, meshes)
			if err != nil {
				return fail(fmt.Errorf("scene assembler: node %d (%s): %w", nodeIndex, node.Name, err))
			}
			if geo.isNew {
				built = append(built, meshID)
			}

			group, err := a.group(geo.Geometry, node.MaterialIndex)
			if err != nil {
				return fail(fmt.Errorf("scene assembler: node %d (%s): %w", nodeIndex, node.Name, err))
			}

			xform, err := NewTransform(node.Transform, group)
			if err != nil {
				return fail(fmt.Errorf("scene assembler: node %d (%s): %w", nodeIndex, node.Name, err))
			}
			root.Append(xform)
		}
	}

	if err := root.Build(); err != nil {
		return fail(fmt.Errorf("scene assembler: top level acceleration: %w", err))
	}

	a.logger.Noticef("assembled %d instances from %d nodes (%d meshes uploaded) in %d ms", root.ChildCount(), len(nodes), len(built), time.Since(start).Nanoseconds()/1e6)
	return root, nil
}

// Release all geometry built by this assembler.
func (a *Assembler) Release() {
	for meshID, geo := range a.geometry {
		geo.Release()
		delete(a.geometry, meshID)
	}
}

type cachedGeometry struct {
	*geometry.Geometry
	isNew bool
}

func (a *Assembler) geometryFor(meshID uint32, meshes map[uint32]*scene.Mesh) (cachedGeometry, error) {
	if geo, exists := a.geometry[meshID]; exists {
		return cachedGeometry{Geometry: geo}, nil
	}

	mesh, exists := meshes[meshID]
	if !exists || mesh == nil {
		return cachedGeometry{}, fmt.Errorf("mesh %d not found in mesh cache: %w", meshID, fault.ErrBuildPrecondition)
	}

	geo, err := a.geoBuild.Build(mesh)
	if err != nil {
		return cachedGeometry{}, err
	}
	a.geometry[meshID] = geo
	return cachedGeometry{Geometry: geo, isNew: true}, nil
}

func (a *Assembler) group(geo *geometry.Geometry, materialIndex int) (*GeometryGroup, error) {
	acc := accel.New(a.builder)
	if a.builder.SupportsSplits() {
		err := acc.SetTriangleLayout(accel.TriangleLayout{
			VertexBufferName: geometry.VertexBufferName,
			VertexStride:     scene.VertexAttributesSize,
			IndexBufferName:  geometry.IndexBufferName,
			IndexStride:      geometry.TriangleSize,
		})
		if err != nil {
			return nil, err
		}
	}

	group := NewGeometryGroup(acc, &geometry.Instance{
		Geometry:      geo,
		MaterialIndex: materialIndex,
	})
	if err := group.Build(a.dev); err != nil {
		return nil, err
	}
	return group, nil
}
