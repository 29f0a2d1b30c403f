// Package geometry uploads meshes to a device as indexed triangle soups.
package geometry

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/log"
	"github.com/surajsubudhi10/PistonOptix/scene"
	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

const (
	// Names of the buffers backing a geometry. Acceleration builders bind
	// triangle data by these names.
	VertexBufferName = "attributesBuffer"
	IndexBufferName  = "indicesBuffer"
)

// Triangle holds the three vertex indices of a primitive; 12 bytes.
type Triangle [3]uint32

// The size of a single index buffer element.
const TriangleSize = int(unsafe.Sizeof(Triangle{}))

// Geometry is the device copy of a mesh.
type Geometry struct {
	MeshID uint32
	Name   string

	Vertices *device.Buffer
	Indices  *device.Buffer

	// Fixed programs for indexed triangle soups.
	BoundsProgram    device.ProgramID
	IntersectProgram device.ProgramID

	// Typed views over the device buffers.
	attributes []scene.VertexAttributes
	triangles  []Triangle
}

// Get the number of primitives.
func (g *Geometry) PrimitiveCount() int {
	return len(g.triangles)
}

// Get the vertex indices of a primitive.
func (g *Geometry) Triangle(prim int) Triangle {
	return g.triangles[prim]
}

// Get the vertex attributes of a primitive's corners.
func (g *Geometry) Corners(prim int) (a, b, c *scene.VertexAttributes) {
	tri := g.triangles[prim]
	return &g.attributes[tri[0]], &g.attributes[tri[1]], &g.attributes[tri[2]]
}

// Calculate the object space bounding box of the whole geometry.
func (g *Geometry) BBox() [2]types.Vec3 {
	bbox := types.EmptyBBox()
	for prim := range g.triangles {
		b := TriangleBounds(g, prim)
		bbox[0] = types.MinVec3(bbox[0], b[0])
		bbox[1] = types.MaxVec3(bbox[1], b[1])
	}
	return bbox
}

// Release the device buffers.
func (g *Geometry) Release() {
	g.Vertices.Release()
	g.Indices.Release()
	g.attributes = nil
	g.triangles = nil
}

// Instance binds a geometry to a material. Each instance has exactly one
// material index.
type Instance struct {
	Geometry      *Geometry
	MaterialIndex int
}

// Builder converts meshes into device geometry.
type Builder struct {
	logger log.Logger
	dev    *device.Device

	boundsProgram    device.ProgramID
	intersectProgram device.ProgramID
}

// Create a builder that attaches the given bounds and intersection programs
// to every geometry it creates.
func NewBuilder(dev *device.Device, boundsProgram, intersectProgram device.ProgramID) *Builder {
	return &Builder{
		logger:           log.New("geometry builder"),
		dev:              dev,
		boundsProgram:    boundsProgram,
		intersectProgram: intersectProgram,
	}
}

// Build uploads a mesh to the device. The mesh must contain a multiple of
// 3 indices, each one referencing an existing vertex; otherwise Build fails
// without allocating any device memory. The upload is synchronous so the
// mesh may be modified once Build returns.
func (b *Builder) Build(mesh *scene.Mesh) (*Geometry, error) {
	if err := validateMesh(mesh); err != nil {
		return nil, err
	}
	if b.boundsProgram == device.InvalidProgram || b.intersectProgram == device.InvalidProgram {
		return nil, fmt.Errorf("geometry builder: mesh %d: triangle programs not registered: %w", mesh.ID, fault.ErrConsistency)
	}

	start := time.Now()
	g := &Geometry{
		MeshID:           mesh.ID,
		Name:             mesh.Name,
		Vertices:         b.dev.Buffer(VertexBufferName),
		Indices:          b.dev.Buffer(IndexBufferName),
		BoundsProgram:    b.boundsProgram,
		IntersectProgram: b.intersectProgram,
	}

	vertexCount := len(mesh.Attributes)
	triCount := len(mesh.Indices) / 3

	err := g.Vertices.Allocate(scene.VertexAttributesSize, vertexCount)
	if err == nil {
		err = g.Indices.Allocate(TriangleSize, triCount)
	}
	if err == nil && vertexCount > 0 {
		err = upload(g.Vertices, unsafe.Pointer(&mesh.Attributes[0]), vertexCount*scene.VertexAttributesSize)
	}
	if err == nil && triCount > 0 {
		err = upload(g.Indices, unsafe.Pointer(&mesh.Indices[0]), triCount*TriangleSize)
	}
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("geometry builder: mesh %d (%s): %w", mesh.ID, mesh.Name, err)
	}

	if vertexCount > 0 {
		g.attributes = unsafe.Slice((*scene.VertexAttributes)(unsafe.Pointer(&g.Vertices.Bytes()[0])), vertexCount)
	}
	if triCount > 0 {
		g.triangles = unsafe.Slice((*Triangle)(unsafe.Pointer(&g.Indices.Bytes()[0])), triCount)
	}

	b.logger.Infof("built geometry for mesh %d (%s): %d vertices, %d triangles in %d ms", mesh.ID, mesh.Name, vertexCount, triCount, time.Since(start).Nanoseconds()/1e6)
	return g, nil
}

func validateMesh(mesh *scene.Mesh) error {
	if mesh == nil {
		return fmt.Errorf("geometry builder: nil mesh: %w", fault.ErrBuildPrecondition)
	}

	if len(mesh.Indices)%3 != 0 {
		return fmt.Errorf("geometry builder: mesh %d (%s) has %d indices; expected a multiple of 3: %w", mesh.ID, mesh.Name, len(mesh.Indices), fault.ErrBuildPrecondition)
	}

	vertexCount := uint32(len(mesh.Attributes))
	for pos, idx := range mesh.Indices {
		if idx >= vertexCount {
			return fmt.Errorf("geometry builder: mesh %d (%s) index %d at position %d exceeds vertex count %d: %w", mesh.ID, mesh.Name, idx, pos, vertexCount, fault.ErrBuildPrecondition)
		}
	}

	return nil
}

// Copy size bytes from src into a mapped buffer.
func upload(buf *device.Buffer, src unsafe.Pointer, size int) error {
	data, err := buf.Map()
	if err != nil {
		return err
	}

	copy(data, unsafe.Slice((*byte)(src), size))
	return buf.Unmap()
}
