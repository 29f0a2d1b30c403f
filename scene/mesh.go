package scene

import (
	"unsafe"

	"github.com/surajsubudhi10/PistonOptix/types"
)

// VertexAttributes holds the per-vertex data uploaded for a mesh. Each
// record takes 48 bytes.
type VertexAttributes struct {
	Vertex   types.Vec3
	Tangent  types.Vec3
	Normal   types.Vec3
	Texcoord types.Vec3
}

// The size of a single VertexAttributes record.
const VertexAttributesSize = int(unsafe.Sizeof(VertexAttributes{}))

// A triangle mesh. Indices are stored as a flat list with stride 3. Meshes
// are immutable once handed to the tracer.
type Mesh struct {
	ID         uint32
	Name       string
	Attributes []VertexAttributes
	Indices    []uint32
}

// Get the number of triangles described by the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Calculate the mesh bounding box in object space.
func (m *Mesh) BBox() [2]types.Vec3 {
	bbox := types.EmptyBBox()
	for _, attr := range m.Attributes {
		bbox[0] = types.MinVec3(bbox[0], attr.Vertex)
		bbox[1] = types.MaxVec3(bbox[1], attr.Vertex)
	}
	return bbox
}
