package scene

import "github.com/surajsubudhi10/PistonOptix/types"

// A Node places one or more meshes in the world. Every referenced mesh is
// instanced with the node's transform and material.
type Node struct {
	Name          string
	MaterialIndex int
	MeshIDs       []uint32

	// Object to world transform in row-major order.
	Transform types.Mat4
}

// Create a node referencing the given meshes.
func NewNode(name string, materialIndex int, transform types.Mat4, meshIDs ...uint32) Node {
	return Node{
		Name:          name,
		MaterialIndex: materialIndex,
		MeshIDs:       meshIDs,
		Transform:     transform,
	}
}
