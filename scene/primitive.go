package scene

import (
	"fmt"
	"math"

	"github.com/surajsubudhi10/PistonOptix/types"
)

// Create a tessellated square in [-1, 1] on the plane whose normal is the
// given axis (0 = X, 1 = Y, 2 = Z).
func Plane(tessU, tessV, upAxis int) (*Mesh, error) {
	if tessU < 1 || tessV < 1 {
		return nil, fmt.Errorf("scene: invalid plane tessellation %dx%d", tessU, tessV)
	}

	var (
		corner  types.Vec3
		attr    VertexAttributes
		offsetF func(u, v float32) types.Vec3
	)

	switch upAxis {
	case 0:
		corner = types.XYZ(0, -1, 1)
		attr.Tangent = types.XYZ(0, 0, -1)
		attr.Normal = types.XYZ(1, 0, 0)
		offsetF = func(u, v float32) types.Vec3 { return types.XYZ(0, v, -u) }
	case 1:
		corner = types.XYZ(-1, 0, 1)
		attr.Tangent = types.XYZ(1, 0, 0)
		attr.Normal = types.XYZ(0, 1, 0)
		offsetF = func(u, v float32) types.Vec3 { return types.XYZ(u, 0, -v) }
	case 2:
		corner = types.XYZ(-1, -1, 0)
		attr.Tangent = types.XYZ(1, 0, 0)
		attr.Normal = types.XYZ(0, 0, 1)
		offsetF = func(u, v float32) types.Vec3 { return types.XYZ(u, v, 0) }
	default:
		return nil, fmt.Errorf("scene: invalid plane up axis %d", upAxis)
	}

	uTile := 2.0 / float32(tessU)
	vTile := 2.0 / float32(tessV)
	mesh := &Mesh{Name: "plane"}
	for j := 0; j <= tessV; j++ {
		v := float32(j) * vTile
		for i := 0; i <= tessU; i++ {
			u := float32(i) * uTile
			attr.Vertex = corner.Add(offsetF(u, v))
			attr.Texcoord = types.XYZ(u*0.5, v*0.5, 0)
			mesh.Attributes = append(mesh.Attributes, attr)
		}
	}

	mesh.Indices = gridIndices(tessU, tessV)
	return mesh, nil
}

// Create a unit quad on the XY plane facing +Z.
func UnitQuad() *Mesh {
	return Parallelogram(types.Vec3{}, types.XYZ(1, 0, 0), types.XYZ(0, 1, 0), types.XYZ(0, 0, 1))
}

// Create a parallelogram centered at position and spanned by the
// (unnormalized) vectors u and v.
func Parallelogram(position, u, v, normal types.Vec3) *Mesh {
	attr := VertexAttributes{
		Tangent: u.Normalize(),
		Normal:  normal,
	}

	corners := []struct {
		vertex   types.Vec3
		texcoord types.Vec3
	}{
		{position.Sub(u.Add(v).Mul(0.5)), types.XYZ(0, 0, 0)},
		{position.Add(u.Sub(v).Mul(0.5)), types.XYZ(1, 0, 0)},
		{position.Add(u.Add(v).Mul(0.5)), types.XYZ(1, 1, 0)},
		{position.Sub(u.Sub(v).Mul(0.5)), types.XYZ(0, 1, 0)},
	}

	mesh := &Mesh{Name: "parallelogram"}
	for _, c := range corners {
		attr.Vertex = c.vertex
		attr.Texcoord = c.texcoord
		mesh.Attributes = append(mesh.Attributes, attr)
	}
	mesh.Indices = []uint32{0, 1, 2, 2, 3, 0}
	return mesh
}

// Create an axis-aligned cube spanning [-1, 1] built from 12 triangles.
func Box() *Mesh {
	faces := []struct {
		normal, tangent, bitangent types.Vec3
	}{
		{types.XYZ(-1, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0)},
		{types.XYZ(1, 0, 0), types.XYZ(0, 0, -1), types.XYZ(0, 1, 0)},
		{types.XYZ(0, -1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, 1)},
		{types.XYZ(0, 1, 0), types.XYZ(1, 0, 0), types.XYZ(0, 0, -1)},
		{types.XYZ(0, 0, -1), types.XYZ(-1, 0, 0), types.XYZ(0, 1, 0)},
		{types.XYZ(0, 0, 1), types.XYZ(1, 0, 0), types.XYZ(0, 1, 0)},
	}

	mesh := &Mesh{Name: "box"}
	for _, f := range faces {
		face := Parallelogram(f.normal, f.tangent.Mul(2), f.bitangent.Mul(2), f.normal)
		base := uint32(len(mesh.Attributes))
		mesh.Attributes = append(mesh.Attributes, face.Attributes...)
		for _, idx := range face.Indices {
			mesh.Indices = append(mesh.Indices, base+idx)
		}
	}

	return mesh
}

// Create a UV sphere centered at the origin. Starting at the south pole,
// maxTheta controls how much of the sphere is generated (Pi for a closed
// sphere).
func Sphere(tessU, tessV int, radius, maxTheta float32) (*Mesh, error) {
	if tessU < 3 || tessV < 3 {
		return nil, fmt.Errorf("scene: invalid sphere tessellation %dx%d", tessU, tessV)
	}

	phiStep := 2.0 * math.Pi / float64(tessU)
	thetaStep := float64(maxTheta) / float64(tessV-1)

	mesh := &Mesh{Name: "sphere"}
	for lat := 0; lat < tessV; lat++ {
		theta := float64(lat) * thetaStep
		sinTheta, cosTheta := float32(math.Sin(theta)), float32(math.Cos(theta))
		texV := float32(lat) / float32(tessV-1)

		// The first and last vertex of each ring share a position but not
		// their texture coordinates.
		for lon := 0; lon <= tessU; lon++ {
			phi := float64(lon) * phiStep
			sinPhi, cosPhi := float32(math.Sin(phi)), float32(math.Cos(phi))

			normal := types.XYZ(cosPhi*sinTheta, -cosTheta, -sinPhi*sinTheta)
			mesh.Attributes = append(mesh.Attributes, VertexAttributes{
				Vertex:   normal.Mul(radius),
				Tangent:  types.XYZ(-sinPhi, 0, -cosPhi),
				Normal:   normal,
				Texcoord: types.XYZ(float32(lon)/float32(tessU), texV, 0),
			})
		}
	}

	mesh.Indices = gridIndices(tessU, tessV-1)
	return mesh, nil
}

// Create a torus around the Y axis. The tube of radius outerRadius follows
// a circle of radius innerRadius.
func Torus(tessU, tessV int, innerRadius, outerRadius float32) (*Mesh, error) {
	if tessU < 3 || tessV < 3 {
		return nil, fmt.Errorf("scene: invalid torus tessellation %dx%d", tessU, tessV)
	}

	uStep := 2.0 * math.Pi / float64(tessU)
	vStep := 2.0 * math.Pi / float64(tessV)

	mesh := &Mesh{Name: "torus"}
	for lat := 0; lat <= tessV; lat++ {
		theta := float64(lat) * vStep
		sinTheta, cosTheta := float32(math.Sin(theta)), float32(math.Cos(theta))

		for lon := 0; lon <= tessU; lon++ {
			phi := float64(lon) * uStep
			sinPhi, cosPhi := float32(math.Sin(phi)), float32(math.Cos(phi))

			center := types.XYZ(cosPhi*innerRadius, 0, -sinPhi*innerRadius)
			normal := types.XYZ(cosPhi*cosTheta, sinTheta, -sinPhi*cosTheta)
			mesh.Attributes = append(mesh.Attributes, VertexAttributes{
				Vertex:   center.Add(normal.Mul(outerRadius)),
				Tangent:  types.XYZ(-sinPhi, 0, -cosPhi),
				Normal:   normal,
				Texcoord: types.XYZ(float32(lon)/float32(tessU), float32(lat)/float32(tessV), 0),
			})
		}
	}

	mesh.Indices = gridIndices(tessU, tessV)
	return mesh, nil
}

// Generate two triangles per cell of a (cols+1) x (rows+1) vertex grid.
func gridIndices(cols, rows int) []uint32 {
	stride := uint32(cols + 1)
	indices := make([]uint32, 0, 6*cols*rows)
	for j := uint32(0); j < uint32(rows); j++ {
		for i := uint32(0); i < uint32(cols); i++ {
			indices = append(indices,
				j*stride+i, j*stride+i+1, (j+1)*stride+i+1,
				(j+1)*stride+i+1, (j+1)*stride+i, j*stride+i,
			)
		}
	}
	return indices
}
