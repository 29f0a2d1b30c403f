package geometry

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/tracer/device"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// A Ray in either world or object space. Dir does not need to be
// normalized; hit distances are measured in units of Dir.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	TMin   float32
	TMax   float32
}

// Get the point at distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// BoundsFunc calculates the object space bounding box of a primitive.
type BoundsFunc func(g *Geometry, prim int) [2]types.Vec3

// IntersectFunc tests a ray against a primitive and returns the hit distance
// together with the barycentric coordinates of the hit.
type IntersectFunc func(g *Geometry, prim int, ray *Ray) (t, u, v float32, hit bool)

// Register the triangle soup programs with the device.
func RegisterPrograms(dev *device.Device) (bounds, intersect device.ProgramID, err error) {
	if bounds, err = dev.CreateProgram("triangle_bounds", BoundsFunc(TriangleBounds)); err != nil {
		return device.InvalidProgram, device.InvalidProgram, err
	}
	if intersect, err = dev.CreateProgram("triangle_intersect", IntersectFunc(TriangleIntersect)); err != nil {
		return device.InvalidProgram, device.InvalidProgram, err
	}
	return bounds, intersect, nil
}

// TriangleBounds is the bounds program for indexed triangles.
func TriangleBounds(g *Geometry, prim int) [2]types.Vec3 {
	a, b, c := g.Corners(prim)
	return [2]types.Vec3{
		types.MinVec3(types.MinVec3(a.Vertex, b.Vertex), c.Vertex),
		types.MaxVec3(types.MaxVec3(a.Vertex, b.Vertex), c.Vertex),
	}
}

// TriangleIntersect is the Moller-Trumbore intersection program for
// indexed triangles.
func TriangleIntersect(g *Geometry, prim int, ray *Ray) (t, u, v float32, hit bool) {
	a, b, c := g.Corners(prim)
	e1 := b.Vertex.Sub(a.Vertex)
	e2 := c.Vertex.Sub(a.Vertex)

	p := ray.Dir.Cross(e2)
	det := e1.Dot(p)
	if float32(math.Abs(float64(det))) < 1e-12 {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(a.Vertex)
	u = s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = ray.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * invDet
	if t <= ray.TMin || t >= ray.TMax {
		return 0, 0, 0, false
	}

	return t, u, v, true
}
