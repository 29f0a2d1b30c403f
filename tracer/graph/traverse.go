package graph

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/tracer/geometry"
	"github.com/surajsubudhi10/PistonOptix/types"
)

var inf = float32(math.Inf(1))

// Hit describes the closest intersection along a ray.
type Hit struct {
	T         float32
	Instance  *geometry.Instance
	Primitive int

	// World space hit position, interpolated shading normal and geometric
	// normal. Normals face the incoming ray.
	Position        types.Vec3
	Normal          types.Vec3
	GeometricNormal types.Vec3
}

// Intersect finds the closest hit along ray.
func (r *RootGroup) Intersect(ray geometry.Ray) (Hit, bool) {
	var (
		hit       Hit
		found     bool
		hitXform  *Transform
		hitGroup  *GeometryGroup
		hitU      float32
		hitV      float32
		hitChild  int
		objectRay geometry.Ray
	)

	r.Accel.Traverse(ray.Origin, ray.Dir, ray.TMin, ray.TMax, func(childIndex uint32, tMax float32) float32 {
		xform := r.children[childIndex]
		group := xform.Child

		// Directions are not renormalized so distances stay in world units.
		objectRay = geometry.Ray{
			Origin: xform.inverse.MulPoint(ray.Origin),
			Dir:    xform.inverse.MulVector(ray.Dir),
			TMin:   ray.TMin,
			TMax:   tMax,
		}

		return group.Accel.Traverse(objectRay.Origin, objectRay.Dir, objectRay.TMin, tMax, func(item uint32, tMax float32) float32 {
			child, prim := group.locate(item)
			objectRay.TMax = tMax
			t, u, v, ok := group.intersect[child](group.Children[child].Geometry, prim, &objectRay)
			if !ok {
				return tMax
			}

			found = true
			hit.T = t
			hit.Primitive = prim
			hitXform, hitGroup, hitChild = xform, group, child
			hitU, hitV = u, v
			return t
		})
	})

	if !found {
		return hit, false
	}

	hit.Instance = hitGroup.Children[hitChild]
	hit.Position = ray.At(hit.T)

	a, b, c := hit.Instance.Geometry.Corners(hit.Primitive)
	geoNormal := b.Vertex.Sub(a.Vertex).Cross(c.Vertex.Sub(a.Vertex))
	shadingNormal := a.Normal.Mul(1 - hitU - hitV).Add(b.Normal.Mul(hitU)).Add(c.Normal.Mul(hitV))

	hit.GeometricNormal = hitXform.inverse.MulNormal(geoNormal)
	hit.Normal = hitXform.inverse.MulNormal(shadingNormal)
	if hit.Normal == (types.Vec3{}) {
		hit.Normal = hit.GeometricNormal
	}

	// Face forward
	if hit.GeometricNormal.Dot(ray.Dir) > 0 {
		hit.GeometricNormal = hit.GeometricNormal.Neg()
	}
	if hit.Normal.Dot(hit.GeometricNormal) < 0 {
		hit.Normal = hit.Normal.Neg()
	}

	return hit, true
}

// Occluded returns true if anything is hit along ray.
func (r *RootGroup) Occluded(ray geometry.Ray) bool {
	occluded := false
	r.Accel.Traverse(ray.Origin, ray.Dir, ray.TMin, ray.TMax, func(childIndex uint32, tMax float32) float32 {
		xform := r.children[childIndex]
		group := xform.Child
		objectRay := geometry.Ray{
			Origin: xform.inverse.MulPoint(ray.Origin),
			Dir:    xform.inverse.MulVector(ray.Dir),
			TMin:   ray.TMin,
			TMax:   tMax,
		}

		return group.Accel.Traverse(objectRay.Origin, objectRay.Dir, objectRay.TMin, tMax, func(item uint32, tMax float32) float32 {
			child, prim := group.locate(item)
			if _, _, _, ok := group.intersect[child](group.Children[child].Geometry, prim, &objectRay); ok {
				occluded = true
				return -1
			}
			return tMax
		})
	})

	return occluded
}
