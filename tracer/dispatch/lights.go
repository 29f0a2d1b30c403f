package dispatch

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// Sample a uniformly distributed point on the sphere surface.
func sphereSample(l *params.PackedLight, p types.Vec3, u types.Vec2) LightRecord {
	z := 1 - 2*u[0]
	r := sqrt(max32(0, 1-z*z))
	phi := twoPi * u[1]
	n := types.XYZ(r*cos(phi), r*sin(phi), z)

	return areaRecord(l, p, l.Position.Add(n.Mul(l.Radius)), n)
}

// Sample a uniformly distributed point on the parallelogram.
func quadSample(l *params.PackedLight, p types.Vec3, u types.Vec2) LightRecord {
	pos := l.Position.Add(l.U.Mul(u[0])).Add(l.V.Mul(u[1]))
	return areaRecord(l, p, pos, l.Direction)
}

// Directional lights are delta lights; the sample is deterministic and has
// no surface position.
func directionalSample(l *params.PackedLight, p types.Vec3, u types.Vec2) LightRecord {
	return LightRecord{
		Direction: l.Direction,
		Distance:  float32(math.Inf(1)),
		Emission:  l.Emission,
		Pdf:       1,
	}
}

// Convert an area sample into a solid angle sample. Only the side the
// normal faces emits.
func areaRecord(l *params.PackedLight, p, pos, normal types.Vec3) LightRecord {
	toLight := pos.Sub(p)
	dist := toLight.Len()
	if dist < minDot || l.Area <= 0 {
		return LightRecord{}
	}

	dir := toLight.Mul(1 / dist)
	cosL := -normal.Dot(dir)
	if cosL <= minDot {
		return LightRecord{}
	}

	return LightRecord{
		SurfacePos: pos,
		Direction:  dir,
		Distance:   dist,
		Emission:   l.Emission,
		Pdf:        dist * dist / (cosL * l.Area),
	}
}
