package kernel

import (
	"fmt"
	"math"

	"github.com/surajsubudhi10/PistonOptix/tracer/dispatch"
	"github.com/surajsubudhi10/PistonOptix/tracer/geometry"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// PrimaryRay builds a jittered camera ray through pixel (x, y). Row 0 is
// the top of the image.
func PrimaryRay(fr *Frame, x, y int, jitter types.Vec2) geometry.Ray {
	ndcX := (float32(x)+jitter[0])/float32(fr.Width)*2 - 1
	ndcY := 1 - (float32(y)+jitter[1])/float32(fr.Height)*2

	dir := fr.Camera[1].Mul(ndcX).Add(fr.Camera[2].Mul(ndcY)).Add(fr.Camera[3]).Normalize()
	return geometry.Ray{
		Origin: fr.Camera[0],
		Dir:    dir,
		TMin:   0,
		TMax:   float32(math.Inf(1)),
	}
}

// PathTrace is the default estimator. Direct lighting is estimated at every
// vertex by sampling one light; paths are extended by sampling the BRDF and
// terminated by russian roulette once the minimum path length is reached.
func PathTrace(fr *Frame, x, y int, rng *RNG) (types.Vec3, error) {
	var radiance types.Vec3
	throughput := types.XYZ(1, 1, 1)
	ray := PrimaryRay(fr, x, y, rng.Float2())

	for depth := uint32(0); depth < fr.PathLengths.Max; depth++ {
		hit, ok := fr.Root.Intersect(ray)
		if !ok {
			radiance = radiance.Add(throughput.MulVec(fr.Miss))
			break
		}

		matIndex := hit.Instance.MaterialIndex
		if matIndex < 0 || matIndex >= len(fr.Materials) {
			return radiance, fmt.Errorf("material index %d out of range (%d materials)", matIndex, len(fr.Materials))
		}

		mat := &fr.Materials[matIndex]
		surface := &dispatch.Surface{
			Material: mat,
			Normal:   hit.Normal,
			Wo:       ray.Dir.Neg(),
		}

		radiance = radiance.Add(throughput.MulVec(directLight(fr, hit.Position, mat.Brdf, surface, rng)))

		wi, ok := fr.Tables.SampleBrdf(mat.Brdf, surface, rng.Float2())
		if !ok {
			break
		}
		pdf := fr.Tables.PdfBrdf(mat.Brdf, surface, wi)
		cosI := wi.Dot(hit.Normal)
		if pdf <= 0 || cosI <= 0 {
			break
		}

		f := fr.Tables.EvalBrdf(mat.Brdf, surface, wi)
		throughput = throughput.MulVec(f.Mul(cosI / pdf))
		if throughput.MaxComponent() <= 0 {
			break
		}

		if depth+1 >= fr.PathLengths.Min {
			survive := clamp(throughput.MaxComponent(), 0.05, 0.95)
			if rng.Float() >= survive {
				break
			}
			throughput = throughput.Mul(1 / survive)
		}

		ray = geometry.Ray{
			Origin: hit.Position,
			Dir:    wi,
			TMin:   fr.Epsilon,
			TMax:   float32(math.Inf(1)),
		}
	}

	return radiance, nil
}

// Sample one light uniformly and return its unoccluded contribution.
func directLight(fr *Frame, p types.Vec3, brdf uint32, surface *dispatch.Surface, rng *RNG) types.Vec3 {
	numLights := len(fr.Lights)
	if numLights == 0 {
		return types.Vec3{}
	}

	index := int(rng.Float() * float32(numLights))
	if index >= numLights {
		index = numLights - 1
	}

	rec := fr.Tables.SampleLight(&fr.Lights[index], p, rng.Float2())
	if rec.Pdf <= 0 {
		return types.Vec3{}
	}

	cosI := rec.Direction.Dot(surface.Normal)
	if cosI <= 0 {
		return types.Vec3{}
	}

	shadow := geometry.Ray{
		Origin: p,
		Dir:    rec.Direction,
		TMin:   fr.Epsilon,
		TMax:   rec.Distance - fr.Epsilon,
	}
	if fr.Root.Occluded(shadow) {
		return types.Vec3{}
	}

	f := fr.Tables.EvalBrdf(brdf, surface, rec.Direction)
	return f.MulVec(rec.Emission).Mul(cosI * float32(numLights) / rec.Pdf)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
