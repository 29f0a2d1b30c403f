package dispatch

import (
	"github.com/surajsubudhi10/PistonOptix/types"
)

// Lambert

func lambertSample(s *Surface, u types.Vec2) (types.Vec3, bool) {
	return toWorld(cosineHemisphere(u), s.Normal), true
}

func lambertEval(s *Surface, wi types.Vec3) types.Vec3 {
	if wi.Dot(s.Normal) <= 0 {
		return types.Vec3{}
	}
	return s.Material.Albedo.Mul(invPi)
}

func lambertPdf(s *Surface, wi types.Vec3) float32 {
	return max32(0, wi.Dot(s.Normal)) * invPi
}

// Phong: a diffuse lobe weighted by 1-metallic plus a specular lobe around
// the mirror direction. Roughness maps to the specular exponent.

func phongExponent(roughness float32) float32 {
	r := max32(roughness, 0.01)
	return max32(1, 2/(r*r)-2)
}

func phongSpecularProb(s *Surface) float32 {
	m := s.Material.Metallic
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

func phongSample(s *Surface, u types.Vec2) (types.Vec3, bool) {
	ps := phongSpecularProb(s)
	if u[0] >= ps {
		// Remap u[0] to [0, 1) for the diffuse lobe.
		u[0] = (u[0] - ps) / (1 - ps)
		return toWorld(cosineHemisphere(u), s.Normal), true
	}

	u[0] /= ps
	e := phongExponent(s.Material.Roughness)
	cosA := pow(u[0], 1/(e+1))
	sinA := sqrt(max32(0, 1-cosA*cosA))
	phi := twoPi * u[1]
	wi := toWorld(types.XYZ(sinA*cos(phi), sinA*sin(phi), cosA), reflect(s.Wo, s.Normal))
	return wi, wi.Dot(s.Normal) > 0
}

func phongEval(s *Surface, wi types.Vec3) types.Vec3 {
	if wi.Dot(s.Normal) <= 0 {
		return types.Vec3{}
	}

	ps := phongSpecularProb(s)
	e := phongExponent(s.Material.Roughness)
	cosA := max32(0, wi.Dot(reflect(s.Wo, s.Normal)))
	spec := (e + 2) * invPi * 0.5 * pow(cosA, e)
	return s.Material.Albedo.Mul((1-ps)*invPi + ps*spec)
}

func phongPdf(s *Surface, wi types.Vec3) float32 {
	cosN := wi.Dot(s.Normal)
	if cosN <= 0 {
		return 0
	}

	ps := phongSpecularProb(s)
	e := phongExponent(s.Material.Roughness)
	cosA := max32(0, wi.Dot(reflect(s.Wo, s.Normal)))
	return (1-ps)*cosN*invPi + ps*(e+1)*invPi*0.5*pow(cosA, e)
}

// Microfacet reflection: GGX distribution, Smith shadowing and a Schlick
// Fresnel term with F0 blended from 0.04 towards the albedo by metallic.

func ggxAlpha(roughness float32) float32 {
	return max32(roughness*roughness, 1e-3)
}

func ggxD(cosH, alpha float32) float32 {
	a2 := alpha * alpha
	d := cosH*cosH*(a2-1) + 1
	return a2 * invPi / (d * d)
}

func smithG1(cosV, alpha float32) float32 {
	a2 := alpha * alpha
	return 2 * cosV / (cosV + sqrt(a2+(1-a2)*cosV*cosV))
}

func microfacetSample(s *Surface, u types.Vec2) (types.Vec3, bool) {
	alpha := ggxAlpha(s.Material.Roughness)
	tan2 := alpha * alpha * u[0] / max32(1-u[0], minDot)
	cosT := 1 / sqrt(1+tan2)
	sinT := sqrt(max32(0, 1-cosT*cosT))
	phi := twoPi * u[1]

	h := toWorld(types.XYZ(sinT*cos(phi), sinT*sin(phi), cosT), s.Normal)
	wi := reflect(s.Wo, h)
	return wi, wi.Dot(s.Normal) > 0
}

func microfacetEval(s *Surface, wi types.Vec3) types.Vec3 {
	cosI := wi.Dot(s.Normal)
	cosO := s.Wo.Dot(s.Normal)
	if cosI <= minDot || cosO <= minDot {
		return types.Vec3{}
	}

	h := wi.Add(s.Wo).Normalize()
	alpha := ggxAlpha(s.Material.Roughness)
	d := ggxD(max32(0, h.Dot(s.Normal)), alpha)
	g := smithG1(cosI, alpha) * smithG1(cosO, alpha)

	f0 := types.XYZ(0.04, 0.04, 0.04).Lerp(s.Material.Albedo, s.Material.Metallic)
	w := pow(1-max32(0, wi.Dot(h)), 5)
	fresnel := f0.Add(types.XYZ(1, 1, 1).Sub(f0).Mul(w))

	return fresnel.Mul(d * g / (4 * cosI * cosO))
}

func microfacetPdf(s *Surface, wi types.Vec3) float32 {
	if wi.Dot(s.Normal) <= 0 {
		return 0
	}

	h := wi.Add(s.Wo).Normalize()
	cosH := max32(0, h.Dot(s.Normal))
	woH := abs(s.Wo.Dot(h))
	if woH < minDot {
		return 0
	}
	return ggxD(cosH, ggxAlpha(s.Material.Roughness)) * cosH / (4 * woH)
}
