package dispatch

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/tracer/params"
	"github.com/surajsubudhi10/PistonOptix/types"
)

// Shading context passed to the BRDF callables. All vectors are in world
// space; Wo points away from the surface.
type Surface struct {
	Material *params.PackedMaterial
	Normal   types.Vec3
	Wo       types.Vec3
}

// LightRecord describes a sampled point on a light as seen from a shading
// point.
type LightRecord struct {
	SurfacePos types.Vec3

	// Unit direction from the shading point towards the light and the
	// distance along it.
	Direction types.Vec3
	Distance  float32

	Emission types.Vec3

	// Solid angle pdf. A zero pdf marks an unusable sample.
	Pdf float32
}

// Callable signatures for each role.
type (
	BrdfSampleFunc  func(s *Surface, u types.Vec2) (wi types.Vec3, ok bool)
	BrdfEvalFunc    func(s *Surface, wi types.Vec3) types.Vec3
	BrdfPdfFunc     func(s *Surface, wi types.Vec3) float32
	LightSampleFunc func(l *params.PackedLight, p types.Vec3, u types.Vec2) LightRecord
)

// Invoke the BRDF sampling callable for brdf. Unknown ordinals yield no
// sample.
func (t *Tables) SampleBrdf(brdf uint32, s *Surface, u types.Vec2) (types.Vec3, bool) {
	if int(brdf) >= len(t.brdfSample) {
		return types.Vec3{}, false
	}
	return t.brdfSample[brdf](s, u)
}

// Invoke the BRDF evaluation callable for brdf.
func (t *Tables) EvalBrdf(brdf uint32, s *Surface, wi types.Vec3) types.Vec3 {
	if int(brdf) >= len(t.brdfEval) {
		return types.Vec3{}
	}
	return t.brdfEval[brdf](s, wi)
}

// Invoke the BRDF pdf callable for brdf.
func (t *Tables) PdfBrdf(brdf uint32, s *Surface, wi types.Vec3) float32 {
	if int(brdf) >= len(t.brdfPdf) {
		return 0
	}
	return t.brdfPdf[brdf](s, wi)
}

// Invoke the light sampling callable for the light's type.
func (t *Tables) SampleLight(l *params.PackedLight, p types.Vec3, u types.Vec2) LightRecord {
	if int(l.Type) >= len(t.lightSample) {
		return LightRecord{}
	}
	return t.lightSample[l.Type](l, p, u)
}

const (
	invPi  = float32(1 / math.Pi)
	twoPi  = float32(2 * math.Pi)
	minDot = 1e-6
)

// Build an orthonormal basis around n.
func basis(n types.Vec3) (t, b types.Vec3) {
	if abs(n[0]) > abs(n[1]) {
		t = types.XYZ(-n[2], 0, n[0]).Mul(1 / sqrt(n[0]*n[0]+n[2]*n[2]))
	} else {
		t = types.XYZ(0, n[2], -n[1]).Mul(1 / sqrt(n[1]*n[1]+n[2]*n[2]))
	}
	return t, n.Cross(t)
}

func toWorld(local, n types.Vec3) types.Vec3 {
	t, b := basis(n)
	return t.Mul(local[0]).Add(b.Mul(local[1])).Add(n.Mul(local[2]))
}

func cosineHemisphere(u types.Vec2) types.Vec3 {
	r := sqrt(u[0])
	phi := twoPi * u[1]
	return types.XYZ(r*cos(phi), r*sin(phi), sqrt(max32(0, 1-u[0])))
}

func reflect(v, n types.Vec3) types.Vec3 {
	return n.Mul(2 * v.Dot(n)).Sub(v)
}

func sqrt(v float32) float32 { return float32(math.Sqrt(float64(v))) }
func cos(v float32) float32  { return float32(math.Cos(float64(v))) }
func sin(v float32) float32  { return float32(math.Sin(float64(v))) }
func pow(b, e float32) float32 {
	return float32(math.Pow(float64(b), float64(e)))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
