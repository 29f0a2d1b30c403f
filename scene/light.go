package scene

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/types"
)

// LightType identifies a light sampling strategy.
type LightType uint32

const (
	SphereLight LightType = iota
	QuadLight
	DirectionalLight
	NumLightTypes
)

func (t LightType) String() string {
	switch t {
	case SphereLight:
		return "sphere"
	case QuadLight:
		return "quad"
	case DirectionalLight:
		return "directional"
	}

	return "invalid"
}

// Lookup light type by its name.
func LightTypeFromName(name string) (LightType, bool) {
	switch name {
	case "sphere":
		return SphereLight, true
	case "quad":
		return QuadLight, true
	case "directional":
		return DirectionalLight, true
	}

	return NumLightTypes, false
}

// A scene light. Area and Direction are derived from the type-specific
// fields; call Derive after editing them.
type Light struct {
	Type LightType

	Position  types.Vec3
	Direction types.Vec3
	Emission  types.Vec3

	// Spanning vectors for quad lights.
	U types.Vec3
	V types.Vec3

	Radius float32
	Area   float32
}

// Create a spherical area light.
func NewSphereLight(position types.Vec3, radius float32, emission types.Vec3) Light {
	l := Light{
		Type:     SphereLight,
		Position: position,
		Emission: emission,
		Radius:   radius,
	}
	l.Derive()
	return l
}

// Create a parallelogram light with a corner at position, spanned by u and
// v. The light emits towards u x v.
func NewQuadLight(position, u, v, emission types.Vec3) Light {
	l := Light{
		Type:     QuadLight,
		Position: position,
		Emission: emission,
		U:        u,
		V:        v,
	}
	l.Derive()
	return l
}

// Create a directional light. Direction points towards the light.
func NewDirectionalLight(direction, emission types.Vec3) Light {
	l := Light{
		Type:      DirectionalLight,
		Direction: direction,
		Emission:  emission,
	}
	l.Derive()
	return l
}

// Recalculate the derived light fields.
func (l *Light) Derive() {
	switch l.Type {
	case SphereLight:
		l.Area = 4.0 * math.Pi * l.Radius * l.Radius
		l.Direction = l.Direction.Normalize()
	case QuadLight:
		n := l.U.Cross(l.V)
		l.Area = n.Len()
		l.Direction = n.Normalize()
	case DirectionalLight:
		l.Area = 0
		l.Direction = l.Direction.Normalize()
	}
}

// IsDelta returns true if the light subtends a zero solid angle and must be
// sampled deterministically.
func (l *Light) IsDelta() bool {
	return l.Type == DirectionalLight
}
