package scene

import "github.com/surajsubudhi10/PistonOptix/types"

// BrdfType selects the reflection model used for a surface.
type BrdfType uint32

const (
	Lambert BrdfType = iota
	Phong
	MicrofacetReflection
	NumBrdfTypes
)

// Lookup brdf type by its name.
func BrdfTypeFromName(name string) (BrdfType, bool) {
	switch name {
	case "lambert":
		return Lambert, true
	case "phong":
		return Phong, true
	case "microfacetReflection":
		return MicrofacetReflection, true
	}

	return NumBrdfTypes, false
}

func (t BrdfType) String() string {
	switch t {
	case Lambert:
		return "lambert"
	case Phong:
		return "phong"
	case MicrofacetReflection:
		return "microfacetReflection"
	}

	return "invalid"
}

// Defines a scene material.
type Material struct {
	Name string

	// Albedo color.
	Albedo types.Vec3

	Metallic  float32
	Roughness float32

	Brdf BrdfType
}
