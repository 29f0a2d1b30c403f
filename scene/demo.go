package scene

import (
	"math"

	"github.com/surajsubudhi10/PistonOptix/types"
)

// Build the default test scene: a ground plane, a sphere and a torus lit by
// a single directional light.
func DemoScene() (*Description, error) {
	sc := NewDescription()

	plane, err := Plane(1, 1, 1)
	if err != nil {
		return nil, err
	}
	planeID := sc.AddMesh(plane)
	sc.Nodes = append(sc.Nodes, NewNode("Plane Mesh", 2, types.Scale4(10), planeID))

	sphere, err := Sphere(50, 50, 2, math.Pi)
	if err != nil {
		return nil, err
	}
	sphereID := sc.AddMesh(sphere)
	sc.Nodes = append(sc.Nodes, NewNode("Sphere Mesh", 0, types.Translate4(types.XYZ(0, 2, -3)), sphereID))

	torus, err := Torus(50, 50, 3, 1)
	if err != nil {
		return nil, err
	}
	torusID := sc.AddMesh(torus)
	sc.Nodes = append(sc.Nodes, NewNode("Torus Mesh", 1, types.Translate4(types.XYZ(0, 3, 6)), torusID))

	sc.Materials = []Material{
		{Name: "red metal", Albedo: types.XYZ(1, 0, 0), Metallic: 1, Roughness: 0.13, Brdf: MicrofacetReflection},
		{Name: "cyan", Albedo: types.XYZ(0, 1, 1), Metallic: 0, Roughness: 0, Brdf: Lambert},
		{Name: "blue", Albedo: types.XYZ(0, 0, 1), Metallic: 1, Roughness: 1, Brdf: Phong},
	}

	sc.Lights = []Light{
		NewDirectionalLight(types.XYZ(-1, 1, 1), types.XYZ(10, 10, 10)),
	}

	sc.Camera.Place(types.XYZ(0, 8, 18), types.XYZ(0, 1, 0))
	return sc, nil
}
