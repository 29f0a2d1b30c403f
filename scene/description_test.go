package scene

import (
	"errors"
	"strings"
	"testing"

	"github.com/surajsubudhi10/PistonOptix/fault"
	"github.com/surajsubudhi10/PistonOptix/types"
)

func TestDescriptionValidate(t *testing.T) {
	sc := NewDescription()
	quadID := sc.AddMesh(UnitQuad())
	sc.Materials = []Material{{Name: "white", Albedo: types.XYZ(1, 1, 1)}}
	sc.Nodes = []Node{NewNode("quad", 0, types.Ident4(), quadID)}

	if err := sc.Validate(); err != nil {
		t.Fatal(err)
	}

	sc.Nodes[0].MaterialIndex = 1
	if err := sc.Validate(); !errors.Is(err, fault.ErrBuildPrecondition) {
		t.Fatalf("expected out of range material to fail validation; got %v", err)
	}
}

func TestDemoScene(t *testing.T) {
	sc, err := DemoScene()
	if err != nil {
		t.Fatal(err)
	}

	if err = sc.Validate(); err != nil {
		t.Fatal(err)
	}

	if len(sc.Nodes) != 3 || len(sc.Meshes) != 3 || len(sc.Materials) != 3 || len(sc.Lights) != 1 {
		t.Fatalf("expected 3 nodes, 3 meshes, 3 materials and 1 light; got %d, %d, %d, %d", len(sc.Nodes), len(sc.Meshes), len(sc.Materials), len(sc.Lights))
	}

	for _, node := range sc.Nodes {
		for _, id := range node.MeshIDs {
			if _, ok := sc.Meshes[id]; !ok {
				t.Fatalf("expected node %s mesh %d to exist", node.Name, id)
			}
		}
	}

	stats := sc.Stats()
	for _, exp := range []string{"Geometry", "sphere", "torus", "Materials", "Total"} {
		if !strings.Contains(stats, exp) {
			t.Fatalf("expected stats table to mention %q; got:\n%s", exp, stats)
		}
	}
}
