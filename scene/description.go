package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/surajsubudhi10/PistonOptix/fault"
)

// Description is a fully parsed scene ready to be uploaded to the tracer.
type Description struct {
	Nodes     []Node
	Meshes    map[uint32]*Mesh
	Materials []Material
	Lights    []Light
	Camera    *Camera
}

// Create an empty scene description.
func NewDescription() *Description {
	return &Description{
		Meshes: make(map[uint32]*Mesh),
		Camera: NewCamera(60),
	}
}

// Add a mesh to the scene and return its id.
func (d *Description) AddMesh(mesh *Mesh) uint32 {
	if d.Meshes == nil {
		d.Meshes = make(map[uint32]*Mesh)
	}

	var id uint32
	for existing := range d.Meshes {
		if existing >= id {
			id = existing + 1
		}
	}

	mesh.ID = id
	d.Meshes[id] = mesh
	return id
}

// Validate checks the basic shape of the description. Mesh references are
// resolved later, during assembly.
func (d *Description) Validate() error {
	for nodeIndex, node := range d.Nodes {
		if node.MaterialIndex < 0 || node.MaterialIndex >= len(d.Materials) {
			return fmt.Errorf("scene: node %d (%s) references material %d; scene defines %d materials: %w", nodeIndex, node.Name, node.MaterialIndex, len(d.Materials), fault.ErrBuildPrecondition)
		}
	}

	for matIndex, mat := range d.Materials {
		if mat.Brdf >= NumBrdfTypes {
			return fmt.Errorf("scene: material %d (%s) uses unknown brdf type %d: %w", matIndex, mat.Name, mat.Brdf, fault.ErrBuildPrecondition)
		}
	}

	for lightIndex, light := range d.Lights {
		if light.Type >= NumLightTypes {
			return fmt.Errorf("scene: light %d uses unknown type %d: %w", lightIndex, light.Type, fault.ErrBuildPrecondition)
		}
	}

	return nil
}

// Build a tabular representation of scene statistics.
func (d *Description) Stats() string {
	var (
		buf        bytes.Buffer
		attributes []VertexAttributes
		indices    []uint32
		triangles  int
	)

	meshIDs := make([]int, 0, len(d.Meshes))
	for id := range d.Meshes {
		meshIDs = append(meshIDs, int(id))
	}
	sort.Ints(meshIDs)

	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Size"})
	table.Append([]string{"Geometry", fmt.Sprintf("%d meshes", len(d.Meshes)), ""})
	for _, id := range meshIDs {
		mesh := d.Meshes[uint32(id)]
		attributes = append(attributes, mesh.Attributes...)
		indices = append(indices, mesh.Indices...)
		triangles += mesh.TriangleCount()
		table.Append([]string{"", fmt.Sprintf("#%d %s (%d tris)", id, mesh.Name, mesh.TriangleCount()), fmtSize(mesh.Attributes, mesh.Indices)})
	}
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Nodes", fmt.Sprintf("%d nodes", len(d.Nodes)), ""})
	table.Append([]string{"Materials", fmt.Sprintf("%d materials", len(d.Materials)), fmtSize(d.Materials)})
	table.Append([]string{"Lights", fmt.Sprintf("%d lights", len(d.Lights)), fmtSize(d.Lights)})
	table.SetFooter([]string{"Total", fmt.Sprintf("%d triangles", triangles), strings.TrimLeft(fmtSize(attributes, indices, d.Materials, d.Lights), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
