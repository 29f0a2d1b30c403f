package scene

import (
	"fmt"
	"math"

	"github.com/surajsubudhi10/PistonOptix/types"
)

// Frustum describes a pinhole camera in the form consumed by the trace
// kernel. Primary ray directions are built as ndc.x * U + ndc.y * V + W
// where ndc is in [-1, 1].
type Frustum struct {
	Position types.Vec3
	U        types.Vec3
	V        types.Vec3
	W        types.Vec3
}

func (fr Frustum) String() string {
	return fmt.Sprintf(
		"Frustum:\nP : (%3.3f, %3.3f, %3.3f)\nU : (%3.3f, %3.3f, %3.3f)\nV : (%3.3f, %3.3f, %3.3f)\nW : (%3.3f, %3.3f, %3.3f)",
		fr.Position[0], fr.Position[1], fr.Position[2],
		fr.U[0], fr.U[1], fr.U[2],
		fr.V[0], fr.V[1], fr.V[2],
		fr.W[0], fr.W[1], fr.W[2],
	)
}

// The camera type controls the scene camera.
type Camera struct {
	Position types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	FOV float32

	aspect float32

	// Last frustum returned by Frustum.
	frustum Frustum

	// Set by the camera methods; cleared by Frustum.
	changed bool
}

// Create a camera looking down the negative Z axis.
func NewCamera(fov float32) *Camera {
	return &Camera{
		Position: types.Vec3{0, 0, 0},
		LookAt:   types.Vec3{0, 0, -1},
		Up:       types.Vec3{0, 1, 0},
		FOV:      fov,
		aspect:   1,
		changed:  true,
	}
}

// Set the viewport dimensions.
func (c *Camera) SetViewport(w, h uint32) {
	if w == 0 || h == 0 {
		return
	}

	aspect := float32(w) / float32(h)
	if aspect != c.aspect {
		c.aspect = aspect
		c.changed = true
	}
}

// Place the camera.
func (c *Camera) Place(position, lookAt types.Vec3) {
	c.Position = position
	c.LookAt = lookAt
	c.changed = true
}

// Rotate the camera position around the look-at point. Yaw rotates around
// the up axis and pitch around the camera's horizontal axis; both angles are
// in radians.
func (c *Camera) Orbit(yaw, pitch float32) {
	offset := c.Position.Sub(c.LookAt)
	pitchAxis := offset.Cross(c.Up)

	yawQuat := types.QuatFromAxisAngle(c.Up, yaw)
	pitchQuat := types.QuatFromAxisAngle(pitchAxis, pitch)
	orientQuat := yawQuat.Mul(pitchQuat).Normalize()

	c.Position = c.LookAt.Add(orientQuat.Rotate(offset))
	c.changed = true
}

// Move the camera towards (positive amount) or away from the look-at point.
func (c *Camera) Dolly(amount float32) {
	offset := c.Position.Sub(c.LookAt)
	dist := offset.Len() - amount
	if dist < 1e-3 {
		dist = 1e-3
	}
	c.Position = c.LookAt.Add(offset.Normalize().Mul(dist))
	c.changed = true
}

// Translate both camera position and look-at point in the view plane.
func (c *Camera) Pan(dx, dy float32) {
	dir := c.LookAt.Sub(c.Position).Normalize()
	right := dir.Cross(c.Up).Normalize()
	up := right.Cross(dir)
	delta := right.Mul(dx).Add(up.Mul(dy))

	c.Position = c.Position.Add(delta)
	c.LookAt = c.LookAt.Add(delta)
	c.changed = true
}

// Change the field of view.
func (c *Camera) Zoom(fov float32) {
	if fov < 1 || fov > 179 || fov == c.FOV {
		return
	}
	c.FOV = fov
	c.changed = true
}

// Get the camera frustum. The second return value is true if the camera
// changed since the last call, either through one of the camera methods or
// by writing its exported fields directly.
func (c *Camera) Frustum() (Frustum, bool) {
	tanHalf := float32(math.Tan(float64(c.FOV) * math.Pi / 360.0))
	w := c.LookAt.Sub(c.Position).Normalize()
	u := w.Cross(c.Up).Normalize()
	v := u.Cross(w)

	fr := Frustum{
		Position: c.Position,
		U:        u.Mul(tanHalf * c.aspect),
		V:        v.Mul(tanHalf),
		W:        w,
	}

	changed := c.changed || fr != c.frustum
	c.frustum = fr
	c.changed = false

	return fr, changed
}
