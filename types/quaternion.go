package types

import "github.com/go-gl/mathgl/mgl32"

// Quat wraps a mgl32 quaternion so it can operate on our vector types.
type Quat struct {
	q mgl32.Quat
}

// Create a quaternion from an axis vector and an angle in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	return Quat{q: mgl32.QuatRotate(angle, mgl32.Vec3(axis.Normalize()))}
}

// Rotate a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	return Vec3(q1.q.Rotate(mgl32.Vec3(v)))
}

// Multiply two quaternions. Multiplication is not commutative.
func (q1 Quat) Mul(q2 Quat) Quat {
	return Quat{q: q1.q.Mul(q2.q)}
}

// Normalize the quaternion.
func (q1 Quat) Normalize() Quat {
	return Quat{q: q1.q.Normalize()}
}
