package types

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a 4x4 matrix stored by value in row-major order. The translation
// component lives in elements 3, 7 and 11.
type Mat4 [16]float32

// Create identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	m := Ident4()
	m[3], m[7], m[11] = v[0], v[1], v[2]
	return m
}

// Create a uniform scale matrix.
func Scale4(s float32) Mat4 {
	m := Ident4()
	m[0], m[5], m[10] = s, s, s
	return m
}

// Convert from the column-major mgl32 layout.
func fromMgl(m mgl32.Mat4) Mat4 {
	return Mat4(m.Transpose())
}

// Convert to the column-major mgl32 layout.
func (m Mat4) mgl() mgl32.Mat4 {
	return mgl32.Mat4(m).Transpose()
}

// Get element at row r and column c.
func (m Mat4) At(r, c int) float32 {
	return m[r*4+c]
}

// Multiply with another matrix (m * m2).
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return fromMgl(m.mgl().Mul4(m2.mgl()))
}

// Calculate matrix determinant.
func (m Mat4) Det() float32 {
	return m.mgl().Det()
}

// Calculate the matrix inverse. The second return value is false if the
// matrix is singular or its inverse is not representable. Small but
// non-zero determinants, such as those of uniform scales below 0.01, are
// invertible.
func (m Mat4) Inv() (Mat4, bool) {
	det := float64(m.Det())
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Mat4{}, false
	}

	inv := fromMgl(m.mgl().Inv())
	for _, v := range inv {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Mat4{}, false
		}
	}
	return inv, true
}

// Transpose matrix.
func (m Mat4) Transpose() Mat4 {
	return fromMgl(mgl32.Mat4(m))
}

// Transform a point (w = 1).
func (m Mat4) MulPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3],
		m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7],
		m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11],
	}
}

// Transform a direction vector (w = 0).
func (m Mat4) MulVector(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// Transform a normal using the transposed inverse. The receiver must be
// the inverse of the object-to-world matrix.
func (m Mat4) MulNormal(n Vec3) Vec3 {
	return Vec3{
		m[0]*n[0] + m[4]*n[1] + m[8]*n[2],
		m[1]*n[0] + m[5]*n[1] + m[9]*n[2],
		m[2]*n[0] + m[6]*n[1] + m[10]*n[2],
	}.Normalize()
}

// Compare two matrices using an epsilon value.
func (m Mat4) ApproxEqual(m2 Mat4, eps float32) bool {
	for i := range m {
		if float32(math.Abs(float64(m[i]-m2[i]))) > eps {
			return false
		}
	}
	return true
}
