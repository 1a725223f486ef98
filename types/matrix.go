package types

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon below which float comparisons and geometric tests treat a
// value as zero.
const Epsilon float32 = 1e-5

const floatCmpEpsilon float32 = 1e-7

// A column-major 4x4 matrix. The heavy lifting (inversion, projection
// setup) is delegated to github.com/go-gl/mathgl.
type Mat4 mgl32.Mat4

// Create an identity matrix.
func Ident4() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Multiply two matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	return Mat4(mgl32.Mat4(m).Mul4(mgl32.Mat4(m2)))
}

// Multiply matrix with a column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4(mgl32.Mat4(m).Mul4x1(mgl32.Vec4(v)))
}

// Calculate the inverse matrix. Returns the zero matrix if m is not
// invertible.
func (m Mat4) Inv() Mat4 {
	return Mat4(mgl32.Mat4(m).Inv())
}

// Transpose the matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4(mgl32.Mat4(m).Transpose())
}

// Apply a homogeneous transform to a point (implicit w=1).
func (m Mat4) ApplyToPoint(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(1)).Vec3()
}

// Apply a homogeneous transform to a direction (implicit w=0).
func (m Mat4) ApplyToDir(v Vec3) Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// Create a translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v[0], v[1], v[2]))
}

// Create a scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4(mgl32.Scale3D(v[0], v[1], v[2]))
}

// Create a rotation matrix around an arbitrary axis. The angle is in
// radians; the axis need not be unit length.
func Rotate4(angle float32, axis Vec3) Mat4 {
	n := axis.Normalize()
	return Mat4(mgl32.HomogRotate3D(angle, mgl32.Vec3(n)))
}

// Create a perspective projection matrix. The vertical field of view
// is given in degrees.
func Perspective4(fovDeg, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far))
}

// Create an orthographic projection matrix.
func Ortho4(left, right, bottom, top, near, far float32) Mat4 {
	return Mat4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// Create a view matrix looking from eye towards center.
func LookAtV(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(mgl32.Vec3(eye), mgl32.Vec3(center), mgl32.Vec3(up)))
}

// Convert degrees to radians.
func DegToRad(d float32) float32 {
	return d * math.Pi / 180.0
}

// Convert radians to degrees.
func RadToDeg(r float32) float32 {
	return r * 180.0 / math.Pi
}
