package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformPoint applies the affine transform m to the point p (w = 1).
//
// Parameters:
//   - m: the transform, column-major
//   - p: the point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies the linear part of m to the direction d (w = 0).
//
// Parameters:
//   - m: the transform, column-major
//   - d: the direction to transform
//
// Returns:
//   - mgl32.Vec3: the transformed direction
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// ComposeTransform builds the world transform T(position) * R(orientation).
// The orientation is normalized first so callers may pass unnormalized quaternions.
//
// Parameters:
//   - position: translation
//   - orientation: rotation quaternion
//
// Returns:
//   - mgl32.Mat4: the composed transform
func ComposeTransform(position mgl32.Vec3, orientation mgl32.Quat) mgl32.Mat4 {
	return mgl32.Translate3D(position[0], position[1], position[2]).Mul4(NormalizeQuat(orientation).Mat4())
}

// DistanceSquared returns |a - b|².
func DistanceSquared(a, b mgl32.Vec3) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// NormalizeQuat normalizes q, returning identity for the zero quaternion.
func NormalizeQuat(q mgl32.Quat) mgl32.Quat {
	if q.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q.Normalize()
}
