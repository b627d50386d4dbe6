package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Rotate rotates vector v by unit quaternion q, i.e. q v q*.
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	rotated := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// QuatFromAxisAngle returns the rotation of the given angle in radians about
// the given axis. The axis is normalized first; a zero axis yields the
// identity rotation.
func QuatFromAxisAngle(axis r3.Vector, angle float64) quat.Number {
	norm := axis.Norm()
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	axis = axis.Mul(1 / norm)
	s := math.Sin(angle / 2)
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// EulerYZXToQuat composes rotations about the X, Y and Z axes into a single
// quaternion using Y-Z-X order, i.e. qY * qZ * qX. URDF poses converted into
// the render frame rely on this exact order; do not substitute X-Y-Z.
func EulerYZXToQuat(x, y, z float64) quat.Number {
	qx := QuatFromAxisAngle(r3.Vector{X: 1}, x)
	qy := QuatFromAxisAngle(r3.Vector{Y: 1}, y)
	qz := QuatFromAxisAngle(r3.Vector{Z: 1}, z)
	return quat.Mul(qy, quat.Mul(qz, qx))
}

// Normalize scales q to unit length. An all-zero quaternion becomes the
// identity rotation.
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if length == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/length, q)
}

// QuaternionAlmostEqual returns whether two quaternions represent
// approximately the same rotation. q and -q describe the same orientation, so
// both signs are checked.
func QuaternionAlmostEqual(a, b quat.Number, epsilon float64) bool {
	diff := quat.Add(a, quat.Scale(-1, b))
	sum := quat.Add(a, b)
	return quat.Abs(diff) < epsilon || quat.Abs(sum) < epsilon
}
