// Package spatialmath defines the spatial mathematical operations shared by
// the mesh decoders and the kinematic tree: quaternion rotation, Euler
// composition and the coordinate-frame conversions between robot description
// conventions and the render frame.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a rigid placement: a translation plus a rotation.
type Pose struct {
	Position r3.Vector
	Rotation quat.Number
}

// NewZeroPose returns a pose with no translation and an identity rotation.
// The zero value of Pose has an all-zero quaternion which is not a valid
// rotation, so this should be used instead of Pose{}.
func NewZeroPose() Pose {
	return Pose{Rotation: quat.Number{Real: 1}}
}

// NewPose returns a pose from a translation and a rotation.
func NewPose(position r3.Vector, rotation quat.Number) Pose {
	return Pose{Position: position, Rotation: rotation}
}

// Compose returns the pose resulting from applying b within a's frame:
// translation adds after rotating b's offset by a, rotations multiply.
func Compose(a, b Pose) Pose {
	return Pose{
		Position: a.Position.Add(Rotate(a.Rotation, b.Position)),
		Rotation: quat.Mul(a.Rotation, b.Rotation),
	}
}

// PoseAlmostEqual returns whether two poses differ by less than a fixed
// numeric tolerance in both translation and rotation.
func PoseAlmostEqual(a, b Pose) bool {
	const epsilon = 1e-8
	return R3VectorAlmostEqual(a.Position, b.Position, epsilon) &&
		QuaternionAlmostEqual(a.Rotation, b.Rotation, epsilon)
}

// R3VectorAlmostEqual returns whether two vectors differ by less than epsilon
// in each component.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return a.Sub(b).Norm() < epsilon
}
