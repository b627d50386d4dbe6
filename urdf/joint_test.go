package urdf

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/roboviz/urdfkit/spatialmath"
)

func testJoint(jointType JointType) *Joint {
	j := newJoint("j", jointType)
	j.Axis = r3.Vector{Z: 1}
	j.OriginalRotation = quat.Number{Real: 1}
	return j
}

func TestFixedJointIgnoresValue(t *testing.T) {
	j := testJoint(FixedJoint)
	j.Node.LocalPosition = r3.Vector{X: 3}
	got := j.SetAngle(42)
	test.That(t, got, test.ShouldEqual, 0)
	test.That(t, j.Node.LocalPosition, test.ShouldResemble, r3.Vector{X: 3})
	test.That(t, j.Node.LocalRotation, test.ShouldResemble, quat.Number{Real: 1})
}

func TestContinuousJointUnclamped(t *testing.T) {
	j := testJoint(ContinuousJoint)
	got := j.SetAngle(7.5)
	test.That(t, got, test.ShouldEqual, 7.5)
	test.That(t, j.Angle(), test.ShouldEqual, 7.5)
}

func TestRevoluteJointClamps(t *testing.T) {
	j := testJoint(RevoluteJoint)
	j.Lower, j.Upper = -1, 1

	j.SetAngle(5)
	overLimit := j.Node.LocalRotation
	overAngle := j.Angle()

	k := testJoint(RevoluteJoint)
	k.Lower, k.Upper = -1, 1
	k.SetAngle(1)
	test.That(t, overAngle, test.ShouldEqual, k.Angle())
	test.That(t, spatialmath.QuaternionAlmostEqual(overLimit, k.Node.LocalRotation, 1e-12), test.ShouldBeTrue)

	j.SetAngle(-5)
	test.That(t, j.Angle(), test.ShouldEqual, -1)
}

func TestRevoluteRotationDirection(t *testing.T) {
	j := testJoint(RevoluteJoint)
	j.Lower, j.Upper = -math.Pi, math.Pi
	j.SetAngle(math.Pi / 2)
	// rotation is about the axis with the angle sign inverted: a +pi/2
	// input about Z spins X toward -Y
	moved := spatialmath.Rotate(j.Node.LocalRotation, r3.Vector{X: 1})
	test.That(t, spatialmath.R3VectorAlmostEqual(moved, r3.Vector{Y: -1}, 1e-12), test.ShouldBeTrue)
}

func TestPrismaticJointTranslates(t *testing.T) {
	j := testJoint(PrismaticJoint)
	j.Axis = r3.Vector{X: 1}
	j.Lower, j.Upper = 0, 2
	j.OriginalPosition = r3.Vector{Y: 5}

	got := j.SetAngle(1.5)
	test.That(t, got, test.ShouldEqual, 1.5)
	test.That(t, j.Node.LocalPosition, test.ShouldResemble, r3.Vector{X: 1.5, Y: 5})
	// rotation stays at the snapshot
	test.That(t, j.Node.LocalRotation, test.ShouldResemble, quat.Number{Real: 1})

	j.SetAngle(10)
	test.That(t, j.Node.LocalPosition, test.ShouldResemble, r3.Vector{X: 2, Y: 5})
}

func TestPrismaticMultiplierOffset(t *testing.T) {
	j := testJoint(PrismaticJoint)
	j.Axis = r3.Vector{X: 1}
	j.Lower, j.Upper = -10, 10
	j.Multiplier = 2
	j.Offset = 0.5

	got := j.SetAngle(3)
	test.That(t, got, test.ShouldEqual, 6.5)
	test.That(t, j.Node.LocalPosition.X, test.ShouldEqual, 6.5)
}

func TestMimicPropagationRawValue(t *testing.T) {
	drive := testJoint(ContinuousJoint)
	drive.Lower, drive.Upper = 0, 0

	follower := testJoint(ContinuousJoint)
	follower.Multiplier = -1
	follower.Offset = 0.25
	drive.mimickingJoints = append(drive.mimickingJoints, follower)

	// a second tier of mimicking still sees the same raw value
	tail := testJoint(ContinuousJoint)
	tail.Multiplier = 3
	follower.mimickingJoints = append(follower.mimickingJoints, tail)

	drive.SetAngle(2)
	test.That(t, drive.Angle(), test.ShouldEqual, 2)
	test.That(t, follower.Angle(), test.ShouldEqual, -1*2+0.25)
	test.That(t, tail.Angle(), test.ShouldEqual, 3*2.0)
}

func TestGroupWriteProjectsSamePose(t *testing.T) {
	direct := testJoint(RevoluteJoint)
	direct.Lower, direct.Upper = -math.Pi, math.Pi
	direct.Node.LocalPosition = r3.Vector{X: 1}
	direct.OriginalPosition = r3.Vector{X: 1}
	direct.SetAngle(0.75)

	grouped := testJoint(RevoluteJoint)
	grouped.Lower, grouped.Upper = -math.Pi, math.Pi
	grouped.Node.LocalPosition = r3.Vector{X: 1}
	grouped.OriginalPosition = r3.Vector{X: 1}
	grouped.Node.EnsureGroup()
	grouped.SetAngle(0.75)

	// the parsed pose under the group stays untouched
	test.That(t, grouped.Node.LocalRotation, test.ShouldResemble, quat.Number{Real: 1})
	// but both joints project to the same effective transform
	test.That(t, spatialmath.R3VectorAlmostEqual(
		direct.Node.EffectiveLocalPosition(), grouped.Node.EffectiveLocalPosition(), 1e-12), test.ShouldBeTrue)
	test.That(t, spatialmath.QuaternionAlmostEqual(
		direct.Node.EffectiveLocalRotation(), grouped.Node.EffectiveLocalRotation(), 1e-12), test.ShouldBeTrue)
}
