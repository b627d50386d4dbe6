package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestRotate(t *testing.T) {
	// 90 degrees about Z takes +X to +Y
	q := QuatFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2)
	rotated := Rotate(q, r3.Vector{X: 1})
	test.That(t, R3VectorAlmostEqual(rotated, r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)

	// identity leaves vectors alone
	rotated = Rotate(quat.Number{Real: 1}, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, rotated, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}

func TestQuatFromAxisAngle(t *testing.T) {
	// axis is normalized before use
	a := QuatFromAxisAngle(r3.Vector{Z: 10}, math.Pi/3)
	b := QuatFromAxisAngle(r3.Vector{Z: 1}, math.Pi/3)
	test.That(t, QuaternionAlmostEqual(a, b, 1e-9), test.ShouldBeTrue)

	// zero axis degenerates to identity
	test.That(t, QuatFromAxisAngle(r3.Vector{}, 1), test.ShouldResemble, quat.Number{Real: 1})
}

func TestEulerYZXOrder(t *testing.T) {
	x, y, z := 0.3, -0.7, 1.1
	got := EulerYZXToQuat(x, y, z)
	want := quat.Mul(
		QuatFromAxisAngle(r3.Vector{Y: 1}, y),
		quat.Mul(QuatFromAxisAngle(r3.Vector{Z: 1}, z), QuatFromAxisAngle(r3.Vector{X: 1}, x)),
	)
	test.That(t, QuaternionAlmostEqual(got, want, 1e-9), test.ShouldBeTrue)

	// the order is load-bearing: X-Y-Z composition of the same angles differs
	xyz := quat.Mul(
		QuatFromAxisAngle(r3.Vector{X: 1}, x),
		quat.Mul(QuatFromAxisAngle(r3.Vector{Y: 1}, y), QuatFromAxisAngle(r3.Vector{Z: 1}, z)),
	)
	test.That(t, QuaternionAlmostEqual(got, xyz, 1e-9), test.ShouldBeFalse)
}

func TestConvertVector(t *testing.T) {
	test.That(t, ConvertVector(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldResemble, r3.Vector{X: 1, Y: 3, Z: -2})
	test.That(t, ConvertScale(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldResemble, r3.Vector{X: 1, Y: 3, Z: 2})
}

func TestBasisSwaps(t *testing.T) {
	v := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, TransformPoint(StlBasisSwap(), v), test.ShouldResemble, r3.Vector{X: 1, Y: 3, Z: -2})
	test.That(t, TransformPoint(ColladaBasisSwap(), v), test.ShouldResemble, r3.Vector{X: 1, Y: -3, Z: 2})
}

func TestCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 1}, QuatFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2))
	b := NewPose(r3.Vector{X: 1}, quat.Number{Real: 1})
	composed := Compose(a, b)
	// b's offset is rotated into a's frame before adding
	test.That(t, R3VectorAlmostEqual(composed.Position, r3.Vector{X: 1, Y: 1}, 1e-9), test.ShouldBeTrue)
}

func TestDecomposeMat4(t *testing.T) {
	rot := mgl64.HomogRotate3D(math.Pi/4, mgl64.Vec3{0, 0, 1})
	m := mgl64.Translate3D(1, 2, 3).Mul4(rot).Mul4(mgl64.Scale3D(2, 2, 2))
	pos, q, scale := DecomposeMat4(m)
	test.That(t, R3VectorAlmostEqual(pos, r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(scale, r3.Vector{X: 2, Y: 2, Z: 2}, 1e-9), test.ShouldBeTrue)
	want := QuatFromAxisAngle(r3.Vector{Z: 1}, math.Pi/4)
	test.That(t, QuaternionAlmostEqual(q, want, 1e-9), test.ShouldBeTrue)
}

func TestMat4FromRowMajor(t *testing.T) {
	m := Mat4FromRowMajor([]float64{
		1, 0, 0, 5,
		0, 1, 0, 6,
		0, 0, 1, 7,
		0, 0, 0, 1,
	})
	test.That(t, TransformPoint(m, r3.Vector{}), test.ShouldResemble, r3.Vector{X: 5, Y: 6, Z: 7})
}
