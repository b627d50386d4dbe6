package geometry

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestColorLinearization(t *testing.T) {
	// sRGB mid-gray is darker in linear space
	c := NewColorFromSRGB(128, 128, 128)
	test.That(t, c.R, test.ShouldAlmostEqual, 0.2158, 1e-3)
	test.That(t, c.R, test.ShouldAlmostEqual, c.G, 1e-12)
	test.That(t, c.A, test.ShouldEqual, 1)

	// endpoints survive exactly
	test.That(t, NewColorFromSRGB(255, 255, 255), test.ShouldResemble, White())
	black := NewColorFromSRGB(0, 0, 0)
	test.That(t, black.R, test.ShouldEqual, 0)
}

func TestApplyMatrix(t *testing.T) {
	m := NewMesh("tri")
	m.Positions = []r3.Vector{{X: 1}, {Y: 1}, {}}
	m.Normals = []r3.Vector{{Z: 1}, {Z: 1}, {Z: 1}}

	m.ApplyMatrix(mgl64.Translate3D(0, 0, 5))
	test.That(t, m.Positions[0], test.ShouldResemble, r3.Vector{X: 1, Z: 5})
	// translation does not disturb normals
	test.That(t, m.Normals[0], test.ShouldResemble, r3.Vector{Z: 1})

	m.ApplyMatrix(mgl64.Scale3D(2, 2, 2))
	test.That(t, m.Positions[0], test.ShouldResemble, r3.Vector{X: 2, Z: 10})
	// normals are renormalized after the inverse-transpose transform
	test.That(t, m.Normals[0].Norm(), test.ShouldAlmostEqual, 1, 1e-9)
}

func TestSynthesizeNormals(t *testing.T) {
	m := NewMesh("flat")
	// two coplanar triangles in the XY plane sharing an edge
	m.Positions = []r3.Vector{
		{}, {X: 1}, {Y: 1},
		{X: 1}, {X: 1, Y: 1}, {Y: 1},
	}
	m.SynthesizeNormals()
	test.That(t, len(m.Normals), test.ShouldEqual, 6)
	for _, n := range m.Normals {
		test.That(t, n.Sub(r3.Vector{Z: 1}).Norm(), test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestBoxMesh(t *testing.T) {
	m := NewBoxMesh(2, 4, 6)
	test.That(t, m.TriangleCount(), test.ShouldEqual, 12)
	for _, p := range m.Positions {
		test.That(t, math.Abs(p.X), test.ShouldEqual, 1)
		test.That(t, math.Abs(p.Y), test.ShouldEqual, 2)
		test.That(t, math.Abs(p.Z), test.ShouldEqual, 3)
	}
}

func TestSphereMesh(t *testing.T) {
	m := NewSphereMesh(0.5)
	test.That(t, m.TriangleCount(), test.ShouldBeGreaterThan, 0)
	for _, p := range m.Positions {
		test.That(t, p.Norm(), test.ShouldAlmostEqual, 0.5, 1e-9)
	}
}

func TestCylinderMesh(t *testing.T) {
	test.That(t, RadialSegments(0.1), test.ShouldEqual, 12)
	test.That(t, RadialSegments(3), test.ShouldEqual, 18)

	m := NewCylinderMesh(1, 2)
	test.That(t, m.TriangleCount(), test.ShouldEqual, 12*4)
	for _, p := range m.Positions {
		test.That(t, math.Abs(p.Y), test.ShouldBeLessThanOrEqualTo, 1+1e-9)
		radial := math.Hypot(p.X, p.Z)
		test.That(t, radial, test.ShouldBeLessThanOrEqualTo, 1+1e-9)
	}
}
