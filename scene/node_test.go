package scene

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
)

func TestAddRemoveChild(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")

	test.That(t, root.AddChild(a), test.ShouldBeNil)
	test.That(t, root.AddChild(b), test.ShouldBeNil)
	test.That(t, a.Parent(), test.ShouldEqual, root)
	test.That(t, len(root.Children()), test.ShouldEqual, 2)

	// reparenting detaches from the previous owner
	test.That(t, a.AddChild(b), test.ShouldBeNil)
	test.That(t, len(root.Children()), test.ShouldEqual, 1)
	test.That(t, b.Parent(), test.ShouldEqual, a)

	test.That(t, a.RemoveChild(b), test.ShouldBeTrue)
	test.That(t, b.Parent(), test.ShouldBeNil)
	test.That(t, a.RemoveChild(b), test.ShouldBeFalse)
}

func TestAddChildRejectsCycles(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	test.That(t, root.AddChild(child), test.ShouldBeNil)

	test.That(t, root.AddChild(root), test.ShouldNotBeNil)
	test.That(t, child.AddChild(root), test.ShouldNotBeNil)
	test.That(t, root.AddChild(nil), test.ShouldNotBeNil)
}

func TestGlobalPoseTranslationChain(t *testing.T) {
	// a 3-deep chain of identity-scaled nodes with only translations
	// composes by simple vector addition
	root := NewNode("root")
	root.LocalPosition = r3.Vector{X: 1}
	mid := NewNode("mid")
	mid.LocalPosition = r3.Vector{Y: 2}
	leaf := NewNode("leaf")
	leaf.LocalPosition = r3.Vector{Z: 3}
	test.That(t, root.AddChild(mid), test.ShouldBeNil)
	test.That(t, mid.AddChild(leaf), test.ShouldBeNil)

	got := leaf.GlobalPosition()
	test.That(t, spatialmath.R3VectorAlmostEqual(got, r3.Vector{X: 1, Y: 2, Z: 3}, 1e-9), test.ShouldBeTrue)

	// a 90 degree rotation at the middle node rotates the leaf's
	// contribution accordingly
	mid.LocalRotation = spatialmath.QuatFromAxisAngle(r3.Vector{X: 1}, math.Pi/2)
	got = leaf.GlobalPosition()
	test.That(t, spatialmath.R3VectorAlmostEqual(got, r3.Vector{X: 1, Y: 2 - 3, Z: 0}, 1e-9), test.ShouldBeTrue)
}

func TestGlobalPositionParentScale(t *testing.T) {
	root := NewNode("root")
	root.Scale = r3.Vector{X: 2, Y: 2, Z: 2}
	child := NewNode("child")
	child.LocalPosition = r3.Vector{X: 1}
	test.That(t, root.AddChild(child), test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(child.GlobalPosition(), r3.Vector{X: 2}, 1e-9), test.ShouldBeTrue)
}

func TestGroupComponentProjection(t *testing.T) {
	n := NewNode("joint")
	n.LocalPosition = r3.Vector{X: 1}

	// without a group, the effective transform is the local one
	test.That(t, n.EffectiveLocalPosition(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, n.Group(), test.ShouldBeNil)

	group := n.EnsureGroup()
	test.That(t, n.EnsureGroup(), test.ShouldEqual, group)
	group.Position = r3.Vector{Y: 2}
	group.Rotation = spatialmath.QuatFromAxisAngle(r3.Vector{Z: 1}, math.Pi/2)

	test.That(t, n.EffectiveLocalPosition(), test.ShouldResemble, r3.Vector{X: 1, Y: 2})
	rotated := spatialmath.Rotate(n.EffectiveLocalRotation(), r3.Vector{X: 1})
	test.That(t, spatialmath.R3VectorAlmostEqual(rotated, r3.Vector{Y: 1}, 1e-9), test.ShouldBeTrue)
}

func TestWalkPreOrder(t *testing.T) {
	root := NewNode("root")
	a := NewNode("a")
	b := NewNode("b")
	aa := NewNode("aa")
	test.That(t, root.AddChild(a), test.ShouldBeNil)
	test.That(t, root.AddChild(b), test.ShouldBeNil)
	test.That(t, a.AddChild(aa), test.ShouldBeNil)

	mesh := geometry.NewMesh("payload")
	aa.SetMesh(mesh)

	var order []string
	var meshes int
	root.Walk(func(v Visit) bool {
		order = append(order, v.Node.Name)
		if v.Mesh != nil {
			meshes++
			test.That(t, v.Mesh, test.ShouldEqual, mesh)
		}
		return true
	})
	test.That(t, order, test.ShouldResemble, []string{"root", "a", "aa", "b"})
	test.That(t, meshes, test.ShouldEqual, 1)

	test.That(t, root.FindByName("aa"), test.ShouldEqual, aa)
	test.That(t, root.FindByName("missing"), test.ShouldBeNil)
}
