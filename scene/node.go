// Package scene implements the hierarchy tree handed to renderers: nodes
// with local position, rotation and scale, parent/child ownership, a small
// closed set of attachable components, and global poses derived on demand by
// composing the parent chain.
package scene

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
)

// Node is a node in an owned, parent-pointing, rooted tree. Global pose is
// never stored; it is recomputed from the parent chain on every read so
// ancestor mutations can never leave a stale cache behind.
type Node struct {
	Name          string
	LocalPosition r3.Vector
	LocalRotation quat.Number
	Scale         r3.Vector

	parent   *Node
	children []*Node

	mesh  *MeshComponent
	group *GroupComponent
}

// NewNode returns a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:          name,
		LocalRotation: quat.Number{Real: 1},
		Scale:         r3.Vector{X: 1, Y: 1, Z: 1},
	}
}

// Parent returns the owning parent, nil for a tree root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the ordered owned children. The returned slice is the
// node's own; callers must not mutate it.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild appends child to this node's children and points the child's
// parent back-reference here. A child already owned elsewhere is detached
// from its previous parent first, so it can never appear under two parents.
// Attaching a node to itself or to one of its own descendants is refused to
// keep the tree acyclic.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return errors.New("cannot add nil child")
	}
	for ancestor := n; ancestor != nil; ancestor = ancestor.parent {
		if ancestor == child {
			return errors.Errorf("adding %q under %q would create a cycle", child.Name, n.Name)
		}
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from this node, clearing its parent
// back-reference. Returns false if child was not one of this node's
// children.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// SetMesh attaches a mesh component, replacing any previous one.
func (n *Node) SetMesh(mesh *geometry.Mesh) {
	n.mesh = &MeshComponent{Mesh: mesh}
}

// Mesh returns the attached mesh, nil when the node carries none.
func (n *Node) Mesh() *geometry.Mesh {
	if n.mesh == nil {
		return nil
	}
	return n.mesh.Mesh
}

// Group returns the group component, nil until EnsureGroup creates it.
func (n *Node) Group() *GroupComponent {
	return n.group
}

// EnsureGroup returns the node's group component, creating the empty
// placeholder on first use.
func (n *Node) EnsureGroup() *GroupComponent {
	if n.group == nil {
		n.group = newGroupComponent()
	}
	return n.group
}

// EffectiveLocalPosition is the node's local position with any group
// component delta applied. Joint updates may write motion to either place;
// this is the single projection renderers and global-pose math read.
func (n *Node) EffectiveLocalPosition() r3.Vector {
	if n.group != nil {
		return n.LocalPosition.Add(n.group.Position)
	}
	return n.LocalPosition
}

// EffectiveLocalRotation is the node's local rotation with any group
// component delta left-multiplied on, matching how joint updates compose.
func (n *Node) EffectiveLocalRotation() quat.Number {
	if n.group != nil {
		return quat.Mul(n.group.Rotation, n.LocalRotation)
	}
	return n.LocalRotation
}

// GlobalPosition composes the parent chain: a root's global position is its
// local position; otherwise parent global position plus the parent-rotated,
// parent-scaled local offset.
func (n *Node) GlobalPosition() r3.Vector {
	if n.parent == nil {
		return n.EffectiveLocalPosition()
	}
	local := n.EffectiveLocalPosition()
	scaled := r3.Vector{
		X: local.X * n.parent.Scale.X,
		Y: local.Y * n.parent.Scale.Y,
		Z: local.Z * n.parent.Scale.Z,
	}
	return n.parent.GlobalPosition().Add(spatialmath.Rotate(n.parent.GlobalRotation(), scaled))
}

// GlobalRotation composes the parent chain of rotations.
func (n *Node) GlobalRotation() quat.Number {
	if n.parent == nil {
		return n.EffectiveLocalRotation()
	}
	return quat.Mul(n.parent.GlobalRotation(), n.EffectiveLocalRotation())
}

// Visit is what Walk yields per node: the resolved local transform and the
// optional mesh payload, enough for a renderer to build its own scene graph.
type Visit struct {
	Node     *Node
	Position r3.Vector
	Rotation quat.Number
	Scale    r3.Vector
	Mesh     *geometry.Mesh
}

// Walk traverses the subtree in parent-before-child (pre-order) order. The
// callback returning false stops the traversal.
func (n *Node) Walk(visit func(Visit) bool) {
	n.walk(visit)
}

func (n *Node) walk(visit func(Visit) bool) bool {
	v := Visit{
		Node:     n,
		Position: n.EffectiveLocalPosition(),
		Rotation: n.EffectiveLocalRotation(),
		Scale:    n.Scale,
		Mesh:     n.Mesh(),
	}
	if !visit(v) {
		return false
	}
	for _, child := range n.children {
		if !child.walk(visit) {
			return false
		}
	}
	return true
}

// FindByName returns the first node named name in pre-order, nil if absent.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Walk(func(v Visit) bool {
		if v.Node.Name == name {
			found = v.Node
			return false
		}
		return true
	})
	return found
}
