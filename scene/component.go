package scene

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/roboviz/urdfkit/geometry"
)

// MeshComponent attaches a decoded mesh record to a node. A node owns at
// most one.
type MeshComponent struct {
	Mesh *geometry.Mesh
}

// GroupComponent is an empty transform placeholder holding a pose delta on
// top of the node's own local transform. Kinematic updates write joint
// motion here when the component exists, so a renderer can keep the node's
// parsed pose untouched. Created lazily via Node.EnsureGroup.
type GroupComponent struct {
	Position r3.Vector
	Rotation quat.Number
}

func newGroupComponent() *GroupComponent {
	return &GroupComponent{Rotation: quat.Number{Real: 1}}
}
