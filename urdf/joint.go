package urdf

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/roboviz/urdfkit/scene"
	"github.com/roboviz/urdfkit/spatialmath"
	"github.com/roboviz/urdfkit/utils"
)

// JointType enumerates the URDF joint types the loader supports. floating
// and planar joints are rejected at parse time.
type JointType string

const (
	FixedJoint      JointType = "fixed"
	ContinuousJoint JointType = "continuous"
	RevoluteJoint   JointType = "revolute"
	PrismaticJoint  JointType = "prismatic"
)

// Link is a rigid body: a hierarchy node that additionally owns the visual
// geometry nodes attached under it.
type Link struct {
	*scene.Node
	visuals []*scene.Node
}

func newLink(name string) *Link {
	return &Link{Node: scene.NewNode(name)}
}

// Geometry returns the visual sub-nodes attached under this link, in
// document order.
func (l *Link) Geometry() []*scene.Node {
	return l.visuals
}

// Joint connects two links. The joint node sits between them in the tree:
// it is a child of its parent link and the child link hangs under it.
type Joint struct {
	*scene.Node
	Type JointType
	// Axis is the motion axis, already negated, converted into the render
	// frame and normalized.
	Axis r3.Vector
	// Lower and Upper are only meaningful for revolute and prismatic
	// joints.
	Lower      float64
	Upper      float64
	Multiplier float64
	Offset     float64

	// pose snapshot taken at parse time, before any angle is applied
	OriginalPosition r3.Vector
	OriginalRotation quat.Number

	ParentLink *Link
	ChildLink  *Link

	// MimicTarget is the name of the joint this joint mimics, empty if
	// none.
	MimicTarget string
	// mimickingJoints are the joints that copy this joint's raw input
	// value, each applying its own multiplier and offset.
	mimickingJoints []*Joint

	currentAngle float64
}

func newJoint(name string, jointType JointType) *Joint {
	return &Joint{
		Node:       scene.NewNode(name),
		Type:       jointType,
		Multiplier: 1,
	}
}

// Angle returns the last derived angle stored by SetAngle.
func (j *Joint) Angle() float64 {
	return j.currentAngle
}

// MimickingJoints returns the joints driven by this one.
func (j *Joint) MimickingJoints() []*Joint {
	return j.mimickingJoints
}

// SetAngle drives the joint: fixed joints ignore the value, continuous
// joints take it as-is, revolute and prismatic joints clamp it to their
// limits. The clamped value then passes through multiplier and offset
// before moving the node. Every mimicking joint receives the same raw input
// value afterwards. The derived angle stored for this joint is returned.
//
// Concurrent SetAngle calls on the same joint, or on a joint and one of its
// mimics, must be serialized by the caller.
func (j *Joint) SetAngle(value float64) float64 {
	raw := value
	switch j.Type {
	case FixedJoint:
		// the node keeps its original pose
	case ContinuousJoint:
		j.currentAngle = j.applyRotation(value)
	case RevoluteJoint:
		j.currentAngle = j.applyRotation(utils.Clamp(value, j.Lower, j.Upper))
	case PrismaticJoint:
		derived := j.Multiplier*utils.Clamp(value, j.Lower, j.Upper) + j.Offset
		j.writePose(j.OriginalPosition.Add(j.Axis.Mul(derived)), j.OriginalRotation)
		j.currentAngle = derived
	}
	for _, mimic := range j.mimickingJoints {
		mimic.SetAngle(raw)
	}
	return j.currentAngle
}

// applyRotation rotates the joint about its axis expressed in the parent
// frame. The angle sign is inverted to account for the handedness
// conversion out of the URDF frame.
func (j *Joint) applyRotation(value float64) float64 {
	derived := j.Multiplier*value + j.Offset
	axis := spatialmath.Rotate(j.OriginalRotation, j.Axis)
	delta := spatialmath.QuatFromAxisAngle(axis, -derived)
	j.writePose(j.OriginalPosition, quat.Mul(delta, j.OriginalRotation))
	return derived
}

// writePose stores the driven pose either directly on the joint node or,
// when a renderer has attached a group component, as a delta on that group
// so the parsed pose stays untouched. Both representations project to the
// same effective local transform.
func (j *Joint) writePose(position r3.Vector, rotation quat.Number) {
	if group := j.Node.Group(); group != nil {
		group.Position = position.Sub(j.Node.LocalPosition)
		group.Rotation = quat.Mul(rotation, quat.Conj(j.Node.LocalRotation))
		return
	}
	j.Node.LocalPosition = position
	j.Node.LocalRotation = rotation
}
