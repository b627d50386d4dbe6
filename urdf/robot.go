package urdf

import (
	"sort"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/roboviz/urdfkit/scene"
)

// Robot is the aggregate handed to a renderer: the assembled hierarchy plus
// name-indexed access to links and joints. Topology is immutable after a
// successful parse; only joint angles mutate.
type Robot struct {
	Name string
	// Root is the unique link with no parent.
	Root   *Link
	Links  map[string]*Link
	Joints map[string]*Joint

	logger golog.Logger
}

// AvailableJointCount returns the number of drivable (non-fixed) joints.
func (r *Robot) AvailableJointCount() int {
	count := 0
	for _, joint := range r.Joints {
		if joint.Type != FixedJoint {
			count++
		}
	}
	return count
}

// Joint returns the named joint, nil if unknown.
func (r *Robot) Joint(name string) *Joint {
	return r.Joints[name]
}

// Link returns the named link, nil if unknown.
func (r *Robot) Link(name string) *Link {
	return r.Links[name]
}

// Angles returns the current derived angle of every drivable joint.
func (r *Robot) Angles() map[string]float64 {
	angles := make(map[string]float64, len(r.Joints))
	for name, joint := range r.Joints {
		if joint.Type != FixedJoint {
			angles[name] = joint.Angle()
		}
	}
	return angles
}

// TrySetAngle drives the named joint, returning false if no such joint
// exists.
func (r *Robot) TrySetAngle(name string, value float64) bool {
	joint, ok := r.Joints[name]
	if !ok {
		return false
	}
	joint.SetAngle(value)
	return true
}

// SetAngles drives several joints at once. Unknown names are collected into
// the returned error; known joints are still driven.
func (r *Robot) SetAngles(angles map[string]float64) error {
	var errAll error
	for name, value := range angles {
		if !r.TrySetAngle(name, value) {
			multierr.AppendInto(&errAll, errors.Errorf("no joint named %q", name))
		}
	}
	return errAll
}

// PrintAvailableJoints logs the drivable joints with their types and
// limits, a diagnostic enumeration for interactive use.
func (r *Robot) PrintAvailableJoints() {
	names := make([]string, 0, len(r.Joints))
	for name, joint := range r.Joints {
		if joint.Type != FixedJoint {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	r.logger.Infof("robot %q: %d available joints", r.Name, len(names))
	for _, name := range names {
		joint := r.Joints[name]
		switch joint.Type {
		case RevoluteJoint, PrismaticJoint:
			r.logger.Infof("  %s (%s) limits [%v, %v]", name, joint.Type, joint.Lower, joint.Upper)
		default:
			r.logger.Infof("  %s (%s)", name, joint.Type)
		}
	}
}

// Walk traverses the whole robot tree in parent-before-child order,
// yielding each node's resolved local transform and optional mesh payload.
func (r *Robot) Walk(visit func(scene.Visit) bool) {
	r.Root.Node.Walk(visit)
}
