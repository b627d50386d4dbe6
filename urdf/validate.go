package urdf

import (
	"github.com/roboviz/urdfkit"
)

// validate checks the graph invariants of a freshly assembled robot and
// reports the first violation. It repairs nothing: a robot failing any
// check is not returned to the caller.
func validate(robot *Robot) error {
	for name, joint := range robot.Joints {
		if name != joint.Node.Name {
			return urdfkit.NewConsistencyError(name, "joint map key does not match joint name")
		}
		if joint.Type == "" {
			return urdfkit.NewConsistencyError(name, "joint has no type")
		}
		if joint.ParentLink == nil {
			return urdfkit.NewConsistencyError(name, "joint has no parent link")
		}
		if joint.ChildLink == nil {
			return urdfkit.NewConsistencyError(name, "joint has no child link")
		}
		found := false
		for _, child := range joint.ParentLink.Children() {
			if child == joint.Node {
				found = true
				break
			}
		}
		if !found {
			return urdfkit.NewConsistencyError(name, "joint is not among its parent link's children")
		}
		if joint.ChildLink.Parent() != joint.Node {
			return urdfkit.NewConsistencyError(name, "child link is not parented to the joint")
		}
	}

	for name, link := range robot.Links {
		if name != link.Node.Name {
			return urdfkit.NewConsistencyError(name, "link map key does not match link name")
		}
		// links parented to a joint must be that joint's child link; checks
		// intentionally do not recurse into link descendants
		if parent := link.Parent(); parent != nil {
			if joint, ok := robot.Joints[parent.Name]; ok && joint.ChildLink != link {
				return urdfkit.NewConsistencyError(name, "link is parented to a joint that does not own it")
			}
		}
	}
	return nil
}

// checkMimicCycles rejects mimic relationships that loop back on
// themselves, which would otherwise recurse forever during angle
// propagation.
func checkMimicCycles(joints map[string]*Joint) error {
	for name, joint := range joints {
		seen := map[string]bool{name: true}
		for target := joint.MimicTarget; target != ""; {
			if seen[target] {
				return urdfkit.NewFormatErrorf("mimic cycle detected", "%s", name)
			}
			seen[target] = true
			next, ok := joints[target]
			if !ok {
				break
			}
			target = next.MimicTarget
		}
	}
	return nil
}
