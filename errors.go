// Package urdfkit loads robot descriptions (URDF plus the STL/COLLADA mesh
// assets they reference) into a renderer-agnostic kinematic tree.
//
// The subpackages do the actual work: urdf parses the robot XML and builds
// the tree, stl and collada decode mesh files, scene holds the hierarchy
// nodes, and geometry/spatialmath supply the shared mesh and math types.
// This package only defines the error taxonomy shared by all of them.
package urdfkit

import "fmt"

// FormatError reports malformed or unsupported file content. It is always
// fatal to the enclosing decode or parse call; there is no partial result.
type FormatError struct {
	// Msg describes what was malformed.
	Msg string
	// Elem locates the offending element when known, e.g. a face index,
	// joint name or file path. Empty if the failure is not element-specific.
	Elem string
}

func (e *FormatError) Error() string {
	if e.Elem == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Elem)
}

// NewFormatError returns a FormatError with no element context.
func NewFormatError(msg string) error {
	return &FormatError{Msg: msg}
}

// NewFormatErrorf returns a FormatError locating the offending element.
func NewFormatErrorf(msg, elemFormat string, args ...interface{}) error {
	return &FormatError{Msg: msg, Elem: fmt.Sprintf(elemFormat, args...)}
}

// ConsistencyError reports a violated graph invariant detected after the
// kinematic tree is fully assembled. The robot is not usable.
type ConsistencyError struct {
	// Elem is the name of the joint or link that violated the invariant.
	Elem string
	Msg  string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Elem, e.Msg)
}

// NewConsistencyError returns a ConsistencyError for the named element.
func NewConsistencyError(elem, msg string) error {
	return &ConsistencyError{Elem: elem, Msg: msg}
}
