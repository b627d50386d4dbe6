// Package geometry holds the renderer-agnostic mesh record emitted by the
// STL and COLLADA decoders, plus analytic generators for the primitive
// shapes URDF links may declare instead of a mesh file.
package geometry

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/roboviz/urdfkit/spatialmath"
)

// Group marks a contiguous vertex range rendered with its own material. STL
// files with multiple solids and COLLADA primitive blocks map onto groups.
type Group struct {
	Start    int
	Count    int
	Material *Material
}

// Mesh is a triangle soup with optional per-vertex attributes and a local
// placement. Every 3 consecutive positions form one triangle.
type Mesh struct {
	Name      string
	Positions []r3.Vector
	Normals   []r3.Vector
	UVs       [][2]float64
	// Colors are per-vertex when present and always cover every vertex.
	Colors []Color
	Groups []Group
	// Material is nil until a decoder or the URDF parser assigns one;
	// first assignment wins.
	Material *Material

	// Lines marks a line-segment mesh: every 2 consecutive positions form
	// one segment and no normals are carried.
	Lines bool

	// Pose and Scale are the mesh's own local placement, composed with the
	// URDF visual origin when the mesh is attached to a link.
	Pose  spatialmath.Pose
	Scale r3.Vector
}

// NewMesh returns an empty mesh with an identity placement.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:  name,
		Pose:  spatialmath.NewZeroPose(),
		Scale: r3.Vector{X: 1, Y: 1, Z: 1},
	}
}

// TriangleCount returns the number of triangles in the soup.
func (m *Mesh) TriangleCount() int {
	return len(m.Positions) / 3
}

// ApplyMatrix bakes an affine transform into the mesh: positions transform
// as points, normals by the inverse transpose and are renormalized.
func (m *Mesh) ApplyMatrix(mat mgl64.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = spatialmath.TransformPoint(mat, p)
	}
	if len(m.Normals) == 0 {
		return
	}
	normalMat := mat.Inv().Transpose()
	for i, n := range m.Normals {
		moved := spatialmath.TransformDirection(normalMat, n)
		if norm := moved.Norm(); norm > 0 {
			moved = moved.Mul(1 / norm)
		}
		m.Normals[i] = moved
	}
}

// SynthesizeNormals computes per-vertex normals by averaging the face
// normals of all faces sharing a position. Used for COLLADA meshes that
// carry no NORMAL input.
func (m *Mesh) SynthesizeNormals() {
	accumulated := make(map[r3.Vector]r3.Vector, len(m.Positions))
	for i := 0; i+2 < len(m.Positions); i += 3 {
		a, b, c := m.Positions[i], m.Positions[i+1], m.Positions[i+2]
		face := b.Sub(a).Cross(c.Sub(a))
		accumulated[a] = accumulated[a].Add(face)
		accumulated[b] = accumulated[b].Add(face)
		accumulated[c] = accumulated[c].Add(face)
	}
	m.Normals = make([]r3.Vector, len(m.Positions))
	for i, p := range m.Positions {
		n := accumulated[p]
		if norm := n.Norm(); norm > 0 {
			n = n.Mul(1 / norm)
		}
		m.Normals[i] = n
	}
}
