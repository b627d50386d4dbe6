package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// RadialSegments returns the tessellation used for round primitives: at
// least 12 segments, growing with the radius.
func RadialSegments(radius float64) int {
	if segments := int(math.Ceil(radius * 6)); segments > 12 {
		return segments
	}
	return 12
}

func (m *Mesh) appendTriangle(a, b, c, normal r3.Vector) {
	m.Positions = append(m.Positions, a, b, c)
	m.Normals = append(m.Normals, normal, normal, normal)
}

func (m *Mesh) appendQuad(a, b, c, d, normal r3.Vector) {
	m.appendTriangle(a, b, c, normal)
	m.appendTriangle(a, c, d, normal)
}

// NewBoxMesh generates an axis-aligned box centered at the origin from its
// full extents.
func NewBoxMesh(sizeX, sizeY, sizeZ float64) *Mesh {
	hx, hy, hz := sizeX/2, sizeY/2, sizeZ/2
	m := NewMesh("box")

	// corners: bit 0 = +x, bit 1 = +y, bit 2 = +z
	corner := func(px, py, pz bool) r3.Vector {
		v := r3.Vector{X: -hx, Y: -hy, Z: -hz}
		if px {
			v.X = hx
		}
		if py {
			v.Y = hy
		}
		if pz {
			v.Z = hz
		}
		return v
	}

	m.appendQuad(corner(true, false, false), corner(true, true, false),
		corner(true, true, true), corner(true, false, true), r3.Vector{X: 1})
	m.appendQuad(corner(false, false, true), corner(false, true, true),
		corner(false, true, false), corner(false, false, false), r3.Vector{X: -1})
	m.appendQuad(corner(false, true, false), corner(false, true, true),
		corner(true, true, true), corner(true, true, false), r3.Vector{Y: 1})
	m.appendQuad(corner(false, false, true), corner(false, false, false),
		corner(true, false, false), corner(true, false, true), r3.Vector{Y: -1})
	m.appendQuad(corner(false, false, true), corner(true, false, true),
		corner(true, true, true), corner(false, true, true), r3.Vector{Z: 1})
	m.appendQuad(corner(true, false, false), corner(false, false, false),
		corner(false, true, false), corner(true, true, false), r3.Vector{Z: -1})
	return m
}

// NewSphereMesh generates a latitude/longitude tessellated sphere centered
// at the origin.
func NewSphereMesh(radius float64) *Mesh {
	widthSegments := RadialSegments(radius)
	heightSegments := widthSegments / 2
	m := NewMesh("sphere")

	at := func(lat, lon int) r3.Vector {
		theta := math.Pi * float64(lat) / float64(heightSegments)
		phi := 2 * math.Pi * float64(lon) / float64(widthSegments)
		return r3.Vector{
			X: radius * math.Sin(theta) * math.Cos(phi),
			Y: radius * math.Cos(theta),
			Z: radius * math.Sin(theta) * math.Sin(phi),
		}
	}
	normal := func(v r3.Vector) r3.Vector {
		if radius == 0 {
			return r3.Vector{Y: 1}
		}
		return v.Mul(1 / radius)
	}

	for lat := 0; lat < heightSegments; lat++ {
		for lon := 0; lon < widthSegments; lon++ {
			a, b := at(lat, lon), at(lat, lon+1)
			c, d := at(lat+1, lon+1), at(lat+1, lon)
			if lat > 0 {
				m.Positions = append(m.Positions, a, b, c)
				m.Normals = append(m.Normals, normal(a), normal(b), normal(c))
			}
			if lat < heightSegments-1 {
				m.Positions = append(m.Positions, a, c, d)
				m.Normals = append(m.Normals, normal(a), normal(c), normal(d))
			}
		}
	}
	return m
}

// NewCylinderMesh generates a capped cylinder centered at the origin with
// its axis along Y.
func NewCylinderMesh(radius, length float64) *Mesh {
	segments := RadialSegments(radius)
	m := NewMesh("cylinder")
	hy := length / 2

	rim := func(seg int, y float64) r3.Vector {
		phi := 2 * math.Pi * float64(seg) / float64(segments)
		return r3.Vector{X: radius * math.Cos(phi), Y: y, Z: radius * math.Sin(phi)}
	}

	for seg := 0; seg < segments; seg++ {
		bottomA, bottomB := rim(seg, -hy), rim(seg+1, -hy)
		topA, topB := rim(seg, hy), rim(seg+1, hy)

		// side, split into two triangles with outward radial normals
		normalA := r3.Vector{X: bottomA.X, Z: bottomA.Z}.Normalize()
		normalB := r3.Vector{X: bottomB.X, Z: bottomB.Z}.Normalize()
		m.Positions = append(m.Positions, bottomA, topA, topB)
		m.Normals = append(m.Normals, normalA, normalA, normalB)
		m.Positions = append(m.Positions, bottomA, topB, bottomB)
		m.Normals = append(m.Normals, normalA, normalB, normalB)

		// caps
		m.appendTriangle(r3.Vector{Y: hy}, topA, topB, r3.Vector{Y: 1})
		m.appendTriangle(r3.Vector{Y: -hy}, bottomB, bottomA, r3.Vector{Y: -1})
	}
	return m
}
