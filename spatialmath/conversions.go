package spatialmath

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// URDF describes robots in a Z-up right-handed frame; the render frame is
// Y-up. The conversions below move positions, scales, rotations and whole
// geometries between the two.

// ConvertVector converts a URDF position or axis (x, y, z) into the render
// frame as (x, z, -y).
func ConvertVector(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Z, Z: -v.Y}
}

// ConvertScale converts a URDF scale (x, y, z) into the render frame as
// (x, z, y). Scales have no sign flip since they carry no handedness.
func ConvertScale(v r3.Vector) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Z, Z: v.Y}
}

// ConvertRPY converts URDF roll/pitch/yaw Euler angles into a render-frame
// rotation: the angles become (roll, yaw, -pitch) and are composed in Y-Z-X
// order.
func ConvertRPY(roll, pitch, yaw float64) quat.Number {
	return EulerYZXToQuat(roll, yaw, -pitch)
}

// Mat4FromRowMajor builds an mgl64 matrix from 16 row-major values, the
// layout COLLADA documents use.
func Mat4FromRowMajor(values []float64) mgl64.Mat4 {
	m := mgl64.Ident4()
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m.Set(row, col, values[row*4+col])
		}
	}
	return m
}

// StlBasisSwap returns the fixed basis correction applied to every decoded
// STL geometry, mapping (x, y, z) to (x, z, -y).
func StlBasisSwap() mgl64.Mat4 {
	return Mat4FromRowMajor([]float64{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, -1, 0, 0,
		0, 0, 0, 1,
	})
}

// ColladaBasisSwap returns the fixed basis correction applied to every
// decoded COLLADA geometry, mapping (x, y, z) to (x, -z, y).
func ColladaBasisSwap() mgl64.Mat4 {
	return Mat4FromRowMajor([]float64{
		1, 0, 0, 0,
		0, 0, -1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	})
}

// TransformPoint applies the affine transform m to a point.
func TransformPoint(m mgl64.Mat4, v r3.Vector) r3.Vector {
	out := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 1})
	return r3.Vector{X: out.X(), Y: out.Y(), Z: out.Z()}
}

// TransformDirection applies the rotational part of m to a direction,
// ignoring translation. The result is not renormalized.
func TransformDirection(m mgl64.Mat4, v r3.Vector) r3.Vector {
	out := m.Mul4x1(mgl64.Vec4{v.X, v.Y, v.Z, 0})
	return r3.Vector{X: out.X(), Y: out.Y(), Z: out.Z()}
}

// DecomposeMat4 splits an affine transform into translation, rotation and
// scale. A negative determinant is absorbed into the X scale so the rotation
// stays proper.
func DecomposeMat4(m mgl64.Mat4) (r3.Vector, quat.Number, r3.Vector) {
	translation := r3.Vector{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}

	cols := make([]r3.Vector, 3)
	for col := 0; col < 3; col++ {
		cols[col] = r3.Vector{X: m.At(0, col), Y: m.At(1, col), Z: m.At(2, col)}
	}
	scale := r3.Vector{X: cols[0].Norm(), Y: cols[1].Norm(), Z: cols[2].Norm()}
	if m.Det() < 0 {
		scale.X = -scale.X
	}

	rot := mgl64.Ident4()
	scales := []float64{scale.X, scale.Y, scale.Z}
	for col := 0; col < 3; col++ {
		if scales[col] == 0 {
			continue
		}
		rot.Set(0, col, cols[col].X/scales[col])
		rot.Set(1, col, cols[col].Y/scales[col])
		rot.Set(2, col, cols[col].Z/scales[col])
	}
	q := mgl64.Mat4ToQuat(rot)
	return translation, Normalize(quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()}), scale
}
