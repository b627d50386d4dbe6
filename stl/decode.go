// Package stl decodes STL mesh files, both the 50-byte-record binary variant
// and the ASCII solid/facet variant, including the de facto Magics color
// extensions carried in otherwise-reserved bytes.
package stl

import (
	"encoding/binary"
	"math"

	"github.com/golang/geo/r3"

	"github.com/roboviz/urdfkit"
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
)

const (
	headerSize = 80
	// 3 floats normal + 3 vertices of 3 floats + uint16 attribute
	faceRecordSize = 12*4 + 2
	binaryPrefix   = headerSize + 4
)

// Decode sniffs the STL variant and decodes the buffer into mesh records.
// Binary files yield a single mesh; ASCII files yield a single mesh with one
// geometry group per solid block.
func Decode(data []byte) ([]*geometry.Mesh, error) {
	if isBinary(data) {
		mesh, err := decodeBinary(data)
		if err != nil {
			return nil, err
		}
		return []*geometry.Mesh{mesh}, nil
	}
	mesh, err := decodeASCII(data)
	if err != nil {
		return nil, err
	}
	return []*geometry.Mesh{mesh}, nil
}

// isBinary reproduces the reference detection order exactly: the declared
// binary length winning first, then an ASCII "solid" sniff over the first 5
// byte offsets (tolerating text-encoding marker bytes), and binary as the
// fallback when both are inconclusive.
func isBinary(data []byte) bool {
	if len(data) >= binaryPrefix {
		nFaces := binary.LittleEndian.Uint32(data[headerSize:])
		expected := int64(binaryPrefix) + int64(nFaces)*faceRecordSize
		if expected == int64(len(data)) {
			return true
		}
	}
	for off := 0; off < 5 && off+5 <= len(data); off++ {
		if string(data[off:off+5]) == "solid" {
			return false
		}
	}
	return true
}

func decodeBinary(data []byte) (*geometry.Mesh, error) {
	if len(data) < binaryPrefix {
		return nil, urdfkit.NewFormatErrorf("STL buffer too short", "%d bytes", len(data))
	}
	nFaces := binary.LittleEndian.Uint32(data[headerSize:])
	if int64(len(data)) < int64(binaryPrefix)+int64(nFaces)*faceRecordSize {
		return nil, urdfkit.NewFormatErrorf("truncated binary STL", "%d faces declared", nFaces)
	}

	defaultColor, hasDefault := headerColor(data[:headerSize])

	mesh := geometry.NewMesh("stl")
	swap := spatialmath.StlBasisSwap()
	for face := uint32(0); face < nFaces; face++ {
		record := data[binaryPrefix+int(face)*faceRecordSize:]

		nx := float32frombytes(record[0:])
		ny := float32frombytes(record[4:])
		nz := float32frombytes(record[8:])
		// axis-system correction applied unconditionally on emit
		normal := r3.Vector{X: float64(-ny), Y: float64(nz), Z: float64(nx)}

		for v := 0; v < 3; v++ {
			base := 12 + v*12
			raw := r3.Vector{
				X: float64(float32frombytes(record[base:])),
				Y: float64(float32frombytes(record[base+4:])),
				Z: float64(float32frombytes(record[base+8:])),
			}
			mesh.Positions = append(mesh.Positions, spatialmath.TransformPoint(swap, raw))
			mesh.Normals = append(mesh.Normals, normal)
		}

		attr := binary.LittleEndian.Uint16(record[48:])
		color := faceColor(attr, defaultColor, hasDefault)
		mesh.Colors = append(mesh.Colors, color, color, color)
	}

	if hasDefault {
		mesh.Material = &geometry.Material{Name: "stl", Diffuse: defaultColor}
	}
	return mesh, nil
}

// headerColor scans header bytes 0..69 for the Magics "COLOR=" tag and, if
// found, reads the 3 following bytes as an sRGB default color. The fourth
// (alpha) byte is ignored.
func headerColor(header []byte) (geometry.Color, bool) {
	for i := 0; i+6+3 <= len(header) && i < 70; i++ {
		if string(header[i:i+4]) == "COLO" && header[i+4] == 'R' && header[i+5] == '=' {
			return geometry.NewColorFromSRGB(header[i+6], header[i+7], header[i+8]), true
		}
	}
	return geometry.White(), false
}

// faceColor unpacks the per-face attribute word: high bit clear means a
// 5-5-5 RGB override (bits 0-4 red, 5-9 green, 10-14 blue, each out of 31),
// high bit set falls back to the file default or white.
func faceColor(attr uint16, defaultColor geometry.Color, hasDefault bool) geometry.Color {
	if attr&0x8000 == 0 {
		return geometry.NewColorFromSRGBFloats(
			float64(attr&0x1F)/31,
			float64((attr>>5)&0x1F)/31,
			float64((attr>>10)&0x1F)/31,
		)
	}
	if hasDefault {
		return defaultColor
	}
	return geometry.White()
}

func float32frombytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
