package stl

import (
	"encoding/binary"
	"math"

	"github.com/golang/geo/r3"
)

// Triangle is one raw binary STL face record, in file coordinates and with
// the attribute word unexamined. Used by EncodeBinary and by round-trip
// tests.
type Triangle struct {
	Normal    r3.Vector
	Vertices  [3]r3.Vector
	Attribute uint16
}

// EncodeBinary writes a binary STL buffer from raw face records. header is
// truncated or zero-padded to the fixed 80 bytes.
func EncodeBinary(header []byte, triangles []Triangle) []byte {
	out := make([]byte, binaryPrefix+len(triangles)*faceRecordSize)
	copy(out[:headerSize], header)
	binary.LittleEndian.PutUint32(out[headerSize:], uint32(len(triangles)))

	for i, tri := range triangles {
		record := out[binaryPrefix+i*faceRecordSize:]
		putVector(record[0:], tri.Normal)
		for v, vertex := range tri.Vertices {
			putVector(record[12+v*12:], vertex)
		}
		binary.LittleEndian.PutUint16(record[48:], tri.Attribute)
	}
	return out
}

func putVector(b []byte, v r3.Vector) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
