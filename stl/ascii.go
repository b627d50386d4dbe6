package stl

import (
	"regexp"
	"strconv"

	"github.com/golang/geo/r3"

	"github.com/roboviz/urdfkit"
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
	"github.com/roboviz/urdfkit/utils"
)

var (
	solidRe  = regexp.MustCompile(`(?s)solid([^\n]*)\n(.*?)endsolid([^\n]*)`)
	facetRe  = regexp.MustCompile(`(?s)facet(.*?)endfacet`)
	normalRe = regexp.MustCompile(`normal\s+([^\n]+)`)
	vertexRe = regexp.MustCompile(`vertex\s+([^\n]+)`)
	// non-standard per-solid color suffix, e.g. "endsolid body=RGB(200,16,16)"
	colorRe = regexp.MustCompile(`(\S+)\s*=\s*RGB\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)`)
)

func decodeASCII(data []byte) (*geometry.Mesh, error) {
	solids := solidRe.FindAllStringSubmatch(string(data), -1)
	if len(solids) == 0 {
		return nil, urdfkit.NewFormatError("no solid blocks found in ASCII STL")
	}

	mesh := geometry.NewMesh("stl")
	type groupColor struct {
		color geometry.Color
		ok    bool
	}
	var colors []groupColor
	faceIndex := 0

	for _, solid := range solids {
		start := len(mesh.Positions)

		for _, facet := range facetRe.FindAllStringSubmatch(solid[2], -1) {
			normals := normalRe.FindAllStringSubmatch(facet[1], -1)
			vertices := vertexRe.FindAllStringSubmatch(facet[1], -1)
			if len(normals) != 1 || len(vertices) != 3 {
				return nil, urdfkit.NewFormatErrorf("malformed face", "%d", faceIndex)
			}
			normal, ok := parseVector(normals[0][1])
			if !ok {
				return nil, urdfkit.NewFormatErrorf("malformed face", "%d", faceIndex)
			}
			for _, vertex := range vertices {
				position, ok := parseVector(vertex[1])
				if !ok {
					return nil, urdfkit.NewFormatErrorf("malformed face", "%d", faceIndex)
				}
				mesh.Positions = append(mesh.Positions, position)
				mesh.Normals = append(mesh.Normals, normal)
			}
			faceIndex++
		}

		mesh.Groups = append(mesh.Groups, geometry.Group{
			Start: start,
			Count: len(mesh.Positions) - start,
		})
		color, ok := parseSolidColor(solid[3])
		colors = append(colors, groupColor{color: color, ok: ok})
	}

	// per-solid colors must cover every group, otherwise a single default
	// white material stands in for all of them
	colored := 0
	for _, c := range colors {
		if c.ok {
			colored++
		}
	}
	switch {
	case colored == len(mesh.Groups):
		for i := range mesh.Groups {
			mesh.Groups[i].Material = &geometry.Material{Name: "stl", Diffuse: colors[i].color}
		}
		mesh.Material = mesh.Groups[0].Material
	case colored > 0:
		white := &geometry.Material{Name: "stl", Diffuse: geometry.White()}
		for i := range mesh.Groups {
			mesh.Groups[i].Material = white
		}
		mesh.Material = white
	}

	mesh.ApplyMatrix(spatialmath.StlBasisSwap())
	return mesh, nil
}

func parseVector(s string) (r3.Vector, bool) {
	fields := utils.SpaceDelimitedStringToFloatSlice(s)
	if len(fields) < 3 {
		return r3.Vector{}, false
	}
	return r3.Vector{X: fields[0], Y: fields[1], Z: fields[2]}, true
}

func parseSolidColor(endsolidName string) (geometry.Color, bool) {
	match := colorRe.FindStringSubmatch(endsolidName)
	if match == nil {
		return geometry.Color{}, false
	}
	r, _ := strconv.Atoi(match[2])
	g, _ := strconv.Atoi(match[3])
	b, _ := strconv.Atoi(match[4])
	return geometry.NewColorFromSRGB(uint8(r), uint8(g), uint8(b)), true
}
