package collada

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/roboviz/urdfkit"
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
	"github.com/roboviz/urdfkit/utils"
)

type geometryElem struct {
	ID   string    `xml:"id,attr"`
	Name string    `xml:"name,attr"`
	Mesh *meshElem `xml:"mesh"`
}

type meshElem struct {
	Sources   []sourceElem    `xml:"source"`
	Vertices  []verticesElem  `xml:"vertices"`
	Triangles []primitiveElem `xml:"triangles"`
	Polylists []primitiveElem `xml:"polylist"`
	Lines     []primitiveElem `xml:"lines"`
}

type sourceElem struct {
	ID         string `xml:"id,attr"`
	FloatArray string `xml:"float_array"`
}

type verticesElem struct {
	ID     string      `xml:"id,attr"`
	Inputs []inputElem `xml:"input"`
}

type inputElem struct {
	Semantic string `xml:"semantic,attr"`
	Source   string `xml:"source,attr"`
	Offset   int    `xml:"offset,attr"`
}

type primitiveElem struct {
	Material string      `xml:"material,attr"`
	Inputs   []inputElem `xml:"input"`
	VCount   string      `xml:"vcount"`
	P        string      `xml:"p"`
}

type primitiveKind int

const (
	kindTriangles primitiveKind = iota
	kindPolylist
	kindLines
)

func decodeGeometry(ge *geometryElem, placements *scenePlacements, materials *materialLibrary) ([]*geometry.Mesh, error) {
	if ge.Mesh == nil {
		return nil, nil
	}

	sources := map[string][]float64{}
	for _, source := range ge.Mesh.Sources {
		sources[source.ID] = utils.SpaceDelimitedStringToFloatSlice(source.FloatArray)
	}
	// a vertex source indirects to its position source
	vertexSources := map[string]string{}
	for _, vertices := range ge.Mesh.Vertices {
		for _, input := range vertices.Inputs {
			if input.Semantic == "POSITION" {
				vertexSources[vertices.ID] = stripRef(input.Source)
			}
		}
	}
	resolveSource := func(url string) []float64 {
		id := stripRef(url)
		if positionID, ok := vertexSources[id]; ok {
			id = positionID
		}
		return sources[id]
	}

	placement, ok := placements.transforms[ge.ID]
	if !ok {
		placement = mgl64.Ident4()
	}
	bindings := placements.materials[ge.ID]

	var meshes []*geometry.Mesh
	decodeAll := func(prims []primitiveElem, kind primitiveKind) error {
		for i := range prims {
			mesh, err := decodePrimitive(ge, &prims[i], kind, resolveSource, bindings, materials)
			if err != nil {
				return err
			}
			if mesh == nil {
				continue
			}
			mesh.ApplyMatrix(spatialmath.ColladaBasisSwap().Mul4(placement))
			if !mesh.Lines && len(mesh.Normals) == 0 {
				mesh.SynthesizeNormals()
			}
			meshes = append(meshes, mesh)
		}
		return nil
	}
	if err := decodeAll(ge.Mesh.Triangles, kindTriangles); err != nil {
		return nil, err
	}
	if err := decodeAll(ge.Mesh.Polylists, kindPolylist); err != nil {
		return nil, err
	}
	if err := decodeAll(ge.Mesh.Lines, kindLines); err != nil {
		return nil, err
	}
	return meshes, nil
}

// vertexRef indexes one emitted vertex into the semantic sources.
type vertexRef struct {
	position int
	normal   int
	uv       int
}

func decodePrimitive(
	ge *geometryElem,
	prim *primitiveElem,
	kind primitiveKind,
	resolveSource func(string) []float64,
	bindings map[string]string,
	materials *materialLibrary,
) (*geometry.Mesh, error) {
	indices := utils.SpaceDelimitedStringToIntSlice(prim.P)
	if len(indices) == 0 {
		return nil, nil
	}

	positionOffset, normalOffset, uvOffset := -1, -1, -1
	var positionSource, normalSource, uvSource []float64
	for _, input := range prim.Inputs {
		switch input.Semantic {
		case "VERTEX":
			positionOffset = input.Offset
			positionSource = resolveSource(input.Source)
		case "NORMAL":
			normalOffset = input.Offset
			normalSource = resolveSource(input.Source)
		case "TEXCOORD":
			uvOffset = input.Offset
			uvSource = resolveSource(input.Source)
		}
	}
	if positionOffset < 0 || len(positionSource) == 0 {
		return nil, urdfkit.NewFormatErrorf("COLLADA primitive missing VERTEX input", "%s", ge.ID)
	}

	// the stride between consecutive same-semantic indices is the number of
	// declared inputs
	stride := len(prim.Inputs)
	total := len(indices) / stride

	fetch := func(vertex int) vertexRef {
		base := vertex * stride
		ref := vertexRef{position: indices[base+positionOffset], normal: -1, uv: -1}
		if normalOffset >= 0 && len(normalSource) > 0 {
			ref.normal = indices[base+normalOffset]
		}
		if uvOffset >= 0 && len(uvSource) > 0 {
			ref.uv = indices[base+uvOffset]
		}
		return ref
	}

	var refs []vertexRef
	switch kind {
	case kindTriangles, kindLines:
		for vertex := 0; vertex < total; vertex++ {
			refs = append(refs, fetch(vertex))
		}
	case kindPolylist:
		// group by the per-polygon vertex counts, then fan-triangulate:
		// vertex 0 pairs with every consecutive pair of the rest
		vcounts := utils.SpaceDelimitedStringToIntSlice(prim.VCount)
		vertex := 0
		for _, count := range vcounts {
			if vertex+count > total {
				return nil, urdfkit.NewFormatErrorf("COLLADA polylist vcount overruns indices", "%s", ge.ID)
			}
			for corner := 1; corner+1 < count; corner++ {
				refs = append(refs, fetch(vertex), fetch(vertex+corner), fetch(vertex+corner+1))
			}
			vertex += count
		}
	}

	name := ge.Name
	if name == "" {
		name = ge.ID
	}
	mesh := geometry.NewMesh(name)
	mesh.Lines = kind == kindLines

	for _, ref := range refs {
		base := ref.position * 3
		if base+2 >= len(positionSource) {
			return nil, urdfkit.NewFormatErrorf("COLLADA vertex index out of range", "%s", ge.ID)
		}
		mesh.Positions = append(mesh.Positions, r3.Vector{
			X: positionSource[base], Y: positionSource[base+1], Z: positionSource[base+2],
		})
		if ref.normal >= 0 && !mesh.Lines {
			nbase := ref.normal * 3
			if nbase+2 >= len(normalSource) {
				return nil, urdfkit.NewFormatErrorf("COLLADA normal index out of range", "%s", ge.ID)
			}
			mesh.Normals = append(mesh.Normals, r3.Vector{
				X: normalSource[nbase], Y: normalSource[nbase+1], Z: normalSource[nbase+2],
			})
		}
		if ref.uv >= 0 {
			ubase := ref.uv * 2
			if ubase+1 >= len(uvSource) {
				return nil, urdfkit.NewFormatErrorf("COLLADA texcoord index out of range", "%s", ge.ID)
			}
			mesh.UVs = append(mesh.UVs, [2]float64{uvSource[ubase], uvSource[ubase+1]})
		}
	}

	target := ""
	if bindings != nil {
		target = bindings[prim.Material]
	}
	mesh.Material = materials.resolve(target)
	return mesh, nil
}
