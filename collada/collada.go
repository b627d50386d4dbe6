// Package collada decodes a restricted COLLADA (.dae) subset into mesh
// records: triangles/polylist/lines primitives, profile_COMMON lambert and
// phong materials, and matrix/rotate/scale/translate/skew scene transforms.
// Physics, animation and lookat elements are out of scope.
package collada

import (
	"encoding/xml"
	"strings"

	"github.com/roboviz/urdfkit"
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/spatialmath"
)

// Result is the decoder output: mesh records plus the names of any images
// the document references. Texture data itself is intentionally not
// resolved.
type Result struct {
	Meshes       []*geometry.Mesh
	TextureNames []string
}

type document struct {
	XMLName      xml.Name       `xml:"COLLADA"`
	Geometries   []geometryElem `xml:"library_geometries>geometry"`
	SceneNodes   []sceneNode    `xml:"library_visual_scenes>visual_scene>node"`
	Materials    []materialElem `xml:"library_materials>material"`
	Effects      []effectElem   `xml:"library_effects>effect"`
	Images       []imageElem    `xml:"library_images>image"`
}

type materialElem struct {
	ID             string `xml:"id,attr"`
	Name           string `xml:"name,attr"`
	InstanceEffect struct {
		URL string `xml:"url,attr"`
	} `xml:"instance_effect"`
}

type imageElem struct {
	ID       string `xml:"id,attr"`
	InitFrom string `xml:"init_from"`
}

// Decode parses a COLLADA document. It fails with a FormatError if the
// COLLADA root element is absent.
func Decode(data []byte) (*Result, error) {
	doc := &document{}
	if err := xml.Unmarshal(data, doc); err != nil {
		return nil, urdfkit.NewFormatError("COLLADA node missing")
	}

	// pass 1: walk the visual scene for per-geometry placement transforms
	// and material bindings
	placements := newScenePlacements()
	for i := range doc.SceneNodes {
		placements.walk(&doc.SceneNodes[i], spatialmath.Mat4FromRowMajor([]float64{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		}))
	}

	materials := newMaterialLibrary(doc.Materials, doc.Effects)

	// pass 2: decode geometry
	result := &Result{}
	for i := range doc.Geometries {
		meshes, err := decodeGeometry(&doc.Geometries[i], placements, materials)
		if err != nil {
			return nil, err
		}
		result.Meshes = append(result.Meshes, meshes...)
	}

	for _, image := range doc.Images {
		if name := strings.TrimSpace(image.InitFrom); name != "" {
			result.TextureNames = append(result.TextureNames, name)
		}
	}
	return result, nil
}

func stripRef(url string) string {
	return strings.TrimPrefix(url, "#")
}
