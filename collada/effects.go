package collada

import (
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/utils"
)

type effectElem struct {
	ID      string        `xml:"id,attr"`
	Profile profileCommon `xml:"profile_COMMON"`
}

type profileCommon struct {
	NewParams []newParamElem `xml:"newparam"`
	Lambert   *shadingElem   `xml:"technique>lambert"`
	Phong     *shadingElem   `xml:"technique>phong"`
}

type shadingElem struct {
	Emission          *colorOrParam `xml:"emission"`
	Diffuse           *colorOrParam `xml:"diffuse"`
	Specular          *colorOrParam `xml:"specular"`
	Shininess         *floatOrParam `xml:"shininess"`
	Reflectivity      *floatOrParam `xml:"reflectivity"`
	IndexOfRefraction *floatOrParam `xml:"index_of_refraction"`
}

type colorOrParam struct {
	Color string    `xml:"color"`
	Param *paramRef `xml:"param"`
}

type floatOrParam struct {
	Float string    `xml:"float"`
	Param *paramRef `xml:"param"`
}

type paramRef struct {
	Ref string `xml:"ref,attr"`
}

type newParamElem struct {
	SID    string `xml:"sid,attr"`
	Float  string `xml:"float"`
	Float2 string `xml:"float2"`
	Float3 string `xml:"float3"`
	Float4 string `xml:"float4"`
	// surface and sampler2D parameters are recognized so references to them
	// do not fail, but texture data is never resolved
	Surface   *struct{} `xml:"surface"`
	Sampler2D *struct{} `xml:"sampler2D"`
}

// paramValue is the closed set of newparam value kinds.
type paramValue struct {
	values []float64 // 1, 2, 3 or 4 components
}

// materialLibrary resolves a material id through library_materials and
// library_effects into a material descriptor.
type materialLibrary struct {
	materials map[string]materialElem
	effects   map[string]*effectElem
	resolved  map[string]*geometry.Material
}

func newMaterialLibrary(materials []materialElem, effects []effectElem) *materialLibrary {
	lib := &materialLibrary{
		materials: map[string]materialElem{},
		effects:   map[string]*effectElem{},
		resolved:  map[string]*geometry.Material{},
	}
	for _, material := range materials {
		lib.materials[material.ID] = material
	}
	for i := range effects {
		lib.effects[effects[i].ID] = &effects[i]
	}
	return lib
}

// resolve maps a material id to its descriptor, falling back to the default
// flat blue double-sided material when any link of the chain is missing.
func (lib *materialLibrary) resolve(materialID string) *geometry.Material {
	if materialID == "" {
		return geometry.DefaultMaterial()
	}
	if cached, ok := lib.resolved[materialID]; ok {
		return cached
	}

	material, ok := lib.materials[materialID]
	if !ok {
		return geometry.DefaultMaterial()
	}
	effect, ok := lib.effects[stripRef(material.InstanceEffect.URL)]
	if !ok {
		return geometry.DefaultMaterial()
	}
	shading := effect.Profile.Lambert
	phong := false
	if effect.Profile.Phong != nil {
		shading = effect.Profile.Phong
		phong = true
	}
	if shading == nil {
		return geometry.DefaultMaterial()
	}

	params := map[string]paramValue{}
	for _, param := range effect.Profile.NewParams {
		switch {
		case param.Float != "":
			params[param.SID] = paramValue{values: utils.SpaceDelimitedStringToFloatSlice(param.Float)}
		case param.Float2 != "":
			params[param.SID] = paramValue{values: utils.SpaceDelimitedStringToFloatSlice(param.Float2)}
		case param.Float3 != "":
			params[param.SID] = paramValue{values: utils.SpaceDelimitedStringToFloatSlice(param.Float3)}
		case param.Float4 != "":
			params[param.SID] = paramValue{values: utils.SpaceDelimitedStringToFloatSlice(param.Float4)}
		}
	}

	name := material.Name
	if name == "" {
		name = material.ID
	}
	descriptor := &geometry.Material{Name: name}
	descriptor.Emissive = resolveColor(shading.Emission, params, geometry.Color{A: 1})
	descriptor.Diffuse = resolveColor(shading.Diffuse, params, geometry.Color{R: 1, G: 1, B: 1, A: 1})
	descriptor.Reflectivity = resolveFloat(shading.Reflectivity, params, 0)
	descriptor.IndexOfRefraction = resolveFloat(shading.IndexOfRefraction, params, 1)
	if phong {
		descriptor.Specular = resolveColor(shading.Specular, params, geometry.Color{A: 1})
		descriptor.Shininess = resolveFloat(shading.Shininess, params, 0)
	}

	lib.resolved[materialID] = descriptor
	return descriptor
}

func resolveColor(elem *colorOrParam, params map[string]paramValue, fallback geometry.Color) geometry.Color {
	if elem == nil {
		return fallback
	}
	var components []float64
	if elem.Color != "" {
		components = utils.SpaceDelimitedStringToFloatSlice(elem.Color)
	} else if elem.Param != nil {
		components = params[elem.Param.Ref].values
	}
	if len(components) < 3 {
		return fallback
	}
	color := geometry.Color{R: components[0], G: components[1], B: components[2], A: 1}
	if len(components) >= 4 {
		color.A = components[3]
	}
	return color
}

func resolveFloat(elem *floatOrParam, params map[string]paramValue, fallback float64) float64 {
	if elem == nil {
		return fallback
	}
	var components []float64
	if elem.Float != "" {
		components = utils.SpaceDelimitedStringToFloatSlice(elem.Float)
	} else if elem.Param != nil {
		components = params[elem.Param.Ref].values
	}
	if len(components) == 0 {
		return fallback
	}
	return components[0]
}
