package collada

import (
	"encoding/xml"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/roboviz/urdfkit/spatialmath"
	"github.com/roboviz/urdfkit/utils"
)

// sceneNode is one visual-scene node. Its transform children must compose in
// document order, which struct-tag unmarshaling cannot preserve across
// differently named elements, so it decodes itself token by token.
type sceneNode struct {
	id        string
	ops       []transformOp
	instances []instanceGeometry
	children  []sceneNode
}

type transformOp struct {
	kind   string
	values []float64
}

type instanceGeometry struct {
	url string
	// bind_material symbol to target material id
	materials map[string]string
}

func (n *sceneNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			n.id = attr.Value
		}
	}
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case "matrix", "rotate", "scale", "translate", "transform", "skew":
				var text string
				if err := d.DecodeElement(&text, &elem); err != nil {
					return err
				}
				n.ops = append(n.ops, transformOp{
					kind:   elem.Name.Local,
					values: utils.SpaceDelimitedStringToFloatSlice(text),
				})
			case "node":
				var child sceneNode
				if err := d.DecodeElement(&child, &elem); err != nil {
					return err
				}
				n.children = append(n.children, child)
			case "instance_geometry":
				var inst instanceGeometryElem
				if err := d.DecodeElement(&inst, &elem); err != nil {
					return err
				}
				bound := instanceGeometry{url: inst.URL, materials: map[string]string{}}
				for _, binding := range inst.Bindings {
					bound.materials[binding.Symbol] = stripRef(binding.Target)
				}
				n.instances = append(n.instances, bound)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type instanceGeometryElem struct {
	URL      string `xml:"url,attr"`
	Bindings []struct {
		Symbol string `xml:"symbol,attr"`
		Target string `xml:"target,attr"`
	} `xml:"bind_material>technique_common>instance_material"`
}

// scenePlacements records, per geometry id, the transform accumulated down
// to the instancing node and the material bindings declared there.
type scenePlacements struct {
	transforms map[string]mgl64.Mat4
	materials  map[string]map[string]string
}

func newScenePlacements() *scenePlacements {
	return &scenePlacements{
		transforms: map[string]mgl64.Mat4{},
		materials:  map[string]map[string]string{},
	}
}

func (p *scenePlacements) walk(node *sceneNode, parent mgl64.Mat4) {
	accumulated := parent
	for _, op := range node.ops {
		accumulated = accumulated.Mul4(op.matrix())
	}
	for _, inst := range node.instances {
		id := stripRef(inst.url)
		p.transforms[id] = accumulated
		p.materials[id] = inst.materials
	}
	for i := range node.children {
		p.walk(&node.children[i], accumulated)
	}
}

func (op transformOp) matrix() mgl64.Mat4 {
	v := op.values
	switch op.kind {
	case "matrix":
		if len(v) == 16 {
			return spatialmath.Mat4FromRowMajor(v)
		}
	case "rotate":
		if len(v) == 4 {
			axis := mgl64.Vec3{v[0], v[1], v[2]}
			if axis.Len() > 0 {
				return mgl64.HomogRotate3D(utils.DegToRad(v[3]), axis.Normalize())
			}
		}
	case "scale":
		if len(v) == 3 {
			return mgl64.Scale3D(v[0], v[1], v[2])
		}
	case "translate", "transform":
		if len(v) == 3 {
			return mgl64.Translate3D(v[0], v[1], v[2])
		}
	case "skew":
		if len(v) == 7 {
			return skewMatrix(v[0], mgl64.Vec3{v[1], v[2], v[3]}, mgl64.Vec3{v[4], v[5], v[6]})
		}
	}
	return mgl64.Ident4()
}

// skewMatrix builds the COLLADA skew transform: shear along the translation
// axis by the given angle in degrees about the rotation axis.
func skewMatrix(angleDeg float64, rotation, translation mgl64.Vec3) mgl64.Mat4 {
	if rotation.Len() == 0 || translation.Len() == 0 {
		return mgl64.Ident4()
	}
	rotation = rotation.Normalize()
	translation = translation.Normalize()
	shear := math.Tan(utils.DegToRad(angleDeg))

	m := mgl64.Ident4()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.Set(row, col, m.At(row, col)+shear*translation[row]*rotation[col])
		}
	}
	return m
}
