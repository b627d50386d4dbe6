// Package urdf parses Unified Robot Description Format documents into a
// kinematic tree of links and joints with fully resolved visual geometry,
// loading referenced STL and COLLADA mesh assets through an abstract file
// reader.
package urdf

import (
	"bytes"
	"encoding/xml"
	"path"
	"sort"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/num/quat"

	"github.com/roboviz/urdfkit"
	"github.com/roboviz/urdfkit/collada"
	"github.com/roboviz/urdfkit/geometry"
	"github.com/roboviz/urdfkit/scene"
	"github.com/roboviz/urdfkit/spatialmath"
	"github.com/roboviz/urdfkit/stl"
	"github.com/roboviz/urdfkit/utils"
)

type robotElem struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []linkElem  `xml:"link"`
	Joints  []jointElem `xml:"joint"`
}

type linkElem struct {
	Name    string       `xml:"name,attr"`
	Visuals []visualElem `xml:"visual"`
}

type visualElem struct {
	Origin   *originElem   `xml:"origin"`
	Geometry geometryElem  `xml:"geometry"`
	Material *materialElem `xml:"material"`
}

type originElem struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type geometryElem struct {
	Mesh     *meshRefElem  `xml:"mesh"`
	Box      *boxElem      `xml:"box"`
	Sphere   *sphereElem   `xml:"sphere"`
	Cylinder *cylinderElem `xml:"cylinder"`
}

type meshRefElem struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr"`
}

type boxElem struct {
	Size string `xml:"size,attr"`
}

type sphereElem struct {
	Radius float64 `xml:"radius,attr"`
}

type cylinderElem struct {
	Radius float64 `xml:"radius,attr"`
	Length float64 `xml:"length,attr"`
}

type materialElem struct {
	Name  string     `xml:"name,attr"`
	Color *colorElem `xml:"color"`
}

type colorElem struct {
	RGBA string `xml:"rgba,attr"`
}

type jointElem struct {
	Name   string        `xml:"name,attr"`
	Type   string        `xml:"type,attr"`
	Parent frameElem     `xml:"parent"`
	Child  frameElem     `xml:"child"`
	Origin *originElem   `xml:"origin"`
	Axis   *axisElem     `xml:"axis"`
	Limit  *limitElem    `xml:"limit"`
	Mimic  *mimicElem    `xml:"mimic"`
}

type frameElem struct {
	Link string `xml:"link,attr"`
}

type axisElem struct {
	XYZ string `xml:"xyz,attr"`
}

type limitElem struct {
	Lower float64 `xml:"lower,attr"`
	Upper float64 `xml:"upper,attr"`
}

type mimicElem struct {
	Joint      string   `xml:"joint,attr"`
	Multiplier *float64 `xml:"multiplier,attr"`
	Offset     *float64 `xml:"offset,attr"`
}

// ParseConfig carries the collaborators a parse needs. Zero values get
// sensible defaults: an OS file reader and the global logger.
type ParseConfig struct {
	// Packages resolves package:// mesh references.
	Packages PackageMap
	// WorkingPath anchors non-package mesh references.
	WorkingPath string
	// Reader loads mesh asset bytes; the parser itself only does path
	// arithmetic.
	Reader FileReader
	Logger golog.Logger
}

// ParseFile reads and parses a URDF file from disk, resolving relative mesh
// references against the file's own directory.
func ParseFile(filename string, packages PackageMap, logger golog.Logger) (*Robot, error) {
	data, err := OSFileReader{}.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data, ParseConfig{
		Packages:    packages,
		WorkingPath: path.Dir(filename),
		Logger:      logger,
	})
}

// Parse parses a URDF document and assembles the Robot aggregate. Any
// malformed content, unresolvable mesh reference or unsupported joint type
// fails the whole parse; there is no partial robot.
func Parse(data []byte, conf ParseConfig) (*Robot, error) {
	if conf.Reader == nil {
		conf.Reader = OSFileReader{}
	}
	if conf.Logger == nil {
		conf.Logger = golog.Global()
	}

	robotXML := &robotElem{}
	if err := xml.Unmarshal(data, robotXML); err != nil {
		return nil, urdfkit.NewFormatError("robot node missing")
	}

	p := &parser{conf: conf, materials: collectMaterials(data)}

	// links first: every joint needs both of its links to exist
	links := make(map[string]*Link, len(robotXML.Links))
	for i := range robotXML.Links {
		link, err := p.buildLink(&robotXML.Links[i])
		if err != nil {
			return nil, err
		}
		links[link.Node.Name] = link
	}

	joints := make(map[string]*Joint, len(robotXML.Joints))
	for i := range robotXML.Joints {
		joint, err := p.buildJoint(&robotXML.Joints[i], links)
		if err != nil {
			return nil, err
		}
		joints[joint.Node.Name] = joint
	}

	// wire mimics only after the full joint pass so forward references in
	// document order resolve
	for name, joint := range joints {
		if joint.MimicTarget == "" {
			continue
		}
		target, ok := joints[joint.MimicTarget]
		if !ok {
			return nil, urdfkit.NewFormatErrorf("mimic joint not found", "%s mimics %s", name, joint.MimicTarget)
		}
		target.mimickingJoints = append(target.mimickingJoints, joint)
	}
	if err := checkMimicCycles(joints); err != nil {
		return nil, err
	}

	root, err := findRoot(links)
	if err != nil {
		return nil, err
	}

	robot := &Robot{
		Name:   robotXML.Name,
		Root:   root,
		Links:  links,
		Joints: joints,
		logger: conf.Logger,
	}
	if err := validate(robot); err != nil {
		return nil, err
	}
	conf.Logger.Debugf("parsed robot %q: %d links, %d joints (%d drivable)",
		robot.Name, len(links), len(joints), robot.AvailableJointCount())
	return robot, nil
}

type parser struct {
	conf      ParseConfig
	materials map[string]*geometry.Material
}

func (p *parser) buildLink(elem *linkElem) (*Link, error) {
	if elem.Name == "" {
		return nil, urdfkit.NewFormatError("link name missing")
	}
	link := newLink(elem.Name)

	// mesh decoding per visual is independent and may run concurrently;
	// attachment under the link stays a single sequential writer
	nodes := make([][]*scene.Node, len(elem.Visuals))
	var group errgroup.Group
	for i := range elem.Visuals {
		i := i
		group.Go(func() error {
			built, err := p.buildVisual(link.Node.Name, i, &elem.Visuals[i])
			if err != nil {
				return err
			}
			nodes[i] = built
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	for _, batch := range nodes {
		for _, node := range batch {
			if err := link.Node.AddChild(node); err != nil {
				return nil, err
			}
			link.visuals = append(link.visuals, node)
		}
	}
	return link, nil
}

func (p *parser) buildVisual(linkName string, index int, elem *visualElem) ([]*scene.Node, error) {
	originPos, originRot := parseOrigin(elem.Origin)
	urdfMaterial := p.visualMaterial(elem.Material)

	var meshes []*geometry.Mesh
	visualScale := r3.Vector{X: 1, Y: 1, Z: 1}
	switch geo := elem.Geometry; {
	case geo.Mesh != nil:
		decoded, scale, err := p.loadMeshFile(geo.Mesh)
		if err != nil {
			return nil, err
		}
		meshes, visualScale = decoded, scale
	case geo.Box != nil:
		size := utils.SpaceDelimitedStringToFloatSlice(geo.Box.Size)
		if len(size) < 3 {
			return nil, urdfkit.NewFormatErrorf("malformed box size", "%s visual %d", linkName, index)
		}
		converted := spatialmath.ConvertScale(r3.Vector{X: size[0], Y: size[1], Z: size[2]})
		meshes = []*geometry.Mesh{geometry.NewBoxMesh(converted.X, converted.Y, converted.Z)}
	case geo.Sphere != nil:
		meshes = []*geometry.Mesh{geometry.NewSphereMesh(geo.Sphere.Radius)}
	case geo.Cylinder != nil:
		meshes = []*geometry.Mesh{geometry.NewCylinderMesh(geo.Cylinder.Radius, geo.Cylinder.Length)}
	default:
		return nil, urdfkit.NewFormatErrorf("visual geometry missing", "%s visual %d", linkName, index)
	}

	var nodes []*scene.Node
	for _, mesh := range meshes {
		// URDF material applies only when the mesh brought none of its own
		if mesh.Material == nil {
			mesh.Material = urdfMaterial
		}
		name := mesh.Name
		if name == "" {
			name = linkName
		}
		node := scene.NewNode(name)
		node.SetMesh(mesh)
		// compose the visual origin with the decoder-emitted local pose:
		// positions add, rotations multiply, scales multiply componentwise
		node.LocalPosition = originPos.Add(mesh.Pose.Position)
		node.LocalRotation = quat.Mul(originRot, mesh.Pose.Rotation)
		node.Scale = r3.Vector{
			X: visualScale.X * mesh.Scale.X,
			Y: visualScale.Y * mesh.Scale.Y,
			Z: visualScale.Z * mesh.Scale.Z,
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// loadMeshFile resolves a mesh reference, reads it and dispatches on the
// file extension: "stl"/"STL" to the STL decoder, "dae" in any case to the
// COLLADA decoder, anything else is a hard failure.
func (p *parser) loadMeshFile(ref *meshRefElem) ([]*geometry.Mesh, r3.Vector, error) {
	scale := r3.Vector{X: 1, Y: 1, Z: 1}
	if fields := utils.SpaceDelimitedStringToFloatSlice(ref.Scale); len(fields) >= 3 {
		scale = spatialmath.ConvertScale(r3.Vector{X: fields[0], Y: fields[1], Z: fields[2]})
	}

	resolved, err := ResolvePackagePath(ref.Filename, p.conf.Packages, p.conf.WorkingPath)
	if err != nil {
		return nil, scale, err
	}
	data, err := p.conf.Reader.ReadFile(resolved)
	if err != nil {
		return nil, scale, err
	}

	ext := strings.TrimPrefix(path.Ext(resolved), ".")
	switch {
	case ext == "stl" || ext == "STL":
		meshes, err := stl.Decode(data)
		return meshes, scale, err
	case strings.ToLower(ext) == "dae":
		result, err := collada.Decode(data)
		if err != nil {
			return nil, scale, err
		}
		return result.Meshes, scale, nil
	default:
		return nil, scale, urdfkit.NewFormatErrorf("unsupported mesh extension", "%s", resolved)
	}
}

func (p *parser) visualMaterial(elem *materialElem) *geometry.Material {
	if elem == nil {
		return nil
	}
	// an inline color wins over a by-name reference
	if elem.Color != nil {
		if material := materialFromColor(elem.Name, elem.Color.RGBA); material != nil {
			return material
		}
	}
	return p.materials[elem.Name]
}

func (p *parser) buildJoint(elem *jointElem, links map[string]*Link) (*Joint, error) {
	if elem.Name == "" {
		return nil, urdfkit.NewFormatError("joint name missing")
	}
	switch JointType(elem.Type) {
	case FixedJoint, ContinuousJoint, RevoluteJoint, PrismaticJoint:
	default:
		return nil, urdfkit.NewFormatErrorf("joint type not supported", "%s is %q", elem.Name, elem.Type)
	}
	joint := newJoint(elem.Name, JointType(elem.Type))

	parent, ok := links[elem.Parent.Link]
	if !ok {
		return nil, urdfkit.NewFormatErrorf("joint parent link not found", "%s parent %q", elem.Name, elem.Parent.Link)
	}
	child, ok := links[elem.Child.Link]
	if !ok {
		return nil, urdfkit.NewFormatErrorf("joint child link not found", "%s child %q", elem.Name, elem.Child.Link)
	}
	// the joint sits between its two links in the tree
	if err := parent.Node.AddChild(joint.Node); err != nil {
		return nil, err
	}
	if err := joint.Node.AddChild(child.Node); err != nil {
		return nil, err
	}
	joint.ParentLink, joint.ChildLink = parent, child

	position, rotation := parseOrigin(elem.Origin)
	joint.Node.LocalPosition = position
	joint.Node.LocalRotation = rotation
	joint.OriginalPosition = position
	joint.OriginalRotation = rotation

	// the motion axis is negated for the handedness conversion, moved into
	// the render frame and normalized; URDF's default axis is (1, 0, 0)
	axis := r3.Vector{X: 1}
	if elem.Axis != nil {
		if fields := utils.SpaceDelimitedStringToFloatSlice(elem.Axis.XYZ); len(fields) >= 3 {
			axis = r3.Vector{X: fields[0], Y: fields[1], Z: fields[2]}
		}
	}
	axis = spatialmath.ConvertVector(axis.Mul(-1))
	if norm := axis.Norm(); norm > 0 {
		axis = axis.Mul(1 / norm)
	}
	joint.Axis = axis

	if elem.Limit != nil {
		joint.Lower, joint.Upper = elem.Limit.Lower, elem.Limit.Upper
	}
	if elem.Mimic != nil {
		joint.MimicTarget = elem.Mimic.Joint
		if elem.Mimic.Multiplier != nil {
			joint.Multiplier = *elem.Mimic.Multiplier
		}
		if elem.Mimic.Offset != nil {
			joint.Offset = *elem.Mimic.Offset
		}
	}
	return joint, nil
}

// parseOrigin converts an optional <origin xyz rpy> into a render-frame
// pose, defaulting to identity.
func parseOrigin(elem *originElem) (r3.Vector, quat.Number) {
	position := r3.Vector{}
	rotation := quat.Number{Real: 1}
	if elem == nil {
		return position, rotation
	}
	if fields := utils.SpaceDelimitedStringToFloatSlice(elem.XYZ); len(fields) >= 3 {
		position = spatialmath.ConvertVector(r3.Vector{X: fields[0], Y: fields[1], Z: fields[2]})
	}
	if fields := utils.SpaceDelimitedStringToFloatSlice(elem.RPY); len(fields) >= 3 {
		rotation = spatialmath.ConvertRPY(fields[0], fields[1], fields[2])
	}
	return position, rotation
}

// findRoot locates the unique parentless link. Zero roots mean a cyclic or
// empty document; several mean disconnected trees. Both are hard errors
// rather than the silent first-found-wins of older loaders.
func findRoot(links map[string]*Link) (*Link, error) {
	var roots []string
	for name, link := range links {
		if link.Parent() == nil {
			roots = append(roots, name)
		}
	}
	sort.Strings(roots)
	switch len(roots) {
	case 0:
		return nil, urdfkit.NewFormatError("no root link found")
	case 1:
		return links[roots[0]], nil
	default:
		return nil, urdfkit.NewFormatErrorf("multiple root links found", "%s", strings.Join(roots, ", "))
	}
}

// collectMaterials walks the whole document for <material> elements at any
// nesting depth, recording named entries and honoring an explicit
// <color rgba> when present. The first definition of a name wins.
func collectMaterials(data []byte) map[string]*geometry.Material {
	table := map[string]*geometry.Material{}
	decoder := xml.NewDecoder(bytes.NewReader(data))
	current := ""
	for {
		token, err := decoder.Token()
		if err != nil {
			return table
		}
		switch elem := token.(type) {
		case xml.StartElement:
			switch elem.Name.Local {
			case "material":
				current = attrValue(elem, "name")
				if current != "" {
					if _, ok := table[current]; !ok {
						table[current] = &geometry.Material{Name: current, Diffuse: geometry.White()}
					}
				}
			case "color":
				if current == "" {
					continue
				}
				if material := materialFromColor(current, attrValue(elem, "rgba")); material != nil {
					if existing := table[current]; existing == nil || existing.Diffuse == geometry.White() {
						table[current] = material
					}
				}
			}
		case xml.EndElement:
			if elem.Name.Local == "material" {
				current = ""
			}
		}
	}
}

func materialFromColor(name, rgba string) *geometry.Material {
	fields := utils.SpaceDelimitedStringToFloatSlice(rgba)
	if len(fields) < 3 {
		return nil
	}
	color := geometry.Color{R: fields[0], G: fields[1], B: fields[2], A: 1}
	if len(fields) >= 4 {
		color.A = fields[3]
	}
	return &geometry.Material{Name: name, Diffuse: color}
}

func attrValue(elem xml.StartElement, name string) string {
	for _, attr := range elem.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
