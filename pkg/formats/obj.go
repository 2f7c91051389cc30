package formats

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// OBJ format errors.
var (
	ErrInvalidFaceVertex = errors.New("invalid face vertex definition")
	ErrInvalidIndex      = errors.New("invalid index definition")
	ErrPathNotFound      = errors.New("path not found")
	ErrNoIncludeFunc     = errors.New("mtllib found but no include function set")
)

// ParseError attaches the source line to a parse failure.
type ParseError struct {
	Line    int
	Keyword string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Keyword, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Warning records a statement that was skipped.
type Warning struct {
	Line    int
	Keyword string
}

// OBJ is the parsed content of a Wavefront OBJ file.
type OBJ struct {
	Objects   []Object
	Materials []Material
	Warnings  []Warning
}

// GroupCount returns the number of groups across all objects.
func (o *OBJ) GroupCount() int {
	n := 0
	for i := range o.Objects {
		n += len(o.Objects[i].Groups)
	}
	return n
}

// MaterialIndex returns the position of the named material.
func (o *OBJ) MaterialIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i := range o.Materials {
		if o.Materials[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// Object is a named collection of groups.
type Object struct {
	Name   string
	Groups []Group
}

// Group holds geometry local to one g block. Face indices refer to the
// group's own slices.
type Group struct {
	Name         string
	MaterialName string
	Vertices     []mgl32.Vec3
	UVs          []mgl32.Vec2
	Normals      []mgl32.Vec3 // normalized
	Faces        []Face
}

// Face is one polygon and the material bound when it was declared.
type Face struct {
	Material string
	Indices  []FaceIndex
}

// FaceIndex holds 0-based group-local indices. UV and Normal are -1 when absent.
type FaceIndex struct {
	Vertex int
	UV     int
	Normal int
}

// FaceVertex is a face corner with its attributes resolved.
type FaceVertex struct {
	Position  mgl32.Vec3
	UV        mgl32.Vec2
	Normal    mgl32.Vec3
	HasUV     bool
	HasNormal bool
}

// FaceVertices resolves the corners of face i.
func (g *Group) FaceVertices(i int) []FaceVertex {
	face := g.Faces[i]
	out := make([]FaceVertex, len(face.Indices))
	for j, idx := range face.Indices {
		fv := FaceVertex{Position: g.Vertices[idx.Vertex]}
		if idx.UV >= 0 {
			fv.UV = g.UVs[idx.UV]
			fv.HasUV = true
		}
		if idx.Normal >= 0 {
			fv.Normal = g.Normals[idx.Normal]
			fv.HasNormal = true
		}
		out[j] = fv
	}
	return out
}

// Triangulate returns the fan triangulation of a k-gon around corner 0.
// It yields k-2 triangles and nil for k < 3.
func Triangulate(k int) [][3]int {
	if k < 3 {
		return nil
	}
	tris := make([][3]int, 0, k-2)
	for i := 1; i < k-1; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// IncludeFunc opens a file referenced by mtllib. Any lookup context
// (base directory, archive) is carried by the closure.
type IncludeFunc func(path string) (io.ReadCloser, error)

// Parser parses OBJ files and the material libraries they reference.
type Parser struct {
	// Include resolves mtllib paths. Nil makes mtllib an error.
	Include IncludeFunc

	// Encoding decodes OBJ and MTL text before parsing. Nil means UTF-8.
	Encoding encoding.Encoding
}

// NewParser creates a parser that resolves mtllib through include.
func NewParser(include IncludeFunc) *Parser {
	return &Parser{Include: include}
}

// ParseOBJ parses an OBJ file with no mtllib support.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	return (&Parser{}).Parse(r)
}

// groupBuffer accumulates the group currently being declared.
type groupBuffer struct {
	name         string
	materialName string
	vertices     []mgl32.Vec3
	uvs          []mgl32.Vec2
	normals      []mgl32.Vec3
	faces        []Face
}

// objBuffer is the parser state: the open object and group, the groups
// already committed for the open object, and running index offsets.
type objBuffer struct {
	offsets    [3]int // vertex, uv, normal
	objectName string
	group      groupBuffer
	groups     []Group
	objects    []Object
}

func (b *objBuffer) commitGroup() {
	b.offsets[0] += len(b.group.vertices)
	b.offsets[1] += len(b.group.uvs)
	b.offsets[2] += len(b.group.normals)

	if len(b.group.faces) > 0 {
		b.groups = append(b.groups, Group{
			Name:         b.group.name,
			MaterialName: b.group.materialName,
			Vertices:     b.group.vertices,
			UVs:          b.group.uvs,
			Normals:      b.group.normals,
			Faces:        b.group.faces,
		})
	}
	b.group = groupBuffer{}
}

func (b *objBuffer) commitObject() {
	b.commitGroup()
	if len(b.groups) > 0 {
		b.objects = append(b.objects, Object{
			Name:   b.objectName,
			Groups: b.groups,
		})
	}
	b.groups = nil
	b.objectName = ""
}

// Parse reads an OBJ file. Any error aborts the whole parse.
func (p *Parser) Parse(r io.Reader) (*OBJ, error) {
	result := &OBJ{}
	buf := &objBuffer{}

	scanner := newLineScanner(p.decode(r))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		keyword, args, ok := SplitLine(scanner.Text())
		if !ok {
			continue
		}

		known, err := p.processLine(buf, result, keyword, args)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Keyword: keyword, Err: err}
		}
		if !known {
			result.Warnings = append(result.Warnings, Warning{Line: lineNo, Keyword: keyword})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}
	buf.commitObject()

	result.Objects = buf.objects
	return result, nil
}

func (p *Parser) decode(r io.Reader) io.Reader {
	if p.Encoding == nil {
		return r
	}
	return transform.NewReader(r, p.Encoding.NewDecoder())
}

func (p *Parser) processLine(buf *objBuffer, result *OBJ, keyword string, args []string) (bool, error) {
	switch keyword {
	case "mtllib":
		if len(args) == 0 {
			return true, ErrPathNotFound
		}
		materials, err := p.include(args[0])
		if err != nil {
			return true, err
		}
		result.Materials = append(result.Materials, materials...)
	case "usemtl":
		if len(args) == 0 {
			return true, &NotEnoughDataError{Found: 0, Expected: 1}
		}
		buf.group.materialName = args[0]
	case "o":
		buf.commitObject()
		if len(args) > 0 {
			buf.objectName = args[0]
		}
	case "g":
		buf.commitGroup()
		if len(args) > 0 {
			buf.group.name = args[0]
		}
	case "v":
		v, err := TakeVec3(args)
		if err != nil {
			return true, err
		}
		buf.group.vertices = append(buf.group.vertices, v)
	case "vt":
		v, err := TakeVec2(args)
		if err != nil {
			return true, err
		}
		buf.group.uvs = append(buf.group.uvs, v)
	case "vn":
		v, err := TakeVec3(args)
		if err != nil {
			return true, err
		}
		if v.Len() > 0 {
			v = v.Normalize()
		}
		buf.group.normals = append(buf.group.normals, v)
	case "f":
		face, err := parseFace(buf, args)
		if err != nil {
			return true, err
		}
		buf.group.faces = append(buf.group.faces, face)
	default:
		return false, nil
	}
	return true, nil
}

func (p *Parser) include(path string) ([]Material, error) {
	if p.Include == nil {
		return nil, ErrNoIncludeFunc
	}
	rc, err := p.Include(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer rc.Close()

	materials, _, err := parseMTL(p.decode(rc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return materials, nil
}

// parseFace converts f arguments into group-local indices.
func parseFace(buf *objBuffer, args []string) (Face, error) {
	if len(args) < 3 {
		return Face{}, &NotEnoughDataError{Found: len(args), Expected: 3}
	}

	g := &buf.group
	limits := [3]int{len(g.vertices), len(g.uvs), len(g.normals)}

	indices := make([]FaceIndex, 0, len(args))
	for _, token := range args {
		parts := strings.Split(token, "/")
		if len(parts) > 3 || parts[0] == "" {
			return Face{}, fmt.Errorf("%w: %q", ErrInvalidFaceVertex, token)
		}

		resolved := [3]int{-1, -1, -1}
		for attr, s := range parts {
			if s == "" {
				continue
			}
			raw, err := strconv.Atoi(s)
			if err != nil {
				return Face{}, fmt.Errorf("%w %q", ErrInvalidNumber, s)
			}
			local := raw - buf.offsets[attr]
			if local <= 0 || local > limits[attr] {
				return Face{}, fmt.Errorf("%w: %q", ErrInvalidIndex, token)
			}
			resolved[attr] = local - 1
		}

		indices = append(indices, FaceIndex{
			Vertex: resolved[0],
			UV:     resolved[1],
			Normal: resolved[2],
		})
	}

	return Face{Material: g.materialName, Indices: indices}, nil
}
