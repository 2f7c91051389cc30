package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// PropertyKind identifies which field of a Property holds its value.
type PropertyKind int

const (
	PropertyFloat   PropertyKind = iota // N* keywords
	PropertyInteger                     // illum
	PropertyVector                      // K* keywords
	PropertyPath                        // map_* keywords
)

// String returns a human-readable property kind name.
func (k PropertyKind) String() string {
	switch k {
	case PropertyFloat:
		return "Float"
	case PropertyInteger:
		return "Integer"
	case PropertyVector:
		return "Vector"
	case PropertyPath:
		return "Path"
	default:
		return "Unknown"
	}
}

// Property is a single material property value.
type Property struct {
	Kind    PropertyKind
	Float   float32
	Integer uint32
	Vector  mgl32.Vec3
	Path    string
}

// String formats the property value for display.
func (p Property) String() string {
	switch p.Kind {
	case PropertyFloat:
		return fmt.Sprintf("%g", p.Float)
	case PropertyInteger:
		return fmt.Sprintf("%d", p.Integer)
	case PropertyVector:
		return fmt.Sprintf("(%g, %g, %g)", p.Vector[0], p.Vector[1], p.Vector[2])
	case PropertyPath:
		return p.Path
	default:
		return ""
	}
}

// Material is a named set of properties declared by newmtl.
type Material struct {
	Name       string
	Properties map[string]Property
}

// Get returns the property stored under key.
func (m *Material) Get(key string) (Property, bool) {
	p, ok := m.Properties[key]
	return p, ok
}

// AmbientColor returns the Ka vector.
func (m *Material) AmbientColor() (mgl32.Vec3, bool) {
	return m.vector("Ka")
}

// DiffuseColor returns the Kd vector.
func (m *Material) DiffuseColor() (mgl32.Vec3, bool) {
	return m.vector("Kd")
}

// SpecularIntensity returns the Ns exponent.
func (m *Material) SpecularIntensity() (float32, bool) {
	p, ok := m.Properties["Ns"]
	if !ok || p.Kind != PropertyFloat {
		return 0, false
	}
	return p.Float, true
}

// Illumination returns the illum model number.
func (m *Material) Illumination() (uint32, bool) {
	p, ok := m.Properties["illum"]
	if !ok || p.Kind != PropertyInteger {
		return 0, false
	}
	return p.Integer, true
}

// DiffuseMap returns the map_Kd texture path.
func (m *Material) DiffuseMap() (string, bool) {
	p, ok := m.Properties["map_Kd"]
	if !ok || p.Kind != PropertyPath {
		return "", false
	}
	return p.Path, true
}

func (m *Material) vector(key string) (mgl32.Vec3, bool) {
	p, ok := m.Properties[key]
	if !ok || p.Kind != PropertyVector {
		return mgl32.Vec3{}, false
	}
	return p.Vector, true
}

// mtlBuffer accumulates the material currently being declared.
type mtlBuffer struct {
	name       string
	properties map[string]Property
	materials  []Material
}

// commit pushes the current material unless it has no properties.
func (b *mtlBuffer) commit() {
	if len(b.properties) > 0 {
		b.materials = append(b.materials, Material{
			Name:       b.name,
			Properties: b.properties,
		})
	}
	b.properties = make(map[string]Property)
}

// ParseMTL parses a material library.
func ParseMTL(r io.Reader) ([]Material, error) {
	materials, _, err := parseMTL(r)
	return materials, err
}

func parseMTL(r io.Reader) ([]Material, []Warning, error) {
	buf := &mtlBuffer{properties: make(map[string]Property)}
	var warnings []Warning

	scanner := newLineScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		keyword, args, ok := SplitLine(scanner.Text())
		if !ok {
			continue
		}

		known, err := processMTLLine(buf, keyword, args)
		if err != nil {
			return nil, warnings, &ParseError{Line: lineNo, Keyword: keyword, Err: err}
		}
		if !known {
			warnings = append(warnings, Warning{Line: lineNo, Keyword: keyword})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("reading MTL: %w", err)
	}
	buf.commit()

	return buf.materials, warnings, nil
}

// processMTLLine applies one MTL statement. It reports false for keywords it skipped.
func processMTLLine(buf *mtlBuffer, keyword string, args []string) (bool, error) {
	switch {
	case keyword == "newmtl":
		buf.commit()
		buf.name = ""
		if len(args) > 0 {
			buf.name = args[0]
		}
	case keyword == "illum":
		n, err := takeInteger(args)
		if err != nil {
			return true, err
		}
		buf.properties[keyword] = Property{Kind: PropertyInteger, Integer: n}
	case strings.HasPrefix(keyword, "K"):
		v, err := TakeVec3(args)
		if err != nil {
			return true, err
		}
		buf.properties[keyword] = Property{Kind: PropertyVector, Vector: v}
	case strings.HasPrefix(keyword, "N"):
		f, err := TakeScalar(args)
		if err != nil {
			return true, err
		}
		buf.properties[keyword] = Property{Kind: PropertyFloat, Float: f}
	case strings.HasPrefix(keyword, "map_"):
		path := ""
		if len(args) > 0 {
			path = strings.ReplaceAll(args[0], `\\`, `\`)
		}
		buf.properties[keyword] = Property{Kind: PropertyPath, Path: path}
	default:
		return false, nil
	}
	return true, nil
}
