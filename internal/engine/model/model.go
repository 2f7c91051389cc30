package model

import (
	"fmt"
	"io"
	"path"

	"github.com/Faultbox/derky/pkg/encoding"
	"github.com/Faultbox/derky/pkg/formats"
)

// VertexMapper converts a run of faces sharing one material into a
// backend vertex group.
type VertexMapper[VG any] interface {
	MapVertices(faces [][]formats.FaceVertex) (VG, error)
}

// MaterialMapper converts a parsed material into a backend material.
type MaterialMapper[M any] interface {
	MapMaterial(mat formats.Material) (M, error)
}

// VertexMapperFunc adapts a function to VertexMapper.
type VertexMapperFunc[VG any] func(faces [][]formats.FaceVertex) (VG, error)

// MapVertices calls f.
func (f VertexMapperFunc[VG]) MapVertices(faces [][]formats.FaceVertex) (VG, error) {
	return f(faces)
}

// MaterialMapperFunc adapts a function to MaterialMapper.
type MaterialMapperFunc[M any] func(mat formats.Material) (M, error)

// MapMaterial calls f.
func (f MaterialMapperFunc[M]) MapMaterial(mat formats.Material) (M, error) {
	return f(mat)
}

// Model pairs backend vertex groups with backend materials.
type Model[VG, M any] struct {
	VertexGroups []VG
	Materials    []M

	// mapping[i] is the material index of VertexGroups[i], or -1.
	mapping []int
}

// Len returns the number of vertex groups.
func (m *Model[VG, M]) Len() int {
	return len(m.VertexGroups)
}

// MaterialIndex returns the material used by vertex group i.
func (m *Model[VG, M]) MaterialIndex(i int) (int, bool) {
	if i < 0 || i >= len(m.mapping) || m.mapping[i] < 0 {
		return 0, false
	}
	return m.mapping[i], true
}

// Visit calls fn for every vertex group in construction order. mat is nil
// for groups without a material.
func (m *Model[VG, M]) Visit(fn func(vg VG, mat *M)) {
	for i, vg := range m.VertexGroups {
		var mat *M
		if idx := m.mapping[i]; idx >= 0 {
			mat = &m.Materials[idx]
		}
		fn(vg, mat)
	}
}

// Build maps every material of obj, then every run of adjacent faces that
// resolve to the same material.
func Build[VG, M any](obj *formats.OBJ, vm VertexMapper[VG], mm MaterialMapper[M]) (*Model[VG, M], error) {
	result := &Model[VG, M]{
		Materials: make([]M, 0, len(obj.Materials)),
	}

	for _, mat := range obj.Materials {
		m, err := mm.MapMaterial(mat)
		if err != nil {
			return nil, fmt.Errorf("mapping material %q: %w", mat.Name, err)
		}
		result.Materials = append(result.Materials, m)
	}

	var (
		run     [][]formats.FaceVertex
		current int
	)
	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		vg, err := vm.MapVertices(run)
		if err != nil {
			return fmt.Errorf("mapping vertex group %d: %w", len(result.VertexGroups), err)
		}
		result.VertexGroups = append(result.VertexGroups, vg)
		result.mapping = append(result.mapping, current)
		run = nil
		return nil
	}

	for oi := range obj.Objects {
		for gi := range obj.Objects[oi].Groups {
			group := &obj.Objects[oi].Groups[gi]
			for fi := range group.Faces {
				idx, ok := obj.MaterialIndex(group.Faces[fi].Material)
				if !ok {
					idx = -1
				}
				if len(run) > 0 && idx != current {
					if err := flush(); err != nil {
						return nil, err
					}
				}
				current = idx
				run = append(run, group.FaceVertices(fi))
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return result, nil
}

// Source opens files by slash-separated name.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// NewParser returns a parser that resolves mtllib paths relative to the
// directory of the OBJ file name.
func NewParser(src Source, name string) *formats.Parser {
	dir := path.Dir(encoding.NormalizePath(name))
	return formats.NewParser(func(include string) (io.ReadCloser, error) {
		return src.Open(path.Join(dir, encoding.NormalizePath(include)))
	})
}

// Parse opens and parses the OBJ file name from src.
func Parse(src Source, name string) (*formats.OBJ, error) {
	r, err := src.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer r.Close()

	obj, err := NewParser(src, name).Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return obj, nil
}

// Load parses the OBJ file name from src and builds it.
func Load[VG, M any](src Source, name string, vm VertexMapper[VG], mm MaterialMapper[M]) (*Model[VG, M], error) {
	obj, err := Parse(src, name)
	if err != nil {
		return nil, err
	}

	m, err := Build(obj, vm, mm)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	return m, nil
}
