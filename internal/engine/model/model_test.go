package model

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/Faultbox/derky/pkg/formats"
)

type mapSource map[string]string

func (s mapSource) Open(name string) (io.ReadCloser, error) {
	data, ok := s[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

// countingMappers record how many faces each vertex group received.
func countingMappers() (VertexMapperFunc[int], MaterialMapperFunc[string]) {
	vm := VertexMapperFunc[int](func(faces [][]formats.FaceVertex) (int, error) {
		return len(faces), nil
	})
	mm := MaterialMapperFunc[string](func(mat formats.Material) (string, error) {
		return mat.Name, nil
	})
	return vm, mm
}

func TestLoadSingleTriangle(t *testing.T) {
	src := mapSource{
		"models/tri.obj": "mtllib tri.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl Red\nf 1 2 3\n",
		"models/tri.mtl": "newmtl Red\nKd 1 0 0\n",
	}
	vm, mm := countingMappers()

	m, err := Load(src, "models/tri.obj", vm, mm)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	if len(m.Materials) != 1 || m.Materials[0] != "Red" {
		t.Errorf("Materials = %v, want [Red]", m.Materials)
	}
	idx, ok := m.MaterialIndex(0)
	if !ok || idx != 0 {
		t.Errorf("MaterialIndex(0) = %d, %v; want 0, true", idx, ok)
	}
}

func TestBuildCoalescesRuns(t *testing.T) {
	const obj = `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
usemtl A
f 1 2 3
f 2 4 3
usemtl B
f 1 2 4
usemtl A
f 1 3 4
usemtl Missing
f 1 2 3
`
	parsed, err := formats.ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	parsed.Materials = []formats.Material{{Name: "A"}, {Name: "B"}}

	vm, mm := countingMappers()
	m, err := Build(parsed, vm, mm)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantFaces := []int{2, 1, 1, 1}
	wantMat := []int{0, 1, 0, -1}
	if m.Len() != len(wantFaces) {
		t.Fatalf("Len() = %d, want %d", m.Len(), len(wantFaces))
	}
	for i := range wantFaces {
		if m.VertexGroups[i] != wantFaces[i] {
			t.Errorf("group %d: %d faces, want %d", i, m.VertexGroups[i], wantFaces[i])
		}
		idx, ok := m.MaterialIndex(i)
		if wantMat[i] < 0 {
			if ok {
				t.Errorf("group %d: unexpected material %d", i, idx)
			}
			continue
		}
		if !ok || idx != wantMat[i] {
			t.Errorf("group %d: material = %d, %v; want %d", i, idx, ok, wantMat[i])
		}
	}
}

func TestBuildVisitOrder(t *testing.T) {
	const obj = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nusemtl A\nf 1 2 3\n"
	parsed, err := formats.ParseOBJ(strings.NewReader(obj))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	parsed.Materials = []formats.Material{{Name: "A"}}

	vm, mm := countingMappers()
	m, err := Build(parsed, vm, mm)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var got []string
	m.Visit(func(_ int, mat *string) {
		if mat == nil {
			got = append(got, "<none>")
			return
		}
		got = append(got, *mat)
	})
	if strings.Join(got, ",") != "<none>,A" {
		t.Errorf("Visit order = %v, want [<none> A]", got)
	}
}

func TestBuildMapperErrors(t *testing.T) {
	boom := errors.New("boom")
	parsed, err := formats.ParseOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	parsed.Materials = []formats.Material{{Name: "A"}}
	okVM, okMM := countingMappers()

	tests := []struct {
		name string
		vm   VertexMapper[int]
		mm   MaterialMapper[string]
	}{
		{
			name: "vertex mapper",
			vm: VertexMapperFunc[int](func([][]formats.FaceVertex) (int, error) {
				return 0, boom
			}),
			mm: okMM,
		},
		{
			name: "material mapper",
			vm:   okVM,
			mm: MaterialMapperFunc[string](func(formats.Material) (string, error) {
				return "", boom
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(parsed, tt.vm, tt.mm)
			if !errors.Is(err, boom) {
				t.Errorf("Build error = %v, want %v", err, boom)
			}
			if m != nil {
				t.Error("expected nil model on error")
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	vm, mm := countingMappers()

	tests := []struct {
		name string
		src  mapSource
		want error
	}{
		{"missing file", mapSource{}, fs.ErrNotExist},
		{"missing mtllib", mapSource{"a.obj": "mtllib a.mtl\n"}, fs.ErrNotExist},
		{"bad face", mapSource{"a.obj": "v 0 0 0\nf 1 2\n"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src, "a.obj", vm, mm)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewParserResolvesRelative(t *testing.T) {
	src := mapSource{
		"data/model/a.obj":       "mtllib ..\\tex\\a.mtl\n",
		"data/tex/a.mtl":         "newmtl A\nKd 1 1 1\n",
		"data/model/ignored.mtl": "",
	}
	r, _ := src.Open("data/model/a.obj")
	obj, err := NewParser(src, "data/model/a.obj").Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(obj.Materials) != 1 || obj.Materials[0].Name != "A" {
		t.Errorf("Materials = %+v, want [A]", obj.Materials)
	}
}
