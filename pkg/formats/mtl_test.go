package formats

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseMTL_EmptyMaterialDiscarded(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantNames []string
	}{
		{
			name:      "empty then empty at EOF",
			src:       "newmtl A\nnewmtl B\n",
			wantNames: nil,
		},
		{
			name:      "empty then populated",
			src:       "newmtl A\nnewmtl B\nKd 1 1 1\n",
			wantNames: []string{"B"},
		},
		{
			name:      "both populated",
			src:       "newmtl A\nNs 10\nnewmtl B\nillum 1\n",
			wantNames: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			materials, err := ParseMTL(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(materials) != len(tt.wantNames) {
				t.Fatalf("got %d materials, want %d", len(materials), len(tt.wantNames))
			}
			for i, name := range tt.wantNames {
				if materials[i].Name != name {
					t.Errorf("material %d: got %q, want %q", i, materials[i].Name, name)
				}
			}
		})
	}
}

func TestParseMTL_PropertyKinds(t *testing.T) {
	src := `newmtl Mixed
Ka 0.1 0.2 0.3
Ks 1 1 1
Ns 96.5
Ni 1.45
illum 2
map_Kd tex\\\\albedo.png
map_Bump normal.png
d 0.5
`
	materials, err := ParseMTL(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(materials) != 1 {
		t.Fatalf("got %d materials, want 1", len(materials))
	}
	m := materials[0]

	tests := []struct {
		key  string
		kind PropertyKind
	}{
		{"Ka", PropertyVector},
		{"Ks", PropertyVector},
		{"Ns", PropertyFloat},
		{"Ni", PropertyFloat},
		{"illum", PropertyInteger},
		{"map_Kd", PropertyPath},
		{"map_Bump", PropertyPath},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p, ok := m.Get(tt.key)
			if !ok {
				t.Fatalf("property %s missing", tt.key)
			}
			if p.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", p.Kind, tt.kind)
			}
		})
	}

	if _, ok := m.Get("d"); ok {
		t.Error("unsupported keyword d should be skipped")
	}
	if ka, _ := m.AmbientColor(); ka != (mgl32.Vec3{0.1, 0.2, 0.3}) {
		t.Errorf("AmbientColor = %v", ka)
	}
	if ns, _ := m.SpecularIntensity(); ns != 96.5 {
		t.Errorf("SpecularIntensity = %v, want 96.5", ns)
	}
	if illum, _ := m.Illumination(); illum != 2 {
		t.Errorf("Illumination = %d, want 2", illum)
	}
	if path, _ := m.DiffuseMap(); path != `tex\\albedo.png` {
		t.Errorf("DiffuseMap = %q, want %q", path, `tex\\albedo.png`)
	}
	if _, ok := m.DiffuseColor(); ok {
		t.Error("DiffuseColor should be absent")
	}
}

func TestParseMTL_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
	}{
		{"short vector", "newmtl A\nKd 1 1\n", 2},
		{"bad float", "newmtl A\n\nNs shiny\n", 3},
		{"bad integer", "# header\nnewmtl A\nillum x\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMTL(strings.NewReader(tt.src))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", perr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseMTL_File(t *testing.T) {
	f, err := os.Open("testdata/cube.mtl")
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	defer f.Close()

	materials, err := ParseMTL(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(materials) != 2 {
		t.Fatalf("got %d materials, want 2 (Empty is discarded)", len(materials))
	}
	if path, ok := materials[1].DiffuseMap(); !ok || path != `textures\white.png` {
		t.Errorf("White map_Kd = %q, want %q", path, `textures\white.png`)
	}
}

func TestParseMTL_LongLine(t *testing.T) {
	path := strings.Repeat("d/", 40000) + "wood.png"
	materials, err := ParseMTL(strings.NewReader("newmtl Wood\nmap_Kd " + path + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(materials) != 1 {
		t.Fatalf("got %d materials, want 1", len(materials))
	}
	if got, ok := materials[0].DiffuseMap(); !ok || got != path {
		t.Errorf("map_Kd has %d bytes, want %d", len(got), len(path))
	}
}
