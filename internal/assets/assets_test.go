package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"golang.org/x/text/encoding/japanese"
)

func testManager() *Manager {
	m := NewManager(Options{Workers: 2})
	m.AddFS(fstest.MapFS{
		"models/tri.obj":  {Data: []byte("mtllib tri.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl Red\nf 1 2 3\n")},
		"models/tri.mtl":  {Data: []byte("newmtl Red\nKd 1 0 0\n")},
		"models/quad.obj": {Data: []byte("v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\nbevel on\n")},
		"models/bad.obj":  {Data: []byte("v 0 0 0\nf 1 2\n")},
	})
	return m
}

func TestLoadPriority(t *testing.T) {
	m := NewManager(Options{})
	m.AddFS(fstest.MapFS{"a.txt": {Data: []byte("low")}, "b.txt": {Data: []byte("only")}})
	m.AddFS(fstest.MapFS{"a.txt": {Data: []byte("high")}})

	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "high"},
		{"b.txt", "only"},
		{`.\b.txt`, "only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := m.Load(tt.name)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Load = %q, want %q", data, tt.want)
			}
		})
	}

	if _, err := m.Load("missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCacheStats(t *testing.T) {
	m := testManager()
	for i := 0; i < 3; i++ {
		if _, err := m.Load("models/tri.obj"); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	hits, misses := m.cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats = %d hits / %d misses, want 2 / 1", hits, misses)
	}

	m.Close()
	if _, err := m.Load("models/tri.obj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Close error = %v, want ErrNotFound", err)
	}
}

func TestAddRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.obj"), []byte("v 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(Options{})
	if err := m.AddRoot(dir); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	if _, err := m.Load("x.obj"); err != nil {
		t.Errorf("Load failed: %v", err)
	}

	if err := m.AddRoot(filepath.Join(dir, "x.obj")); err == nil {
		t.Error("expected error for file root")
	}
	if err := m.AddRoot(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestParseOBJ(t *testing.T) {
	m := testManager()

	obj, err := m.ParseOBJ("models/tri.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Materials) != 1 || obj.Materials[0].Name != "Red" {
		t.Errorf("Materials = %+v, want [Red]", obj.Materials)
	}

	obj, err = m.ParseOBJ("models/quad.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Warnings) != 1 || obj.Warnings[0].Keyword != "bevel" {
		t.Errorf("Warnings = %+v, want one bevel warning", obj.Warnings)
	}
}

func TestParseOBJsKeepsOrder(t *testing.T) {
	m := testManager()
	names := []string{"models/quad.obj", "models/tri.obj", "models/quad.obj"}

	objs, err := m.ParseOBJs(names)
	if err != nil {
		t.Fatalf("ParseOBJs failed: %v", err)
	}
	if len(objs) != len(names) {
		t.Fatalf("got %d results, want %d", len(objs), len(names))
	}
	wantMaterials := []int{0, 1, 0}
	for i, obj := range objs {
		if len(obj.Materials) != wantMaterials[i] {
			t.Errorf("objs[%d] has %d materials, want %d", i, len(obj.Materials), wantMaterials[i])
		}
	}

	if _, err := m.ParseOBJs([]string{"models/tri.obj", "models/bad.obj"}); err == nil {
		t.Error("expected error from bad.obj")
	}
}

func TestParseOBJEncoding(t *testing.T) {
	name, err := japanese.ShiftJIS.NewEncoder().String("newmtl 赤\n")
	if err != nil {
		t.Fatal(err)
	}

	m := NewManager(Options{Encoding: japanese.ShiftJIS})
	m.AddFS(fstest.MapFS{
		"m.obj": {Data: []byte("mtllib m.mtl\n")},
		"m.mtl": {Data: []byte(name + "Kd 1 0 0\n")},
	})

	obj, err := m.ParseOBJ("m.obj")
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Materials) != 1 || obj.Materials[0].Name != "赤" {
		t.Errorf("Materials = %+v, want [赤]", obj.Materials)
	}
}
