package shaders

import (
	"strings"
	"testing"
)

func TestDesc(t *testing.T) {
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			desc, err := Desc(name)
			if err != nil {
				t.Fatalf("Desc failed: %v", err)
			}
			if desc.Name != name {
				t.Errorf("Name = %q, want %q", desc.Name, name)
			}
			for stage, src := range map[string]string{"vertex": desc.Vertex, "pixel": desc.Pixel} {
				if !strings.HasPrefix(src, "#version 430 core\n") {
					t.Errorf("%s source lacks version header", stage)
				}
				if !strings.Contains(src, "void main()") {
					t.Errorf("%s source lacks main", stage)
				}
			}
		})
	}

	if _, err := Desc("bloom"); err == nil {
		t.Error("expected error for unknown shader")
	}
}

func TestCompositionCountsBrightPixels(t *testing.T) {
	desc, err := Desc(Composition)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(desc.Pixel, "atomicCounterIncrement") {
		t.Error("composition shader does not write the luminance counter")
	}
}

// The geometry pass runs under alpha blending, so any output alpha below 1
// mixes with the cleared texel instead of replacing it.
func TestGeometryOutputsAreOpaque(t *testing.T) {
	desc, err := Desc(Geometry)
	if err != nil {
		t.Fatal(err)
	}
	outputs := []string{"out_albedo", "out_position", "out_normal"}
	for _, out := range outputs {
		t.Run(out, func(t *testing.T) {
			var assigned bool
			for _, line := range strings.Split(desc.Pixel, "\n") {
				line = strings.TrimSpace(line)
				if !strings.HasPrefix(line, out+" = ") {
					continue
				}
				assigned = true
				if !strings.HasPrefix(line, out+" = vec4(") || !strings.HasSuffix(line, ", 1.0);") {
					t.Errorf("%q does not write alpha 1", line)
				}
			}
			if !assigned {
				t.Errorf("%s never written", out)
			}
		})
	}
}

// Lighting passes must skip texels the geometry pass never touched. The
// G-buffer clear leaves a zero normal there, and albedo alpha stays 1.
func TestLightingSkipsEmptyTexels(t *testing.T) {
	common, err := files.ReadFile("glsl/common.glsl")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(common), "return dot(normal, normal) == 0.0;") {
		t.Fatal("empty_texel does not test for a zero normal")
	}

	for _, name := range []string{Ambient, Image, Directional, Point} {
		t.Run(name, func(t *testing.T) {
			desc, err := Desc(name)
			if err != nil {
				t.Fatal(err)
			}
			src := desc.Pixel
			if !strings.Contains(src, "uniform sampler2D g_normal;") {
				t.Error("does not sample the normal target")
			}
			if !strings.Contains(src, "if (empty_texel(stored)) {\n        discard;") {
				t.Error("does not discard empty texels")
			}
			if strings.Contains(src, ".a == 0.0") {
				t.Error("masks on albedo alpha, which the clear sets to 1")
			}
		})
	}
}
