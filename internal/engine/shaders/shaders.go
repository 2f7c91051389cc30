// Package shaders embeds the GLSL sources of the deferred pipeline.
package shaders

import (
	"embed"
	"fmt"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

//go:embed glsl
var files embed.FS

const header = "#version 430 core\n"

// Program names.
const (
	Geometry    = "geometry"
	Ambient     = "ambient"
	Image       = "image"
	Directional = "directional"
	Point       = "point"
	Composition = "composition"
)

// Names lists every program in creation order.
var Names = []string{Geometry, Ambient, Image, Directional, Point, Composition}

// Desc assembles the vertex and fragment sources of a program. Screen-space
// programs share the fullscreen quad vertex stage.
func Desc(name string) (gfx.ShaderDesc, error) {
	common, err := files.ReadFile("glsl/common.glsl")
	if err != nil {
		return gfx.ShaderDesc{}, err
	}

	vertexFile := "glsl/screen.vert"
	if name == Geometry {
		vertexFile = "glsl/geometry.vert"
	}
	vertex, err := files.ReadFile(vertexFile)
	if err != nil {
		return gfx.ShaderDesc{}, err
	}
	pixel, err := files.ReadFile("glsl/" + name + ".frag")
	if err != nil {
		return gfx.ShaderDesc{}, fmt.Errorf("unknown shader %q: %w", name, err)
	}

	return gfx.ShaderDesc{
		Name:   name,
		Vertex: header + string(common) + string(vertex),
		Pixel:  header + string(common) + string(pixel),
	}, nil
}
