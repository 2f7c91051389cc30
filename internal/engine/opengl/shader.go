package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

type stage struct {
	kind   uint32
	name   string
	source string
}

// CompileProgram links a vertex and a pixel (fragment) stage.
func CompileProgram(vertexSrc, pixelSrc string) (uint32, error) {
	return buildProgram(
		stage{gl.VERTEX_SHADER, "vertex", vertexSrc},
		stage{gl.FRAGMENT_SHADER, "pixel", pixelSrc},
	)
}

// CompileCompute links a program with a single compute stage.
func CompileCompute(src string) (uint32, error) {
	return buildProgram(stage{gl.COMPUTE_SHADER, "compute", src})
}

// buildProgram compiles every stage and links them. Stage objects are
// deleted once linked; the program keeps its own copy.
func buildProgram(stages ...stage) (uint32, error) {
	objects := make([]uint32, 0, len(stages))
	defer func() {
		for _, o := range objects {
			gl.DeleteShader(o)
		}
	}()
	for _, s := range stages {
		o, err := compileStage(s)
		if err != nil {
			return 0, err
		}
		objects = append(objects, o)
	}

	program := gl.CreateProgram()
	for _, o := range objects {
		gl.AttachShader(program, o)
	}
	gl.LinkProgram(program)

	var ok int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compileStage(s stage) (uint32, error) {
	obj := gl.CreateShader(s.kind)
	src, free := gl.Strs(s.source + "\x00")
	gl.ShaderSource(obj, 1, src, nil)
	free()
	gl.CompileShader(obj)

	var ok int32
	gl.GetShaderiv(obj, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(obj, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(obj)
		return 0, fmt.Errorf("%s stage: %s", s.name, msg)
	}
	return obj, nil
}

// infoLog reads the driver's log for a shader or program object.
func infoLog(obj uint32, param func(uint32, uint32, *int32), read func(uint32, int32, *int32, *uint8)) string {
	var n int32
	param(obj, gl.INFO_LOG_LENGTH, &n)
	if n <= 1 {
		return "no driver log"
	}
	buf := make([]byte, n)
	read(obj, n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
