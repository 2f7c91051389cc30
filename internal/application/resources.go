package application

import (
	"fmt"
	"image/color"

	"github.com/Faultbox/derky/internal/engine/environment"
	"github.com/Faultbox/derky/internal/engine/gfx"
	"github.com/Faultbox/derky/internal/engine/lighting"
	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/internal/engine/shaders"
	"github.com/Faultbox/derky/internal/engine/texture"
)

// target indexes the screen-sized textures.
type target int

const (
	targetAlbedo target = iota
	targetPosition
	targetNormal
	targetLighting
	targetCount
)

// gBufferTargets is the number of targets written by the geometry pass.
const gBufferTargets = int(targetLighting)

var targetFormats = [targetCount]gfx.TextureFormat{
	targetAlbedo:   gfx.FormatRGBA8,
	targetPosition: gfx.FormatRGBA32F,
	targetNormal:   gfx.FormatRGBA16F,
	targetLighting: gfx.FormatRGBA16F,
}

type program int

const (
	programGeometry program = iota
	programAmbient
	programImage
	programDirectional
	programPoint
	programComposition
	programCount
)

var programNames = [programCount]string{
	programGeometry:    shaders.Geometry,
	programAmbient:     shaders.Ambient,
	programImage:       shaders.Image,
	programDirectional: shaders.Directional,
	programPoint:       shaders.Point,
	programComposition: shaders.Composition,
}

type blend int

const (
	blendAlpha blend = iota
	blendAdditive
	blendCount
)

// Uniform block binding slots shared with the GLSL sources.
const (
	slotView        = 0
	slotModel       = 1
	slotLight       = 2
	slotComposition = 3
)

// Texture slots of the lighting and composition passes.
const (
	slotEnvironmentMap = 3
	slotLightingInput  = 1
)

const modelBlockSize = 80

// vertexLayout matches model.Vertex.
var vertexLayout = gfx.VertexLayout{
	Stride: model.VertexStride,
	Attributes: []gfx.VertexAttribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 12},
		{Location: 2, Components: 2, Offset: 24},
	},
}

// resources is the fixed set of GPU objects the passes use.
type resources struct {
	textures [targetCount]gfx.Texture
	targets  [targetCount]gfx.RenderTarget
	depth    gfx.DepthStencil

	programs [programCount]gfx.Shader
	blends   [blendCount]gfx.BlendState
	sampler  gfx.Sampler

	viewBuffer        gfx.Buffer
	modelBuffer       gfx.Buffer
	lightBuffer       gfx.Buffer
	compositionBuffer gfx.Buffer

	quadVertices gfx.Buffer
	quadIndices  gfx.Buffer
	quadCount    int

	luminance gfx.Buffer
	white     gfx.Texture
}

func (r *resources) create(ctx gfx.Context, width, height int) error {
	if err := r.createTargets(ctx, width, height); err != nil {
		return err
	}

	for i, name := range programNames {
		desc, err := shaders.Desc(name)
		if err != nil {
			return err
		}
		if r.programs[i], err = ctx.CreateShader(desc); err != nil {
			return fmt.Errorf("creating %s shader: %w", name, err)
		}
	}

	var err error
	if r.blends[blendAlpha], err = ctx.CreateBlendState(gfx.AlphaBlend()); err != nil {
		return fmt.Errorf("creating alpha blend: %w", err)
	}
	if r.blends[blendAdditive], err = ctx.CreateBlendState(gfx.Additive()); err != nil {
		return fmt.Errorf("creating additive blend: %w", err)
	}
	if r.sampler, err = ctx.CreateSampler(gfx.SamplerDesc{Filter: gfx.FilterLinear, Address: gfx.AddressWrap}); err != nil {
		return fmt.Errorf("creating sampler: %w", err)
	}

	constants := []struct {
		dst  *gfx.Buffer
		size int
		name string
	}{
		{&r.viewBuffer, environment.ViewBlockSize, "view"},
		{&r.modelBuffer, modelBlockSize, "model"},
		{&r.lightBuffer, lighting.BlockSize, "light"},
		{&r.compositionBuffer, 16, "composition"},
	}
	for _, c := range constants {
		if *c.dst, err = ctx.CreateBuffer(gfx.BufferConstant, make([]byte, c.size)); err != nil {
			return fmt.Errorf("creating %s constants: %w", c.name, err)
		}
	}

	quad := screenQuad()
	if r.quadVertices, err = ctx.CreateBuffer(gfx.BufferVertex, quad.VertexBytes()); err != nil {
		return fmt.Errorf("creating quad vertices: %w", err)
	}
	if r.quadIndices, err = ctx.CreateBuffer(gfx.BufferIndex, quad.IndexBytes()); err != nil {
		return fmt.Errorf("creating quad indices: %w", err)
	}
	r.quadCount = len(quad.Indices)

	if r.luminance, err = ctx.CreateBuffer(gfx.BufferReadWrite, gfx.Uint32Bytes(0)); err != nil {
		return fmt.Errorf("creating luminance counter: %w", err)
	}

	if r.white, err = uploadImage(ctx, texture.Solid(color.RGBA{R: 255, G: 255, B: 255, A: 255})); err != nil {
		return fmt.Errorf("creating fallback texture: %w", err)
	}
	return nil
}

func (r *resources) createTargets(ctx gfx.Context, width, height int) error {
	for i := range r.textures {
		desc := gfx.TextureDesc{Width: width, Height: height, Format: targetFormats[i]}
		tex, err := ctx.CreateTexture(desc, nil)
		if err != nil {
			return fmt.Errorf("creating target %d: %w", i, err)
		}
		r.textures[i] = tex
		if r.targets[i], err = ctx.CreateRenderTarget(tex); err != nil {
			return fmt.Errorf("creating target %d: %w", i, err)
		}
	}

	depth, err := ctx.CreateDepthStencil(width, height)
	if err != nil {
		return fmt.Errorf("creating depth stencil: %w", err)
	}
	r.depth = depth
	return nil
}

func (r *resources) releaseTargets(ctx gfx.Context) {
	for i := range r.targets {
		ctx.Release(r.targets[i])
		ctx.Release(r.textures[i])
		r.targets[i], r.textures[i] = 0, 0
	}
	ctx.Release(r.depth)
	r.depth = 0
}

// release frees everything; zero handles are skipped by the context.
func (r *resources) release(ctx gfx.Context) {
	r.releaseTargets(ctx)
	for i := range r.programs {
		ctx.Release(r.programs[i])
	}
	for i := range r.blends {
		ctx.Release(r.blends[i])
	}
	for _, b := range []gfx.Buffer{
		r.viewBuffer, r.modelBuffer, r.lightBuffer, r.compositionBuffer,
		r.quadVertices, r.quadIndices, r.luminance,
	} {
		ctx.Release(b)
	}
	ctx.Release(r.sampler)
	ctx.Release(r.white)
	*r = resources{}
}

// gBuffer returns the geometry pass targets.
func (r *resources) gBuffer() []gfx.RenderTarget {
	return r.targets[:gBufferTargets]
}

// screenQuad covers clip space with uv (0,0) at the bottom left.
func screenQuad() *model.Mesh {
	return &model.Mesh{
		Vertices: []model.Vertex{
			{Position: [3]float32{-1, -1, 0}, TexCoord: [2]float32{0, 0}},
			{Position: [3]float32{1, -1, 0}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{1, 1, 0}, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{-1, 1, 0}, TexCoord: [2]float32{0, 1}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
