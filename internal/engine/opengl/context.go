// Package opengl implements gfx.Context on OpenGL 4.3 core.
package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/engine/gfx"
	"github.com/Faultbox/derky/internal/logger"
)

// The default framebuffer uses reserved handles outside the table range.
const (
	backBuffer gfx.RenderTarget = gfx.RenderTarget(^uint32(0))
	backDepth  gfx.DepthStencil = gfx.DepthStencil(^uint32(0))
)

// Errors returned by resource creation.
var (
	ErrEmptyBuffer   = errors.New("buffer has no data")
	ErrBadTextureLen = errors.New("pixel data does not match texture size")
	ErrUnknownHandle = errors.New("unknown handle")
)

type bufferEntry struct {
	id   uint32
	kind gfx.BufferKind
	size int
}

type textureEntry struct {
	id   uint32
	desc gfx.TextureDesc
}

type depthEntry struct {
	rbo           uint32
	width, height int32
}

// Context owns every GL object it creates. All methods must be called on
// the thread that owns the GL context.
type Context struct {
	swap          func()
	width, height int32
	vao           uint32

	buffers  table[bufferEntry]
	textures table[textureEntry]
	targets  table[gfx.Texture]
	depths   table[depthEntry]
	shaders  table[uint32]
	blends   table[gfx.BlendDesc]
	samplers table[uint32]

	fbos  map[framebufferKey]uint32
	bound framebufferKey
	log   *zap.Logger
}

// New initializes OpenGL on the current context. swap presents the back
// buffer; width and height are the drawable size.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(swap func(), width, height int) (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	c := &Context{
		swap: swap,
		fbos: make(map[framebufferKey]uint32),
		log:  logger.Named("gl"),
	}
	c.Resize(width, height)

	c.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Core profile needs a bound VAO; attribute layout is respecified per draw.
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.DepthFunc(gl.LESS)
	gl.FrontFace(gl.CCW)

	return c, nil
}

// Resize records the drawable size used for the default framebuffer.
func (c *Context) Resize(width, height int) {
	c.width = int32(max(width, 1))
	c.height = int32(max(height, 1))
	if c.bound == (framebufferKey{}) {
		gl.Viewport(0, 0, c.width, c.height)
	}
}

// Close releases every object still owned by the context.
func (c *Context) Close() {
	c.buffers.each(func(h uint32, _ bufferEntry) { c.Release(gfx.Buffer(h)) })
	c.targets.each(func(h uint32, _ gfx.Texture) { c.Release(gfx.RenderTarget(h)) })
	c.textures.each(func(h uint32, _ textureEntry) { c.Release(gfx.Texture(h)) })
	c.depths.each(func(h uint32, _ depthEntry) { c.Release(gfx.DepthStencil(h)) })
	c.shaders.each(func(h uint32, _ uint32) { c.Release(gfx.Shader(h)) })
	c.samplers.each(func(h uint32, _ uint32) { c.Release(gfx.Sampler(h)) })
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

func (c *Context) CreateBuffer(kind gfx.BufferKind, data []byte) (gfx.Buffer, error) {
	if len(data) == 0 {
		return 0, ErrEmptyBuffer
	}

	var id uint32
	gl.GenBuffers(1, &id)
	target := bufferTarget(kind)
	gl.BindBuffer(target, id)
	gl.BufferData(target, len(data), gl.Ptr(data), bufferUsage(kind))
	gl.BindBuffer(target, 0)

	return gfx.Buffer(c.buffers.add(bufferEntry{id: id, kind: kind, size: len(data)})), nil
}

func (c *Context) CreateTexture(desc gfx.TextureDesc, pixels []byte) (gfx.Texture, error) {
	desc.Width = max(desc.Width, 1)
	desc.Height = max(desc.Height, 1)
	if pixels != nil && len(pixels) != uploadSize(desc) {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrBadTextureLen, len(pixels), uploadSize(desc))
	}

	internal, format, xtype := textureFormat(desc.Format)

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	var ptr = gl.Ptr(nil)
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(desc.Width), int32(desc.Height), 0, format, xtype, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return gfx.Texture(c.textures.add(textureEntry{id: id, desc: desc})), nil
}

func (c *Context) CreateRenderTarget(tex gfx.Texture) (gfx.RenderTarget, error) {
	if _, ok := c.textures.get(uint32(tex)); !ok {
		return 0, fmt.Errorf("%w: texture %d", ErrUnknownHandle, tex)
	}
	return gfx.RenderTarget(c.targets.add(tex)), nil
}

func (c *Context) CreateDepthStencil(width, height int) (gfx.DepthStencil, error) {
	ds := depthEntry{width: int32(max(width, 1)), height: int32(max(height, 1))}
	gl.GenRenderbuffers(1, &ds.rbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, ds.rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, ds.width, ds.height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	return gfx.DepthStencil(c.depths.add(ds)), nil
}

func (c *Context) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	var (
		program uint32
		err     error
	)
	if desc.Compute != "" {
		program, err = CompileCompute(desc.Compute)
	} else {
		program, err = CompileProgram(desc.Vertex, desc.Pixel)
	}
	if err != nil {
		return 0, fmt.Errorf("shader %s: %w", desc.Name, err)
	}

	c.log.Debug("shader program created", zap.String("name", desc.Name), zap.Uint32("program", program))
	return gfx.Shader(c.shaders.add(program)), nil
}

// CreateBlendState records desc; GL applies blend state at bind time.
func (c *Context) CreateBlendState(desc gfx.BlendDesc) (gfx.BlendState, error) {
	return gfx.BlendState(c.blends.add(desc)), nil
}

func (c *Context) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	minFilter, magFilter, wrap := samplerParams(desc)

	var id uint32
	gl.GenSamplers(1, &id)
	gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_S, wrap)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_T, wrap)

	return gfx.Sampler(c.samplers.add(id)), nil
}

func (c *Context) BackBuffer() gfx.RenderTarget { return backBuffer }

func (c *Context) BackDepth() gfx.DepthStencil { return backDepth }

// UpdateBuffer replaces the contents of b, growing it when needed.
func (c *Context) UpdateBuffer(b gfx.Buffer, data []byte) {
	entry, ok := c.buffers.get(uint32(b))
	if !ok || len(data) == 0 {
		return
	}

	gl.BindBuffer(gl.COPY_WRITE_BUFFER, entry.id)
	if len(data) > entry.size {
		gl.BufferData(gl.COPY_WRITE_BUFFER, len(data), gl.Ptr(data), bufferUsage(entry.kind))
		entry.size = len(data)
		c.buffers.items[b-1] = entry
	} else {
		gl.BufferSubData(gl.COPY_WRITE_BUFFER, 0, len(data), gl.Ptr(data))
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// SetRenderTargets binds color targets, depth and atomic counter buffers.
// Passing the back buffer selects the default framebuffer.
func (c *Context) SetRenderTargets(targets []gfx.RenderTarget, depth gfx.DepthStencil, rw []gfx.Buffer) {
	key := c.keyFor(targets, depth)
	if err := c.bindFramebuffer(key); err != nil {
		c.log.Error("binding render targets", zap.Error(err))
	}

	for i, b := range rw {
		if entry, ok := c.buffers.get(uint32(b)); ok {
			gl.BindBufferBase(gl.ATOMIC_COUNTER_BUFFER, uint32(i), entry.id)
		}
	}
}

func (c *Context) keyFor(targets []gfx.RenderTarget, depth gfx.DepthStencil) framebufferKey {
	for _, rt := range targets {
		if rt == backBuffer {
			return framebufferKey{}
		}
	}
	if depth == backDepth {
		depth = 0
	}
	if len(targets) > MaxRenderTargets {
		c.log.Warn("too many render targets", zap.Int("count", len(targets)))
		targets = targets[:MaxRenderTargets]
	}
	return makeFramebufferKey(targets, depth)
}

func (c *Context) ClearRenderTarget(rt gfx.RenderTarget, color [4]float32) {
	c.withFramebuffer(c.keyFor([]gfx.RenderTarget{rt}, 0), func() {
		gl.ClearColor(color[0], color[1], color[2], color[3])
		gl.Clear(gl.COLOR_BUFFER_BIT)
	})
}

func (c *Context) ClearDepthStencil(ds gfx.DepthStencil, depth float32) {
	key := framebufferKey{depth: ds}
	if ds == backDepth {
		key = framebufferKey{}
	}
	c.withFramebuffer(key, func() {
		gl.DepthMask(true)
		gl.ClearDepth(float64(depth))
		gl.ClearStencil(0)
		gl.Clear(gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)
	})
}

// withFramebuffer runs fn with key bound, then restores the previous binding.
func (c *Context) withFramebuffer(key framebufferKey, fn func()) {
	prev := c.bound
	if err := c.bindFramebuffer(key); err != nil {
		c.log.Error("binding framebuffer", zap.Error(err))
		return
	}
	fn()
	if err := c.bindFramebuffer(prev); err != nil {
		c.log.Error("restoring framebuffer", zap.Error(err))
	}
}

func (c *Context) SetBlendState(bs gfx.BlendState) {
	desc, ok := c.blends.get(uint32(bs))
	if !ok || (!desc.Color.Enabled() && !desc.Alpha.Enabled()) {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(
		blendFactor(desc.Color.Source), blendFactor(desc.Color.Destination),
		blendFactor(desc.Alpha.Source), blendFactor(desc.Alpha.Destination),
	)
	gl.BlendEquationSeparate(blendEquation(desc.Color.Operation), blendEquation(desc.Alpha.Operation))
}

func (c *Context) SetRasterState(rs gfx.RasterState) {
	if rs.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(rs.DepthWrite)

	switch rs.Cull {
	case gfx.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gfx.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

func (c *Context) SetShader(s gfx.Shader) {
	program, _ := c.shaders.get(uint32(s))
	gl.UseProgram(program)
}

func (c *Context) SetVertices(vb, ib gfx.Buffer, layout gfx.VertexLayout) {
	vertices, okV := c.buffers.get(uint32(vb))
	indices, okI := c.buffers.get(uint32(ib))
	if !okV || !okI {
		c.log.Error("binding vertices", zap.Uint32("vb", uint32(vb)), zap.Uint32("ib", uint32(ib)))
		return
	}

	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vertices.id)
	for _, attr := range layout.Attributes {
		gl.EnableVertexAttribArray(attr.Location)
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Components, gl.FLOAT, false, layout.Stride, uintptr(attr.Offset))
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, indices.id)
}

// SetTexture binds tex to texture unit slot. GL units are shared by all
// stages.
func (c *Context) SetTexture(_ gfx.Stage, slot int, tex gfx.Texture) {
	entry, _ := c.textures.get(uint32(tex))
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(gl.TEXTURE_2D, entry.id)
}

func (c *Context) SetSampler(_ gfx.Stage, slot int, s gfx.Sampler) {
	id, _ := c.samplers.get(uint32(s))
	gl.BindSampler(uint32(slot), id)
}

// SetConstantBuffer binds b to uniform block binding slot.
func (c *Context) SetConstantBuffer(_ gfx.Stage, slot int, b gfx.Buffer) {
	entry, _ := c.buffers.get(uint32(b))
	gl.BindBufferBase(gl.UNIFORM_BUFFER, uint32(slot), entry.id)
}

func (c *Context) DrawIndexed(count int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, nil)
}

func (c *Context) Dispatch(x, y, z int) {
	gl.DispatchCompute(uint32(x), uint32(y), uint32(z))
	gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_FETCH_BARRIER_BIT | gl.ATOMIC_COUNTER_BARRIER_BIT)
}

func (c *Context) Present() {
	if c.swap != nil {
		c.swap()
	}
}

// ReadBuffer waits for pending writes to b and copies it into dst.
func (c *Context) ReadBuffer(b gfx.Buffer, dst []byte) {
	entry, ok := c.buffers.get(uint32(b))
	if !ok || len(dst) == 0 {
		return
	}

	gl.MemoryBarrier(gl.ATOMIC_COUNTER_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.BindBuffer(gl.COPY_READ_BUFFER, entry.id)
	gl.GetBufferSubData(gl.COPY_READ_BUFFER, 0, min(len(dst), entry.size), gl.Ptr(dst))
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
}

func (c *Context) Release(handle gfx.Handle) {
	switch h := handle.(type) {
	case gfx.Buffer:
		if entry, ok := c.buffers.remove(uint32(h)); ok {
			gl.DeleteBuffers(1, &entry.id)
		}
	case gfx.Texture:
		if entry, ok := c.textures.remove(uint32(h)); ok {
			gl.DeleteTextures(1, &entry.id)
		}
	case gfx.RenderTarget:
		if _, ok := c.targets.remove(uint32(h)); ok {
			c.dropFramebuffers(h, 0)
		}
	case gfx.DepthStencil:
		if entry, ok := c.depths.remove(uint32(h)); ok {
			c.dropFramebuffers(0, h)
			gl.DeleteRenderbuffers(1, &entry.rbo)
		}
	case gfx.Shader:
		if program, ok := c.shaders.remove(uint32(h)); ok {
			gl.DeleteProgram(program)
		}
	case gfx.BlendState:
		c.blends.remove(uint32(h))
	case gfx.Sampler:
		if id, ok := c.samplers.remove(uint32(h)); ok {
			gl.DeleteSamplers(1, &id)
		}
	}
}

var _ gfx.Context = (*Context)(nil)
