// Package gfx defines the graphics-context boundary the renderer drives.
// Backends own every GPU object and hand out typed handles that index into
// their resource tables.
package gfx

// Resource handles. Zero is never a valid handle.
type (
	Buffer       uint32
	Texture      uint32
	RenderTarget uint32
	DepthStencil uint32
	Shader       uint32
	BlendState   uint32
	Sampler      uint32
)

// Handle is any resource handle. Only the types above implement it.
type Handle interface {
	ID() uint32
	handle()
}

func (h Buffer) ID() uint32       { return uint32(h) }
func (h Texture) ID() uint32      { return uint32(h) }
func (h RenderTarget) ID() uint32 { return uint32(h) }
func (h DepthStencil) ID() uint32 { return uint32(h) }
func (h Shader) ID() uint32       { return uint32(h) }
func (h BlendState) ID() uint32   { return uint32(h) }
func (h Sampler) ID() uint32      { return uint32(h) }

func (Buffer) handle()       {}
func (Texture) handle()      {}
func (RenderTarget) handle() {}
func (DepthStencil) handle() {}
func (Shader) handle()       {}
func (BlendState) handle()   {}
func (Sampler) handle()      {}

// BufferKind selects how a buffer is bound.
type BufferKind int

const (
	BufferVertex BufferKind = iota
	BufferIndex
	BufferConstant
	BufferReadWrite // atomic counter / UAV
)

// TextureFormat is the element format of a 2D texture.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGBA16F
	FormatRGBA32F
	FormatR32F
)

// Channels returns the number of components per texel.
func (f TextureFormat) Channels() int {
	if f == FormatR32F {
		return 1
	}
	return 4
}

// BytesPerTexel returns the size of one texel.
func (f TextureFormat) BytesPerTexel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	case FormatR32F:
		return 4
	default:
		return 0
	}
}

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	Width  int
	Height int
	Format TextureFormat
}

// Stage is a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StagePixel
	StageCompute
)

// ShaderDesc carries backend-specific shader sources. Compute may be set
// alone for a compute-only program.
type ShaderDesc struct {
	Name    string
	Vertex  string
	Pixel   string
	Compute string
}

// Filter is a sampler filtering mode.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

// AddressMode is a sampler wrap mode.
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
)

// SamplerDesc describes a texture sampler.
type SamplerDesc struct {
	Filter  Filter
	Address AddressMode
}

// CullMode selects which triangles are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// RasterState holds depth and culling switches.
type RasterState struct {
	DepthTest  bool
	DepthWrite bool
	Cull       CullMode
}

// VertexAttribute describes one float attribute of an interleaved vertex.
type VertexAttribute struct {
	Location   uint32
	Components int32
	Offset     int
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	Stride     int32
	Attributes []VertexAttribute
}

// Context is the set of operations the renderer needs from a native
// graphics API. Create* calls can fail; everything used while drawing a
// frame is treated as infallible.
type Context interface {
	CreateBuffer(kind BufferKind, data []byte) (Buffer, error)
	CreateTexture(desc TextureDesc, pixels []byte) (Texture, error)
	CreateRenderTarget(tex Texture) (RenderTarget, error)
	CreateDepthStencil(width, height int) (DepthStencil, error)
	CreateShader(desc ShaderDesc) (Shader, error)
	CreateBlendState(desc BlendDesc) (BlendState, error)
	CreateSampler(desc SamplerDesc) (Sampler, error)

	// BackBuffer and BackDepth are the swapchain target and its depth.
	BackBuffer() RenderTarget
	BackDepth() DepthStencil

	UpdateBuffer(b Buffer, data []byte)
	SetRenderTargets(targets []RenderTarget, depth DepthStencil, rw []Buffer)
	ClearRenderTarget(rt RenderTarget, color [4]float32)
	ClearDepthStencil(ds DepthStencil, depth float32)
	SetBlendState(bs BlendState)
	SetRasterState(rs RasterState)
	SetShader(s Shader)
	SetVertices(vb, ib Buffer, layout VertexLayout)
	SetTexture(stage Stage, slot int, tex Texture)
	SetSampler(stage Stage, slot int, s Sampler)
	SetConstantBuffer(stage Stage, slot int, b Buffer)
	DrawIndexed(count int)
	Dispatch(x, y, z int)
	Present()

	// ReadBuffer copies the contents of b into dst, stalling until the GPU
	// has finished writing it.
	ReadBuffer(b Buffer, dst []byte)

	// Release frees any handle created by this context. Zero is ignored.
	Release(h Handle)
}
