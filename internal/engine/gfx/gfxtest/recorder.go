// Package gfxtest provides a gfx.Context that records calls instead of
// talking to a GPU.
package gfxtest

import (
	"fmt"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

// Call is one recorded context operation.
type Call struct {
	Op   string
	Args []any
}

// Recorder implements gfx.Context in memory.
type Recorder struct {
	Calls []Call

	// FailOn makes the named Create* operation return its error.
	FailOn map[string]error

	// ReadBack, if set, fills dst instead of the stored buffer contents.
	ReadBack func(b gfx.Buffer, dst []byte)

	next     uint32
	buffers  map[gfx.Buffer][]byte
	kinds    map[gfx.Buffer]gfx.BufferKind
	textures map[gfx.Texture]gfx.TextureDesc
	released []gfx.Handle
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{
		FailOn:   make(map[string]error),
		buffers:  make(map[gfx.Buffer][]byte),
		kinds:    make(map[gfx.Buffer]gfx.BufferKind),
		textures: make(map[gfx.Texture]gfx.TextureDesc),
	}
}

var _ gfx.Context = (*Recorder)(nil)

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) alloc(op string) (uint32, error) {
	if err := r.FailOn[op]; err != nil {
		r.record(op, err)
		return 0, err
	}
	r.next++
	return r.next, nil
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the sequence of operation names.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset forgets recorded calls but keeps resources.
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Released returns every handle passed to Release.
func (r *Recorder) Released() []gfx.Handle {
	return r.released
}

// BufferData returns the last contents written to b.
func (r *Recorder) BufferData(b gfx.Buffer) []byte {
	return r.buffers[b]
}

// BufferKind returns the kind b was created with.
func (r *Recorder) BufferKind(b gfx.Buffer) gfx.BufferKind {
	return r.kinds[b]
}

// TextureDesc returns the description t was created with.
func (r *Recorder) TextureDesc(t gfx.Texture) gfx.TextureDesc {
	return r.textures[t]
}

func (r *Recorder) CreateBuffer(kind gfx.BufferKind, data []byte) (gfx.Buffer, error) {
	id, err := r.alloc("CreateBuffer")
	if err != nil {
		return 0, err
	}
	b := gfx.Buffer(id)
	r.buffers[b] = append([]byte(nil), data...)
	r.kinds[b] = kind
	r.record("CreateBuffer", kind, len(data))
	return b, nil
}

func (r *Recorder) CreateTexture(desc gfx.TextureDesc, pixels []byte) (gfx.Texture, error) {
	id, err := r.alloc("CreateTexture")
	if err != nil {
		return 0, err
	}
	want := desc.Width * desc.Height * desc.Format.BytesPerTexel()
	if pixels != nil && len(pixels) != want {
		return 0, fmt.Errorf("texture data is %d bytes, want %d", len(pixels), want)
	}
	t := gfx.Texture(id)
	r.textures[t] = desc
	r.record("CreateTexture", desc)
	return t, nil
}

func (r *Recorder) CreateRenderTarget(tex gfx.Texture) (gfx.RenderTarget, error) {
	id, err := r.alloc("CreateRenderTarget")
	if err != nil {
		return 0, err
	}
	r.record("CreateRenderTarget", tex)
	return gfx.RenderTarget(id), nil
}

func (r *Recorder) CreateDepthStencil(width, height int) (gfx.DepthStencil, error) {
	id, err := r.alloc("CreateDepthStencil")
	if err != nil {
		return 0, err
	}
	r.record("CreateDepthStencil", width, height)
	return gfx.DepthStencil(id), nil
}

func (r *Recorder) CreateShader(desc gfx.ShaderDesc) (gfx.Shader, error) {
	id, err := r.alloc("CreateShader")
	if err != nil {
		return 0, err
	}
	r.record("CreateShader", desc.Name)
	return gfx.Shader(id), nil
}

func (r *Recorder) CreateBlendState(desc gfx.BlendDesc) (gfx.BlendState, error) {
	id, err := r.alloc("CreateBlendState")
	if err != nil {
		return 0, err
	}
	r.record("CreateBlendState", desc)
	return gfx.BlendState(id), nil
}

func (r *Recorder) CreateSampler(desc gfx.SamplerDesc) (gfx.Sampler, error) {
	id, err := r.alloc("CreateSampler")
	if err != nil {
		return 0, err
	}
	r.record("CreateSampler", desc)
	return gfx.Sampler(id), nil
}

// BackBuffer uses a reserved handle outside the allocated range.
func (r *Recorder) BackBuffer() gfx.RenderTarget { return gfx.RenderTarget(^uint32(0)) }

// BackDepth uses a reserved handle outside the allocated range.
func (r *Recorder) BackDepth() gfx.DepthStencil { return gfx.DepthStencil(^uint32(0)) }

func (r *Recorder) UpdateBuffer(b gfx.Buffer, data []byte) {
	r.buffers[b] = append(r.buffers[b][:0], data...)
	r.record("UpdateBuffer", b, len(data))
}

func (r *Recorder) SetRenderTargets(targets []gfx.RenderTarget, depth gfx.DepthStencil, rw []gfx.Buffer) {
	r.record("SetRenderTargets", append([]gfx.RenderTarget(nil), targets...), depth, append([]gfx.Buffer(nil), rw...))
}

func (r *Recorder) ClearRenderTarget(rt gfx.RenderTarget, color [4]float32) {
	r.record("ClearRenderTarget", rt, color)
}

func (r *Recorder) ClearDepthStencil(ds gfx.DepthStencil, depth float32) {
	r.record("ClearDepthStencil", ds, depth)
}

func (r *Recorder) SetBlendState(bs gfx.BlendState) { r.record("SetBlendState", bs) }

func (r *Recorder) SetRasterState(rs gfx.RasterState) { r.record("SetRasterState", rs) }

func (r *Recorder) SetShader(s gfx.Shader) { r.record("SetShader", s) }

func (r *Recorder) SetVertices(vb, ib gfx.Buffer, layout gfx.VertexLayout) {
	r.record("SetVertices", vb, ib, layout.Stride)
}

func (r *Recorder) SetTexture(stage gfx.Stage, slot int, tex gfx.Texture) {
	r.record("SetTexture", stage, slot, tex)
}

func (r *Recorder) SetSampler(stage gfx.Stage, slot int, s gfx.Sampler) {
	r.record("SetSampler", stage, slot, s)
}

func (r *Recorder) SetConstantBuffer(stage gfx.Stage, slot int, b gfx.Buffer) {
	r.record("SetConstantBuffer", stage, slot, b)
}

func (r *Recorder) DrawIndexed(count int) { r.record("DrawIndexed", count) }

func (r *Recorder) Dispatch(x, y, z int) { r.record("Dispatch", x, y, z) }

func (r *Recorder) Present() { r.record("Present") }

func (r *Recorder) ReadBuffer(b gfx.Buffer, dst []byte) {
	r.record("ReadBuffer", b)
	if r.ReadBack != nil {
		r.ReadBack(b, dst)
		return
	}
	copy(dst, r.buffers[b])
}

func (r *Recorder) Release(h gfx.Handle) {
	r.released = append(r.released, h)
	r.record("Release", h)
}
