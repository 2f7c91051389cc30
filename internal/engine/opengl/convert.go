package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

func blendFactor(w gfx.BlendWeight) uint32 {
	switch w {
	case gfx.BlendZero:
		return gl.ZERO
	case gfx.BlendSrcColor:
		return gl.SRC_COLOR
	case gfx.BlendInvSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case gfx.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case gfx.BlendInvSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gfx.BlendDestAlpha:
		return gl.DST_ALPHA
	case gfx.BlendInvDestAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gfx.BlendDestColor:
		return gl.DST_COLOR
	case gfx.BlendInvDestColor:
		return gl.ONE_MINUS_DST_COLOR
	default:
		return gl.ONE
	}
}

func blendEquation(op gfx.BlendOperation) uint32 {
	switch op {
	case gfx.BlendSubtract:
		return gl.FUNC_SUBTRACT
	case gfx.BlendRevSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case gfx.BlendMin:
		return gl.MIN
	case gfx.BlendMax:
		return gl.MAX
	default:
		return gl.FUNC_ADD
	}
}

// textureFormat returns the internal format, pixel format and pixel type.
func textureFormat(f gfx.TextureFormat) (internal int32, format, xtype uint32) {
	switch f {
	case gfx.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.FLOAT
	case gfx.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case gfx.FormatR32F:
		return gl.R32F, gl.RED, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

// uploadSize is the number of bytes glTexImage2D reads for desc. RGBA16F
// textures are uploaded from 32-bit floats.
func uploadSize(desc gfx.TextureDesc) int {
	bpt := desc.Format.BytesPerTexel()
	if desc.Format == gfx.FormatRGBA16F {
		bpt = 16
	}
	return desc.Width * desc.Height * bpt
}

func bufferTarget(kind gfx.BufferKind) uint32 {
	switch kind {
	case gfx.BufferIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case gfx.BufferConstant:
		return gl.UNIFORM_BUFFER
	case gfx.BufferReadWrite:
		return gl.ATOMIC_COUNTER_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func bufferUsage(kind gfx.BufferKind) uint32 {
	switch kind {
	case gfx.BufferConstant, gfx.BufferReadWrite:
		return gl.DYNAMIC_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func samplerParams(desc gfx.SamplerDesc) (minFilter, magFilter, wrap int32) {
	minFilter, magFilter = gl.LINEAR, gl.LINEAR
	if desc.Filter == gfx.FilterNearest {
		minFilter, magFilter = gl.NEAREST, gl.NEAREST
	}
	wrap = gl.REPEAT
	if desc.Address == gfx.AddressClamp {
		wrap = gl.CLAMP_TO_EDGE
	}
	return minFilter, magFilter, wrap
}
