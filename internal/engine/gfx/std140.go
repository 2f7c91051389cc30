package gfx

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Block packs values into a std140 uniform block. Only vec4-aligned
// members are offered so callers never have to think about padding.
type Block struct {
	buf []byte
}

// NewBlock creates a block with room for n vec4 slots.
func NewBlock(n int) *Block {
	return &Block{buf: make([]byte, 0, n*16)}
}

func (b *Block) put(f float32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(f))
}

// Vec4 appends four floats.
func (b *Block) Vec4(x, y, z, w float32) *Block {
	b.put(x)
	b.put(y)
	b.put(z)
	b.put(w)
	return b
}

// Vec3 appends a vec3 padded with w.
func (b *Block) Vec3(v mgl32.Vec3, w float32) *Block {
	return b.Vec4(v[0], v[1], v[2], w)
}

// Mat4 appends a column-major matrix.
func (b *Block) Mat4(m mgl32.Mat4) *Block {
	for _, f := range m {
		b.put(f)
	}
	return b
}

// Bytes returns the packed data.
func (b *Block) Bytes() []byte {
	return b.buf
}

// Uint32Bytes encodes a single counter value.
func Uint32Bytes(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// Float32s decodes little-endian floats from data.
func Float32s(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
