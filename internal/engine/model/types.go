// Package model turns parsed Wavefront data into renderable models through
// caller-supplied vertex and material mappers.
package model

// Vertex is an interleaved mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// VertexStride is the byte size of Vertex.
const VertexStride = 32

// Mesh holds triangle geometry ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// ReverseWinding swaps the second and third corner of every triangle
	// (for backends with the opposite front-face convention).
	ReverseWinding bool
	// FlipV replaces v with 1-v for top-left texture origins.
	FlipV bool
}
