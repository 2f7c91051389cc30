package model

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/derky/pkg/formats"
)

var defaultNormal = [3]float32{0, 1, 0}

// BuildMesh fan-triangulates faces into an indexed triangle list.
// Corners without a normal get the flat face normal; corners without a
// texture coordinate get (0, 0).
func BuildMesh(faces [][]formats.FaceVertex, opts BuildOptions) *Mesh {
	mesh := &Mesh{
		Bounds: Bounds{
			Min: [3]float32{1e10, 1e10, 1e10},
			Max: [3]float32{-1e10, -1e10, -1e10},
		},
	}

	for _, face := range faces {
		if len(face) < 3 {
			continue
		}

		normal := faceNormal(face)
		base := uint32(len(mesh.Vertices))
		for _, fv := range face {
			v := Vertex{
				Position: fv.Position,
				Normal:   normal,
			}
			if fv.HasNormal {
				v.Normal = fv.Normal
			}
			if fv.HasUV {
				v.TexCoord = fv.UV
				if opts.FlipV {
					v.TexCoord[1] = 1 - v.TexCoord[1]
				}
			}
			updateBounds(&mesh.Bounds, v.Position)
			mesh.Vertices = append(mesh.Vertices, v)
		}

		for _, tri := range formats.Triangulate(len(face)) {
			if opts.ReverseWinding {
				tri[1], tri[2] = tri[2], tri[1]
			}
			mesh.Indices = append(mesh.Indices,
				base+uint32(tri[0]), base+uint32(tri[1]), base+uint32(tri[2]))
		}
	}

	if len(mesh.Vertices) == 0 {
		mesh.Bounds = Bounds{}
	}
	return mesh
}

// faceNormal computes the normal of the first three corners.
func faceNormal(face []formats.FaceVertex) [3]float32 {
	e1 := face[1].Position.Sub(face[0].Position)
	e2 := face[2].Position.Sub(face[0].Position)
	n := e1.Cross(e2)
	if n.Len() < 1e-6 {
		return defaultNormal
	}
	return n.Normalize()
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Merge grows b to contain other.
func (b Bounds) Merge(other Bounds) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], other.Min[i])
		b.Max[i] = max(b.Max[i], other.Max[i])
	}
	return b
}

// VertexBytes packs the vertices as little-endian floats in Vertex order.
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		for _, f := range v.Position {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.Normal {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		for _, f := range v.TexCoord {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}

// IndexBytes packs the indices as little-endian uint32.
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, 0, len(m.Indices)*4)
	for _, i := range m.Indices {
		buf = binary.LittleEndian.AppendUint32(buf, i)
	}
	return buf
}
