// Package lighting provides the light types used by the deferred lighting pass.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

// BlockSize is the byte size of the per-light uniform block.
const BlockSize = 32

// AmbientLight lights every surface uniformly.
type AmbientLight struct {
	Intensity mgl32.Vec3
}

// Block packs the light for the shared light uniform slot.
func (l AmbientLight) Block() []byte {
	return gfx.NewBlock(2).Vec3(l.Intensity, 0).Vec4(0, 0, 0, 0).Bytes()
}

// ImageLight lights surfaces from an environment texture.
type ImageLight struct {
	Texture   gfx.Texture
	Intensity float32
}

// Block packs the light for the shared light uniform slot.
func (l ImageLight) Block() []byte {
	return gfx.NewBlock(2).Vec4(l.Intensity, l.Intensity, l.Intensity, l.Intensity).Vec4(0, 0, 0, 0).Bytes()
}

// DirectionalLight is an infinitely distant light.
type DirectionalLight struct {
	Intensity mgl32.Vec3
	Direction mgl32.Vec3 // direction the light travels
}

// Block packs the light for the shared light uniform slot.
func (l DirectionalLight) Block() []byte {
	return gfx.NewBlock(2).Vec3(l.Intensity, 0).Vec3(l.Direction, 0).Bytes()
}

// PointLight emits from a position in all directions.
type PointLight struct {
	Intensity mgl32.Vec3
	Position  mgl32.Vec3
}

// Block packs the light for the shared light uniform slot.
func (l PointLight) Block() []byte {
	return gfx.NewBlock(2).Vec3(l.Intensity, 0).Vec3(l.Position, 1).Bytes()
}
