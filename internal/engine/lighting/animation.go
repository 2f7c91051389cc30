package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Animation scripts a point light as a pure function of elapsed seconds.
type Animation interface {
	Apply(light *PointLight, seconds float32)
}

// Orbit moves a light on a horizontal circle around the origin.
// With a non-zero BobAmplitude the height oscillates around Height;
// otherwise the light keeps its current height.
type Orbit struct {
	Radius       float32
	Speed        float32 // radians per second, negative for clockwise
	Height       float32
	BobAmplitude float32
	BobSpeed     float32
}

// Apply implements Animation.
func (o Orbit) Apply(light *PointLight, seconds float32) {
	angle := float64(seconds * o.Speed)
	light.Position[0] = float32(math.Cos(angle)) * o.Radius
	light.Position[2] = float32(math.Sin(angle)) * o.Radius
	if o.BobAmplitude != 0 {
		light.Position[1] = float32(math.Sin(float64(seconds*o.BobSpeed)))*o.BobAmplitude + o.Height
	}
}

// Blink switches a light between On and darkness following a sine wave.
type Blink struct {
	Frequency float32
	On        mgl32.Vec3
}

// Apply implements Animation.
func (b Blink) Apply(light *PointLight, seconds float32) {
	if math.Sin(float64(seconds*b.Frequency)) > 0 {
		light.Intensity = b.On
	} else {
		light.Intensity = mgl32.Vec3{}
	}
}
