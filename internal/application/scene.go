package application

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/config"
	"github.com/Faultbox/derky/internal/engine/environment"
	"github.com/Faultbox/derky/internal/engine/lighting"
	"github.com/Faultbox/derky/internal/engine/texture"
)

// NewEnvironment builds the lights and light scripts described by sc.
// The image light is attached separately with LoadImageLight because it
// needs a texture.
func NewEnvironment(sc config.SceneConfig, view environment.View) *environment.Environment {
	env := environment.New(view)
	env.Ambient = lighting.AmbientLight{Intensity: sc.Ambient}

	for _, d := range sc.Directional {
		env.Directional = append(env.Directional, lighting.DirectionalLight{
			Intensity: d.Intensity,
			Direction: lighting.SunDirection(d.Longitude, d.Latitude),
		})
	}

	for _, p := range sc.Points {
		idx := len(env.Points)
		env.Points = append(env.Points, lighting.PointLight{
			Intensity: p.Intensity,
			Position:  p.Position,
		})
		if o := p.Orbit; o != nil {
			env.Scripts = append(env.Scripts, environment.Script{
				Light: idx,
				Animation: lighting.Orbit{
					Radius:       o.Radius,
					Speed:        o.Speed,
					Height:       o.Height,
					BobAmplitude: o.BobAmplitude,
					BobSpeed:     o.BobSpeed,
				},
			})
		}
		if b := p.Blink; b != nil {
			env.Scripts = append(env.Scripts, environment.Script{
				Light:     idx,
				Animation: lighting.Blink{Frequency: b.Frequency * 2 * math.Pi, On: p.Intensity},
			})
		}
	}
	return env
}

// ModelTransform returns translate * rotateY * scale for mc. A zero scale
// means 1.
func ModelTransform(mc config.ModelConfig) mgl32.Mat4 {
	scale := mc.Scale
	if scale == 0 {
		scale = 1
	}
	return mgl32.Translate3D(mc.Position[0], mc.Position[1], mc.Position[2]).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(mc.RotationY))).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}

// Placements converts configured models for LoadModels.
func Placements(models []config.ModelConfig) []Placement {
	out := make([]Placement, len(models))
	for i, mc := range models {
		out[i] = Placement{Path: mc.Path, Transform: ModelTransform(mc)}
	}
	return out
}

// LoadImageLight decodes an equirectangular image and attaches it to the
// environment as an image light, replacing any previous one.
func (a *Application) LoadImageLight(name string, intensity float32) error {
	if a.closed {
		return ErrClosed
	}
	data, err := a.assets.Load(name)
	if err != nil {
		return fmt.Errorf("loading image light: %w", err)
	}
	img, err := texture.Decode(name, data)
	if err != nil {
		return fmt.Errorf("decoding image light %s: %w", name, err)
	}
	tex, err := uploadImage(a.ctx, texture.Fit(img, a.cfg.MaxTextureSize))
	if err != nil {
		return fmt.Errorf("uploading image light %s: %w", name, err)
	}

	a.ctx.Release(a.imageLight)
	a.imageLight = tex
	a.env.Image = &lighting.ImageLight{Texture: tex, Intensity: intensity}

	a.log.Info("image light loaded",
		zap.String("path", name),
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", img.Rect.Dy()),
	)
	return nil
}
