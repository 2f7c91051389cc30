// Package environment holds the mutable per-frame scene state: view, lights,
// elapsed time and the luminance history used for auto-exposure.
package environment

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/derky/internal/engine/gfx"
	"github.com/Faultbox/derky/internal/engine/lighting"
)

// LuminanceHistory is the number of frames of luminance kept.
const LuminanceHistory = 16

// ViewBlockSize is the byte size of the view uniform block.
const ViewBlockSize = 160

// View holds the camera matrices and output size.
type View struct {
	ViewMatrix       mgl32.Mat4
	ProjectionMatrix mgl32.Mat4
	ScreenSize       mgl32.Vec2
}

// NewView builds a perspective view looking from eye to target.
func NewView(eye, target mgl32.Vec3, fovDegrees, near, far float32, width, height int) View {
	aspect := float32(width) / float32(max(height, 1))
	return View{
		ViewMatrix:       mgl32.LookAtV(eye, target, mgl32.Vec3{0, 1, 0}),
		ProjectionMatrix: mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, near, far),
		ScreenSize:       mgl32.Vec2{float32(width), float32(height)},
	}
}

// Script binds an animation to a point light by index.
type Script struct {
	Light     int
	Animation lighting.Animation
}

// Environment is the scene state consumed by every render pass.
type Environment struct {
	Ambient     lighting.AmbientLight
	Image       *lighting.ImageLight
	Directional []lighting.DirectionalLight
	Points      []lighting.PointLight
	Scripts     []Script

	View    View
	Camera  mgl32.Vec3
	Elapsed time.Duration

	// Luminance is a shift register: index 15 is the newest frame.
	Luminance [LuminanceHistory]float32
}

// New creates an environment with no lights.
func New(view View) *Environment {
	return &Environment{View: view}
}

// Tick advances elapsed time and re-evaluates scripted lights.
func (e *Environment) Tick(delta time.Duration) {
	e.Elapsed += delta
	seconds := float32(e.Elapsed.Seconds())
	for _, s := range e.Scripts {
		if s.Light < 0 || s.Light >= len(e.Points) {
			continue
		}
		s.Animation.Apply(&e.Points[s.Light], seconds)
	}
}

// UpdateLuminance pushes a new measurement, evicting the oldest.
func (e *Environment) UpdateLuminance(v float32) {
	copy(e.Luminance[:LuminanceHistory-1], e.Luminance[1:])
	e.Luminance[LuminanceHistory-1] = v
}

// LatestLuminance returns the most recent measurement.
func (e *Environment) LatestLuminance() float32 {
	return e.Luminance[LuminanceHistory-1]
}

// AverageLuminance returns the mean of the history.
func (e *Environment) AverageLuminance() float32 {
	var sum float32
	for _, v := range e.Luminance {
		sum += v
	}
	return sum / LuminanceHistory
}

// SetCamera moves the camera and replaces the view matrix.
func (e *Environment) SetCamera(position mgl32.Vec3, viewMatrix mgl32.Mat4) {
	e.Camera = position
	e.View.ViewMatrix = viewMatrix
}

// Resize updates the projection aspect and screen size.
func (e *Environment) Resize(width, height int, fovDegrees, near, far float32) {
	aspect := float32(width) / float32(max(height, 1))
	e.View.ProjectionMatrix = mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, near, far)
	e.View.ScreenSize = mgl32.Vec2{float32(width), float32(height)}
}

// ViewBlock packs the view uniform block: view, projection, camera
// position and (width, height, elapsed seconds, 0).
func (e *Environment) ViewBlock() []byte {
	return gfx.NewBlock(10).
		Mat4(e.View.ViewMatrix).
		Mat4(e.View.ProjectionMatrix).
		Vec3(e.Camera, 1).
		Vec4(e.View.ScreenSize[0], e.View.ScreenSize[1], float32(e.Elapsed.Seconds()), 0).
		Bytes()
}
