// Package camera provides an orbit camera that drives the environment view.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/derky/internal/engine/model"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center mgl32.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the XZ plane
	Yaw      float32 // radians around Y

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		Pitch:           0.3,
		MinDistance:     0.5,
		MaxDistance:     100.0,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	pitch, yaw := float64(c.Pitch), float64(c.Yaw)
	offset := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return c.Center.Add(offset.Mul(c.Distance))
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = mgl32.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on b and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(b model.Bounds) {
	minV, maxV := mgl32.Vec3(b.Min), mgl32.Vec3(b.Max)
	c.Center = minV.Add(maxV).Mul(0.5)
	radius := maxV.Sub(minV).Len() / 2
	c.Distance = mgl32.Clamp(radius*2.5, c.MinDistance, c.MaxDistance)
}
