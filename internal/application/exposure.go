package application

import "github.com/go-gl/mathgl/mgl32"

// Exposure limits.
const (
	MinExposure = 0.25
	MaxExposure = 2
)

// Exposure maps the average bright-pixel count over the luminance history
// to a tone-mapping exposure. Scenes with no bright pixels get the maximum;
// a frame where every pixel is bright gets 1/1.5.
func Exposure(averageBright float32, pixels int) float32 {
	if pixels <= 0 {
		return 1
	}
	fraction := mgl32.Clamp(averageBright/float32(pixels), 0, 1)
	return mgl32.Clamp(1/(0.5+fraction), MinExposure, MaxExposure)
}
