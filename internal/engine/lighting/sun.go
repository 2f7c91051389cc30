package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude/latitude angles in degrees to the
// direction a sun's light travels. Longitude rotates around Y (0-360),
// latitude is elevation above the horizon (0-90).
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lonRad := float64(longitude) * math.Pi / 180.0
	latRad := float64(latitude) * math.Pi / 180.0

	// Spherical to Cartesian, pointing towards the sun
	x := float32(math.Cos(latRad) * math.Sin(lonRad))
	y := float32(math.Sin(latRad))
	z := float32(math.Cos(latRad) * math.Cos(lonRad))

	return mgl32.Vec3{-x, -y, -z}
}
