// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Scene    SceneConfig    `yaml:"scene"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Fullscreen     bool    `yaml:"fullscreen"`
	VSync          bool    `yaml:"vsync"`
	FOV            float32 `yaml:"fov"`
	Near           float32 `yaml:"near"`
	Far            float32 `yaml:"far"`
	MaxTextureSize int     `yaml:"max_texture_size"` // 0 keeps source size
}

// SceneConfig describes what is drawn and how it is lit.
type SceneConfig struct {
	Models          []ModelConfig       `yaml:"models"`
	Camera          CameraConfig        `yaml:"camera"`
	Ambient         [3]float32          `yaml:"ambient"`
	ImageLight      *ImageLightConfig   `yaml:"image_light"`
	Directional     []DirectionalConfig `yaml:"directional"`
	Points          []PointConfig       `yaml:"points"`
	BrightThreshold float32             `yaml:"bright_threshold"`
}

// ModelConfig places one OBJ file in the scene.
type ModelConfig struct {
	Path      string     `yaml:"path"`
	Position  [3]float32 `yaml:"position"`
	RotationY float32    `yaml:"rotation_y"` // degrees
	Scale     float32    `yaml:"scale"`
}

// CameraConfig sets the initial orbit camera.
type CameraConfig struct {
	Target   [3]float32 `yaml:"target"`
	Distance float32    `yaml:"distance"`
	Pitch    float32    `yaml:"pitch"` // degrees
	Yaw      float32    `yaml:"yaw"`   // degrees
	Fit      bool       `yaml:"fit"`   // frame the loaded models instead
}

// ImageLightConfig lights the scene from an equirectangular image.
type ImageLightConfig struct {
	Path      string  `yaml:"path"`
	Intensity float32 `yaml:"intensity"`
}

// DirectionalConfig is a sun-like light placed by longitude and latitude.
type DirectionalConfig struct {
	Intensity [3]float32 `yaml:"intensity"`
	Longitude float32    `yaml:"longitude"` // degrees
	Latitude  float32    `yaml:"latitude"`  // degrees
}

// PointConfig is a point light with optional scripted motion.
type PointConfig struct {
	Intensity [3]float32   `yaml:"intensity"`
	Position  [3]float32   `yaml:"position"`
	Orbit     *OrbitConfig `yaml:"orbit"`
	Blink     *BlinkConfig `yaml:"blink"`
}

// OrbitConfig moves a light in a circle around the Y axis.
type OrbitConfig struct {
	Radius       float32 `yaml:"radius"`
	Speed        float32 `yaml:"speed"` // radians per second
	Height       float32 `yaml:"height"`
	BobAmplitude float32 `yaml:"bob_amplitude"`
	BobSpeed     float32 `yaml:"bob_speed"`
}

// BlinkConfig switches a light on and off.
type BlinkConfig struct {
	Frequency float32 `yaml:"frequency"` // Hz
}

// AssetsConfig holds asset search settings.
type AssetsConfig struct {
	Roots    []string `yaml:"roots"`    // Searched last to first
	Encoding string   `yaml:"encoding"` // OBJ/MTL charset, e.g. shift_jis
	Workers  int      `yaml:"workers"`  // Parallel model parsing
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Validation errors.
var (
	ErrInvalidSize  = errors.New("invalid window size")
	ErrInvalidDepth = errors.New("invalid depth range")
	ErrNoModels     = errors.New("no models configured")
	ErrEmptyPath    = errors.New("empty path")
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    60,
			Near:   0.1,
			Far:    100,
		},
		Scene: SceneConfig{
			Models: []ModelConfig{
				{Path: "models/character.obj", Scale: 1},
				{Path: "models/room.obj", Scale: 1},
			},
			Camera: CameraConfig{
				Target:   [3]float32{0, 1, 0},
				Distance: 5,
				Pitch:    15,
			},
			Ambient: [3]float32{0.05, 0.05, 0.05},
			Directional: []DirectionalConfig{
				{Intensity: [3]float32{0.8, 0.75, 0.7}, Longitude: 30, Latitude: 45},
			},
			Points: []PointConfig{
				{
					Intensity: [3]float32{2, 1.2, 0.6},
					Orbit:     &OrbitConfig{Radius: 2, Speed: 1, Height: 1.5, BobAmplitude: 0.3, BobSpeed: 2},
				},
				{
					Intensity: [3]float32{0.4, 0.6, 2},
					Position:  [3]float32{-1.5, 2, 1},
					Blink:     &BlinkConfig{Frequency: 0.5},
				},
			},
			BrightThreshold: 0.8,
		},
		Assets: AssetsConfig{
			Roots:   []string{"."},
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.Near <= 0 || c.Graphics.Far <= c.Graphics.Near {
		return fmt.Errorf("%w: near %g, far %g", ErrInvalidDepth, c.Graphics.Near, c.Graphics.Far)
	}
	if len(c.Scene.Models) == 0 {
		return ErrNoModels
	}
	for i, m := range c.Scene.Models {
		if m.Path == "" {
			return fmt.Errorf("scene.models[%d]: %w", i, ErrEmptyPath)
		}
	}
	if c.Scene.ImageLight != nil && c.Scene.ImageLight.Path == "" {
		return fmt.Errorf("scene.image_light: %w", ErrEmptyPath)
	}
	return nil
}
