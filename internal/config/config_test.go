package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// withFlags applies set and resets every flag when the test ends.
func withFlags(t *testing.T, set func()) {
	t.Helper()
	t.Cleanup(func() {
		*flagConfig, *flagWriteConfig, *flagLogFile, *flagSize = "", "", "", ""
		*flagDebug, *flagFullscreen, *flagWindowed = false, false, false
		flagModels = nil
	})
	set()
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	g := cfg.Graphics
	if g.Width != 1280 || g.Height != 720 || g.Fullscreen || !g.VSync {
		t.Errorf("graphics = %+v", g)
	}
	s := cfg.Scene
	if len(s.Models) != 2 || len(s.Directional) != 1 || len(s.Points) != 2 {
		t.Errorf("scene: %d models, %d directional, %d points", len(s.Models), len(s.Directional), len(s.Points))
	}
	if s.Points[0].Orbit == nil || s.Points[1].Blink == nil {
		t.Error("default point lights should be scripted")
	}
	if cfg.Logging != (LoggingConfig{Level: "info"}) {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestReadFile(t *testing.T) {
	path := writeYAML(t, `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  max_texture_size: 1024
scene:
  models:
    - path: data/teapot.obj
      position: [0, 0.5, 0]
      scale: 2
  image_light:
    path: sky.webp
    intensity: 0.5
  points:
    - intensity: [1, 1, 1]
      orbit:
        radius: 3
        speed: -0.5
assets:
  roots: [assets, mods]
  encoding: shift_jis
logging:
  level: debug
  log_file: derky.log
`)

	cfg := Default()
	if err := cfg.ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	g := cfg.Graphics
	if g.Width != 1920 || g.Height != 1080 || !g.Fullscreen || g.VSync || g.MaxTextureSize != 1024 {
		t.Errorf("graphics = %+v", g)
	}
	if g.FOV != 60 {
		t.Errorf("fov = %v, want default 60 kept", g.FOV)
	}
	want := ModelConfig{Path: "data/teapot.obj", Position: [3]float32{0, 0.5, 0}, Scale: 2}
	if len(cfg.Scene.Models) != 1 || cfg.Scene.Models[0] != want {
		t.Errorf("models = %+v, want [%+v]", cfg.Scene.Models, want)
	}
	if il := cfg.Scene.ImageLight; il == nil || il.Path != "sky.webp" || il.Intensity != 0.5 {
		t.Errorf("image light = %+v", il)
	}
	if len(cfg.Scene.Points) != 1 || cfg.Scene.Points[0].Orbit.Speed != -0.5 {
		t.Errorf("points = %+v", cfg.Scene.Points)
	}
	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Encoding != "shift_jis" {
		t.Errorf("assets = %+v", cfg.Assets)
	}
	if cfg.Logging != (LoggingConfig{Level: "debug", LogFile: "derky.log"}) {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestReadFileErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.yaml") }},
		{"bad type", func(t *testing.T) string { return writeYAML(t, "graphics:\n  width: wide\n") }},
		{"unknown key", func(t *testing.T) string { return writeYAML(t, "graphics:\n  msaa: 4\n") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Default().ReadFile(tt.path(t)); err == nil {
				t.Error("ReadFile succeeded")
			}
		})
	}
}

func TestReadFileEmpty(t *testing.T) {
	cfg := Default()
	if err := cfg.ReadFile(writeYAML(t, "")); err != nil {
		t.Fatalf("ReadFile(empty) = %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("width = %d, want default", cfg.Graphics.Width)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Scene.ImageLight = &ImageLightConfig{Path: "sky.png", Intensity: 1}
	if err := cfg.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got := Default()
	got.Scene.Models = nil
	if err := got.ReadFile(path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Graphics.Width != 800 || got.Scene.ImageLight == nil || len(got.Scene.Models) != 2 {
		t.Errorf("round trip lost settings: %+v", got.Graphics)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"default", func(*Config) {}, nil},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }, ErrInvalidSize},
		{"far before near", func(c *Config) { c.Graphics.Far = 0.01 }, ErrInvalidDepth},
		{"no models", func(c *Config) { c.Scene.Models = nil }, ErrNoModels},
		{"empty model path", func(c *Config) { c.Scene.Models[1].Path = "" }, ErrEmptyPath},
		{"empty image light", func(c *Config) { c.Scene.ImageLight = &ImageLightConfig{} }, ErrEmptyPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (tt.want == nil) != (err == nil) || (tt.want != nil && !errors.Is(err, tt.want)) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDir(t *testing.T) {
	if dir := Dir(); !filepath.IsAbs(dir) {
		t.Errorf("Dir() = %q, want absolute path", dir)
	}
}

func TestLocate(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	tmp := t.TempDir()
	os.Chdir(tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "xdg"))
	t.Setenv("HOME", tmp)

	if p, ok := locate(); ok {
		t.Fatalf("locate() = %q with no config present", p)
	}
	if err := os.WriteFile(FileName, []byte("graphics:\n  width: 800\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if p, ok := locate(); !ok || p != FileName {
		t.Errorf("locate() = %q, %v; want %q", p, ok, FileName)
	}

	withFlags(t, func() { *flagConfig = "elsewhere.yaml" })
	if p, ok := locate(); !ok || p != "elsewhere.yaml" {
		t.Errorf("explicit locate() = %q, %v", p, ok)
	}
	if got := SearchPaths(); len(got) != 1 {
		t.Errorf("SearchPaths() = %v, want only the explicit path", got)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name  string
		set   func()
		check func(t *testing.T, c *Config)
	}{
		{"debug", func() { *flagDebug = true }, func(t *testing.T, c *Config) {
			if c.Logging.Level != "debug" {
				t.Errorf("level = %q", c.Logging.Level)
			}
		}},
		{"log file", func() { *flagLogFile = "run.log" }, func(t *testing.T, c *Config) {
			if c.Logging.LogFile != "run.log" {
				t.Errorf("log file = %q", c.Logging.LogFile)
			}
		}},
		{"fullscreen", func() { *flagFullscreen = true }, func(t *testing.T, c *Config) {
			if !c.Graphics.Fullscreen {
				t.Error("not fullscreen")
			}
		}},
		{"windowed wins", func() { *flagFullscreen, *flagWindowed = true, true }, func(t *testing.T, c *Config) {
			if c.Graphics.Fullscreen {
				t.Error("fullscreen despite -windowed")
			}
		}},
		{"size", func() { *flagSize = "2560X1440" }, func(t *testing.T, c *Config) {
			if c.Graphics.Width != 2560 || c.Graphics.Height != 1440 {
				t.Errorf("size = %dx%d", c.Graphics.Width, c.Graphics.Height)
			}
		}},
		{"bad size", func() { *flagSize = "0x10" }, func(t *testing.T, c *Config) {
			if c.Graphics.Width != 1280 || c.Graphics.Height != 720 {
				t.Errorf("size = %dx%d, want defaults", c.Graphics.Width, c.Graphics.Height)
			}
		}},
		{"models", func() { flagModels = pathList{"a.obj", "b/c.obj"} }, func(t *testing.T, c *Config) {
			if len(c.Scene.Models) != 2 || c.Scene.Models[1] != (ModelConfig{Path: "b/c.obj", Scale: 1}) {
				t.Errorf("models = %+v", c.Scene.Models)
			}
			if !c.Scene.Camera.Fit {
				t.Error("camera not set to fit")
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFlags(t, tt.set)
			cfg := Default()
			applyFlags(cfg)
			tt.check(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeYAML(t, "graphics:\n  width: 1600\n  height: 900\n")
	withFlags(t, func() {
		*flagConfig = path
		*flagSize = "1920x1200"
		*flagDebug = true
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1200 {
		t.Errorf("size = %dx%d, want flag value", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	withFlags(t, func() { *flagConfig = filepath.Join(t.TempDir(), "gone.yaml") })
	if _, err := Load(); err == nil {
		t.Error("Load succeeded with a missing -config file")
	}
}

func TestWritePath(t *testing.T) {
	withFlags(t, func() { *flagWriteConfig = "out.yaml" })
	if got := WritePath(); got != "out.yaml" {
		t.Errorf("WritePath() = %q", got)
	}
}
