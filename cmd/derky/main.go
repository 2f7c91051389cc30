// Package main is the entry point for the derky viewer.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/application"
	"github.com/Faultbox/derky/internal/assets"
	"github.com/Faultbox/derky/internal/config"
	"github.com/Faultbox/derky/internal/engine/camera"
	"github.com/Faultbox/derky/internal/engine/environment"
	"github.com/Faultbox/derky/internal/engine/input"
	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/internal/engine/opengl"
	"github.com/Faultbox/derky/internal/engine/window"
	"github.com/Faultbox/derky/internal/logger"
	"github.com/Faultbox/derky/internal/loop"
	"github.com/Faultbox/derky/pkg/encoding"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if path := config.WritePath(); path != "" {
		if err := cfg.WriteFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== derky ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      "derky",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	width, height := win.DrawableSize()
	ctx, err := opengl.New(win.SwapBuffers, width, height)
	if err != nil {
		return fmt.Errorf("creating GL context: %w", err)
	}
	defer ctx.Close()

	store, err := newAssets(cfg.Assets)
	if err != nil {
		return err
	}
	defer store.Close()

	sc := cfg.Scene
	cam := newCamera(sc.Camera)
	g := cfg.Graphics
	view := environment.NewView(cam.Position(), cam.Center, g.FOV, g.Near, g.Far, width, height)
	env := application.NewEnvironment(sc, view)

	app, err := application.New(ctx, env, store, application.Config{
		Width:           width,
		Height:          height,
		FOV:             g.FOV,
		Near:            g.Near,
		Far:             g.Far,
		BrightThreshold: sc.BrightThreshold,
		MaxTextureSize:  g.MaxTextureSize,
		Mesh:            model.BuildOptions{FlipV: true},
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.LoadModels(application.Placements(sc.Models)); err != nil {
		return err
	}
	if il := sc.ImageLight; il != nil {
		if err := app.LoadImageLight(il.Path, il.Intensity); err != nil {
			return err
		}
	}
	if b, ok := app.Bounds(); ok && sc.Camera.Fit {
		cam.FitToBounds(b)
	}
	win.SetTitle(fmt.Sprintf("derky - %d models", app.Models()))

	in := input.New()
	l := loop.New(app, in, time.Now())
	l.Luminance = env.LatestLuminance
	l.Update = func(time.Duration) error {
		if w, h, ok := in.Resized(); ok {
			ww, wh := win.DrawableSize()
			logger.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
			ctx.Resize(ww, wh)
			if err := app.Resize(ww, wh); err != nil {
				return err
			}
		}
		cam.HandleDrag(in.Drag())
		cam.HandleZoom(in.Wheel())
		in.Flush()
		env.SetCamera(cam.Position(), cam.ViewMatrix())
		return nil
	}
	return l.Run()
}

func newAssets(cfg config.AssetsConfig) (*assets.Manager, error) {
	enc, err := encoding.Lookup(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("asset encoding: %w", err)
	}
	store := assets.NewManager(assets.Options{Encoding: enc, Workers: cfg.Workers})
	for _, root := range cfg.Roots {
		if err := store.AddRoot(root); err != nil {
			store.Close()
			return nil, fmt.Errorf("adding asset root: %w", err)
		}
	}
	return store, nil
}

func newCamera(cc config.CameraConfig) *camera.OrbitCamera {
	cam := camera.NewOrbitCamera()
	cam.Center = mgl32.Vec3(cc.Target)
	if cc.Distance > 0 {
		cam.Distance = cc.Distance
	}
	cam.Pitch = mgl32.DegToRad(cc.Pitch)
	cam.Yaw = mgl32.DegToRad(cc.Yaw)
	return cam
}
