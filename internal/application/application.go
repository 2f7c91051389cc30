// Package application drives the deferred pipeline: a geometry pass into
// the G-Buffer, additive lighting passes and a composition pass whose
// bright-pixel count feeds back into exposure.
package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/engine/environment"
	"github.com/Faultbox/derky/internal/engine/gfx"
	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/internal/logger"
	"github.com/Faultbox/derky/pkg/formats"
)

// ErrClosed is returned when loading into a closed Application.
var ErrClosed = errors.New("application closed")

// Config holds pipeline settings.
type Config struct {
	Width, Height int
	FOV           float32 // degrees
	Near, Far     float32

	// BrightThreshold is the tone-mapped luminance above which a pixel is
	// counted for exposure.
	BrightThreshold float32
	MaxTextureSize  int

	// Mesh carries the backend conventions. GL stores texture rows top
	// first, so OBJ texture coordinates need FlipV.
	Mesh model.BuildOptions
}

// Assets supplies model and texture files.
type Assets interface {
	Load(name string) ([]byte, error)
	ParseOBJ(name string) (*formats.OBJ, error)
	ParseOBJs(names []string) ([]*formats.OBJ, error)
}

// Mesh is a vertex group uploaded to the GPU.
type Mesh struct {
	Vertices gfx.Buffer
	Indices  gfx.Buffer
	Count    int
	Bounds   model.Bounds
}

// Material is a material uploaded to the GPU.
type Material struct {
	Name    string
	Texture gfx.Texture
	Albedo  mgl32.Vec4
}

// SceneModel is a model with GPU meshes and materials.
type SceneModel = model.Model[Mesh, Material]

type placedModel struct {
	model     *SceneModel
	transform mgl32.Mat4
}

// Application owns the GPU resources of the pipeline and the registered
// models. It is driven from the thread that owns ctx.
type Application struct {
	ctx    gfx.Context
	env    *environment.Environment
	cfg    Config
	assets Assets
	res    resources
	models []placedModel
	closed bool

	imageLight gfx.Texture

	counter [4]byte
	log     *zap.Logger
}

// New creates every pipeline resource. Any failure releases what was
// created and is returned.
func New(ctx gfx.Context, env *environment.Environment, assets Assets, cfg Config) (*Application, error) {
	app := &Application{
		ctx:    ctx,
		env:    env,
		cfg:    cfg,
		assets: assets,
		log:    logger.Named("render"),
	}

	if err := app.res.create(ctx, cfg.Width, cfg.Height); err != nil {
		app.res.release(ctx)
		return nil, fmt.Errorf("creating pipeline resources: %w", err)
	}

	app.log.Info("pipeline ready",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)
	return app, nil
}

// Environment returns the scene state the passes read.
func (a *Application) Environment() *environment.Environment {
	return a.env
}

// Models returns the number of registered models.
func (a *Application) Models() int {
	return len(a.models)
}

// Bounds returns the world-space bounds of every registered model.
func (a *Application) Bounds() (model.Bounds, bool) {
	var (
		out   model.Bounds
		found bool
	)
	for _, pm := range a.models {
		for _, mesh := range pm.model.VertexGroups {
			b := transformBounds(mesh.Bounds, pm.transform)
			if !found {
				out, found = b, true
				continue
			}
			out = out.Merge(b)
		}
	}
	return out, found
}

// Tick advances the environment and its scripted lights.
func (a *Application) Tick(delta time.Duration) {
	a.env.Tick(delta)
}

// Frame renders one complete frame and presents it.
func (a *Application) Frame(delta time.Duration) {
	a.Tick(delta)
	a.DrawGeometry()
	a.DrawLighting()
	a.DrawComposition()
	a.ctx.Present()

	a.log.Debug("frame",
		zap.Duration("delta", delta),
		zap.Float32("luminance", a.env.LatestLuminance()),
	)
}

// Resize recreates the screen-sized targets and updates the projection.
func (a *Application) Resize(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	if width == a.cfg.Width && height == a.cfg.Height {
		return nil
	}

	a.res.releaseTargets(a.ctx)
	if err := a.res.createTargets(a.ctx, width, height); err != nil {
		return fmt.Errorf("resizing targets: %w", err)
	}
	a.cfg.Width, a.cfg.Height = width, height
	a.env.Resize(width, height, a.cfg.FOV, a.cfg.Near, a.cfg.Far)

	a.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Close releases every model and pipeline resource.
func (a *Application) Close() {
	if a.closed {
		return
	}
	a.closed = true

	for _, pm := range a.models {
		releaseModel(a.ctx, pm.model)
	}
	a.models = nil
	if a.imageLight != 0 {
		a.ctx.Release(a.imageLight)
		a.env.Image = nil
		a.imageLight = 0
	}
	a.res.release(a.ctx)
	a.log.Info("pipeline closed")
}

func transformBounds(b model.Bounds, m mgl32.Mat4) model.Bounds {
	out := model.Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			corner[0] = b.Max[0]
		}
		if i&2 != 0 {
			corner[1] = b.Max[1]
		}
		if i&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		for k := 0; k < 3; k++ {
			out.Min[k] = min(out.Min[k], p[k])
			out.Max[k] = max(out.Max[k], p[k])
		}
	}
	return out
}
