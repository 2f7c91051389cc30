package application

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/engine/gfx"
	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/internal/engine/texture"
	"github.com/Faultbox/derky/pkg/encoding"
	"github.com/Faultbox/derky/pkg/formats"
)

var errEmptyGroup = errors.New("vertex group has no triangles")

// Placement positions a model in the world.
type Placement struct {
	Path      string
	Transform mgl32.Mat4
}

// AddModel registers m for drawing. Models are drawn in registration order.
func (a *Application) AddModel(m *SceneModel, transform mgl32.Mat4) {
	a.models = append(a.models, placedModel{model: m, transform: transform})
}

// LoadModel parses, uploads and registers one OBJ file.
func (a *Application) LoadModel(name string, transform mgl32.Mat4) (*SceneModel, error) {
	if a.closed {
		return nil, ErrClosed
	}
	obj, err := a.assets.ParseOBJ(name)
	if err != nil {
		return nil, err
	}
	return a.addOBJ(name, obj, transform)
}

// LoadModels parses every file in parallel, then uploads and registers
// them in order. Nothing is registered if any file fails.
func (a *Application) LoadModels(placements []Placement) error {
	if a.closed {
		return ErrClosed
	}
	names := make([]string, len(placements))
	for i, p := range placements {
		names[i] = p.Path
	}
	objs, err := a.assets.ParseOBJs(names)
	if err != nil {
		return err
	}

	built := make([]*SceneModel, 0, len(objs))
	for i, obj := range objs {
		m, err := a.buildOBJ(names[i], obj)
		if err != nil {
			for _, prev := range built {
				releaseModel(a.ctx, prev)
			}
			return err
		}
		built = append(built, m)
	}
	for i, m := range built {
		a.AddModel(m, placements[i].Transform)
	}
	return nil
}

func (a *Application) addOBJ(name string, obj *formats.OBJ, transform mgl32.Mat4) (*SceneModel, error) {
	m, err := a.buildOBJ(name, obj)
	if err != nil {
		return nil, err
	}
	a.AddModel(m, transform)
	return m, nil
}

// buildOBJ uploads obj. On failure every buffer and texture created so far
// is released.
func (a *Application) buildOBJ(name string, obj *formats.OBJ) (*SceneModel, error) {
	up := &uploader{
		ctx:     a.ctx,
		assets:  a.assets,
		dir:     path.Dir(encoding.NormalizePath(name)),
		opts:    a.cfg.Mesh,
		maxSize: a.cfg.MaxTextureSize,
	}

	m, err := model.Build[Mesh, Material](obj, up.meshMapper(), up.materialMapper())
	if err != nil {
		up.rollback()
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	a.log.Info("model loaded",
		zap.String("path", name),
		zap.Int("objects", len(obj.Objects)),
		zap.Int("groups", obj.GroupCount()),
		zap.Int("materials", len(m.Materials)),
		zap.Int("vertex_groups", m.Len()),
		zap.Int("skipped_statements", len(obj.Warnings)),
	)
	return m, nil
}

// uploader creates GPU objects for one model and remembers them for
// rollback.
type uploader struct {
	ctx     gfx.Context
	assets  Assets
	dir     string
	opts    model.BuildOptions
	maxSize int
	created []gfx.Handle
}

func (u *uploader) meshMapper() model.VertexMapperFunc[Mesh] {
	return func(faces [][]formats.FaceVertex) (Mesh, error) {
		cpu := model.BuildMesh(faces, u.opts)
		if len(cpu.Indices) == 0 {
			return Mesh{}, errEmptyGroup
		}

		vb, err := u.ctx.CreateBuffer(gfx.BufferVertex, cpu.VertexBytes())
		if err != nil {
			return Mesh{}, fmt.Errorf("creating vertex buffer: %w", err)
		}
		u.created = append(u.created, vb)

		ib, err := u.ctx.CreateBuffer(gfx.BufferIndex, cpu.IndexBytes())
		if err != nil {
			return Mesh{}, fmt.Errorf("creating index buffer: %w", err)
		}
		u.created = append(u.created, ib)

		return Mesh{Vertices: vb, Indices: ib, Count: len(cpu.Indices), Bounds: cpu.Bounds}, nil
	}
}

func (u *uploader) materialMapper() model.MaterialMapperFunc[Material] {
	return func(mat formats.Material) (Material, error) {
		out := Material{Name: mat.Name, Albedo: mgl32.Vec4{1, 1, 1, 1}}

		img, err := u.materialImage(&mat)
		if err != nil {
			return Material{}, err
		}
		if out.Texture, err = uploadImage(u.ctx, img); err != nil {
			return Material{}, fmt.Errorf("uploading texture of %s: %w", mat.Name, err)
		}
		u.created = append(u.created, out.Texture)
		return out, nil
	}
}

// materialImage loads map_Kd relative to the model, or makes a 1x1 image
// of Kd (white when absent).
func (u *uploader) materialImage(mat *formats.Material) (*image.RGBA, error) {
	if name, ok := mat.DiffuseMap(); ok {
		full := path.Join(u.dir, encoding.NormalizePath(name))
		data, err := u.assets.Load(full)
		if err != nil {
			return nil, fmt.Errorf("loading map_Kd of %s: %w", mat.Name, err)
		}
		img, err := texture.Decode(full, data)
		if err != nil {
			return nil, fmt.Errorf("decoding map_Kd of %s: %w", mat.Name, err)
		}
		return texture.Fit(img, u.maxSize), nil
	}

	kd, ok := mat.DiffuseColor()
	if !ok {
		kd = mgl32.Vec3{1, 1, 1}
	}
	return texture.Solid(color.RGBA{
		R: unitToByte(kd[0]),
		G: unitToByte(kd[1]),
		B: unitToByte(kd[2]),
		A: 255,
	}), nil
}

func (u *uploader) rollback() {
	for _, h := range u.created {
		u.ctx.Release(h)
	}
	u.created = nil
}

func unitToByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// uploadImage creates an RGBA8 texture from img.
func uploadImage(ctx gfx.Context, img *image.RGBA) (gfx.Texture, error) {
	desc := gfx.TextureDesc{
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Format: gfx.FormatRGBA8,
	}
	return ctx.CreateTexture(desc, img.Pix)
}

func releaseModel(ctx gfx.Context, m *SceneModel) {
	for _, mesh := range m.VertexGroups {
		ctx.Release(mesh.Vertices)
		ctx.Release(mesh.Indices)
	}
	for _, mat := range m.Materials {
		ctx.Release(mat.Texture)
	}
}
