package application

import (
	"encoding/binary"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

var clearGBuffer = [4]float32{0, 0, 0, 1}

// DrawGeometry fills the G-Buffer with every registered model.
func (a *Application) DrawGeometry() {
	ctx, r := a.ctx, &a.res

	for _, rt := range r.gBuffer() {
		ctx.ClearRenderTarget(rt, clearGBuffer)
	}
	ctx.ClearDepthStencil(r.depth, 1)
	ctx.SetRenderTargets(r.gBuffer(), r.depth, nil)
	ctx.SetBlendState(r.blends[blendAlpha])
	ctx.SetRasterState(gfx.RasterState{DepthTest: true, DepthWrite: true, Cull: gfx.CullBack})

	ctx.SetShader(r.programs[programGeometry])
	ctx.UpdateBuffer(r.viewBuffer, a.env.ViewBlock())
	ctx.SetConstantBuffer(gfx.StageVertex, slotView, r.viewBuffer)
	ctx.SetConstantBuffer(gfx.StageVertex, slotModel, r.modelBuffer)
	ctx.SetConstantBuffer(gfx.StagePixel, slotModel, r.modelBuffer)
	ctx.SetSampler(gfx.StagePixel, 0, r.sampler)

	for _, pm := range a.models {
		transform := pm.transform
		pm.model.Visit(func(mesh Mesh, mat *Material) {
			tex, albedo := r.white, mgl32.Vec4{1, 1, 1, 1}
			if mat != nil {
				tex, albedo = mat.Texture, mat.Albedo
			}
			ctx.UpdateBuffer(r.modelBuffer, gfx.NewBlock(5).
				Mat4(transform).
				Vec4(albedo[0], albedo[1], albedo[2], albedo[3]).
				Bytes())
			ctx.SetTexture(gfx.StagePixel, 0, tex)
			ctx.SetVertices(mesh.Vertices, mesh.Indices, vertexLayout)
			ctx.DrawIndexed(mesh.Count)
		})
	}
}

// DrawLighting accumulates every light into the lighting target.
func (a *Application) DrawLighting() {
	ctx, r, env := a.ctx, &a.res, a.env

	lit := r.targets[targetLighting]
	ctx.ClearRenderTarget(lit, [4]float32{})
	ctx.SetRenderTargets([]gfx.RenderTarget{lit}, 0, nil)
	ctx.SetBlendState(r.blends[blendAdditive])
	ctx.SetRasterState(gfx.RasterState{})
	ctx.SetVertices(r.quadVertices, r.quadIndices, vertexLayout)

	for i := 0; i < gBufferTargets; i++ {
		ctx.SetTexture(gfx.StagePixel, i, r.textures[i])
		ctx.SetSampler(gfx.StagePixel, i, r.sampler)
	}
	ctx.UpdateBuffer(r.viewBuffer, env.ViewBlock())
	ctx.SetConstantBuffer(gfx.StagePixel, slotView, r.viewBuffer)
	ctx.SetConstantBuffer(gfx.StagePixel, slotLight, r.lightBuffer)

	a.drawLight(programAmbient, env.Ambient.Block())

	if env.Image != nil {
		ctx.SetTexture(gfx.StagePixel, slotEnvironmentMap, env.Image.Texture)
		ctx.SetSampler(gfx.StagePixel, slotEnvironmentMap, r.sampler)
		a.drawLight(programImage, env.Image.Block())
	}
	for _, l := range env.Directional {
		a.drawLight(programDirectional, l.Block())
	}
	for _, l := range env.Points {
		a.drawLight(programPoint, l.Block())
	}
}

func (a *Application) drawLight(p program, block []byte) {
	a.ctx.SetShader(a.res.programs[p])
	a.ctx.UpdateBuffer(a.res.lightBuffer, block)
	a.ctx.DrawIndexed(a.res.quadCount)
}

// DrawComposition tone-maps albedo times lighting onto the back buffer and
// feeds the bright-pixel count back into the environment.
func (a *Application) DrawComposition() {
	ctx, r := a.ctx, &a.res

	ctx.ClearRenderTarget(ctx.BackBuffer(), [4]float32{0, 0, 0, 1})
	ctx.ClearDepthStencil(ctx.BackDepth(), 1)
	ctx.UpdateBuffer(r.luminance, gfx.Uint32Bytes(0))
	ctx.SetRenderTargets([]gfx.RenderTarget{ctx.BackBuffer()}, ctx.BackDepth(), []gfx.Buffer{r.luminance})
	ctx.SetBlendState(r.blends[blendAlpha])
	ctx.SetRasterState(gfx.RasterState{})

	ctx.SetShader(r.programs[programComposition])
	ctx.SetTexture(gfx.StagePixel, 0, r.textures[targetAlbedo])
	ctx.SetTexture(gfx.StagePixel, slotLightingInput, r.textures[targetLighting])
	ctx.SetSampler(gfx.StagePixel, 0, r.sampler)
	ctx.SetSampler(gfx.StagePixel, slotLightingInput, r.sampler)

	exposure := Exposure(a.env.AverageLuminance(), a.cfg.Width*a.cfg.Height)
	ctx.UpdateBuffer(r.compositionBuffer, gfx.NewBlock(1).
		Vec4(exposure, a.cfg.BrightThreshold, 0, 0).
		Bytes())
	ctx.SetConstantBuffer(gfx.StagePixel, slotComposition, r.compositionBuffer)

	ctx.SetVertices(r.quadVertices, r.quadIndices, vertexLayout)
	ctx.DrawIndexed(r.quadCount)

	ctx.ReadBuffer(r.luminance, a.counter[:])
	a.env.UpdateLuminance(float32(binary.LittleEndian.Uint32(a.counter[:])))
}
