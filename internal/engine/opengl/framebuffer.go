package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/Faultbox/derky/internal/engine/gfx"
)

// MaxRenderTargets is the number of color attachments a pass may bind.
const MaxRenderTargets = 8

// framebufferKey identifies one combination of attachments. The zero key
// is the default framebuffer.
type framebufferKey struct {
	colors [MaxRenderTargets]gfx.RenderTarget
	depth  gfx.DepthStencil
}

func makeFramebufferKey(targets []gfx.RenderTarget, depth gfx.DepthStencil) framebufferKey {
	var key framebufferKey
	copy(key.colors[:], targets)
	key.depth = depth
	return key
}

// uses reports whether the key references rt or ds.
func (k framebufferKey) uses(rt gfx.RenderTarget, ds gfx.DepthStencil) bool {
	if ds != 0 && k.depth == ds {
		return true
	}
	if rt == 0 {
		return false
	}
	for _, c := range k.colors {
		if c == rt {
			return true
		}
	}
	return false
}

// framebuffer returns a cached FBO for key, creating it on first use.
func (c *Context) framebuffer(key framebufferKey) (uint32, error) {
	if fbo, ok := c.fbos[key]; ok {
		return fbo, nil
	}

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	var drawBuffers []uint32
	for i, rt := range key.colors {
		if rt == 0 {
			continue
		}
		target, ok := c.targets.get(uint32(rt))
		if !ok {
			c.deleteFramebuffer(fbo)
			return 0, fmt.Errorf("unknown render target %d", rt)
		}
		tex, _ := c.textures.get(uint32(target))
		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex.id, 0)
		drawBuffers = append(drawBuffers, attachment)
	}

	if key.depth != 0 {
		ds, ok := c.depths.get(uint32(key.depth))
		if !ok {
			c.deleteFramebuffer(fbo)
			return 0, fmt.Errorf("unknown depth stencil %d", key.depth)
		}
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, ds.rbo)
	}

	if len(drawBuffers) == 0 {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	} else {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		c.deleteFramebuffer(fbo)
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	c.fbos[key] = fbo
	return fbo, nil
}

func (c *Context) deleteFramebuffer(fbo uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.DeleteFramebuffers(1, &fbo)
}

// dropFramebuffers deletes every cached FBO that references rt or ds.
func (c *Context) dropFramebuffers(rt gfx.RenderTarget, ds gfx.DepthStencil) {
	for key, fbo := range c.fbos {
		if key.uses(rt, ds) {
			c.deleteFramebuffer(fbo)
			delete(c.fbos, key)
		}
	}
	c.bound = framebufferKey{}
}

// bindFramebuffer binds key and sets the viewport to its attachment size.
func (c *Context) bindFramebuffer(key framebufferKey) error {
	if key == (framebufferKey{}) {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(0, 0, c.width, c.height)
		c.bound = key
		return nil
	}

	fbo, err := c.framebuffer(key)
	if err != nil {
		return err
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	w, h := c.attachmentSize(key)
	gl.Viewport(0, 0, w, h)
	c.bound = key
	return nil
}

func (c *Context) attachmentSize(key framebufferKey) (int32, int32) {
	for _, rt := range key.colors {
		if target, ok := c.targets.get(uint32(rt)); ok {
			tex, _ := c.textures.get(uint32(target))
			return int32(tex.desc.Width), int32(tex.desc.Height)
		}
	}
	if ds, ok := c.depths.get(uint32(key.depth)); ok {
		return ds.width, ds.height
	}
	return c.width, c.height
}
