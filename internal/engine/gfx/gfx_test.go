package gfx

import "testing"

func TestHandleID(t *testing.T) {
	tests := []struct {
		name string
		h    Handle
		want uint32
	}{
		{"buffer", Buffer(1), 1},
		{"texture", Texture(2), 2},
		{"render target", RenderTarget(3), 3},
		{"depth stencil", DepthStencil(4), 4},
		{"shader", Shader(5), 5},
		{"blend state", BlendState(6), 6},
		{"sampler", Sampler(^uint32(0)), ^uint32(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.h.ID(); got != tt.want {
				t.Errorf("ID() = %d, want %d", got, tt.want)
			}
		})
	}
}
