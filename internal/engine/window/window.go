// Package window opens the SDL2 window that hosts the OpenGL 4.3 backend.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/derky/internal/logger"
)

func init() {
	// The GL context is bound to the thread that created it.
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Context attributes. 4.3 core is the first profile with atomic counters
// and layout(binding) qualifiers.
var glAttributes = []struct {
	attr  sdl.GLattr
	value int
}{
	{sdl.GL_CONTEXT_MAJOR_VERSION, 4},
	{sdl.GL_CONTEXT_MINOR_VERSION, 3},
	{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	{sdl.GL_DOUBLEBUFFER, 1},
	{sdl.GL_DEPTH_SIZE, 24},
}

// Window owns an SDL window and its GL context.
type Window struct {
	win *sdl.Window
	ctx sdl.GLContext
	log *zap.Logger
}

// New opens a window and makes its GL context current. On error nothing is
// left initialized.
func New(cfg Config) (w *Window, err error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("window: sdl init: %w", err)
	}
	w = &Window{log: logger.Named("window")}
	defer func() {
		if err != nil {
			w.Close()
			w = nil
		}
	}()

	for _, a := range glAttributes {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			return nil, fmt.Errorf("window: gl attribute %d: %w", a.attr, err)
		}
	}

	flags := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	w.win, err = sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width), int32(cfg.Height), flags)
	if err != nil {
		return nil, fmt.Errorf("window: create: %w", err)
	}
	if w.ctx, err = w.win.GLCreateContext(); err != nil {
		return nil, fmt.Errorf("window: gl context: %w", err)
	}

	w.setSwapInterval(cfg.VSync)
	width, height := w.DrawableSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// setSwapInterval prefers adaptive vsync and falls back to plain vsync.
// Failure only costs tearing, so it is logged and ignored.
func (w *Window) setSwapInterval(vsync bool) {
	if !vsync {
		if err := sdl.GLSetSwapInterval(0); err != nil {
			w.log.Warn("cannot disable vsync", zap.Error(err))
		}
		return
	}
	if sdl.GLSetSwapInterval(-1) == nil {
		return
	}
	if err := sdl.GLSetSwapInterval(1); err != nil {
		w.log.Warn("cannot enable vsync", zap.Error(err))
	}
}

// Close releases the context and window and shuts SDL down.
func (w *Window) Close() {
	if w.ctx != nil {
		sdl.GLDeleteContext(w.ctx)
		w.ctx = nil
	}
	if w.win != nil {
		w.win.Destroy()
		w.win = nil
	}
	sdl.Quit()
}

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() {
	w.win.GLSwap()
}

// DrawableSize returns the framebuffer size in pixels. On high-DPI displays
// it is larger than the window size.
func (w *Window) DrawableSize() (int, int) {
	width, height := w.win.GLGetDrawableSize()
	return int(width), int(height)
}

func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}
