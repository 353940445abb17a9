package glfwcontext

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/oglrender/graphics"
)

// Provider brings up windows and contexts through GLFW. InitGraphics must
// have been called on the main thread first.
type Provider struct{}

func NewProvider() *Provider { return &Provider{} }

type surface struct {
	cfg     graphics.SurfaceConfig
	format  graphics.SurfaceFormat
	monitor *glfw.Monitor
}

func (s *surface) Size() (int, int) { return s.cfg.Width, s.cfg.Height }

func (p *Provider) AcquireSurface(cfg graphics.SurfaceConfig) (graphics.Surface, error) {
	s := &surface{cfg: cfg}
	if cfg.Fullscreen {
		s.monitor = glfw.GetPrimaryMonitor()
		if s.monitor == nil {
			return nil, errors.New("no monitor available for fullscreen")
		}
		mode := s.monitor.GetVideoMode()
		s.cfg.Width, s.cfg.Height = mode.Width, mode.Height
	}
	if s.cfg.Width <= 0 || s.cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", s.cfg.Width, s.cfg.Height)
	}
	return s, nil
}

// NegotiateFormat records the pixel format; GLFW applies it as window hints
// when each context is created.
func (p *Provider) NegotiateFormat(gs graphics.Surface, f graphics.SurfaceFormat) error {
	s, ok := gs.(*surface)
	if !ok {
		return fmt.Errorf("surface %T was not created by this provider", gs)
	}
	if f.ColorBits != 24 && f.ColorBits != 32 {
		return fmt.Errorf("unsupported colour depth %d", f.ColorBits)
	}
	s.format = f
	return nil
}

func applyFormat(f graphics.SurfaceFormat) {
	glfw.WindowHint(glfw.RedBits, 8)
	glfw.WindowHint(glfw.GreenBits, 8)
	glfw.WindowHint(glfw.BlueBits, 8)
	if f.ColorBits == 32 {
		glfw.WindowHint(glfw.AlphaBits, 8)
	} else {
		glfw.WindowHint(glfw.AlphaBits, 0)
	}
	glfw.WindowHint(glfw.DepthBits, f.DepthBits)
	glfw.WindowHint(glfw.StencilBits, f.StencilBits)
	glfw.WindowHint(glfw.DoubleBuffer, glfwBool(f.DoubleBuffered))
	glfw.WindowHint(glfw.SRGBCapable, glfw.True)
}

type probe struct {
	window *glfw.Window
}

// CreateProbeContext opens a hidden window with no version hints so the
// driver hands back the newest context it supports.
func (p *Provider) CreateProbeContext(gs graphics.Surface) (graphics.ProbeContext, error) {
	s, ok := gs.(*surface)
	if !ok {
		return nil, fmt.Errorf("surface %T was not created by this provider", gs)
	}
	glfw.DefaultWindowHints()
	applyFormat(s.format)
	glfw.WindowHint(glfw.Visible, glfw.False)
	if runtime.GOOS == "darwin" {
		// macOS only returns a legacy 2.1 context unless core is asked for
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 2)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}

	win, err := glfw.CreateWindow(1, 1, "probe", nil, nil)
	if err != nil {
		return nil, err
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to load OpenGL entry points: %w", err)
	}
	return &probe{window: win}, nil
}

func (pc *probe) DriverVersion() (string, error) {
	v := gl.GoStr(gl.GetString(gl.VERSION))
	if v == "" {
		return "", errors.New("driver returned no GL_VERSION")
	}
	log.Printf("Driver reports OpenGL %s (%s)", v, gl.GoStr(gl.GetString(gl.RENDERER)))
	return v, nil
}

func (pc *probe) Destroy() {
	if pc.window != nil {
		pc.window.Destroy()
		pc.window = nil
	}
}

// CreateContext opens the visible window with a versioned core context.
func (p *Provider) CreateContext(gs graphics.Surface, req graphics.ContextRequest) (graphics.Context, error) {
	s, ok := gs.(*surface)
	if !ok {
		return nil, fmt.Errorf("surface %T was not created by this provider", gs)
	}
	glfw.DefaultWindowHints()
	applyFormat(s.format)
	glfw.WindowHint(glfw.ContextVersionMajor, req.Version.Major)
	glfw.WindowHint(glfw.ContextVersionMinor, req.Version.Minor)
	if req.CoreProfile {
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	}
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfwBool(req.ForwardCompatible))
	glfw.WindowHint(glfw.OpenGLDebugContext, glfwBool(req.Debug))
	glfw.WindowHint(glfw.Resizable, glfwBool(s.cfg.Resizable))

	win, err := glfw.CreateWindow(s.cfg.Width, s.cfg.Height, s.cfg.Title, s.monitor, nil)
	if err != nil {
		return nil, err
	}
	return newContext(win, s.cfg.Title), nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// InitGraphics initializes GLFW. Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down GLFW. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}

var _ graphics.Provider = (*Provider)(nil)
