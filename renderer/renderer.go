// Package renderer draws meshes through a single bind state, overlays debug
// text and drives per-frame clearing, presenting and capture.
package renderer

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/font"
	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/graphics"
	"github.com/richinsley/oglrender/shader"
)

// FrameSink receives each finished frame as bottom-up RGBA bytes.
// *capture.Recorder satisfies it.
type FrameSink interface {
	Submit(pixels []byte) error
}

type Renderer struct {
	*BindState

	context     graphics.Context
	dev         gpu.Device
	log         *log.Logger
	font        *font.Font
	debugShader *shader.Shader
	overlay     *Overlay
	sink        FrameSink

	width       int
	height      int
	depth       bool
	clearColour mgl32.Vec4
}

// NewRenderer sets up the debug text path on an already current context.
// fnt may be nil, in which case the built-in bitmap font is used.
func NewRenderer(ctx graphics.Context, dev gpu.Device, logger *log.Logger, fnt *font.Font) (*Renderer, error) {
	if logger == nil {
		logger = log.Default()
	}
	if fnt == nil {
		fnt = font.Basic()
	}
	debugShader, err := shader.NewDebug(dev)
	if err != nil {
		return nil, fmt.Errorf("failed to create debug text shader: %w", err)
	}
	if err := fnt.Upload(dev); err != nil {
		debugShader.Destroy()
		return nil, err
	}

	r := &Renderer{
		BindState:   NewBindState(dev, logger),
		context:     ctx,
		dev:         dev,
		log:         logger,
		font:        fnt,
		debugShader: debugShader,
		clearColour: mgl32.Vec4{0.2, 0.2, 0.2, 1},
	}
	r.overlay = NewOverlay(dev, logger, fnt, debugShader)

	dev.Enable(gpu.CapFramebufferSRGB)
	dev.ClearColor(r.clearColour[0], r.clearColour[1], r.clearColour[2], r.clearColour[3])

	w, h := ctx.GetFramebufferSize()
	r.OnWindowResize(w, h)
	return r, nil
}

func (r *Renderer) Context() graphics.Context { return r.context }
func (r *Renderer) Device() gpu.Device         { return r.dev }
func (r *Renderer) Overlay() *Overlay          { return r.overlay }
func (r *Renderer) Width() int                 { return r.width }
func (r *Renderer) Height() int                { return r.height }

// SetFrameSink attaches a consumer for finished frames. nil detaches.
func (r *Renderer) SetFrameSink(s FrameSink) { r.sink = s }

func (r *Renderer) SetClearColour(c mgl32.Vec4) {
	r.clearColour = c
	r.dev.ClearColor(c[0], c[1], c[2], c[3])
}

// EnableDepthBuffer toggles depth testing for scene geometry.
func (r *Renderer) EnableDepthBuffer(on bool) {
	r.depth = on
	if on {
		r.dev.Enable(gpu.CapDepthTest)
	} else {
		r.dev.Disable(gpu.CapDepthTest)
	}
}

// OnWindowResize records the new framebuffer size and resets the viewport.
func (r *Renderer) OnWindowResize(width, height int) {
	r.width, r.height = width, height
	r.dev.Viewport(0, 0, int32(width), int32(height))
	r.overlay.SetViewport(width, height)
}

// DrawString queues debug text at a pixel position, bottom-left origin.
func (r *Renderer) DrawString(text string, pos mgl32.Vec2) {
	r.overlay.DrawString(text, pos)
}

func (r *Renderer) DrawStringSized(text string, pos mgl32.Vec2, size float32, colour mgl32.Vec4) {
	r.overlay.DrawStringSized(text, pos, size, colour)
}

// BeginFrame clears the framebuffer and drops any bindings left over from
// the previous frame.
func (r *Renderer) BeginFrame() {
	r.dev.Clear(gpu.ClearColour | gpu.ClearDepth | gpu.ClearStencil)
	r.UnbindAll()
}

// EndFrame draws the queued debug text, hands the frame to the sink if one
// is attached and presents.
func (r *Renderer) EndFrame() {
	if r.depth {
		r.dev.Disable(gpu.CapDepthTest)
	}
	r.overlay.Flush(r.BindState)
	if r.depth {
		r.dev.Enable(gpu.CapDepthTest)
	}
	r.UnbindAll()

	if r.sink != nil && r.width > 0 && r.height > 0 {
		pixels := make([]byte, r.width*r.height*4)
		r.dev.ReadPixels(0, 0, int32(r.width), int32(r.height), pixels)
		if err := r.sink.Submit(pixels); err != nil {
			r.log.Printf("EndFrame: frame capture failed, detaching: %v", err)
			r.sink = nil
		}
	}

	r.context.EndFrame()
}

// Shutdown releases the renderer's GPU objects and then the context.
func (r *Renderer) Shutdown() {
	r.overlay.Destroy()
	r.debugShader.Destroy()
	r.font.Destroy(r.dev)
	r.context.Shutdown()
}
