package renderer

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/font"
	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/mesh"
)

type OverlayState int

const (
	OverlayIdle OverlayState = iota
	OverlayAccumulating
	OverlayFlushing
)

func (s OverlayState) String() string {
	switch s {
	case OverlayIdle:
		return "idle"
	case OverlayAccumulating:
		return "accumulating"
	case OverlayFlushing:
		return "flushing"
	}
	return "unknown"
}

// DebugString is one queued line of overlay text. Pos is in NDC.
type DebugString struct {
	Pos    mgl32.Vec2
	Text   string
	Size   float32
	Colour mgl32.Vec4
}

// Overlay collects debug strings during a frame and draws all of them with
// a single draw call when flushed.
type Overlay struct {
	dev    gpu.Device
	log    *log.Logger
	font   *font.Font
	shader Shader

	textMesh *mesh.Mesh
	verts    font.Vertices
	strings  []DebugString
	state    OverlayState

	width, height int
}

// NewOverlay draws text from fnt with the given debug shader.
func NewOverlay(dev gpu.Device, logger *log.Logger, fnt *font.Font, sh Shader) *Overlay {
	if logger == nil {
		logger = log.Default()
	}
	return &Overlay{
		dev:      dev,
		log:      logger,
		font:     fnt,
		shader:   sh,
		textMesh: mesh.New(),
		width:    1,
		height:   1,
	}
}

// SetViewport sets the pixel size used to convert screen positions to NDC.
func (o *Overlay) SetViewport(width, height int) {
	o.width, o.height = max(width, 1), max(height, 1)
}

func (o *Overlay) State() OverlayState { return o.state }

// Pending returns a copy of the strings queued since the last flush.
func (o *Overlay) Pending() []DebugString {
	return append([]DebugString(nil), o.strings...)
}

// DrawString queues white text at size 1 with its bottom-left corner at the
// given pixel position. Pixel (0,0) is the bottom-left of the viewport.
func (o *Overlay) DrawString(text string, pos mgl32.Vec2) {
	o.DrawStringSized(text, pos, 1, mgl32.Vec4{1, 1, 1, 1})
}

// DrawStringSized is DrawString with a scale factor and colour.
func (o *Overlay) DrawStringSized(text string, pos mgl32.Vec2, size float32, colour mgl32.Vec4) {
	o.strings = append(o.strings, DebugString{
		Pos:    o.ToNDC(pos),
		Text:   text,
		Size:   size,
		Colour: colour,
	})
	o.state = OverlayAccumulating
}

// ToNDC maps a pixel position to normalised device coordinates.
func (o *Overlay) ToNDC(pos mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{
		pos.X()/float32(o.width)*2 - 1,
		pos.Y()/float32(o.height)*2 - 1,
	}
}

// Flush builds glyph quads for every queued string, uploads them into the
// shared text mesh and draws them once. The queue is empty afterwards
// whether or not anything was drawn. It reports whether a draw was issued.
func (o *Overlay) Flush(b *BindState) bool {
	if len(o.strings) == 0 {
		return false
	}
	o.state = OverlayFlushing
	defer func() {
		o.strings = o.strings[:0]
		o.state = OverlayIdle
	}()

	o.verts.Reset()
	for _, s := range o.strings {
		scale := mgl32.Vec2{2 * s.Size / float32(o.width), 2 * s.Size / float32(o.height)}
		o.font.BuildVerticesForString(s.Text, s.Pos, scale, s.Colour, &o.verts)
	}
	if o.verts.Len() == 0 {
		return false
	}

	if err := o.font.Upload(o.dev); err != nil {
		o.log.Printf("DebugTextOverlay: %v", err)
		return false
	}

	b.BindShader(o.shader)
	o.dev.Enable(gpu.CapBlend)
	o.dev.BlendFunc(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha)

	o.textMesh.SetVertexPositions(o.verts.Positions)
	o.textMesh.SetVertexTextureCoords(o.verts.TexCoords)
	o.textMesh.SetVertexColours(o.verts.Colours)
	o.textMesh.UploadToGPU(o.dev)

	b.BindMesh(o.textMesh)
	b.BindTextureToShader(o.font.Texture(), "mainTex", 0)
	drew := b.DrawBoundMesh(-1, 1)

	o.dev.Disable(gpu.CapBlend)
	return drew
}

func (o *Overlay) Destroy() {
	o.textMesh.Destroy(o.dev)
	o.strings = nil
	o.state = OverlayIdle
}
