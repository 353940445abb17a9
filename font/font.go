// Package font lays strings out as textured quads from a bitmap glyph atlas.
package font

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/texture"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Vertices collects the streams produced by BuildVerticesForString.
type Vertices struct {
	Positions []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Colours   []mgl32.Vec4
}

// Len is the number of vertices collected so far.
func (v *Vertices) Len() int { return len(v.Positions) }

// Reset empties the streams but keeps their storage.
func (v *Vertices) Reset() {
	v.Positions = v.Positions[:0]
	v.TexCoords = v.TexCoords[:0]
	v.Colours = v.Colours[:0]
}

type Font struct {
	desc    *Descriptor
	atlas   *image.RGBA
	texture *texture.Texture
}

// New pairs a parsed descriptor with its page 0 image.
func New(desc *Descriptor, atlas image.Image) *Font {
	return &Font{desc: desc, atlas: texture.ToRGBA(atlas)}
}

// Load reads a BMFont descriptor. If atlasPath is empty the descriptor's
// first page is loaded from the descriptor's directory.
func Load(fntPath, atlasPath string) (*Font, error) {
	f, err := os.Open(fntPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open font %s: %w", fntPath, err)
	}
	defer f.Close()

	desc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", fntPath, err)
	}
	if atlasPath == "" {
		if len(desc.Pages) == 0 || desc.Pages[0] == "" {
			return nil, fmt.Errorf("font %s names no atlas page", fntPath)
		}
		atlasPath = filepath.Join(filepath.Dir(fntPath), desc.Pages[0])
	}
	img, err := texture.Decode(atlasPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded font %q with %d glyphs", desc.Face, len(desc.Glyphs))
	return New(desc, img), nil
}

// Basic builds a font from the 7x13 fixed face in golang.org/x/image, for
// running without font assets.
func Basic() *Font {
	face := basicfont.Face7x13
	const (
		first = 32
		last  = 126
		cols  = 16
	)
	cellW, cellH := face.Advance, face.Height
	rows := (last - first + cols) / cols

	atlas := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(atlas, atlas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: atlas, Src: image.White, Face: face}

	desc := &Descriptor{
		Face:       "basic 7x13",
		LineHeight: cellH,
		Base:       face.Ascent,
		ScaleW:     atlas.Rect.Dx(),
		ScaleH:     atlas.Rect.Dy(),
		Glyphs:     make(map[rune]Glyph),
	}
	for r := rune(first); r <= last; r++ {
		i := int(r - first)
		x, y := (i%cols)*cellW, (i/cols)*cellH
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
		g := Glyph{ID: r, X: x, Y: y, Width: cellW, Height: cellH, XAdvance: cellW}
		if r == ' ' {
			g.Width, g.Height = 0, 0
		}
		desc.Glyphs[r] = g
	}
	return New(desc, atlas)
}

func (f *Font) Descriptor() *Descriptor { return f.desc }
func (f *Font) Atlas() *image.RGBA      { return f.atlas }

// Texture is nil until Upload has been called.
func (f *Font) Texture() *texture.Texture { return f.texture }

// Upload sends the atlas to the GPU with nearest filtering. It is a no-op
// once the texture exists.
func (f *Font) Upload(dev gpu.Device) error {
	if f.texture != nil {
		return nil
	}
	t, err := texture.FromImage(dev, f.atlas, texture.Options{Filter: gpu.FilterNearest, Wrap: gpu.WrapClampToEdge})
	if err != nil {
		return fmt.Errorf("failed to upload font atlas: %w", err)
	}
	f.texture = t
	return nil
}

func (f *Font) Destroy(dev gpu.Device) {
	if f.texture != nil {
		f.texture.Destroy(dev)
		f.texture = nil
	}
}

// BuildVerticesForString appends two triangles per visible glyph of text.
// start is the bottom-left of the first line in NDC and scale converts font
// pixels to NDC units on each axis. Newlines start a new line below.
func (f *Font) BuildVerticesForString(text string, start, scale mgl32.Vec2, colour mgl32.Vec4, out *Vertices) {
	texW, texH := float32(f.desc.ScaleW), float32(f.desc.ScaleH)
	lineHeight := float32(f.desc.LineHeight)

	x, lineY := start.X(), start.Y()
	for _, r := range text {
		if r == '\n' {
			x = start.X()
			lineY -= lineHeight * scale.Y()
			continue
		}
		g, ok := f.desc.Glyphs[r]
		if !ok {
			if g, ok = f.desc.Glyphs['?']; !ok {
				continue
			}
		}
		if g.Width > 0 && g.Height > 0 {
			x0 := x + float32(g.XOffset)*scale.X()
			x1 := x0 + float32(g.Width)*scale.X()
			top := lineY + (lineHeight-float32(g.YOffset))*scale.Y()
			bottom := top - float32(g.Height)*scale.Y()

			u0, u1 := float32(g.X)/texW, float32(g.X+g.Width)/texW
			v0, v1 := float32(g.Y)/texH, float32(g.Y+g.Height)/texH

			out.Positions = append(out.Positions,
				mgl32.Vec3{x0, bottom, 0}, mgl32.Vec3{x1, bottom, 0}, mgl32.Vec3{x1, top, 0},
				mgl32.Vec3{x0, bottom, 0}, mgl32.Vec3{x1, top, 0}, mgl32.Vec3{x0, top, 0},
			)
			out.TexCoords = append(out.TexCoords,
				mgl32.Vec2{u0, v1}, mgl32.Vec2{u1, v1}, mgl32.Vec2{u1, v0},
				mgl32.Vec2{u0, v1}, mgl32.Vec2{u1, v0}, mgl32.Vec2{u0, v0},
			)
			for i := 0; i < 6; i++ {
				out.Colours = append(out.Colours, colour)
			}
		}
		x += float32(g.XAdvance) * scale.X()
	}
}
