// Package texture uploads decoded images as 2D RGBA textures.
package texture

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/richinsley/oglrender/gpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Options controls sampling and orientation of an uploaded image.
type Options struct {
	Filter gpu.TextureFilter
	Wrap   gpu.TextureWrap
	SRGB   bool
	// VFlip flips rows so the first image row lands at t=0.
	VFlip bool
}

// DefaultOptions matches what the scene expects of loaded textures.
var DefaultOptions = Options{Filter: gpu.FilterMipmap, Wrap: gpu.WrapRepeat, VFlip: true}

type Texture struct {
	id     uint32
	width  int
	height int
}

// Load decodes the image at path and uploads it.
func Load(dev gpu.Device, path string, opts Options) (*Texture, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	t, err := FromImage(dev, img, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to upload texture %s: %w", path, err)
	}
	log.Printf("Loaded texture %s (%dx%d)", path, t.width, t.height)
	return t, nil
}

// Decode reads any format registered with the image package.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	log.Printf("Decoded %s image %s", format, path)
	return img, nil
}

// FromImage converts img to RGBA and uploads it.
func FromImage(dev gpu.Device, img image.Image, opts Options) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	rgba := ToRGBA(img)
	if opts.VFlip {
		rgba = vflip(rgba)
	}

	width := rgba.Rect.Size().X
	height := rgba.Rect.Size().Y
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has zero size %dx%d", width, height)
	}

	id := dev.CreateTexture2D(int32(width), int32(height), rgba.Pix, gpu.TextureParams{
		Filter: opts.Filter,
		Wrap:   opts.Wrap,
		SRGB:   opts.SRGB,
	})
	return &Texture{id: id, width: width, height: height}, nil
}

// ToRGBA returns img as a tightly packed *image.RGBA with origin (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// vflip vertically flips the provided RGBA image.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

func (t *Texture) ID() uint32 {
	if t == nil {
		return 0
	}
	return t.id
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

func (t *Texture) Destroy(dev gpu.Device) {
	if t.id != 0 {
		dev.DeleteTexture(t.id)
		t.id = 0
	}
}
