package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/gpu/gputest"
)

func twoRowImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 255, 255})
	return img
}

func TestFromImageFlipsRows(t *testing.T) {
	dev := gputest.New()
	tex, err := FromImage(dev, twoRowImage(), Options{Filter: gpu.FilterNearest, VFlip: true})
	if err != nil {
		t.Fatalf("FromImage: %v", err)
	}
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Fatalf("size = %dx%d", tex.Width(), tex.Height())
	}
	up := dev.Textures[tex.ID()]
	if up.Params.Filter != gpu.FilterNearest {
		t.Errorf("filter = %v", up.Params.Filter)
	}
	// first uploaded row is the bottom (blue) row of the source
	if up.Pixels[0] != 0 || up.Pixels[2] != 255 {
		t.Errorf("first texel = %v, want blue", up.Pixels[:4])
	}
}

func TestFromImageRejectsEmpty(t *testing.T) {
	dev := gputest.New()
	if _, err := FromImage(dev, nil, DefaultOptions); err == nil {
		t.Error("nil image accepted")
	}
	if _, err := FromImage(dev, image.NewRGBA(image.Rect(0, 0, 0, 4)), DefaultOptions); err == nil {
		t.Error("zero-width image accepted")
	}
	if len(dev.Textures) != 0 {
		t.Errorf("textures created for rejected images")
	}
}

func TestLoadPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, twoRowImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	dev := gputest.New()
	tex, err := Load(dev, path, DefaultOptions)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.ID() == 0 {
		t.Fatal("texture id is 0")
	}
	tex.Destroy(dev)
	if tex.ID() != 0 || dev.Deleted["texture"] != 1 {
		t.Errorf("Destroy did not release the texture")
	}

	if _, err := Load(dev, filepath.Join(t.TempDir(), "missing.png"), DefaultOptions); err == nil {
		t.Error("missing file accepted")
	}
}
