package font

import (
	"image"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/gpu/gputest"
)

const testFnt = `info face="Press Start 2P" size=8 bold=0 italic=0
common lineHeight=8 base=7 scaleW=64 scaleH=32 pages=1 packed=0
page id=0 file="press_0.png"
chars count=3
char id=32   x=0  y=0 width=0 height=0 xoffset=0 yoffset=0 xadvance=8 page=0 chnl=15
char id=65   x=8  y=0 width=8 height=8 xoffset=0 yoffset=0 xadvance=8 page=0 chnl=15
char id=63   x=16 y=8 width=6 height=7 xoffset=1 yoffset=1 xadvance=8 page=0 chnl=15
kernings count=0
`

func TestParseDescriptor(t *testing.T) {
	d, err := Parse(strings.NewReader(testFnt))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Face != "Press Start 2P" {
		t.Errorf("Face = %q", d.Face)
	}
	if d.LineHeight != 8 || d.Base != 7 || d.ScaleW != 64 || d.ScaleH != 32 {
		t.Errorf("common = %+v", d)
	}
	if len(d.Pages) != 1 || d.Pages[0] != "press_0.png" {
		t.Errorf("Pages = %v", d.Pages)
	}
	want := Glyph{ID: '?', X: 16, Y: 8, Width: 6, Height: 7, XOffset: 1, YOffset: 1, XAdvance: 8}
	if got := d.Glyphs['?']; got != want {
		t.Errorf("glyph '?' = %+v, want %+v", got, want)
	}
}

func TestParseRejectsIncompleteFiles(t *testing.T) {
	for _, in := range []string{
		"info face=x\n",
		"common lineHeight=8 base=7 scaleW=64 scaleH=32\n",
		"common lineHeight=8 base=7 scaleW=64 scaleH=32\nchar id=65 x=1\n",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse(%q) succeeded", in)
		}
	}
}

func TestParseRejectsBadPageIDs(t *testing.T) {
	for _, page := range []string{
		`page id=-1 file="a.png"`,
		`page id=100000000 file="a.png"`,
		`page id=256 file="a.png"`,
	} {
		in := strings.Replace(testFnt, `page id=0 file="press_0.png"`, page, 1)
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("Parse accepted %s", page)
		}
	}
}

func testFont(t *testing.T) *Font {
	t.Helper()
	d, err := Parse(strings.NewReader(testFnt))
	if err != nil {
		t.Fatal(err)
	}
	return New(d, image.NewRGBA(image.Rect(0, 0, 64, 32)))
}

func TestBuildVerticesLayout(t *testing.T) {
	f := testFont(t)
	var v Vertices
	white := mgl32.Vec4{1, 1, 1, 1}
	f.BuildVerticesForString("A A", mgl32.Vec2{-1, -1}, mgl32.Vec2{0.01, 0.02}, white, &v)

	if v.Len() != 12 {
		t.Fatalf("got %d vertices, want 12 (space emits no quad)", v.Len())
	}
	if len(v.TexCoords) != 12 || len(v.Colours) != 12 {
		t.Fatalf("stream lengths differ: %d %d", len(v.TexCoords), len(v.Colours))
	}
	// second A starts two advances (16px) right of the first
	if got, want := v.Positions[6].X()-v.Positions[0].X(), float32(16*0.01); !near(got, want) {
		t.Errorf("second glyph offset = %v, want %v", got, want)
	}
	// bottom-left of 'A' sits on the start point, top is one line up
	if !near(v.Positions[0].X(), -1) || !near(v.Positions[0].Y(), -1) {
		t.Errorf("first corner = %v", v.Positions[0])
	}
	if !near(v.Positions[2].Y(), -1+8*0.02) {
		t.Errorf("top = %v", v.Positions[2].Y())
	}
	// 'A' occupies atlas x 8..16 of 64
	if !near(v.TexCoords[0].X(), 0.125) || !near(v.TexCoords[1].X(), 0.25) {
		t.Errorf("u range = %v..%v", v.TexCoords[0].X(), v.TexCoords[1].X())
	}
}

func TestBuildVerticesFallbackAndNewline(t *testing.T) {
	f := testFont(t)
	var v Vertices
	f.BuildVerticesForString("A\nZ", mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}, mgl32.Vec4{}, &v)
	if v.Len() != 12 {
		t.Fatalf("got %d vertices, want 12 ('Z' falls back to '?')", v.Len())
	}
	// the fallback glyph is on the line below and starts back at x=0 plus its offset
	if !near(v.Positions[6].X(), 1) {
		t.Errorf("second line x = %v, want 1", v.Positions[6].X())
	}
	if top := v.Positions[8].Y(); !near(top, -8+7) {
		t.Errorf("second line top = %v, want -1", top)
	}

	v.Reset()
	if v.Len() != 0 {
		t.Errorf("Reset left %d vertices", v.Len())
	}
}

func TestBasicFont(t *testing.T) {
	f := Basic()
	d := f.Descriptor()
	if d.LineHeight != 13 || d.ScaleW != 16*7 {
		t.Errorf("basic descriptor = %+v", d)
	}
	for r := rune(32); r <= 126; r++ {
		if _, ok := d.Glyphs[r]; !ok {
			t.Fatalf("missing glyph %q", r)
		}
	}
	opaque := 0
	for i := 3; i < len(f.Atlas().Pix); i += 4 {
		if f.Atlas().Pix[i] != 0 {
			opaque++
		}
	}
	if opaque == 0 {
		t.Error("atlas has no rasterised glyphs")
	}

	dev := gputest.New()
	if err := f.Upload(dev); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := f.Upload(dev); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if dev.Count("CreateTexture2D") != 1 {
		t.Errorf("atlas uploaded %d times", dev.Count("CreateTexture2D"))
	}
	if p := dev.Textures[f.Texture().ID()].Params; p.Filter != gpu.FilterNearest {
		t.Errorf("atlas filter = %v, want nearest", p.Filter)
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}
