package renderer

import (
	"bytes"
	"image"
	"log"
	"strings"
	"testing"

	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/gpu/gputest"
	"github.com/richinsley/oglrender/mesh"
	"github.com/richinsley/oglrender/shader"
	"github.com/richinsley/oglrender/texture"
)

// stubMesh lets tests hand BindState primitives a *mesh.Mesh cannot hold.
type stubMesh struct {
	prim     mesh.Primitive
	vao      uint32
	vertices int
	indices  int
}

func (m stubMesh) PrimitiveType() mesh.Primitive { return m.prim }
func (m stubMesh) VAO() uint32                   { return m.vao }
func (m stubMesh) VertexCount() int              { return m.vertices }
func (m stubMesh) IndexCount() int               { return m.indices }
func (m stubMesh) SubMesh(int) (mesh.SubMesh, bool) {
	return mesh.SubMesh{}, false
}

func newBindState(t *testing.T, uniforms ...string) (*BindState, *gputest.Recorder, *bytes.Buffer) {
	t.Helper()
	dev := gputest.New().WithUniforms(uniforms...)
	var buf bytes.Buffer
	return NewBindState(dev, log.New(&buf, "", 0)), dev, &buf
}

func uploadedCube(dev gpu.Device) *mesh.Mesh {
	m := mesh.Cube()
	m.UploadToGPU(dev)
	return m
}

func TestDrawWithoutBindings(t *testing.T) {
	b, dev, logs := newBindState(t)

	if b.DrawBoundMesh(-1, 1) {
		t.Error("draw reported success with nothing bound")
	}
	if !strings.Contains(logs.String(), "DrawBoundMesh: called without a bound mesh") {
		t.Errorf("log = %q", logs.String())
	}

	logs.Reset()
	b.BindMesh(uploadedCube(dev))
	if b.DrawBoundMesh(-1, 1) {
		t.Error("draw reported success without a shader")
	}
	if !strings.Contains(logs.String(), "without a bound shader") {
		t.Errorf("log = %q", logs.String())
	}
	if len(dev.Draws) != 0 {
		t.Errorf("%d draws issued", len(dev.Draws))
	}
}

func TestUnbindMakesDrawsNoops(t *testing.T) {
	b, dev, _ := newBindState(t)
	sh, err := shader.NewDefault(dev)
	if err != nil {
		t.Fatal(err)
	}
	cube := uploadedCube(dev)

	b.BindShader(sh)
	b.BindMesh(cube)
	if !b.DrawBoundMesh(-1, 1) {
		t.Fatal("draw with mesh and shader bound failed")
	}
	if d := dev.Draws[0]; d.Program != sh.ProgramID() || d.VAO != cube.VAO() {
		t.Errorf("draw issued under program %d vao %d", d.Program, d.VAO)
	}

	b.BindMesh(nil)
	if b.DrawBoundMesh(-1, 1) {
		t.Error("draw after unbinding the mesh succeeded")
	}
	if dev.VAO != 0 {
		t.Errorf("vertex array %d still bound", dev.VAO)
	}

	b.BindMesh(cube)
	b.BindShader(nil)
	if b.DrawBoundMesh(-1, 1) {
		t.Error("draw after unbinding the shader succeeded")
	}
	if dev.Program != 0 {
		t.Errorf("program %d still in use", dev.Program)
	}
	if len(dev.Draws) != 1 {
		t.Errorf("got %d draws, want 1", len(dev.Draws))
	}
}

func TestBindReplacesPrevious(t *testing.T) {
	b, dev, _ := newBindState(t)
	first, _ := shader.NewDefault(dev)
	second, _ := shader.NewDebug(dev)

	b.BindShader(first)
	b.BindShader(second)
	if b.BoundShader() != Shader(second) || dev.Program != second.ProgramID() {
		t.Errorf("bound %v, program %d", b.BoundShader(), dev.Program)
	}

	a, c := uploadedCube(dev), uploadedCube(dev)
	b.BindMesh(a)
	b.BindMesh(c)
	if b.BoundMesh() != Mesh(c) || dev.VAO != c.VAO() {
		t.Errorf("bound vao %d", dev.VAO)
	}
}

func TestBindInvalidShader(t *testing.T) {
	b, dev, logs := newBindState(t)
	sh, _ := shader.NewDefault(dev)
	b.BindShader(sh)

	sh.Destroy()
	b.BindShader(sh)
	if b.BoundShader() != nil {
		t.Error("destroyed shader left bound")
	}
	if !strings.Contains(logs.String(), "BindShader:") {
		t.Errorf("log = %q", logs.String())
	}

	var missing *shader.Shader
	b.BindShader(missing)
	if b.BoundShader() != nil {
		t.Error("nil *shader.Shader bound")
	}
}

func TestBindMeshNotUploaded(t *testing.T) {
	b, _, logs := newBindState(t)
	m := mesh.Cube()
	b.BindMesh(m)
	if b.BoundMesh() == nil {
		t.Error("mesh without a vertex array was not bound")
	}
	if !strings.Contains(logs.String(), "BindMesh:") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestDrawModeMapping(t *testing.T) {
	tests := []struct {
		prim mesh.Primitive
		want gpu.DrawMode
	}{
		{mesh.Triangles, gpu.ModeTriangles},
		{mesh.Points, gpu.ModePoints},
		{mesh.Lines, gpu.ModeLines},
		{mesh.TriangleFan, gpu.ModeTriangleFan},
		{mesh.TriangleStrip, gpu.ModeTriangleStrip},
		{mesh.Patches, gpu.ModePatches},
	}
	for _, tt := range tests {
		t.Run(tt.prim.String(), func(t *testing.T) {
			b, dev, _ := newBindState(t)
			sh, _ := shader.NewDefault(dev)
			b.BindShader(sh)
			b.BindMesh(stubMesh{prim: tt.prim, vao: 7, vertices: 3})
			if !b.DrawBoundMesh(-1, 1) {
				t.Fatal("draw failed")
			}
			if got := dev.Draws[0].Mode; got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}

	b, dev, logs := newBindState(t)
	sh, _ := shader.NewDefault(dev)
	b.BindShader(sh)
	b.BindMesh(stubMesh{prim: mesh.Primitive(42), vao: 7, vertices: 3})
	if b.DrawBoundMesh(-1, 1) || len(dev.Draws) != 0 {
		t.Error("unknown primitive was drawn")
	}
	if !strings.Contains(logs.String(), "unknown primitive") {
		t.Errorf("log = %q", logs.String())
	}
}

func TestIndexedAndArrayDraws(t *testing.T) {
	b, dev, _ := newBindState(t)
	sh, _ := shader.NewDefault(dev)
	b.BindShader(sh)

	b.BindMesh(uploadedCube(dev))
	b.DrawBoundMesh(-1, 1)

	sphere := mesh.Sphere(8, 12)
	sphere.UploadToGPU(dev)
	b.BindMesh(sphere)
	b.DrawBoundMesh(-1, 4)

	sphere.SetSubMeshes([]mesh.SubMesh{{Start: 0, Count: 96}, {Start: 96, Count: 480}})
	b.DrawBoundMesh(1, 1)
	b.DrawBoundMesh(5, 1)

	want := []gputest.Draw{
		{Indexed: false, Mode: gpu.ModeTriangles, First: 0, Count: 36, Instances: 1},
		{Indexed: true, Mode: gpu.ModeTriangles, First: 0, Count: 8 * 12 * 6, Instances: 4},
		{Indexed: true, Mode: gpu.ModeTriangles, First: 96, Count: 480, Instances: 1},
		{Indexed: true, Mode: gpu.ModeTriangles, First: 0, Count: 8 * 12 * 6, Instances: 1},
	}
	if len(dev.Draws) != len(want) {
		t.Fatalf("got %d draws, want %d", len(dev.Draws), len(want))
	}
	for i, w := range want {
		d := dev.Draws[i]
		if d.Indexed != w.Indexed || d.Mode != w.Mode || d.First != w.First || d.Count != w.Count || d.Instances != w.Instances {
			t.Errorf("draw %d = %+v, want %+v", i, d, w)
		}
	}
	if dev.Count("DrawArrays") != 1 || dev.Count("DrawElements") != 3 {
		t.Errorf("arrays=%d elements=%d", dev.Count("DrawArrays"), dev.Count("DrawElements"))
	}
}

func TestDrawRefusesSubMeshPastBuffer(t *testing.T) {
	tests := []struct {
		name string
		mesh func(gpu.Device) *mesh.Mesh
		sub  mesh.SubMesh
	}{
		{"arrays past vertices", uploadedCube, mesh.SubMesh{Start: 0, Count: 99}},
		{"arrays negative start", uploadedCube, mesh.SubMesh{Start: -1, Count: 3}},
		{"elements past indices", func(dev gpu.Device) *mesh.Mesh {
			m := mesh.Sphere(8, 12)
			m.UploadToGPU(dev)
			return m
		}, mesh.SubMesh{Start: 500, Count: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, dev, logs := newBindState(t)
			sh, _ := shader.NewDefault(dev)
			b.BindShader(sh)
			m := tt.mesh(dev)
			m.SetSubMeshes([]mesh.SubMesh{tt.sub})
			b.BindMesh(m)

			if b.DrawBoundMesh(0, 1) {
				t.Error("draw reported success")
			}
			if len(dev.Draws) != 0 {
				t.Errorf("%d draws issued", len(dev.Draws))
			}
			if !strings.Contains(logs.String(), "DrawBoundMesh: sub-mesh 0 range") {
				t.Errorf("log = %q", logs.String())
			}

			// other layers still draw the whole mesh
			if !b.DrawBoundMesh(3, 1) || len(dev.Draws) != 1 {
				t.Errorf("whole-mesh draw failed: %d draws", len(dev.Draws))
			}
		})
	}
}

func TestBindTextureToShader(t *testing.T) {
	b, dev, logs := newBindState(t, "mainTex")
	tex, err := texture.FromImage(dev, image.NewRGBA(image.Rect(0, 0, 4, 4)), texture.DefaultOptions)
	if err != nil {
		t.Fatal(err)
	}

	if b.BindTextureToShader(tex, "mainTex", 0) {
		t.Error("bound a texture with no shader")
	}
	if !strings.Contains(logs.String(), "BindTextureToShader:") {
		t.Errorf("log = %q", logs.String())
	}

	sh, _ := shader.NewDefault(dev)
	b.BindShader(sh)

	logs.Reset()
	if b.BindTextureToShader(tex, "bumpTex", 1) {
		t.Error("missing uniform reported bound")
	}
	if logs.Len() != 0 {
		t.Errorf("missing uniform logged %q", logs.String())
	}
	if dev.Count("BindTexture2D") != 0 {
		t.Error("texture bound for a missing uniform")
	}

	if !b.BindTextureToShader(tex, "mainTex", 2) {
		t.Fatal("BindTextureToShader failed")
	}
	if dev.Units[2] != tex.ID() {
		t.Errorf("unit 2 holds %d, want %d", dev.Units[2], tex.ID())
	}
	if v, _ := dev.Uniform("mainTex"); v != int32(2) {
		t.Errorf("mainTex = %v, want 2", v)
	}

	b.BindTextureToShader(nil, "mainTex", 2)
	if dev.Units[2] != 0 {
		t.Errorf("nil texture left %d on unit 2", dev.Units[2])
	}
}
