package mesh

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/gpu/gputest"
)

const triangleMsh = `MeshGeometry
1
1 3 3 4
1
-1 -1 0
 1 -1 0
 0  1 0
8
1 0 0 1
0 1 0 1
0 0 1 1
256
0 1 2
16384
0 3
`

func TestReadMeshGeometry(t *testing.T) {
	m, err := Read(strings.NewReader(triangleMsh))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if m.VertexCount() != 3 {
		t.Errorf("VertexCount = %d, want 3", m.VertexCount())
	}
	if m.IndexCount() != 3 {
		t.Errorf("IndexCount = %d, want 3", m.IndexCount())
	}
	if got := m.Positions()[2]; got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("position[2] = %v", got)
	}
	if got := m.Colours()[1]; got != (mgl32.Vec4{0, 1, 0, 1}) {
		t.Errorf("colour[1] = %v", got)
	}
	sub, ok := m.SubMesh(0)
	if !ok || sub != (SubMesh{Start: 0, Count: 3}) {
		t.Errorf("SubMesh(0) = %v, %v", sub, ok)
	}
	if _, ok := m.SubMesh(1); ok {
		t.Errorf("SubMesh(1) should not exist")
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"wrong header", "NotAMesh 1 1 0 0 0"},
		{"wrong version", "MeshGeometry 2 1 0 0 0"},
		{"truncated positions", "MeshGeometry 1 1 2 0 1 1 0 0 0"},
		{"unknown chunk", "MeshGeometry 1 1 0 0 1 3"},
		{"empty", ""},
		{"negative vertex count", "MeshGeometry\n1 0 -1 0 1\n1 0 0 0\n"},
		{"negative chunk count", "MeshGeometry 1 0 0 0 -1"},
		{"huge vertex count", "MeshGeometry\n1 1 999999999 0 1\n1 0 0 0\n"},
		{"index past vertices", "MeshGeometry 1 0 3 3 2 1 -1 -1 0 1 -1 0 0 1 0 256 0 1 5"},
		{"sub-mesh past indices", "MeshGeometry 1 1 3 3 3 1 -1 -1 0 1 -1 0 0 1 0 256 0 1 2 16384 0 99"},
		{"sub-mesh past vertices", "MeshGeometry 1 1 3 0 2 1 -1 -1 0 1 -1 0 0 1 0 16384 2 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.in)); err == nil {
				t.Errorf("Read(%q) succeeded, want error", tt.in)
			}
		})
	}
}

func TestCubeShape(t *testing.T) {
	c := Cube()
	if c.VertexCount() != 36 || c.IndexCount() != 0 {
		t.Fatalf("cube has %d vertices / %d indices, want 36 / 0", c.VertexCount(), c.IndexCount())
	}
	for i, p := range c.Positions() {
		for _, v := range p {
			if v != 0.5 && v != -0.5 {
				t.Fatalf("vertex %d = %v is not a cube corner", i, p)
			}
		}
	}
	if len(c.Normals()) != 36 || len(c.TextureCoords()) != 36 || len(c.Colours()) != 36 {
		t.Errorf("cube streams have mismatched lengths")
	}
}

func TestSphereShape(t *testing.T) {
	s := Sphere(8, 12)
	if want := 9 * 13; s.VertexCount() != want {
		t.Errorf("VertexCount = %d, want %d", s.VertexCount(), want)
	}
	if want := 8 * 12 * 6; s.IndexCount() != want {
		t.Errorf("IndexCount = %d, want %d", s.IndexCount(), want)
	}
	for _, idx := range s.Indices() {
		if int(idx) >= s.VertexCount() {
			t.Fatalf("index %d out of range", idx)
		}
	}
	for _, p := range s.Positions() {
		if l := p.Len(); l < 0.999 || l > 1.001 {
			t.Fatalf("vertex %v is not on the unit sphere", p)
		}
	}
}

func TestUploadReusesBuffers(t *testing.T) {
	dev := gputest.New()
	m := Cube()
	m.UploadToGPU(dev)
	if m.VAO() == 0 {
		t.Fatal("VAO not assigned")
	}
	created := dev.Count("CreateBuffer")
	if created != 4 {
		t.Errorf("created %d buffers, want 4 (no index buffer)", created)
	}
	if got := len(dev.Attribs[AttribPosition]); got != 36*3 {
		t.Errorf("uploaded %d position floats", got)
	}

	vao := m.VAO()
	m.UploadToGPU(dev)
	if m.VAO() != vao {
		t.Errorf("re-upload changed VAO from %d to %d", vao, m.VAO())
	}
	if dev.Count("CreateBuffer") != created || dev.Count("CreateVertexArray") != 1 {
		t.Errorf("re-upload allocated new GPU objects")
	}

	m.Destroy(dev)
	if m.VAO() != 0 || dev.Deleted["buffer"] != 4 || dev.Deleted["vao"] != 1 {
		t.Errorf("Destroy left objects behind: vao=%d deleted=%v", m.VAO(), dev.Deleted)
	}
}
