// Package mesh holds vertex/index streams on the CPU and mirrors them into a
// vertex array object on the GPU.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/gpu"
)

// Primitive describes how the vertex stream is assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Points
	Lines
	TriangleFan
	TriangleStrip
	Patches
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Points:
		return "points"
	case Lines:
		return "lines"
	case TriangleFan:
		return "triangle-fan"
	case TriangleStrip:
		return "triangle-strip"
	case Patches:
		return "patches"
	}
	return "unknown"
}

// Shader attribute locations used by every mesh.
const (
	AttribPosition uint32 = iota
	AttribColour
	AttribTexCoord
	AttribNormal
)

// SubMesh is a contiguous range of the index stream, or of the vertex stream
// for meshes without indices.
type SubMesh struct {
	Start int
	Count int
}

const (
	bufPositions = iota
	bufColours
	bufTexCoords
	bufNormals
	bufIndices
	numBuffers
)

type Mesh struct {
	primitive Primitive
	positions []mgl32.Vec3
	colours   []mgl32.Vec4
	texCoords []mgl32.Vec2
	normals   []mgl32.Vec3
	indices   []uint32
	subMeshes []SubMesh

	vao     uint32
	buffers [numBuffers]uint32
}

// New returns an empty triangle mesh.
func New() *Mesh {
	return &Mesh{primitive: Triangles}
}

func (m *Mesh) SetPrimitiveType(p Primitive) { m.primitive = p }
func (m *Mesh) PrimitiveType() Primitive     { return m.primitive }

func (m *Mesh) SetVertexPositions(v []mgl32.Vec3)     { m.positions = v }
func (m *Mesh) SetVertexColours(v []mgl32.Vec4)       { m.colours = v }
func (m *Mesh) SetVertexTextureCoords(v []mgl32.Vec2) { m.texCoords = v }
func (m *Mesh) SetVertexNormals(v []mgl32.Vec3)       { m.normals = v }
func (m *Mesh) SetVertexIndices(v []uint32)           { m.indices = v }
func (m *Mesh) SetSubMeshes(s []SubMesh)              { m.subMeshes = s }

func (m *Mesh) Positions() []mgl32.Vec3     { return m.positions }
func (m *Mesh) Colours() []mgl32.Vec4       { return m.colours }
func (m *Mesh) TextureCoords() []mgl32.Vec2 { return m.texCoords }
func (m *Mesh) Normals() []mgl32.Vec3       { return m.normals }
func (m *Mesh) Indices() []uint32           { return m.indices }

func (m *Mesh) VertexCount() int { return len(m.positions) }
func (m *Mesh) IndexCount() int  { return len(m.indices) }

// SubMesh returns the i-th sub-mesh range, if the mesh has one.
func (m *Mesh) SubMesh(i int) (SubMesh, bool) {
	if i < 0 || i >= len(m.subMeshes) {
		return SubMesh{}, false
	}
	return m.subMeshes[i], true
}

// VAO is the vertex array name, or 0 before UploadToGPU.
func (m *Mesh) VAO() uint32 { return m.vao }

// UploadToGPU copies every non-empty stream into its buffer. Calling it
// again re-uploads into the same vertex array and buffers.
func (m *Mesh) UploadToGPU(dev gpu.Device) {
	if m.vao == 0 {
		m.vao = dev.CreateVertexArray()
	}
	dev.BindVertexArray(m.vao)

	m.upload(dev, bufPositions, AttribPosition, 3, flatten3(m.positions))
	m.upload(dev, bufColours, AttribColour, 4, flatten4(m.colours))
	m.upload(dev, bufTexCoords, AttribTexCoord, 2, flatten2(m.texCoords))
	m.upload(dev, bufNormals, AttribNormal, 3, flatten3(m.normals))

	if len(m.indices) > 0 || m.buffers[bufIndices] != 0 {
		if m.buffers[bufIndices] == 0 {
			m.buffers[bufIndices] = dev.CreateBuffer()
		}
		dev.IndexData(m.buffers[bufIndices], m.indices)
	}

	dev.BindVertexArray(0)
}

func (m *Mesh) upload(dev gpu.Device, slot int, attrib uint32, components int32, data []float32) {
	// a buffer that once held data is refreshed even when the stream is now empty
	if len(data) == 0 && m.buffers[slot] == 0 {
		return
	}
	if m.buffers[slot] == 0 {
		m.buffers[slot] = dev.CreateBuffer()
	}
	dev.VertexAttribData(m.buffers[slot], attrib, components, data)
}

// Destroy releases the GPU copy. The CPU streams are kept.
func (m *Mesh) Destroy(dev gpu.Device) {
	for i, b := range m.buffers {
		if b != 0 {
			dev.DeleteBuffer(b)
			m.buffers[i] = 0
		}
	}
	if m.vao != 0 {
		dev.DeleteVertexArray(m.vao)
		m.vao = 0
	}
}

func flatten2(v []mgl32.Vec2) []float32 {
	out := make([]float32, 0, len(v)*2)
	for _, e := range v {
		out = append(out, e[0], e[1])
	}
	return out
}

func flatten3(v []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, e := range v {
		out = append(out, e[0], e[1], e[2])
	}
	return out
}

func flatten4(v []mgl32.Vec4) []float32 {
	out := make([]float32, 0, len(v)*4)
	for _, e := range v {
		out = append(out, e[0], e[1], e[2], e[3])
	}
	return out
}
