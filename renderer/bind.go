package renderer

import (
	"log"

	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/mesh"
)

// Mesh is what BindState needs from a drawable. *mesh.Mesh satisfies it.
type Mesh interface {
	PrimitiveType() mesh.Primitive
	VAO() uint32
	VertexCount() int
	IndexCount() int
	SubMesh(i int) (mesh.SubMesh, bool)
}

// Shader is a linked program with uniform lookup. *shader.Shader satisfies it.
type Shader interface {
	ProgramID() uint32
	UniformLocation(name string) int32
}

// Texture is a 2D texture object. *texture.Texture satisfies it.
type Texture interface {
	ID() uint32
}

var drawModes = map[mesh.Primitive]gpu.DrawMode{
	mesh.Triangles:     gpu.ModeTriangles,
	mesh.Points:        gpu.ModePoints,
	mesh.Lines:         gpu.ModeLines,
	mesh.TriangleFan:   gpu.ModeTriangleFan,
	mesh.TriangleStrip: gpu.ModeTriangleStrip,
	mesh.Patches:       gpu.ModePatches,
}

// BindState tracks the single bound mesh and shader. Binding replaces
// whatever was bound before; nothing is stacked or counted.
//
// Interfaces must be passed as untyped nil to unbind. A nil *shader.Shader
// reports program 0 and is treated as an invalid shader.
type BindState struct {
	dev    gpu.Device
	log    *log.Logger
	mesh   Mesh
	shader Shader
}

func NewBindState(dev gpu.Device, logger *log.Logger) *BindState {
	if logger == nil {
		logger = log.Default()
	}
	return &BindState{dev: dev, log: logger}
}

func (b *BindState) BoundMesh() Mesh     { return b.mesh }
func (b *BindState) BoundShader() Shader { return b.shader }

// BindShader makes s the current program. nil unbinds.
func (b *BindState) BindShader(s Shader) {
	if s == nil {
		b.shader = nil
		b.dev.UseProgram(0)
		return
	}
	if s.ProgramID() == 0 {
		b.log.Printf("BindShader: shader has no linked program, unbinding")
		b.shader = nil
		b.dev.UseProgram(0)
		return
	}
	b.shader = s
	b.dev.UseProgram(s.ProgramID())
}

// BindMesh makes m the current vertex array. nil unbinds. A mesh that was
// never uploaded is still bound so later draws report against it.
func (b *BindState) BindMesh(m Mesh) {
	if m == nil {
		b.mesh = nil
		b.dev.BindVertexArray(0)
		return
	}
	if m.VAO() == 0 {
		b.log.Printf("BindMesh: mesh has not been uploaded to the GPU")
	}
	b.mesh = m
	b.dev.BindVertexArray(m.VAO())
}

// UnbindAll clears both bindings.
func (b *BindState) UnbindAll() {
	b.BindMesh(nil)
	b.BindShader(nil)
}

// DrawBoundMesh issues one draw of the bound mesh with the bound shader.
// subLayer selects a sub-mesh range; an out-of-range value draws the whole
// mesh. A sub-mesh running past the mesh's elements is refused. It reports
// whether a draw was issued.
func (b *BindState) DrawBoundMesh(subLayer, instances int) bool {
	if b.mesh == nil {
		b.log.Printf("DrawBoundMesh: called without a bound mesh")
		return false
	}
	if b.shader == nil {
		b.log.Printf("DrawBoundMesh: called without a bound shader")
		return false
	}
	mode, ok := drawModes[b.mesh.PrimitiveType()]
	if !ok {
		b.log.Printf("DrawBoundMesh: unknown primitive type %d", int(b.mesh.PrimitiveType()))
		return false
	}
	if instances < 1 {
		instances = 1
	}

	indexed := b.mesh.IndexCount() > 0
	total := b.mesh.VertexCount()
	if indexed {
		total = b.mesh.IndexCount()
	}
	first, count := 0, total
	if sub, ok := b.mesh.SubMesh(subLayer); ok {
		first, count = sub.Start, sub.Count
	}
	if first < 0 || count < 0 || first+count > total {
		b.log.Printf("DrawBoundMesh: sub-mesh %d range [%d, %d) exceeds %d elements", subLayer, first, first+count, total)
		return false
	}

	if indexed {
		b.dev.DrawElements(mode, int32(count), int32(first), int32(instances))
	} else {
		b.dev.DrawArrays(mode, int32(first), int32(count), int32(instances))
	}
	return true
}

// BindTextureToShader binds t to unit and points the named sampler at it.
// It returns false when no shader is bound or the shader has no such
// uniform; only the first case is logged.
func (b *BindState) BindTextureToShader(t Texture, uniform string, unit int) bool {
	if b.shader == nil {
		b.log.Printf("BindTextureToShader: no shader bound for uniform %q", uniform)
		return false
	}
	loc := b.shader.UniformLocation(uniform)
	if loc < 0 {
		return false
	}
	var id uint32
	if t != nil {
		id = t.ID()
	}
	b.dev.ActiveTexture(uint32(unit))
	b.dev.BindTexture2D(id)
	b.dev.Uniform1i(loc, int32(unit))
	return true
}
