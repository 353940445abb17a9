package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/mesh"
	"github.com/richinsley/oglrender/shader"
)

// Light is the scene's single point light.
type Light struct {
	Position mgl32.Vec3
	Colour   mgl32.Vec3
	Radius   float32
}

// RenderObject is one drawable. The scene owns Mesh; Shader and Texture are
// borrowed and may be nil, in which case the default shader is used and the
// object is drawn untextured.
type RenderObject struct {
	Mesh      *mesh.Mesh
	Shader    Shader
	Texture   Texture
	Transform mgl32.Mat4
}

func NewRenderObject(m *mesh.Mesh, s Shader, t Texture) *RenderObject {
	return &RenderObject{Mesh: m, Shader: s, Texture: t, Transform: mgl32.Ident4()}
}

// Scene draws a list of render objects with one light and one camera.
type Scene struct {
	*Renderer

	defaultShader *shader.Shader
	objects       []*RenderObject

	projMatrix mgl32.Mat4
	viewMatrix mgl32.Mat4
	light      Light

	frameTime float32
	elapsed   float64
}

// NewScene wraps r with a default lit shader and identity camera.
func NewScene(r *Renderer) (*Scene, error) {
	def, err := shader.NewDefault(r.dev)
	if err != nil {
		return nil, fmt.Errorf("failed to create default scene shader: %w", err)
	}
	return &Scene{
		Renderer:      r,
		defaultShader: def,
		projMatrix:    mgl32.Ident4(),
		viewMatrix:    mgl32.Ident4(),
		light:         Light{Colour: mgl32.Vec3{1, 1, 1}},
	}, nil
}

// AddRenderObject takes ownership of o and uploads its mesh if needed.
func (s *Scene) AddRenderObject(o *RenderObject) {
	if o == nil || o.Mesh == nil {
		s.log.Printf("AddRenderObject: object has no mesh")
		return
	}
	if o.Mesh.VAO() == 0 {
		o.Mesh.UploadToGPU(s.dev)
	}
	s.objects = append(s.objects, o)
}

// DeleteAllRenderObjects destroys every object and its mesh.
func (s *Scene) DeleteAllRenderObjects() {
	s.BindMesh(nil)
	for _, o := range s.objects {
		o.Mesh.Destroy(s.dev)
	}
	s.objects = nil
}

func (s *Scene) RenderObjects() []*RenderObject { return s.objects }

func (s *Scene) SetProjectionMatrix(m mgl32.Mat4) { s.projMatrix = m }
func (s *Scene) SetViewMatrix(m mgl32.Mat4)       { s.viewMatrix = m }
func (s *Scene) ProjectionMatrix() mgl32.Mat4     { return s.projMatrix }
func (s *Scene) ViewMatrix() mgl32.Mat4           { return s.viewMatrix }

func (s *Scene) SetLightProperties(pos, colour mgl32.Vec3, radius float32) {
	s.light = Light{Position: pos, Colour: colour, Radius: radius}
}

func (s *Scene) Light() Light { return s.light }

// Update advances the frame clock by dt seconds.
func (s *Scene) Update(dt float32) {
	s.frameTime = dt
	s.elapsed += float64(dt)
}

func (s *Scene) FrameTime() float32 { return s.frameTime }
func (s *Scene) Elapsed() float64   { return s.elapsed }

// Render draws one complete frame and presents it.
func (s *Scene) Render() {
	s.BeginFrame()
	s.RenderFrame()
	s.EndFrame()
}

// RenderFrame draws every object once and returns how many draws were
// issued. Objects whose shader or mesh cannot be bound are skipped.
func (s *Scene) RenderFrame() int {
	cameraPos := s.viewMatrix.Inv().Col(3).Vec3()
	drawn := 0
	for _, o := range s.objects {
		var sh Shader = s.defaultShader
		if o.Shader != nil {
			sh = o.Shader
		}
		s.BindShader(sh)
		if s.BoundShader() == nil {
			continue
		}

		s.setMatrix(sh, "projMatrix", s.projMatrix)
		s.setMatrix(sh, "viewMatrix", s.viewMatrix)
		s.setMatrix(sh, "modelMatrix", o.Transform)
		s.applyLight(sh, cameraPos)

		textured := o.Texture != nil && o.Texture.ID() != 0
		if textured {
			textured = s.BindTextureToShader(o.Texture, "mainTex", 0)
		}
		if loc := sh.UniformLocation("hasTexture"); loc >= 0 {
			var v int32
			if textured {
				v = 1
			}
			s.dev.Uniform1i(loc, v)
		}

		s.BindMesh(o.Mesh)
		if s.DrawBoundMesh(-1, 1) {
			drawn++
		}
	}
	return drawn
}

func (s *Scene) setMatrix(sh Shader, name string, m mgl32.Mat4) {
	if loc := sh.UniformLocation(name); loc >= 0 {
		s.dev.UniformMatrix4fv(loc, (*[16]float32)(&m))
	}
}

func (s *Scene) setVec3(sh Shader, name string, v mgl32.Vec3) {
	if loc := sh.UniformLocation(name); loc >= 0 {
		s.dev.Uniform3f(loc, v[0], v[1], v[2])
	}
}

func (s *Scene) applyLight(sh Shader, cameraPos mgl32.Vec3) {
	s.setVec3(sh, "lightPos", s.light.Position)
	s.setVec3(sh, "lightColour", s.light.Colour)
	s.setVec3(sh, "cameraPos", cameraPos)
	if loc := sh.UniformLocation("lightRadius"); loc >= 0 {
		s.dev.Uniform1f(loc, s.light.Radius)
	}
}

// Shutdown destroys the scene's objects and shader and then the renderer.
func (s *Scene) Shutdown() {
	s.DeleteAllRenderObjects()
	s.defaultShader.Destroy()
	s.Renderer.Shutdown()
}
