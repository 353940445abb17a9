// Package gpu describes the slice of the graphics API the renderer drives.
//
// The enum values below carry the numeric values of their OpenGL
// counterparts so the go-gl backend can pass them straight through, while
// everything above the backend stays free of cgo and can be exercised with
// the recording device in gpu/gputest.
package gpu

// DrawMode is the primitive assembly mode handed to a draw call.
type DrawMode uint32

const (
	ModePoints        DrawMode = 0x0000
	ModeLines         DrawMode = 0x0001
	ModeTriangles     DrawMode = 0x0004
	ModeTriangleStrip DrawMode = 0x0005
	ModeTriangleFan   DrawMode = 0x0006
	ModePatches       DrawMode = 0x000E
)

func (m DrawMode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	case ModePatches:
		return "PATCHES"
	}
	return "UNKNOWN"
}

// Capability is a server-side toggle for Enable/Disable.
type Capability uint32

const (
	CapDepthTest       Capability = 0x0B71
	CapCullFace        Capability = 0x0B44
	CapBlend           Capability = 0x0BE2
	CapFramebufferSRGB Capability = 0x8DB9
)

// BlendFactor is a source or destination factor for BlendFunc.
type BlendFactor uint32

const (
	BlendZero             BlendFactor = 0
	BlendOne              BlendFactor = 1
	BlendSrcAlpha         BlendFactor = 0x0302
	BlendOneMinusSrcAlpha BlendFactor = 0x0303
)

// ClearMask selects which buffers Clear resets.
type ClearMask uint32

const (
	ClearDepth   ClearMask = 0x00000100
	ClearStencil ClearMask = 0x00000400
	ClearColour  ClearMask = 0x00004000
)

// TextureFilter is a min/mag filter.
type TextureFilter int32

const (
	FilterNearest TextureFilter = 0x2600
	FilterLinear  TextureFilter = 0x2601
	FilterMipmap  TextureFilter = 0x2703 // LINEAR_MIPMAP_LINEAR
)

// TextureWrap is a wrap mode applied to both S and T.
type TextureWrap int32

const (
	WrapRepeat      TextureWrap = 0x2901
	WrapClampToEdge TextureWrap = 0x812F
)

// TextureParams controls how CreateTexture2D samples the uploaded image.
type TextureParams struct {
	Filter TextureFilter
	Wrap   TextureWrap
	SRGB   bool
}

// Device is the set of graphics calls issued by meshes, shaders, textures and
// the renderer. All methods must be called from the goroutine that owns the
// current context.
type Device interface {
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int32)
	Enable(c Capability)
	Disable(c Capability)
	BlendFunc(src, dst BlendFactor)

	CompileProgram(vertexSource, fragmentSource string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	// GetUniformLocation returns -1 when the program has no active uniform
	// with that name.
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4fv(location int32, m *[16]float32)

	CreateVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	CreateBuffer() uint32
	DeleteBuffer(buffer uint32)
	// VertexAttribData uploads data into buffer and points attribute attrib
	// of the bound vertex array at it.
	VertexAttribData(buffer, attrib uint32, components int32, data []float32)
	// IndexData uploads 32-bit indices into buffer and attaches it to the
	// bound vertex array.
	IndexData(buffer uint32, data []uint32)

	// DrawArrays and DrawElements use the instanced entry points when
	// instances is greater than one.
	DrawArrays(mode DrawMode, first, count, instances int32)
	DrawElements(mode DrawMode, count, firstIndex, instances int32)

	CreateTexture2D(width, height int32, rgba []byte, params TextureParams) uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture2D(texture uint32)

	// ReadPixels reads RGBA8 pixels from the current read framebuffer.
	ReadPixels(x, y, width, height int32, dst []byte)
}
