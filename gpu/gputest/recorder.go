// Package gputest provides a gpu.Device that records calls instead of
// issuing them, for tests that run without a graphics context.
package gputest

import (
	"fmt"

	"github.com/richinsley/oglrender/gpu"
)

// Draw is one recorded draw call together with the state it was issued under.
type Draw struct {
	Indexed   bool
	Mode      gpu.DrawMode
	First     int32
	Count     int32
	Instances int32
	Program   uint32
	VAO       uint32
}

// Texture describes a texture created through the recorder.
type Texture struct {
	Width, Height int32
	Params        gpu.TextureParams
	Pixels        []byte
}

// Recorder implements gpu.Device. Object names are handed out from a single
// counter starting at 1, so 0 always means "none".
type Recorder struct {
	// Calls is the ordered list of operation names.
	Calls []string
	Draws []Draw

	// Locations maps uniform names to the location GetUniformLocation
	// returns. Names not present report -1.
	Locations map[string]int32
	// UniformValues holds the last value written to each location.
	UniformValues map[int32]any

	// CompileErr, when set, is returned by CompileProgram.
	CompileErr error
	Programs   map[uint32][2]string

	Program      uint32
	VAO          uint32
	ActiveUnit   uint32
	Units        map[uint32]uint32
	Enabled      map[gpu.Capability]bool
	Blend        [2]gpu.BlendFactor
	ViewportRect [4]int32
	ClearCount   int

	Attribs  map[uint32][]float32
	Indices  []uint32
	Textures map[uint32]Texture
	Deleted  map[string]int

	nextID uint32
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		Locations:     make(map[string]int32),
		UniformValues: make(map[int32]any),
		Programs:      make(map[uint32][2]string),
		Units:         make(map[uint32]uint32),
		Enabled:       make(map[gpu.Capability]bool),
		Attribs:       make(map[uint32][]float32),
		Textures:      make(map[uint32]Texture),
		Deleted:       make(map[string]int),
	}
}

// WithUniforms registers uniform names, assigning locations in order.
func (r *Recorder) WithUniforms(names ...string) *Recorder {
	for _, name := range names {
		if _, ok := r.Locations[name]; !ok {
			r.Locations[name] = int32(len(r.Locations))
		}
	}
	return r
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// Uniform returns the last value written to the named uniform.
func (r *Recorder) Uniform(name string) (any, bool) {
	loc, ok := r.Locations[name]
	if !ok {
		return nil, false
	}
	v, ok := r.UniformValues[loc]
	return v, ok
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

func (r *Recorder) record(op string) { r.Calls = append(r.Calls, op) }

func (r *Recorder) ClearColor(red, green, blue, alpha float32) { r.record("ClearColor") }

func (r *Recorder) Clear(mask gpu.ClearMask) {
	r.record("Clear")
	r.ClearCount++
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record("Viewport")
	r.ViewportRect = [4]int32{x, y, width, height}
}

func (r *Recorder) Enable(c gpu.Capability) {
	r.record("Enable")
	r.Enabled[c] = true
}

func (r *Recorder) Disable(c gpu.Capability) {
	r.record("Disable")
	r.Enabled[c] = false
}

func (r *Recorder) BlendFunc(src, dst gpu.BlendFactor) {
	r.record("BlendFunc")
	r.Blend = [2]gpu.BlendFactor{src, dst}
}

func (r *Recorder) CompileProgram(vertexSource, fragmentSource string) (uint32, error) {
	r.record("CompileProgram")
	if r.CompileErr != nil {
		return 0, fmt.Errorf("failed to link program: %w", r.CompileErr)
	}
	p := r.id()
	r.Programs[p] = [2]string{vertexSource, fragmentSource}
	return p, nil
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.record("DeleteProgram")
	r.Deleted["program"]++
}

func (r *Recorder) UseProgram(program uint32) {
	r.record("UseProgram")
	r.Program = program
}

func (r *Recorder) GetUniformLocation(program uint32, name string) int32 {
	r.record("GetUniformLocation")
	if loc, ok := r.Locations[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) Uniform1i(location int32, v int32) {
	r.record("Uniform1i")
	r.UniformValues[location] = v
}

func (r *Recorder) Uniform1f(location int32, v float32) {
	r.record("Uniform1f")
	r.UniformValues[location] = v
}

func (r *Recorder) Uniform3f(location int32, x, y, z float32) {
	r.record("Uniform3f")
	r.UniformValues[location] = [3]float32{x, y, z}
}

func (r *Recorder) UniformMatrix4fv(location int32, m *[16]float32) {
	r.record("UniformMatrix4fv")
	r.UniformValues[location] = *m
}

func (r *Recorder) CreateVertexArray() uint32 {
	r.record("CreateVertexArray")
	return r.id()
}

func (r *Recorder) DeleteVertexArray(vao uint32) {
	r.record("DeleteVertexArray")
	r.Deleted["vao"]++
}

func (r *Recorder) BindVertexArray(vao uint32) {
	r.record("BindVertexArray")
	r.VAO = vao
}

func (r *Recorder) CreateBuffer() uint32 {
	r.record("CreateBuffer")
	return r.id()
}

func (r *Recorder) DeleteBuffer(buffer uint32) {
	r.record("DeleteBuffer")
	r.Deleted["buffer"]++
}

func (r *Recorder) VertexAttribData(buffer, attrib uint32, components int32, data []float32) {
	r.record("VertexAttribData")
	r.Attribs[attrib] = append([]float32(nil), data...)
}

func (r *Recorder) IndexData(buffer uint32, data []uint32) {
	r.record("IndexData")
	r.Indices = append([]uint32(nil), data...)
}

func (r *Recorder) DrawArrays(mode gpu.DrawMode, first, count, instances int32) {
	r.record("DrawArrays")
	r.Draws = append(r.Draws, Draw{Mode: mode, First: first, Count: count, Instances: instances, Program: r.Program, VAO: r.VAO})
}

func (r *Recorder) DrawElements(mode gpu.DrawMode, count, firstIndex, instances int32) {
	r.record("DrawElements")
	r.Draws = append(r.Draws, Draw{Indexed: true, Mode: mode, First: firstIndex, Count: count, Instances: instances, Program: r.Program, VAO: r.VAO})
}

func (r *Recorder) CreateTexture2D(width, height int32, rgba []byte, params gpu.TextureParams) uint32 {
	r.record("CreateTexture2D")
	t := r.id()
	r.Textures[t] = Texture{Width: width, Height: height, Params: params, Pixels: rgba}
	return t
}

func (r *Recorder) DeleteTexture(texture uint32) {
	r.record("DeleteTexture")
	r.Deleted["texture"]++
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.record("ActiveTexture")
	r.ActiveUnit = unit
}

func (r *Recorder) BindTexture2D(texture uint32) {
	r.record("BindTexture2D")
	r.Units[r.ActiveUnit] = texture
}

// ReadPixels fills dst with the byte pattern 0, 1, 2, ... wrapping at 256.
func (r *Recorder) ReadPixels(x, y, width, height int32, dst []byte) {
	r.record("ReadPixels")
	for i := range dst {
		dst[i] = byte(i)
	}
}

var _ gpu.Device = (*Recorder)(nil)
