package shader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/richinsley/oglrender/gpu"
)

// Translation is the desktop-GL form of a translated source. Uniforms maps
// each source uniform name to the name it carries in Code.
type Translation struct {
	Code     string
	Uniforms map[string]string
}

// Translator rewrites ESSL sources for the desktop core profile.
type Translator interface {
	Translate(source, stage string) (Translation, error)
}

// Shader is a linked program plus a cache of its uniform locations.
type Shader struct {
	dev       gpu.Device
	program   uint32
	mapped    map[string]string
	locations map[string]int32
}

// New compiles and links a program from desktop GLSL sources.
func New(dev gpu.Device, vertexSource, fragmentSource string) (*Shader, error) {
	program, err := dev.CompileProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	return &Shader{
		dev:       dev,
		program:   program,
		mapped:    make(map[string]string),
		locations: make(map[string]int32),
	}, nil
}

// Load reads a vertex and a fragment source from disk. ESSL sources are run
// through tr first; tr may be nil when only desktop GLSL is loaded.
func Load(dev gpu.Device, tr Translator, vertexPath, fragmentPath string) (*Shader, error) {
	vs, err := os.ReadFile(vertexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vertex shader: %w", err)
	}
	fs, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fragment shader: %w", err)
	}
	s, err := FromSource(dev, tr, string(vs), string(fs))
	if err != nil {
		return nil, fmt.Errorf("%s + %s: %w", vertexPath, fragmentPath, err)
	}
	log.Printf("Loaded shader %s + %s (program %d)", vertexPath, fragmentPath, s.program)
	return s, nil
}

// FromSource is Load without the file reads.
func FromSource(dev gpu.Device, tr Translator, vertexSource, fragmentSource string) (*Shader, error) {
	mapped := make(map[string]string)
	var err error
	if vertexSource, err = translate(tr, vertexSource, "vertex", mapped); err != nil {
		return nil, err
	}
	if fragmentSource, err = translate(tr, fragmentSource, "fragment", mapped); err != nil {
		return nil, err
	}
	s, err := New(dev, vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	s.mapped = mapped
	return s, nil
}

func translate(tr Translator, source, stage string, mapped map[string]string) (string, error) {
	if !IsESSL(source) {
		return source, nil
	}
	if tr == nil {
		return "", fmt.Errorf("%s shader is ESSL but no translator is available", stage)
	}
	out, err := tr.Translate(source, stage)
	if err != nil {
		return "", err
	}
	for name, to := range out.Uniforms {
		mapped[name] = to
	}
	return out.Code, nil
}

// IsESSL reports whether source declares an OpenGL ES shading language version.
func IsESSL(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "#version" {
			return false
		}
		return fields[1] == "100" || (len(fields) > 2 && fields[2] == "es")
	}
	return false
}

// ProgramID is the linked program name. A nil or destroyed shader reports 0.
func (s *Shader) ProgramID() uint32 {
	if s == nil {
		return 0
	}
	return s.program
}

// UniformLocation returns the location of the named uniform, or -1. Names
// are looked up under their translated name when the source was ESSL.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	lookup := name
	if m, ok := s.mapped[name]; ok {
		lookup = m
	}
	loc := s.dev.GetUniformLocation(s.program, lookup)
	s.locations[name] = loc
	return loc
}

func (s *Shader) Destroy() {
	if s.program != 0 {
		s.dev.DeleteProgram(s.program)
		s.program = 0
		s.locations = make(map[string]int32)
	}
}
