package graphics

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
)

// Step names a stage of Bootstrap, for error reporting.
type Step string

const (
	StepSurface Step = "acquire drawing surface"
	StepFormat  Step = "negotiate pixel format"
	StepProbe   Step = "create probe context"
	StepVersion Step = "query driver version"
	StepContext Step = "create core context"
)

// BootstrapError reports which stage of context creation failed. Any
// BootstrapError leaves no usable context behind.
type BootstrapError struct {
	Step Step
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("context bootstrap failed to %s: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

var ErrUnsupportedVersion = errors.New("driver does not support the required OpenGL version")

// Version is an OpenGL major.minor pair.
type Version struct {
	Major, Minor int
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// Less reports whether v is an older version than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// ParseVersion extracts major.minor from a GL_VERSION string such as
// "4.6.0 NVIDIA 535.54" or "OpenGL ES 3.2 Mesa 23.0".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("unrecognised version string %q", s)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, fmt.Errorf("unrecognised version string %q: %w", s, err)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, fmt.Errorf("unrecognised version string %q: %w", s, err)
	}
	return Version{Major: major, Minor: minor}, nil
}

// SurfaceConfig describes the window to draw into.
type SurfaceConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	Resizable  bool
}

// SurfaceFormat is the pixel format asked of the surface.
type SurfaceFormat struct {
	ColorBits      int
	DepthBits      int
	StencilBits    int
	DoubleBuffered bool
}

// ContextRequest is the attribute set for the final context.
type ContextRequest struct {
	Version           Version
	CoreProfile       bool
	ForwardCompatible bool
	Debug             bool
}

// Surface is a provider-specific drawable handle.
type Surface interface {
	Size() (width, height int)
}

// ProbeContext is a throwaway context that exists only so the driver can be
// asked what it supports before the real context is requested.
type ProbeContext interface {
	DriverVersion() (string, error)
	Destroy()
}

// Provider creates surfaces and contexts for one windowing system.
type Provider interface {
	AcquireSurface(cfg SurfaceConfig) (Surface, error)
	NegotiateFormat(s Surface, f SurfaceFormat) error
	CreateProbeContext(s Surface) (ProbeContext, error)
	CreateContext(s Surface, req ContextRequest) (Context, error)
}

type BootstrapConfig struct {
	Surface    SurfaceConfig
	Format     SurfaceFormat
	MinVersion Version
	// LockVersion requests MinVersion instead of the version the probe
	// reported.
	LockVersion bool
	Debug       bool
}

// DefaultBootstrapConfig asks for a double buffered RGBA8 surface with a
// 24-bit depth and 8-bit stencil buffer and at least OpenGL 3.2.
func DefaultBootstrapConfig() BootstrapConfig {
	return BootstrapConfig{
		Surface: SurfaceConfig{Title: "oglrender", Width: 1280, Height: 720, Resizable: true},
		Format: SurfaceFormat{
			ColorBits:      32,
			DepthBits:      24,
			StencilBits:    8,
			DoubleBuffered: true,
		},
		MinVersion: Version{Major: 3, Minor: 2},
		Debug:      DebugContext,
	}
}

// Bootstrap runs probe context -> capability query -> real context. The
// probe is needed because the entry points for creating a versioned core
// context are only reachable once some context exists. On success the
// returned context is current and the probe is gone.
func Bootstrap(p Provider, cfg BootstrapConfig) (Context, Version, error) {
	surface, err := p.AcquireSurface(cfg.Surface)
	if err != nil {
		return nil, Version{}, &BootstrapError{Step: StepSurface, Err: err}
	}

	if err := p.NegotiateFormat(surface, cfg.Format); err != nil {
		return nil, Version{}, &BootstrapError{Step: StepFormat, Err: err}
	}

	probe, err := p.CreateProbeContext(surface)
	if err != nil {
		return nil, Version{}, &BootstrapError{Step: StepProbe, Err: err}
	}

	version, err := queryVersion(probe, cfg.MinVersion)
	if err != nil {
		probe.Destroy()
		return nil, Version{}, &BootstrapError{Step: StepVersion, Err: err}
	}
	if cfg.LockVersion {
		version = cfg.MinVersion
	}

	ctx, err := p.CreateContext(surface, ContextRequest{
		Version:           version,
		CoreProfile:       true,
		ForwardCompatible: true,
		Debug:             cfg.Debug,
	})
	if err != nil {
		probe.Destroy()
		return nil, Version{}, &BootstrapError{Step: StepContext, Err: err}
	}

	ctx.MakeCurrent()
	probe.Destroy()

	log.Printf("Initialised OpenGL %s rendering context", version)
	return ctx, version, nil
}

func queryVersion(probe ProbeContext, min Version) (Version, error) {
	s, err := probe.DriverVersion()
	if err != nil {
		return Version{}, err
	}
	v, err := ParseVersion(s)
	if err != nil {
		return Version{}, err
	}
	if v.Less(min) {
		return Version{}, fmt.Errorf("%w: driver reports %s, need %s", ErrUnsupportedVersion, v, min)
	}
	return v, nil
}
