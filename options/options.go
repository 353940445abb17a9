package options

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options holds every command line setting. Fields are pointers into the
// flag set so a config file can overwrite them after parsing.
type Options struct {
	Width       *int
	Height      *int
	Title       *string
	Fullscreen  *bool
	LockVersion *bool

	Shape          *string // cube or sphere
	MeshFile       *string // MeshGeometry file, overrides Shape
	TextureFile    *string
	VertexShader   *string
	FragmentShader *string
	FontFile       *string // BMFont descriptor, built-in font when empty
	SpinSpeed      *float64

	Record     *string // output video file, empty disables capture
	FPS        *int
	Codec      *string
	HWAccel    *bool
	FFMPEGPath *string

	Config *string
	Help   *bool
}

// Register adds all options to fs.
func Register(fs *flag.FlagSet) *Options {
	return &Options{
		Width:       fs.Int("width", 1280, "Window width"),
		Height:      fs.Int("height", 720, "Window height"),
		Title:       fs.String("title", "OpenGL Rendering", "Window title prefix"),
		Fullscreen:  fs.Bool("fullscreen", false, "Start fullscreen on the primary monitor"),
		LockVersion: fs.Bool("lock-version", false, "Request OpenGL 3.2 instead of the newest version the driver reports"),

		Shape:          fs.String("shape", "cube", "Procedural mesh to draw: cube or sphere"),
		MeshFile:       fs.String("mesh", "", "MeshGeometry (.msh) file to draw instead of the procedural shape"),
		TextureFile:    fs.String("texture", "", "Image applied to the mesh"),
		VertexShader:   fs.String("vert", "", "Vertex shader file (GLSL 410 or ESSL)"),
		FragmentShader: fs.String("frag", "", "Fragment shader file (GLSL 410 or ESSL)"),
		FontFile:       fs.String("font", "", "BMFont .fnt file for debug text"),
		SpinSpeed:      fs.Float64("spin", 45, "Rotation speed in degrees per second"),

		Record:     fs.String("record", "", "Record the window to this video file"),
		FPS:        fs.Int("fps", 60, "Frames per second for recording"),
		Codec:      fs.String("codec", "h264", "Video codec for recording (h264 or hevc)"),
		HWAccel:    fs.Bool("hwaccel", false, "Use the platform's hardware video encoder"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to the ffmpeg binary"),

		Config: fs.String("config", "", "YAML file overriding these options"),
		Help:   fs.Bool("help", false, "Show help message"),
	}
}

type fileOptions struct {
	Width       *int    `yaml:"width"`
	Height      *int    `yaml:"height"`
	Title       *string `yaml:"title"`
	Fullscreen  *bool   `yaml:"fullscreen"`
	LockVersion *bool   `yaml:"lock_version"`

	Shape          *string  `yaml:"shape"`
	MeshFile       *string  `yaml:"mesh"`
	TextureFile    *string  `yaml:"texture"`
	VertexShader   *string  `yaml:"vert"`
	FragmentShader *string  `yaml:"frag"`
	FontFile       *string  `yaml:"font"`
	SpinSpeed      *float64 `yaml:"spin"`

	Record     *string `yaml:"record"`
	FPS        *int    `yaml:"fps"`
	Codec      *string `yaml:"codec"`
	HWAccel    *bool   `yaml:"hwaccel"`
	FFMPEGPath *string `yaml:"ffmpeg"`
}

// LoadFile overlays the keys present in a YAML file onto o. Keys the file
// does not mention keep their current value.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var f fileOptions
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	overlay(o.Width, f.Width)
	overlay(o.Height, f.Height)
	overlay(o.Title, f.Title)
	overlay(o.Fullscreen, f.Fullscreen)
	overlay(o.LockVersion, f.LockVersion)
	overlay(o.Shape, f.Shape)
	overlay(o.MeshFile, f.MeshFile)
	overlay(o.TextureFile, f.TextureFile)
	overlay(o.VertexShader, f.VertexShader)
	overlay(o.FragmentShader, f.FragmentShader)
	overlay(o.FontFile, f.FontFile)
	overlay(o.SpinSpeed, f.SpinSpeed)
	overlay(o.Record, f.Record)
	overlay(o.FPS, f.FPS)
	overlay(o.Codec, f.Codec)
	overlay(o.HWAccel, f.HWAccel)
	overlay(o.FFMPEGPath, f.FFMPEGPath)
	return o.Validate()
}

func overlay[T any](dst, src *T) {
	if src != nil && dst != nil {
		*dst = *src
	}
}

// Validate rejects option combinations the program cannot run with.
func (o *Options) Validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", *o.Width, *o.Height)
	}
	if *o.MeshFile == "" && *o.Shape != "cube" && *o.Shape != "sphere" {
		return fmt.Errorf("unknown shape %q", *o.Shape)
	}
	if (*o.VertexShader == "") != (*o.FragmentShader == "") {
		return fmt.Errorf("-vert and -frag must be given together")
	}
	if *o.Codec != "h264" && *o.Codec != "hevc" {
		return fmt.Errorf("unknown codec %q", *o.Codec)
	}
	if *o.Record != "" && *o.FPS <= 0 {
		return fmt.Errorf("invalid recording rate %d", *o.FPS)
	}
	return nil
}
