package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/oglrender/capture"
	"github.com/richinsley/oglrender/font"
	"github.com/richinsley/oglrender/glfwcontext"
	"github.com/richinsley/oglrender/gpu"
	"github.com/richinsley/oglrender/gpu/glgpu"
	"github.com/richinsley/oglrender/graphics"
	"github.com/richinsley/oglrender/mesh"
	"github.com/richinsley/oglrender/options"
	"github.com/richinsley/oglrender/renderer"
	"github.com/richinsley/oglrender/shader"
	"github.com/richinsley/oglrender/texture"
	"github.com/richinsley/oglrender/translator"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("OpenGL scene viewer/recorder")
		flag.PrintDefaults()
		return
	}

	var err error
	if *opts.Config != "" {
		err = opts.LoadFile(*opts.Config)
	} else {
		err = opts.Validate()
	}
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	os.Exit(run(opts))
}

func run(opts *options.Options) int {
	if err := glfwcontext.InitGraphics(); err != nil {
		log.Printf("Failed to initialize GLFW: %v", err)
		return -1
	}
	defer glfwcontext.TerminateGraphics()

	cfg := graphics.DefaultBootstrapConfig()
	cfg.Surface = graphics.SurfaceConfig{
		Title:      *opts.Title,
		Width:      *opts.Width,
		Height:     *opts.Height,
		Fullscreen: *opts.Fullscreen,
		Resizable:  true,
	}
	cfg.LockVersion = *opts.LockVersion

	gctx, version, err := graphics.Bootstrap(glfwcontext.NewProvider(), cfg)
	if err != nil {
		var be *graphics.BootstrapError
		if errors.As(err, &be) {
			log.Printf("Could not create an OpenGL context (%s): %v", be.Step, be.Err)
		} else {
			log.Printf("Could not create an OpenGL context: %v", err)
		}
		return -1
	}
	win := gctx.(*glfwcontext.Context)

	dev, err := glgpu.New()
	if err != nil {
		log.Printf("%v", err)
		win.Shutdown()
		return -1
	}
	log.Printf("Running on OpenGL %s (driver %s)", version, dev.Version())

	var fnt *font.Font
	if *opts.FontFile != "" {
		if fnt, err = font.Load(*opts.FontFile, ""); err != nil {
			log.Printf("Falling back to the built-in font: %v", err)
			fnt = nil
		}
	}

	r, err := renderer.NewRenderer(win, dev, log.Default(), fnt)
	if err != nil {
		log.Printf("Failed to create renderer: %v", err)
		win.Shutdown()
		return -1
	}
	scene, err := renderer.NewScene(r)
	if err != nil {
		log.Printf("Failed to create scene: %v", err)
		r.Shutdown()
		return -1
	}
	defer scene.Shutdown()

	obj, err := buildObject(dev, opts)
	if err != nil {
		log.Printf("Failed to build scene: %v", err)
		return 1
	}
	if sh, ok := obj.Shader.(*shader.Shader); ok {
		defer sh.Destroy()
	}
	if tex, ok := obj.Texture.(*texture.Texture); ok {
		defer tex.Destroy(dev)
	}
	scene.AddRenderObject(obj)

	scene.EnableDepthBuffer(true)
	scene.SetViewMatrix(mgl32.LookAtV(mgl32.Vec3{0, 1.5, 3}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}))
	scene.SetLightProperties(mgl32.Vec3{2, 4, 3}, mgl32.Vec3{1, 1, 1}, 20)
	resize := func(w, h int) {
		scene.OnWindowResize(w, h)
		scene.SetProjectionMatrix(mgl32.Perspective(mgl32.DegToRad(45), float32(w)/float32(h), 0.1, 100))
	}
	resize(win.GetFramebufferSize())
	win.SetResizeCallback(resize)

	win.RegisterKeyCallback(glfw.KeyPageUp, func() { win.ShowConsole(true) })
	win.RegisterKeyCallback(glfw.KeyPageDown, func() { win.ShowConsole(false) })
	win.RegisterKeyCallback(glfw.KeyHome, func() { win.SetFullScreen(true) })
	win.RegisterKeyCallback(glfw.KeyEnd, func() { win.SetFullScreen(false) })

	var fixedStep float32
	if *opts.Record != "" {
		w, h := win.GetFramebufferSize()
		rec, err := capture.Start(capture.Config{
			OutputFile: *opts.Record,
			Width:      w,
			Height:     h,
			FPS:        *opts.FPS,
			Codec:      *opts.Codec,
			HWAccel:    *opts.HWAccel,
			FFmpegPath: *opts.FFMPEGPath,
		})
		if err != nil {
			log.Printf("Recording disabled: %v", err)
		} else {
			defer func() {
				if err := rec.Close(); err != nil {
					log.Printf("Recording failed: %v", err)
				}
			}()
			scene.SetFrameSink(rec)
			fixedStep = 1 / float32(*opts.FPS)
		}
	}

	log.Println("Starting render loop...")
	spin := float32(*opts.SpinSpeed)
	spinAxis := mgl32.Vec3{0.3, 1, 0}.Normalize()
	var angle float32
	last := win.Time()
	for !win.ShouldClose() {
		now := win.Time()
		dt := float32(now - last)
		last = now
		if fixedStep > 0 {
			dt = fixedStep
		}
		scene.Update(dt)

		angle += mgl32.DegToRad(spin) * dt
		obj.Transform = mgl32.HomogRotate3D(angle, spinAxis)

		win.SetTitle(fmt.Sprintf("%s - %.2f ms", *opts.Title, dt*1000))
		scene.DrawString("OpenGL Rendering!", mgl32.Vec2{10, 10})
		scene.Render()
	}
	return 0
}

// buildObject loads or generates the mesh and its optional shader and texture.
func buildObject(dev gpu.Device, opts *options.Options) (*renderer.RenderObject, error) {
	var m *mesh.Mesh
	switch {
	case *opts.MeshFile != "":
		var err error
		if m, err = mesh.Load(*opts.MeshFile); err != nil {
			return nil, err
		}
	case *opts.Shape == "sphere":
		m = mesh.Sphere(24, 32)
	default:
		m = mesh.Cube()
	}
	obj := renderer.NewRenderObject(m, nil, nil)

	if *opts.VertexShader != "" {
		var tr shader.Translator
		xl, err := translator.New(context.Background())
		if err != nil {
			log.Printf("ESSL shaders unavailable: %v", err)
		} else {
			tr = xl
		}
		sh, err := shader.Load(dev, tr, *opts.VertexShader, *opts.FragmentShader)
		if err != nil {
			return nil, err
		}
		obj.Shader = sh
	}

	if *opts.TextureFile != "" {
		tex, err := texture.Load(dev, *opts.TextureFile, texture.DefaultOptions)
		if err != nil {
			if sh, ok := obj.Shader.(*shader.Shader); ok {
				sh.Destroy()
			}
			return nil, err
		}
		obj.Texture = tex
	}
	return obj, nil
}
