// Package glfwcontext provides windows and OpenGL contexts through GLFW.
package glfwcontext

import (
	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/oglrender/graphics"
)

// Context is a GLFW window with its OpenGL context.
type Context struct {
	window *glfw.Window
	title  string

	// windowed placement, restored when leaving fullscreen
	windowedX, windowedY int
	windowedW, windowedH int

	keyCallbacks map[glfw.Key]func()
	onResize     func(width, height int)
}

func newContext(win *glfw.Window, title string) *Context {
	c := &Context{
		window:       win,
		title:        title,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)
	win.SetFramebufferSizeCallback(c.glfwFramebufferSizeCallback)
	return c
}

// RegisterKeyCallback runs f whenever key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

// SetResizeCallback runs f with the new framebuffer size after each resize.
func (c *Context) SetResizeCallback(f func(width, height int)) {
	c.onResize = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

func (c *Context) glfwFramebufferSizeCallback(w *glfw.Window, width, height int) {
	// minimised windows report 0x0
	if width == 0 || height == 0 {
		return
	}
	if c.onResize != nil {
		c.onResize(width, height)
	}
}

// KeyDown reports whether key is held at the last event poll.
func (c *Context) KeyDown(key glfw.Key) bool {
	return c.window.GetKey(key) == glfw.Press
}

func (c *Context) SetTitle(title string) {
	c.title = title
	c.window.SetTitle(title)
}

func (c *Context) Title() string { return c.title }

// SetFullScreen moves the window to the primary monitor at its native mode,
// or back to its previous windowed placement.
func (c *Context) SetFullScreen(on bool) {
	fullscreen := c.window.GetMonitor() != nil
	if on == fullscreen {
		return
	}
	if on {
		monitor := glfw.GetPrimaryMonitor()
		if monitor == nil {
			return
		}
		c.windowedX, c.windowedY = c.window.GetPos()
		c.windowedW, c.windowedH = c.window.GetSize()
		mode := monitor.GetVideoMode()
		c.window.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		return
	}
	c.window.SetMonitor(nil, c.windowedX, c.windowedY, c.windowedW, c.windowedH, 0)
}

// ShowConsole shows or hides the attached console window. It does nothing
// on platforms without one.
func (c *Context) ShowConsole(show bool) {
	showConsole(show)
}

func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

// Window returns the underlying *glfw.Window.
func (c *Context) Window() *glfw.Window {
	return c.window
}

var _ graphics.Context = (*Context)(nil)
