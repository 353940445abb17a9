// Package graphics defines the window/context collaborator the renderer
// draws through and the protocol that brings such a context up.
package graphics

// Context is a current-able OpenGL context bound to a drawable surface.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the back buffer and pumps window events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
}
