//go:build !windows

package glfwcontext

func showConsole(bool) {}
