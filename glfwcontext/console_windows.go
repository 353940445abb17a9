//go:build windows

package glfwcontext

import "golang.org/x/sys/windows"

var (
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetConsoleWindow = kernel32.NewProc("GetConsoleWindow")
	procShowWindow       = user32.NewProc("ShowWindow")
)

const (
	swHide = 0
	swShow = 5
)

func showConsole(show bool) {
	if procGetConsoleWindow.Find() != nil || procShowWindow.Find() != nil {
		return
	}
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		return
	}
	cmd := uintptr(swHide)
	if show {
		cmd = swShow
	}
	procShowWindow.Call(hwnd, cmd)
}
