//go:build gldebug

package graphics

const DebugContext = true
