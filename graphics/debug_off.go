//go:build !gldebug

package graphics

// DebugContext is the default for ContextRequest.Debug. Build with
// -tags gldebug to request debug contexts.
const DebugContext = false
