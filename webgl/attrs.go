// Package webgl hosts previews on HTML canvas elements when compiled for
// GOOS=js GOARCH=wasm. Other builds only report graphics.ErrUnsupported.
package webgl

import (
	"fmt"
	"math"
)

// ContextOptions are the WebGL context creation flags that vary per canvas.
type ContextOptions struct {
	// PreserveDrawingBuffer keeps the last frame of a paused canvas
	// readable after compositing.
	PreserveDrawingBuffer bool
}

// Attributes returns the getContext attribute object.
func (o ContextOptions) Attributes() map[string]any {
	return map[string]any{
		"antialias":             false,
		"alpha":                 false,
		"depth":                 false,
		"powerPreference":       "low-power",
		"preserveDrawingBuffer": o.PreserveDrawingBuffer,
	}
}

func rootMargin(px int) string {
	return fmt.Sprintf("%dpx", px)
}

// float32Bytes lays out data little-endian, the byte order of every
// WebGL host.
func float32Bytes(data []float32) []byte {
	out := make([]byte, 4*len(data))
	for i, f := range data {
		bits := math.Float32bits(f)
		out[4*i] = byte(bits)
		out[4*i+1] = byte(bits >> 8)
		out[4*i+2] = byte(bits >> 16)
		out[4*i+3] = byte(bits >> 24)
	}
	return out
}
