//go:build !(js && wasm)

package webgl

import "github.com/richinsley/goshaderdrop/graphics"

// Canvas is unavailable outside the browser.
type Canvas struct{}

func OpenByID(id string, opts ContextOptions) (*Canvas, error) {
	return nil, graphics.ErrUnsupported
}

func (c *Canvas) Graphics() graphics.Canvas { return graphics.Canvas{} }
