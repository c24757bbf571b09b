//go:build js && wasm

package webgl

import (
	"fmt"
	"syscall/js"
	"time"

	"github.com/charmbracelet/log"

	"github.com/richinsley/goshaderdrop/graphics"
)

// Canvas is one <canvas> element with its own WebGL context.
type Canvas struct {
	el      js.Value
	gl      *GL
	frames  *Scheduler
	cleanup cleanups
}

// Open creates the WebGL context for el. A browser without WebGL yields
// graphics.ErrUnsupported.
func Open(el js.Value, opts ContextOptions) (*Canvas, error) {
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("no canvas element")
	}
	ctx := el.Call("getContext", "webgl", js.ValueOf(opts.Attributes()))
	if ctx.IsNull() || ctx.IsUndefined() {
		return nil, graphics.ErrUnsupported
	}
	log.Debug("webgl context created", "id", el.Get("id").String())
	return &Canvas{el: el, gl: newGL(ctx), frames: newScheduler()}, nil
}

func OpenByID(id string, opts ContextOptions) (*Canvas, error) {
	el := js.Global().Get("document").Call("getElementById", id)
	if el.IsNull() {
		return nil, fmt.Errorf("no element with id %q", id)
	}
	return Open(el, opts)
}

func (c *Canvas) Element() js.Value { return c.el }

// Listen adds a DOM event handler to the element until Close.
func (c *Canvas) Listen(event string, fn func()) {
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		fn()
		return nil
	})
	c.el.Call("addEventListener", event, f)
	c.cleanup.add(func() {
		c.el.Call("removeEventListener", event, f)
		f.Release()
	})
}

// Close removes every handler added with Listen. The preview mounted on the
// canvas is unmounted separately.
func (c *Canvas) Close() {
	c.cleanup.run()
}

// Graphics returns the canvas as a render target on wall-clock time.
func (c *Canvas) Graphics() graphics.Canvas {
	return graphics.Canvas{GL: c.gl, Surface: c, Frames: c.frames}
}

func (c *Canvas) ClientSize() (int, int) {
	return c.el.Get("clientWidth").Int(), c.el.Get("clientHeight").Int()
}

func (c *Canvas) DevicePixelRatio() float64 {
	v := js.Global().Get("devicePixelRatio")
	if v.Type() != js.TypeNumber {
		return 1
	}
	return v.Float()
}

func (c *Canvas) SetBufferSize(width, height int) {
	if c.el.Get("width").Int() != width {
		c.el.Set("width", width)
	}
	if c.el.Get("height").Int() != height {
		c.el.Set("height", height)
	}
}

// Observe wires an IntersectionObserver to SetVisible and a ResizeObserver
// to Resize.
func (c *Canvas) Observe(l graphics.ViewportListener, opts graphics.ObserveOptions) func() {
	onIntersect := js.FuncOf(func(this js.Value, args []js.Value) any {
		entries := args[0]
		for i := 0; i < entries.Length(); i++ {
			l.SetVisible(entries.Index(i).Get("isIntersecting").Bool())
		}
		return nil
	})
	onResize := js.FuncOf(func(this js.Value, args []js.Value) any {
		l.Resize()
		return nil
	})

	io := js.Global().Get("IntersectionObserver").New(onIntersect, js.ValueOf(map[string]any{
		"threshold":  opts.Threshold,
		"rootMargin": rootMargin(opts.Margin),
	}))
	io.Call("observe", c.el)
	ro := js.Global().Get("ResizeObserver").New(onResize)
	ro.Call("observe", c.el)

	return func() {
		io.Call("disconnect")
		ro.Call("disconnect")
		onIntersect.Release()
		onResize.Release()
	}
}

type pendingFrame struct {
	id int
	fn js.Func
}

// Scheduler issues requestAnimationFrame callbacks and releases each
// js.Func once it has run or been cancelled.
type Scheduler struct {
	window  js.Value
	next    graphics.FrameHandle
	pending map[graphics.FrameHandle]pendingFrame
}

func newScheduler() *Scheduler {
	return &Scheduler{window: js.Global(), pending: map[graphics.FrameHandle]pendingFrame{}}
}

func (s *Scheduler) RequestFrame(fn graphics.FrameFunc) graphics.FrameHandle {
	s.next++
	h := s.next
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if p, ok := s.pending[h]; ok {
			delete(s.pending, h)
			p.fn.Release()
		}
		fn(time.Now())
		return nil
	})
	id := s.window.Call("requestAnimationFrame", cb).Int()
	s.pending[h] = pendingFrame{id: id, fn: cb}
	return h
}

func (s *Scheduler) CancelFrame(h graphics.FrameHandle) {
	p, ok := s.pending[h]
	if !ok {
		return
	}
	delete(s.pending, h)
	s.window.Call("cancelAnimationFrame", p.id)
	p.fn.Release()
}

var (
	_ graphics.Surface    = (*Canvas)(nil)
	_ graphics.Observable = (*Canvas)(nil)
	_ graphics.Scheduler  = (*Scheduler)(nil)
)
