package glfwcontext

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderdrop/graphics"
	options "github.com/richinsley/goshaderdrop/options"
)

// Window is a desktop canvas: a GLFW window with an OpenGL 4.1 core
// context that reports its size and visibility like a browser canvas.
type Window struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()

	listeners map[int]graphics.ViewportListener
	nextID    int

	visible    bool
	fullscreen bool
	windowed   [4]int
}

// New creates a window sized from options. A hidden window still has a
// default framebuffer, which is what offline recording renders into.
func New(options *options.ShaderOptions, visible bool) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	title := "goshaderdrop"
	if options.ShaderID != nil && *options.ShaderID != "" {
		title += " - " + *options.ShaderID
	}
	win, err := glfw.CreateWindow(*options.Width, *options.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	w := &Window{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
		listeners:    make(map[int]graphics.ViewportListener),
		visible:      visible,
	}
	win.SetKeyCallback(w.glfwKeyCallback)
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		for _, l := range w.listeners {
			l.SetVisible(!iconified)
		}
	})
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		for _, l := range w.listeners {
			l.Resize()
		}
	})
	return w, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (w *Window) RegisterKeyCallback(key glfw.Key, f func()) {
	w.keyCallbacks[key] = f
}

func (w *Window) glfwKeyCallback(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		win.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := w.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// ToggleFullscreen moves the window onto the primary monitor and back to
// its previous position and size.
func (w *Window) ToggleFullscreen() {
	if w.fullscreen {
		r := w.windowed
		w.window.SetMonitor(nil, r[0], r[1], r[2], r[3], 0)
		w.fullscreen = false
		return
	}
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		log.Warn("no primary monitor, staying windowed")
		return
	}
	x, y := w.window.GetPos()
	width, height := w.window.GetSize()
	w.windowed = [4]int{x, y, width, height}
	mode := monitor.GetVideoMode()
	w.window.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	w.fullscreen = true
}

func (w *Window) Fullscreen() bool { return w.fullscreen }

// ClientSize is the window size in screen coordinates.
func (w *Window) ClientSize() (int, int) {
	return w.window.GetSize()
}

// DevicePixelRatio is the framebuffer to window size ratio, 2 on most
// high density displays.
func (w *Window) DevicePixelRatio() float64 {
	fbWidth, _ := w.window.GetFramebufferSize()
	winWidth, _ := w.window.GetSize()
	if winWidth <= 0 || fbWidth <= 0 {
		return 1
	}
	return float64(fbWidth) / float64(winWidth)
}

// SetBufferSize is a no-op: the default framebuffer follows the window.
func (w *Window) SetBufferSize(width, height int) {}

// Observe reports iconify as visibility and framebuffer changes as resizes.
func (w *Window) Observe(l graphics.ViewportListener, _ graphics.ObserveOptions) func() {
	w.nextID++
	id := w.nextID
	w.listeners[id] = l
	return func() { delete(w.listeners, id) }
}

// idleWait bounds how long Run sleeps in the event queue when nothing was
// drawn, so a resumed loop is picked up within a frame.
const idleWait = 1.0 / 60

// presenter tracks a GL submission counter and reports whether a new frame
// is waiting in the back buffer.
type presenter struct {
	submitted func() uint64
	last      uint64
}

func (p *presenter) ready() bool {
	n := p.submitted()
	if n == p.last {
		return false
	}
	p.last = n
	return true
}

// Run pumps the window until it is closed. Buffers are swapped only after
// something was drawn, so a paused or failed canvas keeps its last frame;
// otherwise the loop waits for events.
func (w *Window) Run(frames *graphics.FrameQueue, submitted func() uint64) {
	p := presenter{submitted: submitted}
	for !w.ShouldClose() {
		frames.Flush(time.Now())
		if p.ready() {
			w.EndFrame()
		} else {
			glfw.WaitEventsTimeout(idleWait)
		}
	}
}

// MakeCurrent makes the context current for the calling goroutine.
// A visible window swaps on vsync; a hidden recording window never waits.
func (w *Window) MakeCurrent() {
	w.window.MakeContextCurrent()
	if w.visible {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
}

func (w *Window) Shutdown() {
	w.listeners = map[int]graphics.ViewportListener{}
	w.window.Destroy()
}

func (w *Window) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *Window) SetShouldClose(close bool) {
	w.window.SetShouldClose(close)
}

func (w *Window) EndFrame() {
	w.window.SwapBuffers()
	glfw.PollEvents()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Info("GLFW initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Info("GLFW terminated")
}

var (
	_ graphics.Context    = (*Window)(nil)
	_ graphics.Surface    = (*Window)(nil)
	_ graphics.Observable = (*Window)(nil)
)
