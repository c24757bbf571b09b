package graphics

import "time"

// Surface is the drawable element a GL context renders into.
type Surface interface {
	// ClientSize is the laid-out size in logical (CSS) pixels. A surface that
	// has not been laid out yet reports zero.
	ClientSize() (width, height int)
	DevicePixelRatio() float64
	// SetBufferSize sizes the backing pixel buffer.
	SetBufferSize(width, height int)
}

// ViewportListener receives visibility and size changes for one surface.
type ViewportListener interface {
	SetVisible(visible bool)
	Resize()
}

// ObserveOptions mirrors the intersection observer settings: the fraction
// of the element that must be inside the viewport grown by Margin pixels.
type ObserveOptions struct {
	Threshold float64
	Margin    int
}

// Observable is implemented by surfaces that can report visibility and size
// changes. The returned stop function disconnects every observer it created.
type Observable interface {
	Observe(l ViewportListener, opts ObserveOptions) (stop func())
}

// Canvas bundles everything a render session needs from its host.
type Canvas struct {
	GL      GL
	Surface Surface
	Frames  Scheduler
	Clock   Clock
}

// Now reads the canvas clock, falling back to wall time.
func (c Canvas) Now() time.Time {
	if c.Clock == nil {
		return time.Now()
	}
	return c.Clock.Now()
}
