package gltest

import (
	"time"

	"github.com/richinsley/goshaderdrop/graphics"
)

// Surface is a fake canvas element with controllable layout and observers.
type Surface struct {
	Width, Height int
	Ratio         float64

	BufferWidth, BufferHeight int

	Options   []graphics.ObserveOptions
	Observers int

	listeners map[int]graphics.ViewportListener
	nextID    int
}

func NewSurface(width, height int, ratio float64) *Surface {
	return &Surface{Width: width, Height: height, Ratio: ratio, listeners: map[int]graphics.ViewportListener{}}
}

func (s *Surface) ClientSize() (int, int)    { return s.Width, s.Height }
func (s *Surface) DevicePixelRatio() float64 { return s.Ratio }

func (s *Surface) SetBufferSize(width, height int) {
	s.BufferWidth, s.BufferHeight = width, height
}

func (s *Surface) Observe(l graphics.ViewportListener, opts graphics.ObserveOptions) func() {
	s.nextID++
	id := s.nextID
	s.listeners[id] = l
	s.Options = append(s.Options, opts)
	s.Observers++
	return func() {
		if _, ok := s.listeners[id]; ok {
			delete(s.listeners, id)
			s.Observers--
		}
	}
}

// Intersect delivers an intersection observer callback.
func (s *Surface) Intersect(visible bool) {
	for _, l := range s.listeners {
		l.SetVisible(visible)
	}
}

// Layout changes the client size and delivers a resize observer callback.
func (s *Surface) Layout(width, height int) {
	s.Width, s.Height = width, height
	for _, l := range s.listeners {
		l.Resize()
	}
}

// StubbornQueue is a FrameQueue whose CancelFrame is ignored, like a browser
// delivering an animation frame that was already queued when it was cancelled.
type StubbornQueue struct {
	graphics.FrameQueue
	Cancels int
}

func (q *StubbornQueue) CancelFrame(graphics.FrameHandle) { q.Cancels++ }

// Canvas assembles a fake canvas around g and s driven by q and a step clock
// starting at start.
func Canvas(g *GL, s *Surface, q graphics.Scheduler, start time.Time) (graphics.Canvas, *graphics.StepClock) {
	clock := graphics.NewStepClock(start)
	return graphics.Canvas{GL: g, Surface: s, Frames: q, Clock: clock}, clock
}
