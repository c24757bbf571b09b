package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/graphics/gltest"
	"github.com/richinsley/goshaderdrop/uniforms"
)

var t0 = time.Date(2025, 1, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	gl      *gltest.GL
	surface *gltest.Surface
	queue   *graphics.FrameQueue
	clock   *graphics.StepClock
	session *Session
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		gl:      gltest.New(),
		surface: gltest.NewSurface(200, 100, 3),
		queue:   &graphics.FrameQueue{},
	}
	var canvas graphics.Canvas
	canvas, f.clock = gltest.Canvas(f.gl, f.surface, f.queue, t0)
	f.session = NewSession(canvas, cfg)
	return f
}

func testParams() uniforms.Values {
	return uniforms.Values{"color": "#ffffff", "amount": 1.0, "enabled": false}
}

func (f *fixture) flushAt(d time.Duration) int {
	return f.queue.Flush(t0.Add(d))
}

func TestSessionMountSizesCanvas(t *testing.T) {
	f := newFixture(PreviewConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := f.session.State(); got != Running {
		t.Errorf("State = %v, want running", got)
	}
	if w, h := f.session.Resolution(); w != 400 || h != 200 {
		t.Errorf("Resolution = %dx%d, want 400x200", w, h)
	}
	if f.surface.BufferWidth != 400 || f.surface.BufferHeight != 200 {
		t.Errorf("buffer = %dx%d, want 400x200", f.surface.BufferWidth, f.surface.BufferHeight)
	}
	if f.gl.LastViewport != [4]int32{0, 0, 400, 200} {
		t.Errorf("viewport = %v", f.gl.LastViewport)
	}
	if got, _ := f.gl.Uniform("u_resolution"); len(got) != 2 || got[0] != 400 || got[1] != 200 {
		t.Errorf("u_resolution = %v, want [400 200]", got)
	}
}

func TestSessionTimeUsesSpeed(t *testing.T) {
	f := newFixture(PreviewConfig())
	params := testParams()
	params["speed"] = 2.0
	if err := f.session.Mount(testFragment, params); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.flushAt(500 * time.Millisecond)
	if got, _ := f.gl.Uniform("u_time"); len(got) != 1 || got[0] != 1 {
		t.Errorf("u_time = %v, want [1]", got)
	}

	f.session.SetSpeed(0.5)
	f.flushAt(time.Second)
	if got, _ := f.gl.Uniform("u_time"); got[0] != 0.5 {
		t.Errorf("u_time after SetSpeed = %v, want 0.5", got[0])
	}
	if f.gl.Compiles != 2 {
		t.Errorf("SetSpeed recompiled: %d compiles", f.gl.Compiles)
	}
}

func TestSessionThrottle(t *testing.T) {
	f := newFixture(GalleryConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	steps := []struct {
		at    time.Duration
		draws int
	}{
		{0, 1},
		{10 * time.Millisecond, 1},
		{30 * time.Millisecond, 1},
		{34 * time.Millisecond, 2},
		{50 * time.Millisecond, 2},
		{70 * time.Millisecond, 3},
	}
	for _, s := range steps {
		f.flushAt(s.at)
		if got := f.session.Draws(); got != s.draws {
			t.Errorf("at %v: draws = %d, want %d", s.at, got, s.draws)
		}
		if f.queue.Pending() != 1 {
			t.Errorf("at %v: pending = %d, want 1", s.at, f.queue.Pending())
		}
	}
}

func TestSessionThrottleRateOverOneSecond(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		max  int
	}{
		{"gallery", GalleryConfig(), 31},
		{"thumbnail", ThumbnailConfig(), 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.cfg)
			if err := f.session.Mount(testFragment, testParams()); err != nil {
				t.Fatalf("Mount: %v", err)
			}
			f.session.SetVisible(true)
			// a 60 Hz display for one second, both ends included
			for i := 0; i <= 60; i++ {
				f.flushAt(time.Duration(i) * time.Second / 60)
			}
			if got := f.session.Draws(); got > tt.max || got < tt.max/2 {
				t.Errorf("draws in 1s = %d, want at most %d", got, tt.max)
			}
		})
	}
}

func TestSessionPausedResizeHoldsFrame(t *testing.T) {
	f := newFixture(PreviewConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.flushAt(0)
	f.flushAt(1500 * time.Millisecond)
	f.session.SetPlaying(false)
	draws := f.session.Draws()

	f.clock.Advance(5 * time.Second)
	f.surface.Layout(50, 40)
	f.session.Resize()
	if got := f.session.Draws(); got != draws+1 {
		t.Errorf("draws after paused resize = %d, want %d", got, draws+1)
	}
	if got, _ := f.gl.Uniform("u_time"); got[0] != 1.5 {
		t.Errorf("u_time after paused resize = %v, want 1.5", got[0])
	}
	if got, _ := f.gl.Uniform("u_resolution"); got[0] != 100 || got[1] != 80 {
		t.Errorf("u_resolution = %v, want [100 80]", got)
	}
}

func TestSessionGalleryCapsDensity(t *testing.T) {
	f := newFixture(GalleryConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if w, h := f.session.Resolution(); w != 200 || h != 100 {
		t.Errorf("Resolution = %dx%d, want 200x100", w, h)
	}
}

func TestSessionResizeUploadsResolution(t *testing.T) {
	f := newFixture(GalleryConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.surface.Layout(800, 600)
	f.session.Resize()
	if got, _ := f.gl.Uniform("u_resolution"); len(got) != 2 || got[0] != 800 || got[1] != 600 {
		t.Errorf("u_resolution = %v, want [800 600]", got)
	}
	if f.surface.BufferWidth != 800 || f.surface.BufferHeight != 600 {
		t.Errorf("buffer = %dx%d, want 800x600", f.surface.BufferWidth, f.surface.BufferHeight)
	}
}

func TestSessionVisibilityGating(t *testing.T) {
	f := newFixture(PreviewConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.session.SetVisible(false)
	if f.session.State() != Idle || f.queue.Pending() != 0 {
		t.Fatalf("hidden: state=%v pending=%d, want idle 0", f.session.State(), f.queue.Pending())
	}
	f.flushAt(time.Second)
	if f.session.Draws() != 0 {
		t.Errorf("drew %d frames while hidden", f.session.Draws())
	}
	f.session.SetVisible(true)
	if f.session.State() != Running || f.queue.Pending() != 1 {
		t.Errorf("visible: state=%v pending=%d, want running 1", f.session.State(), f.queue.Pending())
	}
	f.flushAt(2 * time.Second)
	if f.session.Draws() != 1 {
		t.Errorf("draws = %d, want 1", f.session.Draws())
	}
}

func TestSessionWithoutGatingIgnoresVisibility(t *testing.T) {
	cfg := PreviewConfig()
	cfg.VisibilityGating = false
	f := newFixture(cfg)
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.session.SetVisible(false)
	if f.session.State() != Running {
		t.Errorf("State = %v, want running", f.session.State())
	}
}

func TestSessionSingleChainAfterToggle(t *testing.T) {
	f := newFixture(PreviewConfig())
	q := &gltest.StubbornQueue{}
	canvas, _ := gltest.Canvas(f.gl, f.surface, q, t0)
	s := NewSession(canvas, PreviewConfig())
	if err := s.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	for i := 0; i < 3; i++ {
		s.SetPlaying(false)
		s.SetPlaying(true)
	}
	q.Flush(t0.Add(time.Second))
	if s.Draws() != 1 {
		t.Errorf("draws = %d, want 1 from a single live chain", s.Draws())
	}
	if q.Pending() != 1 {
		t.Errorf("pending = %d, want 1", q.Pending())
	}
}

func TestSessionPausedDoesNotDraw(t *testing.T) {
	f := newFixture(PreviewConfig())
	f.session.SetPlaying(false)
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if f.session.State() != Idle || f.queue.Pending() != 0 {
		t.Errorf("state=%v pending=%d, want idle 0", f.session.State(), f.queue.Pending())
	}
}

func TestSessionDestroy(t *testing.T) {
	f := newFixture(PreviewConfig())
	q := &gltest.StubbornQueue{}
	canvas, _ := gltest.Canvas(f.gl, f.surface, q, t0)
	s := NewSession(canvas, PreviewConfig())
	if err := s.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	s.Destroy()
	s.Destroy()
	if s.State() != Destroyed {
		t.Errorf("State = %v, want destroyed", s.State())
	}
	if sh, pr, b := f.gl.Live(); sh+pr+b != 0 {
		t.Errorf("live after Destroy = %d shaders %d programs %d buffers", sh, pr, b)
	}
	if q.Cancels != 1 {
		t.Errorf("cancels = %d, want 1", q.Cancels)
	}
	q.Flush(t0.Add(time.Second))
	if s.Draws() != 0 || f.gl.Draws != 0 {
		t.Errorf("stale callback drew after Destroy")
	}
	if err := s.SetParams(testParams()); !errors.Is(err, ErrDestroyed) {
		t.Errorf("SetParams after Destroy = %v, want ErrDestroyed", err)
	}
	s.SetPlaying(true)
	s.SetVisible(true)
	s.Resize()
	if s.State() != Destroyed {
		t.Errorf("State = %v after calls on destroyed session", s.State())
	}
}

func TestSessionCompileFailure(t *testing.T) {
	f := newFixture(PreviewConfig())
	f.gl.FailCompile[graphics.FragmentShader] = "ERROR: 0:4: 'u_colour' : undeclared identifier"
	var reported error
	f.session.OnError(func(err error) { reported = err })

	err := f.session.Mount(testFragment, testParams())
	var compileErr *ShaderCompileError
	if !errors.As(err, &compileErr) || compileErr.Stage != StageFragment {
		t.Fatalf("Mount error = %v, want fragment ShaderCompileError", err)
	}
	if f.session.State() != Failed || f.session.Err() != err || reported != err {
		t.Errorf("state=%v err=%v reported=%v", f.session.State(), f.session.Err(), reported)
	}
	if f.queue.Pending() != 0 {
		t.Errorf("failed session scheduled %d frames", f.queue.Pending())
	}
	if sh, pr, b := f.gl.Live(); sh+pr+b != 0 {
		t.Errorf("leaked %d shaders %d programs %d buffers", sh, pr, b)
	}
	if err := f.session.SetParams(testParams()); err != f.session.Err() {
		t.Errorf("SetParams on failed session = %v", err)
	}
}

func TestSessionUnsupportedContext(t *testing.T) {
	s := NewSession(graphics.Canvas{Surface: gltest.NewSurface(10, 10, 1)}, PreviewConfig())
	if err := s.Mount(testFragment, nil); !errors.Is(err, graphics.ErrUnsupported) {
		t.Errorf("Mount = %v, want ErrUnsupported", err)
	}
	if s.State() != Failed {
		t.Errorf("State = %v, want failed", s.State())
	}
}

func TestSessionMountTwice(t *testing.T) {
	f := newFixture(PreviewConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := f.session.Mount(testFragment, testParams()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("second Mount = %v, want ErrAlreadyMounted", err)
	}
}

func TestSessionRejectsUnsupportedValues(t *testing.T) {
	f := newFixture(PreviewConfig())
	err := f.session.Mount(testFragment, uniforms.Values{"amount": []float64{1}})
	if !errors.Is(err, uniforms.ErrUnsupportedValue) {
		t.Errorf("Mount = %v, want ErrUnsupportedValue", err)
	}
	if f.gl.Compiles != 0 {
		t.Errorf("compiled despite bad params")
	}
}

func TestSessionSetParamsRebuilds(t *testing.T) {
	f := newFixture(PreviewConfig())
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.flushAt(time.Second)

	f.clock.Advance(2 * time.Second)
	params := testParams()
	params["color"] = "#0000ff"
	if err := f.session.SetParams(params); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if f.gl.Compiles != 4 {
		t.Errorf("compiles = %d, want 4", f.gl.Compiles)
	}
	if sh, pr, b := f.gl.Live(); sh != 2 || pr != 1 || b != 1 {
		t.Errorf("live = %d shaders %d programs %d buffers, want 2 1 1", sh, pr, b)
	}
	if got, _ := f.gl.Uniform("u_color"); got[2] != 1 || got[0] != 0 {
		t.Errorf("u_color = %v, want blue", got)
	}
	if got, _ := f.gl.Uniform("u_resolution"); len(got) != 2 {
		t.Errorf("u_resolution not rewritten after rebuild")
	}
	if f.session.State() != Running || f.queue.Pending() != 1 {
		t.Errorf("state=%v pending=%d, want running 1", f.session.State(), f.queue.Pending())
	}

	// elapsed time carries across the rebuild
	f.flushAt(3 * time.Second)
	if got, _ := f.gl.Uniform("u_time"); got[0] != 3 {
		t.Errorf("u_time = %v, want 3", got[0])
	}
}

func TestSessionSetParamsWhilePausedRedraws(t *testing.T) {
	f := newFixture(PreviewConfig())
	f.session.SetPlaying(false)
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := f.session.SetParams(testParams()); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if f.session.Draws() != 1 || f.session.State() != Idle {
		t.Errorf("draws=%d state=%v, want 1 idle", f.session.Draws(), f.session.State())
	}
}

func TestSessionLazyInit(t *testing.T) {
	f := newFixture(ThumbnailConfig())
	f.session.SetPlaying(false)
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if f.gl.Compiles != 0 || f.session.State() != Uninitialized {
		t.Fatalf("compiled before visible: compiles=%d state=%v", f.gl.Compiles, f.session.State())
	}

	f.session.SetVisible(true)
	if f.session.State() != Idle {
		t.Errorf("State = %v, want idle", f.session.State())
	}
	if f.session.Draws() != 1 {
		t.Errorf("frozen frame draws = %d, want 1", f.session.Draws())
	}
	if w, h := f.session.Resolution(); w != 150 || h != 75 {
		t.Errorf("Resolution = %dx%d, want 150x75", w, h)
	}

	f.surface.Width, f.surface.Height = 400, 200
	f.session.Resize()
	if w, h := f.session.Resolution(); w != 300 || h != 150 {
		t.Errorf("Resolution after resize = %dx%d, want 300x150", w, h)
	}
	if f.session.Draws() != 2 {
		t.Errorf("draws after resize = %d, want 2", f.session.Draws())
	}

	f.session.SetPlaying(true)
	if f.session.State() != Running {
		t.Errorf("hover: state = %v, want running", f.session.State())
	}
}

func TestSessionResizeIgnoresZeroSize(t *testing.T) {
	f := newFixture(PreviewConfig())
	f.surface.Width, f.surface.Height = 0, 0
	if err := f.session.Mount(testFragment, testParams()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	f.session.Resize()
	if w, h := f.session.Resolution(); w != 0 || h != 0 {
		t.Errorf("Resolution = %dx%d, want untouched", w, h)
	}
	if f.surface.BufferWidth != 0 {
		t.Errorf("buffer resized to %d for an unlaid canvas", f.surface.BufferWidth)
	}

	f.surface.Width, f.surface.Height = 10, 10
	f.session.Resize()
	if w, _ := f.session.Resolution(); w != 20 {
		t.Errorf("Resolution width = %d, want 20", w)
	}
}

func TestStateString(t *testing.T) {
	if got := Running.String(); got != "running" {
		t.Errorf("Running.String() = %q", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("State(42).String() = %q", got)
	}
}
