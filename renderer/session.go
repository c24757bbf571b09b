package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

var (
	ErrDestroyed      = errors.New("renderer: session destroyed")
	ErrAlreadyMounted = errors.New("renderer: session already mounted")
)

type State int

const (
	Uninitialized State = iota
	Compiling
	Idle
	Running
	Destroyed
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Compiling:
		return "compiling"
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session owns one shader program on one canvas and drives its animation
// loop. It must only be used from the goroutine that owns the canvas.
type Session struct {
	canvas graphics.Canvas
	cfg    Config
	logger *log.Logger

	state   State
	err     error
	mounted bool
	source  string
	params  uniforms.Values
	speed   float64
	program *Program

	playing bool
	visible bool

	start     time.Time
	lastFrame time.Time
	handle    graphics.FrameHandle
	chain     uint64

	draws         int
	shown         float32
	width, height int
	onError       func(error)
}

// NewSession prepares a session for canvas. Nothing touches the GPU until
// Mount. A session starts playing; it starts visible unless it initializes
// lazily, in which case the first SetVisible(true) compiles it.
func NewSession(canvas graphics.Canvas, cfg Config) *Session {
	return &Session{
		canvas:  canvas,
		cfg:     cfg,
		logger:  log.Default(),
		speed:   1,
		playing: true,
		visible: !cfg.LazyInit,
	}
}

// SetLogger replaces the logger, log.Default() until set.
func (s *Session) SetLogger(l *log.Logger) { s.logger = l }

// OnError registers a callback for compile, link and context failures.
func (s *Session) OnError(fn func(error)) { s.onError = fn }

// Mount records the start time and builds the program for source, unless
// the session initializes lazily and has not been visible yet.
func (s *Session) Mount(source string, params uniforms.Values) error {
	if s.state == Destroyed {
		return ErrDestroyed
	}
	if s.mounted {
		return ErrAlreadyMounted
	}
	if err := checkParams(params); err != nil {
		return err
	}
	s.mounted = true
	s.source = source
	s.setParams(params)
	s.start = s.canvas.Now()
	if s.cfg.LazyInit && !s.visible {
		s.logger.Debug("deferring shader compile until visible")
		return nil
	}
	return s.initialize()
}

func (s *Session) setParams(params uniforms.Values) {
	s.params = params.Clone()
	if f, ok := uniforms.Float(s.params[shader.SpeedParam]); ok {
		s.speed = f
	}
}

func (s *Session) build() error {
	s.state = Compiling
	if s.canvas.GL == nil {
		return s.fail(graphics.ErrUnsupported)
	}
	p, err := BuildProgram(s.canvas.GL, shader.VertexSource, s.source)
	if err != nil {
		return s.fail(err)
	}
	s.program = p
	if err := p.SetParams(s.params); err != nil {
		return s.fail(err)
	}
	s.state = Idle
	s.applySize()
	return nil
}

func (s *Session) initialize() error {
	if err := s.build(); err != nil {
		return err
	}
	s.logger.Debug("shader program ready", "width", s.width, "height", s.height)
	if s.cfg.DrawOnReady {
		s.draw(s.canvas.Now())
	}
	s.update()
	return nil
}

func (s *Session) fail(err error) error {
	s.cancelChain()
	s.program.Release()
	s.program = nil
	s.state = Failed
	s.err = err
	s.logger.Warn("shader unavailable", "err", err)
	if s.onError != nil {
		s.onError(err)
	}
	return err
}

// SetPlaying starts or pauses the loop.
func (s *Session) SetPlaying(playing bool) {
	s.playing = playing
	s.update()
}

// SetVisible reports whether the canvas intersects the viewport. The first
// true initializes a lazy session.
func (s *Session) SetVisible(visible bool) {
	s.visible = visible
	if visible && s.state == Uninitialized && s.mounted {
		if err := s.initialize(); err != nil {
			return
		}
	}
	s.update()
}

// SetSpeed changes the time multiplier from the next frame on.
func (s *Session) SetSpeed(speed float64) { s.speed = speed }

// SetParams replaces the parameter set. A built program is released and
// rebuilt with the new values; elapsed time carries over.
func (s *Session) SetParams(params uniforms.Values) error {
	switch s.state {
	case Destroyed:
		return ErrDestroyed
	case Failed:
		return s.err
	}
	if err := checkParams(params); err != nil {
		return err
	}
	s.setParams(params)
	if s.state == Uninitialized {
		return nil
	}

	wasRunning := s.state == Running
	s.cancelChain()
	s.program.Release()
	s.program = nil
	if err := s.build(); err != nil {
		return err
	}
	s.logger.Debug("shader program rebuilt", "running", wasRunning)
	s.update()
	// a paused canvas shows the new values
	if s.state == Idle {
		s.redraw()
	}
	return nil
}

// Resize matches the backing buffer to the laid-out size. A canvas with no
// layout yet is left alone.
func (s *Session) Resize() {
	if s.state != Idle && s.state != Running {
		return
	}
	if s.applySize() && s.state == Idle && (s.cfg.DrawOnReady || s.draws > 0) {
		s.redraw()
	}
}

func (s *Session) applySize() bool {
	if s.canvas.Surface == nil {
		return false
	}
	w, h := s.canvas.Surface.ClientSize()
	if w <= 0 || h <= 0 {
		return false
	}
	dpr := s.canvas.Surface.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}
	if s.cfg.MaxDevicePixelRatio > 0 && dpr > s.cfg.MaxDevicePixelRatio {
		dpr = s.cfg.MaxDevicePixelRatio
	}
	bw := max(int(float64(w)*dpr), 1)
	bh := max(int(float64(h)*dpr), 1)

	s.canvas.Surface.SetBufferSize(bw, bh)
	s.canvas.GL.Viewport(0, 0, int32(bw), int32(bh))
	s.program.SetFloat(shader.ResolutionUniform, float32(bw), float32(bh))
	s.width, s.height = bw, bh
	return true
}

// Destroy stops the loop and releases every GPU object. It is idempotent.
func (s *Session) Destroy() {
	if s.state == Destroyed {
		return
	}
	s.cancelChain()
	s.program.Release()
	s.program = nil
	s.state = Destroyed
	s.logger.Debug("session destroyed", "draws", s.draws)
}

func (s *Session) update() {
	want := s.playing && (s.visible || !s.cfg.VisibilityGating)
	switch {
	case s.state == Idle && want:
		s.state = Running
		s.startChain()
	case s.state == Running && !want:
		s.cancelChain()
		s.state = Idle
	}
}

// startChain begins a new callback chain. The first tick draws at once.
func (s *Session) startChain() {
	s.cancelChain()
	s.lastFrame = time.Time{}
	s.schedule()
}

func (s *Session) cancelChain() {
	if s.handle != 0 && s.canvas.Frames != nil {
		s.canvas.Frames.CancelFrame(s.handle)
	}
	s.handle = 0
	s.chain++
}

func (s *Session) schedule() {
	if s.canvas.Frames == nil {
		return
	}
	chain := s.chain
	s.handle = s.canvas.Frames.RequestFrame(func(now time.Time) {
		s.tick(chain, now)
	})
}

func (s *Session) tick(chain uint64, now time.Time) {
	// a callback delivered after its chain was cancelled
	if s.state != Running || chain != s.chain {
		return
	}
	s.handle = 0
	if !s.lastFrame.IsZero() && now.Sub(s.lastFrame) < s.cfg.FrameInterval {
		s.schedule()
		return
	}
	s.lastFrame = now
	s.draw(now)
	s.schedule()
}

func (s *Session) draw(now time.Time) {
	if s.program == nil {
		return
	}
	elapsed := now.Sub(s.start).Seconds()
	s.shown = float32(elapsed * s.speed)
	s.program.SetFloat(shader.TimeUniform, s.shown)
	s.program.Draw()
	s.draws++
}

func (s *Session) State() State { return s.state }

// Err is the failure that put the session in the Failed state.
func (s *Session) Err() error { return s.err }

// Draws counts the frames drawn so far.
func (s *Session) Draws() int { return s.draws }

// Resolution is the current backing buffer size.
func (s *Session) Resolution() (int, int) { return s.width, s.height }

func (s *Session) Playing() bool { return s.playing }
func (s *Session) Visible() bool { return s.visible }
func (s *Session) Speed() float64 { return s.speed }

// Elapsed is the shader time the next frame drawn at now would use.
func (s *Session) Elapsed(now time.Time) float64 {
	return now.Sub(s.start).Seconds() * s.speed
}

// redraw repeats the last frame shown, so a paused canvas holds still
// across rebuilds and resizes. A canvas that never drew starts at now.
func (s *Session) redraw() {
	if s.program == nil {
		return
	}
	if s.draws == 0 {
		s.draw(s.canvas.Now())
		return
	}
	s.program.SetFloat(shader.TimeUniform, s.shown)
	s.program.Draw()
	s.draws++
}
