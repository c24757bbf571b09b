package preview

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/richinsley/goshaderdrop/catalog"
	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/renderer"
	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

type Mode int

const (
	ModePreview Mode = iota
	ModeGallery
	ModeThumbnail
)

func (m Mode) String() string {
	switch m {
	case ModeGallery:
		return "gallery"
	case ModeThumbnail:
		return "thumbnail"
	default:
		return "preview"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "preview":
		return ModePreview, nil
	case "gallery":
		return ModeGallery, nil
	case "thumbnail":
		return ModeThumbnail, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) Config() renderer.Config {
	switch m {
	case ModeGallery:
		return renderer.GalleryConfig()
	case ModeThumbnail:
		return renderer.ThumbnailConfig()
	default:
		return renderer.PreviewConfig()
	}
}

type Options struct {
	// Params overrides individual defaults.
	Params uniforms.Values
	// Speed overrides the speed parameter when non-zero.
	Speed  float64
	Paused bool
	Mode   Mode
	Logger *log.Logger
}

// Preview is one shader mounted on one canvas at a time.
type Preview struct {
	def    *catalog.ShaderDefinition
	params *Params
	mode   Mode
	base   *log.Logger
	logger *log.Logger

	canvas  graphics.Canvas
	home    graphics.Canvas
	session *renderer.Session
	stop    func()

	playing    bool
	fullscreen bool
	unmounted  bool
	err        error
}

// Mount starts def on canvas. Invalid overrides fail before the GPU is
// touched and return a nil Preview. A shader that cannot be compiled still
// returns a Preview, with the placeholder painted and the error reported
// both here and by Err.
func Mount(canvas graphics.Canvas, def *catalog.ShaderDefinition, opts Options) (*Preview, error) {
	params := NewParams(def)
	if err := params.Apply(opts.Params); err != nil {
		return nil, err
	}
	if opts.Speed != 0 {
		params.values[shader.SpeedParam] = opts.Speed
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	p := &Preview{
		def:     def,
		params:  params,
		mode:    opts.Mode,
		base:    logger,
		logger:  logger.With("shader", def.Slug),
		canvas:  canvas,
		playing: !opts.Paused,
	}
	return p, p.attach(canvas, opts.Mode.Config())
}

// MountSource starts a raw fragment shader with no uniform schema.
func MountSource(canvas graphics.Canvas, source string, opts Options) (*Preview, error) {
	def := &catalog.ShaderDefinition{Slug: "custom", Name: "Custom", Source: source}
	return Mount(canvas, def, opts)
}

func (p *Preview) attach(canvas graphics.Canvas, cfg renderer.Config) error {
	p.canvas = canvas
	p.err = nil
	s := renderer.NewSession(canvas, cfg)
	s.SetLogger(p.logger)
	s.SetPlaying(p.playing)
	p.session = s
	if obs, ok := canvas.Surface.(graphics.Observable); ok {
		p.stop = obs.Observe(p, cfg.ObserveOptions())
	}
	if err := s.Mount(p.def.Source, p.params.Values()); err != nil {
		p.degrade(err)
		return err
	}
	return nil
}

func (p *Preview) detach() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	if p.session != nil {
		p.session.Destroy()
	}
}

func (p *Preview) degrade(err error) {
	if p.unmounted {
		return
	}
	p.err = err
	p.Placeholder().Paint(p.canvas.GL)
}

// Set changes one parameter. Speed takes effect on the next frame; any
// other parameter rebuilds the program.
func (p *Preview) Set(name string, v uniforms.Value) error {
	if p.unmounted {
		return renderer.ErrDestroyed
	}
	if err := p.params.Set(name, v); err != nil {
		return err
	}
	return p.sync(name)
}

// SetString is Set for text input.
func (p *Preview) SetString(name, raw string) error {
	if p.unmounted {
		return renderer.ErrDestroyed
	}
	if err := p.params.SetString(name, raw); err != nil {
		return err
	}
	return p.sync(name)
}

func (p *Preview) sync(name string) error {
	if name == shader.SpeedParam {
		p.session.SetSpeed(p.params.Speed())
		return nil
	}
	if err := p.session.SetParams(p.params.Values()); err != nil {
		p.degrade(err)
		return err
	}
	return nil
}

// Reset restores every parameter to its default.
func (p *Preview) Reset() error {
	if p.unmounted {
		return renderer.ErrDestroyed
	}
	p.params.Reset()
	if err := p.session.SetParams(p.params.Values()); err != nil {
		p.degrade(err)
		return err
	}
	return nil
}

func (p *Preview) SetPlaying(playing bool) {
	p.playing = playing
	p.session.SetPlaying(playing)
}

// SetVisible and Resize make a Preview the viewport listener of its canvas.
func (p *Preview) SetVisible(visible bool) { p.session.SetVisible(visible) }
func (p *Preview) Resize()                 { p.session.Resize() }

// SetFullscreen moves the preview to the overlay canvas and back, keeping
// its parameters. The session on the previous canvas is destroyed first.
func (p *Preview) SetFullscreen(on bool, overlay graphics.Canvas) error {
	if p.unmounted || on == p.fullscreen {
		return nil
	}
	p.detach()
	p.fullscreen = on
	if on {
		p.home = p.canvas
		return p.attach(overlay, renderer.PreviewConfig())
	}
	return p.attach(p.home, p.mode.Config())
}

// Swap mounts a different shader on the same canvas with fresh parameters.
func (p *Preview) Swap(def *catalog.ShaderDefinition) error {
	if p.unmounted {
		return renderer.ErrDestroyed
	}
	p.detach()
	p.def = def
	p.params = NewParams(def)
	p.logger = p.base.With("shader", def.Slug)
	cfg := p.mode.Config()
	if p.fullscreen {
		cfg = renderer.PreviewConfig()
	}
	return p.attach(p.canvas, cfg)
}

// Unmount stops observing the canvas and releases the GPU objects before
// returning.
func (p *Preview) Unmount() {
	if p.unmounted {
		return
	}
	p.unmounted = true
	p.detach()
}

func (p *Preview) Definition() *catalog.ShaderDefinition { return p.def }
func (p *Preview) Params() *Params                       { return p.params }
func (p *Preview) Session() *renderer.Session            { return p.session }
func (p *Preview) Playing() bool                         { return p.playing }
func (p *Preview) Fullscreen() bool                      { return p.fullscreen }

// Err is the failure that replaced the shader with its placeholder.
func (p *Preview) Err() error { return p.err }

func (p *Preview) Placeholder() Placeholder { return NewPlaceholder(p.def) }

// Thumbnail is a lazily compiled, paused preview that plays while hovered.
type Thumbnail struct {
	*Preview
}

func MountThumbnail(canvas graphics.Canvas, def *catalog.ShaderDefinition) (*Thumbnail, error) {
	p, err := Mount(canvas, def, Options{Mode: ModeThumbnail, Paused: true})
	if p == nil {
		return nil, err
	}
	return &Thumbnail{Preview: p}, err
}

func (t *Thumbnail) SetHover(hover bool) { t.SetPlaying(hover) }
