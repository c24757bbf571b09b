package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderdrop/catalog"
	"github.com/richinsley/goshaderdrop/encoder"
	"github.com/richinsley/goshaderdrop/glbackend"
	"github.com/richinsley/goshaderdrop/glfwcontext"
	"github.com/richinsley/goshaderdrop/graphics"
	options "github.com/richinsley/goshaderdrop/options"
	"github.com/richinsley/goshaderdrop/preview"
)

func init() {
	runtime.LockOSThread()
}

func listShaders(tag string) {
	defs := catalog.AllShaders()
	if tag != "" {
		defs = catalog.Default().WithTag(tag)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Slug, d.Name, strings.Join(d.Tags, ", "))
	}
	tw.Flush()
}

func exportShader(def *catalog.ShaderDefinition) error {
	out := struct {
		*catalog.ShaderDefinition
		CreatedAt string `json:"createdAt,omitempty"`
		Source    string `json:"source"`
	}{ShaderDefinition: def, Source: def.Source}
	if !def.CreatedAt.IsZero() {
		out.CreatedAt = def.CreatedAt.Format(time.DateOnly)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func resolveShader(opts *options.ShaderOptions) (*catalog.ShaderDefinition, error) {
	if *opts.SourceFile != "" {
		src, err := os.ReadFile(*opts.SourceFile)
		if err != nil {
			return nil, err
		}
		return &catalog.ShaderDefinition{Slug: "custom", Name: *opts.SourceFile, Source: string(src)}, nil
	}
	def, ok := catalog.ShaderBySlug(*opts.ShaderID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrNotFound, *opts.ShaderID)
	}
	return def, nil
}

func previewOptions(opts *options.ShaderOptions, def *catalog.ShaderDefinition) (preview.Options, error) {
	mode, err := preview.ParseMode(*opts.Mode)
	if err != nil {
		return preview.Options{}, err
	}
	params, err := preview.ParseOverrides(def, opts.Params)
	if err != nil {
		return preview.Options{}, err
	}
	return preview.Options{
		Params: params,
		Speed:  *opts.Speed,
		Paused: *opts.Paused,
		Mode:   mode,
		Logger: log.Default(),
	}, nil
}

func runInteractive(opts *options.ShaderOptions, def *catalog.ShaderDefinition, popts preview.Options) {
	win, err := glfwcontext.New(opts, true)
	if err != nil {
		log.Fatal("failed to create window", "err", err)
	}
	defer win.Shutdown()

	g, err := glbackend.New(win)
	if err != nil {
		log.Fatal("failed to initialize OpenGL", "err", err)
	}
	defer g.Destroy()

	frames := &graphics.FrameQueue{}
	canvas := graphics.Canvas{GL: g, Surface: win, Frames: frames}
	p, err := preview.Mount(canvas, def, popts)
	if p == nil {
		log.Fatal("failed to mount shader", "err", err)
	}
	if err != nil {
		log.Error("showing placeholder", "shader", def.Slug, "err", err)
	}
	defer p.Unmount()

	win.RegisterKeyCallback(glfw.KeySpace, func() {
		p.SetPlaying(!p.Playing())
	})
	win.RegisterKeyCallback(glfw.KeyR, func() {
		if err := p.Reset(); err != nil {
			log.Error("reset failed", "err", err)
		}
	})
	win.RegisterKeyCallback(glfw.KeyF, win.ToggleFullscreen)
	win.RegisterKeyCallback(glfw.KeyN, func() {
		all := catalog.AllShaders()
		next := all[0]
		for i, d := range all {
			if d.Slug == p.Definition().Slug {
				next = all[(i+1)%len(all)]
			}
		}
		log.Info("switching shader", "shader", next.Slug)
		if err := p.Swap(next); err != nil {
			log.Error("showing placeholder", "shader", next.Slug, "err", err)
		}
	})

	log.Info("starting interactive render loop", "shader", def.Slug, "mode", popts.Mode)
	win.Run(frames, g.Submitted)
}

func runRecording(opts *options.ShaderOptions, def *catalog.ShaderDefinition, popts preview.Options) error {
	// If recording, the window will be hidden (headless mode)
	win, err := glfwcontext.New(opts, false)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Shutdown()

	g, err := glbackend.New(win)
	if err != nil {
		return err
	}
	defer g.Destroy()

	frames := &graphics.FrameQueue{}
	clock := graphics.NewStepClock(time.Now())
	canvas := graphics.Canvas{GL: g, Surface: win, Frames: frames, Clock: clock}
	popts.Mode = preview.ModePreview
	popts.Paused = false
	p, err := preview.Mount(canvas, def, popts)
	if err != nil {
		return err
	}
	defer p.Unmount()

	width, height := p.Session().Resolution()
	count := max(int(*opts.Duration*float64(*opts.FPS)), 1)
	capture := &encoder.Capture{}
	sinks := []encoder.FrameSink{capture}

	var clip *encoder.ClipWriter
	if *opts.OutputFile != "" {
		clip, err = encoder.NewClipWriter(encoder.ClipOptions{
			Path:   *opts.OutputFile,
			Width:  width,
			Height: height,
			FPS:    *opts.FPS,
			Codec:  *opts.Codec,
		})
		if err != nil {
			return err
		}
		sinks = append(sinks, clip)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting offscreen render loop", "shader", def.Slug, "frames", count, "size", fmt.Sprintf("%dx%d", width, height))
	err = encoder.Record(ctx, encoder.Recording{
		Frames:  frames,
		Clock:   clock,
		Pixels:  g,
		Sink:    encoder.Tee(sinks...),
		Width:   width,
		Height:  height,
		FPS:     *opts.FPS,
		Count:   count,
		Present: win.EndFrame,
	})
	if clip != nil {
		if cerr := clip.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	if *opts.Poster != "" {
		f, err := os.Create(*opts.Poster)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := encoder.WritePoster(f, capture.Last, *opts.PosterWidth); err != nil {
			return err
		}
		log.Info("poster written", "path", *opts.Poster)
	}
	return nil
}

func main() {
	params := options.ParamFlags{}
	opts := &options.ShaderOptions{
		ShaderID:    flag.String("shader", "", "Catalog shader slug (from GOSHADERDROP_SHADER env var if not set)"),
		SourceFile:  flag.String("source", "", "Path to a raw fragment shader to run instead of a catalog shader"),
		Help:        flag.Bool("help", false, "Show help message"),
		List:        flag.Bool("list", false, "List catalog shaders and exit"),
		Tags:        flag.Bool("tags", false, "List catalog tags and exit"),
		Tag:         flag.String("tag", "", "Only list shaders carrying this tag"),
		Export:      flag.Bool("export", false, "Print the shader definition and source as JSON and exit"),
		Mode:        flag.String("mode", "preview", "Render preset: preview, gallery or thumbnail"),
		Speed:       flag.Float64("speed", 0, "Override the animation speed"),
		Paused:      flag.Bool("paused", false, "Start paused"),
		Params:      params,
		Duration:    flag.Float64("duration", 5.0, "Duration to record in seconds"),
		FPS:         flag.Int("fps", 30, "Frames per second for recording"),
		Width:       flag.Int("width", 1280, "Width of the window or output"),
		Height:      flag.Int("height", 720, "Height of the window or output"),
		OutputFile:  flag.String("output", "", "Record a preview clip to this file instead of opening a window"),
		Codec:       flag.String("codec", "h264", "Clip codec: h264 or hevc"),
		Poster:      flag.String("poster", "", "Write the last recorded frame to this PNG file"),
		PosterWidth: flag.Int("poster-width", 0, "Scale the poster down to this width"),
		Verbose:     flag.Bool("verbose", false, "Enable debug logging"),
	}
	flag.Var(params, "set", "Override a parameter as name=value (repeatable)")
	flag.Parse()

	if *opts.Help {
		fmt.Println("ShaderDrop previewer and recorder")
		flag.PrintDefaults()
		return
	}
	if *opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	switch {
	case *opts.List || *opts.Tag != "":
		listShaders(*opts.Tag)
		return
	case *opts.Tags:
		for _, tag := range catalog.AllTags() {
			fmt.Println(tag)
		}
		return
	}

	if *opts.ShaderID == "" {
		*opts.ShaderID = os.Getenv("GOSHADERDROP_SHADER")
	}
	if *opts.ShaderID == "" && *opts.SourceFile == "" {
		*opts.ShaderID = catalog.AllShaders()[0].Slug
	}

	def, err := resolveShader(opts)
	if err != nil {
		log.Fatal("unknown shader", "err", err)
	}
	if *opts.Export {
		if err := exportShader(def); err != nil {
			log.Fatal("export failed", "err", err)
		}
		return
	}

	popts, err := previewOptions(opts, def)
	if err != nil {
		log.Fatal("invalid options", "err", err)
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatal("failed to initialize GLFW", "err", err)
	}
	defer glfwcontext.TerminateGraphics()

	if opts.Record() {
		if err := runRecording(opts, def, popts); err != nil {
			log.Fatal("recording failed", "err", err)
		}
		return
	}
	runInteractive(opts, def, popts)
}
