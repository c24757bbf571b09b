//go:build js && wasm

package main

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/charmbracelet/log"

	"github.com/richinsley/goshaderdrop/catalog"
	"github.com/richinsley/goshaderdrop/preview"
	"github.com/richinsley/goshaderdrop/uniforms"
	"github.com/richinsley/goshaderdrop/webgl"
)

var (
	previews = map[string]*preview.Preview{}
	canvases = map[string]*webgl.Canvas{}
)

// unmount releases the preview's GPU objects, then the canvas handlers.
func unmount(id string) {
	if p, ok := previews[id]; ok {
		p.Unmount()
		delete(previews, id)
	}
	if c, ok := canvases[id]; ok {
		c.Close()
		delete(canvases, id)
	}
}

func showPlaceholder(el js.Value, def *catalog.ShaderDefinition) {
	el.Get("style").Set("background", preview.NewPlaceholder(def).CSS())
}

func mountElement(el js.Value, index int) {
	id := el.Get("id").String()
	if id == "" {
		id = fmt.Sprintf("shader-%d", index)
		el.Set("id", id)
	}
	slug := el.Get("dataset").Get("shader").String()
	def, ok := catalog.ShaderBySlug(slug)
	if !ok {
		log.Warn("unknown shader", "id", id, "shader", slug)
		showPlaceholder(el, nil)
		return
	}
	mode, err := preview.ParseMode(el.Get("dataset").Get("mode").String())
	if err != nil {
		mode = preview.ModePreview
	}

	c, err := webgl.Open(el, webgl.ContextOptions{PreserveDrawingBuffer: mode == preview.ModeThumbnail})
	if err != nil {
		log.Warn("no webgl context", "id", id, "err", err)
		showPlaceholder(el, def)
		return
	}
	canvases[id] = c

	if mode == preview.ModeThumbnail {
		t, err := preview.MountThumbnail(c.Graphics(), def)
		if t == nil {
			showPlaceholder(el, def)
			return
		}
		if err != nil {
			showPlaceholder(el, def)
		}
		c.Listen("mouseenter", func() { t.SetHover(true) })
		c.Listen("mouseleave", func() { t.SetHover(false) })
		previews[id] = t.Preview
		return
	}

	p, err := preview.Mount(c.Graphics(), def, preview.Options{Mode: mode})
	if p == nil {
		showPlaceholder(el, def)
		return
	}
	if err != nil {
		showPlaceholder(el, def)
	}
	previews[id] = p
}

func jsValue(v js.Value) (uniforms.Value, error) {
	switch v.Type() {
	case js.TypeNumber:
		return v.Float(), nil
	case js.TypeBoolean:
		return v.Bool(), nil
	case js.TypeString:
		return v.String(), nil
	}
	return nil, fmt.Errorf("%w: %s", uniforms.ErrUnsupportedValue, v.Type())
}

func stringArray(items []string) js.Value {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return js.ValueOf(out)
}

// withPreview adapts fn to a JS function whose first argument is a canvas
// id. It returns an error message or null.
func withPreview(fn func(p *preview.Preview, args []js.Value) error) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return "canvas id required"
		}
		p, ok := previews[args[0].String()]
		if !ok {
			return fmt.Sprintf("no preview on %q", args[0].String())
		}
		if err := fn(p, args[1:]); err != nil {
			return err.Error()
		}
		return nil
	})
}

func exposeAPI() {
	api := map[string]any{
		"set": withPreview(func(p *preview.Preview, args []js.Value) error {
			if len(args) < 2 {
				return errors.New("set(id, name, value)")
			}
			v, err := jsValue(args[1])
			if err != nil {
				return err
			}
			return p.Set(args[0].String(), v)
		}),
		"reset": withPreview(func(p *preview.Preview, _ []js.Value) error {
			return p.Reset()
		}),
		"play": withPreview(func(p *preview.Preview, _ []js.Value) error {
			p.SetPlaying(true)
			return nil
		}),
		"pause": withPreview(func(p *preview.Preview, _ []js.Value) error {
			p.SetPlaying(false)
			return nil
		}),
		"unmount": js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			unmount(args[0].String())
			return nil
		}),
		"slugs": js.FuncOf(func(this js.Value, args []js.Value) any {
			all := catalog.AllShaders()
			slugs := make([]string, len(all))
			for i, d := range all {
				slugs[i] = d.Slug
			}
			return stringArray(slugs)
		}),
		"tags": js.FuncOf(func(this js.Value, args []js.Value) any {
			return stringArray(catalog.AllTags())
		}),
		"source": js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			def, ok := catalog.ShaderBySlug(args[0].String())
			if !ok {
				return nil
			}
			return def.Source
		}),
	}
	js.Global().Set("goshaderdrop", js.ValueOf(api))
}

func main() {
	nodes := js.Global().Get("document").Call("querySelectorAll", "canvas[data-shader]")
	for i := 0; i < nodes.Length(); i++ {
		mountElement(nodes.Index(i), i)
	}
	exposeAPI()
	log.Info("shader previews mounted", "count", len(previews))
	select {}
}
