package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

//go:embed shaders
var embedded embed.FS

const (
	indexFile  = "index.json"
	dateLayout = "2006-01-02"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the library shipped with the binary. The assets are part
// of the build, so a broken one is a programming error and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "shaders")
		if err != nil {
			panic(err)
		}
		c, err := Load(sub)
		if err != nil {
			panic(fmt.Sprintf("embedded shader catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

type definitionFile struct {
	ShaderDefinition
	CreatedAt string `json:"createdAt"`
}

// Load reads index.json from fsys followed by <slug>.json and <slug>.frag
// for every listed slug, validating each definition.
func Load(fsys fs.FS) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog index: %w", err)
	}
	var slugs []string
	if err := json.Unmarshal(raw, &slugs); err != nil {
		return nil, fmt.Errorf("failed to parse catalog index: %w", err)
	}

	c := &Catalog{bySlug: map[string]*ShaderDefinition{}}
	for _, slug := range slugs {
		if _, dup := c.bySlug[slug]; dup {
			return nil, fmt.Errorf("duplicate shader slug %q", slug)
		}
		d, err := loadDefinition(fsys, slug)
		if err != nil {
			return nil, fmt.Errorf("shader %q: %w", slug, err)
		}
		c.shaders = append(c.shaders, d)
		c.bySlug[slug] = d
	}
	log.Debug("loaded shader catalog", "shaders", len(c.shaders))
	return c, nil
}

func loadDefinition(fsys fs.FS, slug string) (*ShaderDefinition, error) {
	raw, err := fs.ReadFile(fsys, path.Clean(slug+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var f definitionFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	src, err := fs.ReadFile(fsys, path.Clean(slug+".frag"))
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	d := f.ShaderDefinition
	d.Source = string(src)
	if f.CreatedAt != "" {
		d.CreatedAt, err = time.Parse(dateLayout, f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("bad createdAt %q: %w", f.CreatedAt, err)
		}
	}
	if d.DefaultProps == nil {
		d.DefaultProps = uniforms.Values{}
	}
	if d.Slug != slug {
		return nil, fmt.Errorf("slug field %q does not match file name", d.Slug)
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks a definition's uniform schema against itself and its
// GLSL source.
func Validate(d *ShaderDefinition) error {
	if d.Slug == "" || d.Name == "" {
		return fmt.Errorf("slug and name are required")
	}
	declared := shader.DeclaredUniforms(d.Source)
	seen := map[string]bool{}
	for _, u := range d.Uniforms {
		if seen[u.Name] {
			return fmt.Errorf("duplicate uniform %q", u.Name)
		}
		seen[u.Name] = true
		if err := validateUniform(u); err != nil {
			return fmt.Errorf("uniform %q: %w", u.Name, err)
		}
		if u.Name == shader.SpeedParam {
			continue
		}
		glslType, ok := declared[shader.UniformName(u.Name)]
		if !ok {
			return fmt.Errorf("uniform %q: %s not declared in source", u.Name, shader.UniformName(u.Name))
		}
		if want := shader.GLSLType(string(u.Type)); glslType != want {
			return fmt.Errorf("uniform %q: declared %s, want %s", u.Name, glslType, want)
		}
	}
	for name, v := range d.DefaultProps {
		u, ok := d.Uniform(name)
		if !ok {
			continue
		}
		if k, _ := uniforms.KindOf(v); k != u.Type {
			return fmt.Errorf("defaultProps %q: %v is not a %s value", name, v, u.Type)
		}
	}
	return nil
}

func validateUniform(u UniformSpec) error {
	if u.Name == "" {
		return fmt.Errorf("missing name")
	}
	if !u.Type.Valid() {
		return fmt.Errorf("unknown type %q", u.Type)
	}
	kind, ok := uniforms.KindOf(u.Default)
	if !ok || kind != u.Type {
		return fmt.Errorf("default %v is not a %s value", u.Default, u.Type)
	}
	switch u.Type {
	case uniforms.Range:
		def, _ := uniforms.Float(u.Default)
		if u.Min >= u.Max {
			return fmt.Errorf("min %v must be below max %v", u.Min, u.Max)
		}
		if u.Step <= 0 {
			return fmt.Errorf("step %v must be positive", u.Step)
		}
		if def < u.Min || def > u.Max {
			return fmt.Errorf("default %v outside [%v, %v]", def, u.Min, u.Max)
		}
	case uniforms.Color:
		if !uniforms.ValidHex(u.Default.(string)) {
			return fmt.Errorf("default %q is not a #rrggbb colour", u.Default)
		}
	}
	return nil
}
