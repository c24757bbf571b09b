// Package catalog holds the shader library: metadata, uniform schema and
// GLSL source for every shader, looked up by slug.
package catalog

import (
	"errors"
	"sort"
	"time"

	"github.com/richinsley/goshaderdrop/uniforms"
)

var ErrNotFound = errors.New("catalog: shader not found")

// --- Structs for shader definitions ---

// UniformSpec describes one author-tunable parameter. Min, Max and Step are
// only meaningful for range uniforms.
type UniformSpec struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Type    uniforms.Kind  `json:"type"`
	Default uniforms.Value `json:"default"`
	Min     float64        `json:"min,omitempty"`
	Max     float64        `json:"max,omitempty"`
	Step    float64        `json:"step,omitempty"`
}

type ShaderDefinition struct {
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Tags         []string        `json:"tags"`
	Author       string          `json:"author"`
	AuthorURL    string          `json:"authorUrl,omitempty"`
	CreatedAt    time.Time       `json:"-"`
	Uniforms     []UniformSpec   `json:"uniforms"`
	DefaultProps uniforms.Values `json:"defaultProps"`

	// Source is the fragment shader text, served verbatim to viewers.
	Source string `json:"-"`
}

// Uniform returns the UniformSpec of the named parameter.
func (d *ShaderDefinition) Uniform(name string) (UniformSpec, bool) {
	for _, u := range d.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return UniformSpec{}, false
}

// Defaults returns a fresh parameter map: defaultProps overlaid by each
// uniform's own default.
func (d *ShaderDefinition) Defaults() uniforms.Values {
	out := d.DefaultProps.Clone()
	for _, u := range d.Uniforms {
		out[u.Name] = u.Default
	}
	return out
}

// HasTag reports whether the shader carries tag.
func (d *ShaderDefinition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Catalog is an immutable, ordered shader library.
type Catalog struct {
	shaders []*ShaderDefinition
	bySlug  map[string]*ShaderDefinition
}

// All returns the shaders in catalog order.
func (c *Catalog) All() []*ShaderDefinition {
	return append([]*ShaderDefinition(nil), c.shaders...)
}

func (c *Catalog) BySlug(slug string) (*ShaderDefinition, bool) {
	d, ok := c.bySlug[slug]
	return d, ok
}

// Tags returns every tag used by any shader, sorted and without duplicates.
func (c *Catalog) Tags() []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range c.shaders {
		for _, t := range d.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// WithTag returns the shaders carrying tag, in catalog order.
func (c *Catalog) WithTag(tag string) []*ShaderDefinition {
	var out []*ShaderDefinition
	for _, d := range c.shaders {
		if d.HasTag(tag) {
			out = append(out, d)
		}
	}
	return out
}

// --- Package-level access to the embedded library ---

func AllShaders() []*ShaderDefinition { return Default().All() }

func ShaderBySlug(slug string) (*ShaderDefinition, bool) { return Default().BySlug(slug) }

func AllTags() []string { return Default().Tags() }
