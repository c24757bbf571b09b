// Package preview mounts catalog shaders on canvases: the interactive
// preview with its fullscreen overlay, gallery tiles and hover thumbnails.
package preview

import (
	"errors"
	"fmt"
	"math"

	"github.com/richinsley/goshaderdrop/catalog"
	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

var (
	ErrUnknownParam = errors.New("preview: unknown parameter")
	ErrKindMismatch = errors.New("preview: value does not match parameter kind")
)

// Params is the mutable parameter state of one mounted preview. It is
// seeded from the shader's defaults and never shared between previews.
type Params struct {
	def    *catalog.ShaderDefinition
	values uniforms.Values
}

func NewParams(def *catalog.ShaderDefinition) *Params {
	return &Params{def: def, values: def.Defaults()}
}

func (p *Params) Get(name string) (uniforms.Value, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Set validates v against the parameter's UniformSpec and stores it.
// Range values must be finite and are clamped to min and max. A
// definition without a uniform schema accepts any encodable value.
func (p *Params) Set(name string, v uniforms.Value) error {
	kind, ok := uniforms.KindOf(v)
	if !ok {
		return fmt.Errorf("%w: %s=%v", uniforms.ErrUnsupportedValue, name, v)
	}
	if f, _ := uniforms.Float(v); kind == uniforms.Range && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return fmt.Errorf("%w: %s=%v is not finite", ErrKindMismatch, name, f)
	}
	if len(p.def.Uniforms) == 0 {
		p.values[name] = v
		return nil
	}
	spec, ok := p.def.Uniform(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if kind != spec.Type {
		return fmt.Errorf("%w: %s is %s, got %v", ErrKindMismatch, name, spec.Type, v)
	}
	if kind == uniforms.Range {
		f, _ := uniforms.Float(v)
		v = math.Max(spec.Min, math.Min(spec.Max, f))
	}
	p.values[name] = v
	return nil
}

// SetString parses raw according to the parameter's kind and stores it.
func (p *Params) SetString(name, raw string) error {
	kind := uniforms.Range
	if spec, ok := p.def.Uniform(name); ok {
		kind = spec.Type
	} else if len(p.def.Uniforms) > 0 {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	v, err := uniforms.Parse(kind, raw)
	if err != nil {
		return err
	}
	return p.Set(name, v)
}

// Apply sets every value in overrides, stopping at the first invalid one.
func (p *Params) Apply(overrides uniforms.Values) error {
	for name, v := range overrides {
		if err := p.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Reset replaces the whole state with the shader's defaults.
func (p *Params) Reset() {
	p.values = p.def.Defaults()
}

// Values returns a copy of the current state.
func (p *Params) Values() uniforms.Values {
	return p.values.Clone()
}

// Speed is the time multiplier, 1 when the shader has none.
func (p *Params) Speed() float64 {
	if f, ok := uniforms.Float(p.values[shader.SpeedParam]); ok {
		return f
	}
	return 1
}

// ParseOverrides converts name=value text pairs into typed overrides for
// def, as SetString would store them.
func ParseOverrides(def *catalog.ShaderDefinition, raw map[string]string) (uniforms.Values, error) {
	p := NewParams(def)
	out := uniforms.Values{}
	for name, text := range raw {
		if err := p.SetString(name, text); err != nil {
			return nil, err
		}
		out[name], _ = p.Get(name)
	}
	return out, nil
}
