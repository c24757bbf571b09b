package preview

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goshaderdrop/catalog"
	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/uniforms"
)

var fallbackStops = []string{"#9333ea", "#ec4899"}

// Placeholder is the static gradient shown in place of a shader that could
// not be compiled or whose platform has no GPU context.
type Placeholder struct {
	Stops []mgl32.Vec3
}

// NewPlaceholder builds the gradient from the shader's default colours.
func NewPlaceholder(def *catalog.ShaderDefinition) Placeholder {
	var p Placeholder
	if def != nil {
		for _, u := range def.Uniforms {
			if u.Type != uniforms.Color {
				continue
			}
			if s, ok := u.Default.(string); ok && uniforms.ValidHex(s) {
				p.Stops = append(p.Stops, uniforms.HexToRgb(s))
			}
		}
	}
	if len(p.Stops) == 0 {
		for _, s := range fallbackStops {
			p.Stops = append(p.Stops, uniforms.HexToRgb(s))
		}
	}
	return p
}

func (p Placeholder) Average() mgl32.Vec3 {
	if len(p.Stops) == 0 {
		return mgl32.Vec3{}
	}
	var sum mgl32.Vec3
	for _, c := range p.Stops {
		sum = sum.Add(c)
	}
	return sum.Mul(1 / float32(len(p.Stops)))
}

// Paint fills the canvas with the gradient's average colour.
func (p Placeholder) Paint(g graphics.GL) {
	if g == nil {
		return
	}
	c := p.Average()
	g.Clear(c[0], c[1], c[2], 1)
}

// CSS renders the gradient as a CSS background.
func (p Placeholder) CSS() string {
	stops := make([]string, len(p.Stops))
	for i, c := range p.Stops {
		stops[i] = uniforms.RgbToHex(c)
	}
	if len(stops) == 1 {
		stops = append(stops, stops[0])
	}
	return fmt.Sprintf("linear-gradient(135deg, %s)", strings.Join(stops, ", "))
}
