package renderer

import (
	"errors"
	"testing"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/graphics/gltest"
	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

const testFragment = `precision highp float;
uniform vec2 u_resolution;
uniform float u_time;
uniform vec3 u_color;
uniform float u_amount;
uniform float u_enabled;
void main() {
  gl_FragColor = vec4(u_color * u_amount * u_enabled, 1.0);
}
`

func TestBuildProgram(t *testing.T) {
	g := gltest.New()
	p, err := BuildProgram(g, shader.VertexSource, testFragment)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	if g.Current == 0 {
		t.Error("program not made current")
	}
	if len(g.Buffer) != len(shader.QuadVertices) {
		t.Errorf("uploaded %d floats, want %d", len(g.Buffer), len(shader.QuadVertices))
	}
	if got := g.AttribSize(0); got != 2 {
		t.Errorf("a_position size = %d, want 2", got)
	}

	p.Draw()
	if g.Draws != 1 || g.LastDrawMode != graphics.TriangleStrip {
		t.Errorf("Draw: draws=%d mode=%v, want 1 strip", g.Draws, g.LastDrawMode)
	}

	p.Release()
	p.Release()
	if s, pr, b := g.Live(); s+pr+b != 0 {
		t.Errorf("after Release live = %d shaders %d programs %d buffers", s, pr, b)
	}
}

func TestBuildProgramFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(g *gltest.GL)
		vertex    string
		wantStage string
	}{
		{
			name:      "vertex compile",
			setup:     func(g *gltest.GL) { g.FailCompile[graphics.VertexShader] = "0:1: bad vertex" },
			vertex:    shader.VertexSource,
			wantStage: StageVertex,
		},
		{
			name:      "fragment compile",
			setup:     func(g *gltest.GL) { g.FailCompile[graphics.FragmentShader] = "0:3: syntax error" },
			vertex:    shader.VertexSource,
			wantStage: StageFragment,
		},
		{
			name:      "link",
			setup:     func(g *gltest.GL) { g.FailLink = "varying mismatch" },
			vertex:    shader.VertexSource,
			wantStage: StageLink,
		},
		{
			name:      "missing position attribute",
			setup:     func(*gltest.GL) {},
			vertex:    "void main() { gl_Position = vec4(0.0); }\n",
			wantStage: StageLink,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gltest.New()
			tt.setup(g)
			p, err := BuildProgram(g, tt.vertex, testFragment)
			if p != nil {
				t.Error("BuildProgram returned a program on failure")
			}
			var compileErr *ShaderCompileError
			if !errors.As(err, &compileErr) {
				t.Fatalf("error = %v, want *ShaderCompileError", err)
			}
			if compileErr.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", compileErr.Stage, tt.wantStage)
			}
			if s, pr, b := g.Live(); s+pr+b != 0 {
				t.Errorf("leaked %d shaders %d programs %d buffers", s, pr, b)
			}
		})
	}
}

func TestProgramSetParams(t *testing.T) {
	g := gltest.New()
	p, err := BuildProgram(g, shader.VertexSource, testFragment)
	if err != nil {
		t.Fatalf("BuildProgram: %v", err)
	}
	err = p.SetParams(uniforms.Values{
		"color":   "#ff0000",
		"amount":  0.5,
		"enabled": true,
		"speed":   2.0,
		"unused":  1.0,
	})
	if err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	checks := map[string][]float32{
		"u_color":   {1, 0, 0},
		"u_amount":  {0.5},
		"u_enabled": {1},
	}
	for name, want := range checks {
		got, ok := g.Uniform(name)
		if !ok || len(got) != len(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s = %v, want %v", name, got, want)
			}
		}
	}
	if _, ok := g.Uniform("u_speed"); ok {
		t.Error("speed written as a uniform")
	}
	if _, ok := g.Uniform("u_unused"); ok {
		t.Error("undeclared uniform written")
	}

	if err := p.SetParams(uniforms.Values{"color": struct{}{}}); !errors.Is(err, uniforms.ErrUnsupportedValue) {
		t.Errorf("SetParams(struct) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestShaderCompileErrorMessage(t *testing.T) {
	tests := []struct {
		err  *ShaderCompileError
		want string
	}{
		{&ShaderCompileError{Stage: StageFragment, Log: "oops"}, "failed to compile fragment shader: oops"},
		{&ShaderCompileError{Stage: StageLink, Log: "oops"}, "failed to link program: oops"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
