package renderer

import (
	"fmt"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/shader"
	"github.com/richinsley/goshaderdrop/uniforms"
)

const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
	StageLink     = "link"
)

// ShaderCompileError reports a shader stage that failed to compile, or a
// program that failed to link, together with the driver's info log.
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	if e.Stage == StageLink {
		return fmt.Sprintf("failed to link program: %s", e.Log)
	}
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// Program is a linked shader program with its full-screen quad bound to
// a_position. Uniform locations are looked up once and cached.
type Program struct {
	gl        graphics.GL
	program   graphics.Object
	vertex    graphics.Object
	fragment  graphics.Object
	buffer    graphics.Object
	locations map[string]graphics.Location
	released  bool
}

// BuildProgram compiles and links the two stages, makes the program current
// and uploads the quad. On failure every object created so far is deleted.
func BuildProgram(g graphics.GL, vertexShaderSource, fragmentShaderSource string) (*Program, error) {
	vertexShader, err := compileShader(g, vertexShaderSource, graphics.VertexShader)
	if err != nil {
		return nil, err
	}
	fragmentShader, err := compileShader(g, fragmentShaderSource, graphics.FragmentShader)
	if err != nil {
		g.DeleteShader(vertexShader)
		return nil, err
	}

	program := g.CreateProgram()
	g.AttachShader(program, vertexShader)
	g.AttachShader(program, fragmentShader)
	g.LinkProgram(program)

	fail := func(msg string) (*Program, error) {
		g.DeleteProgram(program)
		g.DeleteShader(vertexShader)
		g.DeleteShader(fragmentShader)
		return nil, &ShaderCompileError{Stage: StageLink, Log: msg}
	}
	if !g.ProgramLinked(program) {
		return fail(g.ProgramInfoLog(program))
	}
	g.UseProgram(program)

	position := g.AttribLocation(program, shader.PositionAttribute)
	if position < 0 {
		return fail(fmt.Sprintf("attribute %s is not active", shader.PositionAttribute))
	}

	buffer := g.CreateBuffer()
	g.BindBuffer(buffer)
	g.BufferData(shader.QuadVertices)
	g.EnableVertexAttribArray(uint32(position))
	g.VertexAttribPointer(uint32(position), 2)

	return &Program{
		gl:        g,
		program:   program,
		vertex:    vertexShader,
		fragment:  fragmentShader,
		buffer:    buffer,
		locations: map[string]graphics.Location{},
	}, nil
}

func compileShader(g graphics.GL, source string, kind graphics.ShaderKind) (graphics.Object, error) {
	s := g.CreateShader(kind)
	g.ShaderSource(s, source)
	g.CompileShader(s)
	if !g.ShaderCompiled(s) {
		logText := g.ShaderInfoLog(s)
		g.DeleteShader(s)
		return 0, &ShaderCompileError{Stage: kind.String(), Log: logText}
	}
	return s, nil
}

// Location returns the cached location of a uniform, NoLocation when the
// linked program does not use it.
func (p *Program) Location(name string) graphics.Location {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := p.gl.UniformLocation(p.program, name)
	p.locations[name] = loc
	return loc
}

// SetFloat writes one to three float components. Writes to uniforms the
// program does not use are skipped.
func (p *Program) SetFloat(name string, v ...float32) {
	if p.released {
		return
	}
	loc := p.Location(name)
	if loc == graphics.NoLocation {
		return
	}
	switch len(v) {
	case 1:
		p.gl.Uniform1f(loc, v[0])
	case 2:
		p.gl.Uniform2f(loc, v[0], v[1])
	case 3:
		p.gl.Uniform3f(loc, v[0], v[1], v[2])
	}
}

// SetParams writes every parameter as u_<name>. The speed parameter scales
// time and is never written.
func (p *Program) SetParams(params uniforms.Values) error {
	for name, v := range params {
		if name == shader.SpeedParam {
			continue
		}
		components, err := uniforms.Encode(v)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		p.SetFloat(shader.UniformName(name), components...)
	}
	return nil
}

// Draw renders the quad with the current uniforms.
func (p *Program) Draw() {
	if p.released {
		return
	}
	p.gl.DrawArrays(graphics.TriangleStrip, 0, shader.QuadVertexCount)
}

// Release deletes the program, both shaders and the quad buffer. It is
// safe to call more than once.
func (p *Program) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	p.gl.DeleteBuffer(p.buffer)
	p.gl.DeleteProgram(p.program)
	p.gl.DeleteShader(p.vertex)
	p.gl.DeleteShader(p.fragment)
}

func checkParams(params uniforms.Values) error {
	for name, v := range params {
		if _, err := uniforms.Encode(v); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
	}
	return nil
}
