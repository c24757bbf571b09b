// Package gltest provides recording fakes for the graphics contracts so the
// runtime can be exercised without a GPU.
package gltest

import (
	"fmt"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/shader"
)

type shaderObject struct {
	kind     graphics.ShaderKind
	source   string
	compiled bool
	log      string
}

type programObject struct {
	attached []graphics.Object
	linked   bool
	log      string
	locs     map[string]graphics.Location
}

// GL is an in-memory graphics.GL that records what the runtime asked for.
// Uniform locations exist only for uniforms declared in the attached sources.
type GL struct {
	// FailCompile maps a stage to the info log its compilation reports.
	FailCompile map[graphics.ShaderKind]string
	// FailLink makes LinkProgram fail with this info log.
	FailLink string

	// Uniforms holds the last value written to each uniform name.
	Uniforms map[string][]float32
	// UniformWrites counts every Uniform* call, including writes to NoLocation.
	UniformWrites int
	Draws         int
	LastDrawMode  graphics.DrawMode
	LastViewport  [4]int32
	ClearColor    [4]float32
	Clears        int
	Buffer        []float32
	Current       graphics.Object
	Compiles      int

	next     graphics.Object
	shaders  map[graphics.Object]*shaderObject
	programs map[graphics.Object]*programObject
	buffers  map[graphics.Object]bool
	locNames map[graphics.Location]string
	nextLoc  graphics.Location
	attribs  map[uint32]int32
}

func New() *GL {
	return &GL{
		FailCompile: map[graphics.ShaderKind]string{},
		Uniforms:    map[string][]float32{},
		shaders:     map[graphics.Object]*shaderObject{},
		programs:    map[graphics.Object]*programObject{},
		buffers:     map[graphics.Object]bool{},
		locNames:    map[graphics.Location]string{},
		attribs:     map[uint32]int32{},
	}
}

func (g *GL) alloc() graphics.Object {
	g.next++
	return g.next
}

func (g *GL) CreateShader(kind graphics.ShaderKind) graphics.Object {
	o := g.alloc()
	g.shaders[o] = &shaderObject{kind: kind}
	return o
}

func (g *GL) ShaderSource(s graphics.Object, source string) {
	if sh, ok := g.shaders[s]; ok {
		sh.source = source
	}
}

func (g *GL) CompileShader(s graphics.Object) {
	sh, ok := g.shaders[s]
	if !ok {
		return
	}
	g.Compiles++
	if msg, fail := g.FailCompile[sh.kind]; fail {
		sh.compiled = false
		sh.log = msg
		return
	}
	sh.compiled = true
}

func (g *GL) ShaderCompiled(s graphics.Object) bool {
	sh, ok := g.shaders[s]
	return ok && sh.compiled
}

func (g *GL) ShaderInfoLog(s graphics.Object) string {
	if sh, ok := g.shaders[s]; ok {
		return sh.log
	}
	return ""
}

func (g *GL) DeleteShader(s graphics.Object) { delete(g.shaders, s) }

func (g *GL) CreateProgram() graphics.Object {
	o := g.alloc()
	g.programs[o] = &programObject{locs: map[string]graphics.Location{}}
	return o
}

func (g *GL) AttachShader(p, s graphics.Object) {
	if prog, ok := g.programs[p]; ok {
		prog.attached = append(prog.attached, s)
	}
}

func (g *GL) LinkProgram(p graphics.Object) {
	prog, ok := g.programs[p]
	if !ok {
		return
	}
	if g.FailLink != "" {
		prog.log = g.FailLink
		return
	}
	for _, s := range prog.attached {
		sh, ok := g.shaders[s]
		if !ok || !sh.compiled {
			prog.log = fmt.Sprintf("shader %d not compiled", s)
			return
		}
	}
	prog.linked = true
}

func (g *GL) ProgramLinked(p graphics.Object) bool {
	prog, ok := g.programs[p]
	return ok && prog.linked
}

func (g *GL) ProgramInfoLog(p graphics.Object) string {
	if prog, ok := g.programs[p]; ok {
		return prog.log
	}
	return ""
}

func (g *GL) UseProgram(p graphics.Object) { g.Current = p }

func (g *GL) DeleteProgram(p graphics.Object) {
	delete(g.programs, p)
	if g.Current == p {
		g.Current = 0
	}
}

func (g *GL) CreateBuffer() graphics.Object {
	o := g.alloc()
	g.buffers[o] = true
	return o
}

func (g *GL) BindBuffer(graphics.Object) {}

func (g *GL) BufferData(data []float32) {
	g.Buffer = append([]float32(nil), data...)
}

func (g *GL) DeleteBuffer(b graphics.Object) { delete(g.buffers, b) }

func (g *GL) sources(p graphics.Object) []string {
	prog, ok := g.programs[p]
	if !ok {
		return nil
	}
	var out []string
	for _, s := range prog.attached {
		if sh, ok := g.shaders[s]; ok {
			out = append(out, sh.source)
		}
	}
	return out
}

func (g *GL) AttribLocation(p graphics.Object, name string) int32 {
	for _, src := range g.sources(p) {
		if _, ok := shader.DeclaredAttributes(src)[name]; ok {
			return 0
		}
	}
	return -1
}

func (g *GL) EnableVertexAttribArray(index uint32) { g.attribs[index] = 0 }

func (g *GL) VertexAttribPointer(index uint32, size int32) { g.attribs[index] = size }

// AttribSize reports the component count bound to an attribute index.
func (g *GL) AttribSize(index uint32) int32 { return g.attribs[index] }

func (g *GL) UniformLocation(p graphics.Object, name string) graphics.Location {
	prog, ok := g.programs[p]
	if !ok || !prog.linked {
		return graphics.NoLocation
	}
	if loc, ok := prog.locs[name]; ok {
		return loc
	}
	loc := graphics.NoLocation
	for _, src := range g.sources(p) {
		if _, declared := shader.DeclaredUniforms(src)[name]; declared {
			loc = g.nextLoc
			g.nextLoc++
			g.locNames[loc] = name
			break
		}
	}
	prog.locs[name] = loc
	return loc
}

func (g *GL) write(loc graphics.Location, v ...float32) {
	g.UniformWrites++
	if loc == graphics.NoLocation {
		return
	}
	g.Uniforms[g.locNames[loc]] = v
}

func (g *GL) Uniform1f(loc graphics.Location, v float32)       { g.write(loc, v) }
func (g *GL) Uniform2f(loc graphics.Location, x, y float32)    { g.write(loc, x, y) }
func (g *GL) Uniform3f(loc graphics.Location, x, y, z float32) { g.write(loc, x, y, z) }

func (g *GL) Viewport(x, y, width, height int32) {
	g.LastViewport = [4]int32{x, y, width, height}
}

func (g *GL) Clear(r, gr, b, a float32) {
	g.ClearColor = [4]float32{r, gr, b, a}
	g.Clears++
}

func (g *GL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	g.Draws++
	g.LastDrawMode = mode
}

// Live reports how many shaders, programs and buffers have not been deleted.
func (g *GL) Live() (shaders, programs, buffers int) {
	return len(g.shaders), len(g.programs), len(g.buffers)
}

// Uniform returns the last value written to the named uniform.
func (g *GL) Uniform(name string) ([]float32, bool) {
	v, ok := g.Uniforms[name]
	return v, ok
}
