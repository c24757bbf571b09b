// Package glbackend runs WebGL 1 shader programs on desktop OpenGL 4.1.
// Sources are translated to GLSL 4.10 before compilation and every uniform
// and attribute lookup goes through the translated names.
package glbackend

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshaderdrop/graphics"
	"github.com/richinsley/goshaderdrop/translator"
)

var glInitOnce sync.Once

type shaderState struct {
	kind         graphics.ShaderKind
	names        map[string]string
	translateLog string
}

// GL implements graphics.GL on the OpenGL context current on the calling
// thread.
type GL struct {
	vao      uint32
	shaders  map[graphics.Object]*shaderState
	attached map[graphics.Object][]graphics.Object
	names    map[graphics.Object]map[string]string

	submitted uint64
}

// New loads the OpenGL entry points for the current context and binds the
// vertex array every draw uses.
func New(ctx graphics.Context) (*GL, error) {
	ctx.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	g := &GL{
		shaders:  map[graphics.Object]*shaderState{},
		attached: map[graphics.Object][]graphics.Object{},
		names:    map[graphics.Object]map[string]string{},
	}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	return g, nil
}

// Destroy deletes the vertex array. Programs are owned by their sessions.
func (g *GL) Destroy() {
	gl.DeleteVertexArrays(1, &g.vao)
}

func glShaderType(kind graphics.ShaderKind) uint32 {
	if kind == graphics.VertexShader {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func (g *GL) CreateShader(kind graphics.ShaderKind) graphics.Object {
	s := graphics.Object(gl.CreateShader(glShaderType(kind)))
	g.shaders[s] = &shaderState{kind: kind}
	return s
}

// ShaderSource translates source before handing it to the driver. A
// translation failure is reported as a compile failure of the shader.
func (g *GL) ShaderSource(s graphics.Object, source string) {
	state, ok := g.shaders[s]
	if !ok {
		return
	}
	out, err := translator.Translate(source, state.kind)
	if err != nil {
		state.translateLog = err.Error()
		return
	}
	state.names = out.Names
	csources, free := gl.Strs(out.Code + "\x00")
	gl.ShaderSource(uint32(s), 1, csources, nil)
	free()
}

func (g *GL) CompileShader(s graphics.Object) {
	if state := g.shaders[s]; state != nil && state.translateLog != "" {
		return
	}
	gl.CompileShader(uint32(s))
}

func (g *GL) ShaderCompiled(s graphics.Object) bool {
	if state := g.shaders[s]; state != nil && state.translateLog != "" {
		return false
	}
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (g *GL) ShaderInfoLog(s graphics.Object) string {
	if state := g.shaders[s]; state != nil && state.translateLog != "" {
		return state.translateLog
	}
	var logLength int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(uint32(s), logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (g *GL) DeleteShader(s graphics.Object) {
	delete(g.shaders, s)
	gl.DeleteShader(uint32(s))
}

func (g *GL) CreateProgram() graphics.Object {
	return graphics.Object(gl.CreateProgram())
}

func (g *GL) AttachShader(p, s graphics.Object) {
	g.attached[p] = append(g.attached[p], s)
	gl.AttachShader(uint32(p), uint32(s))
}

// LinkProgram links p and merges the name maps of its stages.
func (g *GL) LinkProgram(p graphics.Object) {
	names := map[string]string{}
	for _, s := range g.attached[p] {
		if state := g.shaders[s]; state != nil {
			for k, v := range state.names {
				names[k] = v
			}
		}
	}
	g.names[p] = names
	gl.LinkProgram(uint32(p))
}

func (g *GL) ProgramLinked(p graphics.Object) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (g *GL) ProgramInfoLog(p graphics.Object) string {
	var logLength int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &logLength)
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(uint32(p), logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func (g *GL) UseProgram(p graphics.Object) { gl.UseProgram(uint32(p)) }

func (g *GL) DeleteProgram(p graphics.Object) {
	delete(g.attached, p)
	delete(g.names, p)
	gl.DeleteProgram(uint32(p))
}

func (g *GL) CreateBuffer() graphics.Object {
	var b uint32
	gl.GenBuffers(1, &b)
	return graphics.Object(b)
}

func (g *GL) BindBuffer(b graphics.Object) { gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b)) }

func (g *GL) BufferData(data []float32) {
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (g *GL) DeleteBuffer(b graphics.Object) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (g *GL) mapped(p graphics.Object, name string) string {
	if m, ok := g.names[p][name]; ok {
		return m
	}
	return name
}

func (g *GL) AttribLocation(p graphics.Object, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(g.mapped(p, name)+"\x00"))
}

func (g *GL) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (g *GL) VertexAttribPointer(index uint32, size int32) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, size*4, gl.PtrOffset(0))
}

func (g *GL) UniformLocation(p graphics.Object, name string) graphics.Location {
	return graphics.Location(gl.GetUniformLocation(uint32(p), gl.Str(g.mapped(p, name)+"\x00")))
}

func (g *GL) Uniform1f(loc graphics.Location, v float32)    { gl.Uniform1f(int32(loc), v) }
func (g *GL) Uniform2f(loc graphics.Location, x, y float32) { gl.Uniform2f(int32(loc), x, y) }
func (g *GL) Uniform3f(loc graphics.Location, x, y, z float32) {
	gl.Uniform3f(int32(loc), x, y, z)
}

func (g *GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (g *GL) Clear(r, gr, b, a float32) {
	gl.ClearColor(r, gr, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	g.submitted++
}

func (g *GL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	glMode := uint32(gl.TRIANGLES)
	if mode == graphics.TriangleStrip {
		glMode = gl.TRIANGLE_STRIP
	}
	gl.DrawArrays(glMode, first, count)
	g.submitted++
}

// Submitted counts clears and draws, so a host can tell whether the back
// buffer changed since it last presented.
func (g *GL) Submitted() uint64 { return g.submitted }

// ReadPixels reads the back buffer of the default framebuffer, top row
// first.
func (g *GL) ReadPixels(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid read size %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", e)
	}
	FlipRows(img)
	return img, nil
}

// FlipRows turns a bottom-up OpenGL readback into a top-down image.
func FlipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

var (
	_ graphics.GL          = (*GL)(nil)
	_ graphics.PixelReader = (*GL)(nil)
)
