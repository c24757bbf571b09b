package graphics

import (
	"errors"
	"image"
)

// ErrUnsupported is returned when a drawing context cannot be created for a
// canvas, e.g. a browser without WebGL.
var ErrUnsupported = errors.New("graphics: drawing context unavailable")

// Object is an opaque handle to a shader, program or buffer owned by one GL
// context. Zero is never a valid object.
type Object uint32

// Location is a uniform location. NoLocation marks a uniform the linked
// program does not use; writes to it are skipped.
type Location int32

const NoLocation Location = -1

type ShaderKind int

const (
	VertexShader ShaderKind = iota
	FragmentShader
)

func (k ShaderKind) String() string {
	switch k {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

type DrawMode int

const (
	Triangles DrawMode = iota
	TriangleStrip
)

// GL is the subset of the WebGL 1 rendering context the runtime drives.
// Every implementation is bound to exactly one drawing surface and is only
// used from the goroutine that owns that surface.
type GL interface {
	CreateShader(kind ShaderKind) Object
	ShaderSource(shader Object, source string)
	CompileShader(shader Object)
	ShaderCompiled(shader Object) bool
	ShaderInfoLog(shader Object) string
	DeleteShader(shader Object)

	CreateProgram() Object
	AttachShader(program, shader Object)
	LinkProgram(program Object)
	ProgramLinked(program Object) bool
	ProgramInfoLog(program Object) string
	UseProgram(program Object)
	DeleteProgram(program Object)

	CreateBuffer() Object
	// BindBuffer binds buffer to the ARRAY_BUFFER target.
	BindBuffer(buffer Object)
	// BufferData uploads data to the bound ARRAY_BUFFER as STATIC_DRAW.
	BufferData(data []float32)
	DeleteBuffer(buffer Object)

	// AttribLocation returns -1 when the program has no such attribute.
	AttribLocation(program Object, name string) int32
	EnableVertexAttribArray(index uint32)
	// VertexAttribPointer describes tightly packed float components of the
	// bound ARRAY_BUFFER.
	VertexAttribPointer(index uint32, size int32)

	UniformLocation(program Object, name string) Location
	Uniform1f(loc Location, v float32)
	Uniform2f(loc Location, x, y float32)
	Uniform3f(loc Location, x, y, z float32)

	Viewport(x, y, width, height int32)
	Clear(r, g, b, a float32)
	DrawArrays(mode DrawMode, first, count int32)
}

// PixelReader is implemented by backends that can read the default
// framebuffer back to host memory.
type PixelReader interface {
	ReadPixels(width, height int) (*image.RGBA, error)
}
