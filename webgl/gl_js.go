//go:build js && wasm

package webgl

import (
	"syscall/js"

	"github.com/richinsley/goshaderdrop/graphics"
)

type glConsts struct {
	arrayBuffer    int
	staticDraw     int
	floatType      int
	triangles      int
	triangleStrip  int
	colorBufferBit int
	compileStatus  int
	linkStatus     int
	vertexShader   int
	fragmentShader int
}

// GL implements graphics.GL on a WebGLRenderingContext. JS objects are
// kept in a table and handed out as small integer handles.
type GL struct {
	gl     js.Value
	consts glConsts

	next    uint32
	objects map[graphics.Object]js.Value

	nextLoc   graphics.Location
	locations map[graphics.Location]js.Value
	owned     map[graphics.Object][]graphics.Location

	uint8Array js.Value
}

func newGL(ctx js.Value) *GL {
	g := &GL{
		gl:         ctx,
		objects:    map[graphics.Object]js.Value{},
		locations:  map[graphics.Location]js.Value{},
		owned:      map[graphics.Object][]graphics.Location{},
		uint8Array: js.Global().Get("Uint8Array"),
	}
	g.consts = glConsts{
		arrayBuffer:    ctx.Get("ARRAY_BUFFER").Int(),
		staticDraw:     ctx.Get("STATIC_DRAW").Int(),
		floatType:      ctx.Get("FLOAT").Int(),
		triangles:      ctx.Get("TRIANGLES").Int(),
		triangleStrip:  ctx.Get("TRIANGLE_STRIP").Int(),
		colorBufferBit: ctx.Get("COLOR_BUFFER_BIT").Int(),
		compileStatus:  ctx.Get("COMPILE_STATUS").Int(),
		linkStatus:     ctx.Get("LINK_STATUS").Int(),
		vertexShader:   ctx.Get("VERTEX_SHADER").Int(),
		fragmentShader: ctx.Get("FRAGMENT_SHADER").Int(),
	}
	return g
}

func (g *GL) store(v js.Value) graphics.Object {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	g.next++
	o := graphics.Object(g.next)
	g.objects[o] = v
	return o
}

func (g *GL) object(o graphics.Object) js.Value {
	if v, ok := g.objects[o]; ok {
		return v
	}
	return js.Null()
}

func (g *GL) CreateShader(kind graphics.ShaderKind) graphics.Object {
	t := g.consts.fragmentShader
	if kind == graphics.VertexShader {
		t = g.consts.vertexShader
	}
	return g.store(g.gl.Call("createShader", t))
}

func (g *GL) ShaderSource(s graphics.Object, source string) {
	g.gl.Call("shaderSource", g.object(s), source)
}

func (g *GL) CompileShader(s graphics.Object) { g.gl.Call("compileShader", g.object(s)) }

func (g *GL) ShaderCompiled(s graphics.Object) bool {
	return g.gl.Call("getShaderParameter", g.object(s), g.consts.compileStatus).Truthy()
}

func (g *GL) ShaderInfoLog(s graphics.Object) string {
	v := g.gl.Call("getShaderInfoLog", g.object(s))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (g *GL) DeleteShader(s graphics.Object) {
	g.gl.Call("deleteShader", g.object(s))
	delete(g.objects, s)
}

func (g *GL) CreateProgram() graphics.Object { return g.store(g.gl.Call("createProgram")) }

func (g *GL) AttachShader(p, s graphics.Object) {
	g.gl.Call("attachShader", g.object(p), g.object(s))
}

func (g *GL) LinkProgram(p graphics.Object) { g.gl.Call("linkProgram", g.object(p)) }

func (g *GL) ProgramLinked(p graphics.Object) bool {
	return g.gl.Call("getProgramParameter", g.object(p), g.consts.linkStatus).Truthy()
}

func (g *GL) ProgramInfoLog(p graphics.Object) string {
	v := g.gl.Call("getProgramInfoLog", g.object(p))
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (g *GL) UseProgram(p graphics.Object) { g.gl.Call("useProgram", g.object(p)) }

func (g *GL) DeleteProgram(p graphics.Object) {
	g.gl.Call("deleteProgram", g.object(p))
	delete(g.objects, p)
	for _, loc := range g.owned[p] {
		delete(g.locations, loc)
	}
	delete(g.owned, p)
}

func (g *GL) CreateBuffer() graphics.Object { return g.store(g.gl.Call("createBuffer")) }

func (g *GL) BindBuffer(b graphics.Object) {
	g.gl.Call("bindBuffer", g.consts.arrayBuffer, g.object(b))
}

func (g *GL) BufferData(data []float32) {
	raw := float32Bytes(data)
	bytes := g.uint8Array.New(len(raw))
	js.CopyBytesToJS(bytes, raw)
	typed := js.Global().Get("Float32Array").New(bytes.Get("buffer"))
	g.gl.Call("bufferData", g.consts.arrayBuffer, typed, g.consts.staticDraw)
}

func (g *GL) DeleteBuffer(b graphics.Object) {
	g.gl.Call("deleteBuffer", g.object(b))
	delete(g.objects, b)
}

func (g *GL) AttribLocation(p graphics.Object, name string) int32 {
	return int32(g.gl.Call("getAttribLocation", g.object(p), name).Int())
}

func (g *GL) EnableVertexAttribArray(index uint32) {
	g.gl.Call("enableVertexAttribArray", index)
}

func (g *GL) VertexAttribPointer(index uint32, size int32) {
	g.gl.Call("vertexAttribPointer", index, size, g.consts.floatType, false, 0, 0)
}

func (g *GL) UniformLocation(p graphics.Object, name string) graphics.Location {
	v := g.gl.Call("getUniformLocation", g.object(p), name)
	if v.IsNull() {
		return graphics.NoLocation
	}
	g.nextLoc++
	g.locations[g.nextLoc] = v
	g.owned[p] = append(g.owned[p], g.nextLoc)
	return g.nextLoc
}

func (g *GL) Uniform1f(loc graphics.Location, v float32) {
	g.gl.Call("uniform1f", g.locations[loc], v)
}

func (g *GL) Uniform2f(loc graphics.Location, x, y float32) {
	g.gl.Call("uniform2f", g.locations[loc], x, y)
}

func (g *GL) Uniform3f(loc graphics.Location, x, y, z float32) {
	g.gl.Call("uniform3f", g.locations[loc], x, y, z)
}

func (g *GL) Viewport(x, y, width, height int32) {
	g.gl.Call("viewport", x, y, width, height)
}

func (g *GL) Clear(r, gr, b, a float32) {
	g.gl.Call("clearColor", r, gr, b, a)
	g.gl.Call("clear", g.consts.colorBufferBit)
}

func (g *GL) DrawArrays(mode graphics.DrawMode, first, count int32) {
	m := g.consts.triangles
	if mode == graphics.TriangleStrip {
		m = g.consts.triangleStrip
	}
	g.gl.Call("drawArrays", m, first, count)
}

var _ graphics.GL = (*GL)(nil)
