package shader

import "regexp"

// ────────────────────────────────── Shared quad ──────────────────────────────────

// VertexSource is the pass-through vertex stage shared by every catalog
// shader. It is written in the WebGL 1 dialect the fragment sources use.
const VertexSource = `attribute vec2 a_position;

void main() {
  gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// QuadVertices covers clip space with two triangles drawn as a strip.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// QuadVertexCount is the number of vertices in QuadVertices.
const QuadVertexCount = 4

// ─────────────────────────────── Reserved names ───────────────────────────────

const (
	PositionAttribute = "a_position"
	TimeUniform       = "u_time"
	ResolutionUniform = "u_resolution"

	// SpeedParam scales u_time instead of being written as a uniform.
	SpeedParam = "speed"

	uniformPrefix = "u_"
)

// UniformName returns the GLSL uniform carrying the named parameter.
func UniformName(param string) string {
	return uniformPrefix + param
}

// ────────────────────────────── Declaration scan ──────────────────────────────

var (
	uniformDecl   = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
	attributeDecl = regexp.MustCompile(`(?m)^\s*attribute\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)
)

func scan(re *regexp.Regexp, src string) map[string]string {
	out := map[string]string{}
	for _, m := range re.FindAllStringSubmatch(src, -1) {
		out[m[2]] = m[1]
	}
	return out
}

// DeclaredUniforms maps each top-level uniform name in src to its GLSL type.
func DeclaredUniforms(src string) map[string]string {
	return scan(uniformDecl, src)
}

// DeclaredAttributes maps each vertex attribute name in src to its GLSL type.
func DeclaredAttributes(src string) map[string]string {
	return scan(attributeDecl, src)
}

// GLSLType is the uniform type a parameter of the given kind is written as.
func GLSLType(kind string) string {
	switch kind {
	case "color":
		return "vec3"
	default:
		return "float"
	}
}
