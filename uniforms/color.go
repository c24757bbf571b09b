// Package uniforms converts author-facing parameter values into the float
// vectors written to shader uniforms.
package uniforms

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})$`)

// HexToRgb parses "#rrggbb" or "rrggbb" (any case) into channels in [0,1].
// Anything else decodes to black.
func HexToRgb(hex string) mgl32.Vec3 {
	m := hexColor.FindStringSubmatch(hex)
	if m == nil {
		return mgl32.Vec3{}
	}
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		b, _ := strconv.ParseUint(m[i+1], 16, 8)
		c[i] = float32(b) / 255
	}
	return c
}

// RgbToHex is the inverse of HexToRgb through the 0-255 integer domain.
func RgbToHex(c mgl32.Vec3) string {
	var b [3]uint8
	for i := range b {
		v := math.Max(0, math.Min(1, float64(c[i])))
		b[i] = uint8(math.Round(v * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// ValidHex reports whether s is a colour HexToRgb decodes without falling
// back to black.
func ValidHex(s string) bool {
	return hexColor.MatchString(s)
}
