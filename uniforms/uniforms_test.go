package uniforms

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestHexToRgb(t *testing.T) {
	tests := []struct {
		in   string
		want mgl32.Vec3
	}{
		{"#ff0000", mgl32.Vec3{1, 0, 0}},
		{"00ff00", mgl32.Vec3{0, 1, 0}},
		{"#0000FF", mgl32.Vec3{0, 0, 1}},
		{"#ffffff", mgl32.Vec3{1, 1, 1}},
		{"#808080", mgl32.Vec3{128.0 / 255, 128.0 / 255, 128.0 / 255}},
		{"", mgl32.Vec3{}},
		{"#fff", mgl32.Vec3{}},
		{"#gg0000", mgl32.Vec3{}},
		{"#ff00001", mgl32.Vec3{}},
		{"##ff0000", mgl32.Vec3{}},
		{"red", mgl32.Vec3{}},
	}
	for _, tt := range tests {
		got := HexToRgb(tt.in)
		if !got.ApproxEqual(tt.want) {
			t.Errorf("HexToRgb(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, h := range []string{"#0a0a0a", "#9333EA", "ec4899", "#1e3a5f", "#00ff88", "#000000"} {
		want := strings.ToLower(h)
		if !strings.HasPrefix(want, "#") {
			want = "#" + want
		}
		if got := RgbToHex(HexToRgb(h)); got != want {
			t.Errorf("RgbToHex(HexToRgb(%q)) = %q, want %q", h, got, want)
		}
	}
}

func TestRgbToHexClamps(t *testing.T) {
	if got := RgbToHex(mgl32.Vec3{-1, 2, 0.5}); got != "#00ff80" {
		t.Errorf("RgbToHex = %q, want #00ff80", got)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   Value
		want []float32
	}{
		{0.5, []float32{0.5}},
		{float32(2), []float32{2}},
		{3, []float32{3}},
		{true, []float32{1}},
		{false, []float32{0}},
		{"#ff0000", []float32{1, 0, 0}},
		{"nope", []float32{0, 0, 0}},
	}
	for _, tt := range tests {
		got, err := Encode(tt.in)
		if err != nil {
			t.Errorf("Encode(%v) error: %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Encode(%v) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Encode(%v) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	if _, err := Encode([]int{1}); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Encode(slice) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   Value
		want Kind
		ok   bool
	}{
		{1.5, Range, true},
		{7, Range, true},
		{"#fff", Color, true},
		{true, Boolean, true},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := KindOf(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("KindOf(%v) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(Range, "1.25")
	if err != nil || v != 1.25 {
		t.Errorf("Parse(range) = %v, %v, want 1.25", v, err)
	}
	v, err = Parse(Boolean, "true")
	if err != nil || v != true {
		t.Errorf("Parse(boolean) = %v, %v, want true", v, err)
	}
	v, err = Parse(Color, "#abcdef")
	if err != nil || v != "#abcdef" {
		t.Errorf("Parse(color) = %v, %v, want #abcdef", v, err)
	}
	if _, err := Parse(Range, "fast"); err == nil {
		t.Error("Parse(range, fast) succeeded")
	}
	if _, err := Parse(Kind("vec4"), "1"); !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("Parse(vec4) error = %v, want ErrUnsupportedValue", err)
	}
}

func TestValuesClone(t *testing.T) {
	v := Values{"a": 1.0}
	c := v.Clone()
	c["a"] = 2.0
	if v["a"] != 1.0 {
		t.Errorf("original mutated: %v", v["a"])
	}
}
