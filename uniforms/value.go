package uniforms

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedValue is returned for values no uniform kind can carry.
var ErrUnsupportedValue = errors.New("uniforms: unsupported value")

// Kind selects how a parameter is edited and encoded.
type Kind string

const (
	Range   Kind = "range"
	Color   Kind = "color"
	Boolean Kind = "boolean"
)

func (k Kind) Valid() bool {
	switch k {
	case Range, Color, Boolean:
		return true
	}
	return false
}

// Value is a runtime parameter value: a number for Range, a hex string for
// Color, a bool for Boolean.
type Value = any

// Values maps parameter names to their current values.
type Values map[string]Value

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// KindOf infers the kind that can carry v.
func KindOf(v Value) (Kind, bool) {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return Range, true
	case string:
		return Color, true
	case bool:
		return Boolean, true
	}
	return "", false
}

// Float returns v as a float64 when it is numeric.
func Float(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}

// Encode converts v to the components of its uniform: one float for
// numbers and booleans, three for colours. Colours are not gamma corrected.
func Encode(v Value) ([]float32, error) {
	if f, ok := Float(v); ok {
		return []float32{float32(f)}, nil
	}
	switch x := v.(type) {
	case bool:
		if x {
			return []float32{1}, nil
		}
		return []float32{0}, nil
	case string:
		c := HexToRgb(x)
		return []float32{c[0], c[1], c[2]}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// Parse converts text, as typed on a command line, to a value of kind.
func Parse(kind Kind, raw string) (Value, error) {
	switch kind {
	case Range:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q as number: %w", raw, err)
		}
		return f, nil
	case Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %q as boolean: %w", raw, err)
		}
		return b, nil
	case Color:
		return raw, nil
	}
	return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedValue, kind)
}
