package options

import (
	"fmt"
	"sort"
	"strings"
)

type ShaderOptions struct {
	ShaderID    *string
	SourceFile  *string
	Help        *bool
	List        *bool
	Tags        *bool
	Tag         *string
	Export      *bool
	Mode        *string
	Speed       *float64
	Paused      *bool
	Params      ParamFlags
	Duration    *float64
	FPS         *int
	Width       *int
	Height      *int
	OutputFile  *string
	Codec       *string
	Poster      *string
	PosterWidth *int
	Verbose     *bool
}

// Record reports whether a clip or poster was requested instead of an
// interactive window.
func (o *ShaderOptions) Record() bool {
	return (o.OutputFile != nil && *o.OutputFile != "") || (o.Poster != nil && *o.Poster != "")
}

// ParamFlags collects repeated -set name=value flags.
type ParamFlags map[string]string

func (p ParamFlags) String() string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + p[k]
	}
	return strings.Join(parts, ",")
}

func (p ParamFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	p[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}
