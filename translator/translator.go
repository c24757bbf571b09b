package translator

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	gst "github.com/richinsley/goshadertranslator"

	"github.com/richinsley/goshaderdrop/graphics"
)

var (
	translatorOnce sync.Once
	translator     *gst.ShaderTranslator
	translatorErr  error
)

// GetTranslator starts the shader translator on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		ctx := context.Background()
		translator, translatorErr = gst.NewShaderTranslator(ctx)
		if translatorErr == nil {
			log.Info("shader translator ready")
		}
	})
	return translator, translatorErr
}

// Translated is a shader stage rewritten for desktop OpenGL 4.1. Names maps
// each variable of the input source to the name it has in Code.
type Translated struct {
	Code  string
	Names map[string]string
}

// Translate rewrites a WebGL shader stage as GLSL 4.10. Errors carry the
// translator's diagnostics, which play the part of a compile log.
func Translate(source string, kind graphics.ShaderKind) (*Translated, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	out, err := t.TranslateShader(source, kind.String(), gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", kind, err)
	}
	return &Translated{Code: out.Code, Names: MappedNames(out.Variables)}, nil
}

// MappedNames flattens the translator's variable table into source name
// to mapped name.
func MappedNames(vars map[string]gst.ShaderVariable) map[string]string {
	names := make(map[string]string, len(vars))
	for name, v := range vars {
		mapped := v.MappedName
		if mapped == "" {
			mapped = name
		}
		names[name] = mapped
	}
	return names
}
