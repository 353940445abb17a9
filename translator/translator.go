// Package translator converts ESSL 3.00 (WebGL2) shader sources into desktop
// GLSL 4.10 and reports how uniform names were mapped.
package translator

import (
	"context"
	"fmt"

	gst "github.com/richinsley/goshadertranslator"
	"github.com/richinsley/oglrender/shader"
)

type Translator struct {
	st *gst.ShaderTranslator
}

// New starts the translator runtime. It is comparatively expensive, so the
// caller keeps one instance for the life of the process.
func New(ctx context.Context) (*Translator, error) {
	st, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	return &Translator{st: st}, nil
}

// Translate implements shader.Translator. stage is "vertex" or "fragment".
func (t *Translator) Translate(source, stage string) (shader.Translation, error) {
	out, err := t.st.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return shader.Translation{}, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}
	uniforms := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		uniforms[name] = v.MappedName
	}
	return shader.Translation{Code: out.Code, Uniforms: uniforms}, nil
}

var _ shader.Translator = (*Translator)(nil)
