package csharp

import (
	"embed"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"gitlab.com/tozd/go/errors"
	"strings"
	"text/template"
)

//go:embed templates/*.tpl
var templateFS embed.FS

var templates = template.Must(template.New("csharp").ParseFS(templateFS, "templates/*.tpl"))

type utilsData struct {
	Namespace  string
	ClassName  string
	HasResult  bool
	ResultType string
}

// usesResult reports whether any callback of the run completes with a
// result.
func (g *generator) usesResult() bool {
	for _, cb := range ir.CollectCallbacks(g.run.Functions) {
		if hasResult(cb.Sig) {
			return true
		}
	}
	return false
}

func (g *generator) emitUtils() (string, error) {
	data := utilsData{
		Namespace:  g.lang.Namespace(),
		ClassName:  g.lang.utilsClassName,
		HasResult:  g.usesResult(),
		ResultType: ir.ResultType,
	}

	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, "utils.cs.tpl", data); err != nil {
		return "", errors.Errorf("render %s: %w", g.lang.utilsClassName, err)
	}
	return sb.String(), nil
}
