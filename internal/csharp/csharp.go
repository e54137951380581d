// Package csharp emits P/Invoke bindings: a partial class with DllImport
// declarations and Task based wrappers, its interface, constants, types and
// a utility class.
package csharp

import (
	"context"
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/bindgen"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	slogctx "github.com/veqryn/slog-context"
	"strings"
)

const indentWidth = 2

// LangCSharp holds the configuration of the C# target.
type LangCSharp struct {
	filter           *common.Filter
	wrapperBlacklist ir.NameSet
	typesEnabled     bool
	utilsEnabled     bool
	customConsts     []string
	opaqueTypes      []string

	libName         string
	namespace       string
	className       string
	constsClassName string
	typesFileName   string
	utilsClassName  string
}

func New() *LangCSharp {
	return &LangCSharp{
		filter:           common.NewFilter(common.Blacklist),
		wrapperBlacklist: ir.NewNameSet(),
		typesEnabled:     true,
		utilsEnabled:     true,
		libName:          "backend",
		constsClassName:  "Constants",
		typesFileName:    "Types",
		utilsClassName:   "Utils",
	}
}

// NewFromConfig builds the target from the shared and csharp sections of
// config.
func NewFromConfig(config *common.Config) (*LangCSharp, error) {
	lang := New()

	filter, err := config.Filter.NewFilter()
	if err != nil {
		return nil, err
	}
	lang.filter = filter

	if config.Lib != "" {
		lang.SetLibName(config.Lib)
	}
	for _, name := range config.OpaqueTypes {
		lang.AddOpaqueType(name)
	}

	cs := config.CSharp
	if cs.Namespace != "" {
		lang.SetNamespace(cs.Namespace)
	}
	if cs.ClassName != "" {
		lang.SetClassName(cs.ClassName)
	}
	if cs.ConstsClassName != "" {
		lang.SetConstsClassName(cs.ConstsClassName)
	}
	if cs.TypesFileName != "" {
		lang.SetTypesFileName(cs.TypesFileName)
	}
	if cs.UtilsClassName != "" {
		lang.SetUtilsClassName(cs.UtilsClassName)
	}
	lang.SetTypesEnabled(cs.Types)
	lang.SetUtilsEnabled(cs.Utils)

	for _, name := range cs.WrapperBlacklist {
		lang.BlacklistWrapperFunction(name)
	}
	for _, c := range cs.Consts {
		lang.AddConst(c.Type, c.Name, c.Value)
	}

	return lang, nil
}

// SetLibName sets the native library the bindings load. The namespace and
// class name default to its PascalCase form.
func (l *LangCSharp) SetLibName(name string) {
	l.libName = name
}

func (l *LangCSharp) SetNamespace(namespace string) {
	l.namespace = namespace
}

// SetClassName sets the class holding every function binding.
func (l *LangCSharp) SetClassName(name string) {
	l.className = name
}

// AddOpaqueType declares a type that is only ever handled through a
// pointer.
func (l *LangCSharp) AddOpaqueType(name string) {
	l.opaqueTypes = append(l.opaqueTypes, name)
}

func (l *LangCSharp) SetConstsClassName(name string) {
	l.constsClassName = name
}

func (l *LangCSharp) SetTypesEnabled(enabled bool) {
	l.typesEnabled = enabled
}

// SetTypesFileName sets the file holding structs and enums. A trailing
// ".cs" is dropped.
func (l *LangCSharp) SetTypesFileName(name string) {
	l.typesFileName = common.StripSuffix(name, ".cs")
}

func (l *LangCSharp) SetUtilsClassName(name string) {
	l.utilsClassName = name
}

func (l *LangCSharp) SetUtilsEnabled(enabled bool) {
	l.utilsEnabled = enabled
}

// AddConst injects a constant emitted verbatim into the constants class.
func (l *LangCSharp) AddConst(ty, name string, value any) {
	l.customConsts = append(l.customConsts, fmt.Sprintf("public const %s %s = %v;", ty, common.PascalName(name), value))
}

// ResetFilter clears the filter and sets its mode.
func (l *LangCSharp) ResetFilter(mode common.FilterMode) {
	l.filter.Reset(mode)
}

// Filter adds ident to the filter. In blacklist mode the identifier is
// ignored, in whitelist mode every other identifier is.
func (l *LangCSharp) Filter(ident string) {
	l.filter.Add(ident)
}

// BlacklistWrapperFunction keeps the function out of the wrapper and the
// interface; only its DllImport declaration is emitted.
func (l *LangCSharp) BlacklistWrapperFunction(ident string) {
	l.wrapperBlacklist.Add(ident)
}

func (l *LangCSharp) ResetWrapperFunctionBlacklist() {
	l.wrapperBlacklist = ir.NewNameSet()
}

func (l *LangCSharp) Name() string {
	return "csharp"
}

func (l *LangCSharp) ClassifyOptions() bindgen.ClassifyOptions {
	return bindgen.ClassifyOptions{
		DocPrefix: "///",
		Filter:    l.filter,
		Opaque:    l.opaqueTypes,
	}
}

func (l *LangCSharp) Namespace() string {
	if l.namespace != "" {
		return l.namespace
	}
	return common.PascalName(l.libName)
}

func (l *LangCSharp) ClassName() string {
	if l.className != "" {
		return l.className
	}
	return common.PascalName(l.libName)
}

// Emit writes the class, interface, constants, types and utils artifacts.
func (l *LangCSharp) Emit(ctx context.Context, run *ir.Run, outputs common.Outputs) error {
	g := &generator{lang: l, run: run}

	if len(run.Functions) > 0 {
		outputs[l.ClassName()+".cs"] = g.emitClass()

		if iface, ok := g.emitInterface(); ok {
			outputs["I"+l.ClassName()+".cs"] = iface
		}
	}

	if len(run.Consts) > 0 || len(l.customConsts) > 0 {
		consts, err := g.emitConsts()
		if err != nil {
			return err
		}
		outputs[l.constsClassName+".cs"] = consts
	}

	if l.typesEnabled && (len(run.Enums) > 0 || len(run.Structs) > 0) {
		outputs[l.typesFileName+".cs"] = g.emitTypes()
	}

	if l.utilsEnabled {
		utils, err := g.emitUtils()
		if err != nil {
			return err
		}
		outputs[l.utilsClassName+".cs"] = utils
	}

	slogctx.Debug(ctx, "emitted C# bindings", "namespace", l.Namespace(), "class", l.ClassName(), "files", strings.Join(outputs.Paths(), ","))
	return nil
}

// generator renders one run.
type generator struct {
	lang *LangCSharp
	run  *ir.Run
}

func (g *generator) isWrapperFunction(fn ir.Snippet[ir.Signature]) bool {
	return ir.WrapperEligible(fn.Name, fn.Item, g.lang.wrapperBlacklist)
}

func (g *generator) utils(method string) string {
	return g.lang.utilsClassName + "." + method
}

func writeUsings(w *common.Writer, namespaces ...string) {
	for _, ns := range namespaces {
		w.Line("using %s;", ns)
	}
	w.Line("")
}

func writeDocs(w *common.Writer, docs string) {
	if docs != "" {
		w.Emit(docs)
	}
}
