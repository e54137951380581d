// Package java emits JNI bindings: a NativeBindings class of static native
// methods, one class per struct and enum, callback interfaces, and the Rust
// glue in jni.rs that converts between JVM objects and the C ABI.
package java

import (
	"context"
	"github.com/saffronjam/ffi-bindgen/internal/bindgen"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"strings"
)

const (
	indentWidth = 4

	bindingsClass = "NativeBindings"
	bindingsFile  = bindingsClass + ".java"
	constsFile    = "Constants.java"
	jniFile       = "jni.rs"
)

// LangJava holds the configuration of the Java target.
type LangJava struct {
	filter           *common.Filter
	wrapperBlacklist ir.NameSet
	opaqueTypes      []string
	typeMap          map[string]string
	multiCallback    ir.MultiCallbackPolicy

	namespace string
	libName   string
}

func New() *LangJava {
	return &LangJava{
		filter:           common.NewFilter(common.Blacklist),
		wrapperBlacklist: ir.NewNameSet(),
		typeMap:          map[string]string{},
		multiCallback:    ir.PerIndex,
		namespace:        "bindings",
		libName:          "backend",
	}
}

// NewFromConfig builds the target from the shared and java sections of
// config.
func NewFromConfig(config *common.Config) (*LangJava, error) {
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

	j := config.Java
	if j.Namespace != "" {
		lang.SetNamespace(j.Namespace)
	}
	if j.Lib != "" {
		lang.SetLibName(j.Lib)
	}
	for ident, ty := range j.TypeMap {
		lang.MapType(ident, ty)
	}

	policy, err := ir.ParseMultiCallbackPolicy(j.MultiCallback)
	if err != nil {
		return nil, err
	}
	lang.SetMultiCallbackPolicy(policy)

	for _, name := range j.WrapperBlacklist {
		lang.BlacklistWrapperFunction(name)
	}

	return lang, nil
}

// SetNamespace sets the Java package, e.g. "net.example.bindings".
func (l *LangJava) SetNamespace(namespace string) {
	l.namespace = namespace
}

// SetLibName sets the crate the JNI glue calls into and the library
// NativeBindings loads.
func (l *LangJava) SetLibName(name string) {
	l.libName = name
}

// AddOpaqueType declares a handle type. Handles cross the boundary as a
// long.
func (l *LangJava) AddOpaqueType(name string) {
	l.opaqueTypes = append(l.opaqueTypes, name)
	l.typeMap[name] = "long"
}

// MapType overrides the Java type used for ident.
func (l *LangJava) MapType(ident, javaType string) {
	l.typeMap[ident] = javaType
}

func (l *LangJava) SetMultiCallbackPolicy(policy ir.MultiCallbackPolicy) {
	l.multiCallback = policy
}

// ResetFilter clears the filter and sets its mode.
func (l *LangJava) ResetFilter(mode common.FilterMode) {
	l.filter.Reset(mode)
}

func (l *LangJava) Filter(ident string) {
	l.filter.Add(ident)
}

// BlacklistWrapperFunction keeps the JNI glue of the function out of
// jni.rs. The native declaration is still emitted.
func (l *LangJava) BlacklistWrapperFunction(ident string) {
	l.wrapperBlacklist.Add(ident)
}

func (l *LangJava) Name() string {
	return "java"
}

func (l *LangJava) ClassifyOptions() bindgen.ClassifyOptions {
	return bindgen.ClassifyOptions{
		DocPrefix:    " *",
		Filter:       l.filter,
		Opaque:       l.opaqueTypes,
		AllowNewtype: true,
	}
}

func (l *LangJava) Namespace() string {
	return l.namespace
}

// crateName is the library name as a Rust path segment.
func (l *LangJava) crateName() string {
	return strings.ReplaceAll(l.libName, "-", "_")
}

// Emit writes constants, enums, structs, native bindings, callback
// interfaces and the JNI glue, then finalises NativeBindings.java.
func (l *LangJava) Emit(ctx context.Context, run *ir.Run, outputs common.Outputs) error {
	g := &generator{
		lang:        l,
		run:         run,
		outputs:     outputs,
		trampolines: ir.NewNameSet(),
		interfaces:  map[string]string{},
	}

	if len(run.Consts) > 0 {
		consts, err := g.emitConsts()
		if err != nil {
			return err
		}
		outputs[constsFile] = consts
	}

	for _, e := range run.Enums {
		outputs[className(e.Name)+".java"] = g.emitEnum(e)
	}

	for _, s := range run.Structs {
		if run.IsOpaque(s.Name) {
			continue
		}
		outputs[className(s.Name)+".java"] = g.emitStruct(s)
		outputs.Append(jniFile, g.jniStruct(s))
	}

	for _, fn := range run.Functions {
		g.emitNative(ctx, fn)
		outputs.Append(jniFile, g.jniFunction(fn))
	}

	if err := g.finalise(); err != nil {
		return err
	}

	slogctx.Debug(ctx, "emitted Java bindings", "package", l.namespace, "files", strings.Join(outputs.Paths(), ","))
	return nil
}

// finalise wraps the accumulated native declarations into their class and
// prepends the glue prelude.
func (g *generator) finalise() error {
	funcs, ok := g.outputs[bindingsFile]
	if !ok {
		return errors.WithStack(&common.Diagnostic{
			Level:   common.LevelError,
			Message: "no native bindings generated?",
		})
	}

	w := common.NewWriter(indentWidth)
	g.writePackage(w)
	w.Open("public class %s", bindingsClass)
	w.Open("static")
	w.Line("System.loadLibrary(%q);", g.lang.libName)
	w.Close("")
	w.Line("")
	w.Emit(funcs)
	w.Close("")
	g.outputs[bindingsFile] = w.String()

	g.outputs[jniFile] = g.jniPrelude() + g.outputs[jniFile]
	return nil
}

// generator renders one run.
type generator struct {
	lang    *LangJava
	run     *ir.Run
	outputs common.Outputs

	// trampolines memoizes the callback functions already in jni.rs.
	trampolines ir.NameSet
	// interfaces maps a generated callback interface to the key of the
	// callback it was generated for.
	interfaces map[string]string
}

func (g *generator) writePackage(w *common.Writer) {
	w.Line("package %s;", g.lang.namespace)
	w.Line("")
}

// writeDocs renders docs, already prefixed with " *", as a Javadoc block.
func writeDocs(w *common.Writer, docs string) {
	if docs == "" {
		return
	}
	w.Line("/**")
	w.Emit(docs)
	w.Line(" */")
}
