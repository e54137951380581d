package java

import (
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"strconv"
	"strings"
)

var primitiveTypes = map[ir.Kind]string{
	ir.Unit:   "void",
	ir.Bool:   "boolean",
	ir.CChar:  "byte",
	ir.F32:    "float",
	ir.F64:    "double",
	ir.I8:     "byte",
	ir.I16:    "short",
	ir.I32:    "int",
	ir.I64:    "long",
	ir.ISize:  "long",
	ir.U8:     "byte",
	ir.U16:    "short",
	ir.U32:    "int",
	ir.U64:    "long",
	ir.USize:  "long",
	ir.String: "String",
}

// primitiveSignatures are the JNI type descriptors of primitiveTypes.
var primitiveSignatures = map[string]string{
	"void":    "V",
	"boolean": "Z",
	"byte":    "B",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"String":  "Ljava/lang/String;",
}

var keywords = common.Keywords(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char", "class", "const",
	"continue", "default", "do", "double", "else", "enum", "extends", "final", "finally", "float",
	"for", "goto", "if", "implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "package", "private", "protected", "public", "return", "short", "static", "strictfp",
	"super", "switch", "synchronized", "this", "throw", "throws", "transient", "try", "void",
	"volatile", "while",
)

func className(name string) string {
	return common.PascalName(name)
}

// memberName converts a source identifier, e.g. "data_len" → "dataLen".
func memberName(name string) string {
	return common.SanitizeName(common.CamelName(name), keywords, "_")
}

// fieldName is the Java field of a struct field group. Arrays are named
// after their base, e.g. "data_ptr" → "data".
func fieldName(grp ir.FieldGroup) string {
	if grp.Kind == ir.FieldArray {
		return memberName(ir.ArrayBase(grp.Field.Name))
	}
	return memberName(grp.Field.Name)
}

// isHandle reports whether t is passed to Java as a raw long: an opaque
// type or one mapped to long.
func (g *generator) isHandle(t ir.Type) bool {
	if t.Kind == ir.Pointer && t.Elem.Kind == ir.Unit {
		return true
	}
	return t.Kind == ir.User && (g.run.IsOpaque(t.Name) || g.lang.typeMap[t.Name] == "long")
}

// isEnum reports whether t crosses into Java as an enum object. An enum
// mapped to a primitive travels as its discriminant instead.
func (g *generator) isEnum(t ir.Type) bool {
	if t.Kind != ir.User || !g.run.IsEnum(t.Name) {
		return false
	}
	_, primitive := primitiveSignatures[g.javaType(t)]
	return !primitive
}

func (g *generator) javaType(t ir.Type) string {
	switch t.Kind {
	case ir.Pointer:
		if g.isHandle(t) {
			return "long"
		}
		return g.javaType(*t.Elem)
	case ir.Array:
		return g.javaType(*t.Elem) + "[]"
	case ir.Function:
		if cb, ok := ir.CallbackOf(t); ok {
			return g.callbackName(*cb)
		}
		return "long"
	case ir.User:
		if mapped, ok := g.lang.typeMap[t.Name]; ok {
			return mapped
		}
		if g.run.IsOpaque(t.Name) {
			return "long"
		}
		return className(t.Name)
	default:
		return primitiveTypes[t.Kind]
	}
}

func (g *generator) argType(a ir.Arg) string {
	if a.Kind == ir.ArgArray {
		return g.javaType(a.Elem) + "[]"
	}
	return g.javaType(a.Type)
}

// callbackName names the interface of a callback after its visible
// parameters, e.g. "CallbackByteArray". The result parameter does not
// contribute.
func (g *generator) callbackName(sig ir.Signature) string {
	var b strings.Builder
	b.WriteString("Callback")
	for _, a := range ir.VisibleArgs(sig.Inputs) {
		if isResultArg(a) {
			continue
		}
		if a.Kind == ir.ArgArray {
			b.WriteString(common.PascalName(g.javaType(a.Elem)) + "Array")
		} else {
			b.WriteString(common.PascalName(g.javaType(a.Type)))
		}
	}
	return b.String()
}

func isResultArg(a ir.Arg) bool {
	return a.Kind == ir.ArgPlain && ir.IsResult(ir.Param{Name: a.Name, Type: a.Type})
}

// signature is the JNI type descriptor of t, e.g. "J" or "[B".
func (g *generator) signature(t ir.Type) string {
	switch t.Kind {
	case ir.Pointer:
		if g.isHandle(t) {
			return "J"
		}
		return g.signature(*t.Elem)
	case ir.Array:
		return "[" + g.signature(*t.Elem)
	case ir.Function:
		return "Ljava/lang/Object;"
	case ir.User:
		if sig, ok := primitiveSignatures[g.javaType(t)]; ok {
			return sig
		}
		return "L" + g.qualified(className(t.Name)) + ";"
	default:
		return primitiveSignatures[primitiveTypes[t.Kind]]
	}
}

func (g *generator) argSignature(a ir.Arg) string {
	if a.Kind == ir.ArgArray {
		return "[" + g.signature(a.Elem)
	}
	return g.signature(a.Type)
}

// qualified returns the JNI class name of class, e.g. "net/example/Item".
func (g *generator) qualified(class string) string {
	return strings.ReplaceAll(g.lang.namespace, ".", "/") + "/" + class
}

// mangledNamespace escapes the package for a JNI symbol name.
func (g *generator) mangledNamespace() string {
	ns := strings.ReplaceAll(g.lang.namespace, "_", "_1")
	return strings.ReplaceAll(ns, ".", "_")
}

// rustType spells t as a Rust type inside the JNI glue.
func rustType(t ir.Type) string {
	switch t.Kind {
	case ir.Unit:
		return "()"
	case ir.String:
		return "*const c_char"
	case ir.Pointer:
		if t.Elem.Kind == ir.Unit {
			return "*mut c_void"
		}
		return "*const " + rustType(*t.Elem)
	case ir.Array:
		return "[" + rustType(*t.Elem) + "; " + strconv.Itoa(t.Len) + "]"
	case ir.Function:
		params := make([]string, len(t.Func.Inputs))
		for i, p := range t.Func.Inputs {
			params[i] = p.Name + ": " + rustType(p.Type)
		}
		s := `extern "C" fn(` + strings.Join(params, ", ") + ")"
		if t.Func.Output.Kind != ir.Unit {
			s += " -> " + rustType(t.Func.Output)
		}
		return s
	case ir.User:
		return t.Name
	default:
		return t.Kind.String()
	}
}

// jniType is the type a JNI entry point receives for a value of type t.
func (g *generator) jniType(t ir.Type) string {
	switch {
	case g.isHandle(t):
		return "jlong"
	case t.Kind == ir.String:
		return "JString"
	case g.isEnum(t):
		return "JObject"
	case t.Kind == ir.User && g.run.IsEnum(t.Name):
		return "jint"
	}

	switch primitiveTypes[t.Kind] {
	case "boolean":
		return "jboolean"
	case "byte":
		return "jbyte"
	case "short":
		return "jshort"
	case "int":
		return "jint"
	case "long":
		return "jlong"
	case "float":
		return "jfloat"
	case "double":
		return "jdouble"
	default:
		return "JObject"
	}
}
