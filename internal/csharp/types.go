package csharp

import (
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"strings"
)

var primitiveTypes = map[ir.Kind]string{
	ir.Unit:   "void",
	ir.Bool:   "bool",
	ir.CChar:  "sbyte",
	ir.F32:    "float",
	ir.F64:    "double",
	ir.I8:     "sbyte",
	ir.I16:    "short",
	ir.I32:    "int",
	ir.I64:    "long",
	ir.ISize:  "long",
	ir.U8:     "byte",
	ir.U16:    "ushort",
	ir.U32:    "uint",
	ir.U64:    "ulong",
	ir.USize:  "ulong",
	ir.String: "string",
}

var keywords = common.Keywords(
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch", "char", "checked", "class",
	"const", "continue", "decimal", "default", "delegate", "do", "double", "else", "enum", "event",
	"explicit", "extern", "false", "finally", "fixed", "float", "for", "foreach", "goto", "if",
	"implicit", "in", "int", "interface", "internal", "is", "lock", "long", "namespace", "new", "null",
	"object", "operator", "out", "override", "params", "private", "protected", "public", "readonly",
	"ref", "return", "sbyte", "sealed", "short", "sizeof", "stackalloc", "static", "string", "struct",
	"switch", "this", "throw", "true", "try", "typeof", "uint", "ulong", "unchecked", "unsafe",
	"ushort", "using", "virtual", "void", "volatile", "while",
)

// paramName converts a source parameter name, e.g. "user_data" → "userData".
func paramName(name string) string {
	return common.SanitizeName(common.CamelName(name), keywords, "@")
}

func memberName(name string) string {
	return common.SanitizeName(common.PascalName(name), keywords, "@")
}

func nativeStructName(name string) string {
	return name + "Native"
}

func (g *generator) isOpaque(t ir.Type) bool {
	return t.Kind == ir.User && g.run.IsOpaque(t.Name)
}

func (g *generator) isNative(t ir.Type) bool {
	return t.Kind == ir.User && !g.run.IsOpaque(t.Name) && g.run.IsNativeName(t.Name)
}

// isStruct reports whether t names a plain, by-value struct of this run.
func (g *generator) isStruct(t ir.Type) bool {
	if t.Kind != ir.User || g.run.IsOpaque(t.Name) || g.run.IsNativeName(t.Name) {
		return false
	}
	_, ok := g.run.Struct(t.Name)
	return ok
}

// nativeType is the type as it crosses the boundary: the layout of a
// native struct field, a delegate parameter or an extern return.
func (g *generator) nativeType(t ir.Type) string {
	switch t.Kind {
	case ir.Pointer:
		return "IntPtr"
	case ir.Array:
		return g.nativeType(*t.Elem) + "[]"
	case ir.Function:
		if cb, ok := ir.CallbackOf(t); ok {
			return g.callbackName(*cb)
		}
		return "IntPtr"
	case ir.User:
		if g.isOpaque(t) || g.isNative(t) {
			return "IntPtr"
		}
		return t.Name
	default:
		return primitiveTypes[t.Kind]
	}
}

// managedType is the type exposed by wrappers and the interface.
func (g *generator) managedType(t ir.Type) string {
	switch t.Kind {
	case ir.Array:
		return g.managedType(*t.Elem) + "[]"
	case ir.User:
		if g.isOpaque(t) {
			return "IntPtr"
		}
		return t.Name
	default:
		return g.nativeType(t)
	}
}

// fieldType is the type of a field inside a native struct. Native
// structs are embedded by value.
func (g *generator) fieldType(t ir.Type) string {
	if g.isNative(t) {
		return nativeStructName(t.Name)
	}
	return g.nativeType(t)
}

// listType is the managed type of an absorbed pointer/length array.
func (g *generator) listType(elem ir.Type) string {
	if elem.Kind == ir.U8 {
		return "byte[]"
	}
	return "List<" + g.managedType(elem) + ">"
}

// marshalAttr returns the MarshalAs attribute a field or parameter of type
// t needs, or "".
func marshalAttr(t ir.Type) string {
	switch t.Kind {
	case ir.Bool:
		return "[MarshalAs(UnmanagedType.U1)] "
	case ir.String:
		return "[MarshalAs(UnmanagedType.LPStr)] "
	default:
		return ""
	}
}

// callbackName names the delegate of a callback after its visible
// parameters, e.g. "FfiResultUlongCb".
func (g *generator) callbackName(sig ir.Signature) string {
	var b strings.Builder
	for _, a := range ir.VisibleArgs(sig.Inputs) {
		switch a.Kind {
		case ir.ArgArray:
			b.WriteString(common.PascalName(g.managedType(a.Elem)) + "Array")
		case ir.ArgCallback:
			b.WriteString(common.PascalName(g.callbackName(*a.Callback)))
		default:
			b.WriteString(common.PascalName(g.managedType(a.Type)))
		}
	}
	if sig.Output.Kind != ir.Unit {
		b.WriteString("Ret" + common.PascalName(g.managedType(sig.Output)))
	}
	if b.Len() == 0 {
		b.WriteString("None")
	}
	return b.String() + "Cb"
}
