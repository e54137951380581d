package ir

import (
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"strconv"
)

// primitives maps every accepted spelling of a primitive path to its kind.
// Unlisted paths become User references.
var primitives = map[string]Kind{
	"bool":  Bool,
	"f32":   F32,
	"f64":   F64,
	"i8":    I8,
	"i16":   I16,
	"i32":   I32,
	"i64":   I64,
	"isize": ISize,
	"u8":    U8,
	"u16":   U16,
	"u32":   U32,
	"u64":   U64,
	"usize": USize,
}

// rawTypes are the C aliases from libc and std::os::raw.
var rawTypes = map[string]Kind{
	"c_void":      Unit,
	"c_char":      CChar,
	"c_schar":     I8,
	"c_uchar":     U8,
	"c_short":     I16,
	"c_ushort":    U16,
	"c_int":       I32,
	"c_uint":      U32,
	"c_long":      I64,
	"c_ulong":     U64,
	"c_longlong":  I64,
	"c_ulonglong": U64,
	"c_float":     F32,
	"c_double":    F64,
}

func init() {
	for name, kind := range rawTypes {
		for _, prefix := range []string{"", "libc::", "std::os::raw::", "core::ffi::", "std::ffi::"} {
			primitives[prefix+name] = kind
		}
	}
}

// LookupPrimitive returns the kind spelled by path, if it is a primitive.
func LookupPrimitive(path string) (Kind, bool) {
	k, ok := primitives[path]
	return k, ok
}

// TransformType converts a source type expression. It reports false for
// types that have no C ABI representation.
func TransformType(t *ast.Type) (Type, bool) {
	switch {
	case t == nil || t.IsUnit():
		return Prim(Unit), true
	case t.Array != nil:
		return transformArray(t.Array)
	case t.Path != nil:
		return transformPath(t.Path)
	case t.Pointer != nil:
		return transformPointer(t.Pointer.Elem)
	case t.BareFn != nil:
		sig, ok := transformBareFn(t.BareFn)
		if !ok {
			return Type{}, false
		}
		return FunctionType(sig), true
	default:
		return Type{}, false
	}
}

func transformArray(a *ast.ArrayType) (Type, bool) {
	n, ok := a.Len.IntLiteral()
	if !ok || n < 0 {
		return Type{}, false
	}

	elem, ok := TransformType(a.Elem)
	if !ok || elem.Kind == Array {
		return Type{}, false
	}

	return ArrayOf(elem, int(n)), true
}

func transformPath(p *ast.PathType) (Type, bool) {
	if p.HasGenericArgs() {
		return Type{}, false
	}

	name := p.String()
	if k, ok := LookupPrimitive(name); ok {
		return Prim(k), true
	}
	return Named(name), true
}

func transformPointer(elem *ast.Type) (Type, bool) {
	inner, ok := TransformType(elem)
	if !ok {
		return Type{}, false
	}

	switch inner.Kind {
	case CChar:
		return Prim(String), true
	case User:
		inner.Indirect = true
		return inner, true
	default:
		return PointerTo(inner), true
	}
}

func transformBareFn(fn *ast.BareFnType) (Signature, bool) {
	var sig Signature
	for i, arg := range fn.Params {
		ty, ok := TransformType(arg.Type)
		if !ok {
			return Signature{}, false
		}
		name := arg.Name
		if name == "" || name == "_" {
			name = "arg" + strconv.Itoa(i)
		}
		sig.Inputs = append(sig.Inputs, Param{Name: name, Type: ty})
	}

	output, ok := TransformType(fn.Output)
	if !ok {
		return Signature{}, false
	}
	sig.Output = output
	return sig, true
}

// TransformFunction converts a function declaration's signature.
func TransformFunction(fn *ast.FnItem) (Signature, bool) {
	var sig Signature
	for _, p := range fn.Params {
		ty, ok := TransformType(p.Type)
		if !ok {
			return Signature{}, false
		}
		sig.Inputs = append(sig.Inputs, Param{Name: p.Name, Type: ty})
	}

	output, ok := TransformType(fn.Output)
	if !ok {
		return Signature{}, false
	}
	sig.Output = output
	return sig, true
}

// TransformConst converts a constant declaration. String slices (`&str`)
// become String; values must be literals or arrays of literals.
func TransformConst(c *ast.ConstItem) (Const, bool) {
	var ty Type
	if isStrRef(c.Type) {
		ty = Prim(String)
	} else {
		var ok bool
		ty, ok = TransformType(c.Type)
		if !ok {
			return Const{}, false
		}
	}

	value, ok := transformConstValue(c.Value)
	if !ok {
		return Const{}, false
	}

	return Const{Type: ty, Value: value}, true
}

func isStrRef(t *ast.Type) bool {
	return t.Ref != nil && !t.Ref.Mut && t.Ref.Elem.Path != nil && t.Ref.Elem.Path.String() == "str"
}

func transformConstValue(e *ast.Expr) (ConstValue, bool) {
	if e == nil || e.Cast != nil {
		return ConstValue{}, false
	}

	switch {
	case e.Ref != nil && !e.Neg:
		return transformConstValue(e.Ref)
	case e.Array != nil:
		elems := []ConstValue{}
		for _, el := range e.Array.Elems {
			v, ok := transformConstValue(el)
			if !ok {
				return ConstValue{}, false
			}
			elems = append(elems, v)
		}
		if e.Array.Repeat != nil {
			n, ok := e.Array.Repeat.IntLiteral()
			if !ok || n < 0 || len(elems) != 1 {
				return ConstValue{}, false
			}
			repeated := make([]ConstValue, n)
			for i := range repeated {
				repeated[i] = elems[0]
			}
			elems = repeated
		}
		return ConstValue{Elems: elems}, true
	case e.Int != nil:
		v, ok := e.IntLiteral()
		if !ok {
			return ConstValue{}, false
		}
		return ConstValue{Literal: strconv.FormatInt(v, 10)}, true
	case e.Float != nil, e.Bool != nil, e.Str != nil, e.Char != nil:
		return ConstValue{Literal: e.String()}, true
	default:
		return ConstValue{}, false
	}
}

// TransformEnum converts a field-less enum. Explicit discriminants must be
// integer literals.
func TransformEnum(e *ast.EnumItem, docPrefix string) (Enum, bool) {
	var out Enum
	for _, v := range e.Variants {
		if v.Tuple != nil || v.Named != nil {
			return Enum{}, false
		}

		variant := Variant{Name: v.Name}
		_, variant.Docs = common.ParseAttr(v.Metas, common.Always, common.RetrieveDocstring(docPrefix))

		if v.Value != nil {
			n, ok := v.Value.IntLiteral()
			if !ok {
				return Enum{}, false
			}
			variant.Value = &n
		}

		out.Variants = append(out.Variants, variant)
	}
	return out, true
}

// TransformStruct converts the fields of a named-field struct.
func TransformStruct(fields []*ast.Field, docPrefix string) (Struct, bool) {
	var out Struct
	for _, f := range fields {
		ty, ok := TransformType(f.Type)
		if !ok {
			return Struct{}, false
		}

		field := StructField{Name: f.Name, Type: ty}
		_, field.Docs = common.ParseAttr(f.Metas, common.Always, common.RetrieveDocstring(docPrefix))
		out.Fields = append(out.Fields, field)
	}
	return out, true
}
