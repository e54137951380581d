package ir

import (
	"github.com/saffronjam/ffi-bindgen/internal/common"
)

const (
	// UserDataName is the callback context parameter: `user_data: *mut c_void`.
	UserDataName = "user_data"
	// ResultName and ResultType identify `result: *const FfiResult`.
	ResultName = "result"
	ResultType = "FfiResult"
)

// IsUserData reports whether p is the callback context parameter.
func IsUserData(p Param) bool {
	return p.Name == UserDataName && p.Type.Kind == Pointer && p.Type.Elem.Kind == Unit
}

// IsResult reports whether p is the status parameter of a completion
// callback.
func IsResult(p Param) bool {
	return p.Name == ResultName && p.Type.Kind == User && p.Type.Name == ResultType
}

// ArrayBase returns the name an array's length is derived from: the
// pointer name without a trailing "_ptr".
func ArrayBase(name string) string {
	return common.StripSuffix(name, "_ptr")
}

// isArrayPointer reports whether t can address a run of elements: a raw
// pointer, or a user type written behind one. A user type passed by value
// never can.
func isArrayPointer(t Type) bool {
	return t.Kind == Pointer || (t.Kind == User && t.Indirect)
}

// ArrayElem returns the element type addressed by an array pointer.
func ArrayElem(t Type) Type {
	if t.Kind == Pointer {
		return *t.Elem
	}
	t.Indirect = false
	return t
}

// IsLenParam reports whether p is the length of the array parameter
// named ptrName: a usize named `<base>_len`, `len` or `size`.
func IsLenParam(ptrName string, p Param) bool {
	if p.Type.Kind != USize {
		return false
	}
	return p.Name == ArrayBase(ptrName)+"_len" || p.Name == "len" || p.Name == "size"
}

// IsArrayPair reports whether ptr followed by next forms an array
// parameter.
func IsArrayPair(ptr, next Param) bool {
	return isArrayPointer(ptr.Type) && !IsResult(ptr) && IsLenParam(ptr.Name, next)
}

// ArgKind classifies a logical parameter.
type ArgKind int

const (
	ArgPlain ArgKind = iota
	ArgArray
	ArgCallback
	ArgUserData
)

// Arg is a logical parameter: a single input, or an array pointer with its
// absorbed length.
type Arg struct {
	Kind ArgKind
	Name string
	Type Type

	// Elem and LenName are set for ArgArray.
	Elem    Type
	LenName string

	// Callback is set for ArgCallback.
	Callback *Signature
}

// Args groups inputs into logical parameters in order. The user_data
// context parameter is reported as ArgUserData so emitters can decide
// whether to keep it.
func Args(inputs []Param) []Arg {
	var args []Arg
	for i := 0; i < len(inputs); i++ {
		p := inputs[i]
		switch {
		case IsUserData(p):
			args = append(args, Arg{Kind: ArgUserData, Name: p.Name, Type: p.Type})
		case i+1 < len(inputs) && IsArrayPair(p, inputs[i+1]):
			args = append(args, Arg{
				Kind:    ArgArray,
				Name:    p.Name,
				Type:    p.Type,
				Elem:    ArrayElem(p.Type),
				LenName: inputs[i+1].Name,
			})
			i++
		default:
			if cb, ok := CallbackOf(p.Type); ok {
				args = append(args, Arg{Kind: ArgCallback, Name: p.Name, Type: p.Type, Callback: cb})
				continue
			}
			args = append(args, Arg{Kind: ArgPlain, Name: p.Name, Type: p.Type})
		}
	}
	return args
}

// VisibleArgs is Args without the context parameter.
func VisibleArgs(inputs []Param) []Arg {
	var args []Arg
	for _, a := range Args(inputs) {
		if a.Kind != ArgUserData {
			args = append(args, a)
		}
	}
	return args
}

type FieldKind int

const (
	FieldPlain FieldKind = iota
	FieldArray
)

// FieldGroup is a logical struct field: a plain field, or an array pointer
// with its absorbed length and optional capacity.
type FieldGroup struct {
	Kind  FieldKind
	Field StructField

	Elem    Type
	LenName string
	CapName string
}

// GroupFields applies the array convention to struct fields: a pointer
// field `<base>` or `<base>_ptr` immediately followed by `<base>_len:
// usize`, and optionally by `<base>_cap: usize`.
func GroupFields(fields []StructField) []FieldGroup {
	var groups []FieldGroup
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		base := ArrayBase(f.Name)

		if isArrayPointer(f.Type) && i+1 < len(fields) && isSizeField(fields[i+1], base+"_len") {
			g := FieldGroup{
				Kind:    FieldArray,
				Field:   f,
				Elem:    ArrayElem(f.Type),
				LenName: fields[i+1].Name,
			}
			i++
			if i+1 < len(fields) && isSizeField(fields[i+1], base+"_cap") {
				g.CapName = fields[i+1].Name
				i++
			}
			groups = append(groups, g)
			continue
		}

		groups = append(groups, FieldGroup{Kind: FieldPlain, Field: f})
	}
	return groups
}

func isSizeField(f StructField, name string) bool {
	return f.Name == name && f.Type.Kind == USize
}

// HasArrayField reports whether any field is an array pointer.
func HasArrayField(fields []StructField) bool {
	for _, g := range GroupFields(fields) {
		if g.Kind == FieldArray {
			return true
		}
	}
	return false
}
