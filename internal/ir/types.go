// Package ir is the language-agnostic model of the C ABI surface: a closed
// set of types plus the constants, enums, structs and functions collected
// from the source.
package ir

import (
	"fmt"
	"strings"
)

// Kind is the variant of a Type.
type Kind int

const (
	Unit Kind = iota
	Bool
	CChar
	F32
	F64
	I8
	I16
	I32
	I64
	ISize
	U8
	U16
	U32
	U64
	USize
	String
	Pointer
	Array
	Function
	User
)

var kindNames = [...]string{
	Unit:     "()",
	Bool:     "bool",
	CChar:    "c_char",
	F32:      "f32",
	F64:      "f64",
	I8:       "i8",
	I16:      "i16",
	I32:      "i32",
	I64:      "i64",
	ISize:    "isize",
	U8:       "u8",
	U16:      "u16",
	U32:      "u32",
	U64:      "u64",
	USize:    "usize",
	String:   "string",
	Pointer:  "pointer",
	Array:    "array",
	Function: "function",
	User:     "user",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is an intermediate type. Elem is set for Pointer and Array, Len for
// Array, Func for Function and Name for User. Types are treated as
// immutable values; transformations build new ones.
type Type struct {
	Kind Kind
	Elem *Type
	Len  int
	Func *Signature
	Name string

	// Indirect marks a User declared behind a raw pointer. `*const Item`
	// and `Item` share the User kind; only the former can address an array.
	Indirect bool
}

// Param is one named input of a Signature.
type Param struct {
	Name string
	Type Type
}

// Signature is a function type: inputs in ABI order plus the output.
type Signature struct {
	Inputs []Param
	Output Type
}

func Prim(k Kind) Type {
	return Type{Kind: k}
}

func PointerTo(elem Type) Type {
	return Type{Kind: Pointer, Elem: &elem}
}

func ArrayOf(elem Type, n int) Type {
	return Type{Kind: Array, Elem: &elem, Len: n}
}

func FunctionType(fn Signature) Type {
	return Type{Kind: Function, Func: &fn}
}

func Named(name string) Type {
	return Type{Kind: User, Name: name}
}

// NamedPointer is Named reached through a raw pointer.
func NamedPointer(name string) Type {
	return Type{Kind: User, Name: name, Indirect: true}
}

// Unwrap strips every level of pointer indirection.
func (t Type) Unwrap() Type {
	for t.Kind == Pointer {
		t = *t.Elem
	}
	return t
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Pointer:
		return t.Elem.Equal(*o.Elem)
	case Array:
		return t.Len == o.Len && t.Elem.Equal(*o.Elem)
	case Function:
		return t.Func.Equal(*o.Func)
	case User:
		return t.Name == o.Name
	default:
		return true
	}
}

// Equal compares signatures including parameter names.
func (f Signature) Equal(o Signature) bool {
	if len(f.Inputs) != len(o.Inputs) || !f.Output.Equal(o.Output) {
		return false
	}
	for i := range f.Inputs {
		if f.Inputs[i].Name != o.Inputs[i].Name || !f.Inputs[i].Type.Equal(o.Inputs[i].Type) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case Pointer:
		return "*" + t.Elem.String()
	case Array:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case Function:
		return t.Func.String()
	case User:
		return t.Name
	default:
		return t.Kind.String()
	}
}

func (f Signature) String() string {
	inputs := make([]string, len(f.Inputs))
	for i, p := range f.Inputs {
		inputs[i] = p.Name + ": " + p.Type.String()
	}
	s := "fn(" + strings.Join(inputs, ", ") + ")"
	if f.Output.Kind != Unit {
		s += " -> " + f.Output.String()
	}
	return s
}
