package ir

import (
	"github.com/saffronjam/ffi-bindgen/internal/ast"
)

// Snippet is a named, documented declaration in encounter order.
type Snippet[T any] struct {
	Name string
	Docs string
	Pos  ast.Position
	Item T
}

// ConstValue is a constant's literal value in source form: a number,
// bool, quoted string or char, or an array of those.
type ConstValue struct {
	Literal string
	Elems   []ConstValue
}

type Const struct {
	Type  Type
	Value ConstValue
}

type Variant struct {
	Name  string
	Docs  string
	Value *int64
}

type Enum struct {
	Variants []Variant
}

type StructField struct {
	Name string
	Docs string
	Type Type
}

type Struct struct {
	Fields []StructField
}
