package ast

import (
	"strings"
)

// ItemKind names the declaration an Item carries.
type ItemKind int

const (
	KindOther ItemKind = iota
	KindConst
	KindAlias
	KindEnum
	KindStruct
	KindFn
)

func (k ItemKind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindAlias:
		return "type"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindFn:
		return "fn"
	default:
		return "item"
	}
}

func (i *Item) Kind() ItemKind {
	switch {
	case i.Const != nil:
		return KindConst
	case i.Alias != nil:
		return KindAlias
	case i.Enum != nil:
		return KindEnum
	case i.Struct != nil:
		return KindStruct
	case i.Fn != nil:
		return KindFn
	default:
		return KindOther
	}
}

// Name returns the identifier declared by the item, or "" for items
// without one (use, impl, foreign blocks).
func (i *Item) Name() string {
	switch {
	case i.Const != nil:
		return i.Const.Name
	case i.Static != nil:
		return i.Static.Name
	case i.Alias != nil:
		return i.Alias.Name
	case i.Enum != nil:
		return i.Enum.Name
	case i.Struct != nil:
		return i.Struct.Name
	case i.Fn != nil:
		return i.Fn.Name
	case i.Crate != nil:
		return i.Crate.Name
	case i.Mod != nil:
		return i.Mod.Name
	default:
		return ""
	}
}

// Generics returns the generic parameter list of the item, if any.
func (i *Item) Generics() *Generics {
	switch {
	case i.Alias != nil:
		return i.Alias.Generics
	case i.Enum != nil:
		return i.Enum.Generics
	case i.Struct != nil:
		return i.Struct.Generics
	case i.Fn != nil:
		return i.Fn.Generics
	default:
		return nil
	}
}

// IsParameterized reports whether there is at least one generic parameter,
// lifetimes included.
func (g *Generics) IsParameterized() bool {
	return g != nil && len(g.Params) > 0
}

// ABI returns the calling convention of the function. Functions without an
// extern qualifier use the "Rust" ABI, and a bare `extern` means "C".
func (f *FnItem) ABI() string {
	return f.Extern.abi()
}

func (f *BareFnType) ABI() string {
	return f.Extern.abi()
}

func (e *Extern) abi() string {
	if e == nil {
		return "Rust"
	}
	if e.ABI == nil {
		return "C"
	}
	return *e.ABI
}

// StructShape is the syntactic form of a struct declaration.
type StructShape int

const (
	ShapeNamed StructShape = iota
	ShapeTuple
	ShapeUnit
)

func (s *StructItem) Shape() StructShape {
	switch {
	case s.Named != nil:
		return ShapeNamed
	case s.Tuple != nil:
		return ShapeTuple
	default:
		return ShapeUnit
	}
}

// FieldCount returns the number of fields regardless of shape.
func (s *StructItem) FieldCount() int {
	switch s.Shape() {
	case ShapeNamed:
		return len(s.Named.Fields)
	case ShapeTuple:
		return len(s.Tuple.Fields)
	default:
		return 0
	}
}

// Attrs returns the outer attributes, skipping doc comments.
func Attrs(metas []*Meta) []*Attribute {
	var attrs []*Attribute
	for _, m := range metas {
		if m.Attr != nil {
			attrs = append(attrs, m.Attr)
		}
	}
	return attrs
}

// Name returns the attribute path joined with "::".
func (a *Attribute) Name() string {
	return strings.Join(a.Path, "::")
}

// IsWord reports whether the attribute is a bare word such as `no_mangle`.
func (a *Attribute) IsWord() bool {
	return a.Args == nil && a.Value == nil
}

// DocText returns the text of a documentation line carried by the meta: the
// remainder of a `///` comment, or the value of a `#[doc = "..."]`
// attribute.
func (m *Meta) DocText() (string, bool) {
	if m.Doc != nil {
		return strings.TrimPrefix(*m.Doc, "///"), true
	}
	if m.Attr != nil && m.Attr.Name() == "doc" && m.Attr.Value != nil {
		return *m.Attr.Value, true
	}
	return "", false
}
