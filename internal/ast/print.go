package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String prints the type in canonical source form, e.g. `*mut c_void`.
func (t *Type) String() string {
	if t == nil {
		return "()"
	}
	switch {
	case t.Pointer != nil:
		return "*" + t.Pointer.Mutability + " " + t.Pointer.Elem.String()
	case t.Ref != nil:
		var b strings.Builder
		b.WriteString("&")
		if t.Ref.Lifetime != "" {
			b.WriteString(t.Ref.Lifetime + " ")
		}
		if t.Ref.Mut {
			b.WriteString("mut ")
		}
		b.WriteString(t.Ref.Elem.String())
		return b.String()
	case t.Array != nil:
		if t.Array.Len == nil {
			return "[" + t.Array.Elem.String() + "]"
		}
		return "[" + t.Array.Elem.String() + "; " + t.Array.Len.String() + "]"
	case t.Tuple != nil:
		elems := make([]string, len(t.Tuple.Elems))
		for i, e := range t.Tuple.Elems {
			elems[i] = e.String()
		}
		if len(elems) == 1 {
			return "(" + elems[0] + ",)"
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case t.Never:
		return "!"
	case t.BareFn != nil:
		return t.BareFn.String()
	case t.Path != nil:
		return t.Path.String()
	default:
		return "()"
	}
}

// IsUnit reports whether the type is the empty tuple.
func (t *Type) IsUnit() bool {
	return t == nil || (t.Tuple != nil && len(t.Tuple.Elems) == 0)
}

func (f *BareFnType) String() string {
	var b strings.Builder
	if f.Unsafe {
		b.WriteString("unsafe ")
	}
	if f.Extern != nil {
		b.WriteString("extern " + strconv.Quote(f.ABI()) + " ")
	}
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name + ": ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if f.Output != nil && !f.Output.IsUnit() {
		b.WriteString(" -> " + f.Output.String())
	}
	return b.String()
}

func (p *PathType) String() string {
	var b strings.Builder
	if p.Global {
		b.WriteString("::")
	}
	for i, seg := range p.Segments {
		if i > 0 {
			b.WriteString("::")
		}
		b.WriteString(seg.Name)
		if len(seg.Args) > 0 {
			args := make([]string, len(seg.Args))
			for j, a := range seg.Args {
				if a.Lifetime != "" {
					args[j] = a.Lifetime
				} else {
					args[j] = a.Type.String()
				}
			}
			b.WriteString("<" + strings.Join(args, ", ") + ">")
		}
	}
	return b.String()
}

// HasGenericArgs reports whether any path segment carries `<...>` arguments.
func (p *PathType) HasGenericArgs() bool {
	for _, seg := range p.Segments {
		if len(seg.Args) > 0 {
			return true
		}
	}
	return false
}

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Neg {
		b.WriteString("-")
	}
	switch {
	case e.Float != nil:
		b.WriteString(*e.Float)
	case e.Int != nil:
		b.WriteString(*e.Int)
	case e.Str != nil:
		b.WriteString(strconv.Quote(*e.Str))
	case e.Char != nil:
		b.WriteString(strconv.QuoteRune([]rune(*e.Char)[0]))
	case e.Bool != nil:
		b.WriteString(*e.Bool)
	case e.Array != nil:
		elems := make([]string, len(e.Array.Elems))
		for i, el := range e.Array.Elems {
			elems[i] = el.String()
		}
		b.WriteString("[" + strings.Join(elems, ", "))
		if e.Array.Repeat != nil {
			b.WriteString("; " + e.Array.Repeat.String())
		}
		b.WriteString("]")
	case e.Ref != nil:
		b.WriteString("&" + e.Ref.String())
	case e.Path != nil:
		b.WriteString(e.Path.String())
	}
	if e.Cast != nil {
		b.WriteString(" as " + e.Cast.String())
	}
	return b.String()
}

// IntLiteral returns the value of a plain (optionally negated) integer
// literal. Type suffixes and `_` separators are accepted.
func (e *Expr) IntLiteral() (int64, bool) {
	if e == nil || e.Int == nil || e.Cast != nil {
		return 0, false
	}
	v, err := parseInt(*e.Int)
	if err != nil {
		return 0, false
	}
	if e.Neg {
		v = -v
	}
	return v, true
}

func parseInt(lit string) (int64, error) {
	lit = strings.ReplaceAll(lit, "_", "")
	base := 10
	switch {
	case strings.HasPrefix(lit, "0x"):
		base, lit = 16, lit[2:]
	case strings.HasPrefix(lit, "0o"):
		base, lit = 8, lit[2:]
	case strings.HasPrefix(lit, "0b"):
		base, lit = 2, lit[2:]
	}
	for _, suffix := range []string{"i8", "i16", "i32", "i64", "i128", "isize", "u8", "u16", "u32", "u64", "u128", "usize"} {
		if strings.HasSuffix(lit, suffix) {
			lit = strings.TrimSuffix(lit, suffix)
			break
		}
	}
	u, err := strconv.ParseUint(lit, base, 64)
	if err != nil {
		return 0, err
	}
	return int64(u), nil
}

// Signature prints a function declaration without its body.
func (f *FnItem) Signature() string {
	var b strings.Builder
	if f.Unsafe {
		b.WriteString("unsafe ")
	}
	if f.Extern != nil {
		b.WriteString("extern " + strconv.Quote(f.ABI()) + " ")
	}
	b.WriteString("fn " + f.Name + f.Generics.String() + "(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name + ": " + p.Type.String())
	}
	b.WriteString(")")
	if f.Output != nil && !f.Output.IsUnit() {
		b.WriteString(" -> " + f.Output.String())
	}
	return b.String()
}

func (g *Generics) String() string {
	if !g.IsParameterized() {
		return ""
	}
	params := make([]string, len(g.Params))
	for i, p := range g.Params {
		if p.Lifetime != "" {
			params[i] = p.Lifetime
		} else {
			params[i] = p.Name
		}
	}
	return "<" + strings.Join(params, ", ") + ">"
}

// String prints a one-line summary of the item for diagnostics.
func (i *Item) String() string {
	switch {
	case i.Const != nil:
		return fmt.Sprintf("const %s: %s = %s;", i.Const.Name, i.Const.Type, i.Const.Value)
	case i.Alias != nil:
		return fmt.Sprintf("type %s%s = %s;", i.Alias.Name, i.Alias.Generics, i.Alias.Type)
	case i.Enum != nil:
		return fmt.Sprintf("enum %s%s", i.Enum.Name, i.Enum.Generics)
	case i.Struct != nil:
		return fmt.Sprintf("struct %s%s", i.Struct.Name, i.Struct.Generics)
	case i.Fn != nil:
		return i.Fn.Signature()
	default:
		return i.Name()
	}
}
