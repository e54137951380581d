package csharp

import (
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"strings"
)

func (g *generator) emitConsts() (string, error) {
	w := common.NewWriter(indentWidth)
	writeUsings(w, "System")

	w.Open("namespace %s", g.lang.Namespace())
	w.Open("public static class %s", g.lang.constsClassName)

	for _, c := range g.run.Consts {
		writeDocs(w, c.Docs)
		decl, err := g.constDecl(c)
		if err != nil {
			return "", err
		}
		w.Line(decl)
	}

	for _, decl := range g.lang.customConsts {
		w.Line(decl)
	}

	w.Close("")
	w.Close("")
	return w.String(), nil
}

func (g *generator) constDecl(c ir.Snippet[ir.Const]) (string, error) {
	name := memberName(c.Name)
	ty := c.Item.Type

	switch ty.Kind {
	case ir.Array:
		elems := make([]string, len(c.Item.Value.Elems))
		for i, e := range c.Item.Value.Elems {
			elems[i] = constLiteral(*ty.Elem, e.Literal)
		}
		return fmt.Sprintf("public static readonly %s %s = { %s };", g.managedType(ty), name, strings.Join(elems, ", ")), nil
	case ir.Pointer, ir.Function:
		return "", common.Errorf(c.Pos, "bindgen can not emit constant %s of type %s", c.Name, ty)
	case ir.User:
		if g.run.IsEnum(ty.Name) {
			return fmt.Sprintf("public const %s %s = (%s) %s;", ty.Name, name, ty.Name, c.Item.Value.Literal), nil
		}
		return fmt.Sprintf("public static readonly %s %s = %s;", g.managedType(ty), name, c.Item.Value.Literal), nil
	default:
		return fmt.Sprintf("public const %s %s = %s;", g.managedType(ty), name, constLiteral(ty, c.Item.Value.Literal)), nil
	}
}

// constLiteral adapts a literal to the C# spelling of type t.
func constLiteral(t ir.Type, lit string) string {
	switch t.Kind {
	case ir.F32:
		return lit + "f"
	case ir.F64:
		if !strings.ContainsAny(lit, ".eE") {
			return lit + ".0"
		}
		return lit
	case ir.U32:
		return lit + "u"
	case ir.I64, ir.ISize:
		return lit + "L"
	case ir.U64, ir.USize:
		return lit + "UL"
	default:
		return lit
	}
}

func (g *generator) emitTypes() string {
	w := common.NewWriter(indentWidth)
	writeUsings(w,
		"System",
		"System.Collections.Generic",
		"System.Linq",
		"System.Runtime.InteropServices",
		"JetBrains.Annotations",
	)

	w.Open("namespace %s", g.lang.Namespace())

	for _, e := range g.run.Enums {
		writeDocs(w, e.Docs)
		g.emitEnum(w, e)
	}

	for _, s := range g.run.Structs {
		if g.run.IsOpaque(s.Name) {
			continue
		}
		writeDocs(w, s.Docs)
		if g.run.IsNativeName(s.Name) {
			g.emitWrapperStruct(w, s)
			g.emitNativeStruct(w, s)
		} else {
			g.emitNormalStruct(w, s)
		}
	}

	w.Close("")
	return w.String()
}

func (g *generator) emitEnum(w *common.Writer, e ir.Snippet[ir.Enum]) {
	w.Open("public enum %s", e.Name)
	for _, v := range e.Item.Variants {
		writeDocs(w, v.Docs)
		if v.Value != nil {
			w.Line("%s = %d,", memberName(v.Name), *v.Value)
		} else {
			w.Line("%s,", memberName(v.Name))
		}
	}
	w.Close("")
	w.Line("")
}

func (g *generator) fieldDecl(f ir.StructField, ty string) string {
	attr := marshalAttr(f.Type)
	if f.Type.Kind == ir.Array {
		attr = fmt.Sprintf("[MarshalAs(UnmanagedType.ByValArray, SizeConst = %d)] ", f.Type.Len)
	}
	return fmt.Sprintf("%spublic %s %s;", attr, ty, memberName(f.Name))
}

func (g *generator) emitNormalStruct(w *common.Writer, s ir.Snippet[ir.Struct]) {
	w.Line("[StructLayout(LayoutKind.Sequential)]")
	w.Open("public struct %s", s.Name)
	for _, f := range s.Item.Fields {
		writeDocs(w, f.Docs)
		w.Line(g.fieldDecl(f, g.nativeType(f.Type)))
	}
	w.Close("")
	w.Line("")
}

// emitWrapperStruct writes the managed side of a native struct: arrays
// become lists, and conversions to and from the native layout.
func (g *generator) emitWrapperStruct(w *common.Writer, s ir.Snippet[ir.Struct]) {
	groups := ir.GroupFields(s.Item.Fields)

	w.Line("[PublicAPI]")
	w.Open("public struct %s", s.Name)
	for _, grp := range groups {
		writeDocs(w, grp.Field.Docs)
		switch {
		case grp.Kind == ir.FieldArray:
			w.Line("public %s %s;", g.listType(grp.Elem), memberName(ir.ArrayBase(grp.Field.Name)))
		case g.isNative(grp.Field.Type):
			w.Line("public %s %s;", grp.Field.Type.Name, memberName(grp.Field.Name))
		default:
			w.Line(g.fieldDecl(grp.Field, g.managedType(grp.Field.Type)))
		}
	}
	w.Line("")

	native := nativeStructName(s.Name)
	w.Open("internal %s(%s native)", s.Name, native)
	for _, grp := range groups {
		name := memberName(grp.Field.Name)
		switch {
		case grp.Kind == ir.FieldArray:
			w.Line("%s = %s;", memberName(ir.ArrayBase(grp.Field.Name)), g.copyToManaged(grp, "native"))
		case g.isNative(grp.Field.Type):
			w.Line("%s = new %s(native.%s);", name, grp.Field.Type.Name, name)
		default:
			w.Line("%s = native.%s;", name, name)
		}
	}
	w.Close("")
	w.Line("")

	w.Open("internal %s ToNative()", native)
	w.Open("return new %s", native)
	for _, grp := range groups {
		name := memberName(grp.Field.Name)
		switch {
		case grp.Kind == ir.FieldArray:
			base := memberName(ir.ArrayBase(grp.Field.Name))
			ptr, length := g.copyToNative(grp.Elem, base)
			w.Line("%s = %s,", name, ptr)
			w.Line("%s = %s,", memberName(grp.LenName), length)
			if grp.CapName != "" {
				w.Line("%s = 0,", memberName(grp.CapName))
			}
		case g.isNative(grp.Field.Type):
			w.Line("%s = %s.ToNative(),", name, name)
		default:
			w.Line("%s = %s,", name, name)
		}
	}
	w.Close(";")
	w.Close("")
	w.Close("")
	w.Line("")
}

// copyToManaged reads an array field of the native struct held in src.
func (g *generator) copyToManaged(grp ir.FieldGroup, src string) string {
	ptr := src + "." + memberName(grp.Field.Name)
	length := src + "." + memberName(grp.LenName)
	switch {
	case grp.Elem.Kind == ir.U8:
		return g.utils(fmt.Sprintf("CopyToByteArray(%s, %s)", ptr, length))
	case g.isNative(grp.Elem):
		return g.utils(fmt.Sprintf("CopyToObjectList<%s>(%s, %s).Select(x => new %s(x)).ToList()",
			nativeStructName(grp.Elem.Name), ptr, length, grp.Elem.Name))
	default:
		return g.utils(fmt.Sprintf("CopyToObjectList<%s>(%s, %s)", g.managedType(grp.Elem), ptr, length))
	}
}

// copyToNative returns the pointer and length expressions that copy the
// managed array field into unmanaged memory.
func (g *generator) copyToNative(elem ir.Type, field string) (string, string) {
	switch {
	case elem.Kind == ir.U8:
		return g.utils("CopyFromByteArray(" + field + ")"), fmt.Sprintf("(ulong)(%s?.Length ?? 0)", field)
	case g.isNative(elem):
		return g.utils(fmt.Sprintf("CopyFromObjectList(%s.Select(x => x.ToNative()).ToList())", field)), fmt.Sprintf("(ulong)(%s?.Count ?? 0)", field)
	default:
		return g.utils("CopyFromObjectList(" + field + ")"), fmt.Sprintf("(ulong)(%s?.Count ?? 0)", field)
	}
}

func (g *generator) emitNativeStruct(w *common.Writer, s ir.Snippet[ir.Struct]) {
	groups := ir.GroupFields(s.Item.Fields)

	w.Line("[StructLayout(LayoutKind.Sequential)]")
	w.Open("internal struct %s", nativeStructName(s.Name))
	for _, f := range s.Item.Fields {
		w.Line(g.fieldDecl(f, g.fieldType(f.Type)))
	}
	w.Line("")

	w.Open("internal void Free()")
	for _, grp := range groups {
		name := memberName(grp.Field.Name)
		switch {
		case grp.Kind == ir.FieldArray:
			w.Line("%s;", g.utils(fmt.Sprintf("FreeList(%s, %s)", name, memberName(grp.LenName))))
		case g.isNative(grp.Field.Type):
			w.Line("%s.Free();", name)
		}
	}
	w.Close("")
	w.Close("")
	w.Line("")
}
