package java

import (
	"context"
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	slogctx "github.com/veqryn/slog-context"
	"math"
	"strconv"
	"strings"
)

func (g *generator) emitConsts() (string, error) {
	w := common.NewWriter(indentWidth)
	g.writePackage(w)

	w.Open("public class Constants")
	for _, c := range g.run.Consts {
		writeDocs(w, c.Docs)
		decl, err := g.constDecl(c)
		if err != nil {
			return "", err
		}
		w.Line(decl)
	}
	w.Close("")
	return w.String(), nil
}

func (g *generator) constDecl(c ir.Snippet[ir.Const]) (string, error) {
	name := common.ConstName(c.Name)
	ty := c.Item.Type

	switch {
	case ty.Kind == ir.Array:
		elems := make([]string, len(c.Item.Value.Elems))
		for i, e := range c.Item.Value.Elems {
			elems[i] = javaLiteral(*ty.Elem, e.Literal)
		}
		return fmt.Sprintf("public static final %s %s = { %s };", g.javaType(ty), name, strings.Join(elems, ", ")), nil
	case ty.Kind == ir.User && g.run.IsEnum(ty.Name):
		return fmt.Sprintf("public static final %s %s = %s.fromValue(%s);", className(ty.Name), name, className(ty.Name), c.Item.Value.Literal), nil
	case ty.Kind == ir.User && g.isHandle(ty):
		return fmt.Sprintf("public static final long %s = %sL;", name, c.Item.Value.Literal), nil
	case ty.Kind == ir.Pointer, ty.Kind == ir.Function, ty.Kind == ir.User:
		return "", common.Errorf(c.Pos, "bindgen can not emit constant %s of type %s", c.Name, ty)
	default:
		return fmt.Sprintf("public static final %s %s = %s;", g.javaType(ty), name, javaLiteral(ty, c.Item.Value.Literal)), nil
	}
}

// javaLiteral adapts a literal to the Java spelling of type t. Unsigned
// values outside the signed range are narrowed with a cast.
func javaLiteral(t ir.Type, lit string) string {
	switch t.Kind {
	case ir.F32:
		return lit + "f"
	case ir.I64, ir.ISize, ir.U64, ir.USize:
		return lit + "L"
	case ir.I8, ir.U8:
		return narrow(lit, "byte", math.MinInt8, math.MaxInt8)
	case ir.I16, ir.U16:
		return narrow(lit, "short", math.MinInt16, math.MaxInt16)
	case ir.I32, ir.U32:
		if v, err := strconv.ParseInt(lit, 10, 64); err == nil && (v > math.MaxInt32 || v < math.MinInt32) {
			return "(int) " + lit + "L"
		}
		return lit
	default:
		return lit
	}
}

func narrow(lit, ty string, lo, hi int64) string {
	v, err := strconv.ParseInt(lit, 10, 64)
	if err != nil || (v >= lo && v <= hi) {
		return lit
	}
	return "(" + ty + ") " + lit
}

func (g *generator) emitEnum(e ir.Snippet[ir.Enum]) string {
	name := className(e.Name)
	w := common.NewWriter(indentWidth)
	g.writePackage(w)

	writeDocs(w, e.Docs)
	w.Open("public enum %s", name)

	next := int64(0)
	for i, v := range e.Item.Variants {
		if v.Value != nil {
			next = *v.Value
		}
		sep := ","
		if i == len(e.Item.Variants)-1 {
			sep = ";"
		}
		writeDocs(w, v.Docs)
		w.Line("%s(%d)%s", common.ConstName(v.Name), next, sep)
		next++
	}
	if len(e.Item.Variants) == 0 {
		w.Line(";")
	}
	w.Line("")

	w.Line("private final int value;")
	w.Line("")
	w.Open("%s(int value)", name)
	w.Line("this.value = value;")
	w.Close("")
	w.Line("")
	w.Open("public int getValue()")
	w.Line("return value;")
	w.Close("")
	w.Line("")
	w.Open("public static %s fromValue(int value)", name)
	w.Open("for (%s v : values())", name)
	w.Open("if (v.value == value)")
	w.Line("return v;")
	w.Close("")
	w.Close("")
	w.Line(`throw new IllegalArgumentException("unknown %s " + value);`, name)
	w.Close("")

	w.Close("")
	return w.String()
}

// emitStruct writes a plain class. Array pointers become Java arrays and
// their length and capacity fields are dropped.
func (g *generator) emitStruct(s ir.Snippet[ir.Struct]) string {
	w := common.NewWriter(indentWidth)
	g.writePackage(w)

	writeDocs(w, s.Docs)
	w.Open("public class %s", className(s.Name))
	for _, grp := range ir.GroupFields(s.Item.Fields) {
		writeDocs(w, grp.Field.Docs)
		ty := g.javaType(grp.Field.Type)
		if grp.Kind == ir.FieldArray {
			ty = g.javaType(grp.Elem) + "[]"
		}
		w.Line("public %s %s;", ty, fieldName(grp))
	}
	w.Close("")
	return w.String()
}

// emitNative appends the static native declaration of fn to
// NativeBindings.java and generates the interfaces of its callbacks.
func (g *generator) emitNative(ctx context.Context, fn ir.Snippet[ir.Signature]) {
	h := common.FunctionHeader{
		MethodName: memberName(fn.Name),
		ReturnType: g.javaType(fn.Item.Output),
	}
	for _, a := range ir.VisibleArgs(fn.Item.Inputs) {
		h.Parameters = append(h.Parameters, common.Field{Name: memberName(a.Name), Type: g.argType(a)})
		if a.Kind == ir.ArgCallback {
			g.emitCallbackInterface(ctx, fn.Pos, *a.Callback)
		}
	}

	w := common.NewWriter(indentWidth)
	writeDocs(w, fn.Docs)
	w.Line("public static native %s %s(%s);", h.ReturnType, h.MethodName, h.Params())
	w.Line("")
	g.outputs.Append(bindingsFile, w.String())
}

// emitCallbackInterface writes the interface a callback is delivered
// through, unless one with the same name exists already. The name ignores
// the result parameter and the output, so differently shaped callbacks can
// meet on one interface and its trampoline; the first one wins and the
// clash is reported.
func (g *generator) emitCallbackInterface(ctx context.Context, pos ast.Position, sig ir.Signature) {
	name := g.callbackName(sig)
	key := ir.CallbackKey(sig)
	if first, ok := g.interfaces[name]; ok {
		if first != key {
			diag := common.Warningf(pos, "callback interface %s already generated for fn(%s), reused for fn(%s)", name, first, key)
			slogctx.Warn(ctx, diag.Message, "pos", pos.String())
			g.run.Warn(diag)
		}
		return
	}
	g.interfaces[name] = key
	path := name + ".java"

	h := common.FunctionHeader{MethodName: "call", ReturnType: g.javaType(sig.Output)}
	for _, a := range ir.VisibleArgs(sig.Inputs) {
		h.Parameters = append(h.Parameters, common.Field{Name: memberName(a.Name), Type: g.argType(a)})
		if a.Kind == ir.ArgCallback {
			g.emitCallbackInterface(ctx, pos, *a.Callback)
		}
	}

	w := common.NewWriter(indentWidth)
	g.writePackage(w)
	w.Open("public interface %s", name)
	w.Line("public %s %s(%s);", h.ReturnType, h.MethodName, h.Params())
	w.Close("")
	g.outputs[path] = w.String()

	slogctx.Debug(ctx, "generated callback interface", "name", name)
}
