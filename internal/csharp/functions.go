package csharp

import (
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"strings"
)

var classUsings = []string{
	"System",
	"System.Collections.Generic",
	"System.Linq",
	"System.Runtime.InteropServices",
	"System.Threading.Tasks",
}

func (g *generator) hasInterface() bool {
	for _, fn := range g.run.Functions {
		if g.isWrapperFunction(fn) {
			return true
		}
	}
	return false
}

func (g *generator) emitClass() string {
	w := common.NewWriter(indentWidth)
	className := g.lang.ClassName()

	w.Line("#if __IOS__")
	w.Line("using ObjCRuntime;")
	w.Line("#endif")
	writeUsings(w, classUsings...)

	w.Open("namespace %s", g.lang.Namespace())
	if g.hasInterface() {
		w.Open("public partial class %s : I%s", className, className)
	} else {
		w.Open("public partial class %s", className)
	}

	w.Line("#if __IOS__")
	w.Line(`internal const string DllName = "__Internal";`)
	w.Line("#else")
	w.Line("internal const string DllName = %q;", g.lang.libName)
	w.Line("#endif")
	w.Line("")

	for _, fn := range g.run.Functions {
		writeDocs(w, fn.Docs)
		if g.isWrapperFunction(fn) {
			g.emitWrapperFunction(w, fn)
		}
		g.emitExternDecl(w, fn)
	}

	for _, cb := range ir.CollectCallbacksBy(g.run.Functions, g.callbackName) {
		g.emitCallbackDelegate(w, cb.Sig)
		if cb.Single {
			g.emitCallbackWrapper(w, cb.Sig)
		}
	}

	w.Close("")
	w.Close("")
	return w.String()
}

func (g *generator) emitInterface() (string, bool) {
	if !g.hasInterface() {
		return "", false
	}

	w := common.NewWriter(indentWidth)
	writeUsings(w, classUsings...)

	w.Open("namespace %s", g.lang.Namespace())
	w.Open("public partial interface I%s", g.lang.ClassName())
	for _, fn := range g.run.Functions {
		if g.isWrapperFunction(fn) {
			h := g.wrapperHeader(fn)
			w.Line("%s %s(%s);", h.ReturnType, h.MethodName, h.Params())
		}
	}
	w.Close("")
	w.Close("")
	return w.String(), true
}

func externName(name string) string {
	return common.PascalName(name) + "Native"
}

func (g *generator) externParams(sig ir.Signature) []common.Field {
	var params []common.Field
	for _, a := range ir.Args(sig.Inputs) {
		name := paramName(a.Name)
		switch a.Kind {
		case ir.ArgUserData:
			params = append(params, common.Field{Name: name, Type: "IntPtr"})
		case ir.ArgArray:
			params = append(params,
				common.Field{Name: name, Type: "[In] " + g.fieldType(a.Elem) + "[]"},
				common.Field{Name: paramName(a.LenName), Type: "ulong"},
			)
		case ir.ArgCallback:
			params = append(params, common.Field{Name: name, Type: g.callbackName(*a.Callback)})
		default:
			params = append(params, common.Field{Name: name, Type: g.externParamType(a.Type)})
		}
	}
	return params
}

func (g *generator) externParamType(t ir.Type) string {
	switch {
	case g.isStruct(t):
		return "ref " + t.Name
	case g.isNative(t):
		return "ref " + nativeStructName(t.Name)
	default:
		return marshalAttr(t) + g.nativeType(t)
	}
}

func (g *generator) externReturnType(t ir.Type) string {
	switch t.Kind {
	case ir.String:
		return "IntPtr"
	case ir.Bool:
		return "[return: MarshalAs(UnmanagedType.U1)]\nbool"
	default:
		return g.nativeType(t)
	}
}

func (g *generator) emitExternDecl(w *common.Writer, fn ir.Snippet[ir.Signature]) {
	h := common.FunctionHeader{
		MethodName: externName(fn.Name),
		Parameters: g.externParams(fn.Item),
		ReturnType: g.externReturnType(fn.Item.Output),
	}

	w.Line("[DllImport(DllName, EntryPoint = %q)]", fn.Name)
	ret := h.ReturnType
	if attr, ty, ok := strings.Cut(ret, "\n"); ok {
		w.Line(attr)
		ret = ty
	}
	w.Line("private static extern %s %s(%s);", ret, h.MethodName, h.Params())
	w.Line("")
}

// taskValues returns the visible callback arguments that complete the
// task, i.e. everything but the result.
func taskValues(cb ir.Signature) []ir.Arg {
	var values []ir.Arg
	for _, a := range ir.VisibleArgs(cb.Inputs) {
		if a.Kind == ir.ArgPlain && ir.IsResult(ir.Param{Name: a.Name, Type: a.Type}) {
			continue
		}
		values = append(values, a)
	}
	return values
}

func hasResult(cb ir.Signature) bool {
	for _, p := range cb.Inputs {
		if ir.IsResult(p) {
			return true
		}
	}
	return false
}

func (g *generator) argManagedType(a ir.Arg) string {
	if a.Kind == ir.ArgArray {
		return g.listType(a.Elem)
	}
	return g.managedType(a.Type)
}

// taskResultType is T in the Task<T> completed by cb, or "" for a plain
// Task.
func (g *generator) taskResultType(cb ir.Signature) string {
	values := taskValues(cb)
	switch len(values) {
	case 0:
		return ""
	case 1:
		return g.argManagedType(values[0])
	default:
		types := make([]string, len(values))
		for i, a := range values {
			types[i] = g.argManagedType(a)
		}
		return "(" + strings.Join(types, ", ") + ")"
	}
}

func (g *generator) wrapperHeader(fn ir.Snippet[ir.Signature]) common.FunctionHeader {
	h := common.FunctionHeader{MethodName: common.PascalName(fn.Name)}

	for _, a := range ir.VisibleArgs(fn.Item.Inputs) {
		switch a.Kind {
		case ir.ArgCallback:
			continue
		case ir.ArgArray:
			h.Parameters = append(h.Parameters, common.Field{Name: paramName(a.Name), Type: g.listType(a.Elem)})
		default:
			h.Parameters = append(h.Parameters, common.Field{Name: paramName(a.Name), Type: g.managedType(a.Type)})
		}
	}

	if cbs := ir.Callbacks(fn.Item.Inputs); len(cbs) == 1 {
		if t := g.taskResultType(*cbs[0].Type.Func); t != "" {
			h.ReturnType = "Task<" + t + ">"
		} else {
			h.ReturnType = "Task"
		}
	} else {
		h.ReturnType = g.managedType(fn.Item.Output)
	}
	return h
}

// nativeCall collects the statements around an extern call.
type nativeCall struct {
	pre  []string
	args []string
	post []string
}

func (g *generator) buildCall(sig ir.Signature) nativeCall {
	var c nativeCall
	hasCallback := ir.NumCallbacks(sig.Inputs) > 0

	for _, a := range ir.Args(sig.Inputs) {
		name := paramName(a.Name)
		switch a.Kind {
		case ir.ArgUserData:
			if hasCallback {
				c.args = append(c.args, "userData")
			} else {
				c.args = append(c.args, "IntPtr.Zero")
			}
		case ir.ArgArray:
			switch {
			case a.Elem.Kind == ir.U8:
				c.args = append(c.args, name, fmt.Sprintf("(ulong)(%s?.Length ?? 0)", name))
			case g.isNative(a.Elem):
				native := name + "Native"
				c.pre = append(c.pre, fmt.Sprintf("var %s = %s.Select(x => x.ToNative()).ToArray();", native, name))
				c.args = append(c.args, native, fmt.Sprintf("(ulong)%s.Length", native))
				c.post = append(c.post, fmt.Sprintf("foreach (var x in %s) { x.Free(); }", native))
			default:
				c.args = append(c.args, name+"?.ToArray()", fmt.Sprintf("(ulong)(%s?.Count ?? 0)", name))
			}
		case ir.ArgCallback:
			c.args = append(c.args, "DelegateOn"+g.callbackName(*a.Callback))
		default:
			switch {
			case g.isStruct(a.Type):
				c.args = append(c.args, "ref "+name)
			case g.isNative(a.Type):
				native := name + "Native"
				c.pre = append(c.pre, fmt.Sprintf("var %s = %s.ToNative();", native, name))
				c.args = append(c.args, "ref "+native)
				c.post = append(c.post, native+".Free();")
			default:
				c.args = append(c.args, name)
			}
		}
	}
	return c
}

func (g *generator) emitWrapperFunction(w *common.Writer, fn ir.Snippet[ir.Signature]) {
	h := g.wrapperHeader(fn)
	c := g.buildCall(fn.Item)
	call := fmt.Sprintf("%s(%s)", externName(fn.Name), strings.Join(c.args, ", "))

	var body common.FunctionBody
	if cbs := ir.Callbacks(fn.Item.Inputs); len(cbs) == 1 {
		prepare := g.utils("PrepareTask()")
		if t := g.taskResultType(*cbs[0].Type.Func); t != "" {
			prepare = g.utils("PrepareTask<" + t + ">()")
		}
		body.Rows = append(body.Rows, "var (ret, userData) = "+prepare+";")
		body.Rows = append(body.Rows, c.pre...)
		body.Rows = append(body.Rows, call+";")
		body.Rows = append(body.Rows, c.post...)
		body.Rows = append(body.Rows, "return ret;")
	} else {
		body.Rows = append(body.Rows, c.pre...)
		if fn.Item.Output.Kind == ir.Unit {
			body.Rows = append(body.Rows, call+";")
			body.Rows = append(body.Rows, c.post...)
		} else {
			body.Rows = append(body.Rows, "var ret = "+call+";")
			body.Rows = append(body.Rows, c.post...)
			body.Rows = append(body.Rows, "return "+g.fromNative(fn.Item.Output, "ret")+";")
		}
	}

	w.Open("public %s %s(%s)", h.ReturnType, h.MethodName, h.Params())
	for _, row := range body.Rows {
		w.Line(row)
	}
	w.Close("")
	w.Line("")
}

// fromNative converts a value returned by, or passed to, a native
// function into its managed form.
func (g *generator) fromNative(t ir.Type, expr string) string {
	switch {
	case t.Kind == ir.String:
		return "Marshal.PtrToStringAnsi(" + expr + ")"
	case g.isNative(t):
		return fmt.Sprintf("new %s(Marshal.PtrToStructure<%s>(%s))", t.Name, nativeStructName(t.Name), expr)
	default:
		return expr
	}
}

func (g *generator) delegateParams(sig ir.Signature) []common.Field {
	var params []common.Field
	for _, a := range ir.Args(sig.Inputs) {
		name := paramName(a.Name)
		switch a.Kind {
		case ir.ArgUserData:
			params = append(params, common.Field{Name: name, Type: "IntPtr"})
		case ir.ArgArray:
			params = append(params,
				common.Field{Name: name, Type: "IntPtr"},
				common.Field{Name: paramName(a.LenName), Type: "ulong"},
			)
		case ir.ArgCallback:
			params = append(params, common.Field{Name: name, Type: g.callbackName(*a.Callback)})
		default:
			ty := marshalAttr(a.Type) + g.nativeType(a.Type)
			if a.Type.Kind == ir.User && !g.run.IsEnum(a.Type.Name) {
				ty = "IntPtr"
			}
			params = append(params, common.Field{Name: name, Type: ty})
		}
	}
	return params
}

func (g *generator) emitCallbackDelegate(w *common.Writer, sig ir.Signature) {
	h := common.FunctionHeader{
		MethodName: g.callbackName(sig),
		Parameters: g.delegateParams(sig),
		ReturnType: g.nativeType(sig.Output),
	}
	w.Line("[UnmanagedFunctionPointer(CallingConvention.Cdecl)]")
	w.Line("internal delegate %s %s(%s);", h.ReturnType, h.MethodName, h.Params())
	w.Line("")
}

// callbackValue converts a delegate argument into the managed value the
// task completes with.
func (g *generator) callbackValue(a ir.Arg) string {
	name := paramName(a.Name)
	if a.Kind == ir.ArgArray {
		length := paramName(a.LenName)
		switch {
		case a.Elem.Kind == ir.U8:
			return g.utils(fmt.Sprintf("CopyToByteArray(%s, %s)", name, length))
		case g.isNative(a.Elem):
			return g.utils(fmt.Sprintf("CopyToObjectList<%s>(%s, %s).Select(x => new %s(x)).ToList()",
				nativeStructName(a.Elem.Name), name, length, a.Elem.Name))
		default:
			return g.utils(fmt.Sprintf("CopyToObjectList<%s>(%s, %s)", g.managedType(a.Elem), name, length))
		}
	}

	switch {
	case g.isStruct(a.Type):
		return fmt.Sprintf("Marshal.PtrToStructure<%s>(%s)", a.Type.Name, name)
	case g.isNative(a.Type):
		return fmt.Sprintf("new %s(Marshal.PtrToStructure<%s>(%s))", a.Type.Name, nativeStructName(a.Type.Name), name)
	default:
		return name
	}
}

func (g *generator) emitCallbackWrapper(w *common.Writer, sig ir.Signature) {
	name := g.callbackName(sig)
	h := common.FunctionHeader{
		MethodName: "On" + name,
		Parameters: g.delegateParams(sig),
		ReturnType: g.nativeType(sig.Output),
	}

	args := []string{"userData"}
	if hasResult(sig) {
		args = append(args, fmt.Sprintf("Marshal.PtrToStructure<%s>(%s)", ir.ResultType, ir.ResultName))
	}

	values := taskValues(sig)
	switch len(values) {
	case 0:
	case 1:
		args = append(args, "() => "+g.callbackValue(values[0]))
	default:
		exprs := make([]string, len(values))
		for i, a := range values {
			exprs[i] = g.callbackValue(a)
		}
		args = append(args, "() => ("+strings.Join(exprs, ", ")+")")
	}

	w.Line("#if __IOS__")
	w.Line("[MonoPInvokeCallback(typeof(%s))]", name)
	w.Line("#endif")
	w.Open("private static %s %s(%s)", h.ReturnType, h.MethodName, h.Params())
	w.Line("%s;", g.utils("CompleteTask("+strings.Join(args, ", ")+")"))
	if sig.Output.Kind != ir.Unit {
		w.Line("return default(%s);", h.ReturnType)
	}
	w.Close("")
	w.Line("")
	w.Line("private static readonly %s DelegateOn%s = On%s;", name, name, name)
	w.Line("")
}
