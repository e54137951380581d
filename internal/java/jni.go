package java

import (
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"strings"
)

// jniPrelude is the head of jni.rs. The glue relies on the FromJava and
// ToJava conversion traits, the gen_ctx! macro, convert_cb_from_java and
// the JVM static of the hosting crate.
func (g *generator) jniPrelude() string {
	w := common.NewWriter(indentWidth)
	w.Line("// JNI glue generated by ffi-bindgen. Do not edit.")
	w.Line("")
	w.Line("use jni::JNIEnv;")
	w.Line("use jni::objects::{GlobalRef, JClass, JObject, JString};")
	w.Line("use jni::sys::{jarray, jboolean, jbyte, jbyteArray, jdouble, jfloat, jint, jlong, jobject, jshort, jsize};")
	w.Line("use std::ffi::CString;")
	w.Line("use std::os::raw::{c_char, c_void};")
	w.Line("use std::{mem, ptr, slice};")
	w.Line("use %s::*;", g.lang.crateName())
	w.Line("")
	return w.String()
}

// trampolineName is the extern function passed to the native library for
// the idx-th of count callbacks of fnName.
func (g *generator) trampolineName(fnName string, sig ir.Signature, idx, count int) string {
	if count > 1 {
		return fmt.Sprintf("call_%s_%d", fnName, idx)
	}
	return "call_" + g.callbackName(sig)
}

// jniFunction renders the Java_..._NativeBindings_<method> entry point of
// fn together with the trampolines its callbacks need.
func (g *generator) jniFunction(fn ir.Snippet[ir.Signature]) string {
	if g.lang.wrapperBlacklist.Has(fn.Name) {
		g.run.Warn(common.Notef(fn.Pos, "no JNI glue for %s: it is blacklisted", fn.Name))
		return ""
	}

	cbs := ir.Callbacks(fn.Item.Inputs)
	if len(cbs) > 1 && g.lang.multiCallback == ir.SkipWrapper {
		g.run.Warn(common.Warningf(fn.Pos, "skipping JNI glue for %s: it takes %d callbacks", fn.Name, len(cbs)))
		return ""
	}

	w := common.NewWriter(indentWidth)
	for idx, p := range cbs {
		name := g.trampolineName(fn.Name, *p.Type.Func, idx, len(cbs))
		if g.trampolines.Has(name) {
			continue
		}
		g.trampolines.Add(name)
		g.writeTrampoline(w, name, *p.Type.Func, idx, len(cbs))
	}

	inputs := []string{"env: JNIEnv", "_class: JClass"}
	var stmts, args, cbNames []string
	cbIdx := 0

	for _, a := range ir.Args(fn.Item.Inputs) {
		name := a.Name
		switch a.Kind {
		case ir.ArgUserData:
			if len(cbs) > 0 {
				args = append(args, "ctx")
			} else {
				args = append(args, "ptr::null_mut()")
			}
		case ir.ArgArray:
			inputs = append(inputs, name+": JObject")
			stmts = append(stmts, fmt.Sprintf("let %s = Vec::from_java(&env, %s);", name, name))
			args = append(args, name+".as_ptr()", name+".len()")
		case ir.ArgCallback:
			inputs = append(inputs, name+": JObject")
			cbNames = append(cbNames, name)
			args = append(args, g.trampolineName(fn.Name, *a.Callback, cbIdx, len(cbs)))
			cbIdx++
		default:
			inputs = append(inputs, name+": "+g.jniType(a.Type))
			stmt, arg := g.jniArg(name, a.Type)
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
			args = append(args, arg)
		}
	}

	if len(cbNames) > 0 {
		stmts = append(stmts, fmt.Sprintf("let ctx = gen_ctx!(env, %s);", strings.Join(cbNames, ", ")))
	}

	symbol := fmt.Sprintf("Java_%s_%s_%s", g.mangledNamespace(), bindingsClass, memberName(fn.Name))
	call := fmt.Sprintf("%s::%s(%s)", g.lang.crateName(), fn.Name, strings.Join(args, ", "))
	ret, conv := g.jniReturn(fn.Item.Output)

	w.Line("#[no_mangle]")
	w.Open("pub unsafe extern \"system\" fn %s(%s)%s", symbol, strings.Join(inputs, ", "), ret)
	for _, stmt := range stmts {
		w.Line(stmt)
	}
	if conv == "" {
		w.Line("%s;", call)
	} else {
		w.Line("let ret = %s;", call)
		w.Line(conv)
	}
	w.Close("")
	w.Line("")
	return w.String()
}

// jniArg converts a plain JNI argument into what the native function
// takes: a setup statement, possibly empty, and the call expression.
func (g *generator) jniArg(name string, t ir.Type) (string, string) {
	switch {
	case t.Kind == ir.Pointer && t.Elem.Kind == ir.Unit:
		return "", name + " as *mut c_void"
	case g.isHandle(t):
		return fmt.Sprintf("let %s = %s as *mut %s;", name, name, t.Name), name
	case t.Kind == ir.String:
		return fmt.Sprintf("let %s = CString::from_java(&env, %s);", name, name), name + ".as_ptr()"
	case t.Kind == ir.Bool:
		return "", name + " != 0"
	case g.isEnum(t):
		return fmt.Sprintf("let %s = %s;", name, enumFromJava(name)), fmt.Sprintf("mem::transmute::<jint, %s>(%s)", t.Name, name)
	case t.Kind == ir.User && g.run.IsEnum(t.Name):
		return "", fmt.Sprintf("mem::transmute::<jint, %s>(%s)", t.Name, name)
	case t.Kind == ir.User:
		return fmt.Sprintf("let %s = %s::from_java(&env, %s);", name, t.Name, name), "&" + name
	case t.Kind == ir.Pointer:
		return fmt.Sprintf("let %s: %s = FromJava::from_java(&env, %s);", name, rustType(*t.Elem), name), "&" + name
	case t.Kind == ir.Array || t.Kind == ir.Function:
		return fmt.Sprintf("let %s: %s = FromJava::from_java(&env, %s);", name, rustType(t), name), name
	default:
		return "", name + " as " + rustType(t)
	}
}

// jniReturn returns the return clause of an entry point and the final
// expression converting ret, or "" when nothing is returned.
func (g *generator) jniReturn(t ir.Type) (string, string) {
	if t.Kind == ir.Unit {
		return "", ""
	}
	if g.isEnum(t) {
		return " -> jobject", g.enumToJava(t, "ret") + ".into_inner()"
	}
	switch ty := g.jniType(t); ty {
	case "JString", "JObject":
		return " -> jobject", "ret.to_java(&env).into_inner()"
	default:
		return " -> " + ty, "ret as " + ty
	}
}

// cbParamType spells a callback parameter. Structs reach callbacks by
// pointer.
func (g *generator) cbParamType(t ir.Type) string {
	switch {
	case t.Kind == ir.User && g.isHandle(t):
		return "*mut " + t.Name
	case t.Kind == ir.User && !g.run.IsEnum(t.Name):
		return "*const " + t.Name
	default:
		return rustType(t)
	}
}

// callbackParts converts the arguments a trampoline receives into JVM
// values and computes the method signature of the Java interface.
func (g *generator) callbackParts(sig ir.Signature) (inputs, stmts, args []string, signature string) {
	var sigs []string

	for _, a := range ir.Args(sig.Inputs) {
		name := a.Name
		switch a.Kind {
		case ir.ArgUserData:
			inputs = append(inputs, "ctx: *mut c_void")
			continue
		case ir.ArgArray:
			inputs = append(inputs, name+": *const "+rustType(a.Elem), a.LenName+": usize")
			stmts = append(stmts, fmt.Sprintf("let %s = slice::from_raw_parts(%s, %s).to_java(&env);", name, name, a.LenName))
		default:
			inputs = append(inputs, name+": "+g.cbParamType(a.Type))
			switch {
			case g.isHandle(a.Type):
				stmts = append(stmts, fmt.Sprintf("let %s = %s as jlong;", name, name))
			case a.Type.Kind == ir.String:
				stmts = append(stmts, fmt.Sprintf("let %s: JObject = %s.to_java(&env).into();", name, name))
			case g.isEnum(a.Type):
				stmts = append(stmts, fmt.Sprintf("let %s = %s;", name, g.enumToJava(a.Type, name)))
			case a.Type.Kind == ir.User && !g.run.IsEnum(a.Type.Name):
				stmts = append(stmts, fmt.Sprintf("let %s = (*%s).to_java(&env);", name, name))
			default:
				stmts = append(stmts, fmt.Sprintf("let %s = %s.to_java(&env);", name, name))
			}
		}
		args = append(args, name+".into()")
		sigs = append(sigs, g.argSignature(a))
	}

	signature = "(" + strings.Join(sigs, "") + ")" + g.signature(sig.Output)
	return inputs, stmts, args, signature
}

// writeTrampoline renders the extern "C" function the native library
// calls back into. A function with several callbacks shares one context
// holding all of them; each trampoline takes its own and frees the
// context once every callback has fired.
func (g *generator) writeTrampoline(w *common.Writer, name string, sig ir.Signature, idx, count int) {
	inputs, stmts, args, signature := g.callbackParts(sig)
	call := fmt.Sprintf("env.call_method(cb.as_obj(), \"call\", %q, &[%s]).unwrap();", signature, strings.Join(args, ", "))

	w.Open("extern \"C\" fn %s(%s)", name, strings.Join(inputs, ", "))
	w.Open("unsafe")
	w.Line("let env = JVM.as_ref().map(|vm| vm.attach_current_thread_as_daemon().unwrap()).unwrap();")

	if count <= 1 {
		w.Line("let cb = convert_cb_from_java(&env, ctx);")
		w.Line("")
		for _, stmt := range stmts {
			w.Line(stmt)
		}
		w.Line(call)
	} else {
		w.Line("let mut cbs = Box::from_raw(ctx as *mut [Option<GlobalRef>; %d]);", count)
		w.Line("")
		w.Open("if let Some(cb) = cbs[%d].take()", idx)
		for _, stmt := range stmts {
			w.Line(stmt)
		}
		w.Line(call)
		w.Close("")
		w.Line("")
		w.Open("if cbs.iter().any(|cb| cb.is_some())")
		w.Line("mem::forget(cbs);")
		w.Close("")
	}

	w.Close("")
	w.Close("")
	w.Line("")
}

// jniStruct renders the FromJava and ToJava conversions of a struct.
func (g *generator) jniStruct(s ir.Snippet[ir.Struct]) string {
	w := common.NewWriter(indentWidth)
	groups := ir.GroupFields(s.Item.Fields)

	w.Open("impl<'a> FromJava<JObject<'a>> for %s", s.Name)
	w.Open("fn from_java(env: &JNIEnv, input: JObject) -> Self")
	for _, grp := range groups {
		g.writeFromJava(w, grp)
	}
	w.Line("")
	w.Open("%s", s.Name)
	for _, f := range s.Item.Fields {
		w.Line("%s,", f.Name)
	}
	w.Close("")
	w.Close("")
	w.Close("")
	w.Line("")

	w.Open("impl<'a> ToJava<'a, JObject<'a>> for %s", s.Name)
	w.Open("fn to_java(&self, env: &'a JNIEnv) -> JObject<'a>")
	w.Line("let output = env.new_object(%q, \"()V\", &[]).unwrap();", g.qualified(className(s.Name)))
	for _, grp := range groups {
		g.writeToJava(w, grp)
	}
	w.Line("output")
	w.Close("")
	w.Close("")
	w.Line("")
	return w.String()
}

// fieldGetter returns the JValue accessor for a primitive descriptor.
func fieldGetter(signature string) (string, bool) {
	switch signature {
	case "B", "S", "I", "J", "Z", "F", "D":
		return strings.ToLower(signature) + "()", true
	default:
		return "", false
	}
}

func isByte(t ir.Type) bool {
	return t.Kind == ir.U8 || t.Kind == ir.I8
}

func (g *generator) isStructType(t ir.Type) bool {
	return t.Kind == ir.User && !g.isHandle(t) && !g.run.IsEnum(t.Name)
}

func (g *generator) writeFromJava(w *common.Writer, grp ir.FieldGroup) {
	name := grp.Field.Name
	field := fieldName(grp)

	if grp.Kind == ir.FieldArray {
		signature := "[" + g.signature(grp.Elem)
		switch {
		case isByte(grp.Elem):
			w.Line("let arr = env.get_field(input, %q, %q).unwrap().l().unwrap().into_inner() as jbyteArray;", field, signature)
			w.Line("let mut vec = env.convert_byte_array(arr).unwrap();")
		case g.isStructType(grp.Elem):
			w.Line("let arr = env.get_field(input, %q, %q).unwrap().l().unwrap().into_inner() as jarray;", field, signature)
			w.Line("let len = env.get_array_length(arr).unwrap() as usize;")
			w.Line("let mut vec = Vec::with_capacity(len);")
			w.Open("for idx in 0..len")
			w.Line("let item = env.get_object_array_element(arr, idx as jsize).unwrap();")
			w.Line("vec.push(%s::from_java(env, item));", grp.Elem.Name)
			w.Close("")
		default:
			w.Line("let arr = env.get_field(input, %q, %q).unwrap().l().unwrap();", field, signature)
			w.Line("let mut vec: Vec<%s> = FromJava::from_java(env, arr);", rustType(grp.Elem))
		}
		w.Line("let %s = vec.len();", grp.LenName)
		if grp.CapName != "" {
			w.Line("let %s = vec.capacity();", grp.CapName)
		}
		w.Line("let %s = vec.as_mut_ptr();", name)
		w.Line("mem::forget(vec);")
		return
	}

	t := grp.Field.Type
	signature := g.signature(t)
	switch {
	case t.Kind == ir.String:
		w.Line("let %s = env.get_field(input, %q, %q).unwrap().l().unwrap().into();", name, field, signature)
		w.Line("let %s = <*mut _>::from_java(env, %s);", name, name)
	case t.Kind == ir.Pointer && t.Elem.Kind == ir.Unit:
		w.Line("let %s = env.get_field(input, %q, \"J\").unwrap().j().unwrap() as *mut c_void;", name, field)
	case g.isHandle(t):
		w.Line("let %s = env.get_field(input, %q, \"J\").unwrap().j().unwrap() as *mut %s;", name, field, t.Name)
	case g.isEnum(t):
		w.Line("let %s = env.get_field(input, %q, %q).unwrap().l().unwrap();", name, field, signature)
		w.Line("let %s = unsafe { mem::transmute::<jint, %s>(%s) };", name, t.Name, enumFromJava(name))
	default:
		if getter, ok := fieldGetter(signature); ok {
			w.Line("let %s = env.get_field(input, %q, %q).unwrap().%s.unwrap() as %s;", name, field, signature, getter, rustType(t))
			return
		}
		w.Line("let %s = env.get_field(input, %q, %q).unwrap().l().unwrap();", name, field, signature)
		if t.Kind == ir.User {
			w.Line("let %s = %s::from_java(env, %s);", name, t.Name, name)
		} else {
			w.Line("let %s = FromJava::from_java(env, %s);", name, name)
		}
	}
}

func (g *generator) writeToJava(w *common.Writer, grp ir.FieldGroup) {
	name := grp.Field.Name
	field := fieldName(grp)

	if grp.Kind == ir.FieldArray {
		signature := "[" + g.signature(grp.Elem)
		switch {
		case isByte(grp.Elem):
			w.Line("let arr = env.new_byte_array(self.%s as jsize).unwrap();", grp.LenName)
			w.Line("let items = unsafe { slice::from_raw_parts(self.%s as *const i8, self.%s) };", name, grp.LenName)
			w.Line("env.set_byte_array_region(arr, 0, items).unwrap();")
			w.Line("env.set_field(output, %q, %q, JObject::from(arr).into()).unwrap();", field, signature)
		case g.isStructType(grp.Elem):
			w.Line("let arr = env.new_object_array(self.%s as jsize, %q, JObject::null()).unwrap();", grp.LenName, g.qualified(className(grp.Elem.Name)))
			w.Line("let items = unsafe { slice::from_raw_parts(self.%s, self.%s) };", name, grp.LenName)
			w.Open("for (idx, item) in items.iter().enumerate()")
			w.Line("env.set_object_array_element(arr, idx as jsize, item.to_java(env)).unwrap();")
			w.Close("")
			w.Line("env.set_field(output, %q, %q, JObject::from(arr).into()).unwrap();", field, signature)
		default:
			w.Line("let arr = unsafe { slice::from_raw_parts(self.%s, self.%s) }.to_java(env);", name, grp.LenName)
			w.Line("env.set_field(output, %q, %q, arr.into()).unwrap();", field, signature)
		}
		return
	}

	t := grp.Field.Type
	signature := g.signature(t)
	switch {
	case t.Kind == ir.String:
		w.Open("if !self.%s.is_null()", name)
		w.Line("let %s: JObject = self.%s.to_java(env).into();", name, name)
		w.Line("env.set_field(output, %q, %q, %s.into()).unwrap();", field, signature, name)
		w.Close("")
	case g.isHandle(t):
		w.Line("env.set_field(output, %q, \"J\", (self.%s as jlong).into()).unwrap();", field, name)
	case g.isEnum(t):
		w.Line("env.set_field(output, %q, %q, %s.into()).unwrap();", field, signature, g.enumToJava(t, "self."+name))
	default:
		w.Line("env.set_field(output, %q, %q, self.%s.to_java(env).into()).unwrap();", field, signature, name)
	}
}

// enumFromJava reads the discriminant of the Java enum object in name.
func enumFromJava(name string) string {
	return fmt.Sprintf("env.call_method(%s, \"getValue\", \"()I\", &[]).unwrap().i().unwrap()", name)
}

// enumToJava looks up the Java enum constant for the native value expr.
func (g *generator) enumToJava(t ir.Type, expr string) string {
	class := g.qualified(className(t.Name))
	return fmt.Sprintf("env.call_static_method(%q, \"fromValue\", \"(I)L%s;\", &[(%s as jint).into()]).unwrap().l().unwrap()", class, class, expr)
}
