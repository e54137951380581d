package java

import (
	"context"
	"fmt"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/bindgen"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func generate(t *testing.T, src string, configure func(*LangJava)) (*bindgen.Result, error) {
	t.Helper()
	file, err := ast.ParseString("lib.rs", src)
	require.NoError(t, err)

	lang := New()
	if configure != nil {
		configure(lang)
	}
	return bindgen.NewGenerator(lang).Generate(context.Background(), file)
}

func outputsOf(t *testing.T, src string, configure func(*LangJava)) common.Outputs {
	t.Helper()
	result, err := generate(t, src, configure)
	require.NoError(t, err)
	return result.Outputs["java"]
}

func TestNativeBindings(t *testing.T) {
	outputs := outputsOf(t, `
/// Adds two numbers.
#[no_mangle]
pub extern "C" fn add(a: i32, b: i32) -> i32 {
    a + b
}
`, nil)
	require.Equal(t, []string{"NativeBindings.java", "jni.rs"}, outputs.Paths())

	assert.Equal(t, `package bindings;

public class NativeBindings {
    static {
        System.loadLibrary("backend");
    }

    /**
     * Adds two numbers.
     */
    public static native int add(int a, int b);

}
`, outputs["NativeBindings.java"])

	jni := outputs["jni.rs"]
	assert.True(t, strings.HasPrefix(jni, "// JNI glue generated by ffi-bindgen. Do not edit."))
	assert.Contains(t, jni, "use backend::*;")
	assert.Contains(t, jni, `#[no_mangle]
pub unsafe extern "system" fn Java_bindings_NativeBindings_add(env: JNIEnv, _class: JClass, a: jint, b: jint) -> jint {
    let ret = backend::add(a as i32, b as i32);
    ret as jint
}
`)
}

func TestMissingNativeBindings(t *testing.T) {
	_, err := generate(t, `
#[repr(C)]
pub struct Point {
    pub x: i32,
    pub y: i32,
}
`, nil)
	require.Error(t, err)

	diag, ok := common.AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, "no native bindings generated?", diag.Message)
}

func TestJNINameMangling(t *testing.T) {
	outputs := outputsOf(t, `
#[no_mangle]
pub extern "C" fn get_app_id(name: *const c_char) {}
`, func(l *LangJava) {
		l.SetNamespace("net.safe_app.bindings")
		l.SetLibName("safe-app")
	})

	assert.True(t, strings.HasPrefix(outputs["NativeBindings.java"], "package net.safe_app.bindings;\n"))
	assert.Contains(t, outputs["NativeBindings.java"], `System.loadLibrary("safe-app");`)
	assert.Contains(t, outputs["NativeBindings.java"], "public static native void getAppId(String name);")

	jni := outputs["jni.rs"]
	assert.Contains(t, jni, "fn Java_net_safe_1app_bindings_NativeBindings_getAppId(env: JNIEnv, _class: JClass, name: JString) {")
	assert.Contains(t, jni, "let name = CString::from_java(&env, name);")
	assert.Contains(t, jni, "safe_app::get_app_id(name.as_ptr());")
}

const callbackSource = `
#[repr(C)]
pub struct FfiResult {
    pub error_code: i32,
    pub description: *const c_char,
}

#[no_mangle]
pub unsafe extern "C" fn get_version(app: *const App,
                                     user_data: *mut c_void,
                                     o_cb: extern "C" fn(user_data: *mut c_void, result: *const FfiResult, version: u64)) {
}

#[no_mangle]
pub unsafe extern "C" fn get_size(app: *const App,
                                  user_data: *mut c_void,
                                  o_cb: extern "C" fn(user_data: *mut c_void, result: *const FfiResult, size: u64)) {
}

#[no_mangle]
pub unsafe extern "C" fn subscribe(app: *const App,
                                   user_data: *mut c_void,
                                   o_data: extern "C" fn(user_data: *mut c_void, data: *const u8, data_len: usize),
                                   o_cb: extern "C" fn(user_data: *mut c_void, result: *const FfiResult)) {
}
`

func TestCallbacks(t *testing.T) {
	outputs := outputsOf(t, callbackSource, func(l *LangJava) {
		l.AddOpaqueType("App")
	})

	var callbacks []string
	for _, path := range outputs.Paths() {
		if strings.HasPrefix(path, "Callback") {
			callbacks = append(callbacks, path)
		}
	}
	assert.Equal(t, []string{"Callback.java", "CallbackByteArray.java", "CallbackLong.java"}, callbacks)

	assert.Equal(t, `package bindings;

public interface CallbackLong {
    public void call(FfiResult result, long version);
}
`, outputs["CallbackLong.java"])
	assert.Contains(t, outputs["CallbackByteArray.java"], "public void call(byte[] data);")

	bindings := outputs["NativeBindings.java"]
	assert.Contains(t, bindings, "public static native void getVersion(long app, CallbackLong oCb);")
	assert.Contains(t, bindings, "public static native void getSize(long app, CallbackLong oCb);")
	assert.Contains(t, bindings, "public static native void subscribe(long app, CallbackByteArray oData, Callback oCb);")

	jni := outputs["jni.rs"]
	assert.Equal(t, 1, strings.Count(jni, `extern "C" fn call_CallbackLong(ctx: *mut c_void, result: *const FfiResult, version: u64) {`))
	assert.Contains(t, jni, "let cb = convert_cb_from_java(&env, ctx);")
	assert.Contains(t, jni, "let result = (*result).to_java(&env);")
	assert.Contains(t, jni, `env.call_method(cb.as_obj(), "call", "(Lbindings/FfiResult;J)V", &[result.into(), version.into()]).unwrap();`)

	assert.Contains(t, jni, "fn Java_bindings_NativeBindings_getVersion(env: JNIEnv, _class: JClass, app: jlong, o_cb: JObject) {\n"+
		"    let app = app as *mut App;\n"+
		"    let ctx = gen_ctx!(env, o_cb);\n"+
		"    backend::get_version(app, ctx, call_CallbackLong);\n"+
		"}\n")
	assert.Contains(t, jni, "backend::get_size(app, ctx, call_CallbackLong);")
}

func TestCallbackNameCollision(t *testing.T) {
	// The result parameter does not contribute to the interface name, so
	// both callbacks map to CallbackInt.
	result, err := generate(t, `
#[repr(C)]
pub struct FfiResult {
    pub error_code: i32,
}

#[no_mangle]
pub extern "C" fn fetch(user_data: *mut c_void,
                        o_cb: extern "C" fn(user_data: *mut c_void, result: *const FfiResult, value: i32)) {
}

#[no_mangle]
pub extern "C" fn watch(user_data: *mut c_void,
                        o_cb: extern "C" fn(user_data: *mut c_void, value: i32)) {
}
`, nil)
	require.NoError(t, err)

	outputs := result.Outputs["java"]
	assert.Equal(t, "package bindings;\n\npublic interface CallbackInt {\n    public void call(FfiResult result, int value);\n}\n", outputs["CallbackInt.java"])
	assert.Equal(t, 1, strings.Count(outputs["jni.rs"], `extern "C" fn call_CallbackInt(`))

	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	assert.Equal(t, common.LevelWarning, diag.Level)
	assert.Equal(t, "callback interface CallbackInt already generated for fn(FfiResult,i32), reused for fn(i32)", diag.Message)
	assert.Equal(t, 12, diag.Pos.Line)
}

func TestMultiCallbackPerIndex(t *testing.T) {
	outputs := outputsOf(t, callbackSource, func(l *LangJava) {
		l.AddOpaqueType("App")
	})

	jni := outputs["jni.rs"]
	assert.Contains(t, jni, `extern "C" fn call_subscribe_0(ctx: *mut c_void, data: *const u8, data_len: usize) {`)
	assert.Contains(t, jni, `extern "C" fn call_subscribe_1(ctx: *mut c_void, result: *const FfiResult) {`)
	assert.Contains(t, jni, "let mut cbs = Box::from_raw(ctx as *mut [Option<GlobalRef>; 2]);")
	assert.Contains(t, jni, "if let Some(cb) = cbs[1].take() {")
	assert.Contains(t, jni, "let data = slice::from_raw_parts(data, data_len).to_java(&env);")
	assert.Contains(t, jni, `env.call_method(cb.as_obj(), "call", "([B)V", &[data.into()]).unwrap();`)
	assert.Contains(t, jni, "let ctx = gen_ctx!(env, o_data, o_cb);")
	assert.Contains(t, jni, "backend::subscribe(app, ctx, call_subscribe_0, call_subscribe_1);")
	assert.NotContains(t, jni, "call_Callback(")
}

func TestWrapperBlacklist(t *testing.T) {
	result, err := generate(t, `
#[no_mangle]
pub extern "C" fn add(a: i32, b: i32) -> i32 { a + b }

#[no_mangle]
pub extern "C" fn free_handle(handle: u64) {}
`, func(l *LangJava) {
		l.BlacklistWrapperFunction("free_handle")
	})
	require.NoError(t, err)

	outputs := result.Outputs["java"]
	assert.Contains(t, outputs["NativeBindings.java"], "public static native void freeHandle(long handle);")
	assert.NotContains(t, outputs["jni.rs"], "Java_bindings_NativeBindings_freeHandle")
	assert.Contains(t, outputs["jni.rs"], "Java_bindings_NativeBindings_add")

	require.Len(t, result.Diagnostics, 1)
	diag := result.Diagnostics[0]
	assert.Equal(t, common.LevelNote, diag.Level)
	assert.Equal(t, "no JNI glue for free_handle: it is blacklisted", diag.Message)
	assert.Equal(t, 5, diag.Pos.Line)
}

func TestMultiCallbackSkip(t *testing.T) {
	result, err := generate(t, callbackSource, func(l *LangJava) {
		l.AddOpaqueType("App")
		l.SetMultiCallbackPolicy(ir.SkipWrapper)
	})
	require.NoError(t, err)

	outputs := result.Outputs["java"]
	assert.Contains(t, outputs["NativeBindings.java"], "public static native void subscribe(")
	assert.NotContains(t, outputs["jni.rs"], "Java_bindings_NativeBindings_subscribe")
	assert.NotContains(t, outputs["jni.rs"], "call_subscribe_0")
	assert.Contains(t, outputs["jni.rs"], "Java_bindings_NativeBindings_getVersion")

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, common.LevelWarning, result.Diagnostics[0].Level)
	assert.Equal(t, "skipping JNI glue for subscribe: it takes 2 callbacks", result.Diagnostics[0].Message)
}

func TestStructs(t *testing.T) {
	outputs := outputsOf(t, `
/// A stored item.
#[repr(C)]
pub struct Item {
    pub id: u64,
    pub data: *mut u8,
    pub data_len: usize,
    pub data_cap: usize,
    pub owner: *const c_char,
}

#[repr(C)]
pub struct List {
    pub items: *const Item,
    pub items_len: usize,
}

#[no_mangle]
pub extern "C" fn store(item: *const Item) {}
`, nil)

	assert.Equal(t, `package bindings;

/**
 * A stored item.
 */
public class Item {
    public long id;
    public byte[] data;
    public String owner;
}
`, outputs["Item.java"])
	assert.Contains(t, outputs["List.java"], "public Item[] items;")

	jni := outputs["jni.rs"]
	assert.Contains(t, jni, "impl<'a> FromJava<JObject<'a>> for Item {")
	assert.Contains(t, jni, `let id = env.get_field(input, "id", "J").unwrap().j().unwrap() as u64;`)
	assert.Contains(t, jni, `let arr = env.get_field(input, "data", "[B").unwrap().l().unwrap().into_inner() as jbyteArray;`)
	assert.Contains(t, jni, "let data_len = vec.len();\n        let data_cap = vec.capacity();\n        let data = vec.as_mut_ptr();\n")
	assert.Contains(t, jni, "        Item {\n            id,\n            data,\n            data_len,\n            data_cap,\n            owner,\n        }\n")
	assert.Contains(t, jni, `let output = env.new_object("bindings/Item", "()V", &[]).unwrap();`)
	assert.Contains(t, jni, `env.set_field(output, "id", "J", self.id.to_java(env).into()).unwrap();`)
	assert.Contains(t, jni, "if !self.owner.is_null() {")

	assert.Contains(t, jni, "vec.push(Item::from_java(env, item));")
	assert.Contains(t, jni, `let arr = env.new_object_array(self.items_len as jsize, "bindings/Item", JObject::null()).unwrap();`)
	assert.Contains(t, jni, `env.set_field(output, "items", "[Lbindings/Item;", JObject::from(arr).into()).unwrap();`)

	assert.Contains(t, jni, "let item = Item::from_java(&env, item);")
	assert.Contains(t, jni, "backend::store(&item);")
}

func TestNewtypeHandle(t *testing.T) {
	outputs := outputsOf(t, `
#[repr(C)]
pub struct Handle(u64);

#[no_mangle]
pub extern "C" fn close(handle: Handle) {}
`, nil)

	assert.NotContains(t, outputs, "Handle.java")
	assert.Contains(t, outputs["NativeBindings.java"], "public static native void close(long handle);")
	assert.Contains(t, outputs["jni.rs"], "handle: jlong")
}

func TestConstsAndEnums(t *testing.T) {
	outputs := outputsOf(t, `
/// Maximum key length.
pub const MAX_KEY_LEN: usize = 64;
pub const FLAGS: u8 = 200;
pub const NAME: &str = "backend";

#[repr(C)]
pub enum Mode {
    /// Read access.
    Read = 1,
    Write,
}

#[no_mangle]
pub extern "C" fn set_mode(mode: Mode) {}
`, nil)

	assert.Equal(t, `package bindings;

public class Constants {
    /**
     * Maximum key length.
     */
    public static final long MAX_KEY_LEN = 64L;
    public static final byte FLAGS = (byte) 200;
    public static final String NAME = "backend";
}
`, outputs["Constants.java"])

	mode := outputs["Mode.java"]
	assert.Contains(t, mode, "public enum Mode {\n    /**\n     * Read access.\n     */\n    READ(1),\n    WRITE(2);\n")
	assert.Contains(t, mode, "public static Mode fromValue(int value) {")

	assert.Contains(t, outputs["NativeBindings.java"], "public static native void setMode(Mode mode);")
	assert.Contains(t, outputs["jni.rs"], "backend::set_mode(mem::transmute::<jint, Mode>(mode));")
}

func TestEnumAcrossBoundary(t *testing.T) {
	outputs := outputsOf(t, `
#[repr(C)]
pub enum Mode {
    Fast,
    Slow,
}

#[repr(C)]
pub struct Settings {
    pub mode: Mode,
    pub level: u32,
}

#[no_mangle]
pub extern "C" fn set_mode(mode: Mode) {}

#[no_mangle]
pub extern "C" fn get_mode() -> Mode {}

#[no_mangle]
pub extern "C" fn resize(mode: Mode, size: usize) {}

#[no_mangle]
pub extern "C" fn watch(user_data: *mut c_void, o_cb: extern "C" fn(user_data: *mut c_void, mode: Mode)) {}
`, nil)

	native := outputs["NativeBindings.java"]
	assert.Contains(t, native, "public static native void setMode(Mode mode);")
	assert.Contains(t, native, "public static native Mode getMode();")
	assert.Contains(t, native, "public static native void resize(Mode mode, long size);")

	jni := outputs["jni.rs"]
	getValue := `let mode = env.call_method(mode, "getValue", "()I", &[]).unwrap().i().unwrap();`
	fromValue := `env.call_static_method("bindings/Mode", "fromValue", "(I)Lbindings/Mode;", &[(%s as jint).into()]).unwrap().l().unwrap()`

	assert.Contains(t, jni, "fn Java_bindings_NativeBindings_setMode(env: JNIEnv, _class: JClass, mode: JObject) {\n    "+getValue+"\n")
	assert.Contains(t, jni, "backend::set_mode(mem::transmute::<jint, Mode>(mode));")
	assert.NotContains(t, jni, "mode: jint")

	assert.Contains(t, jni, "fn Java_bindings_NativeBindings_getMode(env: JNIEnv, _class: JClass) -> jobject {")
	assert.Contains(t, jni, fmt.Sprintf(fromValue, "ret")+".into_inner()")

	assert.Contains(t, jni, "fn Java_bindings_NativeBindings_resize(env: JNIEnv, _class: JClass, mode: JObject, size: jlong) {")
	assert.Contains(t, jni, "backend::resize(mem::transmute::<jint, Mode>(mode), size as usize);")
	assert.NotContains(t, jni, "Vec::from_java(&env, mode)")

	assert.Contains(t, jni, `let mode = env.get_field(input, "mode", "Lbindings/Mode;").unwrap().l().unwrap();`)
	assert.Contains(t, jni, "let mode = unsafe { mem::transmute::<jint, Mode>(env.call_method(mode, \"getValue\", \"()I\", &[]).unwrap().i().unwrap()) };")
	assert.Contains(t, jni, `env.set_field(output, "mode", "Lbindings/Mode;", `+fmt.Sprintf(fromValue, "self.mode")+".into()).unwrap();")

	assert.Contains(t, jni, "extern \"C\" fn call_CallbackMode(ctx: *mut c_void, mode: Mode) {")
	assert.Contains(t, jni, "let mode = "+fmt.Sprintf(fromValue, "mode")+";")
	assert.Contains(t, jni, `env.call_method(cb.as_obj(), "call", "(Lbindings/Mode;)V", &[mode.into()]).unwrap();`)
	assert.Contains(t, outputs["CallbackMode.java"], "public void call(Mode mode);")
}

func TestJavaLiteral(t *testing.T) {
	tests := []struct {
		kind ir.Kind
		lit  string
		want string
	}{
		{ir.U8, "7", "7"},
		{ir.U8, "255", "(byte) 255"},
		{ir.U16, "40000", "(short) 40000"},
		{ir.U32, "4000000000", "(int) 4000000000L"},
		{ir.I32, "-5", "-5"},
		{ir.U64, "1", "1L"},
		{ir.F32, "0.5", "0.5f"},
		{ir.F64, "0.5", "0.5"},
		{ir.Bool, "true", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"_"+tt.lit, func(t *testing.T) {
			assert.Equal(t, tt.want, javaLiteral(ir.Prim(tt.kind), tt.lit))
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	config := common.DefaultConfig()
	config.Lib = "safe_app"
	config.OpaqueTypes = []string{"App"}
	config.Java.Namespace = "net.example"
	config.Java.TypeMap = map[string]string{"XorName": "byte[]"}
	config.Java.MultiCallback = "skip"

	lang, err := NewFromConfig(config)
	require.NoError(t, err)
	assert.Equal(t, "net.example", lang.Namespace())
	assert.Equal(t, "safe_app", lang.libName)
	assert.Equal(t, ir.SkipWrapper, lang.multiCallback)
	assert.Equal(t, map[string]string{"App": "long", "XorName": "byte[]"}, lang.typeMap)

	opts := lang.ClassifyOptions()
	assert.Equal(t, " *", opts.DocPrefix)
	assert.True(t, opts.AllowNewtype)
	assert.Equal(t, []string{"App"}, opts.Opaque)

	config.Java.MultiCallback = "sometimes"
	_, err = NewFromConfig(config)
	assert.Error(t, err)
}
