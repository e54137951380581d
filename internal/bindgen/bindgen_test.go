package bindgen

import (
	"context"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"testing"
)

// recorder keeps what it was asked to emit.
type recorder struct {
	name string
	opts ClassifyOptions
	err  error

	consts    []string
	enums     []string
	structs   []string
	functions []string
	native    []string
	opaque    []string
	run       ir.Run
}

func (r *recorder) Name() string {
	return r.name
}

func (r *recorder) ClassifyOptions() ClassifyOptions {
	return r.opts
}

func (r *recorder) Emit(_ context.Context, run *ir.Run, outputs common.Outputs) error {
	r.run = *run
	for _, c := range run.Consts {
		r.consts = append(r.consts, c.Name)
	}
	for _, e := range run.Enums {
		r.enums = append(r.enums, e.Name)
	}
	for _, s := range run.Structs {
		r.structs = append(r.structs, s.Name)
		if run.IsNativeName(s.Name) {
			r.native = append(r.native, s.Name)
		}
	}
	for _, fn := range run.Functions {
		r.functions = append(r.functions, fn.Name)
	}
	for name := range run.Opaque {
		r.opaque = append(r.opaque, name)
	}
	outputs["out.txt"] = r.name
	return r.err
}

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := ast.ParseString("lib.rs", src)
	require.NoError(t, err)
	return file
}

func run(t *testing.T, src string, opts ClassifyOptions) (*recorder, *Result, error) {
	t.Helper()
	r := &recorder{name: "test", opts: opts}
	result, err := NewGenerator(r).Generate(context.Background(), parse(t, src))
	return r, result, err
}

func requireDiagnostic(t *testing.T, err error, message string) *common.Diagnostic {
	t.Helper()
	require.Error(t, err)
	diag, ok := common.AsDiagnostic(err)
	require.True(t, ok, "not a diagnostic: %v", err)
	assert.Equal(t, common.LevelError, diag.Level)
	assert.Equal(t, message, diag.Message)
	return diag
}

func TestCollectSkips(t *testing.T) {
	r, _, err := run(t, `
use std::os::raw::c_char;

pub struct Plain {
    pub a: i32,
}

pub enum Plain2 {
    A,
}

#[repr(C)]
pub struct Kept {
    pub a: i32,
}

#[repr(C)]
pub struct Hidden {
    pub a: i32,
}

pub extern "C" fn mangled(a: i32) {}

#[no_mangle]
pub fn rust_abi(a: i32) {}

#[no_mangle]
pub extern "Rust" fn other_abi(a: i32) {}

#[no_mangle]
pub extern "C" fn exported(a: i32) {}

#[no_mangle]
pub extern fn implicit_abi(a: i32) {}

impl Kept {
    fn new() -> Self { Kept { a: 0 } }
}
`, ClassifyOptions{Filter: common.NewFilter(common.Blacklist, "Hidden")})
	require.NoError(t, err)

	assert.Equal(t, []string{"Kept"}, r.structs)
	assert.Empty(t, r.enums)
	assert.Equal(t, []string{"exported", "implicit_abi"}, r.functions)
}

func TestCollectWhitelist(t *testing.T) {
	r, _, err := run(t, `
pub const A: i32 = 1;
pub const B: i32 = 2;

#[no_mangle]
pub extern "C" fn f() {}
`, ClassifyOptions{Filter: common.NewFilter(common.Whitelist, "B", "f")})
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, r.consts)
	assert.Equal(t, []string{"f"}, r.functions)
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "generic struct",
			src:     "#[repr(C)]\npub struct Pair<T> { pub a: T }\n",
			message: "bindgen can not handle parameterized structs",
		},
		{
			name:    "generic enum",
			src:     "#[repr(C)]\npub enum Maybe<T> { A }\n",
			message: "bindgen can not handle parameterized enums",
		},
		{
			name:    "generic function",
			src:     "#[no_mangle]\npub extern \"C\" fn id<T>(a: T) -> T { a }\n",
			message: "bindgen can not handle parameterized extern functions",
		},
		{
			name:    "never returns",
			src:     "#[no_mangle]\npub extern \"C\" fn abort() -> ! { loop {} }\n",
			message: "panics across a C boundary are naughty!",
		},
		{
			name:    "tuple struct",
			src:     "#[repr(C)]\npub struct Pair(u8, u8);\n",
			message: "bindgen can not handle unit or tuple structs (Pair)",
		},
		{
			name:    "newtype without opt in",
			src:     "#[repr(C)]\npub struct Handle(u64);\n",
			message: "bindgen can not handle unit or tuple structs (Handle)",
		},
		{
			name:    "unit struct",
			src:     "#[repr(C)]\npub struct Marker;\n",
			message: "bindgen can not handle unit or tuple structs (Marker)",
		},
		{
			name:    "unsupported alias",
			src:     "pub type Bytes = Vec<u8>;\n",
			message: "bindgen can not handle the type `Vec<u8>`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, result, err := run(t, tt.src, ClassifyOptions{})
			diag := requireDiagnostic(t, err, tt.message)
			assert.Nil(t, result)
			assert.Nil(t, r.structs)
			assert.Equal(t, "lib.rs", diag.Pos.Filename)
		})
	}
}

func TestCollectNewtype(t *testing.T) {
	r, _, err := run(t, `
#[repr(C)]
pub struct Handle(u64);
`, ClassifyOptions{AllowNewtype: true})
	require.NoError(t, err)

	assert.Empty(t, r.structs)
	assert.Equal(t, []string{"Handle"}, r.opaque)
}

func TestParameterizedAlias(t *testing.T) {
	r, result, err := run(t, `
pub type Callback<T> = extern "C" fn(user_data: *mut c_void, value: T);

#[no_mangle]
pub extern "C" fn f() {}
`, ClassifyOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"f"}, r.functions)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, common.LevelWarning, result.Diagnostics[0].Level)
	assert.Equal(t, "parameterized type aliases not supported, skipping Callback", result.Diagnostics[0].Message)
	assert.Equal(t, 2, result.Diagnostics[0].Pos.Line)
}

func TestDocs(t *testing.T) {
	r, _, err := run(t, `
/// First line.
/// Second line.
#[no_mangle]
pub extern "C" fn f() {}
`, ClassifyOptions{DocPrefix: " *"})
	require.NoError(t, err)

	require.Len(t, r.run.Functions, 1)
	assert.Equal(t, " * First line.\n * Second line.\n", r.run.Functions[0].Docs)
}

func TestGenerateResolves(t *testing.T) {
	r, _, err := run(t, `
pub type Len = usize;
pub type Bytes = *const u8;

#[repr(C)]
pub struct Buffer {
    pub data: Bytes,
    pub data_len: Len,
}

#[repr(C)]
pub struct Message {
    pub id: u32,
    pub body: Buffer,
}

#[repr(C)]
pub struct Header {
    pub id: u32,
}

#[no_mangle]
pub extern "C" fn send(message: *const Message, size: Len) {}
`, ClassifyOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Buffer", "Message"}, r.native)

	buffer, ok := r.run.Struct("Buffer")
	require.True(t, ok)
	assert.Equal(t, ir.PointerTo(ir.Prim(ir.U8)), buffer.Fields[0].Type)
	assert.Equal(t, ir.Prim(ir.USize), buffer.Fields[1].Type)

	require.Len(t, r.run.Functions, 1)
	assert.Equal(t, ir.Prim(ir.USize), r.run.Functions[0].Item.Inputs[1].Type)
}

func TestGenerateAccumulatesFiles(t *testing.T) {
	r := &recorder{name: "test"}
	a := parse(t, "#[no_mangle]\npub extern \"C\" fn first() {}\n")
	b := parse(t, "#[no_mangle]\npub extern \"C\" fn second() {}\n")

	_, err := NewGenerator(r).Generate(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, r.functions)
}

func TestGenerateResetsBetweenEmitters(t *testing.T) {
	first := &recorder{name: "first", opts: ClassifyOptions{Opaque: []string{"App"}}}
	second := &recorder{name: "second"}

	result, err := NewGenerator(first, second).Generate(context.Background(), parse(t, `
#[no_mangle]
pub extern "C" fn f(app: *const App) {}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"App"}, first.opaque)
	assert.Empty(t, second.opaque)
	assert.Equal(t, []string{"f"}, first.functions)
	assert.Equal(t, []string{"f"}, second.functions)
	assert.Equal(t, "first", result.Outputs["first"]["out.txt"])
	assert.Equal(t, "second", result.Outputs["second"]["out.txt"])
}

func TestGenerateAllOrNothing(t *testing.T) {
	failure := errors.New("emit failed")
	first := &recorder{name: "first"}
	second := &recorder{name: "second", err: failure}

	result, err := NewGenerator(first, second).Generate(context.Background(), parse(t, `
#[no_mangle]
pub extern "C" fn f() {}
`))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "second: ")
}
