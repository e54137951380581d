package ast

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const sample = `
//! Crate docs are ignored.
use std::os::raw::{c_char, c_void};

/// Maximum name length.
pub const MAX_NAME: usize = 32;

pub type Handle = u64;

/// A colour.
#[repr(C)]
#[derive(Clone, Copy)]
pub enum Colour {
    Red = 1,
    Green,
    /// The blue one.
    Blue = 0x10,
}

#[repr(C)]
pub struct Item {
    pub name: *const c_char,
    pub data: *const u8,
    pub data_len: usize,
    pub raw: [u8; 4],
}

#[repr(C)]
pub struct Wrapper(pub u64);

/* block comment */
#[no_mangle]
pub unsafe extern "C" fn fetch(
    handle: Handle,
    user_data: *mut c_void,
    o_cb: extern "C" fn(user_data: *mut c_void, result: *const FfiResult, item: *const Item),
) {
    let x = { 1 };
    if x > 0 { call(x); }
}

impl Drop for Item {
    fn drop(&mut self) {}
}
`

func TestParseString(t *testing.T) {
	file, err := ParseString("sample.rs", sample)
	require.NoError(t, err)

	var kinds []ItemKind
	var names []string
	for _, item := range file.Items {
		kinds = append(kinds, item.Kind())
		names = append(names, item.Name())
	}
	assert.Equal(t, []ItemKind{KindOther, KindConst, KindAlias, KindEnum, KindStruct, KindStruct, KindFn, KindOther}, kinds)
	assert.Equal(t, []string{"", "MAX_NAME", "Handle", "Colour", "Item", "Wrapper", "fetch", ""}, names)
}

func TestParseConst(t *testing.T) {
	file, err := ParseString("const.rs", sample)
	require.NoError(t, err)

	item := file.Items[1]
	require.NotNil(t, item.Const)
	assert.Equal(t, "usize", item.Const.Type.String())

	v, ok := item.Const.Value.IntLiteral()
	require.True(t, ok)
	assert.EqualValues(t, 32, v)

	text, ok := item.Metas[0].DocText()
	require.True(t, ok)
	assert.Equal(t, " Maximum name length.", text)
}

func TestParseEnum(t *testing.T) {
	file, err := ParseString("enum.rs", sample)
	require.NoError(t, err)

	enum := file.Items[3].Enum
	require.NotNil(t, enum)
	require.Len(t, enum.Variants, 3)
	assert.Equal(t, "Red", enum.Variants[0].Name)
	assert.Nil(t, enum.Variants[1].Value)

	v, ok := enum.Variants[2].Value.IntLiteral()
	require.True(t, ok)
	assert.EqualValues(t, 16, v)

	attrs := Attrs(file.Items[3].Metas)
	require.Len(t, attrs, 2)
	assert.Equal(t, "repr", attrs[0].Name())
	require.Len(t, attrs[0].Args, 1)
	assert.Equal(t, "C", attrs[0].Args[0].Name())
	assert.Equal(t, "derive", attrs[1].Name())
}

func TestParseStruct(t *testing.T) {
	file, err := ParseString("struct.rs", sample)
	require.NoError(t, err)

	named := file.Items[4].Struct
	require.NotNil(t, named)
	assert.Equal(t, ShapeNamed, named.Shape())
	require.Equal(t, 4, named.FieldCount())
	assert.Equal(t, "*const c_char", named.Named.Fields[0].Type.String())
	assert.Equal(t, "[u8; 4]", named.Named.Fields[3].Type.String())

	tuple := file.Items[5].Struct
	require.NotNil(t, tuple)
	assert.Equal(t, ShapeTuple, tuple.Shape())
	assert.Equal(t, 1, tuple.FieldCount())
}

func TestParseFn(t *testing.T) {
	file, err := ParseString("fn.rs", sample)
	require.NoError(t, err)

	fn := file.Items[6].Fn
	require.NotNil(t, fn)
	assert.True(t, fn.Unsafe)
	assert.Equal(t, "C", fn.ABI())
	assert.NotNil(t, fn.Body)
	require.Len(t, fn.Params, 3)
	assert.Equal(t, "*mut c_void", fn.Params[1].Type.String())
	assert.Equal(t,
		`extern "C" fn(user_data: *mut c_void, result: *const FfiResult, item: *const Item)`,
		fn.Params[2].Type.String())

	attrs := Attrs(file.Items[6].Metas)
	require.Len(t, attrs, 1)
	assert.True(t, attrs[0].IsWord())
	assert.Equal(t, "no_mangle", attrs[0].Name())
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"type A = *mut *const u8;", "*mut *const u8"},
		{"type A = &'static str;", "&'static str"},
		{"type A = [[u8; 2]; 3];", "[[u8; 2]; 3]"},
		{"type A = ();", "()"},
		{"type A = (u8, u16);", "(u8, u16)"},
		{"type A = std::os::raw::c_char;", "std::os::raw::c_char"},
		{"type A = Vec<Option<u8>>;", "Vec<Option<u8>>"},
		{"type A = fn(u8) -> u16;", "fn(u8) -> u16"},
		{"type A = unsafe extern fn();", `unsafe extern "C" fn()`},
	}

	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			file, err := ParseString("types.rs", test.src)
			require.NoError(t, err)
			require.Len(t, file.Items, 1)
			require.NotNil(t, file.Items[0].Alias)
			assert.Equal(t, test.want, file.Items[0].Alias.Type.String())
		})
	}
}

func TestParseGenerics(t *testing.T) {
	file, err := ParseString("generics.rs", `
#[repr(C)]
pub struct Pair<'a, T: Clone + 'a> { pub a: &'a T }
pub type Plain = u8;
`)
	require.NoError(t, err)
	require.Len(t, file.Items, 2)
	assert.True(t, file.Items[0].Generics().IsParameterized())
	assert.False(t, file.Items[1].Generics().IsParameterized())
	assert.Equal(t, "struct Pair<'a, T>", file.Items[0].String())
}

func TestParseDocAttribute(t *testing.T) {
	file, err := ParseString("doc.rs", `
#[doc = " Attribute docs."]
pub const A: i32 = -5;
`)
	require.NoError(t, err)
	require.Len(t, file.Items, 1)

	text, ok := file.Items[0].Metas[0].DocText()
	require.True(t, ok)
	assert.Equal(t, " Attribute docs.", text)

	v, ok := file.Items[0].Const.Value.IntLiteral()
	require.True(t, ok)
	assert.EqualValues(t, -5, v)
}

func TestParseError(t *testing.T) {
	_, err := ParseString("broken.rs", "pub fn (")
	assert.Error(t, err)
}

func TestIntLiteral(t *testing.T) {
	tests := []struct {
		lit  string
		want int64
	}{
		{"42", 42},
		{"1_000", 1000},
		{"0xff", 255},
		{"0b101", 5},
		{"0o17", 15},
		{"7u8", 7},
		{"64usize", 64},
	}

	for _, test := range tests {
		t.Run(test.lit, func(t *testing.T) {
			lit := test.lit
			v, ok := (&Expr{Int: &lit}).IntLiteral()
			require.True(t, ok)
			assert.Equal(t, test.want, v)
		})
	}
}
