// Package ast holds the parsed form of an FFI source module: the items,
// attributes and type expressions the binding generator consumes.
package ast

import "github.com/alecthomas/participle/v2/lexer"

// Position locates a token in a source file.
type Position = lexer.Position

// File is a parsed source file.
type File struct {
	Items []*Item `@@*`
}

// Item is a single top-level declaration. Exactly one of the declaration
// fields is set.
type Item struct {
	Pos lexer.Position

	Metas []*Meta     `@@*`
	Vis   *Visibility `@@?`

	Const   *ConstItem   `( @@`
	Static  *StaticItem  `| @@`
	Alias   *AliasItem   `| @@`
	Enum    *EnumItem    `| @@`
	Struct  *StructItem  `| @@`
	Crate   *ExternCrate `| @@`
	Fn      *FnItem      `| @@`
	Foreign *ForeignMod  `| @@`
	Use     *UseItem     `| @@`
	Impl    *ImplItem    `| @@`
	Mod     *ModItem     `| @@ )`
}

// Meta is either a doc comment line or an attribute.
type Meta struct {
	Doc   *string    `  @DocComment`
	Attr  *Attribute `| "#" "[" @@ "]"`
	Inner *Attribute `| "#" "!" "[" @@ "]"`
}

// Attribute is a meta item such as `no_mangle`, `repr(C)` or `doc = "..."`.
type Attribute struct {
	Path  []string     `( @Ident ( "::" @Ident )* | @String )`
	Args  []*Attribute `( "(" ( @@ ","? )* ")"`
	Value *string      `| "=" @( String | Int | Float | Ident ) )?`
}

type Visibility struct {
	Pub   bool   `@"pub"`
	Scope string `( "(" @Ident ")" )?`
}

type ConstItem struct {
	Name  string `"const" @Ident ":"`
	Type  *Type  `@@ "="`
	Value *Expr  `@@ ";"`
}

type StaticItem struct {
	Mut   bool   `"static" @"mut"?`
	Name  string `@Ident ":"`
	Type  *Type  `@@ "="`
	Value *Expr  `@@ ";"`
}

// AliasItem is `type Name = Type;`.
type AliasItem struct {
	Name     string    `"type" @Ident`
	Generics *Generics `@@?`
	Type     *Type     `"=" @@ ";"`
}

type EnumItem struct {
	Name     string     `"enum" @Ident`
	Generics *Generics  `@@?`
	Variants []*Variant `"{" ( @@ ","? )* "}"`
}

type Variant struct {
	Pos lexer.Position

	Metas []*Meta      `@@*`
	Name  string       `@Ident`
	Tuple *TupleFields `( @@`
	Named *NamedFields `| @@ )?`
	Value *Expr        `( "=" @@ )?`
}

// StructItem is a struct in one of its three shapes.
type StructItem struct {
	Name     string       `"struct" @Ident`
	Generics *Generics    `@@?`
	Named    *NamedFields `( @@`
	Tuple    *TupleFields `| @@ ";"`
	Unit     bool         `| @";" )`
}

type NamedFields struct {
	Fields []*Field `"{" ( @@ ","? )* "}"`
}

type Field struct {
	Pos lexer.Position

	Metas []*Meta     `@@*`
	Vis   *Visibility `@@?`
	Name  string      `@Ident ":"`
	Type  *Type       `@@`
}

type TupleFields struct {
	Fields []*TupleField `"(" ( @@ ","? )* ")"`
}

type TupleField struct {
	Metas []*Meta     `@@*`
	Vis   *Visibility `@@?`
	Type  *Type       `@@`
}

type ExternCrate struct {
	Name  string `"extern" "crate" @Ident`
	Alias string `( "as" @Ident )? ";"`
}

// FnItem is a free function. Body is nil for bodiless declarations.
type FnItem struct {
	Unsafe   bool      `@"unsafe"?`
	Extern   *Extern   `@@?`
	Name     string    `"fn" @Ident`
	Generics *Generics `@@?`
	Params   []*Param  `"(" ( @@ ","? )* ")"`
	Output   *Type     `( "->" @@ )?`
	Body     *Block    `( @@ | ";" )`
}

type Extern struct {
	ABI *string `"extern" @String?`
}

type Param struct {
	Mut  bool   `@"mut"?`
	Name string `@Ident ":"`
	Type *Type  `@@`
}

// ForeignMod is an `extern "ABI" { ... }` block. Its contents are not
// exported by this crate and are skipped.
type ForeignMod struct {
	ABI  *string `"extern" @String?`
	Body *Block  `@@`
}

type UseItem struct {
	Tokens []string `"use" ( @~";" )* ";"`
}

type ImplItem struct {
	Unsafe bool     `@"unsafe"?`
	Header []string `"impl" ( @~"{" )*`
	Body   *Block   `@@`
}

type ModItem struct {
	Name string `"mod" @Ident`
	Body *Block `( @@ | ";" )`
}

// Block is a brace-delimited token tree. Function bodies are kept only so
// that they can be skipped.
type Block struct {
	Tokens []*BlockToken `"{" @@* "}"`
}

type BlockToken struct {
	Block *Block `  @@`
	Token string `| @~( "{" | "}" )`
}

type Generics struct {
	Params []*GenericParam `"<" ( @@ ","? )* ">"`
}

type GenericParam struct {
	Lifetime string   `( @Lifetime`
	Name     string   `| @Ident )`
	Bounds   []*Bound `( ":" @@ ( "+" @@ )* )?`
}

type Bound struct {
	Lifetime string `  @Lifetime`
	Maybe    bool   `| @"?"?`
	Type     *Type  `  @@`
}

// Type is a type expression. Exactly one variant is set.
type Type struct {
	Pos lexer.Position

	Pointer *PointerType `  @@`
	Ref     *RefType     `| @@`
	Array   *ArrayType   `| @@`
	Tuple   *TupleType   `| @@`
	Never   bool         `| @"!"`
	BareFn  *BareFnType  `| @@`
	Path    *PathType    `| @@`
}

// PointerType is `*const T` or `*mut T`.
type PointerType struct {
	Mutability string `"*" @( "const" | "mut" )`
	Elem       *Type  `@@`
}

type RefType struct {
	Lifetime string `"&" @Lifetime?`
	Mut      bool   `@"mut"?`
	Elem     *Type  `@@`
}

// ArrayType is `[T; N]`, or a slice `[T]` when Len is nil.
type ArrayType struct {
	Elem *Type `"[" @@`
	Len  *Expr `( ";" @@ )? "]"`
}

type TupleType struct {
	Elems []*Type `"(" ( @@ ","? )* ")"`
}

// BareFnType is a function pointer type such as `extern "C" fn(i32) -> u8`.
type BareFnType struct {
	Unsafe bool     `@"unsafe"?`
	Extern *Extern  `@@?`
	Params []*FnArg `"fn" "(" ( @@ ","? )* ")"`
	Output *Type    `( "->" @@ )?`
}

type FnArg struct {
	Name string `( @Ident ":" )?`
	Type *Type  `@@`
}

type PathType struct {
	Global   bool           `@"::"?`
	Segments []*PathSegment `@@ ( "::" @@ )*`
}

type PathSegment struct {
	Name string        `@Ident`
	Args []*GenericArg `( "<" ( @@ ","? )* ">" )?`
}

type GenericArg struct {
	Lifetime string `  @Lifetime`
	Type     *Type  `| @@`
}

// Expr is the small literal expression language accepted in constants,
// array lengths and enum discriminants.
type Expr struct {
	Pos lexer.Position

	Neg   bool       `@"-"?`
	Float *string    `( @Float`
	Int   *string    `| @Int`
	Str   *string    `| @String`
	Char  *string    `| @Char`
	Bool  *string    `| @( "true" | "false" )`
	Array *ArrayExpr `| @@`
	Ref   *Expr      `| "&" @@`
	Path  *PathType  `| @@ )`
	Cast  *Type      `( "as" @@ )?`
}

type ArrayExpr struct {
	Elems  []*Expr `"[" ( @@ ","? )*`
	Repeat *Expr   `( ";" @@ )? "]"`
}
