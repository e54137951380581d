package common

import (
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindgen.yml")
	err := os.WriteFile(path, []byte(`
lib: safe_app
filter:
  mode: whitelist
  idents: [add]
  patterns: ["app_.*"]
opaqueTypes: [App]
csharp:
  namespace: SafeApp
  utils: false
  consts:
    - type: int
      name: magic_value
      value: "42"
java:
  typeMap:
    App: long
`), 0o644)
	require.NoError(t, err)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "safe_app", config.Lib)
	assert.Equal(t, Whitelist, config.Filter.Mode)
	assert.Equal(t, []string{"App"}, config.OpaqueTypes)
	assert.Equal(t, "SafeApp", config.CSharp.Namespace)
	assert.False(t, config.CSharp.Utils)
	assert.True(t, config.CSharp.Types, "defaults survive a partial file")
	assert.Equal(t, "Constants", config.CSharp.ConstsClassName)
	require.Len(t, config.CSharp.Consts, 1)
	assert.Equal(t, "magic_value", config.CSharp.Consts[0].Name)
	assert.Equal(t, "long", config.Java.TypeMap["App"])
	assert.Equal(t, "perIndex", config.Java.MultiCallback)

	filter, err := config.Filter.NewFilter()
	require.NoError(t, err)
	assert.False(t, filter.IsIgnored("add"))
	assert.False(t, filter.IsIgnored("app_new"))
	assert.True(t, filter.IsIgnored("sub"))
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"filter mode", "filter:\n  mode: greylist\n"},
		{"multi callback", "java:\n  multiCallback: merge\n"},
		{"pattern", "filter:\n  patterns: [\"(\"]\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bindgen.yml")
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0o644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	f := NewFilter(Blacklist, "secret")
	assert.True(t, f.IsIgnored("secret"))
	assert.False(t, f.IsIgnored("public"))

	f.Reset(Whitelist)
	f.Add("public")
	assert.Equal(t, Whitelist, f.Mode())
	assert.True(t, f.IsIgnored("secret"))
	assert.False(t, f.IsIgnored("public"))
}

func TestAttributes(t *testing.T) {
	file, err := ast.ParseString("attrs.rs", `
/// First line.
#[repr(C)]
#[doc = " Second line."]
pub struct A { pub x: u8 }

#[repr(u8)]
pub enum B { X }

#[no_mangle]
pub extern "system" fn c() {}
`)
	require.NoError(t, err)
	require.Len(t, file.Items, 3)

	reprC, docs := ParseAttr(file.Items[0].Metas, CheckReprC, RetrieveDocstring("///"))
	assert.True(t, reprC)
	assert.Equal(t, "/// First line.\n/// Second line.\n", docs)

	reprC, _ = ParseAttr(file.Items[1].Metas, CheckReprC, RetrieveDocstring(""))
	assert.False(t, reprC)

	noMangle, docs := ParseAttr(file.Items[2].Metas, CheckNoMangle, RetrieveDocstring(""))
	assert.True(t, noMangle)
	assert.Empty(t, docs)
	assert.True(t, IsExtern(file.Items[2].Fn.ABI()))
	assert.False(t, IsExtern("Rust"))
}

func TestWriter(t *testing.T) {
	w := NewWriter(2)
	w.Open("namespace %s", "Foo")
	w.Line("int x;")
	w.Emit("\n")
	w.Open("class Bar")
	w.Emit("a\nb\n")
	w.Close("")
	w.Close(";")

	assert.Equal(t, "namespace Foo {\n  int x;\n\n  class Bar {\n    a\n    b\n  }\n};\n", w.String())
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "GetItems", PascalName("get_items"))
	assert.Equal(t, "oCb", CamelName("o_cb"))
	assert.Equal(t, "MAX_NAME_LEN", ConstName("MaxNameLen"))
	assert.Equal(t, "data", StripSuffix("data_ptr", "_ptr"))
	assert.Equal(t, "_ptr", StripSuffix("_ptr", "_ptr"))

	keywords := Keywords("class", "int")
	assert.Equal(t, "@class", SanitizeName("class", keywords, "@"))
	assert.Equal(t, "_1st", SanitizeName("1st", keywords, "_"))
	assert.Equal(t, "name", SanitizeName("name", keywords, "@"))
}

func TestDiagnostic(t *testing.T) {
	err := Errorf(ast.Position{Filename: "lib.rs", Line: 3, Column: 1}, "bindgen can not handle %s", "this")
	diag, ok := AsDiagnostic(err)
	require.True(t, ok)
	assert.Equal(t, LevelError, diag.Level)
	assert.Equal(t, "lib.rs:3:1: error: bindgen can not handle this", diag.Error())

	diag, ok = AsDiagnostic(Bugf(ast.Position{}, "%d sweeps", 3))
	require.True(t, ok)
	assert.Equal(t, LevelBug, diag.Level)
	assert.Equal(t, "bug: 3 sweeps", diag.Error())

	note := Notef(ast.Position{Filename: "lib.rs", Line: 9, Column: 1}, "no glue for %s", "f")
	assert.Equal(t, LevelNote, note.Level)
	assert.Equal(t, "lib.rs:9:1: note: no glue for f", note.Error())
}
