package ast

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
	"os"
)

var rustLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "DocComment", Pattern: `///[^\n]*`},
	{Name: "Comment", Pattern: `//[^\n]*|/\*(.|\n)*?\*/`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\])'`},
	{Name: "Lifetime", Pattern: `'[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Float", Pattern: `\d+\.\d+([eE][-+]?\d+)?(f32|f64)?`},
	{Name: "Int", Pattern: `(0x[0-9a-fA-F_]+|0o[0-7_]+|0b[01_]+|\d[\d_]*)([iu](8|16|32|64|128|size))?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `::|->|=>|[-+*/%&|^!=<>#\[\](){};:,.?@$~]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[File](
	participle.Lexer(rustLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String", "Char"),
	participle.UseLookahead(4),
)

// ParseString parses src, using name for positions in diagnostics.
func ParseString(name, src string) (*File, error) {
	file, err := parser.ParseString(name, src)
	if err != nil {
		return nil, errors.Errorf("parse %s: %w", name, err)
	}
	return file, nil
}

// ParseFile reads and parses the source file at path.
func ParseFile(path string) (*File, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	file, err := parser.ParseBytes(path, bytes)
	if err != nil {
		return nil, errors.Errorf("parse %s: %w", path, err)
	}
	return file, nil
}
