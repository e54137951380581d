package common

import (
	"github.com/saffronjam/ffi-bindgen/internal/ast"
)

// CheckNoMangle reports whether the attribute is #[no_mangle].
func CheckNoMangle(attr *ast.Attribute) bool {
	return attr.IsWord() && attr.Name() == "no_mangle"
}

// CheckReprC reports whether the attribute is #[repr(C)].
func CheckReprC(attr *ast.Attribute) bool {
	if attr.Name() != "repr" || len(attr.Args) == 0 {
		return false
	}
	first := attr.Args[0]
	return first.IsWord() && first.Name() == "C"
}

// Always accepts any attribute.
func Always(*ast.Attribute) bool {
	return true
}

// ParseAttr walks metas and reports whether at least one attribute passes
// check, concatenating every documentation line rendered by retrieve.
func ParseAttr(metas []*ast.Meta, check func(*ast.Attribute) bool, retrieve func(*ast.Meta) (string, bool)) (bool, string) {
	passed := false
	docs := ""
	for _, meta := range metas {
		if !passed && meta.Attr != nil {
			passed = check(meta.Attr)
		}
		if s, ok := retrieve(meta); ok {
			docs += s
		}
	}
	return passed, docs
}

// RetrieveDocstring returns a retriever that renders each documentation
// line as prefix + text + "\n".
func RetrieveDocstring(prefix string) func(*ast.Meta) (string, bool) {
	return func(meta *ast.Meta) (string, bool) {
		text, ok := meta.DocText()
		if !ok {
			return "", false
		}
		return prefix + text + "\n", true
	}
}

// IsExtern reports whether the calling convention is compatible with C.
func IsExtern(abi string) bool {
	switch abi {
	case "C", "cdecl", "stdcall", "fastcall", "system":
		return true
	default:
		return false
	}
}
