package common

import (
	"github.com/golang-cz/textcase"
	"strings"
)

// PascalName converts a snake_case source identifier, e.g. "get_items" → "GetItems".
func PascalName(name string) string {
	return textcase.PascalCase(name)
}

// CamelName converts a snake_case source identifier, e.g. "o_cb" → "oCb".
func CamelName(name string) string {
	return textcase.CamelCase(name)
}

// ConstName converts an identifier to SCREAMING_SNAKE_CASE.
func ConstName(name string) string {
	return strings.ToUpper(textcase.SnakeCase(name))
}

// StripSuffix removes suffix from name if present and something remains.
func StripSuffix(name, suffix string) string {
	if len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
		return strings.TrimSuffix(name, suffix)
	}
	return name
}

// SanitizeName fixes an identifier that would collide with a keyword of the
// target language by prefixing it with "@" (C#) or "_" (Java).
func SanitizeName(name string, keywords map[string]struct{}, escape string) string {
	if name == "" {
		return escape
	}

	if name[0] >= '0' && name[0] <= '9' {
		return escape + name
	}

	if _, ok := keywords[name]; ok {
		return escape + name
	}

	return name
}

// Keywords builds a keyword set.
func Keywords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
