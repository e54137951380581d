package common

import (
	"sort"
	"strings"
)

// Outputs maps an artifact path to its complete generated content.
type Outputs map[string]string

// Append adds text to the artifact at path, creating it if needed.
func (o Outputs) Append(path, text string) {
	o[path] += text
}

// Paths returns the artifact paths in sorted order.
func (o Outputs) Paths() []string {
	paths := make([]string, 0, len(o))
	for p := range o {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Field is a rendered name/type pair in the target language.
type Field struct {
	Name string
	Type string
}

type FunctionHeader struct {
	MethodName string  // e.g. "GetItems"
	Parameters []Field // parameters in ABI order
	ReturnType string  // e.g. "int", "void"
}

// Params joins the parameters as "Type name" pairs.
func (h FunctionHeader) Params() string {
	params := make([]string, len(h.Parameters))
	for i, p := range h.Parameters {
		params[i] = p.Type + " " + p.Name
	}
	return strings.Join(params, ", ")
}

type FunctionBody struct {
	Rows []string // each row is one line, indented by the writer
}
