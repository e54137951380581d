package ir

import (
	"github.com/saffronjam/ffi-bindgen/internal/common"
)

// NameSet is a set of identifiers.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	s := NameSet{}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s NameSet) Add(name string) {
	s[name] = struct{}{}
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Run owns everything collected for one generation pass. It is created
// empty, filled by the collector, resolved, read by one emitter and then
// reset.
type Run struct {
	Consts    []Snippet[Const]
	Enums     []Snippet[Enum]
	Structs   []Snippet[Struct]
	Functions []Snippet[Signature]

	Aliases AliasTable
	Native  NameSet
	Opaque  NameSet

	// Diagnostics holds the warnings and notes reported during the run.
	Diagnostics []*common.Diagnostic
}

func NewRun(opaque ...string) *Run {
	return &Run{
		Aliases: AliasTable{},
		Native:  NewNameSet(),
		Opaque:  NewNameSet(opaque...),
	}
}

// Reset clears every collection, including the opaque set.
func (r *Run) Reset() {
	*r = *NewRun()
}

func (r *Run) IsOpaque(name string) bool {
	return r.Opaque.Has(name)
}

func (r *Run) IsNativeName(name string) bool {
	return r.Native.Has(name)
}

// IsNativeType reports whether t, after unwrapping pointers, names a
// native struct.
func (r *Run) IsNativeType(t Type) bool {
	t = t.Unwrap()
	return t.Kind == User && r.IsNativeName(t.Name)
}

// Struct looks up a collected struct by name.
func (r *Run) Struct(name string) (Struct, bool) {
	for _, s := range r.Structs {
		if s.Name == name {
			return s.Item, true
		}
	}
	return Struct{}, false
}

func (r *Run) IsEnum(name string) bool {
	for _, e := range r.Enums {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Warn records an advisory diagnostic, a warning or a note.
func (r *Run) Warn(diag *common.Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, diag)
}
