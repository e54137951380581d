package common

import (
	"gitlab.com/tozd/go/errors"
	"regexp"
)

// FilterMode decides how the identifiers in a Filter are interpreted.
type FilterMode string

const (
	// Blacklist ignores the identifiers in the filter.
	Blacklist FilterMode = "blacklist"
	// Whitelist ignores every identifier not in the filter.
	Whitelist FilterMode = "whitelist"
)

// Filter selects which declarations are bound by name.
type Filter struct {
	mode     FilterMode
	idents   map[string]struct{}
	patterns []*regexp.Regexp
}

func NewFilter(mode FilterMode, idents ...string) *Filter {
	f := &Filter{mode: mode, idents: map[string]struct{}{}}
	for _, ident := range idents {
		f.Add(ident)
	}
	return f
}

func (f *Filter) Add(ident string) {
	f.idents[ident] = struct{}{}
}

// AddPattern adds a regular expression matched against whole identifiers.
func (f *Filter) AddPattern(pattern string) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return errors.Errorf("filter pattern %q: %w", pattern, err)
	}
	f.patterns = append(f.patterns, re)
	return nil
}

// Reset clears the identifiers and patterns and switches to mode.
func (f *Filter) Reset(mode FilterMode) {
	f.mode = mode
	f.idents = map[string]struct{}{}
	f.patterns = nil
}

func (f *Filter) Mode() FilterMode {
	return f.mode
}

func (f *Filter) IsIgnored(ident string) bool {
	_, ok := f.idents[ident]
	for _, re := range f.patterns {
		if ok {
			break
		}
		ok = re.MatchString(ident)
	}
	if f.mode == Whitelist {
		return !ok
	}
	return ok
}
