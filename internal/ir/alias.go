package ir

import (
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"gitlab.com/tozd/go/errors"
)

// maxAliasDepth bounds alias chains and nesting during resolution.
const maxAliasDepth = 64

var ErrAliasCycle = errors.Base("alias cycle")

// AliasTable maps alias names to their target types.
type AliasTable map[string]Type

// Lookup follows the chain of aliases starting at name. It reports false
// if name is not an alias. The result is the first target that is not
// itself an alias.
func (a AliasTable) Lookup(name string) (Type, bool, error) {
	ty, ok := a[name]
	if !ok {
		return Type{}, false, nil
	}

	seen := map[string]struct{}{name: {}}
	for ty.Kind == User {
		next, ok := a[ty.Name]
		if !ok {
			break
		}
		if _, dup := seen[ty.Name]; dup || len(seen) >= maxAliasDepth {
			return Type{}, false, errors.WithDetails(ErrAliasCycle, "alias", name)
		}
		seen[ty.Name] = struct{}{}
		switch {
		case next.Kind == User:
			next.Indirect = next.Indirect || ty.Indirect
		case ty.Indirect:
			next = PointerTo(next)
		}
		ty = next
	}

	return ty, true, nil
}

// Resolve substitutes every alias reachable in t.
func (a AliasTable) Resolve(t Type) (Type, error) {
	return a.resolve(t, 0)
}

func (a AliasTable) resolve(t Type, depth int) (Type, error) {
	if depth > maxAliasDepth {
		return Type{}, errors.WithDetails(ErrAliasCycle, "type", t.String())
	}

	switch t.Kind {
	case User:
		target, ok, err := a.Lookup(t.Name)
		if err != nil {
			return Type{}, err
		}
		if !ok {
			return t, nil
		}
		if target.Kind == User {
			target.Indirect = target.Indirect || t.Indirect
			return target, nil
		}
		if t.Indirect {
			target = PointerTo(target)
		}
		return a.resolve(target, depth+1)
	case Pointer:
		elem, err := a.resolve(*t.Elem, depth+1)
		if err != nil {
			return Type{}, err
		}
		return PointerTo(elem), nil
	case Array:
		elem, err := a.resolve(*t.Elem, depth+1)
		if err != nil {
			return Type{}, err
		}
		return ArrayOf(elem, t.Len), nil
	case Function:
		sig, err := a.resolveSignature(*t.Func, depth+1)
		if err != nil {
			return Type{}, err
		}
		return FunctionType(sig), nil
	default:
		return t, nil
	}
}

func (a AliasTable) resolveSignature(sig Signature, depth int) (Signature, error) {
	out := Signature{Inputs: make([]Param, len(sig.Inputs))}
	for i, p := range sig.Inputs {
		ty, err := a.resolve(p.Type, depth)
		if err != nil {
			return Signature{}, err
		}
		out.Inputs[i] = Param{Name: p.Name, Type: ty}
	}

	output, err := a.resolve(sig.Output, depth)
	if err != nil {
		return Signature{}, err
	}
	out.Output = output
	return out, nil
}

// ResolveAliases substitutes aliases through constants, struct fields and
// function signatures. A struct whose own name is an alias of another named
// type is renamed to that type. Resolution is idempotent. Failures are
// reported as diagnostics at the declaration that uses the alias.
func (r *Run) ResolveAliases() error {
	for i := range r.Consts {
		c := &r.Consts[i]
		ty, err := r.Aliases.Resolve(c.Item.Type)
		if err != nil {
			return common.Errorf(c.Pos, "bindgen can not resolve the type of const %s: %s", c.Name, err)
		}
		c.Item.Type = ty
	}

	for i := range r.Structs {
		s := &r.Structs[i]
		target, ok, err := r.Aliases.Lookup(s.Name)
		if err != nil {
			return common.Errorf(s.Pos, "bindgen can not resolve struct %s: %s", s.Name, err)
		}
		if ok && target.Kind == User {
			s.Name = target.Name
		}

		for j := range s.Item.Fields {
			f := &s.Item.Fields[j]
			ty, err := r.Aliases.Resolve(f.Type)
			if err != nil {
				return common.Errorf(s.Pos, "bindgen can not resolve the type of field %s.%s: %s", s.Name, f.Name, err)
			}
			f.Type = ty
		}
	}

	for i := range r.Functions {
		fn := &r.Functions[i]
		sig, err := r.Aliases.resolveSignature(fn.Item, 0)
		if err != nil {
			return common.Errorf(fn.Pos, "bindgen can not resolve the signature of %s: %s", fn.Name, err)
		}
		fn.Item = sig
	}

	return nil
}
