package ir

import (
	"gitlab.com/tozd/go/errors"
	"strings"
)

// CallbackOf returns the signature of t if it is a callback: a function
// pointer whose first parameter is the user_data context.
func CallbackOf(t Type) (*Signature, bool) {
	if t.Kind != Function || len(t.Func.Inputs) == 0 {
		return nil, false
	}
	if !IsUserData(t.Func.Inputs[0]) {
		return nil, false
	}
	return t.Func, true
}

// Callbacks returns the callback parameters of inputs in order.
func Callbacks(inputs []Param) []Param {
	var cbs []Param
	for _, p := range inputs {
		if _, ok := CallbackOf(p.Type); ok {
			cbs = append(cbs, p)
		}
	}
	return cbs
}

func NumCallbacks(inputs []Param) int {
	return len(Callbacks(inputs))
}

// CallbackKey identifies a callback by the structure of its parameters
// after the context, so that callbacks differing only in parameter names
// share one generated wrapper.
func CallbackKey(sig Signature) string {
	var parts []string
	for _, a := range VisibleArgs(sig.Inputs) {
		switch a.Kind {
		case ArgArray:
			parts = append(parts, "["+a.Elem.String()+"]")
		case ArgCallback:
			parts = append(parts, "cb("+CallbackKey(*a.Callback)+")")
		default:
			parts = append(parts, a.Type.String())
		}
	}
	key := strings.Join(parts, ",")
	if sig.Output.Kind != Unit {
		key += "->" + sig.Output.String()
	}
	return key
}

// CallbackUse is one distinct callback structure found across functions.
// Single is set when at least one function takes it as its only callback.
type CallbackUse struct {
	Key    string
	Sig    Signature
	Single bool
}

// CollectCallbacks returns the distinct callbacks of functions in
// encounter order.
func CollectCallbacks(functions []Snippet[Signature]) []CallbackUse {
	return CollectCallbacksBy(functions, CallbackKey)
}

// CollectCallbacksBy is CollectCallbacks with callbacks told apart by key.
// Emitters pass the name they render a callback under, so two callbacks
// that render identically are declared once and the first one wins.
func CollectCallbacksBy(functions []Snippet[Signature], keyOf func(Signature) string) []CallbackUse {
	var uses []CallbackUse
	index := map[string]int{}

	for _, fn := range functions {
		cbs := Callbacks(fn.Item.Inputs)
		for _, p := range cbs {
			sig := *p.Type.Func
			key := keyOf(sig)
			if i, ok := index[key]; ok {
				if len(cbs) == 1 {
					uses[i].Single = true
				}
				continue
			}
			index[key] = len(uses)
			uses = append(uses, CallbackUse{Key: key, Sig: sig, Single: len(cbs) == 1})
		}
	}

	return uses
}

// MultiCallbackPolicy decides how an emitter handles functions with more
// than one callback parameter.
type MultiCallbackPolicy int

const (
	// PerIndex generates a distinct trampoline per callback position.
	PerIndex MultiCallbackPolicy = iota
	// SkipWrapper emits only the raw declaration.
	SkipWrapper
)

func ParseMultiCallbackPolicy(s string) (MultiCallbackPolicy, error) {
	switch s {
	case "", "perIndex":
		return PerIndex, nil
	case "skip":
		return SkipWrapper, nil
	default:
		return 0, errors.Errorf("unknown multi-callback policy %q", s)
	}
}

// WrapperEligible reports whether a function gets a convenience wrapper:
// it is not blacklisted and has at most one callback.
func WrapperEligible(name string, sig Signature, blacklist NameSet) bool {
	return !blacklist.Has(name) && NumCallbacks(sig.Inputs) <= 1
}
