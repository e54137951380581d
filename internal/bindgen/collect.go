// Package bindgen drives a generation run: it classifies parsed
// declarations into the intermediate model, resolves aliases and native
// types, and hands the result to one emitter per target language.
package bindgen

import (
	"context"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	slogctx "github.com/veqryn/slog-context"
)

// ClassifyOptions are the per-target knobs of the classifier.
type ClassifyOptions struct {
	// DocPrefix is prepended to every documentation line, e.g. "///" or " *".
	DocPrefix string
	// Filter selects declarations by name. Nil binds everything.
	Filter *common.Filter
	// Opaque seeds the run's opaque type set.
	Opaque []string
	// AllowNewtype treats a one-field tuple struct as an opaque handle
	// instead of rejecting it.
	AllowNewtype bool
}

// Collector classifies declarations into a Run. It is fed one file at a
// time, in encounter order.
type Collector struct {
	run  *ir.Run
	opts ClassifyOptions
}

func NewCollector(run *ir.Run, opts ClassifyOptions) *Collector {
	return &Collector{run: run, opts: opts}
}

// Collect adds every bindable declaration of file to the run. The first
// hard error aborts collection.
func (c *Collector) Collect(ctx context.Context, file *ast.File) error {
	for _, item := range file.Items {
		if err := c.collectItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) isIgnored(name string) bool {
	return c.opts.Filter != nil && c.opts.Filter.IsIgnored(name)
}

func (c *Collector) collectItem(ctx context.Context, item *ast.Item) error {
	kind := item.Kind()
	if kind == ast.KindOther {
		return nil
	}

	name := item.Name()
	if c.isIgnored(name) {
		slogctx.Debug(ctx, "filtered", "kind", kind, "name", name)
		return nil
	}

	switch kind {
	case ast.KindAlias:
		return c.collectAlias(ctx, item)
	case ast.KindConst:
		return c.collectConst(item)
	case ast.KindEnum:
		return c.collectEnum(item)
	case ast.KindStruct:
		return c.collectStruct(ctx, item)
	case ast.KindFn:
		return c.collectFn(item)
	}
	return nil
}

func (c *Collector) collectAlias(ctx context.Context, item *ast.Item) error {
	alias := item.Alias
	if alias.Generics.IsParameterized() {
		diag := common.Warningf(item.Pos, "parameterized type aliases not supported, skipping %s", alias.Name)
		slogctx.Warn(ctx, diag.Message, "pos", item.Pos.String())
		c.run.Warn(diag)
		return nil
	}

	ty, ok := ir.TransformType(alias.Type)
	if !ok {
		return common.Errorf(alias.Type.Pos, "bindgen can not handle the type `%s`", alias.Type)
	}

	c.run.Aliases[alias.Name] = ty
	return nil
}

func (c *Collector) collectConst(item *ast.Item) error {
	_, docs := common.ParseAttr(item.Metas, common.Always, common.RetrieveDocstring(c.opts.DocPrefix))

	value, ok := ir.TransformConst(item.Const)
	if !ok {
		return common.Errorf(item.Pos, "bindgen can not handle constant %s", item)
	}

	c.run.Consts = append(c.run.Consts, ir.Snippet[ir.Const]{
		Name: item.Const.Name,
		Docs: docs,
		Pos:  item.Pos,
		Item: value,
	})
	return nil
}

func (c *Collector) collectEnum(item *ast.Item) error {
	reprC, docs := common.ParseAttr(item.Metas, common.CheckReprC, common.RetrieveDocstring(c.opts.DocPrefix))
	if !reprC {
		return nil
	}

	if item.Enum.Generics.IsParameterized() {
		return common.Errorf(item.Pos, "bindgen can not handle parameterized enums")
	}

	enum, ok := ir.TransformEnum(item.Enum, c.opts.DocPrefix)
	if !ok {
		return common.Errorf(item.Pos, "bindgen can not handle enum %s", item)
	}

	c.run.Enums = append(c.run.Enums, ir.Snippet[ir.Enum]{
		Name: item.Enum.Name,
		Docs: docs,
		Pos:  item.Pos,
		Item: enum,
	})
	return nil
}

func (c *Collector) collectStruct(ctx context.Context, item *ast.Item) error {
	s := item.Struct
	reprC, docs := common.ParseAttr(item.Metas, common.CheckReprC, common.RetrieveDocstring(c.opts.DocPrefix))
	if !reprC {
		return nil
	}

	if s.Generics.IsParameterized() {
		return common.Errorf(item.Pos, "bindgen can not handle parameterized structs")
	}

	if s.Shape() != ast.ShapeNamed {
		// #[repr(C)] pub struct Handle(Inner); is an opaque handle.
		if c.opts.AllowNewtype && s.Shape() == ast.ShapeTuple && s.FieldCount() == 1 {
			slogctx.Debug(ctx, "newtype struct bound as opaque handle", "name", s.Name)
			c.run.Opaque.Add(s.Name)
			return nil
		}
		return common.Errorf(item.Pos, "bindgen can not handle unit or tuple structs (%s)", s.Name)
	}

	value, ok := ir.TransformStruct(s.Named.Fields, c.opts.DocPrefix)
	if !ok {
		return common.Errorf(item.Pos, "bindgen can not handle struct %s", item)
	}

	c.run.Structs = append(c.run.Structs, ir.Snippet[ir.Struct]{
		Name: s.Name,
		Docs: docs,
		Pos:  item.Pos,
		Item: value,
	})
	return nil
}

func (c *Collector) collectFn(item *ast.Item) error {
	fn := item.Fn
	noMangle, docs := common.ParseAttr(item.Metas, common.CheckNoMangle, common.RetrieveDocstring(c.opts.DocPrefix))
	if !noMangle || !common.IsExtern(fn.ABI()) {
		return nil
	}

	if fn.Generics.IsParameterized() {
		return common.Errorf(item.Pos, "bindgen can not handle parameterized extern functions")
	}

	if fn.Output != nil && fn.Output.Never {
		return common.Errorf(fn.Output.Pos, "panics across a C boundary are naughty!")
	}

	sig, ok := ir.TransformFunction(fn)
	if !ok {
		return common.Errorf(item.Pos, "bindgen can not handle function %s", fn.Signature())
	}

	c.run.Functions = append(c.run.Functions, ir.Snippet[ir.Signature]{
		Name: fn.Name,
		Docs: docs,
		Pos:  item.Pos,
		Item: sig,
	})
	return nil
}
