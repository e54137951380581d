package bindgen

import (
	"context"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/ir"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
)

// Emitter renders a resolved run into the artifacts of one target language.
type Emitter interface {
	// Name identifies the target, e.g. "csharp".
	Name() string
	ClassifyOptions() ClassifyOptions
	// Emit writes the artifacts for run into outputs. It must not keep run.
	Emit(ctx context.Context, run *ir.Run, outputs common.Outputs) error
}

// Result is everything a successful generation produced.
type Result struct {
	// Outputs holds the artifacts per emitter name.
	Outputs     map[string]common.Outputs
	Diagnostics []*common.Diagnostic
}

// Generator owns the run state and reuses it for each emitter in turn.
type Generator struct {
	emitters []Emitter
	run      *ir.Run
}

func NewGenerator(emitters ...Emitter) *Generator {
	return &Generator{emitters: emitters, run: ir.NewRun()}
}

// Generate runs every emitter over files. Either all emitters succeed or
// nothing is returned.
func (g *Generator) Generate(ctx context.Context, files ...*ast.File) (*Result, error) {
	result := &Result{Outputs: map[string]common.Outputs{}}

	for _, emitter := range g.emitters {
		ctx := slogctx.With(ctx, "lang", emitter.Name())

		outputs, diags, err := g.generate(ctx, emitter, files)
		if err != nil {
			return nil, errors.Errorf("%s: %w", emitter.Name(), err)
		}

		result.Outputs[emitter.Name()] = outputs
		result.Diagnostics = append(result.Diagnostics, diags...)
	}

	return result, nil
}

func (g *Generator) generate(ctx context.Context, emitter Emitter, files []*ast.File) (common.Outputs, []*common.Diagnostic, error) {
	g.run.Reset()
	defer g.run.Reset()

	opts := emitter.ClassifyOptions()
	for _, name := range opts.Opaque {
		g.run.Opaque.Add(name)
	}

	collector := NewCollector(g.run, opts)
	for _, file := range files {
		if err := collector.Collect(ctx, file); err != nil {
			return nil, nil, err
		}
	}

	slogctx.Debug(ctx, "collected declarations",
		"consts", len(g.run.Consts),
		"enums", len(g.run.Enums),
		"structs", len(g.run.Structs),
		"functions", len(g.run.Functions),
		"aliases", len(g.run.Aliases),
	)

	if err := g.run.ResolveAliases(); err != nil {
		return nil, nil, err
	}

	sweeps := g.run.ResolveNativeTypes()
	slogctx.Debug(ctx, "resolved native types", "sweeps", sweeps, "native", len(g.run.Native))
	if sweeps > len(g.run.Structs) {
		return nil, nil, common.Bugf(ast.Position{}, "native type propagation took %d sweeps for %d structs", sweeps, len(g.run.Structs))
	}

	outputs := common.Outputs{}
	if err := emitter.Emit(ctx, g.run, outputs); err != nil {
		return nil, nil, err
	}

	slogctx.Info(ctx, "generated bindings", "artifacts", len(outputs))

	return outputs, g.run.Diagnostics, nil
}
