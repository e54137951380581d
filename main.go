package main

import (
	"context"
	"fmt"
	"github.com/lmittmann/tint"
	"github.com/saffronjam/ffi-bindgen/internal/ast"
	"github.com/saffronjam/ffi-bindgen/internal/bindgen"
	"github.com/saffronjam/ffi-bindgen/internal/common"
	"github.com/saffronjam/ffi-bindgen/internal/csharp"
	"github.com/saffronjam/ffi-bindgen/internal/java"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"
	"log/slog"
	"os"
	"path/filepath"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ffi-bindgen: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "ffi-bindgen",
		Usage:     "generate C# and Java bindings for the extern functions of a crate",
		ArgsUsage: "<source.rs>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringSliceFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "target language (csharp, java)",
				Value:   cli.NewStringSlice("csharp", "java"),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output directory",
				Value:   "bindings",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log debug output",
			},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			handler := slogctx.NewHandler(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: "15:04:05.000",
			}), nil)
			c.Context = slogctx.NewCtx(c.Context, slog.New(handler))
			return nil
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	ctx := c.Context

	if c.NArg() == 0 {
		return errors.New("no source files given")
	}

	config := common.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		config, err = common.LoadConfig(path)
		if err != nil {
			return err
		}
	}

	emitters, err := newEmitters(config, c.StringSlice("lang"))
	if err != nil {
		return err
	}

	files := make([]*ast.File, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		file, err := ast.ParseFile(path)
		if err != nil {
			return err
		}
		files = append(files, file)
	}

	result, err := bindgen.NewGenerator(emitters...).Generate(ctx, files...)
	if err != nil {
		return err
	}

	for _, diag := range result.Diagnostics {
		if diag.Level == common.LevelNote {
			slogctx.Info(ctx, diag.Message, "pos", diag.Pos.String())
			continue
		}
		slogctx.Warn(ctx, diag.Message, "pos", diag.Pos.String(), "level", diag.Level.String())
	}

	return writeOutputs(ctx, c.String("out"), result)
}

// newEmitters builds the emitters for langs in the order given.
func newEmitters(config *common.Config, langs []string) ([]bindgen.Emitter, error) {
	emitters := make([]bindgen.Emitter, 0, len(langs))
	for _, lang := range langs {
		switch lang {
		case "csharp", "cs":
			emitter, err := csharp.NewFromConfig(config)
			if err != nil {
				return nil, err
			}
			emitters = append(emitters, emitter)
		case "java":
			emitter, err := java.NewFromConfig(config)
			if err != nil {
				return nil, err
			}
			emitters = append(emitters, emitter)
		default:
			return nil, errors.Errorf("unknown language %q", lang)
		}
	}
	return emitters, nil
}

// writeOutputs writes every artifact below out/<lang>/.
func writeOutputs(ctx context.Context, out string, result *bindgen.Result) error {
	for lang, outputs := range result.Outputs {
		dir := filepath.Join(out, lang)
		for _, path := range outputs.Paths() {
			target := filepath.Join(dir, filepath.FromSlash(path))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.WithStack(err)
			}
			if err := os.WriteFile(target, []byte(outputs[path]), 0o644); err != nil {
				return errors.WithStack(err)
			}
		}
		slogctx.Info(ctx, "wrote bindings", "lang", lang, "dir", dir, "files", len(outputs))
	}
	return nil
}
