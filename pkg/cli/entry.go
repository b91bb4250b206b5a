// Package cli implements the quench command: parse the project config,
// read the sources, run the checker pipeline, and report diagnostics.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/multierr"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/config"
	"github.com/quench-lang/quench/internal/pipeline"
	"github.com/quench-lang/quench/internal/prettyprinter"
	"github.com/quench-lang/quench/internal/typecode"
)

func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Run executes the CLI and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("quench", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", config.DefaultConfigFile, "project config file")
	disasm := flags.Bool("disasm", false, "dump canonical type codes")
	verbose := flags.Bool("verbose", false, "print run details")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorTag(stderr), err)
		return 2
	}
	if *disasm {
		cfg.Disasm = true
	}
	if *verbose {
		cfg.Verbose = true
	}

	paths := append([]string{}, cfg.Sources...)
	paths = append(paths, flags.Args()...)
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "usage: quench [flags] file%s...\n", config.SourceFileExt)
		return 2
	}

	var sources []pipeline.Source
	for _, path := range paths {
		if !isSourceFile(path) {
			fmt.Fprintf(stderr, "%s %s is not a source file\n", errorTag(stderr), path)
			return 2
		}
		text, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s %v\n", errorTag(stderr), err)
			return 2
		}
		sources = append(sources, pipeline.Source{Path: path, Text: string(text)})
	}

	ctx, err := pipeline.NewContext(sources)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errorTag(stderr), err)
		return 1
	}
	ctx.Strict = cfg.Strict
	if cfg.Verbose {
		fmt.Fprintf(stdout, "run %s: checking %d file(s)\n", ctx.RunID, len(sources))
	}

	ctx = pipeline.NewDefault().Run(ctx)

	if cfg.Disasm {
		dumpCodes(ctx, stdout)
	}

	if ctx.Errors != nil {
		for _, e := range multierr.Errors(ctx.Errors) {
			fmt.Fprintf(stderr, "%s %v\n", errorTag(stderr), e)
		}
		return 1
	}
	if cfg.Verbose {
		fmt.Fprintln(stdout, "ok")
	}
	return 0
}

// dumpCodes prints the canonical encoding of every alias body and definition
// annotation; types that fail to normalize are skipped.
func dumpCodes(ctx *pipeline.PipelineContext, out io.Writer) {
	for _, decl := range ctx.Decls {
		var t ast.Type
		name := decl.DeclName()
		switch d := decl.(type) {
		case *ast.Alias:
			t = d.Body
		case *ast.Def:
			t = d.Annot
		}
		if t == nil {
			continue
		}
		code, err := ctx.Root.Normalize(t)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "%s : %s\n", name, prettyprinter.PrintType(t))
		fmt.Fprint(out, typecode.Disassemble(code, name))
	}
}

// errorTag is colored when the stream is a terminal.
func errorTag(w io.Writer) string {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return "\x1b[31merror:\x1b[0m"
	}
	return "error:"
}
