// Package pipeline orchestrates the checker stages: parse, define, impl
// registration, and checking. Stages accumulate diagnostics instead of
// stopping at the first failing definition; within one definition the first
// error aborts.
package pipeline

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/parser"
	"github.com/quench-lang/quench/internal/scope"
)

// Source is one input file.
type Source struct {
	Path string
	Text string
}

// PipelineContext carries the state threaded through the processors.
type PipelineContext struct {
	RunID   string
	Repo    *ast.Repository
	Root    *scope.Context
	Sources []Source
	Decls   []ast.Decl
	Errors  error

	// Strict rejects value definitions without a type annotation.
	Strict bool
}

// NewContext builds a fresh pipeline context with a prelude-initialized
// root scope and a unique run id.
func NewContext(sources []Source) (*PipelineContext, error) {
	repo := ast.NewRepository()
	root := scope.Empty(repo)
	if err := scope.InitPrelude(root); err != nil {
		return nil, errors.Wrap(err, "prelude")
	}
	return &PipelineContext{
		RunID:   uuid.NewString(),
		Repo:    repo,
		Root:    root,
		Sources: sources,
	}, nil
}

func (c *PipelineContext) addError(err error) {
	c.Errors = multierr.Append(c.Errors, err)
}

// Processor represents a single processing stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// NewDefault assembles the standard stage order.
func NewDefault() *Pipeline {
	return New(
		ParseProcessor{},
		DefineProcessor{},
		ImplProcessor{},
		CheckProcessor{},
	)
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages.
	}
	return ctx
}

// ParseProcessor turns source text into declarations.
type ParseProcessor struct{}

func (ParseProcessor) Process(ctx *PipelineContext) *PipelineContext {
	for _, src := range ctx.Sources {
		decls, err := parser.New(src.Text, ctx.Repo).Parse()
		if err != nil {
			ctx.addError(errors.Wrap(err, src.Path))
			continue
		}
		ctx.Decls = append(ctx.Decls, decls...)
	}
	return ctx
}

// DefineProcessor populates the root context with every named entity.
// Impls are anonymous and wait for the ImplProcessor.
type DefineProcessor struct{}

func (DefineProcessor) Process(ctx *PipelineContext) *PipelineContext {
	for _, decl := range ctx.Decls {
		if _, isImpl := decl.(*ast.Impl); isImpl {
			continue
		}
		if err := ctx.Root.Define(decl); err != nil {
			ctx.addError(errors.Wrapf(err, "define %s", decl.DeclName()))
		}
	}
	return ctx
}

// ImplProcessor populates the trait-impl index before checking begins.
type ImplProcessor struct{}

func (ImplProcessor) Process(ctx *PipelineContext) *PipelineContext {
	for _, decl := range ctx.Decls {
		impl, isImpl := decl.(*ast.Impl)
		if !isImpl {
			continue
		}
		if err := ctx.Root.DefineImpl(impl); err != nil {
			ctx.addError(errors.Wrapf(err, "impl %s", impl.DeclName()))
		}
	}
	return ctx
}

// CheckProcessor runs the checking gate over every non-impl declaration.
// Each definition checks independently; its first error aborts it.
type CheckProcessor struct{}

func (CheckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	for _, decl := range ctx.Decls {
		if _, isImpl := decl.(*ast.Impl); isImpl {
			continue
		}
		if def, isDef := decl.(*ast.Def); isDef && ctx.Strict && def.Annot == nil {
			ctx.addError(errors.Errorf("check %s: definition needs a type annotation in strict mode", def.Name))
			continue
		}
		if err := ctx.Root.Check(decl); err != nil {
			ctx.addError(errors.Wrapf(err, "check %s", decl.DeclName()))
		}
	}
	return ctx
}

// Check is the convenience entry: parse, define, register impls, and check
// the given sources, returning the final context.
func Check(sources []Source) (*PipelineContext, error) {
	ctx, err := NewContext(sources)
	if err != nil {
		return nil, err
	}
	ctx = NewDefault().Run(ctx)
	return ctx, ctx.Errors
}
