// Package scope implements the tree of lexical contexts the checker walks.
//
// The package is split into focused files:
// - scope.go: Context type, construction, define and enter
// - resolution.go: name and id resolution, the variable cache, FindContext
// - normalize.go: compilation of type ASTs to canonical codes
// - check.go: the top-level checking gate and expression inference
// - prelude.go: built-in entities defined into the root context
package scope

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typecode"
	"github.com/quench-lang/quench/internal/typesystem"
)

// Context is one lexical scope: entity definitions, name indices, and the
// depth counter that anchors De Bruijn computation.
type Context struct {
	repo   *ast.Repository
	parent *Context
	owner  ast.Node // the scope node this context was created for; nil for the root
	depth  int

	entities   map[int]ast.Node
	valueNames map[string]ast.Node
	typeNames  map[string]ast.Node

	varCache map[ast.Node]int           // occurrence -> resolved entity id
	children map[ast.Node]*Context      // scope node -> child context
	codes    map[ast.Type]typecode.Code // normalize memo

	// Root-only state.
	impls     *typesystem.ImplIndex
	ctorTypes map[*ast.Constructor]*ast.FunType
}

// Empty constructs a root context at depth 0.
func Empty(repo *ast.Repository) *Context {
	return &Context{
		repo:       repo,
		depth:      0,
		entities:   make(map[int]ast.Node),
		valueNames: make(map[string]ast.Node),
		typeNames:  make(map[string]ast.Node),
		varCache:   make(map[ast.Node]int),
		children:   make(map[ast.Node]*Context),
		codes:      make(map[ast.Type]typecode.Code),
		impls:      typesystem.NewImplIndex(),
		ctorTypes:  make(map[*ast.Constructor]*ast.FunType),
	}
}

func newChild(parent *Context, owner ast.Node) *Context {
	depth := parent.depth
	if ast.IntroducesTypeParams(owner) {
		depth++
	}
	return &Context{
		repo:       parent.repo,
		parent:     parent,
		owner:      owner,
		depth:      depth,
		entities:   make(map[int]ast.Node),
		valueNames: make(map[string]ast.Node),
		typeNames:  make(map[string]ast.Node),
		varCache:   make(map[ast.Node]int),
		children:   make(map[ast.Node]*Context),
		codes:      make(map[ast.Type]typecode.Code),
	}
}

func (c *Context) Parent() *Context      { return c.parent }
func (c *Context) Depth() int            { return c.depth }
func (c *Context) Repo() *ast.Repository { return c.repo }

func (c *Context) root() *Context {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Impls returns the trait-impl index, owned by the root.
func (c *Context) Impls() *typesystem.ImplIndex {
	return c.root().impls
}

// Define inserts an entity into this context's id map and the appropriate
// name map. Defining a name twice in the same namespace of one context is a
// redeclaration. Defining a Data entity also defines its constructors in
// the value namespace.
func (c *Context) Define(entity ast.Decl) error {
	name := entity.DeclName()
	switch d := entity.(type) {
	case *ast.Def:
		return c.defineValue(name, d)
	case *ast.Constructor:
		return c.defineValue(name, d)
	case *ast.Alias, *ast.Trait, *ast.Param:
		return c.defineType(name, entity)
	case *ast.Data:
		if err := c.defineType(name, d); err != nil {
			return err
		}
		for _, ctor := range d.Ctors {
			if err := c.defineValue(ctor.Name, ctor); err != nil {
				return err
			}
			c.root().ctorTypes[ctor] = buildCtorType(c.repo, d, ctor)
		}
		return nil
	case *ast.Impl:
		// Impls are anonymous; they enter the impl index, not a namespace.
		return c.DefineImpl(d)
	default:
		return diag.Errorf(diag.InvariantViolated, "cannot define node %T", entity)
	}
}

func (c *Context) defineValue(name string, entity ast.Node) error {
	if _, exists := c.valueNames[name]; exists {
		return diag.Errorf(diag.Redeclaration, "value %q is already defined in this scope", name)
	}
	c.valueNames[name] = entity
	c.entities[entity.ID()] = entity
	return nil
}

func (c *Context) defineType(name string, entity ast.Node) error {
	if _, exists := c.typeNames[name]; exists {
		return diag.Errorf(diag.Redeclaration, "type %q is already defined in this scope", name)
	}
	c.typeNames[name] = entity
	c.entities[entity.ID()] = entity
	return nil
}

// Enter returns the unique child context for a scope node, creating it on
// first call. Quantifier scopes pre-populate their parameters as entities.
func (c *Context) Enter(scopeNode ast.Node) *Context {
	if child, ok := c.children[scopeNode]; ok {
		return child
	}
	child := newChild(c, scopeNode)
	for _, p := range ast.ScopeParams(scopeNode) {
		// Parameter names may shadow outer entities but must be unique
		// within their own block.
		if err := child.defineType(p.Name, p); err != nil {
			// Duplicate parameter names in one block violate the AST
			// construction contract; record the first one.
			continue
		}
	}
	c.children[scopeNode] = child
	return child
}

// buildCtorType assembles the generalized function type of a data
// constructor: the datatype's parameters become the function's generic
// parameters and the result is the saturated application of the datatype.
// The synthesized nodes are attached into the data declaration's scope so
// parameter references resolve there.
func buildCtorType(repo *ast.Repository, data *ast.Data, ctor *ast.Constructor) *ast.FunType {
	var ret ast.Type
	if len(data.Params) == 0 {
		ret = ast.NewTypeName(repo, data.Name)
	} else {
		args := make([]ast.Type, len(data.Params))
		for i, p := range data.Params {
			args[i] = ast.NewTypeName(repo, p.Name)
		}
		ret = ast.NewApply(repo, ast.NewTypeName(repo, data.Name), args)
	}
	fun := ast.NewFunType(repo, data.Params, ctor.Fields, ret)
	ast.Attach(data, fun)
	return fun
}
