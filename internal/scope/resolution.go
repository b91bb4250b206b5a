package scope

import (
	"github.com/quench-lang/quench/internal/ast"
)

// ResolveID walks the parent chain for the entity with the given id.
func (c *Context) ResolveID(id int) (*Context, ast.Node, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if entity, ok := ctx.entities[id]; ok {
			return ctx, entity, true
		}
	}
	return nil, nil, false
}

// ResolveValueName walks the parent chain in the value namespace. Names
// never cross into the type namespace.
func (c *Context) ResolveValueName(name string) (*Context, ast.Node, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if entity, ok := ctx.valueNames[name]; ok {
			return ctx, entity, true
		}
	}
	return nil, nil, false
}

// ResolveTypeName walks the parent chain in the type namespace.
func (c *Context) ResolveTypeName(name string) (*Context, ast.Node, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if entity, ok := ctx.typeNames[name]; ok {
			return ctx, entity, true
		}
	}
	return nil, nil, false
}

// ResolveVar maps a textual variable occurrence to its defining entity,
// looking in the namespace the occurrence belongs to. Results are cached
// per occurrence; cache entries are write-once.
func (c *Context) ResolveVar(occurrence ast.Node) (ast.Node, bool) {
	home := c.FindContext(occurrence)
	if id, ok := home.varCache[occurrence]; ok {
		_, entity, found := home.ResolveID(id)
		return entity, found
	}

	var entity ast.Node
	var found bool
	switch v := occurrence.(type) {
	case *ast.TypeName:
		_, entity, found = home.ResolveTypeName(v.Name)
	case *ast.NameExpr:
		_, entity, found = home.ResolveValueName(v.Name)
	default:
		return nil, false
	}
	if !found {
		return nil, false
	}
	home.varCache[occurrence] = entity.ID()
	return entity, true
}

// Resolve implements typesystem.Resolver for type-name occurrences.
func (c *Context) Resolve(name *ast.TypeName) (ast.Node, bool) {
	return c.ResolveVar(name)
}

// FindContext returns the context of the nearest enclosing scope of a node,
// reconstructing the chain of contexts from the node's parent pointers.
// Orphan nodes (synthesized types with no parent) resolve at the root.
func (c *Context) FindContext(n ast.Node) *Context {
	return c.root().contextFor(parentScope(n))
}

// contextFor maps a scope node to its context, entering ancestors outermost
// first. A nil scope node is the root itself.
func (c *Context) contextFor(scopeNode ast.Node) *Context {
	if scopeNode == nil {
		return c
	}
	parent := c.contextFor(parentScope(scopeNode.Parent()))
	return parent.Enter(scopeNode)
}

// parentScope finds the nearest scope node at or above n.
func parentScope(n ast.Node) ast.Node {
	for ; n != nil; n = n.Parent() {
		if ast.IsScopeNode(n) {
			return n
		}
	}
	return nil
}

// definingContext finds the context in the chain above (and including) c
// that defines the given entity.
func (c *Context) definingContext(entity ast.Node) (*Context, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if e, ok := ctx.entities[entity.ID()]; ok && e == entity {
			return ctx, true
		}
	}
	return nil, false
}
