package typesystem

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/typecode"
)

// Resolver lets the kind checker and the unifier look up definitions and
// canonical codes without depending on the scope tree directly. The scope
// Context implements it.
type Resolver interface {
	// Resolve maps a type-name occurrence to its defining entity: a Param,
	// Data, Alias, or Trait node.
	Resolve(name *ast.TypeName) (ast.Node, bool)

	// Normalize encodes a type expression to its canonical code.
	Normalize(t ast.Type) (typecode.Code, error)
}

// HoleView exposes hole assignments to the kind checker. The unifier's
// State implements it.
type HoleView interface {
	HoleAssignment(h *ast.Hole) (ast.Type, bool)
}

// ResolveHead peels applications off a type expression and resolves the
// underlying head name. Returns the occurrence and its definition.
func ResolveHead(t ast.Type, res Resolver) (*ast.TypeName, ast.Node, bool) {
	for {
		switch h := t.(type) {
		case *ast.TypeName:
			def, ok := res.Resolve(h)
			return h, def, ok
		case *ast.Apply:
			t = h.Head
		default:
			return nil, nil, false
		}
	}
}
