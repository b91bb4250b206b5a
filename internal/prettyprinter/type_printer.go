package prettyprinter

import (
	"fmt"
	"strings"

	"github.com/quench-lang/quench/internal/ast"
)

// --- Type Printer (output looks like source code) ---

// PrintType renders a type AST back to its surface syntax, for diagnostics.
func PrintType(t ast.Type) string {
	switch typ := t.(type) {
	case *ast.TypeName:
		return typ.Name

	case *ast.Apply:
		parts := []string{PrintType(typ.Head)}
		for _, arg := range typ.Args {
			parts = append(parts, PrintType(arg))
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))

	case *ast.TupleType:
		parts := []string{"tuple"}
		for _, e := range typ.Elems {
			parts = append(parts, PrintType(e))
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, " "))

	case *ast.FunType:
		params := make([]string, 0, len(typ.Params))
		for _, p := range typ.Params {
			params = append(params, PrintType(p))
		}
		inner := fmt.Sprintf("(%s) %s", strings.Join(params, " "), PrintType(typ.Ret))
		if len(typ.TParams) > 0 {
			return fmt.Sprintf("(fn (tparams %s) %s)", printParams(typ.TParams), inner)
		}
		return fmt.Sprintf("(fn %s)", inner)

	case *ast.Forall:
		return fmt.Sprintf("(forall (%s) %s)", printParams(typ.Params), PrintType(typ.Body))

	case *ast.Partial:
		names := make([]string, 0, len(typ.Holes))
		for _, h := range typ.Holes {
			names = append(names, h.Name)
		}
		return fmt.Sprintf("(partial (%s) %s)", strings.Join(names, " "), PrintType(typ.Inner))

	case *ast.Hole:
		return fmt.Sprintf("(hole %s)", typ.Name)

	default:
		return fmt.Sprintf("<%T>", t)
	}
}

func printParams(params []*ast.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, PrintParam(p))
	}
	return strings.Join(parts, " ")
}

// PrintParam renders one parameter in its declaration shape.
func PrintParam(p *ast.Param) string {
	if p.Kind != nil {
		return fmt.Sprintf("(%s :: %s)", p.Name, PrintKind(p.Kind))
	}
	if len(p.Constraints) == 0 {
		return p.Name
	}
	parts := []string{p.Name}
	for _, c := range p.Constraints {
		if len(c.Args) == 0 {
			parts = append(parts, c.Trait.Name)
			continue
		}
		args := []string{c.Trait.Name}
		for _, a := range c.Args {
			args = append(args, PrintType(a))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(args, " ")))
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// PrintKind renders a kind annotation.
func PrintKind(k ast.KindExpr) string {
	switch kind := k.(type) {
	case *ast.KindStar:
		return "*"
	case *ast.KindArrow:
		return fmt.Sprintf("(-> %s %s)", PrintKind(kind.Left), PrintKind(kind.Right))
	default:
		return "*"
	}
}
