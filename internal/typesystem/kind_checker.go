package typesystem

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
)

// ParamKind returns the kind a type parameter was declared with. A
// constrained parameter has kind * (constraints are only placed on
// concrete-kinded parameters); an HKT parameter has its declared kind.
func ParamKind(p *ast.Param) Kind {
	if p.Kind != nil {
		return KindFromExpr(p.Kind)
	}
	return Star
}

// DeclKind returns the kind of a type-level entity: the curried kind arrow
// of its parameter list ending in *. With zero parameters the kind is *.
func DeclKind(def ast.Node) (Kind, error) {
	switch d := def.(type) {
	case *ast.Param:
		return ParamKind(d), nil
	case *ast.Data:
		return curriedKind(d.Params), nil
	case *ast.Alias:
		return curriedKind(d.Params), nil
	case *ast.Trait:
		return curriedKind(ast.ScopeParams(d)), nil
	default:
		return nil, diag.Errorf(diag.InvariantViolated, "node %T has no kind", def)
	}
}

func curriedKind(params []*ast.Param) Kind {
	kind := Star
	for i := len(params) - 1; i >= 0; i-- {
		kind = KArrow{Left: ParamKind(params[i]), Right: kind}
	}
	return kind
}

// KindOf computes the kind of a type expression. It is total on well-formed
// types and returns an error on malformed ones. When holes is nil, an
// unfilled hole is treated as kind * (consistency-check mode); otherwise an
// unfilled hole has no kind.
func KindOf(t ast.Type, res Resolver, holes HoleView) (Kind, error) {
	switch typ := t.(type) {
	case *ast.Forall, *ast.FunType, *ast.TupleType:
		return Star, nil

	case *ast.Partial:
		return KindOf(typ.Inner, res, holes)

	case *ast.Hole:
		if holes == nil {
			return Star, nil
		}
		if filled, ok := holes.HoleAssignment(typ); ok {
			return KindOf(filled, res, holes)
		}
		return nil, diag.Errorf(diag.UnresolvedHole, "hole %s has no kind before it is filled", typ.Name)

	case *ast.TypeName:
		def, ok := res.Resolve(typ)
		if !ok {
			return nil, diag.Errorf(diag.NotFound, "unbound type name %q", typ.Name)
		}
		return DeclKind(def)

	case *ast.Apply:
		headKind, err := KindOf(typ.Head, res, holes)
		if err != nil {
			return nil, err
		}
		curr := headKind
		for _, arg := range typ.Args {
			argKind, err := KindOf(arg, res, holes)
			if err != nil {
				return nil, err
			}
			arrow, ok := curr.(KArrow)
			if !ok {
				return nil, diag.Errorf(diag.KindMismatch, "cannot apply a type of kind %s to an argument", curr)
			}
			// The parameter kind is compared against the ARGUMENT kind,
			// as equal canonical codes.
			if KindCode(arrow.Left) != KindCode(argKind) {
				return nil, diag.Errorf(diag.KindMismatch, "expected argument of kind %s, got %s", arrow.Left, argKind)
			}
			curr = arrow.Right
		}
		return curr, nil

	default:
		return nil, diag.Errorf(diag.InvariantViolated, "unknown type node %T", t)
	}
}

// CheckType validates that a type is well-formed: all names resolve, every
// application satisfies the kind arrow law, tuple elements and function
// parameters are concrete, and holes sit inside the Partial that declares
// them.
func CheckType(t ast.Type, res Resolver) error {
	switch typ := t.(type) {
	case *ast.TypeName:
		if _, ok := res.Resolve(typ); !ok {
			return diag.Errorf(diag.NotFound, "unbound type name %q", typ.Name)
		}
		return nil

	case *ast.Apply:
		if err := CheckType(typ.Head, res); err != nil {
			return err
		}
		for _, arg := range typ.Args {
			if err := CheckType(arg, res); err != nil {
				return err
			}
		}
		_, err := KindOf(typ, res, nil)
		return err

	case *ast.TupleType:
		for _, elem := range typ.Elems {
			if err := checkConcrete(elem, res, "tuple element"); err != nil {
				return err
			}
		}
		return nil

	case *ast.FunType:
		for _, p := range typ.TParams {
			if err := CheckParam(p, res); err != nil {
				return err
			}
		}
		for _, p := range typ.Params {
			if err := checkConcrete(p, res, "function parameter"); err != nil {
				return err
			}
		}
		return checkConcrete(typ.Ret, res, "function return type")

	case *ast.Forall:
		for _, p := range typ.Params {
			if err := CheckParam(p, res); err != nil {
				return err
			}
		}
		return checkConcrete(typ.Body, res, "quantified body")

	case *ast.Partial:
		return CheckType(typ.Inner, res)

	case *ast.Hole:
		if enclosingPartial(typ) == nil {
			return diag.Errorf(diag.InvariantViolated, "hole %s occurs outside any partial scope", typ.Name)
		}
		return nil

	default:
		return diag.Errorf(diag.InvariantViolated, "unknown type node %T", t)
	}
}

// CheckParam validates a parameter declaration: its constraints must name
// traits with matching arity, and constrained parameters must be
// concrete-kinded.
func CheckParam(p *ast.Param, res Resolver) error {
	if len(p.Constraints) > 0 && p.Kind != nil {
		if !KindFromExpr(p.Kind).Equal(Star) {
			return diag.Errorf(diag.KindMismatch, "parameter %s: constraints require kind *", p.Name)
		}
	}
	for _, c := range p.Constraints {
		def, ok := res.Resolve(c.Trait)
		if !ok {
			return diag.Errorf(diag.NotFound, "unbound trait %q in constraint on %s", c.Trait.Name, p.Name)
		}
		trait, ok := def.(*ast.Trait)
		if !ok {
			return diag.Errorf(diag.NotFound, "%q is not a trait", c.Trait.Name)
		}
		// The constrained parameter itself discharges the trait's first
		// parameter; extra constraint arguments cover the rest.
		want := len(trait.Params) - 1
		if want < 0 {
			want = 0
		}
		if len(c.Args) != want {
			return diag.Errorf(diag.ArityMismatch, "trait %s expects %d constraint arguments, got %d", trait.Name, want, len(c.Args))
		}
		for _, arg := range c.Args {
			if err := CheckType(arg, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkConcrete(t ast.Type, res Resolver, what string) error {
	if err := CheckType(t, res); err != nil {
		return err
	}
	k, err := KindOf(t, res, nil)
	if err != nil {
		return err
	}
	if !k.Equal(Star) {
		return diag.Errorf(diag.KindMismatch, "%s must have kind *, got %s", what, k)
	}
	return nil
}

func enclosingPartial(h *ast.Hole) *ast.Partial {
	for n := h.Parent(); n != nil; n = n.Parent() {
		if p, ok := n.(*ast.Partial); ok {
			for _, declared := range p.Holes {
				if declared == h {
					return p
				}
			}
		}
	}
	return nil
}
