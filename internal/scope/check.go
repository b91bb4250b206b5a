package scope

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/config"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typesystem"
)

// Check is the top-level gate: name resolution, recursive checking of
// children in the appropriate sub-context, and kind/unification validation.
// The walk is post-order over a finite tree, so it terminates. The first
// error aborts the call.
func (c *Context) Check(n ast.Node) error {
	switch d := n.(type) {
	case *ast.Alias:
		for _, p := range d.Params {
			if err := typesystem.CheckParam(p, c); err != nil {
				return err
			}
		}
		if err := typesystem.CheckType(d.Body, c); err != nil {
			return err
		}
		_, err := typesystem.KindOf(d.Body, c, nil)
		return err

	case *ast.Data:
		for _, p := range d.Params {
			if err := typesystem.CheckParam(p, c); err != nil {
				return err
			}
		}
		for _, ctor := range d.Ctors {
			if err := c.Check(ctor); err != nil {
				return err
			}
		}
		return nil

	case *ast.Constructor:
		for _, field := range d.Fields {
			if err := c.checkConcrete(field, "constructor field"); err != nil {
				return err
			}
		}
		return nil

	case *ast.Trait:
		for _, s := range d.Supers {
			def, ok := c.ResolveVar(s)
			if !ok {
				return diag.Errorf(diag.NotFound, "unbound super-trait %q", s.Name)
			}
			if _, isTrait := def.(*ast.Trait); !isTrait {
				return diag.Errorf(diag.NotFound, "%q is not a trait", s.Name)
			}
		}
		for _, p := range ast.ScopeParams(d) {
			if err := typesystem.CheckParam(p, c); err != nil {
				return err
			}
		}
		for _, m := range d.Methods {
			if err := c.checkConcrete(m.Type, "trait method"); err != nil {
				return err
			}
		}
		return nil

	case *ast.Impl:
		return c.checkImpl(d)

	case *ast.Def:
		return c.checkDef(d)

	case ast.Type:
		return typesystem.CheckType(d, c)

	default:
		return diag.Errorf(diag.InvariantViolated, "cannot check node %T", n)
	}
}

func (c *Context) checkConcrete(t ast.Type, what string) error {
	if err := typesystem.CheckType(t, c); err != nil {
		return err
	}
	k, err := typesystem.KindOf(t, c, nil)
	if err != nil {
		return err
	}
	if !k.Equal(typesystem.Star) {
		return diag.Errorf(diag.KindMismatch, "%s must have kind *, got %s", what, k)
	}
	return nil
}

// DefineImpl validates an impl declaration and inserts it into the shared
// trait-impl index under its canonical keys. The index is populated before
// checking begins.
func (c *Context) DefineImpl(d *ast.Impl) error {
	if err := c.checkImpl(d); err != nil {
		return err
	}
	traitCode, err := c.Normalize(d.Trait)
	if err != nil {
		return err
	}
	typeCode, err := c.Normalize(d.Target)
	if err != nil {
		return err
	}
	return c.Impls().Define(traitCode, typeCode, d)
}

func (c *Context) checkImpl(d *ast.Impl) error {
	def, ok := c.ResolveVar(d.Trait)
	if !ok {
		return diag.Errorf(diag.NotFound, "unbound trait %q", d.Trait.Name)
	}
	trait, isTrait := def.(*ast.Trait)
	if !isTrait {
		return diag.Errorf(diag.NotFound, "%q is not a trait", d.Trait.Name)
	}

	want := len(trait.Params) - 1
	if want < 0 {
		want = 0
	}
	if len(d.TraitArgs) != want {
		return diag.Errorf(diag.ArityMismatch, "trait %s expects %d impl arguments, got %d", trait.Name, want, len(d.TraitArgs))
	}

	if err := typesystem.CheckType(d.Target, c); err != nil {
		return err
	}
	if len(trait.Params) > 0 {
		wantKind := typesystem.ParamKind(trait.Params[0])
		gotKind, err := typesystem.KindOf(d.Target, c, nil)
		if err != nil {
			return err
		}
		if typesystem.KindCode(wantKind) != typesystem.KindCode(gotKind) {
			return diag.Errorf(diag.KindMismatch, "impl target of %s must have kind %s, got %s", trait.Name, wantKind, gotKind)
		}
	}
	for _, arg := range d.TraitArgs {
		if err := typesystem.CheckType(arg, c); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) checkDef(d *ast.Def) error {
	if d.Annot != nil {
		if err := typesystem.CheckType(d.Annot, c); err != nil {
			return err
		}
		if _, err := typesystem.KindOf(d.Annot, c, nil); err != nil {
			return err
		}
	}
	if d.Body == nil {
		return nil
	}

	u := typesystem.NewUnifier(c.Impls())
	st := typesystem.NewState(c.root(), c.root())
	bodyType, err := c.inferExpr(d.Body, u, st)
	if err != nil {
		return err
	}
	if d.Annot != nil {
		return u.Unify(d.Annot, bodyType, st)
	}
	return nil
}

// inferExpr computes the type of a value expression, driving the unifier
// for calls. The state persists across the whole definition, so hole
// assignments and captured instantiations carry through.
func (c *Context) inferExpr(e ast.Expr, u *typesystem.Unifier, st *typesystem.State) (ast.Type, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		return ast.NewTypeName(c.repo, config.IntTypeName), nil

	case *ast.StrLit:
		return ast.NewTypeName(c.repo, config.StringTypeName), nil

	case *ast.NameExpr:
		entity, ok := c.root().ResolveVar(ex)
		if !ok {
			return nil, diag.Errorf(diag.NotFound, "unbound name %q", ex.Name)
		}
		switch def := entity.(type) {
		case *ast.Def:
			if def.Annot == nil {
				return nil, diag.Errorf(diag.NotFound, "%q has no declared type", ex.Name)
			}
			return def.Annot, nil
		case *ast.Constructor:
			ft, ok := c.root().ctorTypes[def]
			if !ok {
				return nil, diag.Errorf(diag.InvariantViolated, "constructor %q was never defined", ex.Name)
			}
			// A nullary constructor is a value of the datatype, not a
			// function; its generic parameters open on the result side.
			if len(ft.Params) == 0 {
				for _, tp := range ft.TParams {
					st.R.Push(tp)
				}
				return ft.Ret, nil
			}
			return ft, nil
		default:
			return nil, diag.Errorf(diag.NotFound, "%q is not a value", ex.Name)
		}

	case *ast.TupleExpr:
		elems := make([]ast.Type, len(ex.Elems))
		for i, el := range ex.Elems {
			t, err := c.inferExpr(el, u, st)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return ast.NewTupleType(c.repo, elems), nil

	case *ast.CallExpr:
		fnType, err := c.inferExpr(ex.Fn, u, st)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Type, len(ex.Args))
		for i, arg := range ex.Args {
			t, err := c.inferExpr(arg, u, st)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}

		// Unify the callee against a synthesized call-site type whose
		// return is a fresh hole; the hole's assignment is the result.
		// The callee goes on the swapped view so its unwrapped parameters
		// land on the right-hand stack, where the inferred result type
		// keeps resolving them.
		ret := ast.NewHole(c.repo, 0, "call")
		site := ast.NewFunType(c.repo, nil, args, ret)
		ast.NewPartial(c.repo, []*ast.Hole{ret}, site)
		if err := u.Unify(fnType, site, st.Swap()); err != nil {
			return nil, err
		}
		if assigned, ok := st.HoleAssignment(ret); ok {
			return assigned, nil
		}
		return ret, nil

	default:
		return nil, diag.Errorf(diag.InvariantViolated, "cannot infer node %T", e)
	}
}
