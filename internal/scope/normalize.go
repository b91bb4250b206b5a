package scope

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typecode"
	"github.com/quench-lang/quench/internal/typesystem"
)

// Normalize encodes a type expression to its canonical code. Results are
// memoized on the context of the node and are stable for the lifetime of
// the Context. Implements typesystem.Resolver together with Resolve.
func (c *Context) Normalize(t ast.Type) (typecode.Code, error) {
	home := c.FindContext(t)
	if code, ok := home.codes[t]; ok {
		return code, nil
	}
	var words []int
	if err := c.root().compile(t, &words); err != nil {
		return "", err
	}
	code, err := typecode.Encode(words)
	if err != nil {
		return "", err
	}
	home.codes[t] = code
	return code, nil
}

// compile emits the canonical instruction sequence for a type. Receiver is
// the root context; every occurrence anchors its own depth through
// FindContext, so the emitted De Bruijn deltas are independent of where
// compilation started.
func (r *Context) compile(t ast.Type, out *[]int) error {
	switch typ := t.(type) {
	case *ast.TypeName:
		entity, ok := r.ResolveVar(typ)
		if !ok {
			return diag.Errorf(diag.NotFound, "unbound type name %q", typ.Name)
		}
		if p, isParam := entity.(*ast.Param); isParam {
			return r.compileVar(typ, p, out)
		}
		id := entity.ID()
		if id >= typecode.TupleBase {
			return diag.Errorf(diag.Overflow, "entity id %d exceeds the encodable range", id)
		}
		*out = append(*out, int(typecode.OpRef), id)
		return nil

	case *ast.Forall:
		return r.compileQuantified(typ.Params, out, func(out *[]int) error {
			return r.compile(typ.Body, out)
		})

	case *ast.FunType:
		return r.compileQuantified(typ.TParams, out, func(out *[]int) error {
			return r.compileFun(typ, out)
		})

	case *ast.Apply:
		for range typ.Args {
			*out = append(*out, int(typecode.OpApply))
		}
		if err := r.compile(typ.Head, out); err != nil {
			return err
		}
		for _, arg := range typ.Args {
			if err := r.compile(arg, out); err != nil {
				return err
			}
		}
		return nil

	case *ast.TupleType:
		for range typ.Elems {
			*out = append(*out, int(typecode.OpApply))
		}
		*out = append(*out, int(typecode.OpRef), typecode.TupleRef(len(typ.Elems)))
		for _, elem := range typ.Elems {
			if err := r.compile(elem, out); err != nil {
				return err
			}
		}
		return nil

	case *ast.Hole:
		if typ.HoleID < 0 || typ.HoleID > typecode.MaxWord {
			return diag.Errorf(diag.Overflow, "hole id %d exceeds the encodable range", typ.HoleID)
		}
		*out = append(*out, int(typecode.OpHole), typ.HoleID)
		return nil

	case *ast.Partial:
		return r.compile(typ.Inner, out)

	default:
		return diag.Errorf(diag.InvariantViolated, "cannot encode node %T", t)
	}
}

// compileVar emits a De Bruijn variable: the frame delta between the
// occurrence's scope and the parameter's binding scope, packed with the
// parameter's slot inside its binder block.
func (r *Context) compileVar(occurrence *ast.TypeName, p *ast.Param, out *[]int) error {
	home := r.FindContext(occurrence)
	dctx, ok := home.definingContext(p)
	if !ok {
		return diag.Errorf(diag.InvariantViolated, "parameter %s resolved outside its binding scope", p.Name)
	}
	delta := home.depth - dctx.depth
	slot := slotIndex(dctx.owner, p)
	if delta < 0 || delta > 0xFF || slot < 0 || slot > 0xFF {
		return diag.Errorf(diag.Overflow, "variable %s is bound too deep to encode", p.Name)
	}
	*out = append(*out, int(typecode.OpVar), typecode.PackVar(delta, slot))
	return nil
}

// compileQuantified emits one Forall instruction per parameter followed by
// the body; the parameters of one block still share a single De Bruijn frame
// and are told apart by slot. An HKT parameter carries its declared kind (a declared kind of *
// is the same binder as an undeclared one and emits nothing); a constrained
// parameter carries its constraint terms in ascending order of their
// fully-encoded sub-codes.
func (r *Context) compileQuantified(params []*ast.Param, out *[]int, body func(*[]int) error) error {
	for _, p := range params {
		*out = append(*out, int(typecode.OpForall))
		if p.Kind != nil {
			kind := typesystem.KindFromExpr(p.Kind)
			if !kind.Equal(typesystem.Star) {
				*out = append(*out, typesystem.KindWords(kind)...)
			}
			continue
		}
		if len(p.Constraints) == 0 {
			continue
		}
		if err := r.compileConstraints(p.Constraints, out); err != nil {
			return err
		}
	}
	return body(out)
}

// compileConstraints sorts a parameter's constraint terms by their encoded
// byte strings so that {A + B} and {B + A} produce identical codes.
func (r *Context) compileConstraints(constraints []*ast.ConstraintRef, out *[]int) error {
	encoded := make([][]int, 0, len(constraints))
	for _, c := range constraints {
		var words []int
		for range c.Args {
			words = append(words, int(typecode.OpApply))
		}
		if err := r.compile(c.Trait, &words); err != nil {
			return err
		}
		for _, arg := range c.Args {
			if err := r.compile(arg, &words); err != nil {
				return err
			}
		}
		encoded = append(encoded, words)
	}

	keys := make([]typecode.Code, len(encoded))
	for i, words := range encoded {
		code, err := typecode.Encode(words)
		if err != nil {
			return err
		}
		keys[i] = code
	}
	order := make([]int, len(encoded))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return strings.Compare(string(keys[i]), string(keys[j]))
	})

	for _, i := range order {
		*out = append(*out, int(typecode.OpImpl))
		*out = append(*out, encoded[i]...)
	}
	return nil
}

func (r *Context) compileFun(typ *ast.FunType, out *[]int) error {
	// A nullary function takes the empty tuple, so its code stays distinct
	// from the bare return type.
	if len(typ.Params) == 0 {
		*out = append(*out, int(typecode.OpFun), int(typecode.OpRef), typecode.TupleRef(0))
		return r.compile(typ.Ret, out)
	}
	for range typ.Params {
		*out = append(*out, int(typecode.OpFun))
	}
	for _, p := range typ.Params {
		if err := r.compile(p, out); err != nil {
			return err
		}
	}
	return r.compile(typ.Ret, out)
}

func slotIndex(owner ast.Node, p *ast.Param) int {
	for i, q := range ast.ScopeParams(owner) {
		if q == p {
			return i
		}
	}
	return -1
}
