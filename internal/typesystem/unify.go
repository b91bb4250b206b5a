package typesystem

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typecode"
)

// Capture is one recorded instantiation of a quantified parameter.
type Capture struct {
	Type ast.Type
	Res  Resolver
}

// ParamSlot tracks one unwrapped quantifier parameter during unification:
// the parameter itself, the resolver of the side it came from, and every
// instance captured for it so far.
type ParamSlot struct {
	Param    *ast.Param
	Res      Resolver
	Captured []Capture
}

// SideState is one side's parameter stack.
type SideState struct {
	Res   Resolver
	Slots []*ParamSlot
}

// Push puts a parameter in scope for unification on this side. The unifier
// does this while unwrapping quantifiers; callers use it to open a
// quantified type by hand.
func (s *SideState) Push(p *ast.Param) *ParamSlot {
	slot := &ParamSlot{Param: p, Res: s.Res}
	s.Slots = append(s.Slots, slot)
	return slot
}

// SlotOf finds the innermost slot for a parameter, if it is currently in
// scope for unification.
func (s *SideState) SlotOf(p *ast.Param) (*ParamSlot, bool) {
	for i := len(s.Slots) - 1; i >= 0; i-- {
		if s.Slots[i].Param == p {
			return s.Slots[i], true
		}
	}
	return nil, false
}

func (s *SideState) clone() *SideState {
	slots := make([]*ParamSlot, len(s.Slots))
	for i, slot := range s.Slots {
		captured := make([]Capture, len(slot.Captured))
		copy(captured, slot.Captured)
		slots[i] = &ParamSlot{Param: slot.Param, Res: slot.Res, Captured: captured}
	}
	return &SideState{Res: s.Res, Slots: slots}
}

// HoleBinding is the assignment of a hole. Two holes pointed at the same
// binding stay in step when it is filled.
type HoleBinding struct {
	Type ast.Type
	Res  Resolver
}

// State is the explicit unification environment threaded through the
// recursion: two parameter stacks and one shared hole-assignment map.
// Unification is not transactional; a caller that wants speculative
// unification snapshots the state itself.
type State struct {
	L, R  *SideState
	Holes map[*ast.Hole]*HoleBinding
}

func NewState(lres, rres Resolver) *State {
	return &State{
		L:     &SideState{Res: lres},
		R:     &SideState{Res: rres},
		Holes: make(map[*ast.Hole]*HoleBinding),
	}
}

// Swap exchanges the two sides for contravariant recursion into function
// parameters. The hole map is shared, so assignments made under the swapped
// view are visible everywhere.
func (s *State) Swap() *State {
	return &State{L: s.R, R: s.L, Holes: s.Holes}
}

// Snapshot deep-copies the environment so a caller can restore it after a
// failed speculative unification. Hole aliasing is preserved.
func (s *State) Snapshot() *State {
	bindings := make(map[*HoleBinding]*HoleBinding)
	holes := make(map[*ast.Hole]*HoleBinding, len(s.Holes))
	for h, b := range s.Holes {
		nb, ok := bindings[b]
		if !ok {
			nb = &HoleBinding{Type: b.Type, Res: b.Res}
			bindings[b] = nb
		}
		holes[h] = nb
	}
	return &State{L: s.L.clone(), R: s.R.clone(), Holes: holes}
}

// Restore copies a snapshot back into this state in place, so views created
// by Swap observe the restored environment too.
func (s *State) Restore(snap *State) {
	s.L.Slots = snap.L.clone().Slots
	s.R.Slots = snap.R.clone().Slots
	for h := range s.Holes {
		delete(s.Holes, h)
	}
	for h, b := range snap.Holes {
		s.Holes[h] = b
	}
}

// HoleAssignment reports the type a hole has been filled with, if any.
// Implements HoleView for the kind checker.
func (s *State) HoleAssignment(h *ast.Hole) (ast.Type, bool) {
	if b, ok := s.Holes[h]; ok && b.Type != nil {
		return b.Type, true
	}
	return nil, false
}

// Instances returns every instance captured for a parameter, on either
// side.
func (s *State) Instances(p *ast.Param) []ast.Type {
	for _, side := range []*SideState{s.L, s.R} {
		if slot, ok := side.SlotOf(p); ok {
			types := make([]ast.Type, len(slot.Captured))
			for i, c := range slot.Captured {
				types[i] = c.Type
			}
			return types
		}
	}
	return nil
}

// Unifier unifies two type expressions under a State, discharging trait
// constraints against the impl index.
type Unifier struct {
	Impls *ImplIndex
}

func NewUnifier(impls *ImplIndex) *Unifier {
	if impls == nil {
		impls = NewImplIndex()
	}
	return &Unifier{Impls: impls}
}

// Unify attempts to unify lhs with rhs. On failure the returned error
// explains why and the state is left as the recursion produced it.
func (u *Unifier) Unify(lhs, rhs ast.Type, st *State) error {
	return u.unify(lhs, rhs, st)
}

// Unifies is the boolean form of Unify.
func (u *Unifier) Unifies(lhs, rhs ast.Type, st *State) bool {
	return u.unify(lhs, rhs, st) == nil
}

func (u *Unifier) unify(l, r ast.Type, st *State) error {
	l = peelPartial(l)
	r = peelPartial(r)

	// Same parameter on both sides needs no instantiation.
	if lp, ok := paramOf(l, st.L); ok {
		if rp, ok2 := paramOf(r, st.R); ok2 && lp == rp {
			return nil
		}
	}

	// Rule 1: a type variable referring to a parameter in scope for
	// unification instantiates that parameter with the other side.
	if p, ok := paramOf(l, st.L); ok {
		if slot, inScope := st.L.SlotOf(p); inScope {
			return u.instantiate(slot, r, st.R, st)
		}
	}
	if p, ok := paramOf(r, st.R); ok {
		if slot, inScope := st.R.SlotOf(p); inScope {
			return u.instantiate(slot, l, st.L, st)
		}
	}

	// Rule 2 (kinds are not types) cannot arise: kind expressions are a
	// separate node class, rejected by the default case below.

	// Rule 3: quantifiers. Unwrap both sides fully and extend the
	// environment. Non-function bodies are existentials and unify only by
	// node identity.
	lParams, lBody := unwrapQuantifiers(l)
	rParams, rBody := unwrapQuantifiers(r)
	if len(lParams) > 0 || len(rParams) > 0 {
		for _, p := range lParams {
			st.L.Push(p)
		}
		for _, p := range rParams {
			st.R.Push(p)
		}
		lFun, lIsFun := funWithoutTParams(lBody)
		rFun, rIsFun := funWithoutTParams(rBody)
		if !lIsFun || !rIsFun {
			if lBody == rBody {
				return nil
			}
			return diag.Errorf(diag.UnifyFail, "existential types unify only with themselves")
		}
		return u.unifyFun(lFun, rFun, st)
	}

	// Rule 4: holes.
	lHole, lIsHole := l.(*ast.Hole)
	rHole, rIsHole := r.(*ast.Hole)
	switch {
	case lIsHole && rIsHole:
		if lHole == rHole {
			return nil
		}
		lBind, lok := st.Holes[lHole]
		rBind, rok := st.Holes[rHole]
		switch {
		case !lok && !rok:
			return diag.Errorf(diag.UnresolvedHole, "holes %s and %s are both unassigned", lHole.Name, rHole.Name)
		case lok && rok:
			return u.unify(lBind.Type, rBind.Type, st)
		case lok:
			st.Holes[rHole] = lBind
			return nil
		default:
			st.Holes[lHole] = rBind
			return nil
		}
	case lIsHole:
		if b, ok := st.Holes[lHole]; ok {
			return u.unify(b.Type, r, st)
		}
		st.Holes[lHole] = &HoleBinding{Type: r, Res: st.R.Res}
		return nil
	case rIsHole:
		if b, ok := st.Holes[rHole]; ok {
			return u.unify(l, b.Type, st)
		}
		st.Holes[rHole] = &HoleBinding{Type: l, Res: st.L.Res}
		return nil
	}

	// Rules 5-9: structural cases; differing head operators fail.
	switch lt := l.(type) {
	case *ast.Apply:
		rt, ok := r.(*ast.Apply)
		if !ok {
			return errHeadMismatch(l, r)
		}
		if err := u.unify(lt.Head, rt.Head, st); err != nil {
			return err
		}
		if len(lt.Args) != len(rt.Args) {
			return diag.Errorf(diag.ArityMismatch, "type application argument count mismatch: %d vs %d", len(lt.Args), len(rt.Args))
		}
		for i := range lt.Args {
			if err := u.unify(lt.Args[i], rt.Args[i], st); err != nil {
				return err
			}
		}
		return nil

	case *ast.TupleType:
		rt, ok := r.(*ast.TupleType)
		if !ok {
			return errHeadMismatch(l, r)
		}
		if len(lt.Elems) != len(rt.Elems) {
			return diag.Errorf(diag.ArityMismatch, "tuple length mismatch: %d vs %d", len(lt.Elems), len(rt.Elems))
		}
		for i := range lt.Elems {
			if err := u.unify(lt.Elems[i], rt.Elems[i], st); err != nil {
				return err
			}
		}
		return nil

	case *ast.FunType:
		rt, ok := r.(*ast.FunType)
		if !ok {
			return errHeadMismatch(l, r)
		}
		return u.unifyFun(lt, rt, st)

	case *ast.TypeName:
		rt, ok := r.(*ast.TypeName)
		if !ok {
			return errHeadMismatch(l, r)
		}
		lDef, lok := st.L.Res.Resolve(lt)
		if !lok {
			return diag.Errorf(diag.NotFound, "unbound type name %q", lt.Name)
		}
		rDef, rok := st.R.Res.Resolve(rt)
		if !rok {
			return diag.Errorf(diag.NotFound, "unbound type name %q", rt.Name)
		}
		if lDef.ID() != rDef.ID() {
			return diag.Errorf(diag.UnifyFail, "type constant mismatch: %s vs %s", lt.Name, rt.Name)
		}
		return nil

	default:
		return diag.Errorf(diag.InvariantViolated, "cannot unify node %T", l)
	}
}

// unifyFun unifies two function types: parameters pairwise under the
// swapped state (contravariance), returns under the original state
// (covariance).
func (u *Unifier) unifyFun(lt, rt *ast.FunType, st *State) error {
	if len(lt.Params) != len(rt.Params) {
		return diag.Errorf(diag.ArityMismatch, "function parameter count mismatch: %d vs %d", len(lt.Params), len(rt.Params))
	}
	swapped := st.Swap()
	for i := range lt.Params {
		if err := u.unify(rt.Params[i], lt.Params[i], swapped); err != nil {
			return err
		}
	}
	return u.unify(lt.Ret, rt.Ret, st)
}

// instantiate binds a quantified parameter to a candidate type from the
// other side: constraints are discharged against the impl index, HKT
// parameters compare declared and candidate kind codes, and the candidate
// must unify with every instance captured before it.
func (u *Unifier) instantiate(slot *ParamSlot, cand ast.Type, candSide *SideState, st *State) error {
	cand = peelPartial(cand)
	p := slot.Param
	candParam, candIsParam := paramOf(cand, candSide)

	// The parameter unifying with its own occurrence is a no-op.
	if candIsParam && candParam == p {
		return nil
	}

	if p.Kind != nil {
		declared := KindFromExpr(p.Kind)
		candKind, err := KindOf(cand, candSide.Res, st)
		if err != nil {
			return err
		}
		if KindCode(declared) != KindCode(candKind) {
			return diag.Errorf(diag.UnifyFail, "cannot instantiate %s of kind %s with a type of kind %s", p.Name, declared, candKind)
		}
	} else if len(p.Constraints) > 0 {
		for _, c := range p.Constraints {
			traitCode, err := slot.Res.Normalize(c.Trait)
			if err != nil {
				return err
			}
			// A parameter candidate discharges the constraint by carrying
			// the same trait itself; a concrete candidate must appear in
			// the impl index.
			if candIsParam {
				if !paramCarriesTrait(candParam, traitCode, candSide.Res) {
					return diag.Errorf(diag.UnifyFail, "constraint not discharged: parameter %s does not carry %s", candParam.Name, c.Trait.Name)
				}
				continue
			}
			typeCode, err := candSide.Res.Normalize(cand)
			if err != nil {
				return err
			}
			if !u.Impls.Has(traitCode, typeCode) {
				return diag.Errorf(diag.UnifyFail, "constraint not discharged: no impl of %s for the candidate of %s", c.Trait.Name, p.Name)
			}
		}
	}

	same := &State{L: candSide, R: candSide, Holes: st.Holes}
	for _, prev := range slot.Captured {
		if err := u.unify(prev.Type, cand, same); err != nil {
			return err
		}
	}
	slot.Captured = append(slot.Captured, Capture{Type: cand, Res: candSide.Res})
	return nil
}

// paramCarriesTrait reports whether a parameter's own constraint list
// names the trait, by canonical code.
func paramCarriesTrait(p *ast.Param, traitCode typecode.Code, res Resolver) bool {
	for _, c := range p.Constraints {
		code, err := res.Normalize(c.Trait)
		if err != nil {
			continue
		}
		if code == traitCode {
			return true
		}
	}
	return false
}

// paramOf reports the parameter a type-name occurrence resolves to.
func paramOf(t ast.Type, side *SideState) (*ast.Param, bool) {
	name, ok := t.(*ast.TypeName)
	if !ok {
		return nil, false
	}
	def, ok := side.Res.Resolve(name)
	if !ok {
		return nil, false
	}
	p, ok := def.(*ast.Param)
	return p, ok
}

// unwrapQuantifiers peels nested Forall nodes, and the generic parameters a
// function type carries, exposing the combined parameter list and the inner
// body.
func unwrapQuantifiers(t ast.Type) ([]*ast.Param, ast.Type) {
	var params []*ast.Param
	for {
		switch typ := t.(type) {
		case *ast.Forall:
			params = append(params, typ.Params...)
			t = peelPartial(typ.Body)
		case *ast.FunType:
			if len(typ.TParams) > 0 {
				params = append(params, typ.TParams...)
			}
			return params, t
		default:
			return params, t
		}
	}
}

// funWithoutTParams views a function body: its own generic parameters have
// already been unwrapped into the environment.
func funWithoutTParams(t ast.Type) (*ast.FunType, bool) {
	f, ok := t.(*ast.FunType)
	return f, ok
}

func peelPartial(t ast.Type) ast.Type {
	for {
		p, ok := t.(*ast.Partial)
		if !ok {
			return t
		}
		t = p.Inner
	}
}

func errHeadMismatch(l, r ast.Type) error {
	return diag.Errorf(diag.UnifyFail, "cannot unify %T with %T", l, r)
}
