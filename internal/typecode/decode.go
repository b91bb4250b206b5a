package typecode

import (
	"github.com/quench-lang/quench/internal/diag"
)

// Term is a decoded, nameless type term. Decoding mirrors the encoding
// grammar, so Decode(Encode(compile(T))) yields T's alpha-normal form.
type Term interface {
	termNode()
}

// ParamDesc describes the parameter of a decoded Forall: a kind descriptor
// for an HKT parameter, a constraint list for a constrained parameter, or
// nil for an unconstrained concrete parameter.
type ParamDesc interface {
	paramDesc()
}

// KindTerm is a decoded kind: star or arrow.
type KindTerm interface {
	kindTerm()
}

type StarTerm struct{}

func (StarTerm) kindTerm() {}

type ArrowTerm struct {
	Left  KindTerm
	Right KindTerm
}

func (ArrowTerm) kindTerm() {}

// HktDesc marks a higher-kinded parameter with its declared kind.
type HktDesc struct {
	Kind KindTerm
}

func (HktDesc) paramDesc() {}

// ConstraintDesc carries the constraint terms of a constrained parameter,
// in canonical (ascending sub-code) order.
type ConstraintDesc struct {
	Impls []Term
}

func (ConstraintDesc) paramDesc() {}

type ForallTerm struct {
	Param ParamDesc // nil for an unconstrained concrete parameter
	Body  Term
}

func (ForallTerm) termNode() {}

type HoleTerm struct {
	ID int
}

func (HoleTerm) termNode() {}

type RefTerm struct {
	ID int
}

func (RefTerm) termNode() {}

type VarTerm struct {
	Delta int
	Slot  int
}

func (VarTerm) termNode() {}

type FunTerm struct {
	Param Term
	Ret   Term
}

func (FunTerm) termNode() {}

type ApplyTerm struct {
	Fn  Term
	Arg Term
}

func (ApplyTerm) termNode() {}

// Decode reads one type term starting at the given word offset and returns
// it together with the offset of the first word after it.
func Decode(c Code, offset int) (Term, int, error) {
	d := &decoder{code: c}
	term, next, err := d.expr(offset)
	if err != nil {
		return nil, 0, err
	}
	return term, next, nil
}

type decoder struct {
	code Code
}

func (d *decoder) word(offset int) (int, error) {
	return d.code.Word(offset)
}

// peekOp looks at the opcode at offset without consuming it. Returns false
// at end of code.
func (d *decoder) peekOp(offset int) (Op, bool) {
	w, err := d.word(offset)
	if err != nil {
		return 0, false
	}
	return Op(w), true
}

func (d *decoder) expr(offset int) (Term, int, error) {
	w, err := d.word(offset)
	if err != nil {
		return nil, 0, err
	}
	switch Op(w) {
	case OpForall:
		return d.forall(offset + 1)
	case OpHole:
		id, err := d.word(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		return HoleTerm{ID: id}, offset + 2, nil
	case OpRef:
		id, err := d.word(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		return RefTerm{ID: id}, offset + 2, nil
	case OpVar:
		operand, err := d.word(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		delta, slot := UnpackVar(operand)
		return VarTerm{Delta: delta, Slot: slot}, offset + 2, nil
	case OpFun:
		param, next, err := d.expr(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		ret, next, err := d.expr(next)
		if err != nil {
			return nil, 0, err
		}
		return FunTerm{Param: param, Ret: ret}, next, nil
	case OpApply:
		fn, next, err := d.expr(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		arg, next, err := d.expr(next)
		if err != nil {
			return nil, 0, err
		}
		return ApplyTerm{Fn: fn, Arg: arg}, next, nil
	case OpConcrete, OpHkt, OpImpl:
		return nil, 0, diag.Errorf(diag.InvalidOp, "%s cannot start a type expression at offset %d", Op(w), offset)
	default:
		return nil, 0, diag.Errorf(diag.InvalidOp, "unknown opcode 0x%02x at offset %d", w, offset)
	}
}

// forall decodes the optional parameter descriptor, then the body. The
// descriptor ops (Concrete, Hkt, Impl) never start a type expression, so one
// word of lookahead disambiguates.
func (d *decoder) forall(offset int) (Term, int, error) {
	op, ok := d.peekOp(offset)
	if !ok {
		return nil, 0, diag.Errorf(diag.UnexpectedEnd, "truncated quantifier at offset %d", offset)
	}

	var param ParamDesc
	switch op {
	case OpConcrete, OpHkt:
		kind, next, err := d.kind(offset)
		if err != nil {
			return nil, 0, err
		}
		param = HktDesc{Kind: kind}
		offset = next
	case OpImpl:
		var impls []Term
		for {
			op, ok := d.peekOp(offset)
			if !ok || op != OpImpl {
				break
			}
			impl, next, err := d.expr(offset + 1)
			if err != nil {
				return nil, 0, err
			}
			impls = append(impls, impl)
			offset = next
		}
		param = ConstraintDesc{Impls: impls}
	}

	body, next, err := d.expr(offset)
	if err != nil {
		return nil, 0, err
	}
	return ForallTerm{Param: param, Body: body}, next, nil
}

func (d *decoder) kind(offset int) (KindTerm, int, error) {
	w, err := d.word(offset)
	if err != nil {
		return nil, 0, err
	}
	switch Op(w) {
	case OpConcrete:
		return StarTerm{}, offset + 1, nil
	case OpHkt:
		left, next, err := d.kind(offset + 1)
		if err != nil {
			return nil, 0, err
		}
		right, next, err := d.kind(next)
		if err != nil {
			return nil, 0, err
		}
		return ArrowTerm{Left: left, Right: right}, next, nil
	default:
		return nil, 0, diag.Errorf(diag.InvalidOp, "expected kind opcode at offset %d, got 0x%02x", offset, w)
	}
}
