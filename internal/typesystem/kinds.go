package typesystem

import (
	"fmt"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/typecode"
)

// Kind represents the "type of a type".
// * (Star) is the kind of proper types (Int, Bool, (List Int)).
// * -> * is the kind of type constructors (List, Option).
type Kind interface {
	String() string
	Equal(Kind) bool
}

// KStar represents the kind of a value type (*).
type KStar struct{}

func (k KStar) String() string { return "*" }
func (k KStar) Equal(other Kind) bool {
	_, ok := other.(KStar)
	return ok
}

// KArrow represents a higher-kinded type (k1 -> k2).
type KArrow struct {
	Left  Kind
	Right Kind
}

func (k KArrow) String() string {
	return fmt.Sprintf("(%s -> %s)", k.Left.String(), k.Right.String())
}

func (k KArrow) Equal(other Kind) bool {
	o, ok := other.(KArrow)
	if !ok {
		return false
	}
	return k.Left.Equal(o.Left) && k.Right.Equal(o.Right)
}

var Star Kind = KStar{}

// MakeArrow builds an N-ary curried arrow.
// e.g. MakeArrow(Star, Star, Star) is * -> * -> *.
func MakeArrow(args ...Kind) Kind {
	if len(args) == 0 {
		return Star
	}
	if len(args) == 1 {
		return args[0]
	}
	return KArrow{Left: args[0], Right: MakeArrow(args[1:]...)}
}

// KindFromExpr converts a syntax-level kind annotation to a semantic kind.
func KindFromExpr(e ast.KindExpr) Kind {
	switch k := e.(type) {
	case *ast.KindStar:
		return Star
	case *ast.KindArrow:
		return KArrow{Left: KindFromExpr(k.Left), Right: KindFromExpr(k.Right)}
	default:
		return Star
	}
}

// KindWords emits the canonical instruction words for a kind, in the same
// alphabet the type encoder uses (Concrete / Hkt).
func KindWords(k Kind) []int {
	switch k := k.(type) {
	case KStar:
		return []int{int(typecode.OpConcrete)}
	case KArrow:
		words := []int{int(typecode.OpHkt)}
		words = append(words, KindWords(k.Left)...)
		words = append(words, KindWords(k.Right)...)
		return words
	default:
		return []int{int(typecode.OpConcrete)}
	}
}

// KindCode returns the canonical code of a kind. Kind codes are compared as
// byte strings wherever the checker needs kind equality.
func KindCode(k Kind) typecode.Code {
	code, err := typecode.Encode(KindWords(k))
	if err != nil {
		// Kind words are opcodes only; encoding cannot overflow.
		panic(err)
	}
	return code
}
