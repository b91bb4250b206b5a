package diag

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := Errorf(UnifyFail, "cannot unify %s with %s", "Int", "String")
	want := "unify failure: cannot unify Int with String"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestKindOf(t *testing.T) {
	err := Errorf(Redeclaration, "dup")
	if k, ok := KindOf(err); !ok || k != Redeclaration {
		t.Errorf("KindOf = %v, %v", k, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Errorf("plain errors carry no kind")
	}
	if !Is(err, Redeclaration) || Is(err, NotFound) {
		t.Errorf("Is misclassified the kind")
	}
	if Is(nil, Redeclaration) {
		t.Errorf("nil is no diagnostic")
	}
}

func TestKindNames(t *testing.T) {
	for _, k := range []Kind{
		Redeclaration, NotFound, KindMismatch, ArityMismatch, UnifyFail,
		UnresolvedHole, OverlappingImpl, InvalidOp, UnexpectedEnd, Overflow,
		InvariantViolated,
	} {
		if k.String() == "" || k.String() == "diag.Kind(0)" && k != Redeclaration {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}
