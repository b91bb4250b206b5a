package scope_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/typecode"
)

func TestCanonicalAlphaEquality(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall (T) (List T)))
		(alias B (forall (U) (List U)))
		(alias C (forall (T) (Option T)))
		(alias D (forall ((T :: *)) (List T)))
		(alias E (forall (T) (forall (U) (fn (T U) U))))
		(alias F (forall (X) (forall (Y) (fn (X Y) Y))))
	`)
	code := func(name string) typecode.Code {
		body := decls[name].(*ast.Alias).Body
		c, err := root.Normalize(body)
		if err != nil {
			t.Fatalf("Normalize(%s): %v", name, err)
		}
		return c
	}

	if code("A") != code("B") {
		t.Errorf("alpha-equivalent quantifiers must encode identically")
	}
	if code("A") == code("C") {
		t.Errorf("List and Option bodies must encode differently")
	}
	// A declared kind of * is the same binder as no declaration.
	if code("A") != code("D") {
		t.Errorf("forall (T :: *) must encode like forall T")
	}
	if code("E") != code("F") {
		t.Errorf("nested quantifiers must be alpha-invariant")
	}
}

func TestNormalizeScenarioListT(t *testing.T) {
	// Encoding forall T:*. List T, then decoding, yields a body of
	// Apply(Ref List, Var 0).
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall ((T :: *)) (List T)))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	term, next, err := typecode.Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if next != code.Len() {
		t.Errorf("decode consumed %d of %d words", next, code.Len())
	}

	_, listDecl, ok := root.ResolveTypeName("List")
	if !ok {
		t.Fatalf("List should resolve")
	}
	want := typecode.ForallTerm{
		Body: typecode.ApplyTerm{
			Fn:  typecode.RefTerm{ID: listDecl.ID()},
			Arg: typecode.VarTerm{Delta: 0, Slot: 0},
		},
	}
	if diff := cmp.Diff(typecode.Term(want), term); diff != "" {
		t.Errorf("decoded term mismatch (-want +got):\n%s", diff)
	}
}

func TestConstraintSortOrder(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall ((T Show Eq)) (fn (T) T)))
		(alias B (forall ((T Eq Show)) (fn (T) T)))
	`)
	codeA, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize(A): %v", err)
	}
	codeB, err := root.Normalize(decls["B"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize(B): %v", err)
	}
	if codeA != codeB {
		t.Errorf("{Show + Eq} and {Eq + Show} must produce identical codes")
	}
}

func TestMultiParamBlockSlots(t *testing.T) {
	// Two parameters of one block occupy distinct slots, so the order of
	// use is significant.
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall (T U) (tuple T U)))
		(alias B (forall (T U) (tuple U T)))
	`)
	codeA, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize(A): %v", err)
	}
	codeB, err := root.Normalize(decls["B"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize(B): %v", err)
	}
	if codeA == codeB {
		t.Errorf("(T, U) and (U, T) must encode differently")
	}
}

func TestDeBruijnFrames(t *testing.T) {
	// forall T. forall U. (T, U): the outer variable crosses one frame.
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall (T) (forall (U) (tuple T U))))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	term, _, err := typecode.Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	inner := term.(typecode.ForallTerm).Body.(typecode.ForallTerm).Body
	// tuple encodes as Apply Apply (Ref tuple/2) T U
	app := inner.(typecode.ApplyTerm)
	tVar := app.Fn.(typecode.ApplyTerm).Arg.(typecode.VarTerm)
	uVar := app.Arg.(typecode.VarTerm)
	if tVar.Delta != 1 || tVar.Slot != 0 {
		t.Errorf("outer variable = %d.%d, want 1.0", tVar.Delta, tVar.Slot)
	}
	if uVar.Delta != 0 || uVar.Slot != 0 {
		t.Errorf("inner variable = %d.%d, want 0.0", uVar.Delta, uVar.Slot)
	}
}

func TestTupleEncodesAsSyntheticApply(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (tuple Int Bool))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	words := code.Words()
	if typecode.Op(words[0]) != typecode.OpApply || typecode.Op(words[1]) != typecode.OpApply {
		t.Fatalf("tuple must open with Apply prefixes, got %v", words)
	}
	if typecode.Op(words[2]) != typecode.OpRef || words[3] != typecode.TupleRef(2) {
		t.Errorf("tuple constructor = %v, want Ref tuple/2", words[2:4])
	}
}

func TestHKTParamDescriptor(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall ((F :: (-> * *))) (F Int)))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	term, _, err := typecode.Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	forall := term.(typecode.ForallTerm)
	desc, ok := forall.Param.(typecode.HktDesc)
	if !ok {
		t.Fatalf("param descriptor = %#v, want HktDesc", forall.Param)
	}
	want := typecode.ArrowTerm{Left: typecode.StarTerm{}, Right: typecode.StarTerm{}}
	if desc.Kind != typecode.KindTerm(want) {
		t.Errorf("descriptor kind = %#v, want * -> *", desc.Kind)
	}
}

func TestConstraintDescriptorRoundTrip(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall ((T Show)) (fn (T) T)))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	term, _, err := typecode.Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	forall := term.(typecode.ForallTerm)
	desc, ok := forall.Param.(typecode.ConstraintDesc)
	if !ok {
		t.Fatalf("param descriptor = %#v, want ConstraintDesc", forall.Param)
	}
	_, showDecl, ok := root.ResolveTypeName("Show")
	if !ok {
		t.Fatalf("Show should resolve")
	}
	if len(desc.Impls) != 1 || desc.Impls[0] != typecode.Term(typecode.RefTerm{ID: showDecl.ID()}) {
		t.Errorf("constraint terms = %#v, want [Ref Show]", desc.Impls)
	}
}

func TestNormalizeMemoized(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall (T) (fn (T) (List T))))
	`)
	body := decls["A"].(*ast.Alias).Body
	first, err := root.Normalize(body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := root.Normalize(body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if first != second {
		t.Errorf("normalize results must be stable for the context lifetime")
	}
}

func TestRoundTripDecodesFully(t *testing.T) {
	repo, root := newRoot(t)
	decls := parseInto(t, repo, root, `
		(alias A (forall ((T Show) (F :: (-> * *))) (fn ((F T) (tuple T Int)) (F (List T)))))
	`)
	code, err := root.Normalize(decls["A"].(*ast.Alias).Body)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	_, next, err := typecode.Decode(code, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if next != code.Len() {
		t.Errorf("decode consumed %d of %d words", next, code.Len())
	}
}

func TestNormalizeUnboundName(t *testing.T) {
	repo, root := newRoot(t)
	orphan := ast.NewTypeName(repo, "Nowhere")
	if _, err := root.Normalize(orphan); err == nil {
		t.Errorf("unbound name should not normalize")
	}
}
