package typesystem_test

import (
	"testing"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typesystem"
)

func TestKindOf(t *testing.T) {
	root, decls := setup(t, `
		(data Wrap (params (F :: (-> * *))))
		(alias Ground Int)
		(alias Applied (List Int))
		(alias PartialApp (Map Int))
		(alias Ctor List)
		(alias Fn (fn (Int) Int))
		(alias Tup (tuple Int Int))
		(alias Quant (forall (T) (fn (T) T)))
	`)

	tests := []struct {
		name string
		want typesystem.Kind
	}{
		{"Ground", typesystem.Star},
		{"Applied", typesystem.Star},
		{"PartialApp", typesystem.MakeArrow(typesystem.Star, typesystem.Star)},
		{"Ctor", typesystem.MakeArrow(typesystem.Star, typesystem.Star)},
		{"Fn", typesystem.Star},
		{"Tup", typesystem.Star},
		{"Quant", typesystem.Star},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := typesystem.KindOf(aliasBody(t, decls, tt.name), root, nil)
			if err != nil {
				t.Fatalf("KindOf() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}

	// Wrap :: (* -> *) -> *
	wrap := decls["Wrap"].(*ast.Data)
	k, err := typesystem.DeclKind(wrap)
	if err != nil {
		t.Fatalf("DeclKind() error = %v", err)
	}
	want := typesystem.KArrow{
		Left:  typesystem.MakeArrow(typesystem.Star, typesystem.Star),
		Right: typesystem.Star,
	}
	if !k.Equal(want) {
		t.Errorf("DeclKind(Wrap) = %s, want %s", k, want)
	}
}

func TestApplyConcreteHeadIsKindMismatch(t *testing.T) {
	root, decls := setup(t, `
		(alias Bad (Int Int))
	`)
	_, err := typesystem.KindOf(aliasBody(t, decls, "Bad"), root, nil)
	if !diag.Is(err, diag.KindMismatch) {
		t.Errorf("KindOf(Int Int) = %v, want KindMismatch", err)
	}
}

func TestApplyComparesParameterAgainstArgument(t *testing.T) {
	// Wrap expects an argument of kind * -> *. Passing a * argument must
	// fail; passing List must succeed. The comparison is declared
	// parameter kind against actual argument kind, as canonical codes.
	root, decls := setup(t, `
		(data Wrap (params (F :: (-> * *))))
		(alias Bad (Wrap Int))
		(alias Good (Wrap List))
	`)

	_, err := typesystem.KindOf(aliasBody(t, decls, "Bad"), root, nil)
	if !diag.Is(err, diag.KindMismatch) {
		t.Errorf("Wrap Int = %v, want KindMismatch", err)
	}

	k, err := typesystem.KindOf(aliasBody(t, decls, "Good"), root, nil)
	if err != nil {
		t.Fatalf("Wrap List: %v", err)
	}
	if !k.Equal(typesystem.Star) {
		t.Errorf("kind(Wrap List) = %s, want *", k)
	}
}

func TestOverApplication(t *testing.T) {
	root, decls := setup(t, `
		(alias Bad (List Int Int))
	`)
	_, err := typesystem.KindOf(aliasBody(t, decls, "Bad"), root, nil)
	if !diag.Is(err, diag.KindMismatch) {
		t.Errorf("List Int Int = %v, want KindMismatch", err)
	}
}

func TestKindSoundness(t *testing.T) {
	// CheckType success implies KindOf is defined.
	root, decls := setup(t, `
		(alias A (List (Map Int String)))
		(alias B (forall ((F :: (-> * *)) T) (fn ((F T)) (F T))))
		(alias C (tuple (fn (Int) Int) (Option Bool)))
		(alias D (partial (h) (fn ((hole h)) (hole h))))
	`)
	for _, name := range []string{"A", "B", "C", "D"} {
		t.Run(name, func(t *testing.T) {
			body := aliasBody(t, decls, name)
			if err := typesystem.CheckType(body, root); err != nil {
				t.Fatalf("CheckType() = %v", err)
			}
			if _, err := typesystem.KindOf(body, root, nil); err != nil {
				t.Errorf("CheckType passed but KindOf failed: %v", err)
			}
		})
	}
}

func TestCheckTypeErrors(t *testing.T) {
	root, decls := setup(t, `
		(alias Unbound (List Missing))
		(alias NonConcreteTuple (tuple List Int))
		(alias NonConcreteParam (fn (List) Int))
	`)
	tests := []struct {
		name string
		want diag.Kind
	}{
		{"Unbound", diag.NotFound},
		{"NonConcreteTuple", diag.KindMismatch},
		{"NonConcreteParam", diag.KindMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typesystem.CheckType(aliasBody(t, decls, tt.name), root)
			if !diag.Is(err, tt.want) {
				t.Errorf("CheckType() = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestHoleKinds(t *testing.T) {
	root, decls := setup(t, `
		(alias H (partial (h) (hole h)))
	`)
	hole := aliasBody(t, decls, "H").(*ast.Partial).Holes[0]

	// Consistency-check mode treats an unfilled hole as *.
	k, err := typesystem.KindOf(hole, root, nil)
	if err != nil {
		t.Fatalf("KindOf(hole, nil holes) = %v", err)
	}
	if !k.Equal(typesystem.Star) {
		t.Errorf("unfilled hole kind = %s, want *", k)
	}

	// With a hole view, an unfilled hole has no kind.
	st := typesystem.NewState(root, root)
	if _, err := typesystem.KindOf(hole, root, st); err == nil {
		t.Errorf("unfilled hole with hole view should have no kind")
	}

	// A filled hole has the kind of its assignment.
	u := typesystem.NewUnifier(root.Impls())
	tInt := ast.NewTypeName(root.Repo(), "Int")
	if err := u.Unify(hole, tInt, st); err != nil {
		t.Fatalf("filling hole: %v", err)
	}
	k, err = typesystem.KindOf(hole, root, st)
	if err != nil {
		t.Fatalf("KindOf(filled hole) = %v", err)
	}
	if !k.Equal(typesystem.Star) {
		t.Errorf("filled hole kind = %s, want *", k)
	}
}
