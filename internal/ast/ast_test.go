package ast

import "testing"

func TestRepositoryIDsAreMonotonic(t *testing.T) {
	repo := NewRepository()
	a := NewTypeName(repo, "A")
	b := NewTypeName(repo, "B")
	if a.ID() >= b.ID() {
		t.Errorf("ids must increase: %d, %d", a.ID(), b.ID())
	}
	if repo.NextID() != b.ID()+1 {
		t.Errorf("NextID = %d, want %d", repo.NextID(), b.ID()+1)
	}
}

func TestFirstInsertionWinsParent(t *testing.T) {
	repo := NewRepository()
	elem := NewTypeName(repo, "Int")
	first := NewTupleType(repo, []Type{elem})
	second := NewTupleType(repo, []Type{elem})

	if elem.Parent() != Node(first) {
		t.Errorf("parent should be the first enclosing node")
	}
	if second.Parent() != nil {
		t.Errorf("fresh node has no parent")
	}
}

func TestScopeNodeClassification(t *testing.T) {
	repo := NewRepository()
	param := NewParam(repo, "T", nil, nil)
	forall := NewForall(repo, []*Param{param}, NewTypeName(repo, "T"))
	plainFun := NewFunType(repo, nil, []Type{NewTypeName(repo, "Int")}, NewTypeName(repo, "Int"))
	genFun := NewFunType(repo, []*Param{NewParam(repo, "U", nil, nil)}, nil, NewTypeName(repo, "U"))
	hole := NewHole(repo, 0, "h")
	partial := NewPartial(repo, []*Hole{hole}, hole)

	tests := []struct {
		name       string
		node       Node
		scope      bool
		introduces bool
	}{
		{"forall", forall, true, true},
		{"plain fun", plainFun, false, false},
		{"generic fun", genFun, true, true},
		{"partial", partial, true, false},
		{"type name", NewTypeName(repo, "X"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsScopeNode(tt.node); got != tt.scope {
				t.Errorf("IsScopeNode = %v, want %v", got, tt.scope)
			}
			if got := IntroducesTypeParams(tt.node); got != tt.introduces {
				t.Errorf("IntroducesTypeParams = %v, want %v", got, tt.introduces)
			}
		})
	}
}

func TestScopeParamsOrder(t *testing.T) {
	repo := NewRepository()
	p1 := NewParam(repo, "A", nil, nil)
	p2 := NewParam(repo, "B", nil, nil)
	assoc := NewParam(repo, "E", nil, nil)
	trait := NewTrait(repo, "Collect", nil, []*Param{p1, p2}, []*Param{assoc}, nil)

	params := ScopeParams(trait)
	if len(params) != 3 || params[0] != p1 || params[1] != p2 || params[2] != assoc {
		t.Errorf("ScopeParams order wrong: %v", params)
	}
}
