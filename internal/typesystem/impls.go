package typesystem

import (
	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/diag"
	"github.com/quench-lang/quench/internal/typecode"
)

// ImplIndex records which types implement which traits, keyed by the
// canonical codes of both. It is populated before checking begins and read
// by the unifier during constraint discharge.
type ImplIndex struct {
	byTrait map[typecode.Code]map[typecode.Code]*ast.Impl
}

func NewImplIndex() *ImplIndex {
	return &ImplIndex{byTrait: make(map[typecode.Code]map[typecode.Code]*ast.Impl)}
}

// Define registers an impl under its canonicalized (trait, type) keys.
// At most one impl may exist per pair.
func (ix *ImplIndex) Define(trait, typ typecode.Code, impl *ast.Impl) error {
	forTrait, ok := ix.byTrait[trait]
	if !ok {
		forTrait = make(map[typecode.Code]*ast.Impl)
		ix.byTrait[trait] = forTrait
	}
	if _, exists := forTrait[typ]; exists {
		return diag.Errorf(diag.OverlappingImpl, "duplicate impl of trait %x for type %x", string(trait), string(typ))
	}
	forTrait[typ] = impl
	return nil
}

// Lookup finds the impl for a (trait, type) pair.
func (ix *ImplIndex) Lookup(trait, typ typecode.Code) (*ast.Impl, bool) {
	forTrait, ok := ix.byTrait[trait]
	if !ok {
		return nil, false
	}
	impl, ok := forTrait[typ]
	return impl, ok
}

// Has reports whether the pair is present.
func (ix *ImplIndex) Has(trait, typ typecode.Code) bool {
	_, ok := ix.Lookup(trait, typ)
	return ok
}
