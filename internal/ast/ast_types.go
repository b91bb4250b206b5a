package ast

// --- Type System Nodes ---

// Type represents a type expression in the AST.
// E.g. Int, (List T), (fn (T) T), (forall ((T Show)) T), (tuple Int Bool).
type Type interface {
	Node
	typeNode()
}

// KindExpr is a syntax-level kind annotation: * or (-> k k).
// The semantic kind algebra lives in the typesystem package.
type KindExpr interface {
	Node
	kindNode()
}

// KindStar is the kind of proper types, written *.
type KindStar struct {
	node
}

func NewKindStar(r *Repository) *KindStar {
	return &KindStar{node: r.newNode()}
}

func (k *KindStar) kindNode() {}

// KindArrow is a kind arrow (-> k k), the kind of a type constructor.
type KindArrow struct {
	node
	Left  KindExpr
	Right KindExpr
}

func NewKindArrow(r *Repository, left, right KindExpr) *KindArrow {
	k := &KindArrow{node: r.newNode(), Left: left, Right: right}
	Attach(k, left, right)
	return k
}

func (k *KindArrow) kindNode() {}

// TypeName is a textual type occurrence: a type-parameter use or a reference
// to a top-level entity. Resolution to the defining entity happens in the
// scope tree and is cached there.
type TypeName struct {
	node
	Name string
}

func NewTypeName(r *Repository, name string) *TypeName {
	return &TypeName{node: r.newNode(), Name: name}
}

func (t *TypeName) typeNode() {}

// ConstraintRef is one trait constraint on a parameter, e.g. (T Show) or
// (T (Convert U)). Trait resolves to a Trait entity; Args are the extra
// trait arguments beyond the constrained parameter itself.
type ConstraintRef struct {
	node
	Trait *TypeName
	Args  []Type
}

func NewConstraintRef(r *Repository, trait *TypeName, args []Type) *ConstraintRef {
	c := &ConstraintRef{node: r.newNode(), Trait: trait, Args: args}
	Attach(c, trait)
	for _, a := range args {
		Attach(c, a)
	}
	return c
}

// Param is a type parameter. Exactly one of three shapes:
// unconstrained concrete (Kind == nil, no Constraints), higher-kinded
// (Kind != nil), or constrained concrete (Constraints non-empty).
// Constraints are only placed on concrete-kinded parameters.
type Param struct {
	node
	Name        string
	Kind        KindExpr
	Constraints []*ConstraintRef
}

func NewParam(r *Repository, name string, kind KindExpr, constraints []*ConstraintRef) *Param {
	p := &Param{node: r.newNode(), Name: name, Kind: kind, Constraints: constraints}
	Attach(p, kind)
	for _, c := range constraints {
		Attach(p, c)
	}
	return p
}

func (p *Param) declNode()        {}
func (p *Param) DeclName() string { return p.Name }

// Forall is a universal quantifier over one block of parameters.
type Forall struct {
	node
	Params []*Param
	Body   Type
}

func NewForall(r *Repository, params []*Param, body Type) *Forall {
	f := &Forall{node: r.newNode(), Params: params, Body: body}
	for _, p := range params {
		Attach(f, p)
	}
	Attach(f, body)
	return f
}

func (t *Forall) typeNode() {}

// Apply is a type application: head applied to one or more arguments.
type Apply struct {
	node
	Head Type
	Args []Type
}

func NewApply(r *Repository, head Type, args []Type) *Apply {
	a := &Apply{node: r.newNode(), Head: head, Args: args}
	Attach(a, head)
	for _, arg := range args {
		Attach(a, arg)
	}
	return a
}

func (t *Apply) typeNode() {}

// TupleType is a tuple of element types.
type TupleType struct {
	node
	Elems []Type
}

func NewTupleType(r *Repository, elems []Type) *TupleType {
	t := &TupleType{node: r.newNode(), Elems: elems}
	for _, e := range elems {
		Attach(t, e)
	}
	return t
}

func (t *TupleType) typeNode() {}

// FunType is a function type. TParams are the function's own generic
// parameters; the unifier unwraps them when the function is applied.
type FunType struct {
	node
	TParams []*Param
	Params  []Type
	Ret     Type
}

func NewFunType(r *Repository, tparams []*Param, params []Type, ret Type) *FunType {
	f := &FunType{node: r.newNode(), TParams: tparams, Params: params, Ret: ret}
	for _, p := range tparams {
		Attach(f, p)
	}
	for _, p := range params {
		Attach(f, p)
	}
	Attach(f, ret)
	return f
}

func (t *FunType) typeNode() {}

// Hole is an unknown type to be inferred. Hole ids are unique only within
// the enclosing Partial; a Hole outside a Partial is ill-formed. The same
// *Hole node is shared between the Partial's hole list and its occurrences
// in the inner type.
type Hole struct {
	node
	HoleID int
	Name   string
}

func NewHole(r *Repository, holeID int, name string) *Hole {
	return &Hole{node: r.newNode(), HoleID: holeID, Name: name}
}

func (t *Hole) typeNode() {}

// Partial is a scope that introduces holes, as opposed to parameters.
type Partial struct {
	node
	Holes []*Hole
	Inner Type
}

func NewPartial(r *Repository, holes []*Hole, inner Type) *Partial {
	p := &Partial{node: r.newNode(), Holes: holes, Inner: inner}
	for _, h := range holes {
		Attach(p, h)
	}
	Attach(p, inner)
	return p
}

func (t *Partial) typeNode() {}

// --- Type-level declarations ---

// Alias is a named type abbreviation with optional parameters.
type Alias struct {
	node
	Name   string
	Params []*Param
	Body   Type
}

func NewAlias(r *Repository, name string, params []*Param, body Type) *Alias {
	a := &Alias{node: r.newNode(), Name: name, Params: params, Body: body}
	for _, p := range params {
		Attach(a, p)
	}
	Attach(a, body)
	return a
}

func (d *Alias) declNode()        {}
func (d *Alias) DeclName() string { return d.Name }

// Constructor is one variant of a Data declaration.
type Constructor struct {
	node
	Name   string
	Fields []Type
}

func NewConstructor(r *Repository, name string, fields []Type) *Constructor {
	c := &Constructor{node: r.newNode(), Name: name, Fields: fields}
	for _, f := range fields {
		Attach(c, f)
	}
	return c
}

func (d *Constructor) declNode()        {}
func (d *Constructor) DeclName() string { return d.Name }

// Data is an algebraic datatype declaration.
type Data struct {
	node
	Name   string
	Params []*Param
	Ctors  []*Constructor
}

func NewData(r *Repository, name string, params []*Param, ctors []*Constructor) *Data {
	d := &Data{node: r.newNode(), Name: name, Params: params, Ctors: ctors}
	for _, p := range params {
		Attach(d, p)
	}
	for _, c := range ctors {
		Attach(d, c)
	}
	return d
}

func (d *Data) declNode()        {}
func (d *Data) DeclName() string { return d.Name }

// Method is one trait method signature.
type Method struct {
	node
	Name string
	Type Type
}

func NewMethod(r *Repository, name string, typ Type) *Method {
	m := &Method{node: r.newNode(), Name: name, Type: typ}
	Attach(m, typ)
	return m
}

// Trait is a trait (type-class) declaration.
type Trait struct {
	node
	Name    string
	Supers  []*TypeName
	Params  []*Param
	Assoc   []*Param
	Methods []*Method
}

func NewTrait(r *Repository, name string, supers []*TypeName, params, assoc []*Param, methods []*Method) *Trait {
	t := &Trait{node: r.newNode(), Name: name, Supers: supers, Params: params, Assoc: assoc, Methods: methods}
	for _, s := range supers {
		Attach(t, s)
	}
	for _, p := range params {
		Attach(t, p)
	}
	for _, p := range assoc {
		Attach(t, p)
	}
	for _, m := range methods {
		Attach(t, m)
	}
	return t
}

func (d *Trait) declNode()        {}
func (d *Trait) DeclName() string { return d.Name }

// Impl declares that Target implements Trait (with optional extra trait
// arguments).
type Impl struct {
	node
	Trait     *TypeName
	TraitArgs []Type
	Target    Type
}

func NewImpl(r *Repository, trait *TypeName, traitArgs []Type, target Type) *Impl {
	i := &Impl{node: r.newNode(), Trait: trait, TraitArgs: traitArgs, Target: target}
	Attach(i, trait)
	for _, a := range traitArgs {
		Attach(i, a)
	}
	Attach(i, target)
	return i
}

func (d *Impl) declNode() {}

// Impls are anonymous; DeclName returns the trait name for messages.
func (d *Impl) DeclName() string {
	if d.Trait != nil {
		return d.Trait.Name
	}
	return ""
}

// IsScopeNode reports whether n introduces a lexical scope of its own.
func IsScopeNode(n Node) bool {
	switch t := n.(type) {
	case *Forall, *Alias, *Data, *Trait, *Partial, *Def, *Impl:
		return true
	case *FunType:
		return len(t.TParams) > 0
	}
	return false
}

// IntroducesTypeParams reports whether the scope node binds type parameters
// (and therefore increments the De Bruijn depth).
func IntroducesTypeParams(n Node) bool {
	switch t := n.(type) {
	case *Forall:
		return len(t.Params) > 0
	case *Alias:
		return len(t.Params) > 0
	case *Data:
		return len(t.Params) > 0
	case *Trait:
		return len(t.Params) > 0 || len(t.Assoc) > 0
	case *FunType:
		return len(t.TParams) > 0
	}
	return false
}

// ScopeParams returns the type parameters a scope node binds, in declaration
// order (trait associated params follow the main params).
func ScopeParams(n Node) []*Param {
	switch t := n.(type) {
	case *Forall:
		return t.Params
	case *Alias:
		return t.Params
	case *Data:
		return t.Params
	case *Trait:
		if len(t.Assoc) == 0 {
			return t.Params
		}
		params := make([]*Param, 0, len(t.Params)+len(t.Assoc))
		params = append(params, t.Params...)
		params = append(params, t.Assoc...)
		return params
	case *FunType:
		return t.TParams
	}
	return nil
}
