package parser

import (
	"strconv"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/token"
)

func (p *Parser) lowerDecl(form sexp) (ast.Decl, error) {
	head, l, ok := headSymbol(form)
	if !ok {
		return nil, errAt(form.pos(), "expected a declaration form")
	}
	switch head {
	case "alias":
		return p.lowerAlias(l)
	case "data":
		return p.lowerData(l)
	case "trait":
		return p.lowerTrait(l)
	case "impl":
		return p.lowerImpl(l)
	case "def":
		return p.lowerDef(l)
	default:
		return nil, errAt(form.pos(), "unknown declaration %q", head)
	}
}

// (alias Name [(params P...)] T)
func (p *Parser) lowerAlias(l *list) (ast.Decl, error) {
	if len(l.items) < 3 {
		return nil, errAt(l.pos(), "alias needs a name and a body")
	}
	name, _, ok := symbolOf(l.items[1])
	if !ok {
		return nil, errAt(l.items[1].pos(), "alias name must be a symbol")
	}
	rest := l.items[2:]
	params, rest, err := p.optSection(rest, "params")
	if err != nil {
		return nil, err
	}
	if len(rest) != 1 {
		return nil, errAt(l.pos(), "alias %s needs exactly one body type", name)
	}
	body, err := p.lowerType(rest[0])
	if err != nil {
		return nil, err
	}
	return ast.NewAlias(p.repo, name, params, body), nil
}

// (data Name [(params P...)] (ctor C T...)...)
func (p *Parser) lowerData(l *list) (ast.Decl, error) {
	if len(l.items) < 2 {
		return nil, errAt(l.pos(), "data needs a name")
	}
	name, _, ok := symbolOf(l.items[1])
	if !ok {
		return nil, errAt(l.items[1].pos(), "data name must be a symbol")
	}
	rest := l.items[2:]
	params, rest, err := p.optSection(rest, "params")
	if err != nil {
		return nil, err
	}
	var ctors []*ast.Constructor
	for _, item := range rest {
		head, cl, ok := headSymbol(item)
		if !ok || head != "ctor" {
			return nil, errAt(item.pos(), "expected (ctor Name Type...)")
		}
		if len(cl.items) < 2 {
			return nil, errAt(cl.pos(), "ctor needs a name")
		}
		cname, _, ok := symbolOf(cl.items[1])
		if !ok {
			return nil, errAt(cl.items[1].pos(), "ctor name must be a symbol")
		}
		fields := make([]ast.Type, 0, len(cl.items)-2)
		for _, f := range cl.items[2:] {
			ft, err := p.lowerType(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, ft)
		}
		ctors = append(ctors, ast.NewConstructor(p.repo, cname, fields))
	}
	return ast.NewData(p.repo, name, params, ctors), nil
}

// (trait Name [(supers S...)] [(params P...)] [(assoc P...)] (method m T)...)
func (p *Parser) lowerTrait(l *list) (ast.Decl, error) {
	if len(l.items) < 2 {
		return nil, errAt(l.pos(), "trait needs a name")
	}
	name, _, ok := symbolOf(l.items[1])
	if !ok {
		return nil, errAt(l.items[1].pos(), "trait name must be a symbol")
	}
	rest := l.items[2:]

	var supers []*ast.TypeName
	if sl, ok := firstSection(rest, "supers"); ok {
		for _, s := range sl.items[1:] {
			sname, _, ok := symbolOf(s)
			if !ok {
				return nil, errAt(s.pos(), "super-trait must be a symbol")
			}
			supers = append(supers, ast.NewTypeName(p.repo, sname))
		}
		rest = rest[1:]
	}

	params, rest, err := p.optSection(rest, "params")
	if err != nil {
		return nil, err
	}
	assoc, rest, err := p.optSection(rest, "assoc")
	if err != nil {
		return nil, err
	}

	var methods []*ast.Method
	for _, item := range rest {
		head, ml, ok := headSymbol(item)
		if !ok || head != "method" {
			return nil, errAt(item.pos(), "expected (method name Type)")
		}
		if len(ml.items) != 3 {
			return nil, errAt(ml.pos(), "method needs a name and a type")
		}
		mname, _, ok := symbolOf(ml.items[1])
		if !ok {
			return nil, errAt(ml.items[1].pos(), "method name must be a symbol")
		}
		mtype, err := p.lowerType(ml.items[2])
		if err != nil {
			return nil, err
		}
		methods = append(methods, ast.NewMethod(p.repo, mname, mtype))
	}
	return ast.NewTrait(p.repo, name, supers, params, assoc, methods), nil
}

// (impl Trait Target) or (impl (Trait A...) Target)
func (p *Parser) lowerImpl(l *list) (ast.Decl, error) {
	if len(l.items) != 3 {
		return nil, errAt(l.pos(), "impl needs a trait and a target type")
	}

	var trait *ast.TypeName
	var traitArgs []ast.Type
	if name, _, ok := symbolOf(l.items[1]); ok {
		trait = ast.NewTypeName(p.repo, name)
	} else if head, tl, ok := headSymbol(l.items[1]); ok {
		trait = ast.NewTypeName(p.repo, head)
		for _, a := range tl.items[1:] {
			at, err := p.lowerType(a)
			if err != nil {
				return nil, err
			}
			traitArgs = append(traitArgs, at)
		}
	} else {
		return nil, errAt(l.items[1].pos(), "impl trait must be a symbol or application")
	}

	target, err := p.lowerType(l.items[2])
	if err != nil {
		return nil, err
	}
	return ast.NewImpl(p.repo, trait, traitArgs, target), nil
}

// (def name [(: T)] expr)
func (p *Parser) lowerDef(l *list) (ast.Decl, error) {
	if len(l.items) < 3 {
		return nil, errAt(l.pos(), "def needs a name and a body")
	}
	name, _, ok := symbolOf(l.items[1])
	if !ok {
		return nil, errAt(l.items[1].pos(), "def name must be a symbol")
	}
	rest := l.items[2:]

	var annot ast.Type
	if al, ok := firstSection(rest, ":"); ok {
		if len(al.items) != 2 {
			return nil, errAt(al.pos(), "type annotation needs exactly one type")
		}
		t, err := p.lowerType(al.items[1])
		if err != nil {
			return nil, err
		}
		annot = t
		rest = rest[1:]
	}

	if len(rest) != 1 {
		return nil, errAt(l.pos(), "def %s needs exactly one body expression", name)
	}
	body, err := p.lowerExpr(rest[0])
	if err != nil {
		return nil, err
	}
	return ast.NewDef(p.repo, name, annot, body), nil
}

// optSection lowers a leading (name P...) parameter section if present.
func (p *Parser) optSection(items []sexp, name string) ([]*ast.Param, []sexp, error) {
	sl, ok := firstSection(items, name)
	if !ok {
		return nil, items, nil
	}
	params := make([]*ast.Param, 0, len(sl.items)-1)
	for _, item := range sl.items[1:] {
		param, err := p.lowerParam(item)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, param)
	}
	return params, items[1:], nil
}

func firstSection(items []sexp, name string) (*list, bool) {
	if len(items) == 0 {
		return nil, false
	}
	head, l, ok := headSymbol(items[0])
	if !ok || head != name {
		return nil, false
	}
	return l, true
}

// lowerParam handles the three parameter shapes:
// Name, (Name :: K), and (Name C1 C2...).
func (p *Parser) lowerParam(s sexp) (*ast.Param, error) {
	if name, _, ok := symbolOf(s); ok {
		return ast.NewParam(p.repo, name, nil, nil), nil
	}
	l, ok := s.(*list)
	if !ok || len(l.items) < 2 {
		return nil, errAt(s.pos(), "malformed parameter")
	}
	name, _, ok := symbolOf(l.items[0])
	if !ok {
		return nil, errAt(l.items[0].pos(), "parameter name must be a symbol")
	}

	if sym, _, ok := symbolOf(l.items[1]); ok && sym == "::" {
		if len(l.items) != 3 {
			return nil, errAt(l.pos(), "kinded parameter needs exactly one kind")
		}
		kind, err := p.lowerKind(l.items[2])
		if err != nil {
			return nil, err
		}
		return ast.NewParam(p.repo, name, kind, nil), nil
	}

	constraints := make([]*ast.ConstraintRef, 0, len(l.items)-1)
	for _, c := range l.items[1:] {
		cref, err := p.lowerConstraint(c)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, cref)
	}
	return ast.NewParam(p.repo, name, nil, constraints), nil
}

func (p *Parser) lowerConstraint(s sexp) (*ast.ConstraintRef, error) {
	if name, _, ok := symbolOf(s); ok {
		return ast.NewConstraintRef(p.repo, ast.NewTypeName(p.repo, name), nil), nil
	}
	head, l, ok := headSymbol(s)
	if !ok {
		return nil, errAt(s.pos(), "malformed constraint")
	}
	args := make([]ast.Type, 0, len(l.items)-1)
	for _, a := range l.items[1:] {
		at, err := p.lowerType(a)
		if err != nil {
			return nil, err
		}
		args = append(args, at)
	}
	return ast.NewConstraintRef(p.repo, ast.NewTypeName(p.repo, head), args), nil
}

func (p *Parser) lowerKind(s sexp) (ast.KindExpr, error) {
	if sym, _, ok := symbolOf(s); ok {
		if sym == "*" {
			return ast.NewKindStar(p.repo), nil
		}
		return nil, errAt(s.pos(), "unknown kind %q", sym)
	}
	head, l, ok := headSymbol(s)
	if !ok || head != "->" || len(l.items) != 3 {
		return nil, errAt(s.pos(), "kind must be * or (-> k k)")
	}
	left, err := p.lowerKind(l.items[1])
	if err != nil {
		return nil, err
	}
	right, err := p.lowerKind(l.items[2])
	if err != nil {
		return nil, err
	}
	return ast.NewKindArrow(p.repo, left, right), nil
}

func (p *Parser) lowerType(s sexp) (ast.Type, error) {
	if a, ok := s.(*atom); ok {
		if a.tok.Type != token.SYMBOL {
			return nil, errAt(a.tok, "expected a type, got %q", a.tok.Lexeme)
		}
		return ast.NewTypeName(p.repo, a.tok.Lexeme), nil
	}

	head, l, ok := headSymbol(s)
	if !ok {
		return nil, errAt(s.pos(), "malformed type")
	}
	switch head {
	case "fn":
		return p.lowerFun(l)
	case "tuple":
		elems := make([]ast.Type, 0, len(l.items)-1)
		for _, e := range l.items[1:] {
			et, err := p.lowerType(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, et)
		}
		return ast.NewTupleType(p.repo, elems), nil
	case "forall":
		if len(l.items) != 3 {
			return nil, errAt(l.pos(), "forall needs parameters and a body")
		}
		pl, ok := l.items[1].(*list)
		if !ok {
			return nil, errAt(l.items[1].pos(), "forall parameters must be a list")
		}
		params := make([]*ast.Param, 0, len(pl.items))
		for _, item := range pl.items {
			param, err := p.lowerParam(item)
			if err != nil {
				return nil, err
			}
			params = append(params, param)
		}
		body, err := p.lowerType(l.items[2])
		if err != nil {
			return nil, err
		}
		return ast.NewForall(p.repo, params, body), nil
	case "partial":
		return p.lowerPartial(l)
	case "hole":
		if len(l.items) != 2 {
			return nil, errAt(l.pos(), "hole needs a name")
		}
		name, tok, ok := symbolOf(l.items[1])
		if !ok {
			return nil, errAt(l.items[1].pos(), "hole name must be a symbol")
		}
		hole := p.lookupHole(name)
		if hole == nil {
			return nil, errAt(tok, "hole %q is not declared by an enclosing partial", name)
		}
		return hole, nil
	default:
		// Application: (Head T...)
		headType := ast.NewTypeName(p.repo, head)
		args := make([]ast.Type, 0, len(l.items)-1)
		for _, a := range l.items[1:] {
			at, err := p.lowerType(a)
			if err != nil {
				return nil, err
			}
			args = append(args, at)
		}
		if len(args) == 0 {
			return headType, nil
		}
		return ast.NewApply(p.repo, headType, args), nil
	}
}

// (fn [(tparams P...)] (T...) R)
func (p *Parser) lowerFun(l *list) (ast.Type, error) {
	rest := l.items[1:]

	var tparams []*ast.Param
	if tl, ok := firstSection(rest, "tparams"); ok {
		for _, item := range tl.items[1:] {
			param, err := p.lowerParam(item)
			if err != nil {
				return nil, err
			}
			tparams = append(tparams, param)
		}
		rest = rest[1:]
	}

	if len(rest) != 2 {
		return nil, errAt(l.pos(), "fn needs a parameter list and a return type")
	}
	pl, ok := rest[0].(*list)
	if !ok {
		return nil, errAt(rest[0].pos(), "fn parameters must be a list")
	}
	params := make([]ast.Type, 0, len(pl.items))
	for _, item := range pl.items {
		pt, err := p.lowerType(item)
		if err != nil {
			return nil, err
		}
		params = append(params, pt)
	}
	ret, err := p.lowerType(rest[1])
	if err != nil {
		return nil, err
	}
	return ast.NewFunType(p.repo, tparams, params, ret), nil
}

// (partial (h...) T): declares holes by name for the inner type.
func (p *Parser) lowerPartial(l *list) (ast.Type, error) {
	if len(l.items) != 3 {
		return nil, errAt(l.pos(), "partial needs a hole list and an inner type")
	}
	hl, ok := l.items[1].(*list)
	if !ok {
		return nil, errAt(l.items[1].pos(), "partial holes must be a list")
	}

	scope := make(map[string]*ast.Hole, len(hl.items))
	holes := make([]*ast.Hole, 0, len(hl.items))
	for i, item := range hl.items {
		name, tok, ok := symbolOf(item)
		if !ok {
			return nil, errAt(item.pos(), "hole name must be a symbol")
		}
		if _, dup := scope[name]; dup {
			return nil, errAt(tok, "duplicate hole %q", name)
		}
		hole := ast.NewHole(p.repo, i, name)
		scope[name] = hole
		holes = append(holes, hole)
	}

	p.holeScopes = append(p.holeScopes, scope)
	inner, err := p.lowerType(l.items[2])
	p.holeScopes = p.holeScopes[:len(p.holeScopes)-1]
	if err != nil {
		return nil, err
	}
	return ast.NewPartial(p.repo, holes, inner), nil
}

func (p *Parser) lookupHole(name string) *ast.Hole {
	for i := len(p.holeScopes) - 1; i >= 0; i-- {
		if h, ok := p.holeScopes[i][name]; ok {
			return h
		}
	}
	return nil
}

func (p *Parser) lowerExpr(s sexp) (ast.Expr, error) {
	if a, ok := s.(*atom); ok {
		switch a.tok.Type {
		case token.SYMBOL:
			return ast.NewNameExpr(p.repo, a.tok.Lexeme), nil
		case token.INT:
			v, err := strconv.ParseInt(a.tok.Lexeme, 10, 64)
			if err != nil {
				return nil, errAt(a.tok, "bad integer literal %q", a.tok.Lexeme)
			}
			return ast.NewIntLit(p.repo, v), nil
		case token.STRING:
			return ast.NewStrLit(p.repo, a.tok.Lexeme), nil
		default:
			return nil, errAt(a.tok, "expected an expression")
		}
	}

	l, ok := s.(*list)
	if !ok || len(l.items) == 0 {
		return nil, errAt(s.pos(), "malformed expression")
	}
	if head, tl, ok := headSymbol(s); ok && head == "tup" {
		elems := make([]ast.Expr, 0, len(tl.items)-1)
		for _, e := range tl.items[1:] {
			ee, err := p.lowerExpr(e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ee)
		}
		return ast.NewTupleExpr(p.repo, elems), nil
	}

	fn, err := p.lowerExpr(l.items[0])
	if err != nil {
		return nil, err
	}
	args := make([]ast.Expr, 0, len(l.items)-1)
	for _, a := range l.items[1:] {
		ae, err := p.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, ae)
	}
	return ast.NewCallExpr(p.repo, fn, args), nil
}
