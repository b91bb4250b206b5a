// Package parser reads the S-expression surface syntax and produces a
// finalized AST: ids allocated through the repository, parent pointers set
// on insertion.
package parser

import (
	"fmt"

	"github.com/quench-lang/quench/internal/ast"
	"github.com/quench-lang/quench/internal/lexer"
	"github.com/quench-lang/quench/internal/token"
)

type sexp interface {
	sexpNode()
	pos() token.Token
}

type atom struct {
	tok token.Token
}

func (a *atom) sexpNode()        {}
func (a *atom) pos() token.Token { return a.tok }

type list struct {
	open  token.Token
	items []sexp
}

func (l *list) sexpNode()        {}
func (l *list) pos() token.Token { return l.open }

type Parser struct {
	lex  *lexer.Lexer
	repo *ast.Repository
	cur  token.Token

	// Stack of partial scopes: hole name -> node, innermost last.
	holeScopes []map[string]*ast.Hole
}

func New(input string, repo *ast.Repository) *Parser {
	p := &Parser{lex: lexer.New(input), repo: repo}
	p.cur = p.lex.NextToken()
	return p
}

// Parse reads every top-level form.
func (p *Parser) Parse() ([]ast.Decl, error) {
	var decls []ast.Decl
	for p.cur.Type != token.EOF {
		form, err := p.readSexp()
		if err != nil {
			return nil, err
		}
		decl, err := p.lowerDecl(form)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

func (p *Parser) advance() {
	p.cur = p.lex.NextToken()
}

func (p *Parser) readSexp() (sexp, error) {
	switch p.cur.Type {
	case token.LPAREN:
		open := p.cur
		p.advance()
		var items []sexp
		for p.cur.Type != token.RPAREN {
			if p.cur.Type == token.EOF {
				return nil, errAt(open, "unterminated list")
			}
			item, err := p.readSexp()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		p.advance() // consume ')'
		return &list{open: open, items: items}, nil
	case token.SYMBOL, token.INT, token.STRING:
		a := &atom{tok: p.cur}
		p.advance()
		return a, nil
	case token.RPAREN:
		return nil, errAt(p.cur, "unexpected ')'")
	default:
		return nil, errAt(p.cur, "unexpected token %q", p.cur.Lexeme)
	}
}

func errAt(tok token.Token, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", tok.Pos(), fmt.Sprintf(format, args...))
}

// headSymbol reports the leading symbol of a list, if any.
func headSymbol(s sexp) (string, *list, bool) {
	l, ok := s.(*list)
	if !ok || len(l.items) == 0 {
		return "", nil, false
	}
	a, ok := l.items[0].(*atom)
	if !ok || a.tok.Type != token.SYMBOL {
		return "", l, false
	}
	return a.tok.Lexeme, l, true
}

func symbolOf(s sexp) (string, token.Token, bool) {
	a, ok := s.(*atom)
	if !ok || a.tok.Type != token.SYMBOL {
		return "", token.Token{}, false
	}
	return a.tok.Lexeme, a.tok, true
}
