// Package expr implements the closed expression grammar used by posting
// rules: field references, decimal arithmetic, comparisons, boolean
// connectives and a single conditional form. It is a deliberately small
// interpreter, not a scripting engine, so that rule evaluation stays
// deterministic, auditable and side-effect free.
//
//	expr  := or ( "?" expr ":" expr )?
//	or    := and ( "||" and )*
//	and   := cmp ( "&&" cmp )*
//	cmp   := sum ( ("=="|"!="|"<"|"<="|">"|">=") sum )?
//	sum   := term ( ("+"|"-") term )*
//	term  := unary ( ("*"|"/") unary )*
//	unary := ("-"|"!") unary | NUMBER | IDENT | "(" expr ")"
package expr

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type node interface {
	eval(fields map[string]any) (value, error)
}

type numberNode struct {
	val decimal.Decimal
}

type identNode struct {
	name string
}

type unaryNode struct {
	op    tokenKind // tokenMinus or tokenNot
	child node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type condNode struct {
	cond, then, otherwise node
}

// Expr is a parsed, reusable expression.
type Expr struct {
	src  string
	root node
}

// String returns the source text the expression was parsed from.
func (e *Expr) String() string {
	return e.src
}

type parser struct {
	lex *lexer
	cur token
}

// Parse compiles src into a reusable Expr.
func Parse(src string) (*Expr, error) {
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokenEOF {
		return nil, fmt.Errorf("unexpected %s at position %d", p.cur, p.cur.pos)
	}
	return &Expr{src: src, root: root}, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.cur.kind != kind {
		return fmt.Errorf("expected %s, found %s at position %d", what, p.cur, p.cur.pos)
	}
	return p.advance()
}

func (p *parser) parseExpr() (node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokenQuestion {
		return cond, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokenColon, "':'"); err != nil {
		return nil, err
	}
	otherwise, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &condNode{cond: cond, then: then, otherwise: otherwise}, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokenOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokenOr, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokenAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokenAnd, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseCmp() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	switch p.cur.kind {
	case tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte:
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokenPlus || p.cur.kind == tokenMinus {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokenStar || p.cur.kind == tokenSlash {
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	switch p.cur.kind {
	case tokenMinus, tokenNot:
		op := p.cur.kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, child: child}, nil
	case tokenNumber:
		val, err := decimal.NewFromString(p.cur.text)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", p.cur.text, p.cur.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &numberNode{val: val}, nil
	case tokenIdent:
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &identNode{name: name}, nil
	case tokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, fmt.Errorf("unexpected %s at position %d", p.cur, p.cur.pos)
}
