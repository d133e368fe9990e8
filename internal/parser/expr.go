package parser

import (
	"strconv"

	"github.com/cwbudde/go-pyvm/internal/ast"
	"github.com/cwbudde/go-pyvm/internal/lexer"
)

// Precedence, low to high: equality/comparison, then additive, then
// postfix (call/attribute/subscript), then primary. Only three binary
// operators exist (+, <, ==) so this is a simple two-level climb rather
// than a full Pratt table.

func (p *Parser) parseExpr() ast.Expr {
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for p.curIs(lexer.Lt) || p.curIs(lexer.EqEq) {
		op := ast.OpLt
		if p.curIs(lexer.EqEq) {
			op = ast.OpEq
		}
		pos := p.cur.Pos
		p.next()
		right := p.parseAdditive()
		left = &ast.BinOp{Op: op, Left: left, Right: right, ExprBase: ast.ExprBase{Pos: pos}}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parsePostfix()
	for p.curIs(lexer.Plus) {
		pos := p.cur.Pos
		p.next()
		right := p.parsePostfix()
		left = &ast.BinOp{Op: ast.OpAdd, Left: left, Right: right, ExprBase: ast.ExprBase{Pos: pos}}
	}
	return left
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur.Type {
		case lexer.Dot:
			pos := p.cur.Pos
			p.next()
			if !p.curIs(lexer.Ident) {
				p.errorf(p.cur.Pos, "expected attribute name after '.'")
				return x
			}
			name := p.cur.Literal
			p.next()
			x = &ast.Attribute{Value: x, Name: name, ExprBase: ast.ExprBase{Pos: pos}}
		case lexer.LParen:
			pos := p.cur.Pos
			p.next()
			var args []ast.Expr
			for !p.curIs(lexer.RParen) {
				args = append(args, p.parseExpr())
				if p.curIs(lexer.Comma) {
					p.next()
				}
			}
			p.expect(lexer.RParen, "')'")
			x = &ast.Call{Func: x, Args: args, ExprBase: ast.ExprBase{Pos: pos}}
		case lexer.LBracket:
			pos := p.cur.Pos
			p.next()
			idx := p.parseExpr()
			p.expect(lexer.RBracket, "']'")
			x = &ast.Subscript{Value: x, Index: idx, ExprBase: ast.ExprBase{Pos: pos}}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.Ident:
		name := p.cur.Literal
		p.next()
		return &ast.Variable{Name: name, ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.Int:
		v, err := strconv.ParseInt(p.cur.Literal, 10, 32)
		if err != nil {
			p.errorf(pos, "invalid integer literal %q", p.cur.Literal)
		}
		p.next()
		return &ast.IntLit{Value: int32(v), ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.String:
		s := p.cur.Literal
		p.next()
		return &ast.StrLit{Value: s, ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.KwTrue:
		p.next()
		return &ast.BoolLit{Value: true, ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.KwFalse:
		p.next()
		return &ast.BoolLit{Value: false, ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.KwNone:
		p.next()
		return &ast.NoneLit{ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.LParen:
		p.next()
		x := p.parseExpr()
		p.expect(lexer.RParen, "')'")
		return x
	case lexer.LBracket:
		p.next()
		var elems []ast.Expr
		for !p.curIs(lexer.RBracket) {
			elems = append(elems, p.parseExpr())
			if p.curIs(lexer.Comma) {
				p.next()
			}
		}
		p.expect(lexer.RBracket, "']'")
		return &ast.ListLit{Elements: elems, ExprBase: ast.ExprBase{Pos: pos}}
	case lexer.LBrace:
		p.next()
		var entries []ast.DictEntry
		for !p.curIs(lexer.RBrace) {
			key := p.parseExpr()
			p.expect(lexer.Colon, "':'")
			val := p.parseExpr()
			entries = append(entries, ast.DictEntry{Key: key, Value: val})
			if p.curIs(lexer.Comma) {
				p.next()
			}
		}
		p.expect(lexer.RBrace, "'}'")
		return &ast.DictLit{Entries: entries, ExprBase: ast.ExprBase{Pos: pos}}
	default:
		p.errorf(pos, "unexpected token %q in expression", p.cur.Literal)
		p.next()
		return &ast.NoneLit{ExprBase: ast.ExprBase{Pos: pos}}
	}
}
