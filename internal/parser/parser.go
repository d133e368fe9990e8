// Package parser implements a recursive-descent parser that turns a
// lexer.Token stream into an *ast.Program.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-pyvm/internal/ast"
	"github.com/cwbudde/go-pyvm/internal/lexer"
)

// Parser consumes tokens from a lexer.Lexer and builds an AST.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errs      []string
	errPosits []lexer.Position
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns accumulated parse error messages.
func (p *Parser) Errors() []string { return p.errs }

// ErrorPositions returns the source position of each accumulated error,
// index-aligned with Errors().
func (p *Parser) ErrorPositions() []lexer.Position { return p.errPosits }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errs = append(p.errs, fmt.Sprintf(format, args...))
	p.errPosits = append(p.errPosits, pos)
}

func (p *Parser) curIs(t lexer.TokenType) bool { return p.cur.Type == t }

func (p *Parser) expect(t lexer.TokenType, what string) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %q", what, p.cur.Literal)
	return false
}

// skipNewlines consumes any run of blank-line NewLine tokens.
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NewLine) {
		p.next()
	}
}

// ParseProgram parses the full token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipNewlines()
	}
	return prog
}

// parseBlock parses "':' NEWLINE INDENT stmt* DEDENT".
func (p *Parser) parseBlock() []ast.Stmt {
	if !p.expect(lexer.Colon, "':'") {
		return nil
	}
	if !p.curIs(lexer.NewLine) {
		// Single-line body: `if x: return 1`.
		stmt := p.parseSimpleStatement()
		if stmt == nil {
			return nil
		}
		return []ast.Stmt{stmt}
	}
	p.skipNewlines()
	if !p.expect(lexer.Indent, "indented block") {
		return nil
	}
	var body []ast.Stmt
	for !p.curIs(lexer.Dedent) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		p.skipNewlines()
	}
	p.expect(lexer.Dedent, "dedent")
	return body
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Type {
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwFor:
		return p.parseFor()
	case lexer.KwDef:
		return p.parseFunctionDef()
	case lexer.KwClass:
		return p.parseClassDef()
	case lexer.KwTry:
		return p.parseTry()
	default:
		stmt := p.parseSimpleStatement()
		if !p.curIs(lexer.NewLine) && !p.curIs(lexer.EOF) && !p.curIs(lexer.Dedent) {
			p.errorf(p.cur.Pos, "expected newline after statement, got %q", p.cur.Literal)
		}
		return stmt
	}
}

func (p *Parser) parseSimpleStatement() ast.Stmt {
	pos := p.cur.Pos
	switch p.cur.Type {
	case lexer.KwReturn:
		p.next()
		if p.curIs(lexer.NewLine) || p.curIs(lexer.EOF) || p.curIs(lexer.Dedent) {
			return &ast.Return{StmtBase: ast.StmtBase{Pos: pos}}
		}
		return &ast.Return{StmtBase: ast.StmtBase{Pos: pos}, Value: p.parseExpr()}
	case lexer.KwBreak:
		p.next()
		return &ast.Break{StmtBase: ast.StmtBase{Pos: pos}}
	case lexer.KwContinue:
		p.next()
		return &ast.Continue{StmtBase: ast.StmtBase{Pos: pos}}
	case lexer.KwAssert:
		p.next()
		return &ast.Assert{StmtBase: ast.StmtBase{Pos: pos}, X: p.parseExpr()}
	case lexer.KwRaise:
		p.next()
		return &ast.Raise{StmtBase: ast.StmtBase{Pos: pos}, X: p.parseExpr()}
	default:
		x := p.parseExpr()
		if p.curIs(lexer.Assign) {
			p.next()
			value := p.parseExpr()
			if !isAssignTarget(x) {
				p.errorf(pos, "invalid assignment target")
			}
			return &ast.Assign{StmtBase: ast.StmtBase{Pos: pos}, Target: x, Value: value}
		}
		return &ast.ExprStmt{StmtBase: ast.StmtBase{Pos: pos}, X: x}
	}
}

func isAssignTarget(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Variable, *ast.Attribute, *ast.Subscript:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	cond := p.parseExpr()
	body := p.parseBlock()
	stmt := &ast.If{StmtBase: ast.StmtBase{Pos: pos}, Cond: cond, Body: body}
	if p.curIs(lexer.KwElse) {
		p.next()
		if p.curIs(lexer.KwIf) {
			stmt.OrElse = []ast.Stmt{p.parseIf()}
		} else {
			stmt.OrElse = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.While{StmtBase: ast.StmtBase{Pos: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	if !p.curIs(lexer.Ident) {
		p.errorf(p.cur.Pos, "expected loop variable name")
		return nil
	}
	target := p.cur.Literal
	p.next()
	if !p.expect(lexer.KwIn, "'in'") {
		return nil
	}
	iter := p.parseExpr()
	body := p.parseBlock()
	return &ast.For{StmtBase: ast.StmtBase{Pos: pos}, Target: target, Iter: iter, Body: body}
}

func (p *Parser) parseFunctionDef() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	if !p.curIs(lexer.Ident) {
		p.errorf(p.cur.Pos, "expected function name")
		return nil
	}
	name := p.cur.Literal
	p.next()
	if !p.expect(lexer.LParen, "'('") {
		return nil
	}
	var params []string
	for !p.curIs(lexer.RParen) {
		if !p.curIs(lexer.Ident) {
			p.errorf(p.cur.Pos, "expected parameter name")
			break
		}
		params = append(params, p.cur.Literal)
		p.next()
		if p.curIs(lexer.Comma) {
			p.next()
		}
	}
	p.expect(lexer.RParen, "')'")
	body := p.parseBlock()
	return &ast.FunctionDef{StmtBase: ast.StmtBase{Pos: pos}, Name: name, Params: params, Body: body}
}

func (p *Parser) parseClassDef() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	if !p.curIs(lexer.Ident) {
		p.errorf(p.cur.Pos, "expected class name")
		return nil
	}
	name := p.cur.Literal
	p.next()
	var bases []ast.Expr
	if p.curIs(lexer.LParen) {
		p.next()
		for !p.curIs(lexer.RParen) {
			bases = append(bases, p.parseExpr())
			if p.curIs(lexer.Comma) {
				p.next()
			}
		}
		p.expect(lexer.RParen, "')'")
	}
	body := p.parseBlock()
	return &ast.ClassDef{StmtBase: ast.StmtBase{Pos: pos}, Name: name, Bases: bases, Body: body}
}

func (p *Parser) parseTry() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	body := p.parseBlock()
	stmt := &ast.Try{StmtBase: ast.StmtBase{Pos: pos}, Body: body}
	for p.curIs(lexer.KwExcept) {
		p.next()
		clause := ast.ExceptClause{}
		if !p.curIs(lexer.Colon) {
			clause.Type = p.parseExpr()
			if p.cur.Type == lexer.Ident && p.cur.Literal == "as" {
				p.next()
				if p.curIs(lexer.Ident) {
					clause.Name = p.cur.Literal
					p.next()
				}
			}
		}
		clause.Body = p.parseBlock()
		stmt.Handler = append(stmt.Handler, clause)
	}
	if len(stmt.Handler) == 0 {
		p.errorf(pos, "try statement requires at least one except clause")
	}
	return stmt
}
