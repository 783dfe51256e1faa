package frontend

import (
	"rv32cc/ast"
)

// parseBlock parses `{ (declaration | statement)* }`.
func (p *parser) parseBlock() *ast.Node {
	open := p.expect(tokenType('{'))
	n := &ast.Node{Kind: ast.Block, Line: open.line, Col: open.col}
	for !p.at(tokenType('}')) && !p.at(tokEOF) {
		if p.isTypeStart() {
			n.Children = append(n.Children, p.parseLocalDecl())
		} else {
			n.Children = append(n.Children, p.parseStatement())
		}
	}
	p.expect(tokenType('}'))
	return n
}

// parseLocalDecl parses a local variable declaration statement.
func (p *parser) parseLocalDecl() *ast.Node {
	baseType := p.parseTypeSpecifier()
	depth := p.parsePointerDepth()
	nameTok := p.expect(tokIdentifier)
	return p.parseVarDeclRest(baseType, depth, nameTok, false)
}

// parseStatement parses one statement.
func (p *parser) parseStatement() *ast.Node {
	t := p.cur()
	switch t.typ {
	case tokenType('{'):
		return p.parseBlock()
	case tokIf:
		return p.parseIf()
	case tokWhile:
		return p.parseWhile()
	case tokDo:
		return p.parseDoWhile()
	case tokFor:
		return p.parseFor()
	case tokReturn:
		return p.parseReturn()
	case tokBreak:
		p.advance()
		p.expect(tokenType(';'))
		return &ast.Node{Kind: ast.BreakStmt, Line: t.line, Col: t.col}
	case tokContinue:
		p.advance()
		p.expect(tokenType(';'))
		return &ast.Node{Kind: ast.ContinueStmt, Line: t.line, Col: t.col}
	case tokSwitch:
		return p.parseSwitch()
	case tokGoto:
		p.advance()
		nameTok := p.expect(tokIdentifier)
		p.expect(tokenType(';'))
		return &ast.Node{Kind: ast.GotoStmt, Name: nameTok.val, Line: t.line, Col: t.col}
	case tokenType(';'):
		p.advance()
		return &ast.Node{Kind: ast.NullStmt, Line: t.line, Col: t.col}
	case tokIdentifier:
		if p.peekIs(1, tokenType(':')) {
			p.advance()
			p.advance()
			stmt := p.parseStatement()
			return &ast.Node{Kind: ast.LabelStmt, Name: t.val, Line: t.line, Col: t.col, Children: []*ast.Node{stmt}}
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *parser) parseExprStatement() *ast.Node {
	t := p.cur()
	e := p.parseExpression()
	p.expect(tokenType(';'))
	return &ast.Node{Kind: ast.ExprStmt, Line: t.line, Col: t.col, Children: []*ast.Node{e}}
}

func (p *parser) parseIf() *ast.Node {
	t := p.expect(tokIf)
	p.expect(tokenType('('))
	cond := p.parseExpression()
	p.expect(tokenType(')'))
	then := p.parseStatement()
	n := &ast.Node{Kind: ast.IfStmt, Line: t.line, Col: t.col, Children: []*ast.Node{cond, then}}
	if _, ok := p.accept(tokElse); ok {
		n.Children = append(n.Children, p.parseStatement())
	}
	return n
}

func (p *parser) parseWhile() *ast.Node {
	t := p.expect(tokWhile)
	p.expect(tokenType('('))
	cond := p.parseExpression()
	p.expect(tokenType(')'))
	body := p.parseStatement()
	return &ast.Node{Kind: ast.WhileStmt, Line: t.line, Col: t.col, Children: []*ast.Node{cond, body}}
}

func (p *parser) parseDoWhile() *ast.Node {
	t := p.expect(tokDo)
	body := p.parseStatement()
	p.expect(tokWhile)
	p.expect(tokenType('('))
	cond := p.parseExpression()
	p.expect(tokenType(')'))
	p.expect(tokenType(';'))
	return &ast.Node{Kind: ast.DoWhileStmt, Line: t.line, Col: t.col, Children: []*ast.Node{body, cond}}
}

func (p *parser) parseFor() *ast.Node {
	t := p.expect(tokFor)
	p.expect(tokenType('('))

	var initN, condN, postN *ast.Node
	if !p.at(tokenType(';')) {
		if p.isTypeStart() {
			initN = p.parseLocalDecl()
		} else {
			e := p.parseExpression()
			initN = &ast.Node{Kind: ast.ExprStmt, Children: []*ast.Node{e}}
			p.expect(tokenType(';'))
		}
	} else {
		p.expect(tokenType(';'))
	}

	if !p.at(tokenType(';')) {
		condN = p.parseExpression()
	}
	p.expect(tokenType(';'))

	if !p.at(tokenType(')')) {
		postN = p.parseExpression()
	}
	p.expect(tokenType(')'))

	body := p.parseStatement()
	return &ast.Node{Kind: ast.ForStmt, Line: t.line, Col: t.col, Children: []*ast.Node{initN, condN, postN, body}}
}

func (p *parser) parseReturn() *ast.Node {
	t := p.expect(tokReturn)
	n := &ast.Node{Kind: ast.ReturnStmt, Line: t.line, Col: t.col}
	if !p.at(tokenType(';')) {
		n.Children = append(n.Children, p.parseExpression())
	}
	p.expect(tokenType(';'))
	return n
}

// parseSwitch parses `switch (expr) { case C: stmt ... default: stmt }`.
// Each case/default label is its own CaseStmt/DefaultStmt node holding one
// statement child: the statements up to the next label, as built by
// parseCaseBodyStatement. This matches the Block of labeled statements the
// code generator's fallthrough walk expects.
func (p *parser) parseSwitch() *ast.Node {
	t := p.expect(tokSwitch)
	p.expect(tokenType('('))
	scrutinee := p.parseExpression()
	p.expect(tokenType(')'))

	bodyOpen := p.expect(tokenType('{'))
	body := &ast.Node{Kind: ast.Block, Line: bodyOpen.line, Col: bodyOpen.col}
	for !p.at(tokenType('}')) && !p.at(tokEOF) {
		switch p.cur().typ {
		case tokCase:
			ct := p.advance()
			val := p.parseConstantExpr()
			p.expect(tokenType(':'))
			stmt := p.parseCaseBodyStatement()
			body.Children = append(body.Children, &ast.Node{Kind: ast.CaseStmt, Line: ct.line, Col: ct.col, Children: []*ast.Node{val, stmt}})
		case tokDefault:
			dt := p.advance()
			p.expect(tokenType(':'))
			stmt := p.parseCaseBodyStatement()
			body.Children = append(body.Children, &ast.Node{Kind: ast.DefaultStmt, Line: dt.line, Col: dt.col, Children: []*ast.Node{stmt}})
		default:
			body.Children = append(body.Children, p.parseStatement())
		}
	}
	p.expect(tokenType('}'))
	return &ast.Node{Kind: ast.SwitchStmt, Line: t.line, Col: t.col, Children: []*ast.Node{scrutinee, body}}
}

// parseCaseBodyStatement parses the statement(s) belonging to a single
// case/default label, which may itself be empty (immediately followed by
// another label, for intentional fallthrough) or a single statement. A
// run of plain statements after the label is folded into a Block so the
// label node always holds exactly one statement child.
func (p *parser) parseCaseBodyStatement() *ast.Node {
	if p.at(tokCase) || p.at(tokDefault) || p.at(tokenType('}')) {
		return &ast.Node{Kind: ast.NullStmt, Line: p.cur().line, Col: p.cur().col}
	}
	first := p.parseStatement()
	if p.at(tokCase) || p.at(tokDefault) || p.at(tokenType('}')) {
		return first
	}
	block := &ast.Node{Kind: ast.Block, Line: first.Line, Col: first.Col, Children: []*ast.Node{first}}
	for !p.at(tokCase) && !p.at(tokDefault) && !p.at(tokenType('}')) && !p.at(tokEOF) {
		block.Children = append(block.Children, p.parseStatement())
	}
	return block
}

// parseConstantExpr parses a case label's expression as a
// conditional-expression. Nothing checks that it is constant: the code
// generator evaluates it at run time like any other expression and
// compares the result against the scrutinee.
func (p *parser) parseConstantExpr() *ast.Node {
	return p.parseConditional()
}
