package frontend

import (
	"rv32cc/ast"
	"rv32cc/types"
)

// Expression parsing follows standard C precedence, descending from the
// loosest-binding comma operator down to primary expressions:
//
//	comma > assignment > conditional > logicalOr > logicalAnd > bitOr >
//	bitXor > bitAnd > equality > relational > shift > additive >
//	multiplicative > unary > postfix > primary

func (p *parser) parseExpression() *ast.Node {
	e := p.parseAssignment()
	for {
		t, ok := p.accept(tokenType(','))
		if !ok {
			return e
		}
		rhs := p.parseAssignment()
		e = &ast.Node{Kind: ast.Comma, Line: t.line, Col: t.col, Children: []*ast.Node{e, rhs}}
	}
}

var compoundAssignOps = map[tokenType]string{
	tokAddAssign:    "+=",
	tokSubAssign:    "-=",
	tokMulAssign:    "*=",
	tokDivAssign:    "/=",
	tokModAssign:    "%=",
	tokAndAssign:    "&=",
	tokOrAssign:     "|=",
	tokXorAssign:    "^=",
	tokLShiftAssign: "<<=",
	tokRShiftAssign: ">>=",
}

func (p *parser) parseAssignment() *ast.Node {
	lhs := p.parseConditional()
	t := p.cur()
	if t.typ == tokenType('=') {
		p.advance()
		rhs := p.parseAssignment()
		return &ast.Node{Kind: ast.Assign, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
	if op, ok := compoundAssignOps[t.typ]; ok {
		p.advance()
		rhs := p.parseAssignment()
		return &ast.Node{Kind: ast.CompoundAssign, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
	return lhs
}

func (p *parser) parseConditional() *ast.Node {
	cond := p.parseLogicalOr()
	if t, ok := p.accept(tokenType('?')); ok {
		then := p.parseExpression()
		p.expect(tokenType(':'))
		els := p.parseConditional()
		return &ast.Node{Kind: ast.Conditional, Line: t.line, Col: t.col, Children: []*ast.Node{cond, then, els}}
	}
	return cond
}

func (p *parser) parseLogicalOr() *ast.Node {
	lhs := p.parseLogicalAnd()
	for {
		t, ok := p.accept(tokOrOr)
		if !ok {
			return lhs
		}
		rhs := p.parseLogicalAnd()
		lhs = &ast.Node{Kind: ast.Binary, Op: "||", Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseLogicalAnd() *ast.Node {
	lhs := p.parseBitOr()
	for {
		t, ok := p.accept(tokAndAnd)
		if !ok {
			return lhs
		}
		rhs := p.parseBitOr()
		lhs = &ast.Node{Kind: ast.Binary, Op: "&&", Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseBitOr() *ast.Node {
	lhs := p.parseBitXor()
	for {
		if p.at(tokenType('|')) {
			t := p.advance()
			rhs := p.parseBitXor()
			lhs = &ast.Node{Kind: ast.Binary, Op: "|", Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
			continue
		}
		return lhs
	}
}

func (p *parser) parseBitXor() *ast.Node {
	lhs := p.parseBitAnd()
	for {
		if p.at(tokenType('^')) {
			t := p.advance()
			rhs := p.parseBitAnd()
			lhs = &ast.Node{Kind: ast.Binary, Op: "^", Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
			continue
		}
		return lhs
	}
}

func (p *parser) parseBitAnd() *ast.Node {
	lhs := p.parseEquality()
	for {
		if p.at(tokenType('&')) {
			t := p.advance()
			rhs := p.parseEquality()
			lhs = &ast.Node{Kind: ast.Binary, Op: "&", Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
			continue
		}
		return lhs
	}
}

func (p *parser) parseEquality() *ast.Node {
	lhs := p.parseRelational()
	for {
		var op string
		switch p.cur().typ {
		case tokEQ:
			op = "=="
		case tokNE:
			op = "!="
		default:
			return lhs
		}
		t := p.advance()
		rhs := p.parseRelational()
		lhs = &ast.Node{Kind: ast.Binary, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseRelational() *ast.Node {
	lhs := p.parseShift()
	for {
		var op string
		switch p.cur().typ {
		case tokenType('<'):
			op = "<"
		case tokenType('>'):
			op = ">"
		case tokLE:
			op = "<="
		case tokGE:
			op = ">="
		default:
			return lhs
		}
		t := p.advance()
		rhs := p.parseShift()
		lhs = &ast.Node{Kind: ast.Binary, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseShift() *ast.Node {
	lhs := p.parseAdditive()
	for {
		var op string
		switch p.cur().typ {
		case tokLShift:
			op = "<<"
		case tokRShift:
			op = ">>"
		default:
			return lhs
		}
		t := p.advance()
		rhs := p.parseAdditive()
		lhs = &ast.Node{Kind: ast.Binary, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseAdditive() *ast.Node {
	lhs := p.parseMultiplicative()
	for {
		var op string
		switch p.cur().typ {
		case tokenType('+'):
			op = "+"
		case tokenType('-'):
			op = "-"
		default:
			return lhs
		}
		t := p.advance()
		rhs := p.parseMultiplicative()
		lhs = &ast.Node{Kind: ast.Binary, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

func (p *parser) parseMultiplicative() *ast.Node {
	lhs := p.parseUnary()
	for {
		var op string
		switch p.cur().typ {
		case tokenType('*'):
			op = "*"
		case tokenType('/'):
			op = "/"
		case tokenType('%'):
			op = "%"
		default:
			return lhs
		}
		t := p.advance()
		rhs := p.parseUnary()
		lhs = &ast.Node{Kind: ast.Binary, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{lhs, rhs}}
	}
}

// isTypeKeyword reports whether typ begins a type name, used to
// disambiguate a parenthesized cast from a parenthesized expression.
func isTypeKeyword(typ tokenType) bool {
	switch typ {
	case tokVoid, tokChar, tokInt, tokFloat, tokDouble, tokShort, tokLong, tokEnum:
		return true
	}
	return false
}

func (p *parser) parseUnary() *ast.Node {
	t := p.cur()
	switch t.typ {
	case tokIncr, tokDecr:
		p.advance()
		op := "++"
		if t.typ == tokDecr {
			op = "--"
		}
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.PreIncDec, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
	case tokenType('&'):
		p.advance()
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.AddrOf, Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
	case tokenType('*'):
		p.advance()
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.Deref, Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
	case tokenType('+'), tokenType('-'), tokenType('!'), tokenType('~'):
		p.advance()
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.Unary, Op: string(rune(t.typ)), Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
	case tokSizeof:
		p.advance()
		if p.at(tokenType('(')) && p.peekIsTypeAt(1) {
			p.advance()
			base := p.parseTypeSpecifier()
			depth := p.parsePointerDepth()
			p.expect(tokenType(')'))
			return &ast.Node{Kind: ast.SizeofType, Type: base, PointerDepth: depth, Line: t.line, Col: t.col}
		}
		operand := p.parseUnary()
		return &ast.Node{Kind: ast.SizeofExpr, Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
	case tokenType('('):
		if isTypeKeyword(p.peekAtRel(1).typ) {
			p.advance()
			base := p.parseTypeSpecifier()
			depth := p.parsePointerDepth()
			p.expect(tokenType(')'))
			operand := p.parseUnary()
			return &ast.Node{Kind: ast.Cast, Type: base, PointerDepth: depth, Line: t.line, Col: t.col, Children: []*ast.Node{operand}}
		}
	}
	return p.parsePostfix()
}

// peekIsTypeAt reports whether the token n ahead starts a type name.
func (p *parser) peekIsTypeAt(n int) bool {
	return isTypeKeyword(p.peekAtRel(n).typ)
}

// peekAtRel returns the token n positions ahead of the current one.
func (p *parser) peekAtRel(n int) token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token{typ: tokEOF}
	}
	return p.toks[i]
}

func (p *parser) parsePostfix() *ast.Node {
	e := p.parsePrimary()
	for {
		switch p.cur().typ {
		case tokenType('['):
			t := p.advance()
			idx := p.parseExpression()
			p.expect(tokenType(']'))
			e = &ast.Node{Kind: ast.Index, Line: t.line, Col: t.col, Children: []*ast.Node{e, idx}}
		case tokIncr, tokDecr:
			t := p.advance()
			op := "++"
			if t.typ == tokDecr {
				op = "--"
			}
			e = &ast.Node{Kind: ast.PostIncDec, Op: op, Line: t.line, Col: t.col, Children: []*ast.Node{e}}
		default:
			return e
		}
	}
}

func (p *parser) parsePrimary() *ast.Node {
	t := p.cur()
	switch t.typ {
	case tokIntConst:
		p.advance()
		return &ast.Node{Kind: ast.IntLit, IntValue: parseIntLiteral(t.val), Line: t.line, Col: t.col}
	case tokCharConst:
		p.advance()
		var v int
		if len(t.val) > 0 {
			v = int(t.val[0])
		}
		return &ast.Node{Kind: ast.CharLit, IntValue: v, Line: t.line, Col: t.col}
	case tokFloatConst:
		p.advance()
		if len(t.val) > 0 && (t.val[len(t.val)-1] == 'f' || t.val[len(t.val)-1] == 'F') {
			f := parseFloat32(t.val[:len(t.val)-1])
			return &ast.Node{Kind: ast.FloatLit, FloatValue: f, Line: t.line, Col: t.col}
		}
		d := parseFloat64(t.val)
		return &ast.Node{Kind: ast.DoubleLit, DoubleValue: d, Line: t.line, Col: t.col}
	case tokStringConst:
		p.advance()
		return &ast.Node{Kind: ast.StringLit, StringValue: t.val, Line: t.line, Col: t.col}
	case tokIdentifier:
		p.advance()
		if p.at(tokenType('(')) {
			return p.parseCall(t)
		}
		return &ast.Node{Kind: ast.Ident, Name: t.val, Line: t.line, Col: t.col}
	case tokenType('('):
		p.advance()
		e := p.parseExpression()
		p.expect(tokenType(')'))
		return e
	default:
		p.errorf("expected expression, got %s", t)
		return nil
	}
}

func (p *parser) parseCall(nameTok token) *ast.Node {
	p.expect(tokenType('('))
	n := &ast.Node{Kind: ast.Call, Name: nameTok.val, Line: nameTok.line, Col: nameTok.col}
	if !p.at(tokenType(')')) {
		for {
			n.Children = append(n.Children, p.parseAssignment())
			if _, ok := p.accept(tokenType(',')); ok {
				continue
			}
			break
		}
	}
	p.expect(tokenType(')'))
	return n
}

// typeSpecifierKind is kept for symmetry with other entry points that
// resolve a bare type keyword outside of a declarator, e.g. casts.
func typeSpecifierKind(typ tokenType) types.Kind {
	switch typ {
	case tokChar:
		return types.Char
	case tokFloat:
		return types.Float
	case tokDouble:
		return types.Double
	case tokShort:
		return types.Short
	case tokLong:
		return types.Long
	case tokEnum:
		return types.Enum
	default:
		return types.Int
	}
}
