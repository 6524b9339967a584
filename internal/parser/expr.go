package parser

import (
	"strconv"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/lexer"
)

// parseExpression dispatches to the handful of expression forms that need
// their own layout handling before falling through to the operator grammar.
func (p *Parser) parseExpression(base, current int) (ast.Expr, int, error) {
	switch p.peek().Type {
	case lexer.IF:
		return p.parseIfExpression(base, current)
	case lexer.CASE:
		return p.parseCaseExpression(base, current)
	case lexer.LET:
		return p.parseLetExpression(base, current)
	case lexer.BACKSLASH:
		return p.parseLambdaExpression(base, current)
	default:
		return p.parseBinaryExpression(base, current)
	}
}

// parseBinaryExpression is the shunting-yard loop: it parses one operand,
// then alternates consuming operators and operands, reducing the operator
// stack whenever the incoming operator does not have strictly higher (or
// equal right-associative) precedence than the stack top.
func (p *Parser) parseBinaryExpression(base, current int) (ast.Expr, int, error) {
	expr, current, err := p.parseSingularExpression(base, current)
	if err != nil {
		return nil, 0, err
	}

	col, inScope := p.consumeToIndented(base, current)
	if !inScope {
		return expr, col, nil
	}
	current = col

	var operatorStack []string
	operandStack := []ast.Expr{expr}
	posStack := []ast.Pos{expr.Position()}

	for p.peek().Type == lexer.OPERATOR {
		opTok := p.advance()
		info, known := p.infixes[opTok.Literal]
		if !known {
			return nil, 0, p.unexpectedToken("known operator")
		}

		current, err = p.mustConsumeToIndented(base, current)
		if err != nil {
			return nil, 0, err
		}

		if err := p.reduceWhileHigher(opTok.Literal, &operatorStack, &operandStack, &posStack); err != nil {
			return nil, 0, err
		}
		operatorStack = append(operatorStack, opTok.Literal)
		_ = info

		rhs, curr, err := p.parseSingularExpression(base, current)
		if err != nil {
			return nil, 0, err
		}
		operandStack = append(operandStack, rhs)
		posStack = append(posStack, rhs.Position())
		current = curr

		col, inScope := p.consumeToIndented(base, current)
		if inScope {
			current = col
		} else {
			break
		}
	}

	for len(operatorStack) > 0 {
		op := operatorStack[len(operatorStack)-1]
		operatorStack = operatorStack[:len(operatorStack)-1]
		right := operandStack[len(operandStack)-1]
		operandStack = operandStack[:len(operandStack)-1]
		left := operandStack[len(operandStack)-1]
		operandStack = operandStack[:len(operandStack)-1]
		pos := posStack[len(posStack)-2]
		posStack = posStack[:len(posStack)-2]
		combined := &ast.BinOp{Op: op, Left: left, Right: right, Pos: pos}
		operandStack = append(operandStack, combined)
		posStack = append(posStack, pos)
	}

	return operandStack[0], current, nil
}

func (p *Parser) reduceWhileHigher(op string, operatorStack *[]string, operandStack *[]ast.Expr, posStack *[]ast.Pos) error {
	if len(*operatorStack) == 0 {
		return nil
	}
	top := (*operatorStack)[len(*operatorStack)-1]
	a, aOk := p.infixes[op]
	b, bOk := p.infixes[top]
	if !aOk || !bOk {
		return p.unexpectedToken("known operator")
	}
	greater := a.Precedence > b.Precedence || (a.Precedence == b.Precedence && a.Associativity == ast.AssocRight)
	if greater {
		return nil
	}

	*operatorStack = (*operatorStack)[:len(*operatorStack)-1]
	right := (*operandStack)[len(*operandStack)-1]
	*operandStack = (*operandStack)[:len(*operandStack)-1]
	left := (*operandStack)[len(*operandStack)-1]
	*operandStack = (*operandStack)[:len(*operandStack)-1]
	pos := (*posStack)[len(*posStack)-2]
	*posStack = (*posStack)[:len(*posStack)-2]

	*operandStack = append(*operandStack, &ast.BinOp{Op: top, Left: left, Right: right, Pos: pos})
	*posStack = append(*posStack, pos)

	return p.reduceWhileHigher(op, operatorStack, operandStack, posStack)
}

// parseSingularExpression handles a single operand of a binary expression:
// either a possibly-applied variable or parenthesised expression, or a
// self-contained atom.
func (p *Parser) parseSingularExpression(base, current int) (ast.Expr, int, error) {
	if p.peek().Type == lexer.LOWER_IDENT || p.peek().Type == lexer.LPAREN {
		return p.parseVarOrCall(base, current)
	}
	return p.parseContainedExpression(base, current)
}

// parseVarOrCall implements left-associative application by juxtaposition:
// a lowercase name or a parenthesised expression followed, while still in
// layout scope, by further atoms.
func (p *Parser) parseVarOrCall(base, current int) (ast.Expr, int, error) {
	tok := p.peek()
	pos := ast.Pos{Line: tok.Line, Column: tok.Column, File: p.file}
	var head ast.Expr
	if tok.Type == lexer.LPAREN {
		paren, curr, err := p.parseParenExpression(base, current)
		if err != nil {
			return nil, 0, err
		}
		head, current = paren, curr
	} else {
		p.advance()
		head = &ast.VarName{Name: ast.NewQualifiedName(tok.Literal), Pos: pos}
	}

	col, inScope := p.consumeToIndented(base, current)
	if !inScope {
		return head, col, nil
	}
	current = col

	var args []ast.Expr
	for {
		if p.peek().Type == lexer.OPERATOR {
			break
		}
		arg, curr, err := p.parseContainedExpression(base, current)
		if err != nil {
			break
		}
		args = append(args, arg)
		current = curr

		col, inScope := p.consumeToIndented(base, current)
		if inScope {
			current = col
		} else {
			break
		}
	}

	if len(args) == 0 {
		return head, current, nil
	}
	return &ast.Call{Function: head, Args: args, Pos: pos}, current, nil
}

// parseContainedExpression parses a single atom: a literal, a variable, a
// list, a parenthesised expression, or one of the layout-governed forms
// (if/case/let/lambda) when they appear as a function argument.
func (p *Parser) parseContainedExpression(base, current int) (ast.Expr, int, error) {
	t := p.peek()
	pos := ast.Pos{Line: t.Line, Column: t.Column, File: p.file}

	switch t.Type {
	case lexer.INT:
		p.advance()
		v, err := strconv.ParseInt(t.Literal, 10, 32)
		if err != nil {
			return nil, 0, err
		}
		return &ast.IntLit{Value: int32(v), Pos: pos}, current, nil
	case lexer.FLOAT:
		p.advance()
		v, err := strconv.ParseFloat(t.Literal, 32)
		if err != nil {
			return nil, 0, err
		}
		return &ast.FloatLit{Value: float32(v), Pos: pos}, current, nil
	case lexer.STRING:
		p.advance()
		return &ast.StringLit{Value: t.Literal, Pos: pos}, current, nil
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Pos: pos}, current, nil
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Pos: pos}, current, nil
	case lexer.LOWER_IDENT:
		p.advance()
		return &ast.VarName{Name: ast.NewQualifiedName(t.Literal), Pos: pos}, current, nil
	case lexer.LBRACKET:
		return p.parseListLiteral(base, current)
	case lexer.LPAREN:
		return p.parseParenExpression(base, current)
	case lexer.IF:
		return p.parseIfExpression(base, current)
	case lexer.CASE:
		return p.parseCaseExpression(base, current)
	case lexer.LET:
		return p.parseLetExpression(base, current)
	case lexer.BACKSLASH:
		return p.parseLambdaExpression(base, current)
	default:
		return nil, 0, p.unexpectedToken("expression")
	}
}

func (p *Parser) parseListLiteral(base, current int) (ast.Expr, int, error) {
	start := p.pos_()
	p.advance() // '['

	if p.peek().Type == lexer.RBRACKET {
		p.advance()
		return &ast.ListLit{Pos: start}, current, nil
	}

	var elements []ast.Expr
	for {
		col, err := p.mustConsumeToAtLeast(base, current)
		if err != nil {
			return nil, 0, err
		}
		elem, curr, err := p.parseExpression(col, col)
		if err != nil {
			return nil, 0, err
		}
		elements = append(elements, elem)
		current = curr

		current, err = p.mustConsumeToAtLeast(base, current)
		if err != nil {
			return nil, 0, err
		}
		if p.peek().Type == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(lexer.RBRACKET, "]"); err != nil {
		return nil, 0, err
	}
	return &ast.ListLit{Elements: elements, Pos: start}, current, nil
}

func (p *Parser) parseParenExpression(base, current int) (ast.Expr, int, error) {
	p.advance() // '('
	col, err := p.mustConsumeToAtLeast(base, current)
	if err != nil {
		return nil, 0, err
	}
	expr, curr, err := p.parseExpression(col, col)
	if err != nil {
		return nil, 0, err
	}
	curr, err = p.mustConsumeToAtLeast(base, curr)
	if err != nil {
		return nil, 0, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, 0, err
	}
	return expr, curr, nil
}

func (p *Parser) parseIfExpression(base, current int) (ast.Expr, int, error) {
	start := p.pos_()
	p.advance() // 'if'

	current, err := p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	cond, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}

	current, err = p.mustConsumeToMatching(base, current)
	if err != nil {
		return nil, 0, err
	}
	if _, err := p.expect(lexer.THEN, "then"); err != nil {
		return nil, 0, err
	}

	current, err = p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	thenBranch, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}

	current, err = p.mustConsumeToMatching(base, current)
	if err != nil {
		return nil, 0, err
	}
	if _, err := p.expect(lexer.ELSE, "else"); err != nil {
		return nil, 0, err
	}

	current, err = p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	elseBranch, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}

	return &ast.If{Cond: cond, Then: thenBranch, Else: elseBranch, Pos: start}, current, nil
}

func (p *Parser) parseCaseExpression(base, current int) (ast.Expr, int, error) {
	start := p.pos_()
	p.advance() // 'case'

	current, err := p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	scrutinee, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}

	current, err = p.mustConsumeToMatching(base, current)
	if err != nil {
		return nil, 0, err
	}
	if _, err := p.expect(lexer.OF, "of"); err != nil {
		return nil, 0, err
	}

	branchBase, err := p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}

	var branches []ast.CaseBranch
	current = branchBase
	for {
		pat, err := p.parseAtomPattern()
		if err != nil {
			return nil, 0, err
		}
		if _, err := p.expect(lexer.ARROW, "->"); err != nil {
			return nil, 0, err
		}
		bodyCol, err := p.mustConsumeToIndented(branchBase, current)
		if err != nil {
			return nil, 0, err
		}
		body, curr, err := p.parseExpression(bodyCol, bodyCol)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, ast.CaseBranch{Pattern: pat, Expr: body})
		current = curr

		col, inScope := p.consumeToIndented(base, current)
		if !inScope {
			return &ast.Case{Scrutinee: scrutinee, Branches: branches, Pos: start}, col, nil
		}
		if col != branchBase {
			return &ast.Case{Scrutinee: scrutinee, Branches: branches, Pos: start}, col, nil
		}
		current = col
	}
}

func (p *Parser) parseLetExpression(base, current int) (ast.Expr, int, error) {
	start := p.pos_()
	p.advance() // 'let'

	bindBase, err := p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}

	var bindings []ast.LetBinding
	current = bindBase
	for {
		binding, curr, err := p.parseLetBinding(bindBase, current)
		if err != nil {
			return nil, 0, err
		}
		bindings = append(bindings, binding)
		current = curr

		col, err := p.mustConsumeToMatching(base, current)
		if err != nil {
			return nil, 0, err
		}
		current = col
		if p.peek().Type == lexer.LOWER_IDENT && col == bindBase {
			continue
		}
		break
	}

	if _, err := p.expect(lexer.IN, "in"); err != nil {
		return nil, 0, err
	}
	current, err = p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	body, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}

	return &ast.Let{Bindings: bindings, Body: body, Pos: start}, current, nil
}

func (p *Parser) parseLetBinding(base, current int) (ast.LetBinding, int, error) {
	nameTok, err := p.expect(lexer.LOWER_IDENT, "binding name")
	if err != nil {
		return ast.LetBinding{}, 0, err
	}

	var args []ast.Pattern
	for p.peek().Type == lexer.LOWER_IDENT || p.peek().Type == lexer.UNDERSCORE {
		pat, err := p.parseAtomPattern()
		if err != nil {
			return ast.LetBinding{}, 0, err
		}
		args = append(args, pat)
	}

	if _, err := p.expect(lexer.EQUALS, "="); err != nil {
		return ast.LetBinding{}, 0, err
	}

	col, inScope := p.consumeToIndented(base, current)
	if !inScope {
		return ast.LetBinding{}, 0, p.indentError()
	}
	expr, curr, err := p.parseExpression(col, col)
	if err != nil {
		return ast.LetBinding{}, 0, err
	}

	return ast.LetBinding{Name: nameTok.Literal, Args: args, Expr: expr}, curr, nil
}

func (p *Parser) parseLambdaExpression(base, current int) (ast.Expr, int, error) {
	start := p.pos_()
	p.advance() // backslash

	var args []ast.Pattern
	for p.peek().Type == lexer.LOWER_IDENT || p.peek().Type == lexer.UNDERSCORE {
		pat, err := p.parseAtomPattern()
		if err != nil {
			return nil, 0, err
		}
		args = append(args, pat)
	}
	if _, err := p.expect(lexer.ARROW, "->"); err != nil {
		return nil, 0, err
	}
	current, err := p.mustConsumeToIndented(base, current)
	if err != nil {
		return nil, 0, err
	}
	body, current, err := p.parseExpression(current, current)
	if err != nil {
		return nil, 0, err
	}
	return &ast.Lambda{Args: args, Body: body, Pos: start}, current, nil
}
