// Package parser builds a Module AST from normalized source text using an
// indentation-sensitive recursive-descent grammar with a shunting-yard
// expression parser.
package parser

import (
	"strconv"
	"strings"

	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/errors"
	"github.com/erm-lang/erm/internal/lexer"
)

// infixInfo is the precedence/associativity/backing-function metadata for
// one operator symbol.
type infixInfo struct {
	Precedence    int
	Associativity ast.Associativity
	FunctionName  string
}

// defaultPrecedence is the Elm-derived table spec.md's §4.1 describes.
var defaultPrecedence = map[string]infixInfo{
	"*":  {7, ast.AssocLeft, "Basics.mul"},
	"/":  {7, ast.AssocLeft, "Basics.div"},
	"+":  {6, ast.AssocLeft, "Basics.add"},
	"-":  {6, ast.AssocLeft, "Basics.sub"},
	"++": {5, ast.AssocRight, "Basics.append"},
	"::": {5, ast.AssocRight, "Basics.cons"},
	"==": {4, ast.AssocNon, "Basics.eq"},
	"/=": {4, ast.AssocNon, "Basics.neq"},
	"<":  {4, ast.AssocNon, "Basics.lt"},
	">":  {4, ast.AssocNon, "Basics.gt"},
	"<=": {4, ast.AssocNon, "Basics.le"},
	">=": {4, ast.AssocNon, "Basics.ge"},
	"&&": {3, ast.AssocRight, "Basics.and"},
	"||": {2, ast.AssocRight, "Basics.or"},
	"|>": {1, ast.AssocLeft, "Basics.pipeRight"},
	"<|": {0, ast.AssocRight, "Basics.pipeLeft"},
}

// Parser consumes a fully-scanned token stream and produces a Module.
type Parser struct {
	toks    []lexer.Token
	pos     int
	file    string
	infixes map[string]infixInfo
}

// New scans source completely and returns a Parser ready to Parse it.
func New(source, file string) *Parser {
	lx := lexer.New(source, file)
	var toks []lexer.Token
	for {
		tok := lx.NextToken()
		toks = append(toks, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}
	p := &Parser{toks: toks, file: file, infixes: map[string]infixInfo{}}
	for op, info := range defaultPrecedence {
		p.infixes[op] = info
	}
	p.scanInfixDeclarations()
	return p
}

// scanInfixDeclarations makes a first pass over the token stream recording
// user `infix`/`infixl`/`infixr` statements, so forward references to a
// user-declared operator inside the same module still resolve.
func (p *Parser) scanInfixDeclarations() {
	for i := 0; i < len(p.toks); i++ {
		t := p.toks[i]
		var assoc ast.Associativity
		switch t.Type {
		case lexer.INFIXL:
			assoc = ast.AssocLeft
		case lexer.INFIXR:
			assoc = ast.AssocRight
		case lexer.INFIX:
			assoc = ast.AssocNon
		default:
			continue
		}
		j := i + 1
		if j >= len(p.toks) || p.toks[j].Type != lexer.INT {
			continue
		}
		prec, err := strconv.Atoi(p.toks[j].Literal)
		if err != nil {
			continue
		}
		j++
		if j >= len(p.toks) || p.toks[j].Type != lexer.LPAREN {
			continue
		}
		j++
		if j >= len(p.toks) || p.toks[j].Type != lexer.OPERATOR {
			continue
		}
		op := p.toks[j].Literal
		j++
		if j >= len(p.toks) || p.toks[j].Type != lexer.RPAREN {
			continue
		}
		j++
		if j >= len(p.toks) || p.toks[j].Type != lexer.EQUALS {
			continue
		}
		j++
		if j >= len(p.toks) || p.toks[j].Type != lexer.LOWER_IDENT {
			continue
		}
		fn := p.toks[j].Literal
		p.infixes[op] = infixInfo{Precedence: prec, Associativity: assoc, FunctionName: fn}
	}
}

func (p *Parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) pos_() ast.Pos {
	t := p.peek()
	return ast.Pos{Line: t.Line, Column: t.Column, File: p.file}
}

func tokenDescription(t lexer.Token) string {
	if t.Literal != "" {
		return t.Type.String() + " " + t.Literal
	}
	return t.Type.String()
}

func (p *Parser) unexpectedToken(expected string) error {
	t := p.peek()
	return &unexpectedTokenError{
		err: errors.UnexpectedToken(p.file, t.Line, t.Column, tokenDescription(t), expected),
	}
}

// unexpectedTokenError lets callers recover the underlying *errors.Error
// while satisfying the plain `error` interface elsewhere.
type unexpectedTokenError struct{ err *errors.Error }

func (e *unexpectedTokenError) Error() string { return e.err.Error() }
func (e *unexpectedTokenError) Unwrap() error { return e.err }

func (p *Parser) expect(t lexer.TokenType, expected string) (lexer.Token, error) {
	if p.peek().Type != t {
		return lexer.Token{}, p.unexpectedToken(expected)
	}
	return p.advance(), nil
}

// Parse runs the full module grammar: header, imports, statements.
func (p *Parser) Parse() (*ast.Module, error) {
	start := p.pos_()

	if _, err := p.expect(lexer.MODULE, "module"); err != nil {
		return nil, err
	}
	name, err := p.parseUpperPath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EXPOSING, "exposing"); err != nil {
		return nil, err
	}
	exposing, err := p.parseExposing()
	if err != nil {
		return nil, err
	}

	imports, err := p.parseImports()
	if err != nil {
		return nil, err
	}

	statements, err := p.parseStatements()
	if err != nil {
		return nil, err
	}

	if p.peek().Type != lexer.EOF {
		t := p.peek()
		return nil, errors.New(errors.ParTokensRemaining, p.file, t.Line, t.Column, "unexpected trailing tokens: "+tokenDescription(t))
	}

	return &ast.Module{
		Name:       name,
		Exposing:   exposing,
		Imports:    imports,
		Statements: statements,
		Pos:        start,
	}, nil
}

// parseUpperPath parses a dotted module path such as `String.Extra`.
func (p *Parser) parseUpperPath() ([]string, error) {
	tok, err := p.expect(lexer.UPPER_IDENT, "module path")
	if err != nil {
		return nil, err
	}
	return strings.Split(tok.Literal, "."), nil
}

func (p *Parser) parseExposing() (ast.Exposing, error) {
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return ast.Exposing{}, err
	}
	if p.peek().Type == lexer.DOTDOT {
		p.advance()
		if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
			return ast.Exposing{}, err
		}
		return ast.Exposing{All: true}, nil
	}

	var items []ast.ExposingItem
	for {
		item, err := p.parseExposingItem()
		if err != nil {
			return ast.Exposing{}, err
		}
		items = append(items, item)
		if p.peek().Type == lexer.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return ast.Exposing{}, err
	}
	return ast.Exposing{Items: items}, nil
}

func (p *Parser) parseExposingItem() (ast.ExposingItem, error) {
	switch p.peek().Type {
	case lexer.LPAREN:
		p.advance()
		tok, err := p.expect(lexer.OPERATOR, "operator")
		if err != nil {
			return ast.ExposingItem{}, err
		}
		if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
			return ast.ExposingItem{}, err
		}
		return ast.ExposingItem{Operator: true, Name: tok.Literal}, nil
	case lexer.LOWER_IDENT, lexer.UPPER_IDENT:
		tok := p.advance()
		return ast.ExposingItem{Name: tok.Literal}, nil
	default:
		return ast.ExposingItem{}, p.unexpectedToken("exposed name")
	}
}

func (p *Parser) parseImports() ([]*ast.Import, error) {
	var imports []*ast.Import
	for p.peek().Type == lexer.IMPORT {
		start := p.pos_()
		p.advance()
		name, err := p.parseUpperPath()
		if err != nil {
			return nil, err
		}
		imp := &ast.Import{Module: name, Pos: start}

		if p.peek().Type == lexer.AS {
			p.advance()
			alias, err := p.parseUpperPath()
			if err != nil {
				return nil, err
			}
			imp.Alias = alias
		}

		if p.peek().Type == lexer.EXPOSING {
			p.advance()
			exposing, err := p.parseExposing()
			if err != nil {
				return nil, err
			}
			imp.Exposing = &exposing
		}

		imports = append(imports, imp)
	}
	return imports, nil
}

func (p *Parser) parseStatements() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		switch p.peek().Type {
		case lexer.LOWER_IDENT:
			stmt, err := p.parseBindingOrFunction()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case lexer.INFIXL, lexer.INFIXR, lexer.INFIX:
			stmt, err := p.parseInfixStatement()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		case lexer.TYPE:
			stmt, err := p.parseTypeStatement()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		default:
			return stmts, nil
		}
	}
}

func (p *Parser) parseBindingOrFunction() (ast.Stmt, error) {
	start := p.pos_()

	// A `name : Type` line is a TypeSignature, not a binding.
	if p.peekAt(1).Type == lexer.COLON {
		nameTok := p.advance()
		p.advance() // ':'
		typ, err := p.parseType(0, 0)
		if err != nil {
			return nil, err
		}
		return &ast.TypeSignature{Name: nameTok.Literal, Type: typ, Pos: start}, nil
	}

	nameTok := p.advance()

	var args []ast.Pattern
	for p.peek().Type == lexer.LOWER_IDENT || p.peek().Type == lexer.UNDERSCORE {
		pat, err := p.parseAtomPattern()
		if err != nil {
			return nil, err
		}
		args = append(args, pat)
	}

	if _, err := p.expect(lexer.EQUALS, "="); err != nil {
		return nil, err
	}

	base := 0
	current, inScope := p.consumeToIndented(base, 0)
	if !inScope {
		return nil, p.indentError()
	}
	expr, _, err := p.parseExpression(current, current)
	if err != nil {
		return nil, err
	}

	if _, err := p.mustConsumeToMatching(base, current); err != nil {
		return nil, err
	}

	if len(args) == 0 {
		return &ast.Binding{Name: nameTok.Literal, Expr: expr, Pos: start}, nil
	}
	return &ast.Function{Name: nameTok.Literal, Args: args, Expr: expr, Pos: start}, nil
}

func (p *Parser) parseInfixStatement() (ast.Stmt, error) {
	start := p.pos_()
	var assoc ast.Associativity
	switch p.advance().Type {
	case lexer.INFIXL:
		assoc = ast.AssocLeft
	case lexer.INFIXR:
		assoc = ast.AssocRight
	default:
		assoc = ast.AssocNon
	}
	precTok, err := p.expect(lexer.INT, "precedence")
	if err != nil {
		return nil, err
	}
	prec, convErr := strconv.Atoi(precTok.Literal)
	if convErr != nil || prec < 0 || prec > 9 {
		return nil, errors.New(errors.ParUnexpectedToken, p.file, precTok.Line, precTok.Column, "precedence must be 0..9")
	}
	if _, err := p.expect(lexer.LPAREN, "("); err != nil {
		return nil, err
	}
	opTok, err := p.expect(lexer.OPERATOR, "operator")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EQUALS, "="); err != nil {
		return nil, err
	}
	fnTok, err := p.expect(lexer.LOWER_IDENT, "function name")
	if err != nil {
		return nil, err
	}
	p.infixes[opTok.Literal] = infixInfo{Precedence: prec, Associativity: assoc, FunctionName: fnTok.Literal}
	return &ast.Infix{
		Operator:      opTok.Literal,
		Associativity: assoc,
		Precedence:    prec,
		FunctionName:  fnTok.Literal,
		Pos:           start,
	}, nil
}

func (p *Parser) parseAtomPattern() (ast.Pattern, error) {
	t := p.peek()
	switch t.Type {
	case lexer.UNDERSCORE:
		p.advance()
		return &ast.WildcardPattern{Pos: ast.Pos{Line: t.Line, Column: t.Column, File: p.file}}, nil
	case lexer.LOWER_IDENT:
		p.advance()
		return &ast.NamePattern{Name: t.Literal, Pos: ast.Pos{Line: t.Line, Column: t.Column, File: p.file}}, nil
	case lexer.TRUE:
		p.advance()
		return &ast.BoolPattern{Value: true, Pos: ast.Pos{Line: t.Line, Column: t.Column, File: p.file}}, nil
	case lexer.FALSE:
		p.advance()
		return &ast.BoolPattern{Value: false, Pos: ast.Pos{Line: t.Line, Column: t.Column, File: p.file}}, nil
	case lexer.INT:
		p.advance()
		v, _ := strconv.Atoi(t.Literal)
		return &ast.IntPattern{Value: int32(v), Pos: ast.Pos{Line: t.Line, Column: t.Column, File: p.file}}, nil
	default:
		return nil, p.unexpectedToken("pattern")
	}
}
