package parser

import (
	"github.com/erm-lang/erm/internal/ast"
	"github.com/erm-lang/erm/internal/lexer"
)

// parseType parses a `->`-chained sequence of single types, e.g.
// `Int -> List String -> String`.
func (p *Parser) parseType(base, current int) (ast.TypeExpr, error) {
	typ, err := p.parseSingleType(base, current)
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.ARROW {
		start := p.pos_()
		p.advance()
		next, err := p.parseSingleType(base, current)
		if err != nil {
			return nil, err
		}
		typ = &ast.TypeFunc{From: typ, To: next, Pos: start}
	}
	return typ, nil
}

// parseSingleType parses one type atom plus any directly-applied type
// arguments, stopping at `->` or `|`.
func (p *Parser) parseSingleType(base, current int) (ast.TypeExpr, error) {
	pos := p.pos_()
	var name ast.QualifiedName
	switch p.peek().Type {
	case lexer.UPPER_IDENT:
		name = ast.NewQualifiedName(p.advance().Literal)
	case lexer.LOWER_IDENT:
		tok := p.advance()
		return &ast.TypeVar{Name: tok.Literal, Pos: pos}, nil
	default:
		return nil, p.unexpectedToken("type")
	}

	var args []ast.TypeExpr
	for {
		col, inScope := p.consumeToIndented(base, current)
		if !inScope {
			break
		}
		current = col
		if p.peek().Type == lexer.ARROW || p.peek().Type == lexer.PIPE {
			break
		}
		switch p.peek().Type {
		case lexer.UPPER_IDENT:
			argPos := p.pos_()
			argName := ast.NewQualifiedName(p.advance().Literal)
			args = append(args, &ast.TypeName{Name: argName, Pos: argPos})
		case lexer.LOWER_IDENT:
			argPos := p.pos_()
			argTok := p.advance()
			args = append(args, &ast.TypeVar{Name: argTok.Literal, Pos: argPos})
		default:
			goto done
		}
	}
done:
	return &ast.TypeName{Name: name, Args: args, Pos: pos}, nil
}

func (p *Parser) parseTypeStatement() (ast.Stmt, error) {
	start := p.pos_()
	p.advance() // 'type'

	nameTok, err := p.expect(lexer.UPPER_IDENT, "type name")
	if err != nil {
		return nil, err
	}

	var typeVars []string
	for p.peek().Type == lexer.LOWER_IDENT {
		typeVars = append(typeVars, p.advance().Literal)
	}

	if _, err := p.expect(lexer.EQUALS, "="); err != nil {
		return nil, err
	}

	base, current := 0, 0
	current, err = p.mustConsumeToAtLeast(base, current)
	if err != nil {
		return nil, err
	}

	first, err := p.parseConstructor(base, current)
	if err != nil {
		return nil, err
	}
	constructors := []ast.Constructor{first}

	for p.peek().Type == lexer.PIPE {
		p.advance()
		ctor, err := p.parseConstructor(base, current)
		if err != nil {
			return nil, err
		}
		constructors = append(constructors, ctor)
	}

	return &ast.TypeDecl{Name: nameTok.Literal, TypeVariables: typeVars, Constructors: constructors, Pos: start}, nil
}

func (p *Parser) parseConstructor(base, current int) (ast.Constructor, error) {
	nameTok, err := p.expect(lexer.UPPER_IDENT, "constructor name")
	if err != nil {
		return ast.Constructor{}, err
	}

	var args []ast.TypeExpr
	for {
		col, inScope := p.consumeToIndented(base, current)
		if !inScope {
			break
		}
		current = col
		if p.peek().Type != lexer.UPPER_IDENT && p.peek().Type != lexer.LOWER_IDENT {
			break
		}
		arg, err := p.parseSingleType(base, current)
		if err != nil {
			return ast.Constructor{}, err
		}
		args = append(args, arg)
	}

	return ast.Constructor{Name: nameTok.Literal, Args: args}, nil
}
