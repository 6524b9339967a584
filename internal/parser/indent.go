package parser

import (
	"github.com/erm-lang/erm/internal/errors"
	"github.com/erm-lang/erm/internal/lexer"
)

// The lexer does not emit Space/NewLine tokens the way the original
// implementation's did; it already resolves each token's Line/Column.
// These helpers reproduce the same layout algorithm (Indent{count,status})
// by comparing the next token's line against the line of the token most
// recently consumed: if it advanced, the indentation is "fresh" and its
// column is compared against base; otherwise the token continues the
// current line and every scope/match test is trivially satisfied.

func (p *Parser) lastLine() int {
	if p.pos == 0 {
		return p.peek().Line
	}
	return p.toks[p.pos-1].Line
}

// freshColumn reports whether the next token starts a new line relative to
// the last consumed token, and if so, its indentation column (0-based).
func (p *Parser) freshColumn() (fresh bool, col int) {
	tok := p.peek()
	if tok.Type == lexer.EOF {
		return false, 0
	}
	if tok.Line > p.lastLine() {
		return true, tok.Column - 1
	}
	return false, 0
}

// consumeToIndented mirrors consume_to_indented: returns the column to use
// as the new `current` and whether the next token is still within base's
// scope.
func (p *Parser) consumeToIndented(base, current int) (int, bool) {
	if p.peek().Type == lexer.EOF {
		return 0, false
	}
	fresh, col := p.freshColumn()
	if !fresh {
		return current, true
	}
	if col > base {
		return col, true
	}
	return col, false
}

func (p *Parser) mustConsumeToIndented(base, current int) (int, error) {
	if p.peek().Type == lexer.EOF {
		return 0, errors.New(errors.ParUnexpectedEnd, p.file, 0, 0, "unexpected end of input")
	}
	fresh, col := p.freshColumn()
	if !fresh {
		return current, nil
	}
	if col > base {
		return col, nil
	}
	return 0, p.indentError()
}

func (p *Parser) mustConsumeToAtLeast(base, current int) (int, error) {
	if p.peek().Type == lexer.EOF {
		return 0, nil
	}
	fresh, col := p.freshColumn()
	if !fresh {
		return current, nil
	}
	if col >= base {
		return col, nil
	}
	return 0, p.indentError()
}

func (p *Parser) mustConsumeToMatching(base, current int) (int, error) {
	if p.peek().Type == lexer.EOF {
		return 0, nil
	}
	fresh, col := p.freshColumn()
	if !fresh {
		return current, nil
	}
	if col == base {
		return col, nil
	}
	return 0, p.indentError()
}

func (p *Parser) indentError() error {
	tok := p.peek()
	return errors.New(errors.ParIndent, p.file, tok.Line, tok.Column, "unexpected indentation")
}
