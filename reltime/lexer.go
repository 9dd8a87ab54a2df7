package reltime

import (
	"github.com/ngrash/go-reltime/timeerr"
)

// TokenKind represents the type of token.
type TokenKind int

const (
	TokenSign TokenKind = iota
	TokenAlign
	TokenNumber
	TokenUnit
)

func (k TokenKind) String() string {
	switch k {
	case TokenSign:
		return "sign"
	case TokenAlign:
		return "align"
	case TokenNumber:
		return "number"
	case TokenUnit:
		return "unit"
	}
	return "unknown"
}

// Token represents a lexed token.
type Token struct {
	Kind TokenKind
	Span timeerr.Span
	Text string
}

// lexer is the internal lexer state.
type lexer struct {
	input string
	pos   int
}

// Tokenize splits an expression into tokens. A term is a sign, an optional
// 'a', digits, and a unit abbreviation running up to the next whitespace.
func Tokenize(input string) ([]Token, error) {
	l := &lexer{input: input}
	return l.tokenize()
}

func (l *lexer) tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			return tokens, nil
		}
		term, err := l.lexTerm()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, term...)
	}
}

func (l *lexer) lexTerm() ([]Token, error) {
	var tokens []Token

	start := l.pos
	ch := l.input[l.pos]
	if ch != '+' && ch != '-' {
		return nil, l.errorAt("expected '+' or '-'", start, start+1)
	}
	l.pos++
	tokens = append(tokens, Token{Kind: TokenSign, Span: timeerr.Span{Start: start, End: l.pos}, Text: string(ch)})

	if l.pos < len(l.input) && l.input[l.pos] == 'a' {
		tokens = append(tokens, Token{Kind: TokenAlign, Span: timeerr.Span{Start: l.pos, End: l.pos + 1}, Text: "a"})
		l.pos++
	}

	start = l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return nil, l.errorAt("expected a count", start, start+1)
	}
	tokens = append(tokens, Token{Kind: TokenNumber, Span: timeerr.Span{Start: start, End: l.pos}, Text: l.input[start:l.pos]})

	// "+0amth" is accepted as a spelling of "+a0mth". No unit starts with 'a'.
	if l.pos < len(l.input) && l.input[l.pos] == 'a' && tokens[1].Kind != TokenAlign {
		tokens = append(tokens, Token{Kind: TokenAlign, Span: timeerr.Span{Start: l.pos, End: l.pos + 1}, Text: "a"})
		l.pos++
	}

	start = l.pos
	for l.pos < len(l.input) && !isWhitespace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		return nil, l.errorAt("expected a unit", start, start+1)
	}
	tokens = append(tokens, Token{Kind: TokenUnit, Span: timeerr.Span{Start: start, End: l.pos}, Text: l.input[start:l.pos]})
	return tokens, nil
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) && isWhitespace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *lexer) errorAt(msg string, start, end int) error {
	return timeerr.BadExpression("reltime.Parse", msg, &timeerr.Span{Start: start, End: end}, l.input)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
