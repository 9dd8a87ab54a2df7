package reltime

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ngrash/go-reltime/timeerr"
)

// parser is the internal parser state.
type parser struct {
	tokens []Token
	pos    int
	input  string
}

// Parse parses a relative time expression such as "+1biz -a2hr".
func Parse(input string) (Expr, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return Expr{}, err
	}
	if len(tokens) == 0 {
		return Expr{}, timeerr.BadExpression("reltime.Parse", "empty expression", &timeerr.Span{Start: 0, End: 0}, input)
	}

	p := &parser{tokens: tokens, input: input}
	expr := Expr{Source: input}
	for p.peek() != nil {
		term, err := p.parseTerm()
		if err != nil {
			return Expr{}, err
		}
		expr.Terms = append(expr.Terms, term)
	}
	return expr, nil
}

// MustParse is like Parse but panics if the expression cannot be parsed.
func MustParse(input string) Expr {
	expr, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return expr
}

func (p *parser) peek() *Token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *parser) advance() *Token {
	tok := p.peek()
	if tok != nil {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind TokenKind) (*Token, error) {
	tok := p.advance()
	if tok == nil {
		end := len(p.input)
		return nil, p.errorAt(fmt.Sprintf("expected %v", kind), timeerr.Span{Start: end, End: end})
	}
	if tok.Kind != kind {
		return nil, p.errorAt(fmt.Sprintf("expected %v, got %q", kind, tok.Text), tok.Span)
	}
	return tok, nil
}

func (p *parser) parseTerm() (Term, error) {
	sign, err := p.expect(TokenSign)
	if err != nil {
		return Term{}, err
	}
	term := Term{Sign: 1}
	if sign.Text == "-" {
		term.Sign = -1
	}

	if tok := p.peek(); tok != nil && tok.Kind == TokenAlign {
		p.advance()
		term.Align = true
	}

	num, err := p.expect(TokenNumber)
	if err != nil {
		return Term{}, err
	}
	n, err := strconv.Atoi(num.Text)
	if err != nil || n > math.MaxInt32 {
		return Term{}, p.errorAt("count out of range", num.Span)
	}
	term.Count = n

	if tok := p.peek(); tok != nil && tok.Kind == TokenAlign && !term.Align {
		p.advance()
		term.Align = true
	}

	unit, err := p.expect(TokenUnit)
	if err != nil {
		return Term{}, err
	}
	u, ok := ParseUnit(unit.Text)
	if !ok {
		return Term{}, p.errorAt(fmt.Sprintf("unknown unit %q", unit.Text), unit.Span)
	}
	term.Unit = u
	term.Span = timeerr.Span{Start: sign.Span.Start, End: unit.Span.End}

	if err := term.check(); err != nil {
		return Term{}, p.errorAt(err.Error(), term.Span)
	}
	return term, nil
}

func (p *parser) errorAt(msg string, span timeerr.Span) error {
	return timeerr.BadExpression("reltime.Parse", msg, &span, p.input)
}

// check reports terms that can never be applied, regardless of the instant.
func (t Term) check() error {
	if t.Sign != 1 && t.Sign != -1 {
		return fmt.Errorf("sign must be +1 or -1, got %d", t.Sign)
	}
	if t.Count < 0 {
		return fmt.Errorf("negative count %d", t.Count)
	}
	if t.Count == 0 && !t.Align {
		return fmt.Errorf("a count of 0 requires alignment")
	}
	if _, ok := unitNames[t.Unit]; !ok {
		return fmt.Errorf("unknown unit %v", t.Unit)
	}
	if !t.Align || t.Count == 0 {
		if t.Align && t.Unit == Ms {
			return fmt.Errorf("cannot align to 0 ms")
		}
		if t.Align && t.Unit == Week {
			return fmt.Errorf("weeks cannot be aligned")
		}
		return nil
	}

	divides := func(period int) error {
		if t.Count >= period || period%t.Count != 0 {
			return fmt.Errorf("alignment count %d does not divide %d", t.Count, period)
		}
		return nil
	}
	switch t.Unit {
	case Hr:
		return divides(24)
	case Min, Sec:
		return divides(60)
	case Ms:
		return divides(1000)
	case Week:
		return fmt.Errorf("weeks cannot be aligned")
	case Month:
		return divides(12)
	case Quarter:
		if 3*t.Count >= 12 || 12%(3*t.Count) != 0 {
			return fmt.Errorf("alignment count %d does not divide 4", t.Count)
		}
	case TenDay:
		if t.Count > 3 {
			return fmt.Errorf("alignment count %d is not 1, 2 or 3", t.Count)
		}
	}
	return nil
}
