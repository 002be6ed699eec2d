// Package parse turns textual ODE input like "y'' + 3y' - 4y = 0" into
// symexpr trees. It accepts prime notation for derivatives, implicit
// multiplication by juxtaposition ("2x", "x sin(x)"), the caret for
// exponentiation, and an optional "= rhs" part.
package parse

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/njchilds90/odekit/symexpr"
)

// Equation parses a full ODE. Input without '=' is treated as
// "input = 0". The result is normalized to residual form, LHS - RHS.
func Equation(input string) (symexpr.Expr, error) {
	parts := strings.Split(input, "=")
	switch len(parts) {
	case 1:
		return Expr(parts[0])
	case 2:
		lhs, err := Expr(parts[0])
		if err != nil {
			return nil, err
		}
		rhs, err := Expr(parts[1])
		if err != nil {
			return nil, err
		}
		return symexpr.Eq(lhs, rhs).Residual(), nil
	}
	return nil, fmt.Errorf("parse: more than one '=' in %q", input)
}

// Expr parses a single expression.
func Expr(input string) (symexpr.Expr, error) {
	p := &parser{toks: lex(input), input: input}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, fmt.Errorf("parse: unexpected %q in %q", p.peek().text, input)
	}
	return e.Simplify(), nil
}

// ============================================================
// Lexer
// ============================================================

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp    // + - * / ^
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
}

func lex(input string) []token {
	toks := []token{}
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNum, text: string(runes[i:j])})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			name := string(runes[i:j])
			// trailing primes attach to the identifier
			for j < len(runes) && runes[j] == '\'' {
				name += "'"
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: name})
			i = j
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")"})
			i++
		case r == '*' && i+1 < len(runes) && runes[i+1] == '*':
			// Python-style power operator
			toks = append(toks, token{kind: tokOp, text: "^"})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r)})
			i++
		default:
			toks = append(toks, token{kind: tokOp, text: string(r)})
			i++
		}
	}
	return append(toks, token{kind: tokEOF})
}

// ============================================================
// Parser
// ============================================================

type parser struct {
	toks  []token
	pos   int
	input string
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }
func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

func (p *parser) parseSum() (symexpr.Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			right = symexpr.Negate(right)
		}
		left = symexpr.AddOf(left, right)
	}
}

func (p *parser) parseProduct() (symexpr.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch {
		case t.kind == tokOp && t.text == "*":
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symexpr.MulOf(left, right)
		case t.kind == tokOp && t.text == "/":
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symexpr.MulOf(left, symexpr.PowOf(right, symexpr.N(-1)))
		case t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen:
			// implicit multiplication: 2x, x sin(x), 3(x+1)
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symexpr.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (symexpr.Expr, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return symexpr.Negate(inner), nil
		}
		return inner, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (symexpr.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp && t.text == "^" {
		p.next()
		// right associative, sign allowed in exponent
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if f, isE := base.(*symexpr.Func); isE && f.FuncName() == "exp" {
			if n, ok := f.Arg().(*symexpr.Num); ok && n.IsOne() {
				return symexpr.ExpOf(exp), nil
			}
		}
		return symexpr.PowOf(base, exp), nil
	}
	return base, nil
}

var funcNames = map[string]func(symexpr.Expr) symexpr.Expr{
	"sin":  symexpr.SinOf,
	"cos":  symexpr.CosOf,
	"tan":  symexpr.TanOf,
	"exp":  symexpr.ExpOf,
	"ln":   symexpr.LnOf,
	"log":  symexpr.LnOf,
	"sqrt": symexpr.SqrtOf,
	"abs":  symexpr.AbsOf,
	"asin": symexpr.AsinOf,
	"acos": symexpr.AcosOf,
	"atan": symexpr.AtanOf,
	"sinh": symexpr.SinhOf,
	"cosh": symexpr.CoshOf,
	"tanh": symexpr.TanhOf,
}

func (p *parser) parseAtom() (symexpr.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r := new(big.Rat)
		if _, ok := r.SetString(t.text); !ok {
			return nil, fmt.Errorf("parse: bad number %q", t.text)
		}
		return symexpr.NRat(r), nil
	case tokIdent:
		return p.parseIdent(t.text)
	case tokLParen:
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("parse: missing ')' in %q", p.input)
		}
		p.next()
		return inner, nil
	}
	return nil, fmt.Errorf("parse: unexpected %q in %q", t.text, p.input)
}

func (p *parser) parseIdent(name string) (symexpr.Expr, error) {
	base := strings.TrimRight(name, "'")
	primes := len(name) - len(base)

	if primes == 0 {
		if fn, ok := funcNames[base]; ok {
			if p.peek().kind != tokLParen {
				return nil, fmt.Errorf("parse: %s requires an argument", base)
			}
			p.next()
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tokRParen {
				return nil, fmt.Errorf("parse: missing ')' after %s", base)
			}
			p.next()
			return fn(arg), nil
		}
		switch base {
		case "pi":
			return symexpr.NFloat(math.Pi), nil
		case "e":
			return symexpr.ExpOf(symexpr.N(1)), nil
		}
	}

	if base == "y" {
		// "y(x)" and "y'(x)" mean the same as "y" and "y'"
		if p.peek().kind == tokLParen {
			save := p.pos
			p.next()
			if inner := p.peek(); inner.kind == tokIdent && inner.text == "x" {
				p.next()
				if p.peek().kind == tokRParen {
					p.next()
				} else {
					p.pos = save
				}
			} else {
				p.pos = save
			}
		}
		return symexpr.Y(primes), nil
	}
	if primes > 0 {
		return nil, fmt.Errorf("parse: primes only apply to y, got %q", name)
	}
	if len(base) == 1 {
		return symexpr.S(base), nil
	}
	return nil, fmt.Errorf("parse: unknown identifier %q", base)
}
