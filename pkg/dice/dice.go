// Package dice parses and rolls damage-dice expressions such as "1d8",
// "2d6+1" or "d4-1".
//
// # Determinism
//
// Dice never draw from global randomness. Every roll takes a Roller, which
// is satisfied by *rand.Rand from math/rand/v2; seeding that source makes a
// whole simulation run reproducible.
package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Roller draws a uniform integer in [0, n).
type Roller interface {
	IntN(n int) int
}

// ErrEmptyExpression indicates no dice expression was given.
var ErrEmptyExpression = errors.New("dice expression is empty")

// ErrInvalidDie indicates a term with a non-positive count or side number.
var ErrInvalidDie = errors.New("dice must have positive sides and count")

var diceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Die", Pattern: `[dD]`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Op", Pattern: `[+-]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Grammar: term ( ("+" | "-") term )*, where term is "N", "NdS" or "dS".
type diceAST struct {
	Head *termAST   `parser:"@@"`
	Tail []*tailAST `parser:"@@*"`
}

type tailAST struct {
	Op   string   `parser:"@Op"`
	Term *termAST `parser:"@@"`
}

type termAST struct {
	Count string `parser:"@Int?"`
	Die   string `parser:"( @Die"`
	Sides string `parser:"  @Int )?"`
}

var parser = participle.MustBuild[diceAST](
	participle.Lexer(diceLexer),
)

// Term is one signed summand of an expression. Sides == 0 marks a flat
// modifier worth Sign*Count.
type Term struct {
	Sign  int
	Count int
	Sides int
}

// Expr is a parsed dice expression.
type Expr struct {
	Terms []Term
	raw   string
}

// Parse parses a dice expression.
func Parse(expr string) (Expr, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Expr{}, ErrEmptyExpression
	}

	ast, err := parser.ParseString("", trimmed)
	if err != nil {
		return Expr{}, fmt.Errorf("failed to parse dice expression %q: %w", expr, err)
	}

	head, err := ast.Head.term(1)
	if err != nil {
		return Expr{}, err
	}
	out := Expr{Terms: []Term{head}, raw: trimmed}
	for _, t := range ast.Tail {
		sign := 1
		if t.Op == "-" {
			sign = -1
		}
		term, err := t.Term.term(sign)
		if err != nil {
			return Expr{}, err
		}
		out.Terms = append(out.Terms, term)
	}
	return out, nil
}

// MustParse is like Parse but panics on error. Use it for expressions baked
// into the code.
func MustParse(expr string) Expr {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func (t *termAST) term(sign int) (Term, error) {
	if t == nil || (t.Count == "" && t.Die == "") {
		return Term{}, ErrInvalidDie
	}
	count := 1
	if t.Count != "" {
		n, err := strconv.Atoi(t.Count)
		if err != nil {
			return Term{}, fmt.Errorf("invalid dice count %q: %w", t.Count, err)
		}
		count = n
	}
	if t.Die == "" {
		return Term{Sign: sign, Count: count}, nil
	}
	sides, err := strconv.Atoi(t.Sides)
	if err != nil {
		return Term{}, fmt.Errorf("invalid dice sides %q: %w", t.Sides, err)
	}
	if sides <= 0 || count <= 0 {
		return Term{}, ErrInvalidDie
	}
	return Term{Sign: sign, Count: count, Sides: sides}, nil
}

// Roll draws every die in the expression and returns the signed total.
func (e Expr) Roll(r Roller) int {
	total := 0
	for _, t := range e.Terms {
		if t.Sides == 0 {
			total += t.Sign * t.Count
			continue
		}
		for i := 0; i < t.Count; i++ {
			total += t.Sign * Die(r, t.Sides)
		}
	}
	return total
}

// Min returns the lowest total the expression can produce.
func (e Expr) Min() int {
	total := 0
	for _, t := range e.Terms {
		switch {
		case t.Sides == 0:
			total += t.Sign * t.Count
		case t.Sign > 0:
			total += t.Count
		default:
			total -= t.Count * t.Sides
		}
	}
	return total
}

// Max returns the highest total the expression can produce.
func (e Expr) Max() int {
	total := 0
	for _, t := range e.Terms {
		switch {
		case t.Sides == 0:
			total += t.Sign * t.Count
		case t.Sign > 0:
			total += t.Count * t.Sides
		default:
			total -= t.Count
		}
	}
	return total
}

func (e Expr) String() string {
	return e.raw
}

// Die rolls a single die with the given number of sides, returning 1..sides.
func Die(r Roller, sides int) int {
	return r.IntN(sides) + 1
}

// Roll parses and rolls expr in one step.
func Roll(r Roller, expr string) (int, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return e.Roll(r), nil
}
