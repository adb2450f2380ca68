package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// Expression is a parsed arithmetic formula over column references.
//
// Grammar:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | primary
//	primary = number | name | "{" any text "}" | "(" expr ")"
//
// Bare names run until whitespace, an operator or a parenthesis; braces allow
// names containing those characters.
type Expression struct {
	source string
	root   node
	refs   []string
}

// References returns the distinct column names used, in order of appearance
func (e *Expression) References() []string {
	out := make([]string, len(e.refs))
	copy(out, e.refs)
	return out
}

func (e *Expression) String() string { return e.source }

// Eval computes the formula for one row. ok is false when an operand is
// missing or non-numeric, on division by zero, or when the result is not finite.
func (e *Expression) Eval(row dataset.Row) (float64, bool) {
	v, ok := e.root.eval(row)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseExpression parses formula; syntax errors wrap core.ErrInvalidFormula
func ParseExpression(formula string) (*Expression, error) {
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty formula", core.ErrInvalidFormula)
	}

	p := &parser{tokens: tokens, seen: make(map[string]bool)}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected %q", core.ErrInvalidFormula, p.tokens[p.pos].text)
	}
	return &Expression{source: formula, root: root, refs: p.refs}, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokName
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("+-*/(){}", r)
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case strings.ContainsRune("+-*/", r):
			tokens = append(tokens, token{kind: tokOp, text: string(r)})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case r == '{':
			end := i + 1
			for end < len(runes) && runes[end] != '}' {
				end++
			}
			if end >= len(runes) {
				return nil, fmt.Errorf("%w: unclosed '{'", core.ErrInvalidFormula)
			}
			name := strings.TrimSpace(string(runes[i+1 : end]))
			if name == "" {
				return nil, fmt.Errorf("%w: empty column reference", core.ErrInvalidFormula)
			}
			tokens = append(tokens, token{kind: tokName, text: name})
			i = end + 1
		case r == '}':
			return nil, fmt.Errorf("%w: unexpected '}'", core.ErrInvalidFormula)
		default:
			end := i
			for end < len(runes) && !isDelimiter(runes[end]) {
				end++
			}
			word := string(runes[i:end])
			if f, err := strconv.ParseFloat(word, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				tokens = append(tokens, token{kind: tokNumber, text: word, num: f})
			} else {
				tokens = append(tokens, token{kind: tokName, text: word})
			}
			i = end
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	refs   []string
	seen   map[string]bool
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t, ok := p.peek()
	if ok && t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return negate{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of formula", core.ErrInvalidFormula)
	}
	p.pos++

	switch t.kind {
	case tokNumber:
		return literal(t.num), nil
	case tokName:
		if !p.seen[t.text] {
			p.seen[t.text] = true
			p.refs = append(p.refs, t.text)
		}
		return ref(t.text), nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing ')'", core.ErrInvalidFormula)
		}
		p.pos++
		return inner, nil
	}
	return nil, fmt.Errorf("%w: unexpected %q", core.ErrInvalidFormula, t.text)
}

type node interface {
	eval(row dataset.Row) (float64, bool)
}

type literal float64

func (l literal) eval(dataset.Row) (float64, bool) { return float64(l), true }

type ref string

func (r ref) eval(row dataset.Row) (float64, bool) {
	return row.Value(string(r)).Number()
}

type negate struct {
	operand node
}

func (n negate) eval(row dataset.Row) (float64, bool) {
	v, ok := n.operand.eval(row)
	return -v, ok
}

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval(row dataset.Row) (float64, bool) {
	l, ok := b.left.eval(row)
	if !ok {
		return 0, false
	}
	r, ok := b.right.eval(row)
	if !ok {
		return 0, false
	}
	switch b.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		if r == 0 {
			return 0, false
		}
		return l / r, true
	}
	return 0, false
}
