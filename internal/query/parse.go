package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/gandalf/internal/ir"
)

// ParseError reports a syntax error in a filter expression.
type ParseError struct {
	Expr    string
	Pos     int // byte offset into Expr
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Expr, e.Pos, e.Message)
}

// Parse parses a filter expression into a Predicate.
//
// Supported syntax:
//   - "field == value", "field = value" → Equals
//   - "field != value" → NotEquals
//   - "expr and expr", "expr && expr" → And
//   - "expr or expr", "expr || expr" → Or
//   - "not expr", "!expr" → Not
//   - "false" on its own → Never
//   - parentheses for grouping
//
// Values are quoted strings ('x', or "x" with Go escapes), integers, true/false, null, or bare
// words (read as strings). Keywords are case-insensitive. "and" binds tighter
// than "or". An empty expression returns (nil, nil), which matches everything.
//
// Test predicates have no textual form; build them with FieldRef.Test.
func Parse(expr string) (Predicate, error) {
	p := &parser{src: expr}
	if err := p.lex(); err != nil {
		return nil, err
	}
	if len(p.toks) == 1 { // only EOF
		return nil, nil
	}

	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok.pos, "unexpected %q", tok.text)
	}
	return pred, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or for expressions known to be valid.
func MustParse(expr string) Predicate {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokWord
	tokString
	tokNumber
	tokEq
	tokNe
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type parser struct {
	src  string
	toks []token
	idx  int
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &ParseError{Expr: p.src, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func isWordRune(r rune, first bool) bool {
	if unicode.IsLetter(r) || r == '_' {
		return true
	}
	if first {
		return unicode.IsDigit(r)
	}
	return unicode.IsDigit(r) || r == '.' || r == '-' || r == ':' || r == '/'
}

// lex splits the source into tokens.
func (p *parser) lex() error {
	src := p.src
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			p.toks = append(p.toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			p.toks = append(p.toks, token{tokRParen, ")", i})
			i++
		case strings.HasPrefix(src[i:], "=="):
			p.toks = append(p.toks, token{tokEq, "==", i})
			i += 2
		case strings.HasPrefix(src[i:], "!="):
			p.toks = append(p.toks, token{tokNe, "!=", i})
			i += 2
		case c == '=':
			p.toks = append(p.toks, token{tokEq, "=", i})
			i++
		case c == '!':
			p.toks = append(p.toks, token{tokNot, "!", i})
			i++
		case strings.HasPrefix(src[i:], "&&"):
			p.toks = append(p.toks, token{tokAnd, "&&", i})
			i += 2
		case strings.HasPrefix(src[i:], "||"):
			p.toks = append(p.toks, token{tokOr, "||", i})
			i += 2
		case c == '\'' || c == '"':
			s, n, err := lexQuoted(src[i:])
			if err != nil {
				return p.errorf(i, "%v", err)
			}
			p.toks = append(p.toks, token{tokString, s, i})
			i += n
		case (c == '-' || c == '+') && i+1 < len(src) && src[i+1] >= '0' && src[i+1] <= '9':
			j := i + 1
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			p.toks = append(p.toks, token{tokNumber, src[i:j], i})
			i = j
		default:
			j := i
			for j < len(src) {
				r := rune(src[j])
				if r >= 0x80 {
					// multi-byte runes are always word characters
					j++
					continue
				}
				if !isWordRune(r, j == i) {
					break
				}
				j++
			}
			if j == i {
				return p.errorf(i, "unexpected character %q", c)
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "and":
				p.toks = append(p.toks, token{tokAnd, word, i})
			case "or":
				p.toks = append(p.toks, token{tokOr, word, i})
			case "not":
				p.toks = append(p.toks, token{tokNot, word, i})
			default:
				kind := tokWord
				if isInteger(word) {
					kind = tokNumber
				}
				p.toks = append(p.toks, token{kind, word, i})
			}
			i = j
		}
	}
	p.toks = append(p.toks, token{tokEOF, "", len(src)})
	return nil
}

// lexQuoted reads a quoted string literal starting at s[0].
// Returns the unquoted value and the number of bytes consumed.
func lexQuoted(s string) (string, int, error) {
	quote := s[0]
	end := -1
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == quote {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return "", 0, fmt.Errorf("unterminated string")
	}

	// Double quotes follow Go syntax, which is what formatLiteral writes.
	if quote == '"' {
		text, err := strconv.Unquote(s[:end])
		if err != nil {
			return "", 0, fmt.Errorf("invalid string literal %s", s[:end])
		}
		return text, end, nil
	}

	var b strings.Builder
	for i := 1; i < end-1; i++ {
		c := s[i]
		if c == '\\' && i+1 < end-1 {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String(), end, nil
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p *parser) peek() token {
	return p.toks[p.idx]
}

func (p *parser) next() token {
	tok := p.toks[p.idx]
	if tok.kind != tokEOF {
		p.idx++
	}
	return tok
}

func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Predicate, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing.pos, "expected ')'")
		}
		return inner, nil
	case tokWord:
		if strings.EqualFold(tok.text, "false") && !p.comparisonNext() {
			return Never{}, nil
		}
		return p.parseComparison(tok.text)
	case tokEOF:
		return nil, p.errorf(tok.pos, "unexpected end of expression")
	default:
		return nil, p.errorf(tok.pos, "expected field name, got %q", tok.text)
	}
}

func (p *parser) comparisonNext() bool {
	k := p.peek().kind
	return k == tokEq || k == tokNe
}

func (p *parser) parseComparison(field string) (Predicate, error) {
	op := p.next()
	if op.kind != tokEq && op.kind != tokNe {
		return nil, p.errorf(op.pos, "expected == or != after %q", field)
	}

	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	if op.kind == tokEq {
		return Equals{Field: field, Value: val}, nil
	}
	return NotEquals{Field: field, Value: val}, nil
}

func (p *parser) parseLiteral() (ir.Value, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return ir.String(tok.text), nil
	case tokNumber:
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok.pos, "integer out of range: %s", tok.text)
		}
		return ir.Int(n), nil
	case tokWord:
		switch strings.ToLower(tok.text) {
		case "true":
			return ir.Bool(true), nil
		case "false":
			return ir.Bool(false), nil
		case "null":
			return ir.Null{}, nil
		}
		// Unquoted bare word is a string literal
		return ir.String(tok.text), nil
	default:
		return nil, p.errorf(tok.pos, "expected value, got %q", tok.text)
	}
}
