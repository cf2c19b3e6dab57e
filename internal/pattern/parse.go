// Package pattern compiles the rule pattern language into matchers.
//
// A pattern is literal text extended with:
//
//	@        the "vowels" variable of the bound language
//	<name>   any member of the variable "name"
//	^  ^^    start of a word, start of the whole input
//	$  $$    end of a word, end of the whole input
//	{X}      lookbehind when it opens the pattern, lookahead when it closes it
//	{~X}     the negative form of either
//	\c       the literal character c
//
// Variables are capture groups numbered in source order; replacements may
// refer to them as \1, \2 and so on.
package pattern

import "strings"

type Node interface{ node() }

// Literal matches its text exactly.
type Literal struct{ Text string }

// Variable matches one member of a named class and captures it.
type Variable struct {
	Name  string
	Group int
}

// Anchor is a zero-width word boundary. Strict anchors only accept the
// edges of the whole input.
type Anchor struct {
	End    bool
	Strict bool
}

type Direction uint8

const (
	Behind Direction = iota
	Ahead
)

type Polarity uint8

const (
	Positive Polarity = iota
	Negative
)

// Lookaround constrains the context of a match without consuming it.
type Lookaround struct {
	Direction Direction
	Polarity  Polarity
	Body      []Node
}

func (Literal) node()    {}
func (Variable) node()   {}
func (Anchor) node()     {}
func (Lookaround) node() {}

// Pattern is the parsed form of one rule pattern.
type Pattern struct {
	Source string
	Behind *Lookaround
	Body   []Node
	Ahead  *Lookaround
	// Groups lists variable names by capture group; Groups[0] is group 1.
	Groups []string
}

type parser struct {
	src    string
	runes  []rune
	pos    int
	groups []string
}

// Parse reads a pattern into its AST.
func Parse(src string) (*Pattern, error) {
	if src == "" {
		return nil, newError(src, -1, ErrSyntax, "empty pattern")
	}
	p := &parser{src: src, runes: []rune(src)}
	pat := &Pattern{Source: src}

	if p.peek() == '{' {
		la, err := p.lookaround(Behind)
		if err != nil {
			return nil, err
		}
		pat.Behind = la
	}

	body, err := p.sequence(false)
	if err != nil {
		return nil, err
	}
	pat.Body = body

	if p.peek() == '{' {
		la, err := p.lookaround(Ahead)
		if err != nil {
			return nil, err
		}
		pat.Ahead = la
		if !p.done() {
			return nil, newError(src, p.pos, ErrSyntax, "lookaround must open or close the pattern")
		}
	}
	pat.Groups = p.groups
	return pat, nil
}

func (p *parser) done() bool { return p.pos >= len(p.runes) }

func (p *parser) peek() rune {
	if p.done() {
		return 0
	}
	return p.runes[p.pos]
}

func (p *parser) lookaround(dir Direction) (*Lookaround, error) {
	start := p.pos
	p.pos++ // '{'
	la := &Lookaround{Direction: dir}
	if p.peek() == '~' {
		la.Polarity = Negative
		p.pos++
	}
	body, err := p.sequence(true)
	if err != nil {
		return nil, err
	}
	if p.peek() != '}' {
		return nil, newError(p.src, start, ErrSyntax, "unterminated lookaround")
	}
	p.pos++
	if len(body) == 0 {
		return nil, newError(p.src, start, ErrSyntax, "empty lookaround")
	}
	la.Body = body
	return la, nil
}

// sequence parses nodes until '{' at the top level, '}' inside braces, or
// the end of input.
func (p *parser) sequence(inBraces bool) ([]Node, error) {
	var (
		nodes  []Node
		lit    strings.Builder
		closed bool
	)
	flush := func() {
		if lit.Len() > 0 {
			nodes = append(nodes, Literal{Text: lit.String()})
			lit.Reset()
		}
	}
	add := func(n Node) error {
		if closed {
			return newError(p.src, p.pos, ErrSyntax, "end anchor must close its sequence")
		}
		flush()
		nodes = append(nodes, n)
		return nil
	}

	for !p.done() {
		r := p.peek()
		switch r {
		case '{':
			if inBraces {
				return nil, newError(p.src, p.pos, ErrSyntax, "nested lookaround")
			}
			flush()
			return nodes, nil
		case '}':
			if inBraces {
				flush()
				return nodes, nil
			}
			return nil, newError(p.src, p.pos, ErrSyntax, "unbalanced '}'")
		case '^':
			at := p.pos
			n := p.repeat('^')
			if n > 2 {
				return nil, newError(p.src, at, ErrSyntax, "too many '^'")
			}
			if len(nodes) > 0 || lit.Len() > 0 {
				return nil, newError(p.src, at, ErrSyntax, "start anchor must open its sequence")
			}
			if err := add(Anchor{Strict: n == 2}); err != nil {
				return nil, err
			}
		case '$':
			at := p.pos
			n := p.repeat('$')
			if n > 2 {
				return nil, newError(p.src, at, ErrSyntax, "too many '$'")
			}
			if err := add(Anchor{End: true, Strict: n == 2}); err != nil {
				return nil, err
			}
			closed = true
		case '@':
			p.pos++
			if err := add(p.variable("vowels")); err != nil {
				return nil, err
			}
		case '<':
			at := p.pos
			end := p.indexFrom('>')
			if end < 0 {
				return nil, newError(p.src, at, ErrSyntax, "unterminated variable")
			}
			name := string(p.runes[p.pos+1 : end])
			if name == "" {
				return nil, newError(p.src, at, ErrSyntax, "empty variable name")
			}
			p.pos = end + 1
			if err := add(p.variable(name)); err != nil {
				return nil, err
			}
		case '\\':
			if p.pos+1 >= len(p.runes) {
				return nil, newError(p.src, p.pos, ErrSyntax, "trailing backslash")
			}
			if closed {
				return nil, newError(p.src, p.pos, ErrSyntax, "end anchor must close its sequence")
			}
			lit.WriteRune(p.runes[p.pos+1])
			p.pos += 2
		default:
			if closed {
				return nil, newError(p.src, p.pos, ErrSyntax, "end anchor must close its sequence")
			}
			lit.WriteRune(r)
			p.pos++
		}
	}
	flush()
	return nodes, nil
}

func (p *parser) variable(name string) Variable {
	p.groups = append(p.groups, name)
	return Variable{Name: name, Group: len(p.groups)}
}

func (p *parser) repeat(r rune) int {
	n := 0
	for !p.done() && p.peek() == r {
		n++
		p.pos++
	}
	return n
}

func (p *parser) indexFrom(r rune) int {
	for i := p.pos; i < len(p.runes); i++ {
		if p.runes[i] == r {
			return i
		}
	}
	return -1
}

// Consuming returns the capture groups of variables outside lookarounds.
func (pat *Pattern) Consuming() []Variable {
	var out []Variable
	for _, n := range pat.Body {
		if v, ok := n.(Variable); ok {
			out = append(out, v)
		}
	}
	return out
}
