package pattern

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// Variables resolves the named character classes a pattern refers to. ID
// identifies the owner for caching.
type Variables interface {
	ID() string
	Variable(name string) ([]string, bool)
}

// Matcher is a compiled pattern bound to one set of variables. It is safe
// for concurrent use.
type Matcher struct {
	pattern *Pattern
	expr    string
	re      *regexp2.Regexp
	vars    Variables
	// classes holds the members of each capture group's variable.
	classes [][]string

	templates sync.Map // replacement source -> *Template
}

// Match is one occurrence. Offsets are in runes.
type Match struct {
	Start, End int
	// Groups[0] is the whole match; Groups[n] is variable n.
	Groups []Group
}

type Group struct {
	Start, End int
	Text       string
	Matched    bool
}

// Text returns the consumed text.
func (m Match) Text() string { return m.Groups[0].Text }

// Compile parses src and translates it into an executable matcher.
func Compile(src string, vars Variables) (*Matcher, error) {
	pat, err := Parse(src)
	if err != nil {
		return nil, err
	}
	m := &Matcher{pattern: pat, vars: vars, classes: make([][]string, len(pat.Groups))}

	var b strings.Builder
	if pat.Behind != nil {
		if err := m.writeLookaround(&b, pat.Behind); err != nil {
			return nil, err
		}
	}
	if err := m.writeNodes(&b, pat.Body); err != nil {
		return nil, err
	}
	if pat.Ahead != nil {
		if err := m.writeLookaround(&b, pat.Ahead); err != nil {
			return nil, err
		}
	}
	m.expr = b.String()

	re, err := regexp2.Compile(m.expr, regexp2.None)
	if err != nil {
		return nil, newError(src, -1, ErrSyntax, "%v", err)
	}
	m.re = re
	return m, nil
}

// Pattern returns the parsed pattern.
func (m *Matcher) Pattern() *Pattern { return m.pattern }

// Expr returns the engine expression the pattern was translated into.
func (m *Matcher) Expr() string { return m.expr }

func (m *Matcher) writeNodes(b *strings.Builder, nodes []Node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case Literal:
			b.WriteString(quote(n.Text))
		case Variable:
			members, err := m.resolve(n.Name)
			if err != nil {
				return err
			}
			m.classes[n.Group-1] = members
			b.WriteString(alternation(members))
		case Anchor:
			b.WriteString(anchor(n))
		case Lookaround:
			if err := m.writeLookaround(b, &n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Matcher) writeLookaround(b *strings.Builder, la *Lookaround) error {
	switch {
	case la.Direction == Behind && la.Polarity == Positive:
		b.WriteString("(?<=")
	case la.Direction == Behind:
		b.WriteString("(?<!")
	case la.Polarity == Positive:
		b.WriteString("(?=")
	default:
		b.WriteString("(?!")
	}
	if err := m.writeNodes(b, la.Body); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

func (m *Matcher) resolve(name string) ([]string, error) {
	if m.vars == nil {
		return nil, newError(m.pattern.Source, -1, ErrUnknownVariable, "%q: no variables bound", name)
	}
	members, ok := m.vars.Variable(name)
	if !ok {
		return nil, newError(m.pattern.Source, -1, ErrUnknownVariable, "%q is not defined by %s", name, m.vars.ID())
	}
	if len(members) == 0 {
		return nil, newError(m.pattern.Source, -1, ErrUnknownVariable, "%q has no members", name)
	}
	return members, nil
}

// anchor expresses a boundary as a lookaround on the marker runes so that
// it composes inside other lookarounds.
func anchor(a Anchor) string {
	class := boundaryClass
	if a.Strict {
		class = edgeClass
	}
	if a.End {
		return "(?=" + class + ")"
	}
	return "(?<=" + class + ")"
}

// alternation captures one member, trying longer members first so the
// longest candidate wins at a given offset.
func alternation(members []string) string {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len([]rune(b)) - len([]rune(a))
	})
	quoted := make([]string, len(sorted))
	for i, s := range sorted {
		quoted[i] = quote(s)
	}
	return "(" + strings.Join(quoted, "|") + ")"
}

func quote(s string) string {
	return regexp2.Escape(strings.ReplaceAll(s, " ", string(Blank)))
}

// FindAll returns every non-overlapping match in text, left to right.
func (m *Matcher) FindAll(text []rune) ([]Match, error) {
	var out []Match
	found, err := m.re.FindRunesMatch(text)
	for found != nil && err == nil {
		out = append(out, m.convert(found))
		found, err = m.re.FindNextMatch(found)
	}
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", m.pattern.Source, err)
	}
	return out, nil
}

func (m *Matcher) convert(found *regexp2.Match) Match {
	groups := make([]Group, len(m.pattern.Groups)+1)
	for i := range groups {
		g := found.GroupByNumber(i)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		groups[i] = Group{
			Start:   g.Index,
			End:     g.Index + g.Length,
			Text:    g.String(),
			Matched: true,
		}
	}
	return Match{Start: found.Index, End: found.Index + found.Length, Groups: groups}
}
