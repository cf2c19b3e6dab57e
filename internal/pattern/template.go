package pattern

import (
	"strings"
	"unicode"
)

// Template is a compiled replacement string. It may contain back-references
// (\1 .. \N) and one kind of variable reference, <name> or @, which is
// remapped positionally from the single variable the pattern consumes.
type Template struct {
	source string
	parts  []part
	// remap maps a member of the consumed source class to the member at
	// the same position of the destination class.
	remap    map[string]string
	srcGroup int
}

type part struct {
	text  string
	group int
	remap bool
}

// Template compiles a replacement against this matcher's capture groups.
// Compiled templates are memoized per matcher.
func (m *Matcher) Template(src string) (*Template, error) {
	if t, ok := m.templates.Load(src); ok {
		return t.(*Template), nil
	}
	t, err := m.compileTemplate(src)
	if err != nil {
		return nil, err
	}
	actual, _ := m.templates.LoadOrStore(src, t)
	return actual.(*Template), nil
}

func (m *Matcher) compileTemplate(src string) (*Template, error) {
	t := &Template{source: src}
	runes := []rune(src)
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, part{text: lit.String()})
			lit.Reset()
		}
	}
	var dest string

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\':
			if i+1 >= len(runes) {
				return nil, newError(src, i, ErrBackReference, "trailing backslash")
			}
			if !unicode.IsDigit(runes[i+1]) {
				lit.WriteRune(runes[i+1])
				i++
				continue
			}
			j := i + 1
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			n := 0
			for _, d := range runes[i+1 : j] {
				n = n*10 + int(d-'0')
			}
			if n < 1 || n > len(m.pattern.Groups) {
				return nil, newError(src, i, ErrBackReference, "\\%d but %q has %d groups", n, m.pattern.Source, len(m.pattern.Groups))
			}
			flush()
			t.parts = append(t.parts, part{group: n})
			i = j - 1
		case r == '@' || r == '<':
			name := "vowels"
			if r == '<' {
				end := -1
				for j := i + 1; j < len(runes); j++ {
					if runes[j] == '>' {
						end = j
						break
					}
				}
				if end < 0 {
					return nil, newError(src, i, ErrSyntax, "unterminated variable")
				}
				name = string(runes[i+1 : end])
				i = end
			}
			if dest != "" && dest != name {
				return nil, newError(src, i, ErrRemapMismatch, "replacement refers to both %q and %q", dest, name)
			}
			dest = name
			flush()
			t.parts = append(t.parts, part{remap: true})
		case r == ' ':
			lit.WriteRune(Blank)
		default:
			lit.WriteRune(r)
		}
	}
	flush()

	if dest != "" {
		if err := m.bindRemap(t, dest); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (m *Matcher) bindRemap(t *Template, dest string) error {
	consumed := m.pattern.Consuming()
	if len(consumed) != 1 {
		return newError(t.source, -1, ErrRemapMismatch,
			"replacement refers to %q but %q consumes %d variables", dest, m.pattern.Source, len(consumed))
	}
	src := consumed[0]
	from := m.classes[src.Group-1]
	to, err := m.resolve(dest)
	if err != nil {
		return err
	}
	if len(from) != len(to) {
		return newError(t.source, -1, ErrRemapMismatch,
			"%q has %d members but %q has %d", src.Name, len(from), dest, len(to))
	}
	t.remap = make(map[string]string, len(from))
	for i, s := range from {
		if _, dup := t.remap[s]; !dup {
			t.remap[s] = to[i]
		}
	}
	t.srcGroup = src.Group
	return nil
}

// Expand renders the replacement for one match.
func (t *Template) Expand(m Match) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		switch {
		case p.group > 0:
			b.WriteString(m.Groups[p.group].Text)
		case p.remap:
			got := m.Groups[t.srcGroup].Text
			to, ok := t.remap[got]
			if !ok {
				return "", newError(t.source, -1, ErrRemapMismatch, "%q is not a member of the source class", got)
			}
			b.WriteString(quoteMarkers(to))
		default:
			b.WriteString(p.text)
		}
	}
	return b.String(), nil
}

func quoteMarkers(s string) string {
	return strings.ReplaceAll(s, " ", string(Blank))
}

// String returns the replacement source.
func (t *Template) String() string { return t.source }
