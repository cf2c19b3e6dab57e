// Package language holds the rule tables that drive transcription: one
// Language per source language, each owning an ordered Notation, its
// variable classes and the characters it protects.
package language

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/jusunglee/hangulize/internal/pattern"
	"github.com/jusunglee/hangulize/internal/rewrite"
)

var ErrUnknownLanguage = errors.New("unknown language")

// Names of the variables a Language answers on behalf of the pipeline.
// Declared variables may not start with an underscore.
const (
	StashVar     = "_stash"
	TemporaryVar = "_temporary"
)

// Notation is an ordered rule table. Each rule runs to exhaustion before
// the next one starts.
type Notation []rewrite.Rule

// Spec is the declarative form of a Language.
type Spec struct {
	Code        string
	Name        string
	Normalize   []string
	Vars        map[string][]string
	Punctuation []string
	Protected   []string
	Temporary   []string
	Rules       Notation
}

// Language is immutable once built and safe for concurrent use.
type Language struct {
	id          string
	code        string
	name        string
	notation    Notation
	vars        map[string][]string
	punctuation []string
	protected   []string
	temporary   []string
	normalizers []string
	normalize   []Normalizer
}

var seq atomic.Uint64

// New validates spec and builds a Language.
func New(spec Spec) (*Language, error) {
	if spec.Code == "" {
		return nil, errors.New("language: code is required")
	}
	if len(spec.Vars["vowels"]) == 0 {
		return nil, fmt.Errorf("language %s: the vowels variable is required", spec.Code)
	}
	vars := make(map[string][]string, len(spec.Vars))
	for name, members := range spec.Vars {
		if strings.HasPrefix(name, "_") {
			return nil, fmt.Errorf("language %s: variable %q: names starting with '_' are reserved", spec.Code, name)
		}
		if lo.Contains(members, "") {
			return nil, fmt.Errorf("language %s: variable %q has an empty member", spec.Code, name)
		}
		vars[name] = append([]string(nil), members...)
	}

	normalize := make([]Normalizer, 0, len(spec.Normalize))
	for _, name := range spec.Normalize {
		n, ok := normalizers[name]
		if !ok {
			return nil, fmt.Errorf("language %s: unknown normalizer %q", spec.Code, name)
		}
		normalize = append(normalize, n)
	}

	for i, r := range spec.Rules {
		if r.Pattern == "" {
			return nil, fmt.Errorf("language %s: rule %d has an empty pattern", spec.Code, i)
		}
		if r.Action.Kind() == 0 {
			return nil, fmt.Errorf("language %s: rule %d has no action", spec.Code, i)
		}
	}

	name := spec.Name
	if name == "" {
		name = spec.Code
	}
	return &Language{
		id:          fmt.Sprintf("%s#%d", spec.Code, seq.Add(1)),
		code:        spec.Code,
		name:        name,
		notation:    append(Notation(nil), spec.Rules...),
		vars:        vars,
		punctuation: nonEmpty(spec.Punctuation),
		protected:   nonEmpty(spec.Protected),
		temporary:   nonEmpty(spec.Temporary),
		normalizers: append([]string(nil), spec.Normalize...),
		normalize:   normalize,
	}, nil
}

func nonEmpty(ss []string) []string {
	return lo.Uniq(lo.Compact(ss))
}

func (l *Language) Code() string { return l.code }
func (l *Language) Name() string { return l.name }

// ID distinguishes this instance from any other Language, including one
// later loaded under the same code.
func (l *Language) ID() string { return l.id }

// Notation returns the rules in declared order.
func (l *Language) Notation() Notation { return l.notation }

func (l *Language) Punctuation() []string { return l.punctuation }
func (l *Language) Protected() []string   { return l.protected }
func (l *Language) Temporary() []string   { return l.temporary }
func (l *Language) Normalizers() []string { return l.normalizers }

// Variable resolves a declared variable, or one of the reserved
// pipeline variables: StashVar lists the punctuation and protected
// characters and TemporaryVar the temporary ones.
func (l *Language) Variable(name string) ([]string, bool) {
	switch name {
	case StashVar:
		return lo.Uniq(append(append([]string(nil), l.punctuation...), l.protected...)), true
	case TemporaryVar:
		return l.temporary, true
	}
	members, ok := l.vars[name]
	return members, ok
}

// Variables lists the declared variable names, sorted.
func (l *Language) Variables() []string {
	names := lo.Keys(l.vars)
	slices.Sort(names)
	return names
}

// Normalize canonicalizes raw input: Unicode NFC first, then the
// language's normalizers in order.
func (l *Language) Normalize(s string) string {
	s = nfc(s)
	for _, n := range l.normalize {
		s = n(s)
	}
	return s
}

// Check compiles every rule and replacement so a broken table is reported
// before the first transcription.
func (l *Language) Check() error {
	var errs []error
	for i, r := range l.notation {
		m, err := pattern.Compile(r.Pattern, l)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		if r.Action.Kind() == rewrite.KindRewrite {
			if _, err := m.Template(r.Action.Text()); err != nil {
				errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("language %s: %w", l.code, errors.Join(errs...))
	}
	return nil
}

var _ pattern.Variables = (*Language)(nil)
