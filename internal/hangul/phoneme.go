// Package hangul models the phoneme tokens produced by a notation and
// assembles them into Hangul syllable blocks.
package hangul

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind tags the structural slot a Phoneme fills.
type Kind uint8

const (
	KindInitial Kind = iota + 1
	KindMedial
	KindFinal
	KindImpurity
)

func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindMedial:
		return "medial"
	case KindFinal:
		return "final"
	case KindImpurity:
		return "impurity"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Phoneme is an immutable token. Jamo holds the component letter of
// initial, medial and final phonemes; Text holds the verbatim run of an
// impurity.
type Phoneme struct {
	Kind Kind
	Jamo rune
	Text string
}

func Initial(jamo rune) Phoneme { return Phoneme{Kind: KindInitial, Jamo: jamo} }
func Medial(jamo rune) Phoneme  { return Phoneme{Kind: KindMedial, Jamo: jamo} }
func Final(jamo rune) Phoneme   { return Phoneme{Kind: KindFinal, Jamo: jamo} }

// Impurity wraps original text that no rule transformed.
func Impurity(text string) Phoneme { return Phoneme{Kind: KindImpurity, Text: text} }

// String renders the phoneme in rule-table notation: finals carry a
// leading '-', impurities are quoted.
func (p Phoneme) String() string {
	switch p.Kind {
	case KindFinal:
		return "-" + string(p.Jamo)
	case KindImpurity:
		return fmt.Sprintf("%q", p.Text)
	default:
		return string(p.Jamo)
	}
}

// ParsePhoneme reads the rule-table notation: a consonant is an initial, a
// vowel is a medial and a consonant prefixed with '-' is a final.
func ParsePhoneme(s string) (Phoneme, error) {
	final := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")
	if utf8.RuneCountInString(body) != 1 {
		return Phoneme{}, fmt.Errorf("hangul: phoneme %q must be a single jamo", s)
	}
	r, _ := utf8.DecodeRuneInString(body)
	switch {
	case final:
		if !IsFinal(r) {
			return Phoneme{}, &ComponentError{Kind: KindFinal, Value: r}
		}
		return Final(r), nil
	case IsMedial(r):
		return Medial(r), nil
	case IsInitial(r):
		return Initial(r), nil
	default:
		return Phoneme{}, &ComponentError{Kind: KindInitial, Value: r}
	}
}

// ParsePhonemes parses each element with ParsePhoneme.
func ParsePhonemes(ss []string) ([]Phoneme, error) {
	out := make([]Phoneme, 0, len(ss))
	for _, s := range ss {
		p, err := ParsePhoneme(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FormatPhonemes joins phonemes with spaces, for traces and logs.
func FormatPhonemes(ps []Phoneme) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
