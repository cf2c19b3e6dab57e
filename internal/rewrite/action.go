// Package rewrite applies compiled rules to a working buffer that keeps the
// text and its resolved phonemes aligned rune for rune.
package rewrite

import (
	"fmt"

	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/pattern"
)

// Kind tags the variant of an Action.
type Kind uint8

const (
	KindRewrite Kind = iota + 1
	KindVerbatim
	KindEmit
	KindDelete
	KindCompute
)

func (k Kind) String() string {
	switch k {
	case KindRewrite:
		return "rewrite"
	case KindVerbatim:
		return "verbatim"
	case KindEmit:
		return "emit"
	case KindDelete:
		return "delete"
	case KindCompute:
		return "compute"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ComputeFunc decides the action for one match. It may read and modify the
// buffer's stash but must not return another compute action.
type ComputeFunc func(buf *Buffer, m pattern.Match) (Action, error)

// Action is what a rule does with each match. The zero Action is invalid.
type Action struct {
	kind     Kind
	text     string
	phonemes []hangul.Phoneme
	compute  ComputeFunc
}

// Rewrite replaces the match with a template that may use back-references
// and a positional variable remap.
func Rewrite(template string) Action { return Action{kind: KindRewrite, text: template} }

// Verbatim replaces the match with text taken as is.
func Verbatim(text string) Action { return Action{kind: KindVerbatim, text: text} }

// Emit resolves the match into phonemes. Zero phonemes are allowed: the
// text is consumed and nothing is produced for it.
func Emit(phonemes ...hangul.Phoneme) Action {
	return Action{kind: KindEmit, phonemes: append([]hangul.Phoneme{}, phonemes...)}
}

func Delete() Action { return Action{kind: KindDelete} }

func Compute(fn ComputeFunc) Action { return Action{kind: KindCompute, compute: fn} }

func (a Action) Kind() Kind { return a.kind }

// Phonemes returns a copy of the tuple of an emit action.
func (a Action) Phonemes() []hangul.Phoneme {
	return append([]hangul.Phoneme{}, a.phonemes...)
}

// Text returns the template of a rewrite or the text of a verbatim action.
func (a Action) Text() string { return a.text }

func (a Action) String() string {
	switch a.kind {
	case KindRewrite, KindVerbatim:
		return fmt.Sprintf("%s %q", a.kind, a.text)
	case KindEmit:
		return fmt.Sprintf("emit [%s]", hangul.FormatPhonemes(a.phonemes))
	default:
		return a.kind.String()
	}
}

// Rule pairs a pattern with its action.
type Rule struct {
	Pattern string
	Action  Action
}

func (r Rule) String() string { return fmt.Sprintf("%q -> %s", r.Pattern, r.Action) }
