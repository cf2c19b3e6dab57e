package rewrite

import (
	"errors"
	"fmt"

	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/pattern"
)

var ErrAlignment = errors.New("alignment violation")

// AlignmentError reports a rule application that would desynchronize the
// text from its phoneme slots. Start and End are the match offsets.
type AlignmentError struct {
	Pattern    string
	Start, End int
	Detail     string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("rule %q at [%d,%d): %v: %s", e.Pattern, e.Start, e.End, ErrAlignment, e.Detail)
}

func (e *AlignmentError) Unwrap() error { return ErrAlignment }

// Step records one rule application for display.
type Step struct {
	Pattern string
	Action  Kind
	Matches int
	Result  string
}

// Apply runs rule over buf once, rewriting every non-overlapping match left
// to right. The text and slots are only replaced when the whole pass
// succeeds.
func Apply(buf *Buffer, rule Rule, m *pattern.Matcher) (Step, error) {
	step := Step{Pattern: rule.Pattern, Action: rule.Action.kind}
	if !buf.aligned() {
		return step, &AlignmentError{Pattern: rule.Pattern, End: buf.Len(), Detail: "buffer entered misaligned"}
	}
	if rule.Action.kind == KindRewrite {
		// Compile before scanning so a broken template fails even
		// without matches.
		if _, err := m.Template(rule.Action.text); err != nil {
			return step, err
		}
	}

	matches, err := m.FindAll(buf.text)
	if err != nil {
		return step, err
	}
	step.Matches = len(matches)
	if len(matches) == 0 {
		step.Result = buf.Display()
		return step, nil
	}

	text := make([]rune, 0, len(buf.text))
	slots := make([][]hangul.Phoneme, 0, len(buf.slots))
	cursor := 0
	for _, match := range matches {
		text = append(text, buf.text[cursor:match.Start]...)
		slots = append(slots, buf.slots[cursor:match.Start]...)

		act := rule.Action
		if act.kind == KindCompute {
			act, err = act.compute(buf, match)
			if err != nil {
				return step, fmt.Errorf("rule %q at %d: %w", rule.Pattern, match.Start, err)
			}
			if act.kind == KindCompute || act.kind == 0 {
				return step, alignErr(rule, match, "compute returned %s", act.kind)
			}
		}

		switch act.kind {
		case KindRewrite, KindVerbatim:
			if buf.resolvedIn(match.Start, match.End) {
				return step, alignErr(rule, match, "replacing resolved text")
			}
			repl := act.text
			if act.kind == KindRewrite {
				tmpl, err := m.Template(act.text)
				if err != nil {
					return step, err
				}
				if repl, err = tmpl.Expand(match); err != nil {
					return step, err
				}
			}
			rr := []rune(repl)
			for _, r := range rr {
				if r == pattern.Resolved {
					return step, alignErr(rule, match, "replacement contains the resolved marker")
				}
			}
			text = append(text, rr...)
			slots = append(slots, make([][]hangul.Phoneme, len(rr))...)

		case KindEmit:
			if match.End == match.Start {
				return step, alignErr(rule, match, "empty match cannot hold phonemes")
			}
			if buf.resolvedIn(match.Start, match.End) {
				return step, alignErr(rule, match, "resolving text twice")
			}
			for i := match.Start; i < match.End; i++ {
				text = append(text, pattern.Resolved)
			}
			slots = append(slots, act.Phonemes())
			slots = append(slots, make([][]hangul.Phoneme, match.End-match.Start-1)...)

		case KindDelete:
			// Resolved runes survive so a placeholder is never cut.
			for i := match.Start; i < match.End; i++ {
				if buf.text[i] == pattern.Resolved {
					text = append(text, buf.text[i])
					slots = append(slots, buf.slots[i])
				}
			}
		}
		cursor = match.End
	}
	text = append(text, buf.text[cursor:]...)
	slots = append(slots, buf.slots[cursor:]...)

	if len(text) != len(slots) {
		return step, &AlignmentError{
			Pattern: rule.Pattern,
			End:     len(buf.text),
			Detail:  fmt.Sprintf("text has %d runes but %d slots", len(text), len(slots)),
		}
	}
	buf.text, buf.slots = text, slots
	step.Result = buf.Display()
	return step, nil
}

func alignErr(rule Rule, m pattern.Match, format string, args ...any) *AlignmentError {
	return &AlignmentError{
		Pattern: rule.Pattern,
		Start:   m.Start,
		End:     m.End,
		Detail:  fmt.Sprintf(format, args...),
	}
}
