package rewrite

import (
	"slices"
	"strings"

	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/pattern"
)

// Buffer is the working state of one transcription. slots[i] holds the
// phonemes resolved at text[i]; a nil slot is unresolved, and a resolved
// span is filled with pattern.Resolved so later rules cannot match it.
type Buffer struct {
	text  []rune
	slots [][]hangul.Phoneme
	stash []string
}

func NewBuffer(text string) *Buffer {
	runes := []rune(text)
	return &Buffer{text: runes, slots: make([][]hangul.Phoneme, len(runes))}
}

// String returns the working text including markers.
func (b *Buffer) String() string { return string(b.text) }

// Len returns the length of the text in runes.
func (b *Buffer) Len() int { return len(b.text) }

// Push appends s to the stash.
func (b *Buffer) Push(s string) { b.stash = append(b.stash, s) }

// Pop removes the oldest stashed string.
func (b *Buffer) Pop() (string, bool) {
	if len(b.stash) == 0 {
		return "", false
	}
	s := b.stash[0]
	b.stash = b.stash[1:]
	return s, true
}

// Stashed returns the number of strings waiting in the stash.
func (b *Buffer) Stashed() int { return len(b.stash) }

func (b *Buffer) aligned() bool { return len(b.text) == len(b.slots) }

func (b *Buffer) resolvedIn(start, end int) bool {
	return slices.Contains(b.text[start:end], pattern.Resolved)
}

// Flatten lists the resolved phonemes in order. Every unresolved run of
// text between them becomes one impurity.
func (b *Buffer) Flatten() []hangul.Phoneme {
	var (
		out []hangul.Phoneme
		run strings.Builder
	)
	flush := func() {
		if run.Len() > 0 {
			out = append(out, hangul.Impurity(run.String()))
			run.Reset()
		}
	}
	for i, r := range b.text {
		switch {
		case b.slots[i] != nil:
			flush()
			out = append(out, b.slots[i]...)
		case r == pattern.Resolved:
			flush()
		default:
			run.WriteRune(r)
		}
	}
	flush()
	return out
}

var displayMarkers = strings.NewReplacer(
	string(pattern.Edge), "",
	string(pattern.Blank), " ",
	string(pattern.Stash), "_",
	string(pattern.ZeroWidth), "|",
)

// Display renders the buffer for traces: resolved spans show their
// phonemes in brackets and markers are made visible.
func (b *Buffer) Display() string {
	var s strings.Builder
	var run []rune
	for i, r := range b.text {
		switch {
		case b.slots[i] != nil:
			s.WriteString(displayMarkers.Replace(string(run)))
			run = run[:0]
			s.WriteString("[" + hangul.FormatPhonemes(b.slots[i]) + "]")
		case r == pattern.Resolved:
		default:
			run = append(run, r)
		}
	}
	s.WriteString(displayMarkers.Replace(string(run)))
	return s.String()
}
