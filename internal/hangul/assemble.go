package hangul

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Block is one unit of output: either a syllable or an impurity run that
// is emitted verbatim.
type Block struct {
	Syllable Syllable
	Text     string
	impure   bool
}

// Impure reports whether the block carries untransformed text.
func (b Block) Impure() bool { return b.impure }

type pending struct {
	syl  Syllable
	last Kind // highest slot filled so far, 0 when empty
}

func (p *pending) empty() bool { return p.last == 0 }

// accepts reports whether k can still be placed without breaking the
// initial, medial, final order of the current syllable.
func (p *pending) accepts(k Kind) bool { return p.last < k }

func (p *pending) put(ph Phoneme) {
	switch ph.Kind {
	case KindInitial:
		p.syl.Initial = ph.Jamo
	case KindMedial:
		p.syl.Medial = ph.Jamo
	case KindFinal:
		p.syl.Final = ph.Jamo
	}
	p.last = ph.Kind
}

// close fills missing components with their defaults and resets p.
func (p *pending) close() Syllable {
	s := p.syl
	if s.Initial == 0 {
		s.Initial = NullInitial
	}
	if s.Medial == 0 {
		s.Medial = FillerMedial
	}
	*p = pending{}
	return s
}

// Assemble groups a phoneme stream into blocks. An impurity always stands
// alone; a phoneme whose slot is already filled, or whose slot precedes one
// that is, closes the current syllable and opens the next.
func Assemble(phonemes []Phoneme) []Block {
	var (
		blocks []Block
		cur    pending
	)
	flush := func() {
		if !cur.empty() {
			blocks = append(blocks, Block{Syllable: cur.close()})
		}
	}
	for _, ph := range phonemes {
		if ph.Kind == KindImpurity {
			flush()
			if ph.Text != "" {
				blocks = append(blocks, Block{Text: ph.Text, impure: true})
			}
			continue
		}
		if !cur.accepts(ph.Kind) {
			flush()
		}
		cur.put(ph)
	}
	flush()
	return blocks
}

// Render writes every block. A syllable with an unknown component is
// replaced by U+FFFD and its error is collected; sibling blocks are still
// rendered.
func Render(blocks []Block) (string, error) {
	var (
		b    strings.Builder
		errs []error
	)
	for _, blk := range blocks {
		if blk.impure {
			b.WriteString(blk.Text)
			continue
		}
		r, err := Compose(blk.Syllable)
		if err != nil {
			errs = append(errs, err)
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), errors.Join(errs...)
}

// Phonemes flattens blocks back into an explicit phoneme stream. Defaults
// filled in by Assemble are kept, so Assemble(b.Phonemes()) == b.
func Phonemes(blocks []Block) []Phoneme {
	out := make([]Phoneme, 0, len(blocks)*3)
	for _, blk := range blocks {
		if blk.impure {
			out = append(out, Impurity(blk.Text))
			continue
		}
		out = append(out, Initial(blk.Syllable.Initial), Medial(blk.Syllable.Medial))
		if blk.Syllable.Final != NoFinal {
			out = append(out, Final(blk.Syllable.Final))
		}
	}
	return out
}
