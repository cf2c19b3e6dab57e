package language

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jusunglee/hangulize/internal/pattern"
)

// Normalizer is a pure function applied to raw input before any rule runs.
type Normalizer func(string) string

var normalizers = map[string]Normalizer{
	"lower":            lower,
	"strip-diacritics": stripDiacritics,
	"pinyin":           pinyinize,
}

// NormalizerNames lists the normalizers a rule table may name.
func NormalizerNames() []string {
	names := make([]string, 0, len(normalizers))
	for name := range normalizers {
		names = append(names, name)
	}
	return names
}

func nfc(s string) string { return norm.NFC.String(s) }

// Casers and transformers keep state, so each call builds its own.
func lower(s string) string {
	return cases.Lower(xlanguage.Und).String(s)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

var pinyinArgs = func() pinyin.Args {
	a := pinyin.NewArgs()
	a.Style = pinyin.Normal
	return a
}()

// pinyinize replaces each Han character with its toneless pinyin reading.
// Syllables are separated from each other and from adjacent letters by
// the zero-width separator so that rules see one word per character.
func pinyinize(s string) string {
	var (
		b       strings.Builder
		inWord  bool
		prevHan bool
	)
	for _, r := range s {
		var py []string
		if unicode.Is(unicode.Han, r) {
			py = pinyin.SinglePinyin(r, pinyinArgs)
		}
		if len(py) > 0 {
			if inWord {
				b.WriteRune(pattern.ZeroWidth)
			}
			b.WriteString(py[0])
			inWord, prevHan = true, true
			continue
		}
		if prevHan && !pattern.IsBoundary(r) {
			b.WriteRune(pattern.ZeroWidth)
		}
		b.WriteRune(r)
		inWord, prevHan = !pattern.IsBoundary(r), false
	}
	return b.String()
}
