package hangul

import "strings"

// Revised Romanization of Korean, indexed like the inventories in jamo.go.
var (
	choseongRoman = []string{
		"g", "kk", "n", "d", "tt", "r", "m", "b", "pp",
		"s", "ss", "", "j", "jj", "ch", "k", "t", "p", "h",
	}
	jungseongRoman = []string{
		"a", "ae", "ya", "yae", "eo", "e", "yeo", "ye", "o",
		"wa", "wae", "oe", "yo", "u", "wo", "we", "wi", "yu",
		"eu", "ui", "i",
	}
	jongseongRoman = []string{
		"", "g", "kk", "gs", "n", "nj", "nh", "d", "l", "lg",
		"lm", "lb", "ls", "lt", "lp", "lh", "m", "b", "bs",
		"s", "ss", "ng", "j", "ch", "k", "t", "p", "h",
	}
)

// Decompose splits precomposed syllables into phonemes. Runs of any other
// text become a single impurity each.
func Decompose(text string) []Phoneme {
	var (
		out []Phoneme
		run strings.Builder
	)
	flush := func() {
		if run.Len() > 0 {
			out = append(out, Impurity(run.String()))
			run.Reset()
		}
	}
	for _, r := range text {
		s, ok := Split(r)
		if !ok {
			run.WriteRune(r)
			continue
		}
		flush()
		out = append(out, Initial(s.Initial), Medial(s.Medial))
		if s.Final != NoFinal {
			out = append(out, Final(s.Final))
		}
	}
	flush()
	return out
}

// Romanize spells Hangul syllables with Revised Romanization letters and
// copies everything else through.
func Romanize(text string) string {
	var b strings.Builder
	for _, r := range text {
		s, ok := Split(r)
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteString(choseongRoman[choseongIndex[s.Initial]])
		b.WriteString(jungseongRoman[jungseongIndex[s.Medial]])
		b.WriteString(jongseongRoman[jongseongIndex[s.Final]])
	}
	return b.String()
}
