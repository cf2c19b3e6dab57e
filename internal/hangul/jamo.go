package hangul

import "fmt"

const (
	syllableBase = 0xAC00
	syllableEnd  = 0xD7A3
	choN         = 19
	jungN        = 21
	jongN        = 28
)

// Default components used when a syllable is closed before all three slots
// were filled.
const (
	NullInitial  = 'ㅇ'
	FillerMedial = 'ㅡ'
	NoFinal      = rune(0)
)

// Component inventories in Unicode order. The position of a jamo in its
// list is the index used by the composition formula.
var (
	choseong = []rune{
		'ㄱ', 'ㄲ', 'ㄴ', 'ㄷ', 'ㄸ', 'ㄹ', 'ㅁ', 'ㅂ', 'ㅃ',
		'ㅅ', 'ㅆ', 'ㅇ', 'ㅈ', 'ㅉ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}
	jungseong = []rune{
		'ㅏ', 'ㅐ', 'ㅑ', 'ㅒ', 'ㅓ', 'ㅔ', 'ㅕ', 'ㅖ', 'ㅗ',
		'ㅘ', 'ㅙ', 'ㅚ', 'ㅛ', 'ㅜ', 'ㅝ', 'ㅞ', 'ㅟ', 'ㅠ',
		'ㅡ', 'ㅢ', 'ㅣ',
	}
	jongseong = []rune{
		NoFinal, 'ㄱ', 'ㄲ', 'ㄳ', 'ㄴ', 'ㄵ', 'ㄶ', 'ㄷ', 'ㄹ', 'ㄺ',
		'ㄻ', 'ㄼ', 'ㄽ', 'ㄾ', 'ㄿ', 'ㅀ', 'ㅁ', 'ㅂ', 'ㅄ',
		'ㅅ', 'ㅆ', 'ㅇ', 'ㅈ', 'ㅊ', 'ㅋ', 'ㅌ', 'ㅍ', 'ㅎ',
	}

	choseongIndex  = buildIndex(choseong)
	jungseongIndex = buildIndex(jungseong)
	jongseongIndex = buildIndex(jongseong)
)

func buildIndex(list []rune) map[rune]int {
	idx := make(map[rune]int, len(list))
	for i, r := range list {
		idx[r] = i
	}
	return idx
}

// ComponentError reports a jamo that has no position in the inventory of
// the slot it was placed in.
type ComponentError struct {
	Kind  Kind
	Value rune
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("hangul: %q is not a valid %s component", e.Value, e.Kind)
}

// Syllable is one complete block. Final is NoFinal when the block has no
// final consonant.
type Syllable struct {
	Initial rune
	Medial  rune
	Final   rune
}

// Compose maps the three components to a precomposed syllable codepoint.
func Compose(s Syllable) (rune, error) {
	ci, ok := choseongIndex[s.Initial]
	if !ok {
		return 0, &ComponentError{Kind: KindInitial, Value: s.Initial}
	}
	ji, ok := jungseongIndex[s.Medial]
	if !ok {
		return 0, &ComponentError{Kind: KindMedial, Value: s.Medial}
	}
	fi, ok := jongseongIndex[s.Final]
	if !ok {
		return 0, &ComponentError{Kind: KindFinal, Value: s.Final}
	}
	return syllableBase + rune((ci*jungN+ji)*jongN+fi), nil
}

// Split is the inverse of Compose. ok is false for runes outside the
// precomposed syllable block.
func Split(r rune) (s Syllable, ok bool) {
	if r < syllableBase || r > syllableEnd {
		return Syllable{}, false
	}
	code := int(r) - syllableBase
	return Syllable{
		Initial: choseong[code/(jongN*jungN)],
		Medial:  jungseong[(code/jongN)%jungN],
		Final:   jongseong[code%jongN],
	}, true
}

// IsInitial reports whether r can occupy the initial slot.
func IsInitial(r rune) bool {
	_, ok := choseongIndex[r]
	return ok
}

// IsMedial reports whether r can occupy the medial slot.
func IsMedial(r rune) bool {
	_, ok := jungseongIndex[r]
	return ok
}

// IsFinal reports whether r can occupy the final slot. NoFinal is not a
// letter and is rejected here.
func IsFinal(r rune) bool {
	if r == NoFinal {
		return false
	}
	_, ok := jongseongIndex[r]
	return ok
}
