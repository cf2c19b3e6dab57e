package hangul

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ps ...Phoneme) string {
	t.Helper()
	out, err := Render(Assemble(ps))
	require.NoError(t, err)
	return out
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		in   []Phoneme
		want string
	}{
		{"initial and medial", []Phoneme{Initial('ㅂ'), Medial('ㅏ')}, "바"},
		{"full syllable", []Phoneme{Initial('ㄷ'), Medial('ㅏ'), Final('ㄴ')}, "단"},
		{"medial only gets null initial", []Phoneme{Medial('ㅏ')}, "아"},
		{"initial only gets filler vowel", []Phoneme{Initial('ㄹ')}, "르"},
		{"final only", []Phoneme{Final('ㄴ')}, "은"},
		{"repeated initial splits", []Phoneme{Initial('ㄹ'), Medial('ㅏ'), Initial('ㄹ'), Medial('ㅏ')}, "라라"},
		{"initial after medial splits", []Phoneme{Medial('ㅏ'), Initial('ㄴ')}, "아느"},
		{"second final splits", []Phoneme{Medial('ㅏ'), Final('ㄴ'), Final('ㄴ')}, "안은"},
		{
			"final then initial",
			[]Phoneme{Initial('ㅁ'), Medial('ㅣ'), Final('ㄹ'), Initial('ㄹ'), Medial('ㅏ'), Initial('ㄴ'), Medial('ㅗ')},
			"밀라노",
		},
		{
			"impurity stands alone",
			[]Phoneme{Initial('ㄹ'), Medial('ㅗ'), Impurity(", "), Initial('ㅁ'), Medial('ㅏ')},
			"로, 마",
		},
		{"empty impurity dropped", []Phoneme{Impurity(""), Medial('ㅣ')}, "이"},
		{"empty stream", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, tt.in...))
		})
	}
}

func TestRenderKeepsSiblingsOnBadComponent(t *testing.T) {
	out, err := Render(Assemble([]Phoneme{
		Initial('ㅂ'), Medial('ㅏ'),
		Initial('x'), Medial('ㅏ'),
		Initial('ㄴ'), Medial('ㅏ'),
	}))
	require.Error(t, err)
	assert.Equal(t, "바�나", out)

	var cerr *ComponentError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, KindInitial, cerr.Kind)
	assert.Equal(t, 'x', cerr.Value)
}

func TestComposeSplit(t *testing.T) {
	r, err := Compose(Syllable{Initial: 'ㅎ', Medial: 'ㅏ', Final: 'ㄴ'})
	require.NoError(t, err)
	assert.Equal(t, '한', r)

	s, ok := Split('글')
	require.True(t, ok)
	assert.Equal(t, Syllable{Initial: 'ㄱ', Medial: 'ㅡ', Final: 'ㄹ'}, s)

	_, ok = Split('a')
	assert.False(t, ok)

	_, err = Compose(Syllable{Initial: 'ㄱ', Medial: 'ㄱ'})
	var cerr *ComponentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindMedial, cerr.Kind)
}

func TestAssembleIsStableOnWellFormedInput(t *testing.T) {
	blocks := Assemble(Decompose("밀라노, 로마"))
	again := Assemble(Phonemes(blocks))
	assert.Equal(t, blocks, again)

	out, err := Render(again)
	require.NoError(t, err)
	assert.Equal(t, "밀라노, 로마", out)
}

func TestParsePhoneme(t *testing.T) {
	tests := []struct {
		in      string
		want    Phoneme
		wantErr bool
	}{
		{in: "ㄱ", want: Initial('ㄱ')},
		{in: "ㅘ", want: Medial('ㅘ')},
		{in: "-ㄹ", want: Final('ㄹ')},
		{in: "-ㄺ", want: Final('ㄺ')},
		{in: "ㄺ", wantErr: true},
		{in: "-ㄸ", wantErr: true},
		{in: "-ㅏ", wantErr: true},
		{in: "ab", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhoneme(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRomanize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"페이커", "peikeo"},
		{"김치", "gimchi"},
		{"토르소", "toreuso"},
		{"꿈을꾸다", "kkumeulkkuda"},
		{"밀라노, 로마", "milrano, roma"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Romanize(tt.input), "Romanize(%q)", tt.input)
	}
}
