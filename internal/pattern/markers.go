package pattern

// Reserved runes placed in the working string by the pipeline. Input text
// is scrubbed of them before any rule runs.
const (
	// Edge wraps the whole input on both sides.
	Edge = '\x1c'
	// Blank stands for a plain space. Spaces written in patterns and
	// replacements compile to Blank.
	Blank = '\x1e'
	// Stash marks a protected punctuation character that was lifted out
	// of the string.
	Stash = '\x1f'
	// Resolved fills the span of text already turned into phonemes.
	Resolved = '\x00'
	// ZeroWidth separates words without producing a visible space.
	ZeroWidth = '\u200b'
)

// IsMarker reports whether r is one of the reserved runes.
func IsMarker(r rune) bool {
	switch r {
	case Edge, Blank, Stash, Resolved:
		return true
	}
	return false
}

// IsBoundary reports whether r separates words.
func IsBoundary(r rune) bool {
	switch r {
	case Edge, Blank, Stash, ZeroWidth, ' ':
		return true
	}
	return false
}

const (
	boundaryClass = `[\x1C\x1E\x1F\u200B ]`
	edgeClass     = `\x1C`
)
