package feeds

import (
	"strings"
	"unicode"
)

// wordsPerMinute is an average adult reading speed for news prose.
const wordsPerMinute = 230

// ReadingMinutes estimates how many minutes text takes to read, rounded up.
// Any non-empty text takes at least a minute; empty text takes none.
func ReadingMinutes(text string) int {
	words := countWords(text)
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// countWords counts runs of letters and digits, so that punctuation and
// dashes separate words the way a reader sees them.
func countWords(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	}))
}
