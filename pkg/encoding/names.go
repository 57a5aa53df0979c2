// Package encoding provides text encoding utilities for object and file names.
package encoding

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldASCII strips combining marks after canonical decomposition, so that
// "Café" becomes "Cafe". Characters without an ASCII base are kept as-is.
// Returns the original string if the transform fails.
func FoldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// CleanName returns a name that is safe to use as a file name component.
// Every character besides A-Z, a-z and 0-9 is replaced with replace.
// Accented latin letters are folded to their base letter first.
func CleanName(name string, replace rune) string {
	folded := FoldASCII(name)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(replace)
		}
	}
	return b.String()
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
