package classifier

import (
	"strings"
	"unicode"
)

// NormalizeName canonicalizes a listing name for identity lookup: noise
// tokens stripped, case folded, punctuation noise dropped, whitespace
// collapsed. Cosmetically different listings of the same physical product
// must normalize to the same string, e.g. "RTX 5090 Founders" and
// "RTX5090  Founders  (in stock)".
func NormalizeName(name string, noiseTokens []string) string {
	s := strings.ToLower(name)

	for _, tok := range noiseTokens {
		s = strings.ReplaceAll(s, strings.ToLower(tok), " ")
	}

	// Parenthesized retailer notes are noise regardless of configuration.
	s = stripParenthesized(s)

	// Keep letters and digits, break everything else to a space, and split
	// letter/digit boundaries so "RTX5090" and "RTX 5090" canonicalize the
	// same way.
	var b strings.Builder
	b.Grow(len(s) + 8)
	var prev rune
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			if unicode.IsDigit(prev) {
				b.WriteRune(' ')
			}
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if unicode.IsLetter(prev) {
				b.WriteRune(' ')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
		prev = r
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Brand extracts the brand as the first whitespace token of the original
// display name, or "" for an empty name.
func Brand(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func stripParenthesized(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(', '（':
			depth++
		case ')', '）':
			if depth > 0 {
				depth--
				continue
			}
		}
		if depth == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
