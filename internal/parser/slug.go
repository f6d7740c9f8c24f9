package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Slugify lowercases s, turns whitespace into hyphens and drops every
// character that is not a letter, digit, mark, underscore or hyphen.
// Letters of any script count, so "新文章" stays "新文章".
func Slugify(s string) string {
	s = lower.String(norm.NFKC.String(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		}
	}
	return strings.TrimRight(b.String(), "-")
}
