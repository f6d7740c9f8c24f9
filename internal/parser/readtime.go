package parser

import (
	"regexp"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used for derived read times.
const DefaultWordsPerMinute = 200

var tagRe = regexp.MustCompile(`<[^>]*>`)

// ReadTime returns the minutes needed to read text at wpm words per
// minute, never less than 1. Markup tags are ignored.
func ReadTime(text string, wpm int) int {
	if wpm <= 0 {
		wpm = DefaultWordsPerMinute
	}
	words := len(strings.Fields(tagRe.ReplaceAllString(text, " ")))
	minutes := (words + wpm - 1) / wpm
	if minutes < 1 {
		return 1
	}
	return minutes
}
