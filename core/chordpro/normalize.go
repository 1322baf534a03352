package chordpro

import (
	"strings"
	"unicode"
)

// maxBlankRun is the longest run of consecutive blank lines Normalize keeps.
const maxBlankRun = 2

// Normalize cleans raw input: "\r\n" and bare "\r" become "\n", trailing
// whitespace is stripped from every line, runs of more than two blank lines are
// collapsed to two, and blank lines at the end of the document are removed.
// Every string is legal input; "" normalizes to "".
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			blanks++
			if blanks > maxBlankRun {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}

	for len(cleaned) > 0 && cleaned[len(cleaned)-1] == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}

	return strings.Join(cleaned, "\n")
}
