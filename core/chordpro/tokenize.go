package chordpro

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// lineLexer splits a line into chord spans and text. A "[" that does not open
// a complete span is lexed as text, so lexing never fails.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Chord", Pattern: `\[[^\]]+\]`},
	{Name: "Text", Pattern: `[^\[]+|\[`},
})

var chordToken = lineLexer.Symbols()["Chord"]

// chordLineRegex matches lines made only of chord spans and whitespace.
var chordLineRegex = regexp.MustCompile(`^(\s*\[[^\]]+\]\s*)+$`)

// SegmentKind tags a LineSegment.
type SegmentKind string

// Segment kind constants.
const (
	SegmentText  SegmentKind = "text"
	SegmentChord SegmentKind = "chord"
)

// LineSegment is one unit of a tokenized line.
type LineSegment struct {
	Kind    SegmentKind `json:"type"`
	Content string      `json:"content"`
}

// ChordSpan is a "[chord]" annotation inside a line. Content is the raw text
// between the brackets; Start and End are byte offsets of the brackets.
type ChordSpan struct {
	Content string `json:"content"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// lexLine calls chord for each chord span and text for each maximal run of text
// between spans, left to right. Text runs are never empty.
func lexLine(line string, chord func(ChordSpan), text func(string)) {
	lex, err := lineLexer.LexString("", line)
	if err != nil {
		text(line)
		return
	}

	var run strings.Builder
	pos := 0
	flush := func() {
		if run.Len() > 0 {
			text(run.String())
			run.Reset()
		}
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			// The rules cover every byte; keep whatever is left as text.
			run.WriteString(line[pos:])
			break
		}
		if tok.EOF() {
			break
		}
		pos = tok.Pos.Offset + len(tok.Value)
		if tok.Type != chordToken {
			run.WriteString(tok.Value)
			continue
		}
		flush()
		chord(ChordSpan{
			Content: tok.Value[1 : len(tok.Value)-1],
			Start:   tok.Pos.Offset,
			End:     tok.Pos.Offset + len(tok.Value),
		})
	}
	flush()
}

// TokenizeLine splits a single line into text and chord segments in source
// order. Chord content is emitted without brackets; empty text runs between
// spans are omitted. An empty line yields an empty slice.
func TokenizeLine(line string) []LineSegment {
	segments := []LineSegment{}
	lexLine(line,
		func(c ChordSpan) {
			segments = append(segments, LineSegment{Kind: SegmentChord, Content: c.Content})
		},
		func(s string) {
			segments = append(segments, LineSegment{Kind: SegmentText, Content: s})
		},
	)
	return segments
}

// ScanChords returns every chord span in line, left to right.
func ScanChords(line string) []ChordSpan {
	var spans []ChordSpan
	lexLine(line, func(c ChordSpan) { spans = append(spans, c) }, func(string) {})
	return spans
}

// IsChordLine reports whether line holds only chord spans and whitespace.
func IsChordLine(line string) bool {
	return chordLineRegex.MatchString(line)
}
