// Package chordpro implements the format engine for ChordPro song sheets.
//
// A ChordPro document is plain, newline-delimited text in which lyrics carry
// inline chord spans such as "[G]" and whole-line or inline directives such as
// "{title:Amazing Grace}" or "{start_of_chorus}".
//
// # Operations
//
// The engine exposes five pure functions:
//
//   - Normalize: unify line endings, trim trailing whitespace, collapse blank runs
//   - Validate / Check: block nesting and per-line bracket balance
//   - ExtractMetadata: title, artist, capo, key, tempo and time from directives
//   - MergeMetadata: inject or rewrite title, artist, capo and key directives
//   - TokenizeLine: split a line into text and chord segments
//
// None of them hold state between calls, so every function is safe for
// concurrent use on independent inputs.
//
// # Directive Vocabulary
//
// Directive names are case-sensitive and resolved through a fixed alias table
// (see LookupDirective). Names outside the table are preserved verbatim by every
// operation but never take part in metadata handling or block tracking.
//
// # Example
//
//	text := chordpro.Normalize(raw)
//	if err := chordpro.Check(text); err != nil && !errors.Is(err, chordpro.ErrUnclosedBlock) {
//		return err
//	}
//	title := "Amazing Grace"
//	text = chordpro.MergeMetadata(text, chordpro.MergeValues{Title: &title})
//	for _, line := range strings.Split(text, "\n") {
//		segments := chordpro.TokenizeLine(line)
//		_ = segments
//	}
package chordpro
