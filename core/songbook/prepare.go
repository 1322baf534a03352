package songbook

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
	"github.com/FocuswithJustin/JuniperSongbook/internal/logging"
)

// Metadata limits.
const (
	MaxTitleLength = 255
	MinCapo        = 0
	MaxCapo        = 12
)

// Meta is the song metadata a caller stores alongside the text. Empty strings
// and a nil Capo leave the corresponding directive untouched.
type Meta struct {
	Title  string
	Artist string
	Capo   *int
	Key    string
}

// Validate checks the bounds the songbook enforces on stored metadata.
func (m Meta) Validate() error {
	if n := utf8.RuneCountInString(m.Title); n > MaxTitleLength {
		return cperrors.NewValidation("title", fmt.Sprintf("must be at most %d characters, got %d", MaxTitleLength, n))
	}
	if m.Capo != nil && (*m.Capo < MinCapo || *m.Capo > MaxCapo) {
		return cperrors.NewValidation("capo", fmt.Sprintf("must be between %d and %d, got %d", MinCapo, MaxCapo, *m.Capo))
	}
	return nil
}

// values converts m to merge input, NFC-normalizing the strings so that
// visually identical titles produce identical directives.
func (m Meta) values() chordpro.MergeValues {
	str := func(s string) *string {
		s = norm.NFC.String(strings.TrimSpace(s))
		return &s
	}
	return chordpro.MergeValues{
		Title:  str(m.Title),
		Artist: str(m.Artist),
		Capo:   m.Capo,
		Key:    str(m.Key),
	}
}

// Policy decides which structural findings stop a document from being stored.
// The zero Policy accepts unclosed blocks and unknown directives as warnings.
type Policy struct {
	StrictBlocks            bool
	RejectUnknownDirectives bool
}

// Warning is a finding that did not stop preparation.
type Warning struct {
	// Line is 1-based, or 0 for document-level findings.
	Line    int    `json:"line"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Prepared is a document ready to be stored.
type Prepared struct {
	Text     string    `json:"text"`
	Digest   string    `json:"digest"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// RejectionError reports why a document cannot be stored.
type RejectionError struct {
	Reason string
	Line   int
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("invalid chordpro content: %v", e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Prepare normalizes raw, checks its structure, and merges meta into it.
//
// Hard structural errors always reject. Unclosed blocks reject only under
// Policy.StrictBlocks; unknown directives only under
// Policy.RejectUnknownDirectives. Otherwise both become warnings on the
// result. Rejections are *RejectionError; invalid meta is a
// *cperrors.ValidationError.
func Prepare(ctx context.Context, raw string, meta Meta, policy Policy) (*Prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	text := chordpro.Normalize(raw)
	var warnings []Warning

	if err := chordpro.Check(text); err != nil {
		var se *chordpro.StructuralError
		if !cperrors.As(err, &se) {
			return nil, err
		}
		if !se.Soft() || policy.StrictBlocks {
			return nil, reject(ctx, string(se.Reason), se.Line, err)
		}
		warnings = append(warnings, Warning{Line: se.Line, Reason: string(se.Reason), Message: se.Error()})
	}

	for i, line := range strings.Split(text, "\n") {
		for _, d := range chordpro.ScanDirectives(line) {
			if chordpro.IsSupported(d.Name) {
				continue
			}
			if policy.RejectUnknownDirectives {
				err := cperrors.Wrapf(cperrors.NewUnsupported("directive", d.Name), "line %d", i+1)
				return nil, reject(ctx, "unknown_directive", i+1, err)
			}
			warnings = append(warnings, Warning{
				Line:    i + 1,
				Reason:  "unknown_directive",
				Message: fmt.Sprintf("Line %d: Unknown directive %q", i+1, d.Name),
			})
		}
	}

	for _, w := range warnings {
		logging.StructuralWarning(ctx, w.Line, w.Message, "reason", w.Reason)
	}

	text = chordpro.MergeMetadata(text, meta.values())
	p := &Prepared{
		Text:     text,
		Digest:   Digest(text),
		Warnings: warnings,
	}
	logging.DocumentPrepared(ctx, p.Digest, strings.Count(text, "\n")+1, len(warnings))
	return p, nil
}

func reject(ctx context.Context, reason string, line int, err error) error {
	logging.DocumentRejected(ctx, reason, err, "line", line)
	return &RejectionError{Reason: reason, Line: line, Err: err}
}
