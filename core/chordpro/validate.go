package chordpro

import (
	"errors"
	"fmt"
	"strings"

	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
)

// Structural error categories. Both wrap core/errors.ErrInvalidInput.
var (
	// ErrMalformed marks hard failures: empty content, a block closed without a
	// matching opener, or unbalanced chord brackets on a line.
	ErrMalformed = fmt.Errorf("malformed chordpro: %w", cperrors.ErrInvalidInput)

	// ErrUnclosedBlock marks the soft failure of a block still open at the end
	// of the document. Documents saved mid-edit legitimately end this way.
	ErrUnclosedBlock = fmt.Errorf("unclosed chordpro block: %w", cperrors.ErrInvalidInput)
)

// Reason identifies why a document failed validation.
type Reason string

// Reason constants.
const (
	ReasonEmpty             Reason = "empty"
	ReasonUnexpectedEnd     Reason = "unexpected_end"
	ReasonUnmatchedBrackets Reason = "unmatched_brackets"
	ReasonUnclosedBlock     Reason = "unclosed_block"
)

// StructuralError describes the first structural problem found by Check.
type StructuralError struct {
	// Line is the 1-based line number, or 0 for document-level problems.
	Line   int
	Reason Reason

	// Block is the kind named by an unexpected closer.
	Block BlockKind

	// Open lists the blocks left open at the end of the document, bottom to top.
	Open []BlockKind
}

func (e *StructuralError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "Content cannot be empty"
	case ReasonUnexpectedEnd:
		return fmt.Sprintf("Line %d: Unexpected end_of_%s", e.Line, e.Block)
	case ReasonUnmatchedBrackets:
		return fmt.Sprintf("Line %d: Unmatched brackets in chords", e.Line)
	case ReasonUnclosedBlock:
		names := make([]string, len(e.Open))
		for i, k := range e.Open {
			names[i] = string(k)
		}
		return "Unclosed block(s): " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("Line %d: %s", e.Line, e.Reason)
}

// Soft reports whether the error is a warning that callers may proceed past.
func (e *StructuralError) Soft() bool {
	return e.Reason == ReasonUnclosedBlock
}

func (e *StructuralError) Unwrap() error {
	if e.Soft() {
		return ErrUnclosedBlock
	}
	return ErrMalformed
}

// IsSoft reports whether err is a structural warning rather than a hard
// failure. Nil and non-structural errors are not soft.
func IsSoft(err error) bool {
	var se *StructuralError
	return errors.As(err, &se) && se.Soft()
}

// blockStack is the LIFO of blocks opened but not yet closed.
type blockStack []BlockKind

func (s *blockStack) push(k BlockKind) {
	*s = append(*s, k)
}

// popIf removes the top block when it equals k.
func (s *blockStack) popIf(k BlockKind) bool {
	n := len(*s)
	if n == 0 || (*s)[n-1] != k {
		return false
	}
	*s = (*s)[:n-1]
	return true
}

// Check validates the structure of a document and returns a *StructuralError
// for the first problem found, or nil.
//
// Lines are scanned in order. Within a line every directive is applied to the
// block stack first: an opener pushes its kind, a closer must match the top of
// the stack or the scan aborts. The line's "[" and "]" counts must then agree.
// Brackets are never balanced across lines. Blocks left open at the end are
// reported last, as a soft error.
func Check(text string) error {
	if strings.TrimSpace(text) == "" {
		return &StructuralError{Reason: ReasonEmpty}
	}

	var stack blockStack
	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1

		for _, d := range ScanDirectives(line) {
			info := d.Info()
			switch info.Kind {
			case KindBlockStart:
				stack.push(info.Block)
			case KindBlockEnd:
				if !stack.popIf(info.Block) {
					return &StructuralError{Line: lineNum, Reason: ReasonUnexpectedEnd, Block: info.Block}
				}
			}
		}

		if strings.Count(line, "[") != strings.Count(line, "]") {
			return &StructuralError{Line: lineNum, Reason: ReasonUnmatchedBrackets}
		}
	}

	if len(stack) > 0 {
		open := make([]BlockKind, len(stack))
		copy(open, stack)
		return &StructuralError{Reason: ReasonUnclosedBlock, Open: open}
	}
	return nil
}

// Validate reports whether text is structurally well formed. On failure the
// message is the human-readable reason, e.g. "Line 3: Unexpected end_of_chorus";
// on success it is empty.
func Validate(text string) (bool, string) {
	if err := Check(text); err != nil {
		return false, err.Error()
	}
	return true, ""
}
