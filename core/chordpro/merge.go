package chordpro

import (
	"strconv"
	"strings"
)

// MergeValues carries the metadata a caller wants present in a document.
// Title, Artist and Key count as supplied only when non-nil and non-empty;
// Capo counts as supplied whenever it is non-nil, including 0.
type MergeValues struct {
	Title  *string
	Artist *string
	Capo   *int
	Key    *string
}

// mergeFields is the set of fields MergeMetadata manages, in header order.
var mergeFields = []Field{FieldTitle, FieldArtist, FieldCapo, FieldKey}

// lookup returns the value to write for f and whether the caller supplied one.
func (v MergeValues) lookup(f Field) (string, bool) {
	var s *string
	switch f {
	case FieldTitle:
		s = v.Title
	case FieldArtist:
		s = v.Artist
	case FieldKey:
		s = v.Key
	case FieldCapo:
		if v.Capo == nil {
			return "", false
		}
		return strconv.Itoa(*v.Capo), true
	}
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}

// mergedField reports which managed field a directive sets, if any.
func mergedField(d Directive) (Field, bool) {
	info := d.Info()
	if info.Kind != KindMetadata {
		return "", false
	}
	switch info.Field {
	case FieldTitle, FieldArtist, FieldCapo, FieldKey:
		return info.Field, true
	}
	return "", false
}

// MergeMetadata injects or updates title, artist, capo and key directives.
//
// A line holding a directive for one of those fields is a metadata line. When
// the caller supplies a value for a field found on such a line, the line is
// rewritten to canonical "{field:value}" directives; otherwise it is kept as
// is. Supplied fields with no directive anywhere get a new line. The result
// is: new lines (title, artist, capo, key order), then the metadata lines in
// their original order, then a blank separator when the remaining content has
// text and does not already start with a blank line, then every other line
// untouched.
//
// MergeMetadata never fails and is idempotent: merging the same values twice
// gives the same text as merging once.
func MergeMetadata(text string, values MergeValues) string {
	lines := strings.Split(text, "\n")

	// Index every managed directive by line.
	found := make(map[Field]bool, len(mergeFields))
	isMeta := make([]bool, len(lines))
	rewrites := make(map[int]string)
	for i, line := range lines {
		var b strings.Builder
		rewritten := false
		for _, d := range ScanDirectives(line) {
			field, ok := mergedField(d)
			if !ok {
				b.WriteString(line[d.Start:d.End])
				continue
			}
			isMeta[i] = true
			found[field] = true
			if value, supplied := values.lookup(field); supplied {
				b.WriteString(formatDirective(string(field), value))
				rewritten = true
			} else {
				b.WriteString(line[d.Start:d.End])
			}
		}
		if rewritten {
			rewrites[i] = b.String()
		}
	}

	// Synthesize the fields the document lacks.
	var header []string
	for _, field := range mergeFields {
		if value, supplied := values.lookup(field); supplied && !found[field] {
			header = append(header, formatDirective(string(field), value))
		}
	}

	// Re-emit, lifting metadata lines into the header.
	var content []string
	for i, line := range lines {
		if !isMeta[i] {
			content = append(content, line)
			continue
		}
		if r, ok := rewrites[i]; ok {
			line = r
		}
		header = append(header, line)
	}

	out := header
	if len(header) > 0 && hasText(content) && !isBlank(content[0]) {
		out = append(out, "")
	}
	out = append(out, content...)
	return strings.Join(out, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func hasText(lines []string) bool {
	for _, line := range lines {
		if !isBlank(line) {
			return true
		}
	}
	return false
}
