package chordpro

import (
	"strconv"
	"strings"
)

// MetadataSet holds the document-level fields carried by directives. A nil
// field means no directive for it was seen.
//
// Capo is never "absent" once a capo directive exists: a missing or
// non-integer value yields 0. Callers must not read 0 as "no capo directive".
type MetadataSet struct {
	Title  *string `json:"title,omitempty"`
	Artist *string `json:"artist,omitempty"`
	Capo   *int    `json:"capo,omitempty"`
	Key    *string `json:"key,omitempty"`
	Tempo  *string `json:"tempo,omitempty"`
	Time   *string `json:"time,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m MetadataSet) IsEmpty() bool {
	return m.Title == nil && m.Artist == nil && m.Capo == nil &&
		m.Key == nil && m.Tempo == nil && m.Time == nil
}

// ExtractMetadata scans every directive in the document, in document order,
// and records the metadata fields they carry. When a field appears more than
// once the last occurrence wins. Directives without a value set the field to
// the empty string (capo: to 0).
func ExtractMetadata(text string) MetadataSet {
	var m MetadataSet
	for _, d := range ScanDirectives(text) {
		info := d.Info()
		if info.Kind != KindMetadata {
			continue
		}
		value := d.Value
		switch info.Field {
		case FieldTitle:
			m.Title = &value
		case FieldArtist:
			m.Artist = &value
		case FieldKey:
			m.Key = &value
		case FieldTempo:
			m.Tempo = &value
		case FieldTime:
			m.Time = &value
		case FieldCapo:
			capo := parseCapo(value)
			m.Capo = &capo
		}
	}
	return m
}

// parseCapo reads a capo value as a base-10 integer, tolerating surrounding
// whitespace. Anything unparseable is 0.
func parseCapo(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
