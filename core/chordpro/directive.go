package chordpro

import (
	"regexp"
	"strings"
)

// directiveRegex matches "{name}" and "{name:value}". The name may not contain
// ':' or '}'; the value may not contain '}'.
var directiveRegex = regexp.MustCompile(`\{([^:}]+)(?::([^}]*))?\}`)

// DirectiveKind classifies a directive name.
type DirectiveKind string

// Directive kind constants.
const (
	KindUnknown    DirectiveKind = "unknown"
	KindMetadata   DirectiveKind = "metadata"
	KindBlockStart DirectiveKind = "block_start"
	KindBlockEnd   DirectiveKind = "block_end"
	// KindFormatting covers recognized directives that carry neither metadata
	// nor block structure (comments, subtitles, page and column control).
	KindFormatting DirectiveKind = "formatting"
)

// BlockKind names a delimited section of a song.
type BlockKind string

// Block kind constants.
const (
	BlockChorus BlockKind = "chorus"
	BlockVerse  BlockKind = "verse"
	BlockBridge BlockKind = "bridge"
	BlockTab    BlockKind = "tab"
)

// Field names a metadata field carried by a directive.
type Field string

// Metadata field constants.
const (
	FieldTitle  Field = "title"
	FieldArtist Field = "artist"
	FieldCapo   Field = "capo"
	FieldKey    Field = "key"
	FieldTempo  Field = "tempo"
	FieldTime   Field = "time"
)

// DirectiveInfo describes what a directive name means.
type DirectiveInfo struct {
	// Canonical is the long form of the name (e.g. "start_of_chorus" for "soc").
	Canonical string `json:"canonical,omitempty"`

	Kind DirectiveKind `json:"kind"`

	// Field is set when Kind is KindMetadata.
	Field Field `json:"field,omitempty"`

	// Block is set when Kind is KindBlockStart or KindBlockEnd.
	Block BlockKind `json:"block,omitempty"`
}

// vocabulary maps every recognized directive name, canonical or abbreviated,
// to its meaning. Lookups are case-sensitive.
var vocabulary = map[string]DirectiveInfo{}

func init() {
	metadata := func(field Field, aliases ...string) {
		for _, a := range aliases {
			vocabulary[a] = DirectiveInfo{Canonical: string(field), Kind: KindMetadata, Field: field}
		}
	}
	metadata(FieldTitle, "title", "t")
	metadata(FieldArtist, "artist", "a")
	metadata(FieldCapo, "capo")
	metadata(FieldKey, "key")
	metadata(FieldTempo, "tempo")
	metadata(FieldTime, "time")

	block := func(kind BlockKind, short, long string, closers ...string) {
		start := DirectiveInfo{Canonical: "start_of_" + string(kind), Kind: KindBlockStart, Block: kind}
		vocabulary[short] = start
		vocabulary[long] = start
		vocabulary[string(kind)] = start
		for _, c := range closers {
			vocabulary[c] = DirectiveInfo{Canonical: "end_of_" + string(kind), Kind: KindBlockEnd, Block: kind}
		}
	}
	block(BlockChorus, "soc", "start_of_chorus", "eoc", "end_of_chorus")
	block(BlockVerse, "sov", "start_of_verse", "eov", "end_of_verse")
	block(BlockBridge, "sob", "start_of_bridge", "eob", "end_of_bridge")
	block(BlockTab, "sot", "start_of_tab", "eot", "end_of_tab")

	// "cb" and "col" are claimed by two long forms each; the first listed wins.
	formatting := [][2]string{
		{"subtitle", "st"},
		{"comment", "c"},
		{"comment_italic", "ci"},
		{"comment_box", "cb"},
		{"grid", "g"},
		{"no_grid", "ng"},
		{"new_song", "ns"},
		{"new_page", "np"},
		{"new_physical_page", "npp"},
		{"column_break", "cb"},
		{"columns", "col"},
		{"column", "col"},
	}
	for _, pair := range formatting {
		info := DirectiveInfo{Canonical: pair[0], Kind: KindFormatting}
		vocabulary[pair[0]] = info
		if _, taken := vocabulary[pair[1]]; !taken {
			vocabulary[pair[1]] = info
		}
	}
}

// LookupDirective classifies a directive name. Unrecognized names return an
// info with Kind KindUnknown and an empty Canonical.
func LookupDirective(name string) DirectiveInfo {
	if info, ok := vocabulary[name]; ok {
		return info
	}
	return DirectiveInfo{Kind: KindUnknown}
}

// IsSupported reports whether name belongs to the recognized vocabulary.
func IsSupported(name string) bool {
	_, ok := vocabulary[name]
	return ok
}

// Directive is one "{name}" or "{name:value}" occurrence in a text.
type Directive struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`

	// HasValue distinguishes "{key:}" from "{key}".
	HasValue bool `json:"has_value"`

	// Start and End are byte offsets of the braces in the scanned text.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Info returns the vocabulary entry for the directive name.
func (d Directive) Info() DirectiveInfo {
	return LookupDirective(d.Name)
}

// String renders the directive in source form.
func (d Directive) String() string {
	if d.HasValue {
		return "{" + d.Name + ":" + d.Value + "}"
	}
	return "{" + d.Name + "}"
}

// ScanDirectives returns every directive occurrence in text, left to right.
// The scan is not line-scoped: a name may run across a newline exactly as the
// directive syntax allows.
func ScanDirectives(text string) []Directive {
	matches := directiveRegex.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	directives := make([]Directive, 0, len(matches))
	for _, m := range matches {
		d := Directive{
			Name:  text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		}
		if m[4] >= 0 {
			d.Value = text[m[4]:m[5]]
			d.HasValue = true
		}
		directives = append(directives, d)
	}
	return directives
}

// formatDirective writes the canonical "{name:value}" form. Line breaks and
// closing braces cannot survive inside a directive, so they are dropped to
// keep the written line parseable as the same single directive.
func formatDirective(name, value string) string {
	value = directiveValueReplacer.Replace(value)
	return "{" + name + ":" + value + "}"
}

var directiveValueReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ", "}", "")
