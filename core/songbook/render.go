package songbook

import (
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
	"github.com/FocuswithJustin/JuniperSongbook/internal/cache"
)

// LineKind classifies a rendered line.
type LineKind string

// Line kind constants.
const (
	LineLyrics    LineKind = "lyrics"
	LineChords    LineKind = "chords"
	LineDirective LineKind = "directive"
	LineBlank     LineKind = "blank"
)

// RenderedLine is one source line prepared for display.
type RenderedLine struct {
	Number int      `json:"number"`
	Kind   LineKind `json:"kind"`

	// Block is the innermost block open on this line, if any.
	Block chordpro.BlockKind `json:"block,omitempty"`

	// Segments is empty for blank and directive lines.
	Segments   []chordpro.LineSegment `json:"segments,omitempty"`
	Directives []chordpro.Directive   `json:"directives,omitempty"`
}

// Rendered is the display form of a document. Values handed out by a
// Renderer are shared and must not be modified.
type Rendered struct {
	Digest   string               `json:"digest"`
	Metadata chordpro.MetadataSet `json:"metadata"`
	Lines    []RenderedLine       `json:"lines"`
}

// Render extracts the metadata of text once and tokenizes each line.
func Render(text string) *Rendered {
	return render(text, Digest(text))
}

func render(text, digest string) *Rendered {
	r := &Rendered{
		Digest:   digest,
		Metadata: chordpro.ExtractMetadata(text),
	}

	var open []chordpro.BlockKind
	for i, line := range strings.Split(text, "\n") {
		rl := RenderedLine{Number: i + 1}
		rl.Directives = chordpro.ScanDirectives(line)

		// A line that opens a block belongs to it; one that closes it does too.
		closed := chordpro.BlockKind("")
		for _, d := range rl.Directives {
			info := d.Info()
			switch info.Kind {
			case chordpro.KindBlockStart:
				open = append(open, info.Block)
			case chordpro.KindBlockEnd:
				if n := len(open); n > 0 && open[n-1] == info.Block {
					open = open[:n-1]
					closed = info.Block
				}
			}
		}
		if n := len(open); n > 0 {
			rl.Block = open[n-1]
		} else {
			rl.Block = closed
		}

		switch {
		case strings.TrimSpace(line) == "":
			rl.Kind = LineBlank
		case len(rl.Directives) > 0 && strings.TrimSpace(stripDirectives(line, rl.Directives)) == "":
			rl.Kind = LineDirective
		case chordpro.IsChordLine(line):
			rl.Kind = LineChords
			rl.Segments = chordpro.TokenizeLine(line)
		default:
			rl.Kind = LineLyrics
			rl.Segments = chordpro.TokenizeLine(line)
		}
		r.Lines = append(r.Lines, rl)
	}
	return r
}

func stripDirectives(line string, ds []chordpro.Directive) string {
	var b strings.Builder
	pos := 0
	for _, d := range ds {
		b.WriteString(line[pos:d.Start])
		pos = d.End
	}
	b.WriteString(line[pos:])
	return b.String()
}

// Renderer caches Render results by document digest. It is safe for
// concurrent use.
type Renderer struct {
	cache *cache.TTLCache[string, *Rendered]
}

// NewRenderer returns a Renderer whose cache keeps entries for ttl (zero
// disables expiry) and holds at most maxEntries documents (zero is unbounded).
func NewRenderer(ttl time.Duration, maxEntries int) *Renderer {
	return &Renderer{cache: cache.New[string, *Rendered](ttl, maxEntries)}
}

// Render returns the cached rendering of text, computing it on a miss.
func (r *Renderer) Render(text string) *Rendered {
	digest := Digest(text)
	return r.cache.GetOrCompute(digest, func() *Rendered {
		return render(text, digest)
	})
}

// Stats returns the cache hit and miss counts.
func (r *Renderer) Stats() (hits, misses uint64) {
	return r.cache.Stats()
}
