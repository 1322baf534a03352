package songbook

import (
	"reflect"
	"sync"
	"testing"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
)

const renderSample = `{title:Amazing Grace}
{key:G}

[G]Amazing [C]grace
{soc}
[G]  [D7]
How {c:softly} sweet
{eoc}
{foo}`

func TestRender(t *testing.T) {
	r := Render(renderSample)

	if r.Metadata.Title == nil || *r.Metadata.Title != "Amazing Grace" {
		t.Errorf("Title = %v, want Amazing Grace", r.Metadata.Title)
	}
	if r.Metadata.Key == nil || *r.Metadata.Key != "G" {
		t.Errorf("Key = %v, want G", r.Metadata.Key)
	}
	if r.Digest != Digest(renderSample) {
		t.Error("Digest mismatch")
	}

	want := []struct {
		kind  LineKind
		block chordpro.BlockKind
	}{
		{LineDirective, ""},
		{LineDirective, ""},
		{LineBlank, ""},
		{LineLyrics, ""},
		{LineDirective, chordpro.BlockChorus},
		{LineChords, chordpro.BlockChorus},
		{LineLyrics, chordpro.BlockChorus},
		{LineDirective, chordpro.BlockChorus},
		{LineDirective, ""},
	}
	if len(r.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(r.Lines), len(want))
	}
	for i, w := range want {
		line := r.Lines[i]
		if line.Number != i+1 {
			t.Errorf("line %d: Number = %d", i+1, line.Number)
		}
		if line.Kind != w.kind || line.Block != w.block {
			t.Errorf("line %d: Kind/Block = %s/%q, want %s/%q", i+1, line.Kind, line.Block, w.kind, w.block)
		}
	}

	wantSegments := []chordpro.LineSegment{
		{Kind: chordpro.SegmentChord, Content: "G"},
		{Kind: chordpro.SegmentText, Content: "Amazing "},
		{Kind: chordpro.SegmentChord, Content: "C"},
		{Kind: chordpro.SegmentText, Content: "grace"},
	}
	if !reflect.DeepEqual(r.Lines[3].Segments, wantSegments) {
		t.Errorf("line 4 segments = %+v", r.Lines[3].Segments)
	}
	if len(r.Lines[0].Segments) != 0 {
		t.Errorf("directive line has segments: %+v", r.Lines[0].Segments)
	}
	inline := r.Lines[6]
	if len(inline.Directives) != 1 || inline.Directives[0].Name != "c" {
		t.Errorf("inline directives = %+v", inline.Directives)
	}
}

func TestRender_UnbalancedBlocks(t *testing.T) {
	r := Render("{eov}\n{sov}\nla")
	if r.Lines[0].Block != "" {
		t.Errorf("stray closer assigned block %q", r.Lines[0].Block)
	}
	if r.Lines[2].Block != chordpro.BlockVerse {
		t.Errorf("unclosed verse not carried: %q", r.Lines[2].Block)
	}
}

func TestRender_Empty(t *testing.T) {
	r := Render("")
	if len(r.Lines) != 1 || r.Lines[0].Kind != LineBlank {
		t.Errorf("Render(\"\") lines = %+v", r.Lines)
	}
	if !r.Metadata.IsEmpty() {
		t.Errorf("Render(\"\") metadata = %+v", r.Metadata)
	}
}

func TestRenderer_Caches(t *testing.T) {
	rd := NewRenderer(0, 4)

	first := rd.Render(renderSample)
	second := rd.Render(renderSample)
	if first != second {
		t.Error("expected cached rendering to be reused")
	}
	if !reflect.DeepEqual(first, Render(renderSample)) {
		t.Error("cached rendering differs from direct rendering")
	}

	hits, misses := rd.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}

	if rd.Render("other") == first {
		t.Error("distinct documents share a rendering")
	}
}

func TestRenderer_Concurrent(t *testing.T) {
	rd := NewRenderer(0, 2)
	docs := []string{renderSample, "la", "[G]la", "{soc}\nx\n{eoc}"}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			doc := docs[n%len(docs)]
			if got := rd.Render(doc); got.Digest != Digest(doc) {
				t.Errorf("wrong rendering for %q", doc)
			}
		}(i)
	}
	wg.Wait()
}
