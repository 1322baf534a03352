package chordpro

import (
	"strings"
	"testing"
)

var fuzzSeeds = []string{
	"",
	"{title:Amazing Grace}\n{artist:John Newton}\n\n[G]Amazing [C]grace",
	"{soc}\n[G]la\n{eoc}",
	"{sov}\n{soc}\n",
	"[[G]\n]][[",
	"a\r\nb\r\n\r\n\r\n\r\nc\n\n",
	"{t:x}{a:y} tail\n{capo:not a number}",
	"{a\n{title:x}",
	"[ [Am7]la [",
}

// FuzzNormalize checks that Normalize is total and idempotent.
func FuzzNormalize(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		once := Normalize(input)
		if Normalize(once) != once {
			t.Errorf("Normalize not idempotent for %q", input)
		}
		if strings.Contains(once, "\r") {
			t.Errorf("Normalize left a carriage return in %q", once)
		}
		if strings.HasSuffix(once, "\n") {
			t.Errorf("Normalize left a trailing blank line in %q", once)
		}
		if strings.Contains(once, "\n\n\n\n") {
			t.Errorf("Normalize kept more than two blank lines in %q", once)
		}
	})
}

// FuzzValidate checks that Validate never panics and agrees with Check.
func FuzzValidate(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		valid, msg := Validate(input)
		err := Check(input)
		if valid != (err == nil) {
			t.Errorf("Validate and Check disagree for %q", input)
		}
		if valid && msg != "" {
			t.Errorf("valid document produced message %q", msg)
		}
		if !valid && msg == "" {
			t.Errorf("invalid document produced no message")
		}
	})
}

// FuzzMergeMetadata checks idempotence and that content lines survive.
func FuzzMergeMetadata(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s, "Song", "Artist", 2, "G")
	}
	f.Add("la", "", "", -1, "")

	f.Fuzz(func(t *testing.T, doc, title, artist string, capo int, key string) {
		values := MergeValues{Title: &title, Artist: &artist, Key: &key}
		if capo >= 0 {
			values.Capo = &capo
		}

		once := MergeMetadata(doc, values)
		if twice := MergeMetadata(once, values); twice != once {
			t.Errorf("MergeMetadata not idempotent for %q: %q then %q", doc, once, twice)
		}

		for _, line := range strings.Split(doc, "\n") {
			managed := false
			for _, d := range ScanDirectives(line) {
				if _, ok := mergedField(d); ok {
					managed = true
				}
			}
			if !managed && !strings.Contains(once, line) {
				t.Errorf("content line %q dropped", line)
			}
		}
	})
}

// FuzzTokenizeLine checks that segments reassemble into the source line.
func FuzzTokenizeLine(f *testing.F) {
	for _, s := range fuzzSeeds {
		for _, line := range strings.Split(s, "\n") {
			f.Add(line)
		}
	}

	f.Fuzz(func(t *testing.T, line string) {
		var b strings.Builder
		for _, seg := range TokenizeLine(line) {
			switch seg.Kind {
			case SegmentText:
				if seg.Content == "" {
					t.Error("empty text segment emitted")
				}
				b.WriteString(seg.Content)
			case SegmentChord:
				b.WriteString("[" + seg.Content + "]")
			}
		}
		if b.String() != line {
			t.Errorf("segments of %q reassemble to %q", line, b.String())
		}
	})
}
