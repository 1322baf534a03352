package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
	cperrors "github.com/FocuswithJustin/JuniperSongbook/core/errors"
	"github.com/FocuswithJustin/JuniperSongbook/core/songbook"
	"github.com/FocuswithJustin/JuniperSongbook/internal/config"
	"github.com/FocuswithJustin/JuniperSongbook/internal/logging"
)

const sampleSong = "{title:Amazing Grace}\n{artist:John Newton}\n\n[G]Amazing [C]grace\n{soc}\n[G]How sweet\n{eoc}"

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// runCLI parses args and runs the selected command with an isolated config.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConfigPath, "")

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("songbook"),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}

	var stdout bytes.Buffer
	app, err := setup(&cli, strings.NewReader(stdin), &stdout)
	if err != nil {
		return "", err
	}
	err = ctx.Run(app)
	return stdout.String(), err
}

func TestNormalizeCmd(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "song.cho", "[G]la  \r\n\r\n\r\n\r\nend\r\n\r\n")

	out, err := runCLI(t, "", "normalize", path)
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	if out != "[G]la\n\n\nend" {
		t.Errorf("stdout = %q", out)
	}

	outPath := filepath.Join(dir, "clean.cho.xz")
	if _, err := runCLI(t, "", "normalize", path, "--out", outPath); err != nil {
		t.Fatalf("normalize --out failed: %v", err)
	}
	back, err := runCLI(t, "", "normalize", outPath)
	if err != nil {
		t.Fatalf("reading compressed output failed: %v", err)
	}
	if back != "[G]la\n\n\nend" {
		t.Errorf("compressed round trip = %q", back)
	}
}

func TestValidateCmd(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOut string
		wantErr string
	}{
		{"valid", sampleSong, "valid\n", ""},
		{"unexpected end", "la\n{eoc}", "", "Line 2: Unexpected end_of_chorus"},
		{"unclosed", "{sov}", "", "Unclosed block(s): verse"},
		{"empty", "   ", "", "Content cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.input, "validate", "-")
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			} else if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
			if out != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out, tt.wantOut)
			}
		})
	}
}

func TestValidateCmd_JSON(t *testing.T) {
	out, err := runCLI(t, "[G", "validate", "-", "--json")
	if err == nil {
		t.Fatal("expected error for invalid document")
	}
	var result struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Valid || result.Message != "Line 1: Unmatched brackets in chords" {
		t.Errorf("result = %+v", result)
	}
}

func TestCheckCmd(t *testing.T) {
	out, err := runCLI(t, "[G]la\r\n{soc}\r\n", "check", "-", "--title", "Song", "--capo", "0")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	want := "{title:Song}\n{capo:0}\n\n[G]la\n{soc}"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	out, err := runCLI(t, "{soc}\n{foo}", "check", "-", "--json")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	var p songbook.Prepared
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if p.Digest != songbook.Digest(p.Text) {
		t.Error("digest does not match text")
	}
	if len(p.Warnings) != 2 {
		t.Errorf("warnings = %+v, want unclosed block and unknown directive", p.Warnings)
	}
}

func TestCheckCmd_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		args   []string
		target error
	}{
		{"hard error", "{eoc}", nil, chordpro.ErrMalformed},
		{"strict blocks flag", "{soc}", []string{"--strict-blocks"}, chordpro.ErrUnclosedBlock},
		{"reject unknown flag", "{foo}", []string{"--reject-unknown"}, cperrors.ErrUnsupported},
		{"capo out of range", "la", []string{"--capo", "13"}, cperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"check", "-"}, tt.args...)
			_, err := runCLI(t, tt.input, args...)
			if !errors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestCheckCmd_ConfigPolicy(t *testing.T) {
	dir := t.TempDir()
	cfgPath := createTestFile(t, dir, "songbook.toml", "[policy]\nstrict_blocks = true\n")

	_, err := runCLI(t, "{soc}\nla", "--config", cfgPath, "check", "-")
	if !errors.Is(err, chordpro.ErrUnclosedBlock) {
		t.Errorf("expected strict policy from config, got %v", err)
	}
}

func TestMetadataCmd(t *testing.T) {
	input := "{t:Song}\n{capo:x}\n{key:G}\n{tempo:90}"

	out, err := runCLI(t, input, "metadata", "-")
	if err != nil {
		t.Fatalf("metadata failed: %v", err)
	}
	want := "title: Song\ncapo: 0\nkey: G\ntempo: 90\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}

	out, err = runCLI(t, input, "metadata", "-", "--json")
	if err != nil {
		t.Fatalf("metadata --json failed: %v", err)
	}
	var m chordpro.MetadataSet
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if m.Capo == nil || *m.Capo != 0 || m.Artist != nil {
		t.Errorf("metadata = %+v", m)
	}
}

func TestMergeCmd(t *testing.T) {
	out, err := runCLI(t, "{title:Old}\nla", "merge", "-", "--title", "New", "--artist", "Me", "--key", "A")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	want := "{artist:Me}\n{key:A}\n{title:New}\n\nla"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestMergeCmd_NoFlagsLeavesContent(t *testing.T) {
	out, err := runCLI(t, "la\n\nla", "merge", "-")
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if out != "la\n\nla" {
		t.Errorf("stdout = %q", out)
	}
}

func TestTokenizeCmd(t *testing.T) {
	out, err := runCLI(t, sampleSong, "tokenize", "-", "--line", "4")
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	want := "4\tchord\t\"G\"\n4\ttext\t\"Amazing \"\n4\tchord\t\"C\"\n4\ttext\t\"grace\"\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}

	out, err = runCLI(t, "[G]la\n", "tokenize", "-", "--json")
	if err != nil {
		t.Fatalf("tokenize --json failed: %v", err)
	}
	var all [][]chordpro.LineSegment
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(all) != 2 || len(all[0]) != 2 || len(all[1]) != 0 {
		t.Errorf("segments = %+v", all)
	}
	if !strings.Contains(out, `"type": "chord"`) {
		t.Errorf("expected type tag in JSON, got %s", out)
	}

	if _, err := runCLI(t, "la", "tokenize", "-", "--line", "5"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestRenderCmd(t *testing.T) {
	out, err := runCLI(t, sampleSong, "render", "-")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if !strings.HasPrefix(lines[0], "digest: "+songbook.Digest(sampleSong)) {
		t.Errorf("missing digest header: %q", lines[0])
	}
	if lines[4] != "4\tlyrics\t-\t4" {
		t.Errorf("line 4 = %q", lines[4])
	}
	if lines[6] != "6\tlyrics\tchorus\t2" {
		t.Errorf("line 6 = %q", lines[6])
	}

	out, err = runCLI(t, sampleSong, "render", "-", "--json")
	if err != nil {
		t.Fatalf("render --json failed: %v", err)
	}
	var r songbook.Rendered
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(r.Lines) != 7 || r.Metadata.Title == nil {
		t.Errorf("rendered = %+v", r)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLI(t, "", "validate", filepath.Join(dir, "missing.cho")); !errors.Is(err, cperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	big := createTestFile(t, dir, "big.cho", strings.Repeat("la\n", 100))
	cfgPath := createTestFile(t, dir, "songbook.toml", "[input]\nmax_bytes = 50\n")
	if _, err := runCLI(t, "", "--config", cfgPath, "validate", big); !errors.Is(err, cperrors.ErrInvalidInput) {
		t.Errorf("expected size limit error, got %v", err)
	}
}

func TestInvalidLogOverride(t *testing.T) {
	if _, err := runCLI(t, "", "--log-level", "loud", "version"); err == nil {
		t.Error("expected invalid log level to fail")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "songbook version "+version+"\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRenderCmd_SharedCache(t *testing.T) {
	dir := t.TempDir()
	first := createTestFile(t, dir, "first.cho", sampleSong)
	again := createTestFile(t, dir, "again.cho", sampleSong)
	other := createTestFile(t, dir, "other.cho", "[G]la")

	var logs bytes.Buffer
	logging.SetOutput(&logs)
	defer logging.SetOutput(io.Discard)

	out, err := runCLI(t, "", "--log-level", "debug", "--log-format", "json", "render", first, again, other)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(out, "path: "+first+"\ndigest: ") {
		t.Errorf("missing path header: %q", out)
	}
	if strings.Count(out, "digest: "+songbook.Digest(sampleSong)) != 2 {
		t.Errorf("expected the repeated song twice:\n%s", out)
	}
	if !strings.Contains(out, "\n\npath: "+other+"\n") {
		t.Errorf("documents not separated:\n%s", out)
	}

	var stats struct {
		Msg    string `json:"msg"`
		Hits   int    `json:"hits"`
		Misses int    `json:"misses"`
	}
	found := false
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &stats); err == nil && stats.Msg == "render_cache" {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("no render_cache record in logs:\n%s", logs.String())
	}
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 1/2", stats.Hits, stats.Misses)
	}

	out, err = runCLI(t, "", "render", first, other, "--json")
	if err != nil {
		t.Fatalf("render --json failed: %v", err)
	}
	var all []songbook.Rendered
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(all) != 2 || all[1].Digest != songbook.Digest("[G]la") {
		t.Errorf("rendered = %+v", all)
	}
}

func TestCheckCmd_LogsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.cho")

	var logs bytes.Buffer
	logging.SetOutput(&logs)
	defer logging.SetOutput(io.Discard)

	if _, err := runCLI(t, "[G]la", "--log-format", "json", "check", "-", "--out", outPath); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(logs.String(), `"msg":"document_written"`) || !strings.Contains(logs.String(), `"run_id":`) {
		t.Errorf("expected document_written record with run_id, got:\n%s", logs.String())
	}
}
