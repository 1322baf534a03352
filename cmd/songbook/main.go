// Command songbook is the CLI for the Juniper Songbook ChordPro engine.
// It normalizes, validates, inspects, and prepares ChordPro song files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
	"github.com/FocuswithJustin/JuniperSongbook/core/songbook"
	"github.com/FocuswithJustin/JuniperSongbook/internal/config"
	"github.com/FocuswithJustin/JuniperSongbook/internal/fileutil"
	"github.com/FocuswithJustin/JuniperSongbook/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for songbook.
type CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Configuration file (default: $SONGBOOK_CONFIG or ~/.config/songbook/config.toml)" type:"path"`
	LogLevel  string `name:"log-level" help:"Override log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Override log format (text, json)"`

	Normalize NormalizeCmd `cmd:"" help:"Unify line endings, trim trailing whitespace, collapse blank lines"`
	Validate  ValidateCmd  `cmd:"" help:"Check block and bracket structure"`
	Check     CheckCmd     `cmd:"" help:"Prepare a song for storage: normalize, check, merge metadata"`
	Metadata  MetadataCmd  `cmd:"" help:"Print title, artist, capo, key, tempo and time"`
	Merge     MergeCmd     `cmd:"" help:"Inject or update title, artist, capo and key directives"`
	Tokenize  TokenizeCmd  `cmd:"" help:"Split lines into text and chord segments"`
	Render    RenderCmd    `cmd:"" help:"Classify and tokenize every line of one or more songs"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// App carries what every command needs. It is bound into kong's Run.
type App struct {
	Ctx      context.Context
	Config   *config.Config
	Stdin    io.Reader
	Stdout   io.Writer
	Renderer *songbook.Renderer
}

func (a *App) read(path string) (string, error) {
	return fileutil.ReadDocument(path, a.Stdin, a.Config.Input.MaxBytes)
}

func (a *App) write(path, text string) error {
	if err := fileutil.WriteDocument(path, a.Stdout, text); err != nil {
		return err
	}
	if path != fileutil.StdioPath {
		logging.InfoContext(a.Ctx, "document_written", "path", path, "bytes", len(text))
	}
	return nil
}

func (a *App) printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintf(a.Stdout, "%s\n", output)
	return err
}

// MetaFlags are the metadata overrides shared by check and merge.
type MetaFlags struct {
	Title  string `help:"Song title"`
	Artist string `help:"Song artist"`
	Capo   int    `help:"Capo fret; negative leaves the capo directive alone" default:"-1"`
	Key    string `help:"Song key"`
}

func (f MetaFlags) capo() *int {
	if f.Capo < 0 {
		return nil
	}
	capo := f.Capo
	return &capo
}

// NormalizeCmd rewrites a document in normalized form.
type NormalizeCmd struct {
	Path string `arg:"" help:"Song file, or - for stdin"`
	Out  string `short:"o" help:"Output file, or - for stdout" default:"-"`
}

func (c *NormalizeCmd) Run(app *App) error {
	text, err := app.read(c.Path)
	if err != nil {
		return err
	}
	return app.write(c.Out, chordpro.Normalize(text))
}

// ValidateCmd reports structural problems.
type ValidateCmd struct {
	Paths []string `arg:"" help:"Song files, or - for stdin"`
	Jobs  int      `short:"j" help:"Files to check concurrently; 0 uses GOMAXPROCS" default:"0"`
	JSON  bool     `help:"Print the result as JSON"`
}

func (c *ValidateCmd) Run(app *App) error {
	if len(c.Paths) == 1 {
		return c.runOne(app, c.Paths[0])
	}

	results, err := validateAll(app.Ctx, app.read, c.Paths, c.Jobs)
	if err != nil {
		return err
	}
	if c.JSON {
		if err := app.printJSON(results); err != nil {
			return err
		}
	} else {
		printValidateResults(app.Stdout, results)
	}
	if n := countInvalid(results); n > 0 {
		return fmt.Errorf("%d of %d documents invalid", n, len(results))
	}
	return nil
}

func (c *ValidateCmd) runOne(app *App, path string) error {
	text, err := app.read(path)
	if err != nil {
		return err
	}
	valid, message := chordpro.Validate(text)
	if c.JSON {
		if err := app.printJSON(validateResult{Valid: valid, Message: message}); err != nil {
			return err
		}
	} else if valid {
		fmt.Fprintln(app.Stdout, "valid")
	}
	if !valid {
		return fmt.Errorf("%s", message)
	}
	return nil
}

// CheckCmd runs the full write path and prints the text to store.
type CheckCmd struct {
	Path string `arg:"" help:"Song file, or - for stdin"`

	MetaFlags `embed:""`

	StrictBlocks  bool   `name:"strict-blocks" help:"Reject unclosed blocks instead of warning"`
	RejectUnknown bool   `name:"reject-unknown" help:"Reject unknown directives instead of warning"`
	Out           string `short:"o" help:"Output file, or - for stdout" default:"-"`
	JSON          bool   `help:"Print text, digest and warnings as JSON"`
}

func (c *CheckCmd) Run(app *App) error {
	text, err := app.read(c.Path)
	if err != nil {
		return err
	}
	policy := songbook.Policy{
		StrictBlocks:            c.StrictBlocks || app.Config.Policy.StrictBlocks,
		RejectUnknownDirectives: c.RejectUnknown || app.Config.Policy.RejectUnknownDirectives,
	}
	meta := songbook.Meta{Title: c.Title, Artist: c.Artist, Capo: c.capo(), Key: c.Key}

	prepared, err := songbook.Prepare(app.Ctx, text, meta, policy)
	if err != nil {
		return err
	}
	if c.JSON {
		return app.printJSON(prepared)
	}
	return app.write(c.Out, prepared.Text)
}

// MetadataCmd prints document metadata.
type MetadataCmd struct {
	Path string `arg:"" help:"Song file, or - for stdin"`
	JSON bool   `help:"Print metadata as JSON"`
}

func (c *MetadataCmd) Run(app *App) error {
	text, err := app.read(c.Path)
	if err != nil {
		return err
	}
	m := chordpro.ExtractMetadata(text)
	if c.JSON {
		return app.printJSON(m)
	}

	field := func(name string, v *string) {
		if v != nil {
			fmt.Fprintf(app.Stdout, "%s: %s\n", name, *v)
		}
	}
	field("title", m.Title)
	field("artist", m.Artist)
	if m.Capo != nil {
		fmt.Fprintf(app.Stdout, "capo: %d\n", *m.Capo)
	}
	field("key", m.Key)
	field("tempo", m.Tempo)
	field("time", m.Time)
	return nil
}

// MergeCmd injects metadata without normalizing or checking the document.
type MergeCmd struct {
	Path string `arg:"" help:"Song file, or - for stdin"`

	MetaFlags `embed:""`

	Out string `short:"o" help:"Output file, or - for stdout" default:"-"`
}

func (c *MergeCmd) Run(app *App) error {
	text, err := app.read(c.Path)
	if err != nil {
		return err
	}
	values := chordpro.MergeValues{Title: &c.Title, Artist: &c.Artist, Capo: c.capo(), Key: &c.Key}
	return app.write(c.Out, chordpro.MergeMetadata(text, values))
}

// TokenizeCmd prints the segments of one line or every line.
type TokenizeCmd struct {
	Path string `arg:"" help:"Song file, or - for stdin"`
	Line int    `short:"l" help:"1-based line to tokenize; 0 for all lines" default:"0"`
	JSON bool   `help:"Print segments as JSON"`
}

func (c *TokenizeCmd) Run(app *App) error {
	text, err := app.read(c.Path)
	if err != nil {
		return err
	}
	lines := strings.Split(text, "\n")
	if c.Line < 0 || c.Line > len(lines) {
		return fmt.Errorf("line %d out of range: document has %d lines", c.Line, len(lines))
	}

	if c.Line > 0 {
		segments := chordpro.TokenizeLine(lines[c.Line-1])
		if c.JSON {
			return app.printJSON(segments)
		}
		printSegments(app.Stdout, c.Line, segments)
		return nil
	}

	all := make([][]chordpro.LineSegment, len(lines))
	for i, line := range lines {
		all[i] = chordpro.TokenizeLine(line)
	}
	if c.JSON {
		return app.printJSON(all)
	}
	for i, segments := range all {
		printSegments(app.Stdout, i+1, segments)
	}
	return nil
}

func printSegments(w io.Writer, line int, segments []chordpro.LineSegment) {
	for _, s := range segments {
		fmt.Fprintf(w, "%d\t%s\t%q\n", line, s.Kind, s.Content)
	}
}

// RenderCmd prints the line classification of one or more documents. All
// documents share the render cache, so repeated songs are classified once.
type RenderCmd struct {
	Paths []string `arg:"" help:"Song files, or - for stdin"`
	JSON  bool     `help:"Print the full rendering as JSON"`
}

func (c *RenderCmd) Run(app *App) error {
	rendered := make([]*songbook.Rendered, 0, len(c.Paths))
	for _, path := range c.Paths {
		text, err := app.read(path)
		if err != nil {
			return err
		}
		rendered = append(rendered, app.Renderer.Render(text))
	}

	hits, misses := app.Renderer.Stats()
	logging.LoggerFromContext(app.Ctx).Debug("render_cache", "documents", len(rendered), "hits", hits, "misses", misses)

	if c.JSON {
		if len(rendered) == 1 {
			return app.printJSON(rendered[0])
		}
		return app.printJSON(rendered)
	}

	for i, r := range rendered {
		if len(rendered) > 1 {
			if i > 0 {
				fmt.Fprintln(app.Stdout)
			}
			fmt.Fprintf(app.Stdout, "path: %s\n", c.Paths[i])
		}
		printRendered(app.Stdout, r)
	}
	return nil
}

func printRendered(w io.Writer, r *songbook.Rendered) {
	fmt.Fprintf(w, "digest: %s\n", r.Digest)
	rows := make([][]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		block := string(line.Block)
		if block == "" {
			block = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(line.Number), string(line.Kind), block, strconv.Itoa(len(line.Segments)),
		})
	}

	if isTerminal(w) {
		headers := []string{"Line", "Kind", "Block", "Segments"}
		aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}
		fmt.Fprintln(w, renderTable(headers, rows, aligns))
		return
	}
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.Stdout, "songbook version %s\n", version)
	return nil
}

// setup loads configuration, applies flag overrides, and configures logging.
func setup(cli *CLI, stdin io.Reader, stdout io.Writer) (*App, error) {
	cfg, _, _, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.InitLogger(level, format)

	runID := logging.NewRunID()
	ctx := logging.WithRunID(context.Background(), runID)
	logging.DebugContext(ctx, "config_loaded", "level", cfg.Log.Level, "strict_blocks", cfg.Policy.StrictBlocks)

	return &App{
		Ctx:      ctx,
		Config:   cfg,
		Stdin:    stdin,
		Stdout:   stdout,
		Renderer: songbook.NewRenderer(cfg.Cache.TTL(), cfg.Cache.MaxEntries),
	}, nil
}

func main() {
	logging.SetOutput(os.Stderr)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("songbook"),
		kong.Description("Juniper Songbook - ChordPro format engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	app, err := setup(&cli, os.Stdin, os.Stdout)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
