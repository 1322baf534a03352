package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/JuniperSongbook/core/chordpro"
	"github.com/FocuswithJustin/JuniperSongbook/internal/fileutil"
	"github.com/FocuswithJustin/JuniperSongbook/internal/logging"
)

type validateResult struct {
	Path    string `json:"path,omitempty"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// validateAll reads and validates paths concurrently. Results keep the
// order of paths. The first read error cancels the remaining work.
func validateAll(ctx context.Context, read func(string) (string, error), paths []string, jobs int) ([]validateResult, error) {
	stdin := 0
	for _, p := range paths {
		if p == fileutil.StdioPath {
			stdin++
		}
	}
	if stdin > 1 {
		return nil, fmt.Errorf("stdin can only be read once")
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine owns one index.
	results := make([]validateResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := read(path)
			if err != nil {
				return err
			}
			valid, message := chordpro.Validate(text)
			results[i] = validateResult{Path: path, Valid: valid, Message: message}
			if !valid {
				logging.WarnContext(gctx, "document_invalid", "path", path, "message", message)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printValidateResults(w io.Writer, results []validateResult) {
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "%s: valid\n", r.Path)
		} else {
			fmt.Fprintf(w, "%s: %s\n", r.Path, r.Message)
		}
	}
}

func countInvalid(results []validateResult) int {
	n := 0
	for _, r := range results {
		if !r.Valid {
			n++
		}
	}
	return n
}
