package report

import (
	"fmt"
	"io"
	"sort"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the
// same API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	Write(summary *Summary) error
}

// TextWriter outputs human-readable text summaries for terminal display.
//
// Design decision: Plain text with ASCII formatting rather than ANSI
// colors because it works in all terminals and pipes cleanly to files.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write outputs the summary as plain text.
func (w *TextWriter) Write(summary *Summary) error {
	if _, err := fmt.Fprintf(w.output, "utmlink rewrite summary (run %s)\n", summary.RunID); err != nil {
		return err
	}

	if summary.PageURL != "" {
		if _, err := fmt.Fprintf(w.output, "landing URL: %s\n", summary.PageURL); err != nil {
			return err
		}
	}

	if len(summary.Captured) > 0 {
		if _, err := fmt.Fprintln(w.output, "parameters:"); err != nil {
			return err
		}
		for _, name := range sortedKeys(summary.Captured) {
			if _, err := fmt.Fprintf(w.output, "  %s = %s\n", name, summary.Captured[name]); err != nil {
				return err
			}
		}
	} else {
		if _, err := fmt.Fprintln(w.output, "parameters: (none captured)"); err != nil {
			return err
		}
	}

	for _, f := range summary.Files {
		if f.Err != "" {
			if _, err := fmt.Fprintf(w.output, "%s: ERROR: %s\n", f.Source, f.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w.output, "%s: %d/%d anchors rewritten\n", f.Source, len(f.Rewrites), f.Anchors); err != nil {
			return err
		}
		for _, r := range f.Rewrites {
			if _, err := fmt.Fprintf(w.output, "  %s\n    -> %s\n", r.Before, r.After); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w.output, "total: %d rewrites across %d file(s)\n", summary.TotalRewrites(), len(summary.Files))
	return err
}

// sortedKeys returns map keys in sorted order for stable output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
