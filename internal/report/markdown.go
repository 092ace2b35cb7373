package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs rewrite summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides type-safe tables and code blocks
// instead of hand-concatenated strings.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the full summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCaptured(md, summary)
	w.writeFiles(md, summary)

	return md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("utmlink Rewrite Report")
	md.PlainText("")

	rows := [][]string{
		{"Run ID", "`" + summary.RunID + "`"},
		{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Files", strconv.Itoa(len(summary.Files))},
		{"Rewrites", strconv.Itoa(summary.TotalRewrites())},
	}
	if summary.PageURL != "" {
		rows = append(rows, []string{"Landing URL", "`" + summary.PageURL + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCaptured writes the parameter set the run operated with.
func (w *MarkdownWriter) writeCaptured(md *markdown.Markdown, summary *Summary) {
	md.H2("Parameters")
	md.PlainText("")

	if len(summary.Captured) == 0 {
		md.PlainText("No parameters were captured or stored; no links were rewritten.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Captured))
	for _, name := range sortedKeys(summary.Captured) {
		rows = append(rows, []string{"`" + name + "`", summary.Captured[name]})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Name", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFiles writes one section per processed file.
func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, summary *Summary) {
	for _, f := range summary.Files {
		md.H2(f.Source)
		md.PlainText("")

		if f.Err != "" {
			md.PlainTextf("Processing failed: %s", f.Err)
			md.PlainText("")
			continue
		}

		md.PlainTextf("%d of %d anchors rewritten.", len(f.Rewrites), f.Anchors)
		md.PlainText("")

		if len(f.Rewrites) == 0 {
			continue
		}

		rows := make([][]string, 0, len(f.Rewrites))
		for _, r := range f.Rewrites {
			rows = append(rows, []string{"`" + r.Before + "`", "`" + r.After + "`"})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Before", "After"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}
