package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func sampleSummary() *Summary {
	return &Summary{
		RunID:   "0f1e2d3c",
		PageURL: "https://site.example/?utm_source=linkedin",
		Captured: map[string]string{
			"utm_source": "linkedin",
			"utm_medium": "social",
		},
		GeneratedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Files: []FileResult{
			{
				Source:  "landing.html",
				Anchors: 3,
				Rewrites: []Rewrite{
					{
						Before: "https://typeform.com/to/abc123",
						After:  "https://typeform.com/to/abc123?utm_medium=social&utm_source=linkedin",
					},
				},
			},
			{
				Source: "broken.html",
				Err:    "failed to parse HTML",
			},
		},
	}
}

// TestTextWriter tests the plain text summary format.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewTextWriter(&buf).Write(sampleSummary()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"run 0f1e2d3c",
		"landing URL: https://site.example/?utm_source=linkedin",
		"utm_medium = social",
		"landing.html: 1/3 anchors rewritten",
		"-> https://typeform.com/to/abc123?utm_medium=social&utm_source=linkedin",
		"broken.html: ERROR: failed to parse HTML",
		"total: 1 rewrites across 2 file(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

// TestTextWriterNoParams tests the empty-capture rendering.
func TestTextWriterNoParams(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	summary := &Summary{RunID: "x", Files: []FileResult{{Source: "a.html", Anchors: 2}}}
	if err := NewTextWriter(&buf).Write(summary); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !strings.Contains(buf.String(), "(none captured)") {
		t.Errorf("expected none-captured marker, got:\n%s", buf.String())
	}
}

// TestMarkdownWriter tests the Markdown summary format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewMarkdownWriter(&buf).Write(sampleSummary()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# utmlink Rewrite Report",
		"`0f1e2d3c`",
		"## Parameters",
		"`utm_source`",
		"## landing.html",
		"1 of 3 anchors rewritten.",
		"`https://typeform.com/to/abc123`",
		"## broken.html",
		"Processing failed: failed to parse HTML",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, out)
		}
	}
}

// TestSummaryTotals tests the aggregate helpers.
func TestSummaryTotals(t *testing.T) {
	t.Parallel()

	s := sampleSummary()
	if got := s.TotalRewrites(); got != 1 {
		t.Errorf("expected 1 total rewrite, got %d", got)
	}
	if !s.HasErrors() {
		t.Error("expected HasErrors to report the failed file")
	}

	s.Files = s.Files[:1]
	if s.HasErrors() {
		t.Error("expected no errors after dropping failed file")
	}
}
