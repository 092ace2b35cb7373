package report

import "time"

// Rewrite is one anchor rewrite: the destination URL before and after
// parameter merging.
type Rewrite struct {
	// Before is the anchor's original destination URL.
	Before string

	// After is the composed destination URL written back.
	After string
}

// FileResult summarizes rewriting of a single document.
type FileResult struct {
	// Source names the input ("-" for stdin).
	Source string

	// Anchors is the number of anchors found in the document.
	Anchors int

	// Rewrites lists the rewrites applied, in document order.
	Rewrites []Rewrite

	// Err holds the processing error message, empty on success.
	Err string
}

// Summary is a complete rewrite run over one or more documents.
type Summary struct {
	// RunID identifies the run across log lines and this report.
	RunID string

	// PageURL is the landing URL parameters were captured from,
	// empty when the run used previously stored parameters.
	PageURL string

	// Captured is the parameter mapping the run operated with.
	Captured map[string]string

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time

	// Files holds per-document results in processing order.
	Files []FileResult
}

// TotalRewrites returns the number of rewrites across all files.
func (s *Summary) TotalRewrites() int {
	total := 0
	for _, f := range s.Files {
		total += len(f.Rewrites)
	}
	return total
}

// HasErrors reports whether any file failed to process.
func (s *Summary) HasErrors() bool {
	for _, f := range s.Files {
		if f.Err != "" {
			return true
		}
	}
	return false
}
