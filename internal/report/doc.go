// Package report renders rewrite summaries: which anchors were rewritten
// in which file, with before/after URLs and the captured parameter set
// that drove them.
//
// Two formats are supported: plain text for terminal display and
// Markdown for documentation and sharing. The report is an operator
// convenience, not a machine-readable contract.
package report
