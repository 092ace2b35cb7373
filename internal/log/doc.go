// Package log provides structured logging for utmlink.
//
// Diagnostic trace lines include landing URLs and captured query values,
// which can carry personal data (email addresses in click IDs, tokens in
// forwarded links). The handler in this package masks such values before
// they reach the underlying slog handler, so verbose logging stays safe
// to share in bug reports.
package log
