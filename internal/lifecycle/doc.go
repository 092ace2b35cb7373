// Package lifecycle orchestrates the capture, scan, and watch phases
// over a single document, and exposes the manual control surface
// (capture-now, read, clear, reprocess) an embedding caller can drive
// directly.
//
// Ordering guarantee: capture completes synchronously before the first
// scan, so links processed on the initial sweep observe freshly captured
// parameters.
package lifecycle
