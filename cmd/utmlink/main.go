// Package main provides the entry point for the utmlink CLI.
//
// utmlink captures marketing attribution parameters (utm_source and
// friends) from a landing URL, persists them, and rewrites anchors in
// HTML documents that point at configured form services, so the original
// acquisition channel survives the hop to a form submission.
//
// Usage:
//
//	utmlink rewrite --page-url <url> <file.html>
//	utmlink capture <url>
//	utmlink params
//
// See --help for all available options.
package main

// main is the entry point for utmlink.
func main() {
	Execute()
}
