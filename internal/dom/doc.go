// Package dom provides a minimal document abstraction over
// golang.org/x/net/html for anchor processing.
//
// Design decision: We use golang.org/x/net/html rather than regex
// because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure that can be mutated in place
//     and re-rendered
//  3. More maintainable than complex regex patterns
package dom
