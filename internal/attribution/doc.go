// Package attribution implements the capture, storage read, URL
// composition, and domain matching logic at the heart of utmlink.
//
// The flow is one-directional: a landing URL is scanned for tracked
// parameters, the found set is persisted as a single timestamped record,
// and link processing later reads that record to merge parameters into
// eligible destination URLs. Every failure on the read side degrades to
// "no parameters captured" rather than surfacing an error; attribution is
// never worth breaking a page or a pipeline over.
package attribution
