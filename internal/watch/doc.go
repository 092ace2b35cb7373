// Package watch models document change observation as a subscription:
// a lazy, channel-backed sequence of "subtree inserted" and "document
// restored" events. The watcher consumes the sequence and processes only
// what each event covers, so the cost of a change notification is
// bounded by the size of the change, not the size of the document.
//
// Resubscribing with a fresh source restarts observation; the watcher
// itself holds no state between runs.
package watch
