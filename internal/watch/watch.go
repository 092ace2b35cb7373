package watch

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/utmlink/utmlink/internal/dom"
	"github.com/utmlink/utmlink/internal/rewriter"
)

// Kind identifies the type of a document change event.
type Kind int

// Document change event kinds.
const (
	// Inserted signals a subtree added to the document. Only the
	// inserted subtree is processed.
	Inserted Kind = iota

	// Restored signals the document was brought back in a previously
	// rendered state (the history-cache case), where anchors may have
	// been rewritten and then reverted by the restore. A full rescan
	// runs in response.
	Restored
)

// Event is a single document change notification.
type Event struct {
	// Kind is the change type.
	Kind Kind

	// Node is the root of the inserted subtree. Nil for Restored events.
	Node *html.Node
}

// Source yields document change events. Implementations close the
// channel when no more events will be delivered.
type Source interface {
	// Events returns the channel events are delivered on.
	Events() <-chan Event
}

// ChannelSource is a Source whose events are fed programmatically.
// It is the bridge between whatever produces document changes (a test,
// a streaming parser, an embedding application) and the watcher.
type ChannelSource struct {
	ch chan Event
}

// NewChannelSource creates a ChannelSource with the given buffer size.
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{ch: make(chan Event, buffer)}
}

// Events returns the event channel.
func (s *ChannelSource) Events() <-chan Event {
	return s.ch
}

// Insert delivers a subtree-inserted event.
func (s *ChannelSource) Insert(n *html.Node) {
	s.ch <- Event{Kind: Inserted, Node: n}
}

// Restore delivers a document-restored event.
func (s *ChannelSource) Restore() {
	s.ch <- Event{Kind: Restored}
}

// Close ends the subscription. The watcher consuming this source
// returns once buffered events are drained.
func (s *ChannelSource) Close() {
	close(s.ch)
}

// Watcher consumes a Source and runs the rewriter over each change.
// A single consumer goroutine processes events in order, so each event
// is handled atomically with respect to the anchor marks.
type Watcher struct {
	processor *rewriter.Processor
	doc       *dom.Document
	logger    *slog.Logger
}

// NewWatcher creates a Watcher processing changes to doc.
func NewWatcher(processor *rewriter.Processor, doc *dom.Document, logger *slog.Logger) *Watcher {
	return &Watcher{
		processor: processor,
		doc:       doc,
		logger:    logger,
	}
}

// Run consumes events from src until the source closes or the context is
// cancelled. Inserted events process only the inserted subtree; Restored
// events trigger a full document rescan.
func (w *Watcher) Run(ctx context.Context, src Source) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-src.Events():
			if !ok {
				return nil
			}
			switch ev.Kind {
			case Inserted:
				if ev.Node == nil {
					continue
				}
				if n := w.processor.ProcessSubtree(ctx, ev.Node); n > 0 {
					w.logger.Debug("processed inserted subtree", slog.Int("rewritten", n))
				}
			case Restored:
				n := w.processor.ScanDocument(ctx, w.doc)
				w.logger.Debug("rescanned restored document", slog.Int("rewritten", n))
			}
		}
	}
}
