package rewriter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/utmlink/utmlink/internal/attribution"
	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/dom"
	"github.com/utmlink/utmlink/internal/store"
)

// ProcessedAttr marks an anchor as processed. Anchors carrying it are
// never touched again, whatever their current href says. Page authors can
// pre-set it to opt an anchor out of rewriting; the opt-out and the
// processed state are deliberately the same flag.
const ProcessedAttr = "data-utm-processed"

// Processor rewrites eligible anchors in place. It reads the parameter
// store on every pass, so anchors skipped while the store was empty
// become eligible once parameters are captured.
type Processor struct {
	cfg    *config.Config
	store  store.Store
	logger *slog.Logger

	// now supplies the current time for the lazy expiry check.
	now func() time.Time

	// record, when set, receives each rewrite's before/after URLs.
	record func(before, after string)
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the time source. Tests use this to exercise
// retention expiry deterministically.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		p.now = now
	}
}

// WithRecorder registers a callback receiving each rewrite's before and
// after URL. The rewrite summary report is built from these.
func WithRecorder(record func(before, after string)) Option {
	return func(p *Processor) {
		p.record = record
	}
}

// New creates a Processor using the given configuration and store.
func New(cfg *config.Config, s store.Store, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		cfg:    cfg,
		store:  s,
		logger: logger,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ProcessAnchor applies domain matching and URL composition to a single
// anchor element, mutating its href in place. It returns true when the
// anchor transitioned to processed.
//
// The transition fires only when the href is non-empty, is not a
// fragment-only or javascript: link, the host matches a configured
// domain, and the store holds captured parameters. A rejected or
// parameterless anchor is left untouched AND unmarked, so a later pass
// can pick it up. An already-marked anchor is a no-op regardless of its
// current href.
func (p *Processor) ProcessAnchor(ctx context.Context, n *html.Node) bool {
	if !dom.IsAnchor(n) {
		return false
	}
	if dom.HasAttr(n, ProcessedAttr) {
		return false
	}

	href := strings.TrimSpace(dom.Attr(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return false
	}

	if !attribution.MatchesDomain(href, p.cfg.Domains) {
		return false
	}

	params := attribution.ReadParams(ctx, p.store, p.cfg, p.now(), p.logger)
	if len(params) == 0 {
		return false
	}

	composed := attribution.ComposeURL(href, params, p.cfg.Parameters)
	dom.SetAttr(n, "href", composed)
	dom.SetAttr(n, ProcessedAttr, "true")

	p.logger.Debug("rewrote link",
		slog.String("before", href),
		slog.String("after", composed),
	)
	if p.record != nil {
		p.record(href, composed)
	}

	return true
}

// ScanDocument runs ProcessAnchor over every anchor currently in the
// document and returns the number of anchors that transitioned to
// processed. A pure side-effecting sweep; there is nothing else to
// report beyond completion.
func (p *Processor) ScanDocument(ctx context.Context, doc *dom.Document) int {
	return p.processAll(ctx, dom.Anchors(doc.Root()))
}

// ProcessSubtree runs ProcessAnchor over the inserted node itself (if it
// is an anchor) and every anchor among its descendants. Only the subtree
// is visited, bounding the cost of a change notification to the size of
// the change rather than the size of the document.
func (p *Processor) ProcessSubtree(ctx context.Context, n *html.Node) int {
	return p.processAll(ctx, dom.Anchors(n))
}

func (p *Processor) processAll(ctx context.Context, anchors []*html.Node) int {
	count := 0
	for _, a := range anchors {
		if p.ProcessAnchor(ctx, a) {
			count++
		}
	}
	return count
}
