package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utmlink/utmlink/internal/attribution"
	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/dom"
	"github.com/utmlink/utmlink/internal/rewriter"
	"github.com/utmlink/utmlink/internal/store"
	"github.com/utmlink/utmlink/internal/watch"
)

// Controller wires capture, scanning, and watching together for one
// document. The configuration it carries is constructed once and not
// mutated afterwards; all state lives in the injected store and in the
// anchor marks on the document itself.
type Controller struct {
	cfg       *config.Config
	store     store.Store
	processor *rewriter.Processor
	doc       *dom.Document
	logger    *slog.Logger

	// runID tags this controller's log lines and report entries so
	// concurrent runs sharing a store can be told apart.
	runID string

	// now supplies the current time for capture and expiry.
	now func() time.Time

	// record forwards before/after URLs of each rewrite, for reports.
	record func(before, after string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithRecorder forwards each rewrite's before/after URLs to record.
// The rewrite summary report is built from these.
func WithRecorder(record func(before, after string)) Option {
	return func(c *Controller) {
		c.record = record
	}
}

// New creates a Controller for the given document.
func New(cfg *config.Config, s store.Store, doc *dom.Document, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		store:  s,
		doc:    doc,
		logger: logger,
		runID:  uuid.NewString(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(slog.String("run_id", c.runID))

	processorOpts := []rewriter.Option{rewriter.WithClock(c.now)}
	if c.record != nil {
		processorOpts = append(processorOpts, rewriter.WithRecorder(c.record))
	}
	c.processor = rewriter.New(cfg, s, c.logger, processorOpts...)

	return c
}

// RunID returns the identifier tagging this controller's activity.
func (c *Controller) RunID() string {
	return c.runID
}

// Config returns the active configuration.
func (c *Controller) Config() *config.Config {
	return c.cfg
}

// Processor returns the link processor, for callers that drive anchors
// individually.
func (c *Controller) Processor() *rewriter.Processor {
	return c.processor
}

// Start runs the full lifecycle: capture from the configured landing
// URL (when one is set), one initial document scan, then the watch loop
// over src. A nil src skips watching, which is the one-shot CLI case.
//
// Capture runs and completes before the first scan; the initial sweep
// always observes the freshly captured parameters. Returns the number
// of anchors rewritten by the initial scan.
func (c *Controller) Start(ctx context.Context, src watch.Source) (int, error) {
	if c.cfg.PageURL != "" {
		if _, err := c.CaptureNow(ctx); err != nil {
			return 0, err
		}
	}

	rewritten := c.processor.ScanDocument(ctx, c.doc)
	c.logger.Debug("initial scan complete", slog.Int("rewritten", rewritten))

	if src == nil {
		return rewritten, nil
	}

	watcher := watch.NewWatcher(c.processor, c.doc, c.logger)
	if err := watcher.Run(ctx, src); err != nil {
		return rewritten, err
	}
	return rewritten, nil
}

// CaptureNow captures tracked parameters from the configured landing URL
// immediately. Part of the manual control surface.
func (c *Controller) CaptureNow(ctx context.Context) (map[string]string, error) {
	return attribution.Capture(ctx, c.store, c.cfg.StorageKey, c.cfg.PageURL, c.cfg.Parameters, c.now(), c.logger)
}

// Params returns the currently stored parameter mapping, applying the
// lazy expiry check. Nil means none are stored or usable.
func (c *Controller) Params(ctx context.Context) map[string]string {
	return attribution.ReadParams(ctx, c.store, c.cfg, c.now(), c.logger)
}

// Clear removes the stored parameter record.
func (c *Controller) Clear(ctx context.Context) error {
	return attribution.ClearParams(ctx, c.store, c.cfg.StorageKey)
}

// Reprocess sweeps the whole document again. Anchors already marked stay
// untouched; anchors skipped earlier (no parameters yet, store since
// repopulated) get another chance. Returns the number rewritten.
func (c *Controller) Reprocess(ctx context.Context) int {
	return c.processor.ScanDocument(ctx, c.doc)
}
