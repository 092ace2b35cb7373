package rewriter

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/dom"
	"github.com/utmlink/utmlink/internal/store"
)

func newTestProcessor(t *testing.T, params map[string]string) (*Processor, *store.Memory) {
	t.Helper()

	cfg := config.NewConfig()
	s := store.NewMemory()

	if params != nil {
		raw, err := store.NewRecord(params, time.Now()).Encode()
		if err != nil {
			t.Fatalf("failed to encode record: %v", err)
		}
		if err := s.Set(context.Background(), cfg.StorageKey, raw); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	return New(cfg, s, slog.New(slog.DiscardHandler)), s
}

func parseDoc(t *testing.T, src string) *dom.Document {
	t.Helper()

	doc, err := dom.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

// TestProcessAnchor tests the per-anchor state machine.
func TestProcessAnchor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("eligible anchor is rewritten and marked", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "linkedin"})
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc">form</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if !p.ProcessAnchor(ctx, anchor) {
			t.Fatal("expected anchor to be processed")
		}
		if got := dom.Attr(anchor, "href"); got != "https://typeform.com/to/abc?utm_source=linkedin" {
			t.Errorf("unexpected rewritten href: %q", got)
		}
		if !dom.HasAttr(anchor, ProcessedAttr) {
			t.Error("expected processed mark to be set")
		}
	})

	t.Run("non-matching domain left untouched and unmarked", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "x"})
		doc := parseDoc(t, `<a href="https://example.com/page">other</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if p.ProcessAnchor(ctx, anchor) {
			t.Error("expected non-matching anchor to be skipped")
		}
		if dom.Attr(anchor, "href") != "https://example.com/page" {
			t.Error("href must not change for non-matching domains")
		}
		if dom.HasAttr(anchor, ProcessedAttr) {
			t.Error("skipped anchor must stay unmarked and eligible")
		}
	})

	t.Run("empty store leaves anchor eligible for later pass", func(t *testing.T) {
		t.Parallel()

		p, s := newTestProcessor(t, nil)
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc">form</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if p.ProcessAnchor(ctx, anchor) {
			t.Fatal("expected skip while store is empty")
		}
		if dom.HasAttr(anchor, ProcessedAttr) {
			t.Fatal("skipped anchor must not be marked")
		}

		// Parameters arrive; the same anchor now processes.
		raw, err := store.NewRecord(map[string]string{"utm_source": "later"}, time.Now()).Encode()
		if err != nil {
			t.Fatalf("failed to encode record: %v", err)
		}
		if err := s.Set(ctx, config.DefaultStorageKey, raw); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}

		if !p.ProcessAnchor(ctx, anchor) {
			t.Error("expected anchor to process once parameters exist")
		}
	})

	t.Run("fragment and javascript links are skipped", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "x"})
		doc := parseDoc(t, `<body>
			<a href="#section">fragment</a>
			<a href="javascript:void(0)">script</a>
			<a href="">empty</a>
		</body>`)

		for _, anchor := range dom.Anchors(doc.Root()) {
			if p.ProcessAnchor(ctx, anchor) {
				t.Errorf("expected skip for href %q", dom.Attr(anchor, "href"))
			}
			if dom.HasAttr(anchor, ProcessedAttr) {
				t.Errorf("expected no mark for href %q", dom.Attr(anchor, "href"))
			}
		}
	})

	t.Run("processed anchor is never mutated again", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "x"})
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc">form</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if !p.ProcessAnchor(ctx, anchor) {
			t.Fatal("expected first pass to process")
		}

		// Another script rewrites the href; the mark still wins.
		dom.SetAttr(anchor, "href", "https://typeform.com/to/abc")
		if p.ProcessAnchor(ctx, anchor) {
			t.Error("expected marked anchor to be a no-op")
		}
		if dom.Attr(anchor, "href") != "https://typeform.com/to/abc" {
			t.Error("externally edited href must not be touched")
		}
	})

	t.Run("author opt-out attribute is honored", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "x"})
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc" data-utm-processed>no thanks</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if p.ProcessAnchor(ctx, anchor) {
			t.Error("expected opted-out anchor to be skipped")
		}
		if strings.Contains(dom.Attr(anchor, "href"), "utm_source") {
			t.Error("opted-out anchor must keep its original href")
		}
	})

	t.Run("existing destination value wins", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestProcessor(t, map[string]string{"utm_source": "bar"})
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc?utm_source=foo">form</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if !p.ProcessAnchor(ctx, anchor) {
			t.Fatal("expected anchor to be processed")
		}

		u, err := url.Parse(dom.Attr(anchor, "href"))
		if err != nil {
			t.Fatalf("rewritten href does not parse: %v", err)
		}
		if u.Query().Get("utm_source") != "foo" {
			t.Errorf("existing utm_source was replaced: %q", dom.Attr(anchor, "href"))
		}
	})

	t.Run("expired record is treated as none", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.RetentionDays = 7
		s := store.NewMemory()

		captured := time.Now().Add(-8 * 24 * time.Hour)
		raw, err := store.NewRecord(map[string]string{"utm_source": "old"}, captured).Encode()
		if err != nil {
			t.Fatalf("failed to encode record: %v", err)
		}
		if err := s.Set(ctx, cfg.StorageKey, raw); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}

		p := New(cfg, s, slog.New(slog.DiscardHandler))
		doc := parseDoc(t, `<a href="https://typeform.com/to/abc">form</a>`)
		anchor := dom.Anchors(doc.Root())[0]

		if p.ProcessAnchor(ctx, anchor) {
			t.Error("expected expired parameters to leave anchor unprocessed")
		}
		if _, ok, _ := s.Get(ctx, cfg.StorageKey); ok {
			t.Error("expected expired record to be deleted on read")
		}
	})
}

// TestScanDocument tests the full-document sweep.
func TestScanDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, _ := newTestProcessor(t, map[string]string{"utm_source": "linkedin", "utm_medium": "social"})

	doc := parseDoc(t, `<html><body>
		<a href="https://typeform.com/to/abc123">eligible</a>
		<a href="https://form.typeform.com/to/xyz">subdomain</a>
		<a href="https://example.com/other">ineligible</a>
		<a href="#top">fragment</a>
	</body></html>`)

	if got := p.ScanDocument(ctx, doc); got != 2 {
		t.Errorf("expected 2 rewrites, got %d", got)
	}

	anchors := dom.Anchors(doc.Root())
	u, err := url.Parse(dom.Attr(anchors[0], "href"))
	if err != nil {
		t.Fatalf("rewritten href does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("utm_source") != "linkedin" || q.Get("utm_medium") != "social" {
		t.Errorf("unexpected rewritten query: %q", dom.Attr(anchors[0], "href"))
	}

	// Re-running the sweep is a no-op: everything eligible is marked.
	if got := p.ScanDocument(ctx, doc); got != 0 {
		t.Errorf("expected idempotent re-scan, got %d rewrites", got)
	}
}

// TestProcessSubtree tests that only the inserted subtree is visited.
func TestProcessSubtree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, _ := newTestProcessor(t, map[string]string{"utm_source": "x"})

	doc := parseDoc(t, `<html><body>
		<div id="existing"><a href="https://typeform.com/to/old">old</a></div>
		<div id="inserted"><a href="https://typeform.com/to/new">new</a></div>
	</body></html>`)

	anchors := dom.Anchors(doc.Root())
	inserted := anchors[1].Parent

	if got := p.ProcessSubtree(ctx, inserted); got != 1 {
		t.Errorf("expected 1 rewrite in subtree, got %d", got)
	}
	if dom.HasAttr(anchors[0], ProcessedAttr) {
		t.Error("anchor outside the inserted subtree must not be visited")
	}
	if !dom.HasAttr(anchors[1], ProcessedAttr) {
		t.Error("anchor inside the inserted subtree must be processed")
	}
}
