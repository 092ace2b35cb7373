package attribution

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/utmlink/utmlink/internal/store"
)

// ExtractParams scans pageURL's query string for each tracked name, in
// order, and returns the name-to-value pairs that are present. A present
// parameter with an empty value is included, so "found but empty" is
// distinguishable from "absent". The boolean reports whether at least one
// tracked parameter was found.
//
// An unparseable page URL yields no parameters.
func ExtractParams(pageURL string, names []string) (map[string]string, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, false
	}

	query := u.Query()
	params := make(map[string]string)
	for _, name := range names {
		if query.Has(name) {
			params[name] = query.Get(name)
		}
	}

	if len(params) == 0 {
		return nil, false
	}
	return params, true
}

// Capture extracts tracked parameters from pageURL and, if at least one
// is present, overwrites the stored record with exactly the found pairs
// and the current time. Re-landing with new parameters always wins over a
// previously stored set; landing with zero tracked parameters never
// erases one.
//
// The returned map is the captured set, or nil when nothing was captured.
// Store write failures propagate to the caller.
func Capture(ctx context.Context, s store.Store, key string, pageURL string, names []string, now time.Time, logger *slog.Logger) (map[string]string, error) {
	params, found := ExtractParams(pageURL, names)
	if !found {
		logger.Debug("no tracked parameters on landing URL", slog.String("url", pageURL))
		return nil, nil
	}

	raw, err := store.NewRecord(params, now).Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode parameter record: %w", err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("failed to store captured parameters: %w", err)
	}

	attrs := make([]any, 0, len(params)+1)
	attrs = append(attrs, slog.Int("count", len(params)))
	for name, value := range params {
		attrs = append(attrs, slog.String(name, value))
	}
	logger.Debug("captured parameters", attrs...)

	return params, nil
}
