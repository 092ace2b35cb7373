package attribution

import (
	"context"
	"log/slog"
	"time"

	"github.com/utmlink/utmlink/internal/config"
	"github.com/utmlink/utmlink/internal/store"
)

// ReadParams returns the previously captured parameter mapping, or nil
// when none is usable. No error ever escapes this boundary: an absent
// record, a record that fails to decode, a store read failure, and an
// expired durable-mode record all degrade to nil.
//
// Expiry is lazy: it is checked here, on read, never on a timer. An
// expired record is deleted as a side effect. Session mode skips the
// retention check entirely; the store's own lifetime bounds it.
func ReadParams(ctx context.Context, s store.Store, cfg *config.Config, now time.Time, logger *slog.Logger) map[string]string {
	raw, ok, err := s.Get(ctx, cfg.StorageKey)
	if err != nil {
		logger.Warn("failed to read parameter store", slog.String("key", cfg.StorageKey), slog.Any("error", err))
		return nil
	}
	if !ok {
		return nil
	}

	rec, err := store.DecodeRecord(raw)
	if err != nil {
		logger.Warn("discarding malformed parameter record", slog.String("key", cfg.StorageKey))
		return nil
	}

	if cfg.StorageMode == config.ModeDurable && rec.Expired(now, cfg.RetentionDays) {
		if err := s.Delete(ctx, cfg.StorageKey); err != nil {
			logger.Warn("failed to delete expired record", slog.Any("error", err))
		}
		logger.Debug("expired captured parameters",
			slog.Time("captured_at", rec.CapturedAt()),
			slog.Int("retention_days", cfg.RetentionDays),
		)
		return nil
	}

	return rec.Params
}

// ClearParams deletes the stored record. Used by the manual control
// surface and the clear CLI command.
func ClearParams(ctx context.Context, s store.Store, key string) error {
	return s.Delete(ctx, key)
}
