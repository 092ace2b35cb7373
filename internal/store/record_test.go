package store

import (
	"errors"
	"testing"
	"time"
)

// TestRecordRoundTrip tests encoding and decoding of the stored record.
func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_700_000_000_000)
	rec := NewRecord(map[string]string{
		"utm_source": "linkedin",
		"utm_medium": "social",
	}, now)

	raw, err := rec.Encode()
	if err != nil {
		t.Fatalf("failed to encode record: %v", err)
	}

	decoded, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}

	if decoded.Timestamp != now.UnixMilli() {
		t.Errorf("expected timestamp %d, got %d", now.UnixMilli(), decoded.Timestamp)
	}
	if len(decoded.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(decoded.Params))
	}
	if decoded.Params["utm_source"] != "linkedin" {
		t.Errorf("expected utm_source=linkedin, got %q", decoded.Params["utm_source"])
	}
	if !decoded.CapturedAt().Equal(now) {
		t.Errorf("expected capture time %v, got %v", now, decoded.CapturedAt())
	}
}

// TestDecodeRecordMalformed tests that corrupt records are rejected.
func TestDecodeRecordMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "not-json{{"},
		{name: "wrong shape", raw: `"just a string"`},
		{name: "missing params", raw: `{"timestamp": 1700000000000}`},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeRecord(tt.raw); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

// TestRecordExpired tests the retention window check.
func TestRecordExpired(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(2_000_000_000_000)

	tests := []struct {
		name          string
		capturedAgo   time.Duration
		retentionDays int
		want          bool
	}{
		{name: "fresh record", capturedAgo: time.Hour, retentionDays: 30, want: false},
		{name: "just inside window", capturedAgo: 30*24*time.Hour - time.Minute, retentionDays: 30, want: false},
		{name: "exactly at window", capturedAgo: 30 * 24 * time.Hour, retentionDays: 30, want: false},
		{name: "just past window", capturedAgo: 30*24*time.Hour + time.Minute, retentionDays: 30, want: true},
		{name: "short retention", capturedAgo: 26 * time.Hour, retentionDays: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewRecord(map[string]string{"utm_source": "x"}, now.Add(-tt.capturedAgo))
			if got := rec.Expired(now, tt.retentionDays); got != tt.want {
				t.Errorf("expected expired=%v, got %v", tt.want, got)
			}
		})
	}
}
