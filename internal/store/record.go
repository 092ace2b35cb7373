package store

import (
	"encoding/json"
	"errors"
	"time"
)

// millisPerDay converts a retention window in days to milliseconds.
const millisPerDay = 86_400_000

// ErrMalformedRecord is returned when a stored record cannot be decoded
// as the expected structure. Callers on the read path treat it the same
// as an absent record.
var ErrMalformedRecord = errors.New("malformed parameter record")

// Record is the serialized form of a captured parameter set: the
// name-to-value mapping plus the capture time in milliseconds since the
// epoch. It is stored as a single JSON object under the configured key.
type Record struct {
	// Params maps tracked parameter names to their captured values.
	Params map[string]string `json:"params"`

	// Timestamp is the capture time in milliseconds since the epoch.
	Timestamp int64 `json:"timestamp"`
}

// NewRecord creates a Record capturing params at the given time.
func NewRecord(params map[string]string, now time.Time) Record {
	return Record{
		Params:    params,
		Timestamp: now.UnixMilli(),
	}
}

// Encode serializes the record to its stored JSON form.
func (r Record) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeRecord parses a stored record. A record that does not decode as
// the expected structure returns ErrMalformedRecord.
func DecodeRecord(raw string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return Record{}, ErrMalformedRecord
	}
	if r.Params == nil {
		return Record{}, ErrMalformedRecord
	}
	return r, nil
}

// Expired reports whether the record's age at now exceeds the retention
// window. Retention applies to durable mode only; the caller decides
// whether to consult it.
func (r Record) Expired(now time.Time, retentionDays int) bool {
	age := now.UnixMilli() - r.Timestamp
	return age > int64(retentionDays)*millisPerDay
}

// CapturedAt returns the capture time of the record.
func (r Record) CapturedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
