package store

import (
	"encoding/json"
	"time"
)

// Entry represents a single document stored in the table.
//
// Design choices:
// - Value is an opaque JSON document; the store never inspects it.
// - ExpiresAt enables TTL-based expiration.
// - Zero value of ExpiresAt means "no expiration".
type Entry struct {
	Value     json.RawMessage
	ExpiresAt time.Time
}

// Expired reports whether the entry is expired at the given time.
// The boundary is inclusive: an entry dies the instant its expiry passes.
func (e Entry) Expired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return !e.ExpiresAt.After(now)
}
