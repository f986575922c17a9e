// Package time holds the timestamp helpers used by api payloads
package time

import "time"

// UTCPtr returns t in UTC, or nil for the zero time so omitempty drops it
func UTCPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// Seconds truncates d to whole seconds, never below zero
func Seconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
