package types

import "time"

// UnixTime converts a unix timestamp in seconds to UTC time
func UnixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// UnixTimePtr converts a unix timestamp in seconds to a UTC time pointer.
// Zero maps to nil since providers send 0 or null for unset timestamps.
func UnixTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := UnixTime(ts)
	return &t
}

// StartOfMonth returns the first instant of t's calendar month in UTC
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
