package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ElapsedMs reports the milliseconds passed since start.
func ElapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
