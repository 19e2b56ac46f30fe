package utils

import "time"

// ParseDuration parses a duration string like "10s", falling back to def
// when it is empty or malformed.
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}
