package util

import (
	"strconv"
	"strings"
	"time"
)

// unixMillisCutoff separates unix seconds from unix milliseconds. Seconds
// stay below it until the year 5138.
const unixMillisCutoff = 1e11

// FromUnix interprets n as unix milliseconds when it is too large to be
// seconds. Non-positive values yield the zero time.
func FromUnix(n int64) time.Time {
	switch {
	case n <= 0:
		return time.Time{}
	case n >= unixMillisCutoff:
		return time.UnixMilli(n)
	default:
		return time.Unix(n, 0)
	}
}

// ParseTime accepts RFC3339 with or without fractional seconds, or a unix
// timestamp in seconds or milliseconds.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return FromUnix(n), true
	}
	return time.Time{}, false
}
