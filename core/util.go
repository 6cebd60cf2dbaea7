package core

import (
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// NowMillis returns the current wall-clock time in epoch milliseconds.
func NowMillis() int64 {
	return NowFunc().UnixNano() / int64(time.Millisecond)
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}
