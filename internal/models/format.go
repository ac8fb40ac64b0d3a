package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate parses the loosely formatted dates the API emits. Dates without
// a zone are taken as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// RelativeTime renders date relative to now as "now", "Nm", "Nh" or "Nd".
// Empty input renders as "unknown" and unparsable input as "invalid date".
func RelativeTime(date string, now time.Time) string {
	if strings.TrimSpace(date) == "" {
		return "unknown"
	}
	t, ok := ParseDate(date)
	if !ok {
		return "invalid date"
	}

	minutes := int(now.Sub(t) / time.Minute)
	if minutes < 1 {
		return "now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}
