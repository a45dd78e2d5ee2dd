package core

import (
	"strings"
	"time"
)

// Window is a relative time range used to scope aggregation queries.
type Window string

const (
	Weekly  Window = "weekly"
	Monthly Window = "monthly"
	Yearly  Window = "yearly"
)

// ParseWindow maps a period name to a Window. Empty defaults to Monthly and
// "daily" is accepted as an alias for the 7-day window.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly":
		return Monthly, nil
	case "weekly", "daily":
		return Weekly, nil
	case "yearly":
		return Yearly, nil
	}
	return "", Invalid("period must be one of weekly, monthly, yearly")
}

// Days returns the length of the window in days.
func (w Window) Days() int {
	switch w {
	case Weekly:
		return 7
	case Yearly:
		return 365
	default:
		return 30
	}
}

// Since returns the start of the window ending at now.
func (w Window) Since(now time.Time) time.Time {
	return now.AddDate(0, 0, -w.Days())
}

// Label capitalizes the window name, e.g. "Monthly".
func (w Window) Label() string {
	s := string(w)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
