package utils

import (
	"strings"
	"time"
)

const (
	layoutDate = "2006-01-02"
	layoutHM   = "15:04"
)

// ParseDate parses a YYYY-MM-DD checkout date in the local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ValidTimeHM reports whether s is an HH:MM departure time.
func ValidTimeHM(s string) bool {
	_, err := time.Parse(layoutHM, strings.TrimSpace(s))
	return err == nil
}
