package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func GetDateDaysAgo(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}

func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func IsWithinDays(postTime time.Time, days int) bool {
	cutoff := GetDateDaysAgo(days)
	return postTime.After(cutoff)
}

// FromEpoch converts epoch seconds to UTC.
func FromEpoch(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

// ParseTimestamp accepts epoch seconds as a digit string or one of the
// ISO-8601 layouts the site emits.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return FromEpoch(secs), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}
