package timestamp

import (
	"strings"
	"time"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	CanonicalLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse converts a stored timestamp into an instant for comparisons. Values
// without an offset are read as UTC.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &FormatError{Field: "timestamp", Value: value}
	}
	if wall, offset, ok := splitCanonical(value); ok && instantOffset(offset) {
		if offset == "" {
			return wall, nil
		}
		loc, _ := Location(offset)
		return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc), nil
	}
	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &FormatError{Field: "timestamp", Value: value}
}
