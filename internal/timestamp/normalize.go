package timestamp

import (
	"fmt"
	"strings"
	"time"

	"camtrap/internal/services"
)

// CanonicalLayout is the wall-clock part of every canonical timestamp.
const CanonicalLayout = "2006-01-02T15:04:05"

// Boundary selects the clock used when a date carries no time of day.
type Boundary int

const (
	// StartOfDay fills a missing time with 00:00:00.
	StartOfDay Boundary = iota
	// EndOfDay fills a missing time with 23:59:59.
	EndOfDay
)

var dateLayouts = []string{"1/2/2006", "1/2/06", "2006-1-2"}

var clockLayouts = []string{"3:04:05 PM", "3:04 PM", "15:04:05", "15:04"}

// FormatError reports a date or time value that matched none of the accepted
// layouts. It unwraps to services.ErrFormat.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized %s format: %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error {
	return services.ErrFormat
}

// Input describes one value to normalize.
type Input struct {
	Date        string
	Time        string
	Offset      string
	HeaderHint  string
	DefaultHint string
	Missing     Boundary
}

// Normalize combines the date, time and zone hints into a canonical timestamp.
// An empty date yields an empty result.
func Normalize(in Input) (string, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return "", nil
	}

	if wall, embedded, ok := splitCanonical(date); ok {
		offset := embedded
		if strings.TrimSpace(in.Offset) != "" || embedded == "" {
			offset = ResolveOffset(in.Offset, in.HeaderHint, in.DefaultHint)
		}
		return format(wall, offset), nil
	}

	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	hour, minute, second, hasClock, err := ParseClock(in.Time)
	if err != nil {
		return "", err
	}
	if !hasClock && in.Missing == EndOfDay {
		hour, minute, second = 23, 59, 59
	}
	wall := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, time.UTC)
	return format(wall, ResolveOffset(in.Offset, in.HeaderHint, in.DefaultHint)), nil
}

// ParseDate parses a calendar date using the accepted layouts in order; the
// first match wins.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, &FormatError{Field: "date", Value: value}
}

// ParseClock parses a time of day. Blank input reports hasClock=false.
func ParseClock(value string) (hour, minute, second int, hasClock bool, err error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return 0, 0, 0, false, nil
	}
	for _, layout := range clockLayouts {
		if parsed, perr := time.Parse(layout, value); perr == nil {
			return parsed.Hour(), parsed.Minute(), parsed.Second(), true, nil
		}
	}
	return 0, 0, 0, false, &FormatError{Field: "time", Value: value}
}

// splitCanonical recognises YYYY-MM-DDTHH:MM:SS followed by whatever offset
// Normalize may have written: nothing, Z, ±HH:MM or an unrecognised value
// passed through verbatim. A naive value reports an empty offset.
func splitCanonical(value string) (time.Time, string, bool) {
	if len(value) < len(CanonicalLayout) {
		return time.Time{}, "", false
	}
	wall, err := time.Parse(CanonicalLayout, value[:len(CanonicalLayout)])
	if err != nil {
		return time.Time{}, "", false
	}
	rest := value[len(CanonicalLayout):]
	if strings.EqualFold(rest, UTC) {
		return wall, UTC, true
	}
	return wall, rest, true
}

// instantOffset reports whether an embedded offset pins the value to an
// instant.
func instantOffset(offset string) bool {
	return offset == "" || offset == UTC || IsOffsetLiteral(offset)
}

func format(wall time.Time, offset string) string {
	return wall.Format(CanonicalLayout) + offset
}
