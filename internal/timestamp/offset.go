package timestamp

import (
	"strconv"
	"strings"
	"time"
)

// UTC is the canonical label for a zero offset.
const UTC = "Z"

var abbreviations = map[string]string{
	"UTC": UTC,
	"Z":   UTC,
	"EST": "-05:00",
	"EDT": "-04:00",
	"CST": "-06:00",
	"CDT": "-05:00",
	"MST": "-07:00",
	"MDT": "-06:00",
	"PST": "-08:00",
	"PDT": "-07:00",
}

// LookupAbbreviation maps a timezone abbreviation from the fixed table to its
// canonical offset label.
func LookupAbbreviation(abbr string) (string, bool) {
	offset, ok := abbreviations[strings.ToUpper(strings.TrimSpace(abbr))]
	return offset, ok
}

// ResolveOffset picks the offset label for a row: explicit value, header hint,
// default hint, then UTC. An explicit value in no recognised form is returned
// trimmed but otherwise unmodified.
func ResolveOffset(explicit, headerHint, defaultHint string) string {
	if raw := strings.TrimSpace(explicit); raw != "" {
		upper := strings.ToUpper(raw)
		if upper == UTC {
			return UTC
		}
		if IsOffsetLiteral(upper) {
			return upper
		}
		if offset, ok := abbreviations[upper]; ok {
			return offset
		}
		return raw
	}
	if offset, ok := LookupAbbreviation(headerHint); ok {
		return offset
	}
	if offset, ok := LookupAbbreviation(defaultHint); ok {
		return offset
	}
	return UTC
}

// IsOffsetLiteral reports whether value has the ±HH:MM shape.
func IsOffsetLiteral(value string) bool {
	if len(value) != 6 {
		return false
	}
	if value[0] != '+' && value[0] != '-' {
		return false
	}
	return isDigit(value[1]) && isDigit(value[2]) && value[3] == ':' && isDigit(value[4]) && isDigit(value[5])
}

// HeaderHint extracts the trailing zone token from a header such as
// "EndTime EST". Headers with a single token carry no hint.
func HeaderHint(header string) string {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

// Location converts an offset label into a fixed zone. Labels outside the
// Z / ±HH:MM forms report false.
func Location(label string) (*time.Location, bool) {
	label = strings.TrimSpace(label)
	if strings.EqualFold(label, UTC) {
		return time.UTC, true
	}
	if !IsOffsetLiteral(label) {
		return nil, false
	}
	hours, _ := strconv.Atoi(label[1:3])
	minutes, _ := strconv.Atoi(label[4:6])
	seconds := hours*3600 + minutes*60
	if label[0] == '-' {
		seconds = -seconds
	}
	return time.FixedZone(label, seconds), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
