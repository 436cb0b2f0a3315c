package timestamp

import (
	"strings"
	"time"
)

// EXIFLayout is the DateTimeOriginal / CreateDate layout written by cameras.
const EXIFLayout = "2006:01:02 15:04:05"

// FromEXIF converts an EXIF capture time into a canonical timestamp. The zone
// comes from OffsetTimeOriginal when it is a ±HH:MM literal, otherwise from the
// numeric TimeZoneOffset hours, otherwise UTC. Zero offsets render as Z.
func FromEXIF(value, offsetTime string, zoneHours *int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	wall, err := time.Parse(EXIFLayout, value)
	if err != nil {
		return "", &FormatError{Field: "exif datetime", Value: value}
	}

	loc := time.UTC
	if zone, ok := Location(offsetTime); ok {
		loc = zone
	} else if zoneHours != nil {
		loc = time.FixedZone("", *zoneHours*3600)
	}
	zoned := time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc)
	return zoned.Format(time.RFC3339), nil
}
