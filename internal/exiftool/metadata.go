package exiftool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tag names read by the pipeline.
const (
	TagSourceFile         = "SourceFile"
	TagDateTimeOriginal   = "DateTimeOriginal"
	TagCreateDate         = "CreateDate"
	TagOffsetTimeOriginal = "OffsetTimeOriginal"
	TagTimeZoneOffset     = "TimeZoneOffset"
	TagSerialNumber       = "SerialNumber"
	TagBodySerialNumber   = "BodySerialNumber"
	TagMake               = "Make"
	TagModel              = "Model"
	TagMIMEType           = "MIMEType"
	TagTriggerMode        = "TriggerMode"
	TagTrigger            = "Trigger"
	TagGPSLatitude        = "GPSLatitude"
	TagGPSLongitude       = "GPSLongitude"
	TagEventNumber        = "EventNumber"
	TagSequence           = "Sequence"
)

// SummaryTags are the tags kept in exifData when the full object is not embedded.
var SummaryTags = []string{TagMake, TagModel, TagTriggerMode, TagGPSLatitude, TagGPSLongitude}

// Metadata holds the tags reported for one file.
type Metadata struct {
	tags map[string]any
}

// New wraps an already decoded tag map.
func New(tags map[string]any) Metadata {
	if tags == nil {
		tags = map[string]any{}
	}
	return Metadata{tags: tags}
}

// Decode parses a JSON object of tags. Blank input yields empty metadata.
func Decode(raw string) (Metadata, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return New(nil), nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var tags map[string]any
	if err := dec.Decode(&tags); err != nil {
		return Metadata{}, fmt.Errorf("decode exif data: %w", err)
	}
	return New(tags), nil
}

// Len reports the number of tags present.
func (m Metadata) Len() int {
	return len(m.tags)
}

// Raw returns a copy of the underlying tag map.
func (m Metadata) Raw() map[string]any {
	out := make(map[string]any, len(m.tags))
	for k, v := range m.tags {
		out[k] = v
	}
	return out
}

// Subset returns the named tags. Absent tags are kept as JSON null so the
// embedded object always has the same shape.
func (m Metadata) Subset(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		out[key] = m.tags[key]
	}
	return out
}

// MarshalJSON encodes the tag map without HTML escaping.
func (m Metadata) MarshalJSON() ([]byte, error) {
	if m.tags == nil {
		return []byte("{}"), nil
	}
	return encodeJSON(m.tags)
}

// UnmarshalJSON decodes a tag object, keeping numbers in their JSON spelling.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(string(data))
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// Text returns the tag rendered as trimmed text. Numbers keep their JSON
// spelling; empty strings and nulls count as absent.
func (m Metadata) Text(key string) (string, bool) {
	value, ok := m.tags[key]
	if !ok || value == nil {
		return "", false
	}
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case json.Number:
		text = v.String()
	case float64:
		if v == math.Trunc(v) {
			text = strconv.FormatInt(int64(v), 10)
		} else {
			text = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case bool:
		text = strconv.FormatBool(v)
	default:
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// SerialNumber returns SerialNumber, falling back to BodySerialNumber.
func (m Metadata) SerialNumber() (string, bool) {
	if serial, ok := m.Text(TagSerialNumber); ok {
		return serial, true
	}
	return m.Text(TagBodySerialNumber)
}

// CaptureTime returns DateTimeOriginal, falling back to CreateDate.
func (m Metadata) CaptureTime() (string, bool) {
	if value, ok := m.Text(TagDateTimeOriginal); ok {
		return value, true
	}
	return m.Text(TagCreateDate)
}

// OffsetTimeOriginal returns the EXIF offset string such as "-04:00".
func (m Metadata) OffsetTimeOriginal() (string, bool) {
	return m.Text(TagOffsetTimeOriginal)
}

// TimeZoneOffset returns the numeric hour offset. Cameras write either a
// single number or a list whose first element applies to the capture time.
func (m Metadata) TimeZoneOffset() (int, bool) {
	value, ok := m.tags[TagTimeZoneOffset]
	if !ok || value == nil {
		return 0, false
	}
	if list, isList := value.([]any); isList {
		if len(list) == 0 {
			return 0, false
		}
		value = list[0]
	}
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case float64:
		return int(v), true
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 0, false
		}
		text = fields[0]
	default:
		return 0, false
	}
	hours, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return hours, true
}

// Make returns the camera manufacturer.
func (m Metadata) Make() (string, bool) { return m.Text(TagMake) }

// Model returns the camera model.
func (m Metadata) Model() (string, bool) { return m.Text(TagModel) }

// MIMEType returns the MIME type reported by exiftool.
func (m Metadata) MIMEType() (string, bool) { return m.Text(TagMIMEType) }

// TriggerMode returns TriggerMode, falling back to Trigger.
func (m Metadata) TriggerMode() (string, bool) {
	if value, ok := m.Text(TagTriggerMode); ok {
		return value, true
	}
	return m.Text(TagTrigger)
}

// EventNumber returns the Reconyx event counter when it is a non-negative integer.
func (m Metadata) EventNumber() (int, bool) {
	text, ok := m.Text(TagEventNumber)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SequencePosition parses a Sequence tag such as "1 of 3" and returns the
// leading position.
func (m Metadata) SequencePosition() (int, bool) {
	text, ok := m.Text(TagSequence)
	if !ok {
		return 0, false
	}
	head, _, found := strings.Cut(text, "of")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeObject renders a tag map as compact JSON for embedding in a CSV cell.
func EncodeObject(tags map[string]any) (string, error) {
	data, err := encodeJSON(tags)
	if err != nil {
		return "", fmt.Errorf("encode exif data: %w", err)
	}
	return string(data), nil
}
