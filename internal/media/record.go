package media

import (
	"path/filepath"
	"strings"

	"camtrap/internal/datapackage"
	"camtrap/internal/exiftool"
	"camtrap/internal/timestamp"
)

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
}

// MediaType prefers the MIME type exiftool reports and falls back to the
// file extension, then image/jpeg.
func MediaType(path string, md exiftool.Metadata) string {
	if mime, ok := md.MIMEType(); ok && strings.Contains(mime, "/") {
		return mime
	}
	if mime, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "image/jpeg"
}

// CaptureMethod maps the camera trigger mode onto captureMethod. Unknown or
// absent modes yield "".
func CaptureMethod(md exiftool.Metadata) string {
	trigger, ok := md.TriggerMode()
	if !ok {
		return ""
	}
	trigger = strings.ToLower(trigger)
	switch {
	case strings.Contains(trigger, "motion"), strings.Contains(trigger, "activity"):
		return datapackage.CaptureActivity
	case strings.Contains(trigger, "time") && strings.Contains(trigger, "lapse"):
		return datapackage.CaptureTimeLapse
	default:
		return ""
	}
}

// CaptureTimestamp converts the EXIF capture time into a canonical
// timestamp. Absent capture time yields "".
func CaptureTimestamp(md exiftool.Metadata) (string, error) {
	value, ok := md.CaptureTime()
	if !ok {
		return "", nil
	}
	offset, _ := md.OffsetTimeOriginal()
	var zoneHours *int
	if hours, ok := md.TimeZoneOffset(); ok {
		zoneHours = &hours
	}
	return timestamp.FromEXIF(value, offset, zoneHours)
}

// RelativePath returns path relative to base with forward slashes, or the
// absolute slash path when path lies outside base.
func RelativePath(base, path string) string {
	if base != "" {
		if absBase, err := filepath.Abs(base); err == nil {
			if resolved, err := filepath.EvalSymlinks(absBase); err == nil {
				absBase = resolved
			}
			if rel, err := filepath.Rel(absBase, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(path)
}

// ExifData renders the exifData cell: the whole tag map, or SummaryTags.
func ExifData(md exiftool.Metadata, full bool) (string, error) {
	if full {
		return exiftool.EncodeObject(md.Raw())
	}
	return exiftool.EncodeObject(md.Subset(exiftool.SummaryTags...))
}
