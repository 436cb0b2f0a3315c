package linker

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"camtrap/internal/datapackage"
	"camtrap/internal/exiftool"
	"camtrap/internal/logging"
	"camtrap/internal/textutil"
	"camtrap/internal/timestamp"
)

// Options controls which rows are eligible and how sidecar paths resolve.
type Options struct {
	// PlaceholderPrefix marks deploymentIDs that may be replaced. Matching
	// ignores case. Empty means only blank deploymentIDs are eligible.
	PlaceholderPrefix string
	// ProjectDir anchors relative filePath values for sidecar lookups.
	ProjectDir string
}

// Counts summarizes a Link call.
type Counts struct {
	Total           int
	Linked          int
	MissingSerial   int
	Ambiguous       int
	AlreadyAssigned int
}

// Sidecar maps absolute file paths to their full metadata.
type Sidecar map[string]exiftool.Metadata

// Eligible reports whether deploymentID may be replaced by the linker.
func (o Options) Eligible(deploymentID string) bool {
	deploymentID = strings.TrimSpace(deploymentID)
	if deploymentID == "" {
		return true
	}
	return o.PlaceholderPrefix != "" && textutil.HasPrefixFold(deploymentID, o.PlaceholderPrefix)
}

// Link returns a copy of rows with deploymentIDs resolved through index.
// The input slice is not modified.
func Link(rows []datapackage.Media, index Index, sidecar Sidecar, opts Options, logger *slog.Logger) ([]datapackage.Media, Counts) {
	if logger == nil {
		logger = logging.NewNop()
	}
	out := make([]datapackage.Media, len(rows))
	copy(out, rows)

	var counts Counts
	for i := range out {
		row := &out[i]
		counts.Total++
		if !opts.Eligible(row.DeploymentID) {
			counts.AlreadyAssigned++
			continue
		}

		serial, _ := SerialFor(*row, sidecar, opts.ProjectDir)
		when := captureTime(*row)
		id, outcome := index.Resolve(serial, when)
		switch outcome {
		case Linked:
			row.DeploymentID = id
			counts.Linked++
		case MissingSerial:
			counts.MissingSerial++
			hint := "serial not found in deployments.csv cameraID column"
			if serial == "" {
				hint = "no SerialNumber or BodySerialNumber in exifData or media_metadata.json"
			}
			logging.WarnWithContext(logger, "media serial not linked", "link_missing_serial",
				logging.String("media_id", row.MediaID),
				logging.String("serial", serial),
				logging.String(logging.FieldFile, row.FilePath),
				logging.String(logging.FieldErrorHint, hint),
				logging.String(logging.FieldImpact, "deploymentID left unchanged"),
			)
		case Ambiguous:
			counts.Ambiguous++
			logging.WarnWithContext(logger, "media deployment ambiguous", "link_ambiguous",
				logging.String("media_id", row.MediaID),
				logging.String("serial", serial),
				logging.String("timestamp", row.Timestamp),
				logging.String(logging.FieldFile, row.FilePath),
				logging.String(logging.FieldErrorHint, "check deployment windows for this serial overlap or cover the capture time"),
				logging.String(logging.FieldImpact, "deploymentID left unchanged"),
			)
		}
	}
	return out, counts
}

// SerialFor returns the camera serial for a media row from its embedded
// exifData, falling back to the sidecar entry for its file. Malformed
// exifData counts as absent.
func SerialFor(row datapackage.Media, sidecar Sidecar, projectDir string) (string, bool) {
	if md, err := exiftool.Decode(row.ExifData); err == nil {
		if serial, ok := md.SerialNumber(); ok {
			return serial, true
		}
	}
	if len(sidecar) == 0 || strings.TrimSpace(row.FilePath) == "" {
		return "", false
	}
	if md, ok := sidecar[absFilePath(projectDir, row.FilePath)]; ok {
		return md.SerialNumber()
	}
	return "", false
}

func absFilePath(projectDir, filePath string) string {
	path := filepath.FromSlash(strings.TrimSpace(filePath))
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return path
}

func captureTime(row datapackage.Media) *time.Time {
	if strings.TrimSpace(row.Timestamp) == "" {
		return nil
	}
	t, err := timestamp.Parse(row.Timestamp)
	if err != nil {
		return nil
	}
	return &t
}
