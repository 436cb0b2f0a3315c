package media

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"camtrap/internal/datapackage"
	"camtrap/internal/exiftool"
	"camtrap/internal/logging"
	"camtrap/internal/services"
)

// Inspector reads the metadata of one file.
type Inspector interface {
	Inspect(ctx context.Context, path string) (exiftool.Metadata, error)
}

// Options controls how media rows are built.
type Options struct {
	ProjectDir            string
	PlaceholderDeployment string
	FilePublic            bool
	EmbedFullExif         bool
}

// Failure records one file that produced no media row.
type Failure struct {
	File string
	Err  error
}

// Result is the outcome of Extract.
type Result struct {
	Media       []datapackage.Media
	Sidecar     []datapackage.SidecarEntry
	Failed      []Failure
	NoTimestamp int
}

// Extractor builds media rows from files using an Inspector.
type Extractor struct {
	inspector Inspector
	newID     datapackage.IDGenerator
	opts      Options
	logger    *slog.Logger
}

// NewExtractor constructs an extractor. A nil newID uses datapackage.NewID;
// identifiers are unique within one Extract call.
func NewExtractor(inspector Inspector, newID datapackage.IDGenerator, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{inspector: inspector, newID: newID, opts: opts, logger: logger}
}

// Extract inspects files in order. Per-file failures are collected and
// logged; the returned error is reserved for cancellation.
func (e *Extractor) Extract(ctx context.Context, files []string) (Result, error) {
	var result Result
	nextID := datapackage.Unique(e.newID)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		md, err := e.inspector.Inspect(ctx, file)
		if err != nil {
			e.fail(&result, file, services.Wrap(services.ErrExternalTool, "extract", "inspect", filepath.Base(file), err))
			continue
		}
		row, err := e.record(file, md)
		if err != nil {
			e.fail(&result, file, err)
			continue
		}
		row.MediaID = nextID()
		if row.Timestamp == "" {
			result.NoTimestamp++
			logging.WarnWithContext(e.logger, "media has no capture time", "media_timestamp_missing",
				logging.String(logging.FieldFile, file),
				logging.String(logging.FieldErrorHint, "the file cannot be matched to overlapping deployments without DateTimeOriginal"),
				logging.String(logging.FieldImpact, "row kept with empty timestamp"),
			)
		}
		result.Media = append(result.Media, row)
		result.Sidecar = append(result.Sidecar, datapackage.SidecarEntry{File: file, Metadata: md})
	}
	return result, nil
}

func (e *Extractor) record(file string, md exiftool.Metadata) (datapackage.Media, error) {
	ts, err := CaptureTimestamp(md)
	if err != nil {
		return datapackage.Media{}, fmt.Errorf("capture time: %w", err)
	}
	exifData, err := ExifData(md, e.opts.EmbedFullExif)
	if err != nil {
		return datapackage.Media{}, err
	}
	filePublic := "false"
	if e.opts.FilePublic {
		filePublic = "true"
	}
	return datapackage.Media{
		DeploymentID:  e.opts.PlaceholderDeployment,
		CaptureMethod: CaptureMethod(md),
		Timestamp:     ts,
		FilePath:      RelativePath(e.opts.ProjectDir, file),
		FilePublic:    filePublic,
		FileName:      filepath.Base(file),
		FileMediatype: MediaType(file, md),
		ExifData:      exifData,
	}, nil
}

func (e *Extractor) fail(result *Result, file string, err error) {
	result.Failed = append(result.Failed, Failure{File: file, Err: err})
	logging.WarnWithContext(e.logger, "skipping media file", "media_extract_failed",
		append([]logging.Attr{
			logging.String(logging.FieldFile, file),
			logging.String(logging.FieldErrorHint, "run exiftool -json on the file to inspect its metadata"),
			logging.String(logging.FieldImpact, "file omitted from media table"),
		}, logging.ErrorAttrs(err)...)...,
	)
}
