package classifier

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/logging"
	"camtrap/internal/services"
)

// DetectOptions control one detection pass.
type DetectOptions struct {
	ProjectDir            string
	ClassifiedBy          string
	MinSpeciesProbability float64
	// Limit caps the number of media rows considered; zero means all.
	Limit int
}

// DetectResult summarises one detection pass.
type DetectResult struct {
	Detections []datapackage.Detection
	Missing    int
	Failed     int
}

// ResolvePath maps a media filePath to a file on disk. Relative paths are
// anchored at the project directory.
func ResolvePath(projectDir, filePath string) string {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return ""
	}
	native := filepath.FromSlash(filePath)
	if filepath.IsAbs(native) {
		return native
	}
	return filepath.Join(projectDir, native)
}

// Detect classifies every media row whose file exists. Rows without a mediaID
// or file are skipped; a failing invocation is logged and skipped unless the
// context was cancelled.
func Detect(ctx context.Context, cls Classifier, rows []datapackage.Media, opts DetectOptions, logger *slog.Logger) (DetectResult, error) {
	logger = logging.NewComponentLogger(logger, "classifier")
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}

	var result DetectResult
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		mediaID := strings.TrimSpace(row.MediaID)
		path := ResolvePath(opts.ProjectDir, row.FilePath)
		if mediaID == "" || path == "" || !fileutil.Exists(path) {
			result.Missing++
			logger.Debug("media file unavailable",
				logging.Int(logging.FieldRow, i+2),
				logging.String(logging.FieldFile, row.FilePath),
			)
			continue
		}

		pred, err := cls.Classify(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			wrapped := services.Wrap(services.ErrExternalTool, "detect", "classify", row.FilePath, err)
			logging.WarnWithContext(logger, "classification failed", "classify_failed",
				logging.String(logging.FieldFile, row.FilePath),
				logging.Error(wrapped),
				logging.String(logging.FieldErrorHint, "run the classifier command by hand against this image"),
				logging.String(logging.FieldImpact, "no detection for this media"),
			)
			continue
		}
		result.Detections = append(result.Detections, detectionFor(row, mediaID, pred, opts))
	}
	return result, nil
}

func detectionFor(row datapackage.Media, mediaID string, pred Prediction, opts DetectOptions) datapackage.Detection {
	det := datapackage.Detection{
		MediaID:                   mediaID,
		FilePath:                  row.FilePath,
		ObservationType:           pred.ObservationType,
		ClassificationMethod:      datapackage.MethodMachine,
		ClassifiedBy:              opts.ClassifiedBy,
		ClassificationProbability: formatProbability(pred.Probability),
	}
	if pred.ObservationType == datapackage.TypeAnimal && pred.ScientificName != "" && pred.SpeciesProbability != nil &&
		*pred.SpeciesProbability >= opts.MinSpeciesProbability {
		det.ScientificName = pred.ScientificName
		det.SpeciesProbability = formatProbability(*pred.SpeciesProbability)
	}
	return det
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', 4, 64)
}
