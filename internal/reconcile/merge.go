package reconcile

import (
	"errors"
	"fmt"
	"io/fs"

	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/services"
)

// Options combines both passes.
type Options struct {
	HumanClassifiedBy string
	AIClassifiedBy    string
	Threshold         float64
	Clock             Clock
}

// Summary reports both passes.
type Summary struct {
	Human HumanResult
	AI    AIResult
}

// Merge applies human labels first and AI detections second. Either source
// may be empty.
func Merge(observations []datapackage.Observation, labels []datapackage.LabelRow, labelHeader []string, detections []datapackage.Detection, opts Options) ([]datapackage.Observation, Summary) {
	var summary Summary
	merged, human := ApplyHuman(observations, labels, labelHeader, HumanOptions{
		ClassifiedBy: opts.HumanClassifiedBy,
		Clock:        opts.Clock,
	})
	summary.Human = human
	merged, ai := ApplyAI(merged, BestDetections(detections), AIOptions{
		Threshold:    opts.Threshold,
		ClassifiedBy: opts.AIClassifiedBy,
		Clock:        opts.Clock,
	})
	summary.AI = ai
	return merged, summary
}

// Promote copies the merged table over the canonical observations table. A
// missing merged table is reported as services.ErrInputMissing.
func Promote(mergedPath, observationsPath string) error {
	err := fileutil.Promote(mergedPath, observationsPath)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrInputMissing, "merge", "promote", mergedPath, err)
	default:
		return fmt.Errorf("promote %s: %w", mergedPath, err)
	}
}
