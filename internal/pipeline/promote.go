package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"camtrap/internal/datapackage"
	"camtrap/internal/fileutil"
	"camtrap/internal/services"
	"camtrap/internal/stage"
)

// promoteStage replaces media.csv with the linked table so later stages see
// resolved deploymentIDs.
type promoteStage struct {
	layout datapackage.Layout
}

func newPromoteStage(layout datapackage.Layout) *promoteStage {
	return &promoteStage{layout: layout}
}

func (s *promoteStage) Name() string { return "promote" }

func (s *promoteStage) Run(_ context.Context, _ *slog.Logger) (stage.Report, error) {
	report := stage.NewReport(s.Name())
	if err := fileutil.Promote(s.layout.MediaLinked(), s.layout.Media()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, services.Wrap(services.ErrInputMissing, "promote", "replace media table", s.layout.MediaLinked(), err)
		}
		return report, err
	}
	report.Wrote(s.layout.Media())
	return report, nil
}
