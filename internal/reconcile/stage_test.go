package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"camtrap/internal/datapackage"
	"camtrap/internal/reconcile"
	"camtrap/internal/services"
	"camtrap/internal/testsupport"
)

func clock() time.Time {
	return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
}

func writeObservations(t *testing.T, layout datapackage.Layout) {
	t.Helper()
	rows := []datapackage.Observation{
		{ObservationID: "o1", MediaID: "m1", ObservationType: "unclassified"},
		{ObservationID: "o2", MediaID: "m2", ObservationType: "unclassified"},
	}
	if err := datapackage.WriteObservations(layout.Observations(), nil, rows); err != nil {
		t.Fatal(err)
	}
}

func TestStageMergesAndPromotes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	writeObservations(t, layout)
	if err := datapackage.WriteLabels(layout.LabelTemplate(), []datapackage.LabelRow{
		{ObservationID: "o1", ObservationType: "animal", Count: "2"},
		{ObservationID: "o2", ObservationType: "animal", Count: "many"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := datapackage.WriteDetections(layout.Detections(), []datapackage.Detection{
		{MediaID: "m1", ObservationType: "blank", ClassificationProbability: "0.9"},
		{MediaID: "m2", ObservationType: "animal", ClassificationProbability: "0.9"},
	}); err != nil {
		t.Fatal(err)
	}

	threshold := 0.5
	handler := reconcile.NewStageWithDependencies(cfg, reconcile.StageOptions{Threshold: &threshold, InPlace: true}, clock)
	report, err := handler.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	checks := map[string]int{
		reconcile.CounterObservations:         2,
		reconcile.CounterHumanUpdated:         1,
		reconcile.CounterHumanRejected:        1,
		reconcile.CounterAIFilled:             1,
		reconcile.CounterSkippedHumanOverride: 1,
		reconcile.CounterUnmatchedAI:          0,
	}
	for name, want := range checks {
		if got := report.Get(name); got != want {
			t.Fatalf("counter %s = %d, want %d", name, got, want)
		}
	}

	for _, path := range []string{layout.MergedObservations(), layout.Observations()} {
		_, rows, err := datapackage.ReadObservations(path)
		if err != nil {
			t.Fatalf("ReadObservations(%s): %v", path, err)
		}
		if rows[0].ClassificationMethod != "human" || rows[0].Count != "2" || rows[0].ClassifiedBy != "human" {
			t.Fatalf("%s: unexpected human row %+v", path, rows[0])
		}
		if rows[1].ClassificationMethod != "machine learning" || rows[1].ObservationType != "animal" {
			t.Fatalf("%s: unexpected AI row %+v", path, rows[1])
		}
		if rows[1].ClassificationTimestamp != "2024-07-01T12:00:00Z" {
			t.Fatalf("%s: unexpected timestamp %q", path, rows[1].ClassificationTimestamp)
		}
	}
}

func TestStageWithoutLabelsOrDetections(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	writeObservations(t, layout)

	report, err := reconcile.NewStage(cfg, reconcile.StageOptions{}).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Get(reconcile.CounterUnmatchedAI) != 2 || report.Get(reconcile.CounterHumanUpdated) != 0 {
		t.Fatalf("unexpected counters %+v", report.Counters)
	}
	original := testsupport.ReadText(t, layout.Observations())
	if merged := testsupport.ReadText(t, layout.MergedObservations()); merged != original {
		t.Fatalf("expected unchanged merge output\n%s\nvs\n%s", merged, original)
	}
}

func TestStageMissingObservationsIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := reconcile.NewStage(cfg, reconcile.StageOptions{}).Run(context.Background(), nil)
	if !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
}

func TestPromoteMissingMergedTable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	if err := reconcile.Promote(layout.MergedObservations(), layout.Observations()); !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
}
