package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"camtrap/internal/classifier"
	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/deployments"
	"camtrap/internal/exiftool"
	"camtrap/internal/linker"
	"camtrap/internal/observations"
	"camtrap/internal/pipeline"
	"camtrap/internal/reconcile"
	"camtrap/internal/services"
	"camtrap/internal/stage"
	"camtrap/internal/testsupport"
)

type fakeInspector map[string]exiftool.Metadata

func (f fakeInspector) Inspect(_ context.Context, path string) (exiftool.Metadata, error) {
	md, ok := f[filepath.Base(path)]
	if !ok {
		return exiftool.Metadata{}, errors.New("exit status 1")
	}
	return md, nil
}

type fakeClassifier map[string]classifier.Prediction

func (f fakeClassifier) Classify(_ context.Context, path string) (classifier.Prediction, error) {
	pred, ok := f[filepath.Base(path)]
	if !ok {
		return classifier.Prediction{}, errors.New("no detection")
	}
	return pred, nil
}

func sequentialIDs() datapackage.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%06d", n)
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
}

func capture(serial, when string) exiftool.Metadata {
	return exiftool.New(map[string]any{
		"SerialNumber":       serial,
		"DateTimeOriginal":   when,
		"OffsetTimeOriginal": "-05:00",
		"Make":               "RECONYX",
		"TriggerMode":        "Motion Detection",
	})
}

func seedProject(t *testing.T, cfg *config.Config) {
	t.Helper()
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	testsupport.WriteCSV(t, layout.RawDeployments(),
		[]string{"siteID", "cameraSerial", "cameraModel", "startLocal", "endLocal", "EndTime EST"},
		[]string{"A", "H500", "HF2", "5/1/2024", "5/31/2024", ""},
		[]string{"B", "H500", "HF2", "6/1/2024", "", ""},
	)
	for _, name := range []string{"IMG_0001.JPG", "IMG_0002.JPG", "IMG_0003.JPG"} {
		testsupport.WriteFile(t, filepath.Join(cfg.Paths.DataDir, "cam", name), 16)
	}
}

func reportFor(t *testing.T, reports []stage.Report, name string) stage.Report {
	t.Helper()
	for _, r := range reports {
		if r.Stage == name {
			return r
		}
	}
	t.Fatalf("no report for stage %q in %+v", name, reports)
	return stage.Report{}
}

func TestRunBuildsPackageAndMerges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedProject(t, cfg)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)

	runner := pipeline.NewWithDependencies(cfg, pipeline.Options{Detect: true}, pipeline.Dependencies{
		Inspector: fakeInspector{
			"IMG_0001.JPG": capture("H500", "2024:05:10 08:00:00"),
			"IMG_0002.JPG": capture("H500", "2024:05:20 21:30:00"),
			"IMG_0003.JPG": capture("H500", "2024:06:05 06:15:00"),
		},
		NewID: sequentialIDs(),
		Classifier: fakeClassifier{
			"IMG_0003.JPG": {ObservationType: "animal", Probability: 0.9},
		},
	})
	reports, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 6 {
		t.Fatalf("expected 6 stage reports, got %d", len(reports))
	}
	if got := reportFor(t, reports, "deployments").Get(deployments.CounterWritten); got != 2 {
		t.Fatalf("expected 2 deployments, got %d", got)
	}
	if got := reportFor(t, reports, "link").Get(linker.CounterLinked); got != 3 {
		t.Fatalf("expected 3 linked media, got %d", got)
	}
	if got := reportFor(t, reports, "observations").Get(observations.CounterObservations); got != 3 {
		t.Fatalf("expected 3 observations, got %d", got)
	}
	if got := reportFor(t, reports, "detect").Get(classifier.CounterDetections); got != 1 {
		t.Fatalf("expected 1 detection, got %d", got)
	}

	_, media, err := datapackage.ReadMedia(layout.Media())
	if err != nil {
		t.Fatalf("ReadMedia: %v", err)
	}
	wantDeployments := []string{"A_H500", "A_H500", "B_H500"}
	for i, row := range media {
		if row.DeploymentID != wantDeployments[i] {
			t.Fatalf("media %d linked to %q, want %q", i, row.DeploymentID, wantDeployments[i])
		}
	}

	_, labels, err := datapackage.ReadLabels(layout.LabelTemplate())
	if err != nil {
		t.Fatalf("ReadLabels: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("expected 3 label rows, got %d", len(labels))
	}
	labels[0].ObservationType = "animal"
	labels[0].ScientificName = "Sus scrofa"
	labels[0].Count = "2"
	if err := datapackage.WriteLabels(layout.LabelTemplate(), labels); err != nil {
		t.Fatalf("WriteLabels: %v", err)
	}

	merge := reconcile.NewStageWithDependencies(cfg, reconcile.StageOptions{}, fixedClock)
	report, err := stage.Run(context.Background(), nil, merge)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if report.Get(reconcile.CounterHumanUpdated) != 1 || report.Get(reconcile.CounterAIFilled) != 1 {
		t.Fatalf("unexpected merge counters %+v", report.Counters)
	}

	_, merged, err := datapackage.ReadObservations(layout.MergedObservations())
	if err != nil {
		t.Fatalf("ReadObservations: %v", err)
	}
	if merged[0].ScientificName != "Sus scrofa" || merged[0].ClassificationMethod != "human" {
		t.Fatalf("unexpected human row %+v", merged[0])
	}
	if merged[2].ObservationType != "animal" || merged[2].ClassificationMethod != "machine learning" {
		t.Fatalf("unexpected AI row %+v", merged[2])
	}
	if merged[1].ObservationType != "unclassified" {
		t.Fatalf("untouched row changed: %+v", merged[1])
	}
}

func TestRunFailsPreflightWithoutDeploymentSheet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := pipeline.NewWithDependencies(cfg, pipeline.Options{}, pipeline.Dependencies{Inspector: fakeInspector{}})
	reports, err := runner.Run(context.Background(), nil)
	if !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing, got %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("expected no stages to run, got %d", len(reports))
	}
}

func TestRunRefusesConcurrentBuild(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedProject(t, cfg)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)

	held := flock.New(layout.LockFile())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	runner := pipeline.NewWithDependencies(cfg, pipeline.Options{}, pipeline.Dependencies{Inspector: fakeInspector{}})
	if _, err := runner.Run(context.Background(), nil); !errors.Is(err, pipeline.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestStagesIncludeOptionalTail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	names := func(opts pipeline.Options) []string {
		var out []string
		for _, h := range pipeline.New(cfg, opts).Stages() {
			out = append(out, h.Name())
		}
		return out
	}
	if got := names(pipeline.Options{}); fmt.Sprint(got) != "[extract deployments link promote observations]" {
		t.Fatalf("unexpected base chain %v", got)
	}
	if got := names(pipeline.Options{Detect: true, Merge: true}); fmt.Sprint(got) != "[extract deployments link promote observations detect merge]" {
		t.Fatalf("unexpected full chain %v", got)
	}
}
