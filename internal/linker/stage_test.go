package linker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"camtrap/internal/datapackage"
	"camtrap/internal/exiftool"
	"camtrap/internal/linker"
	"camtrap/internal/services"
	"camtrap/internal/testsupport"
)

func TestStageLinksAndKeepsExtraColumns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)

	if err := datapackage.WriteDeployments(layout.Deployments(), []datapackage.Deployment{
		{DeploymentID: "A_111", CameraID: "111", DeploymentStart: "2024-05-01T00:00:00Z", DeploymentEnd: "2024-05-31T23:59:59Z"},
		{DeploymentID: "B_111", CameraID: "111", DeploymentStart: "2024-06-01T00:00:00Z"},
	}); err != nil {
		t.Fatal(err)
	}
	header := append([]string{"reviewer"}, datapackage.MediaColumns...)
	if err := datapackage.WriteMedia(layout.Media(), header, []datapackage.Media{
		{MediaID: "m1", DeploymentID: "DEPLOY1", Timestamp: "2024-05-02T00:00:00Z", FilePath: "data/a.jpg", ExifData: `{"Make":"RECONYX"}`, Extra: map[string]string{"reviewer": "kim"}},
		{MediaID: "m2", DeploymentID: "DEPLOY1", Timestamp: "2024-06-02T00:00:00Z", FilePath: "data/b.jpg", ExifData: `{"SerialNumber":"111"}`},
	}); err != nil {
		t.Fatal(err)
	}
	if err := datapackage.WriteSidecar(layout.MediaMetadata(), []datapackage.SidecarEntry{
		{File: filepath.Join(cfg.Paths.ProjectDir, "data", "a.jpg"), Metadata: exiftool.New(map[string]any{"SerialNumber": "111"})},
	}); err != nil {
		t.Fatal(err)
	}

	report, err := linker.NewStage(cfg).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Get(linker.CounterTotal) != 2 || report.Get(linker.CounterLinked) != 2 {
		t.Fatalf("unexpected counters %+v", report.Counters)
	}

	gotHeader, rows, err := datapackage.ReadMedia(layout.MediaLinked())
	if err != nil {
		t.Fatalf("ReadMedia: %v", err)
	}
	if gotHeader[0] != "reviewer" {
		t.Fatalf("expected original header order, got %v", gotHeader)
	}
	if rows[0].DeploymentID != "A_111" || rows[1].DeploymentID != "B_111" {
		t.Fatalf("unexpected deployments %q %q", rows[0].DeploymentID, rows[1].DeploymentID)
	}
	if rows[0].Extra["reviewer"] != "kim" {
		t.Fatalf("expected extra column preserved, got %+v", rows[0].Extra)
	}
}

func TestStageMissingInputsAreFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)
	handler := linker.NewStage(cfg)

	if _, err := handler.Run(context.Background(), nil); !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing without deployments, got %v", err)
	}
	if err := datapackage.WriteDeployments(layout.Deployments(), nil); err != nil {
		t.Fatal(err)
	}
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage without media table")
	}
	if _, err := handler.Run(context.Background(), nil); !errors.Is(err, services.ErrInputMissing) {
		t.Fatalf("expected ErrInputMissing without media, got %v", err)
	}
}
