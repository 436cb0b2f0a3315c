package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	layout     datapackage.Layout
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	t.Setenv("HOME", filepath.Join(cfg.Paths.ProjectDir, "home"))
	cfg.Logging.Level = "error"

	configPath := filepath.Join(cfg.Paths.ProjectDir, "camtrap.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		layout:     datapackage.NewLayout(cfg.Paths.PackageDir),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nproject_dir = %q\ndata_dir = %q\npackage_dir = %q\nlog_dir = %q\n\n[exiftool]\nbinary = %q\n\n[logging]\nlevel = %q\n",
		cfg.Paths.ProjectDir,
		cfg.Paths.DataDir,
		cfg.Paths.PackageDir,
		cfg.Paths.LogDir,
		cfg.Exiftool.Binary,
		cfg.Logging.Level,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func writeRawSheet(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteCSV(t, env.layout.RawDeployments(),
		[]string{"siteID", "cameraSerial", "startLocal", "endLocal"},
		[]string{"A", "H500", "5/1/2024", "5/31/2024"},
	)
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.PackageDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestDeploymentsCommandPrintsJSONSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	writeRawSheet(t, env)

	out, _, err := runCLI(t, []string{"--json", "deployments"}, env.configPath)
	if err != nil {
		t.Fatalf("deployments: %v", err)
	}
	var views []reportView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if len(views) != 1 || views[0].Stage != "deployments" {
		t.Fatalf("unexpected summary %+v", views)
	}
	counters := map[string]int{}
	for _, c := range views[0].Counters {
		counters[c.Name] = c.Value
	}
	if counters["written"] != 1 || counters["rejected"] != 0 {
		t.Fatalf("unexpected counters %+v", counters)
	}
	if _, err := os.Stat(env.layout.Deployments()); err != nil {
		t.Fatalf("expected deployments table: %v", err)
	}
}

func TestStageCommandRefusesMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"link"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "link not ready") {
		t.Fatalf("expected readiness error, got %v", err)
	}
}

func TestMergeRejectsThresholdOutOfRange(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"merge", "--ai-threshold", "1.5"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--ai-threshold") {
		t.Fatalf("expected threshold error, got %v", err)
	}
}

func TestRunCommandBuildsPackage(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithExiftoolStub())
	writeRawSheet(t, env)
	image := filepath.Join(env.cfg.Paths.DataDir, "IMG_0001.JPG")
	testsupport.WriteFile(t, image, 16)
	testsupport.WriteText(t, image+".json", `[{"SourceFile":"IMG_0001.JPG","DateTimeOriginal":"2024:05:10 09:00:00","OffsetTimeOriginal":"-05:00","SerialNumber":"H500","Make":"RECONYX","TriggerMode":"Motion Detection"}]`)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "observations")
	requireContains(t, out, "Wrote "+env.layout.LabelTemplate())

	_, media, err := datapackage.ReadMedia(env.layout.Media())
	if err != nil {
		t.Fatalf("ReadMedia: %v", err)
	}
	if len(media) != 1 || media[0].DeploymentID != "A_H500" {
		t.Fatalf("expected linked media row, got %+v", media)
	}
	_, obs, err := datapackage.ReadObservations(env.layout.Observations())
	if err != nil {
		t.Fatalf("ReadObservations: %v", err)
	}
	if len(obs) != 1 || obs[0].MediaID != media[0].MediaID {
		t.Fatalf("unexpected observations %+v", obs)
	}
}

func TestStatusJSONReportsInputs(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var snap statusSnapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("decode status %q: %v", out, err)
	}
	if !snap.ConfigExists || snap.ProjectDir != env.cfg.Paths.ProjectDir {
		t.Fatalf("unexpected config section %+v", snap)
	}
	found := false
	for _, c := range snap.Inputs {
		if c.Name == "Raw deployment sheet" {
			found = true
			if c.Status != "error" {
				t.Fatalf("expected missing sheet to be an error, got %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("raw deployment sheet check missing from %+v", snap.Inputs)
	}
	for _, c := range snap.Package {
		if c.Status != "info" {
			t.Fatalf("expected unbuilt package tables, got %+v", c)
		}
	}
}

func TestStatusTextOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	writeRawSheet(t, env)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Inputs ==")
	requireContains(t, out, "Raw deployment sheet:")
	requireContains(t, out, "[OK]")
	if strings.Contains(out, ansiReset) {
		t.Fatal("expected no color codes when writing to a buffer")
	}
}
