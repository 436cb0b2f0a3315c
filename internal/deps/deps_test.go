package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"camtrap/internal/services"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}
}

func TestResolveExiftoolOrder(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	project := t.TempDir()
	toolsBinary := filepath.Join(project, "tools", "exiftool", "exiftool")
	writeStub(t, toolsBinary)

	envDir := t.TempDir()
	envBinary := filepath.Join(envDir, "exiftool")
	writeStub(t, envBinary)

	explicit := filepath.Join(t.TempDir(), "custom-exiftool")
	writeStub(t, explicit)

	t.Setenv(ExiftoolEnv, envDir)
	got, err := ResolveExiftool(explicit, project)
	if err != nil || got != explicit {
		t.Fatalf("explicit path should win: got %q err %v", got, err)
	}

	got, err = ResolveExiftool("", project)
	if err != nil || got != envBinary {
		t.Fatalf("env directory should resolve to binary: got %q err %v", got, err)
	}

	t.Setenv(ExiftoolEnv, "")
	got, err = ResolveExiftool("", project)
	if err != nil || got != toolsBinary {
		t.Fatalf("project tools fallback: got %q err %v", got, err)
	}

	pathDir := t.TempDir()
	pathBinary := filepath.Join(pathDir, "exiftool")
	writeStub(t, pathBinary)
	t.Setenv("PATH", pathDir)
	got, err = ResolveExiftool("", project)
	if err != nil || got != pathBinary {
		t.Fatalf("PATH should precede project tools: got %q err %v", got, err)
	}
}

func TestResolveExiftoolFailures(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv(ExiftoolEnv, "")

	_, err := ResolveExiftool(filepath.Join(t.TempDir(), "nope", "exiftool"), "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("missing explicit path should be a configuration error, got %v", err)
	}
	_, err = ResolveExiftool("", t.TempDir())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	status := CheckExiftool("", t.TempDir())
	if status.Available || status.Detail == "" {
		t.Fatalf("expected unavailable status with detail, got %#v", status)
	}
}
