package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camtrap/internal/config"
	"camtrap/internal/logging"
	"camtrap/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:           format,
		Level:            level,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("ready")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("pipeline started")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "pipeline started") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerPrefixesComponentAndStage(t *testing.T) {
	_, read := newFileLogger(t, "console", "info")
	logPath := filepath.Join(t.TempDir(), "prefix.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithStage(services.WithRunID(context.Background(), "run-1"), "link")
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "linker"))
	logger.Info("linked media", logging.Int("linked", 3))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "INFO linker [link]: linked media") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "run_id=run-1") || !strings.Contains(line, "linked=3") {
		t.Fatalf("missing fields: %q", line)
	}
	if strings.Contains(line, "component=") || strings.Contains(line, "stage=") {
		t.Fatalf("component and stage should only appear in the prefix: %q", line)
	}
	if strings.Contains(read(), ".go:") {
		t.Fatal("expected no caller information at info level")
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	_, read := newFileLogger(t, "console", "debug")
	if !strings.Contains(read(), ".go:") {
		t.Fatal("expected caller information at debug level")
	}
}

func TestJSONLoggerFields(t *testing.T) {
	_, read := newFileLogger(t, "json", "info")
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload["msg"] != "ready" || payload["level"] != "info" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key: %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	wrapped := services.Wrap(services.ErrFormat, "deployments", "parse row", "bad date", errors.New("13/45/2024"))
	attrs := append(logging.ErrorAttrs(wrapped), logging.String(logging.FieldImpact, "deployment omitted"))
	logging.WarnWithContext(logger, "row skipped", "deployment_row_invalid", attrs...)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(content, &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload[logging.FieldEventType] != "deployment_row_invalid" {
		t.Fatalf("unexpected event type: %v", payload)
	}
	if payload[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default hint: %v", payload)
	}
	if payload[logging.FieldImpact] != "deployment omitted" {
		t.Fatalf("caller impact should win: %v", payload)
	}
	if payload[logging.FieldErrorCategory] != "format" {
		t.Fatalf("expected error category: %v", payload)
	}
}
