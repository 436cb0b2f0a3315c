package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is the executable looked up on PATH when none is configured.
const DefaultBinary = "exiftool"

// CommandRunner executes a binary and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Client runs exiftool against individual files.
type Client struct {
	binary string
	runner CommandRunner
}

// NewClient creates a client for the given binary.
func NewClient(binary string) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Client{binary: binary, runner: runCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *Client) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.runner = runner
	}
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Inspect executes exiftool against path and decodes the first JSON object.
func (c *Client) Inspect(ctx context.Context, path string) (Metadata, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Metadata{}, errors.New("exiftool inspect: empty path")
	}
	output, err := c.runner(ctx, c.binary, "-json", "--", path)
	if err != nil {
		return Metadata{}, fmt.Errorf("exiftool inspect: %w", err)
	}
	return parseOutput(output, path)
}

// Inspect executes exiftool with the default runner.
func Inspect(ctx context.Context, binary string, path string) (Metadata, error) {
	return NewClient(binary).Inspect(ctx, path)
}

func parseOutput(output []byte, path string) (Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(output))
	dec.UseNumber()
	var payload []map[string]any
	if err := dec.Decode(&payload); err != nil {
		return Metadata{}, fmt.Errorf("exiftool parse: %w", err)
	}
	if len(payload) == 0 {
		return Metadata{}, fmt.Errorf("exiftool parse: no metadata returned for %s", path)
	}
	return New(payload[0]), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
