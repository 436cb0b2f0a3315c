package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes a binary and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prediction is the classifier verdict for one image.
type Prediction struct {
	ObservationType    string   `json:"observationType"`
	Probability        float64  `json:"probability"`
	ScientificName     string   `json:"scientificName,omitempty"`
	SpeciesProbability *float64 `json:"speciesProbability,omitempty"`
}

// Classifier labels a single image.
type Classifier interface {
	Classify(ctx context.Context, imagePath string) (Prediction, error)
}

// CommandOptions describe how the external classifier is invoked.
type CommandOptions struct {
	Args         []string
	SpeciesFile  string
	Autocontrast bool
	Timeout      time.Duration
}

// CommandClassifier invokes an external executable once per image.
type CommandClassifier struct {
	command string
	opts    CommandOptions
	runner  CommandRunner
}

// NewCommandClassifier constructs a classifier for command.
func NewCommandClassifier(command string, opts CommandOptions) *CommandClassifier {
	return &CommandClassifier{
		command: strings.TrimSpace(command),
		opts:    opts,
		runner:  runCommand,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (c *CommandClassifier) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		c.runner = runner
	}
}

// Command returns the configured executable.
func (c *CommandClassifier) Command() string {
	return c.command
}

// Arguments returns the argument list passed for imagePath.
func (c *CommandClassifier) Arguments(imagePath string) []string {
	args := append([]string(nil), c.opts.Args...)
	if c.opts.SpeciesFile != "" {
		args = append(args, "--species-file", c.opts.SpeciesFile)
	}
	if c.opts.Autocontrast {
		args = append(args, "--autocontrast")
	}
	return append(args, imagePath)
}

// Classify runs the classifier against imagePath.
func (c *CommandClassifier) Classify(ctx context.Context, imagePath string) (Prediction, error) {
	if c.command == "" {
		return Prediction{}, errors.New("classify: no command configured")
	}
	imagePath = strings.TrimSpace(imagePath)
	if imagePath == "" {
		return Prediction{}, errors.New("classify: empty path")
	}
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	output, err := c.runner(ctx, c.command, c.Arguments(imagePath)...)
	if err != nil {
		return Prediction{}, fmt.Errorf("classify %s: %w", imagePath, err)
	}
	return ParseOutput(output)
}

// ParseOutput decodes classifier stdout. Leading non-JSON lines (progress
// output from model loaders) are skipped; the last JSON object wins.
func ParseOutput(output []byte) (Prediction, error) {
	var (
		pred  Prediction
		found bool
	)
	for _, line := range bytes.Split(output, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var candidate Prediction
		if err := json.Unmarshal(line, &candidate); err != nil {
			continue
		}
		pred = candidate
		found = true
	}
	if !found {
		trimmed := bytes.TrimSpace(output)
		if err := json.Unmarshal(trimmed, &pred); err != nil {
			return Prediction{}, fmt.Errorf("classifier parse: %w", err)
		}
	}
	pred.ObservationType = strings.ToLower(strings.TrimSpace(pred.ObservationType))
	pred.ScientificName = strings.TrimSpace(pred.ScientificName)
	if pred.ObservationType == "" {
		return Prediction{}, errors.New("classifier parse: missing observationType")
	}
	if pred.Probability < 0 || pred.Probability > 1 {
		return Prediction{}, fmt.Errorf("classifier parse: probability %v out of range", pred.Probability)
	}
	return pred, nil
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
