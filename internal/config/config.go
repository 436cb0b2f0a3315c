package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the project, input and output directories.
type Paths struct {
	ProjectDir string `toml:"project_dir"`
	DataDir    string `toml:"data_dir"`
	PackageDir string `toml:"package_dir"`
	LogDir     string `toml:"log_dir"`
}

// Exiftool contains settings for media metadata extraction.
type Exiftool struct {
	Binary                string `toml:"binary"`
	Recursive             bool   `toml:"recursive"`
	EmbedFullExif         bool   `toml:"embed_full_exif"`
	FilePublic            bool   `toml:"file_public"`
	PlaceholderDeployment string `toml:"placeholder_deployment"`
}

// Deployments contains settings for building the deployment table.
type Deployments struct {
	// DefaultTimezone is the abbreviation applied when neither the row nor the
	// EndTime header names a zone.
	DefaultTimezone string `toml:"default_timezone"`
}

// Linking contains settings for the serial-to-deployment linker.
type Linking struct {
	// PlaceholderPrefix marks deploymentIDs that the linker may replace.
	// Matching is case-insensitive.
	PlaceholderPrefix string `toml:"placeholder_prefix"`
}

// Classifier contains settings for the external image classifier.
type Classifier struct {
	Command               string   `toml:"command"`
	Args                  []string `toml:"args"`
	SpeciesFile           string   `toml:"species_file"`
	MinSpeciesProbability float64  `toml:"min_species_probability"`
	ClassifiedBy          string   `toml:"classified_by"`
	Autocontrast          bool     `toml:"autocontrast"`
	TimeoutSeconds        int      `toml:"timeout_seconds"`
}

// Merge contains settings for reconciling human labels and AI detections.
type Merge struct {
	AIThreshold       float64 `toml:"ai_threshold"`
	HumanClassifiedBy string  `toml:"human_classified_by"`
	AIClassifiedBy    string  `toml:"ai_classified_by"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for camtrap.
//
// Configuration sections by subsystem:
//   - Paths: project root, raw media, datapackage output and logs
//   - Exiftool: metadata extraction behaviour
//   - Deployments: deployment sheet timezone default
//   - Linking: placeholder deploymentID handling
//   - Classifier: external image classifier invocation
//   - Merge: human/AI reconciliation thresholds and provenance labels
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Exiftool    Exiftool    `toml:"exiftool"`
	Deployments Deployments `toml:"deployments"`
	Linking     Linking     `toml:"linking"`
	Classifier  Classifier  `toml:"classifier"`
	Merge       Merge       `toml:"merge"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("camtrap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directories a pipeline run writes to.
// The data directory is input only and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.PackageDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExiftoolBinary returns the configured exiftool executable, or an empty
// string when it should be discovered.
func (c *Config) ExiftoolBinary() string {
	return strings.TrimSpace(c.Exiftool.Binary)
}

// ClassifierBinary returns the classifier executable name.
func (c *Config) ClassifierBinary() string {
	return strings.TrimSpace(c.Classifier.Command)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// resolveUnder expands value, interpreting relative paths against base.
func resolveUnder(base, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "~") || filepath.IsAbs(value) {
		return expandPath(value)
	}
	return expandPath(filepath.Join(base, value))
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
