package config

import (
	"errors"
	"fmt"
	"strings"

	"camtrap/internal/textutil"
	"camtrap/internal/timestamp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDeployments(); err != nil {
		return err
	}
	if err := c.validateLinking(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.PackageDir) == "" {
		return errors.New("paths.package_dir must be set")
	}
	if c.Paths.DataDir == c.Paths.PackageDir {
		return errors.New("paths.data_dir and paths.package_dir must differ")
	}
	return nil
}

func (c *Config) validateDeployments() error {
	if _, ok := timestamp.LookupAbbreviation(c.Deployments.DefaultTimezone); !ok {
		return fmt.Errorf("deployments.default_timezone %q is not a known abbreviation (use UTC, EST, EDT, CST, CDT, MST, MDT, PST or PDT)", c.Deployments.DefaultTimezone)
	}
	return nil
}

// The extract stage stamps placeholder_deployment on every image; the linker
// only replaces IDs carrying placeholder_prefix.
func (c *Config) validateLinking() error {
	if !textutil.HasPrefixFold(c.Exiftool.PlaceholderDeployment, c.Linking.PlaceholderPrefix) {
		return fmt.Errorf("exiftool.placeholder_deployment %q must start with linking.placeholder_prefix %q", c.Exiftool.PlaceholderDeployment, c.Linking.PlaceholderPrefix)
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if err := ensureProbability("classifier.min_species_probability", c.Classifier.MinSpeciesProbability); err != nil {
		return err
	}
	if len(c.Classifier.Args) > 0 && c.Classifier.Command == "" {
		return errors.New("classifier.args requires classifier.command")
	}
	return nil
}

func (c *Config) validateMerge() error {
	return ensureProbability("merge.ai_threshold", c.Merge.AIThreshold)
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensureProbability(key string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", key)
	}
	return nil
}
