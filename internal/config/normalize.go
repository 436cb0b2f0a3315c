package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeExiftool(); err != nil {
		return err
	}
	c.normalizeDeployments()
	c.normalizeLinking()
	if err := c.normalizeClassifier(); err != nil {
		return err
	}
	c.normalizeMerge()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectDir) == "" {
		c.Paths.ProjectDir = defaultProjectDir
	}
	if c.Paths.ProjectDir, err = expandPath(c.Paths.ProjectDir); err != nil {
		return fmt.Errorf("paths.project_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		if value, ok := os.LookupEnv("CAMTRAP_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = filepath.Join(c.Paths.ProjectDir, defaultDataDirName)
		}
	}
	if c.Paths.DataDir, err = resolveUnder(c.Paths.ProjectDir, c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PackageDir) == "" {
		c.Paths.PackageDir = filepath.Join(c.Paths.ProjectDir, defaultPackageDirName)
	}
	if c.Paths.PackageDir, err = resolveUnder(c.Paths.ProjectDir, c.Paths.PackageDir); err != nil {
		return fmt.Errorf("paths.package_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = resolveUnder(c.Paths.ProjectDir, c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExiftool() error {
	binary := strings.TrimSpace(c.Exiftool.Binary)
	if strings.ContainsAny(binary, `/\`) || strings.HasPrefix(binary, "~") {
		expanded, err := resolveUnder(c.Paths.ProjectDir, binary)
		if err != nil {
			return fmt.Errorf("exiftool.binary: %w", err)
		}
		binary = expanded
	}
	c.Exiftool.Binary = binary
	c.Exiftool.PlaceholderDeployment = strings.TrimSpace(c.Exiftool.PlaceholderDeployment)
	if c.Exiftool.PlaceholderDeployment == "" {
		c.Exiftool.PlaceholderDeployment = defaultPlaceholderDeployment
	}
	return nil
}

func (c *Config) normalizeDeployments() {
	c.Deployments.DefaultTimezone = strings.ToUpper(strings.TrimSpace(c.Deployments.DefaultTimezone))
	if c.Deployments.DefaultTimezone == "" {
		c.Deployments.DefaultTimezone = defaultTimezone
	}
}

func (c *Config) normalizeLinking() {
	c.Linking.PlaceholderPrefix = strings.TrimSpace(c.Linking.PlaceholderPrefix)
	if c.Linking.PlaceholderPrefix == "" {
		c.Linking.PlaceholderPrefix = defaultPlaceholderPrefix
	}
}

func (c *Config) normalizeClassifier() error {
	c.Classifier.Command = strings.TrimSpace(c.Classifier.Command)
	args := make([]string, 0, len(c.Classifier.Args))
	for _, arg := range c.Classifier.Args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Classifier.Args = args
	if strings.TrimSpace(c.Classifier.SpeciesFile) != "" {
		expanded, err := resolveUnder(c.Paths.ProjectDir, c.Classifier.SpeciesFile)
		if err != nil {
			return fmt.Errorf("classifier.species_file: %w", err)
		}
		c.Classifier.SpeciesFile = expanded
	}
	c.Classifier.ClassifiedBy = strings.TrimSpace(c.Classifier.ClassifiedBy)
	if c.Classifier.ClassifiedBy == "" {
		c.Classifier.ClassifiedBy = defaultAIClassifiedBy
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		c.Classifier.TimeoutSeconds = defaultClassifierTimeout
	}
	return nil
}

func (c *Config) normalizeMerge() {
	c.Merge.HumanClassifiedBy = strings.TrimSpace(c.Merge.HumanClassifiedBy)
	if c.Merge.HumanClassifiedBy == "" {
		c.Merge.HumanClassifiedBy = defaultHumanClassifiedBy
	}
	c.Merge.AIClassifiedBy = strings.TrimSpace(c.Merge.AIClassifiedBy)
	if c.Merge.AIClassifiedBy == "" {
		c.Merge.AIClassifiedBy = c.Classifier.ClassifiedBy
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
