package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"camtrap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted at a fresh temp project directory with
// data/, datapackage/ and logs/ underneath. The data and package directories
// are created; options run afterwards.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ProjectDir = base
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.PackageDir = filepath.Join(base, "datapackage")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	for _, dir := range []string{cfgVal.Paths.DataDir, cfgVal.Paths.PackageDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTimezone overrides the default deployment timezone abbreviation.
func WithTimezone(abbr string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Deployments.DefaultTimezone = abbr
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, exiftool is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"exiftool"}
		}
		binDir := b.binDir()
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "exit 0\n")
		}
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithExiftoolStub installs a fake exiftool and points the config at it. The
// stub prints the contents of "<file>.json" for the file it is asked about,
// and fails when that fixture is missing.
func WithExiftoolStub() ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), "exiftool")
		WriteScript(b.t, target, `for last; do :; done
if [ ! -f "$last.json" ]; then
  echo "Error: File not found - $last" >&2
  exit 1
fi
cat "$last.json"
`)
		b.cfg.Exiftool.Binary = target
	}
}

// WithClassifierStub installs a fake classifier that prints output for every
// image and configures it as the classifier command.
func WithClassifierStub(output string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.binDir(), "classify")
		WriteScript(b.t, target, "cat <<'JSON'\n"+output+"\nJSON\n")
		b.cfg.Classifier.Command = target
	}
}

func (b *configBuilder) binDir() string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.ProjectDir
}
