package preflight

import (
	"context"
	"strings"

	"camtrap/internal/config"
	"camtrap/internal/datapackage"
	"camtrap/internal/deps"
	"camtrap/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a full pipeline run needs: the data directory is
// readable, the package directory is writable, the raw deployment sheet
// exists and exiftool resolves.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	layout := datapackage.NewLayout(cfg.Paths.PackageDir)

	results := []Result{
		CheckReadableDirectory("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Package directory", cfg.Paths.PackageDir),
		CheckReadableFile("Raw deployment sheet", layout.RawDeployments()),
	}

	exiftool := deps.CheckExiftool(cfg.ExiftoolBinary(), cfg.Paths.ProjectDir)
	if exiftool.Available {
		results = append(results, Result{Name: "exiftool", Passed: true, Detail: exiftool.Path})
	} else {
		results = append(results, Result{Name: "exiftool", Detail: exiftool.Detail})
	}
	return results
}

// Err converts failed results into one services.ErrInputMissing error, or nil
// when every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrInputMissing, "preflight", "check inputs", strings.Join(failed, "; "), nil)
}

// CheckSystemDeps evaluates the external programs for the given config. The
// classifier is optional; it is only needed by the detect stage.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	statuses := []deps.Status{deps.CheckExiftool(cfg.ExiftoolBinary(), cfg.Paths.ProjectDir)}
	classifier := deps.CheckBinaries([]deps.Requirement{{
		Name:        "classifier",
		Command:     cfg.ClassifierBinary(),
		Description: "Zero-shot image classifier used by detect",
		Optional:    true,
	}})
	return append(statuses, classifier...)
}
