package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"camtrap/internal/datapackage"
	"camtrap/internal/deps"
	"camtrap/internal/fileutil"
	"camtrap/internal/preflight"
)

type statusCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type statusSnapshot struct {
	ConfigPath   string        `json:"config_path"`
	ConfigExists bool          `json:"config_exists"`
	ProjectDir   string        `json:"project_dir"`
	Inputs       []statusCheck `json:"inputs"`
	Dependencies []statusCheck `json:"dependencies"`
	Package      []statusCheck `json:"package"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show input readiness, external tools and built package tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			snap := statusSnapshot{
				ConfigPath:   ctx.configPath,
				ConfigExists: ctx.configSeen,
				ProjectDir:   cfg.Paths.ProjectDir,
			}
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				snap.Inputs = append(snap.Inputs, statusCheck{Name: r.Name, Status: checkStatus(r.Passed, false), Detail: r.Detail})
			}
			for _, s := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				snap.Dependencies = append(snap.Dependencies, dependencyCheck(s))
			}
			layout := datapackage.NewLayout(cfg.Paths.PackageDir)
			for _, path := range []string{
				layout.Deployments(), layout.Media(), layout.MediaMetadata(), layout.Observations(),
				layout.LabelTemplate(), layout.Detections(), layout.MergedObservations(),
			} {
				check := statusCheck{Name: filepath.Base(path), Status: "ok", Detail: path}
				if !fileutil.Exists(path) {
					check.Status = "info"
					check.Detail = "not built"
				}
				snap.Package = append(snap.Package, check)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, snap)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			configDetail := snap.ConfigPath
			if !snap.ConfigExists {
				configDetail += " (defaults)"
			}
			lines := renderSection("Configuration", []statusCheck{
				{Name: "Config file", Detail: configDetail},
				{Name: "Project directory", Detail: snap.ProjectDir},
				{Name: "Classifier configured", Detail: yesNo(cfg.ClassifierBinary() != "")},
			}, colorize)
			lines = append(lines, renderSection("Inputs", snap.Inputs, colorize)...)
			lines = append(lines, renderSection("Dependencies", snap.Dependencies, colorize)...)
			lines = append(lines, renderSection("Package", snap.Package, colorize)...)
			fmt.Fprintln(out, strings.TrimRight(strings.Join(lines, "\n"), "\n"))
			return nil
		},
	}
}

func dependencyCheck(s deps.Status) statusCheck {
	check := statusCheck{Name: s.Name, Status: checkStatus(s.Available, s.Optional), Detail: s.Detail}
	if s.Available {
		check.Detail = s.Path
	}
	return check
}

func checkStatus(ok, optional bool) string {
	switch {
	case ok:
		return "ok"
	case optional:
		return "warn"
	default:
		return "error"
	}
}
