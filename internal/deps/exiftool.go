package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"camtrap/internal/services"
)

// ExiftoolEnv names the environment variable that may point at the exiftool
// binary or the directory holding it.
const ExiftoolEnv = "EXIFTOOL_PATH"

var exiftoolNames = []string{"exiftool.exe", "exiftool"}

// ResolveExiftool locates the exiftool binary. Lookup order:
//  1. explicit (flag or config); it must exist when given
//  2. $EXIFTOOL_PATH, either the binary or a directory containing it
//  3. exiftool on PATH
//  4. <projectDir>/tools/exiftool/exiftool[.exe]
//
// Failure is reported as services.ErrConfiguration.
func ResolveExiftool(explicit, projectDir string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if candidate, ok := binaryAt(explicit); ok {
			return candidate, nil
		}
		if strings.ContainsAny(explicit, `/\`) {
			return "", services.Wrap(services.ErrConfiguration, "extract", "locate exiftool",
				fmt.Sprintf("exiftool not found at %q", explicit), nil)
		}
		if resolved, err := exec.LookPath(explicit); err == nil {
			return resolved, nil
		}
		return "", services.Wrap(services.ErrConfiguration, "extract", "locate exiftool",
			fmt.Sprintf("exiftool binary %q not found on PATH", explicit), nil)
	}

	if env := strings.TrimSpace(os.Getenv(ExiftoolEnv)); env != "" {
		if candidate, ok := binaryAt(env); ok {
			return candidate, nil
		}
	}

	for _, name := range []string{"exiftool", "exiftool.exe"} {
		if resolved, err := exec.LookPath(name); err == nil {
			return resolved, nil
		}
	}

	if projectDir != "" {
		toolsDir := filepath.Join(projectDir, "tools", "exiftool")
		if candidate, ok := binaryAt(toolsDir); ok {
			return candidate, nil
		}
	}

	return "", services.Wrap(services.ErrConfiguration, "extract", "locate exiftool",
		"could not find exiftool; add it to PATH, set "+ExiftoolEnv+
			", place it at tools/exiftool/exiftool, or set exiftool.binary", errors.New("not found"))
}

// CheckExiftool reports the exiftool resolution as a Status for status output.
func CheckExiftool(explicit, projectDir string) Status {
	status := Status{
		Name:        "exiftool",
		Command:     strings.TrimSpace(explicit),
		Description: "Reads EXIF capture time, serial number and camera tags",
	}
	if status.Command == "" {
		status.Command = "exiftool"
	}
	resolved, err := ResolveExiftool(explicit, projectDir)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}

// binaryAt returns path when it is an existing file, or the first exiftool
// binary inside it when it is a directory.
func binaryAt(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if !info.IsDir() {
		return path, true
	}
	for _, name := range exiftoolNames {
		candidate := filepath.Join(path, name)
		if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
