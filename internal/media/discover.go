package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"camtrap/internal/services"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// IsImage reports whether path has a supported image extension, ignoring case.
func IsImage(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Discover returns the sorted, de-duplicated absolute paths of images in root.
// Without recursive only the top level is scanned. A missing root is reported
// as services.ErrInputMissing.
func Discover(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrInputMissing, "extract", "discover media", abs, err)
		}
		return nil, fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrInputMissing, "extract", "discover media", abs+" is not a directory", nil)
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	if !recursive {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("read data dir: %w", err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsImage(entry.Name()) {
				add(filepath.Join(abs, entry.Name()))
			}
		}
	} else {
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type().IsRegular() && IsImage(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk data dir: %w", err)
		}
	}

	slices.Sort(files)
	return files, nil
}
