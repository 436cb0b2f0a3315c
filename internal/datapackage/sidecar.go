package datapackage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"camtrap/internal/exiftool"
	"camtrap/internal/fileutil"
)

// SidecarEntry is one element of media_metadata.json: the full tag map
// reported for an absolute file path.
type SidecarEntry struct {
	File     string            `json:"file"`
	Metadata exiftool.Metadata `json:"metadata"`
}

// WriteSidecar writes the metadata sidecar as an indented JSON array.
func WriteSidecar(path string, entries []SidecarEntry) error {
	if entries == nil {
		entries = []SidecarEntry{}
	}
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode sidecar: %w", err)
		}
		return nil
	})
}

// ReadSidecar loads the metadata sidecar keyed by cleaned absolute path. A
// missing sidecar yields an empty index; the sidecar is an optional fallback.
func ReadSidecar(path string) (map[string]exiftool.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]exiftool.Metadata{}, nil
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	var entries []SidecarEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode sidecar %s: %w", path, err)
	}
	index := make(map[string]exiftool.Metadata, len(entries))
	for _, entry := range entries {
		if entry.File == "" {
			continue
		}
		abs, err := filepath.Abs(entry.File)
		if err != nil {
			continue
		}
		index[abs] = entry.Metadata
	}
	return index, nil
}
