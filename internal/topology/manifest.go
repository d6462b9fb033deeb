package topology

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFiles is the demo file set loaded when no manifest or file list is configured.
var DefaultFiles = []string{
	"report.pdf",
	"photo.jpg",
	"notes.txt",
	"video.mp4",
	"archive.zip",
	"data.csv",
}

// Manifest is the on-disk description of the demo file set.
type Manifest struct {
	Files []string `yaml:"files"`
}

// LoadManifest reads a YAML manifest of demo file names.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest and validates the file names.
func ParseManifest(data []byte) ([]string, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if err := ValidateFiles(m.Files); err != nil {
		return nil, err
	}
	return m.Files, nil
}

// ValidateFiles checks that the list is non-empty and names are unique ignoring case.
func ValidateFiles(files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("at least one file is required")
	}
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("file name must not be empty")
		}
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate file name %q", f)
		}
		seen[key] = struct{}{}
	}
	return nil
}
