// Package loader finds architecture description files on disk and feeds
// them through format normalization.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"archlens/internal/adapter"
	"archlens/internal/model"
)

// Input is one file consumed by a run.
type Input struct {
	Path          string
	Raw           []byte
	Architectures int
}

// Result aggregates everything loaded for one run.
type Result struct {
	Architectures []model.Architecture
	Inputs        []Input
	Warnings      []model.Warning
}

// FileContents keys each input's raw bytes by path, for fingerprinting.
func (r *Result) FileContents() map[string][]byte {
	out := make(map[string][]byte, len(r.Inputs))
	for _, in := range r.Inputs {
		out[in.Path] = in.Raw
	}
	return out
}

// Loader scans paths for architecture descriptions.
type Loader struct {
	ignored []string
}

// NewLoader creates a new loader instance.
func NewLoader() *Loader {
	return &Loader{
		ignored: []string{".git", "node_modules", "testdata"},
	}
}

// Load reads every discovered file in sorted path order. A path may name a
// file or a directory; directories are walked recursively and contribute
// their .json files, while explicit file paths are taken as given. A file
// that fails to normalize becomes a critical signal and the run continues.
func (l *Loader) Load(paths []string) (*Result, error) {
	files, err := l.discover(paths)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		input := Input{Path: path, Raw: raw}
		archs, warns, err := adapter.NormalizeBytes(raw, path)
		if err != nil {
			res.Warnings = append(res.Warnings, model.NewWarning(
				"parse_failed", path, model.SeverityCritical, err.Error(), 0))
			res.Inputs = append(res.Inputs, input)
			continue
		}

		input.Architectures = len(archs)
		res.Architectures = append(res.Architectures, archs...)
		res.Warnings = append(res.Warnings, warns...)
		res.Inputs = append(res.Inputs, input)
	}
	return res, nil
}

func (l *Loader) discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				for _, ign := range l.ignored {
					if d.Name() == ign {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".json") {
				add(p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	sort.Strings(files)
	return files, nil
}
