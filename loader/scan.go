// Package loader discovers plugin modules that declare tool collections and
// folds them into a tool.Registry. A module is either a manifest file
// (JSON or YAML) directly under a base directory, or a Go package that
// registered itself in-process via RegisterModule.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// privatePrefix marks module files excluded from discovery.
const privatePrefix = "_"

var manifestExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// moduleFile is one qualifying manifest file found by a scan.
type moduleFile struct {
	Name string // module identifier: file name without extension
	Path string
}

// scanDir lists the qualifying modules directly under dir: recognized
// manifest extensions only, private-prefixed names excluded, intersected
// with the filter when one is supplied. A missing directory yields an empty
// listing, never an error. Subdirectories are not recursed into.
func scanDir(dir string, filter []string) ([]moduleFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	wanted := filterSet(filter)

	var modules []moduleFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		ext := strings.ToLower(filepath.Ext(fileName))
		if !manifestExtensions[ext] {
			continue
		}
		name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		if strings.HasPrefix(name, privatePrefix) {
			continue
		}
		if wanted != nil && !wanted[name] {
			continue
		}
		modules = append(modules, moduleFile{Name: name, Path: filepath.Join(dir, fileName)})
	}

	// os.ReadDir sorts by file name; resort by module name so .json/.yaml
	// siblings stay deterministic.
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Name != modules[j].Name {
			return modules[i].Name < modules[j].Name
		}
		return modules[i].Path < modules[j].Path
	})
	return modules, nil
}

func readFile(path string) ([]byte, error) {
	// #nosec G304 -- path comes from the caller's configured plugin directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return data, nil
}

func filterSet(filter []string) map[string]bool {
	if filter == nil {
		return nil
	}
	set := make(map[string]bool, len(filter))
	for _, name := range filter {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = true
		}
	}
	return set
}
