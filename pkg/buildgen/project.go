package buildgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// DefaultManifest is the manifest filename looked for in a project
// root.
const DefaultManifest = "wintertools.yml"

// Project is the build manifest for one firmware.
type Project struct {
	Name         string            `yaml:"name"`
	MCU          string            `yaml:"mcu"`
	Variant      string            `yaml:"variant"`
	Sources      []string          `yaml:"sources"`
	Includes     []string          `yaml:"includes"`
	Defines      map[string]string `yaml:"defines"`
	LinkerScript string            `yaml:"linker-script"`
	FlashSize    int               `yaml:"flash-size"`
	RAMSize      int               `yaml:"ram-size"`

	// dir is the directory the manifest was loaded from; globs are
	// resolved relative to it.
	dir string
}

// LoadProject reads and validates a manifest.
func LoadProject(path string) (*Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var p Project
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	p.dir = filepath.Dir(path)

	if p.Name == "" {
		return nil, fmt.Errorf("manifest %s: name is required", path)
	}
	if p.MCU == "" {
		return nil, fmt.Errorf("manifest %s: mcu is required", path)
	}
	if len(p.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s: sources is required", path)
	}
	return &p, nil
}

// Dir returns the project root, the directory holding the manifest.
func (p *Project) Dir() string { return p.dir }

// ExpandSources resolves the manifest's source globs into a sorted,
// deduplicated file list relative to the project root.
func (p *Project) ExpandSources() ([]string, error) {
	seen := map[string]bool{}
	var srcs []string

	for _, pattern := range p.Sources {
		if !strings.ContainsAny(pattern, "*?[") {
			if !seen[pattern] {
				seen[pattern] = true
				srcs = append(srcs, pattern)
			}
			continue
		}

		matches, err := filepath.Glob(filepath.Join(p.dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad source pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(p.dir, m)
			if err != nil {
				return nil, err
			}
			if !seen[rel] {
				seen[rel] = true
				srcs = append(srcs, rel)
			}
		}
	}

	sort.Strings(srcs)
	return srcs, nil
}

// IncludeDirs returns the manifest's include directories plus the
// parent directory of every source file, deduplicated and sorted.
func (p *Project) IncludeDirs(srcs []string) []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, inc := range p.Includes {
		add(inc)
	}
	for _, src := range srcs {
		add(filepath.Dir(src))
	}

	sort.Strings(dirs)
	return dirs
}

// AllDefines merges the MCU profile's defines with the manifest's. The
// manifest wins on conflicts, and the chip variant contributes the
// CMSIS-style __VARIANT__ define.
func (p *Project) AllDefines(mcu MCU) map[string]string {
	defines := map[string]string{}
	for k, v := range mcu.Defines {
		defines[k] = v
	}
	if p.Variant != "" {
		// Used by the CMSIS device support header. See sam.h.
		defines[fmt.Sprintf("__%s__", strings.ToUpper(p.Variant))] = "1"
	}
	for k, v := range p.Defines {
		defines[k] = v
	}
	return defines
}
