package config

import (
	"fmt"
	"path/filepath"

	"github.com/nao1215/auditsheet/internal/checklist"
)

// File represents the structure of the .auditsheet configuration file.
//
// Every field is optional. Settings given here replace the defaults and
// are in turn overridden by explicitly set CLI flags.
type File struct {
	// OutputDir is the directory exported files are written to.
	OutputDir string `yaml:"output_dir,omitempty"`

	// Formats lists the formats exported alongside CSV.
	Formats []string `yaml:"formats,omitempty"`

	// Columns selects and orders the CSV columns.
	Columns []string `yaml:"columns,omitempty"`

	// BOM prepends a UTF-8 byte order mark to CSV output.
	BOM bool `yaml:"bom,omitempty"`

	// Fonts are TrueType font files tried first when rendering PDFs.
	Fonts []string `yaml:"fonts,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"db_dir,omitempty"`

	// History disables the history database when set to false.
	// A pointer distinguishes "not set" from false.
	History *bool `yaml:"history,omitempty"`

	// BatchSize is the rebuild concurrency.
	BatchSize int `yaml:"batch_size,omitempty"`

	// Checklists holds custom checklist definitions, available next to the
	// built-in ones.
	Checklists []checklist.Config `yaml:"checklists,omitempty"`

	// ChecklistFiles are YAML files with a top-level checklists list, for
	// checklists shared between projects. Relative paths are resolved
	// against the directory of the configuration file.
	ChecklistFiles []string `yaml:"checklist_files,omitempty"`
}

// resolvePaths makes relative checklist file paths relative to dir.
func (f *File) resolvePaths(dir string) {
	for i, p := range f.ChecklistFiles {
		if p != "" && !filepath.IsAbs(p) {
			f.ChecklistFiles[i] = filepath.Join(dir, p)
		}
	}
}

// Registry returns the built-in checklists, then the ones defined inline,
// then the ones read from ChecklistFiles. A nil File yields only the
// built-ins. Names must be unique across all three.
func (f *File) Registry() (*checklist.Registry, error) {
	if f == nil {
		return checklist.DefaultRegistry()
	}

	defs, err := checklist.BuildAll(f.Checklists)
	if err != nil {
		return nil, err
	}
	for _, path := range f.ChecklistFiles {
		loaded, err := checklist.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("checklist file %s: %w", path, err)
		}
		defs = append(defs, loaded...)
	}
	return checklist.DefaultRegistry(defs...)
}
