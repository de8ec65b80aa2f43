package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project-level config file name that `init`
// writes and that Load looks for.
const DefaultConfigFile = ".auditsheet"

// ErrConfigNotFound reports a config file that does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads and decodes one YAML config file. A missing file
// yields ErrConfigNotFound so that Load can tell "no config" apart from
// "broken config".
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // the path comes from the user or the search list
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}

	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return file, nil
}

// searchPaths lists where a config file is looked for when none is given:
// the working directory, then the home directory, then XDG config.
func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return append(paths, filepath.Join(XDGConfigDir(), "config.yaml"))
}

// FindConfigFile returns the config file to load, or "" if there is none.
// An explicit configPath is returned only if it exists; otherwise the
// search paths are tried in order.
func FindConfigFile(configPath string) string {
	candidates := searchPaths()
	if configPath != "" {
		candidates = []string{configPath}
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load builds a Config from the defaults and the config file, if any.
// A path given by the user must exist. When nothing is found by searching,
// the defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	switch {
	case path == "" && configPath != "":
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	case path == "":
		return cfg, nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	file.resolvePaths(filepath.Dir(path))
	cfg.ConfigFilePath = path
	cfg.ApplyFile(file)
	return cfg, nil
}
