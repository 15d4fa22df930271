// Package config loads Apex's optional user configuration file,
// ~/.apexrc.yaml: additional native-library search directories and a REPL
// color preference. There is no teacher analogue for this (the Monkey
// interpreter this runtime is descended from has no config file); the
// shape follows the pack's established way of doing structured
// configuration with gopkg.in/yaml.v3 rather than ad hoc flag parsing.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of ~/.apexrc.yaml.
type Config struct {
	// LibPath lists additional directories to search for native-library
	// plugins, appended after APEX_PATH's own entries.
	LibPath []string `yaml:"lib_path"`

	// Color selects the REPL's syntax-highlighting theme ("dark", "light",
	// or "none"). Empty means let the REPL auto-detect.
	Color string `yaml:"color"`
}

// Load reads ~/.apexrc.yaml, returning a zero-value Config (not an error)
// if the file doesn't exist.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFile(filepath.Join(home, ".apexrc.yaml"))
}

// LoadFile reads and parses the YAML config at path, returning a
// zero-value Config (not an error) if the file doesn't exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NativePath builds the full native-library search path: APEX_PATH's
// entries followed by the config file's lib_path additions, joined with
// the OS path-list separator for nativelib.Registry.LoadPath.
func (c *Config) NativePath(apexPathEnv string) string {
	path := apexPathEnv
	for _, dir := range c.LibPath {
		if path != "" {
			path += string(os.PathListSeparator)
		}
		path += dir
	}
	return path
}
