package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/recognize"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".thronescan"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "thronescan.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.Aliases == nil {
		cf.Aliases = make(map[string][]string)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .thronescan in the current directory
// 3. Look for thronescan.yaml in the XDG config directory
// 4. Look for .thronescan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// searchPaths lists the implicit configuration file locations in search
// order. Locations whose base directory is unknown are left out.
func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

// Apply copies the values set in f into c. It runs before command line
// flags are read, so flags override the file.
func (f *File) Apply(c *Config) error {
	if f == nil {
		return nil
	}
	c.Rules = f

	if f.EnemyLabel != "" {
		c.EnemyLabel = f.EnemyLabel
	}
	if f.Language != "" {
		c.Language = f.Language
	}
	if f.Tessdata != "" {
		c.TessdataDir = f.Tessdata
	}
	if f.Registry != "" {
		c.RegistryFile = f.Registry
	}
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.Color != "" {
		color, ok := model.ParseColor(f.Color)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidColor, f.Color)
		}
		c.FilterColor = color
	}
	if f.MergePolicy != "" {
		policy, ok := recognize.ParseMergePolicy(f.MergePolicy)
		if !ok {
			return fmt.Errorf("%w: %q", ErrInvalidMergePolicy, f.MergePolicy)
		}
		c.MergePolicy = policy
	}
	return nil
}
