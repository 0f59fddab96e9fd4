package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config describes one split run.
type Config struct {
	// Monorepo is the URL of the source repository whose history is split.
	Monorepo string `yaml:"monorepo"`

	// Subfolders maps a top-level subfolder name to the URL of its target
	// repository. An empty URL splits the subfolder without pushing it.
	Subfolders map[string]string `yaml:"subfolders"`

	// CacheDir holds the persistent object cache between runs.
	CacheDir string `yaml:"cache_dir"`

	// Branches optionally restricts the split to the listed branches. When
	// empty, every branch of the monorepo remote is split.
	Branches []string `yaml:"branches,omitempty"`
}

// ParseConfigYAML parses a [Config] and validates it.
func ParseConfigYAML(file []byte) (*Config, error) {
	result := &Config{}

	if err := yaml.Unmarshal(file, result); err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks the config for the mistakes that would otherwise surface
// halfway through a run.
func (c *Config) Validate() error {
	if c.Monorepo == "" {
		return ErrEmptyMonorepoURL
	}
	if len(c.Subfolders) == 0 {
		return ErrEmptySubfolders
	}
	if c.CacheDir == "" {
		return ErrEmptyCacheDir
	}

	for name := range c.Subfolders {
		if name == "" || strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("%w: %q", ErrInvalidSubfolder, name)
		}
	}

	return nil
}

// SubfolderNames returns the configured subfolder names in sorted order, so
// every run processes them identically.
func (c *Config) SubfolderNames() []string {
	names := make([]string, 0, len(c.Subfolders))
	for name := range c.Subfolders {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
