package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path, as TOML when it ends in
// .toml and YAML otherwise.
func (c *Config) SaveTo(path string) error {
	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating config dir")
	}

	marshal := yaml.Marshal
	if isTOML(path) {
		marshal = toml.Marshal
	}

	data, err := marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}
