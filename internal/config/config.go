// Package config handles md5kit configuration loading and management.
package config

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/Faultbox/md5kit/internal/engine/model"
	"github.com/Faultbox/md5kit/internal/engine/skeleton"
	"github.com/Faultbox/md5kit/internal/logger"
)

// Config holds all tool settings.
type Config struct {
	Data      DataConfig                   `yaml:"data" toml:"data"`
	Animation AnimationConfig              `yaml:"animation" toml:"animation"`
	Export    ExportConfig                 `yaml:"export" toml:"export"`
	Skins     map[string]map[string]string `yaml:"skins" toml:"skins"` // Skin name -> material remaps
	Logging   LoggingConfig                `yaml:"logging" toml:"logging"`
}

// DataConfig holds asset search locations.
type DataConfig struct {
	SearchPaths []string `yaml:"search_paths" toml:"search_paths"` // Directories and .pk4 archives, later entries win
}

// AnimationConfig holds pose evaluation settings.
type AnimationConfig struct {
	Mode string `yaml:"mode" toml:"mode"` // "bind" or "frames"
	Loop bool   `yaml:"loop" toml:"loop"`
}

// ExportConfig holds mesh export settings.
type ExportConfig struct {
	ReverseWinding bool   `yaml:"reverse_winding" toml:"reverse_winding"`
	MaterialLib    string `yaml:"material_lib" toml:"material_lib"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			SearchPaths: []string{"base"},
		},
		Animation: AnimationConfig{
			Mode: skeleton.ModeBindPose.String(),
			Loop: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be expressed by the file format alone.
func (c *Config) Validate() error {
	if _, err := skeleton.ParseMode(c.Animation.Mode); err != nil {
		return errors.Wrap(err, "animation.mode")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging.level")
	}
	return nil
}

// ModelOptions returns the model options described by the animation settings.
// The mode must already have passed Validate.
func (c *Config) ModelOptions() model.Options {
	mode, _ := skeleton.ParseMode(c.Animation.Mode)
	return model.Options{
		Mode: mode,
		Loop: c.Animation.Loop,
	}
}

// ExportOptions returns the export options described by the export settings.
func (c *Config) ExportOptions() model.ExportOptions {
	opts := model.ExportOptions{MaterialLib: c.Export.MaterialLib}
	if c.Export.ReverseWinding {
		opts.Winding = model.WindingReversed
	}
	return opts
}

// Skin returns the named skin, or nil if it is not defined.
func (c *Config) Skin(name string) model.Skin {
	remap, ok := c.Skins[name]
	if !ok {
		return nil
	}
	return model.Skin(remap)
}

// SkinNames returns the defined skin names in sorted order.
func (c *Config) SkinNames() []string {
	names := make([]string, 0, len(c.Skins))
	for name := range c.Skins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
