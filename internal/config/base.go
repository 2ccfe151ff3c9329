package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type BaseConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	Store    StoreConfig    `mapstructure:"store"    yaml:"store"`
	Settings SettingsConfig `mapstructure:"settings" yaml:"settings"`
	Archive  ArchiveConfig  `mapstructure:"archive"  yaml:"archive"`
	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
}

func Load() (*BaseConfig, error) {
	cfg := &BaseConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// Resolve returns p as an absolute path, relative paths being anchored at DataDir.
func (c *BaseConfig) Resolve(p string) string {
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.DataDir, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func (c *BaseConfig) StorePath() string {
	return c.Resolve(c.Store.Path)
}

func (c *BaseConfig) SettingsFile() string {
	return c.Resolve(c.Settings.File)
}

func (c *BaseConfig) ScratchDir() string {
	return c.Resolve(c.Archive.ScratchDir)
}
