package config

// StoreConfig holds the record store configuration
type StoreConfig struct {
	Path     string `mapstructure:"path"      yaml:"path"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// SettingsConfig points at the JSON file holding per-category folder paths
type SettingsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ArchiveConfig holds backup/restore configuration
type ArchiveConfig struct {
	ScratchDir string `mapstructure:"scratch_dir" yaml:"scratch_dir"`
}
