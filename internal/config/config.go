// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
)

// GlobalConfig is the top-level configuration for the bridge daemon.
// Maps to the `cyncbridge:` root key in YAML.
type GlobalConfig struct {
	Cloud   CloudConfig   `mapstructure:"cloud"`
	Timers  TimersConfig  `mapstructure:"timers"`
	Control ControlConfig `mapstructure:"control"`
	Log     LogConfig     `mapstructure:"log"`
	Homes   HomesConfig   `mapstructure:"homes"`
}

// ─── Cloud credentials ───

// CloudConfig holds the fields the core embeds directly into the AUTH frame,
// plus the fields the REST collaborator needs that the core itself never uses.
type CloudConfig struct {
	Host         string `mapstructure:"host"`         // default cm.gelighting.com
	Port         int    `mapstructure:"port"`         // default 23778
	UserID       uint32 `mapstructure:"user_id"`
	Authorize    string `mapstructure:"authorize"`     // ASCII token, <= 255 bytes
	RefreshToken string `mapstructure:"refresh_token"` // forwarded to REST collaborator only; unused by core
}

// ─── Timers ───

// TimersConfig overrides the protocol's fixed intervals. All fields are
// Go duration strings; zero value means "use the built-in default".
type TimersConfig struct {
	ReconnectFloor string `mapstructure:"reconnect_floor"` // default 10s
	PingInterval   string `mapstructure:"ping_interval"`   // default 180s
	ProbeInterval  string `mapstructure:"probe_interval"`  // default 300s
}

// ─── Control socket (daemon <-> bridgectl) ───

type ControlConfig struct {
	Socket  string `mapstructure:"socket"`   // default /var/run/cyncbridge.sock
	PIDFile string `mapstructure:"pid_file"` // default /var/run/cyncbridge.pid
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level"`  // debug / info / warn / error
	Format  string           `mapstructure:"format"` // json / text
	Outputs LogOutputsConfig `mapstructure:"outputs"`
}

// LogOutputsConfig contains structured log output destinations.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Path     string         `mapstructure:"path"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
}

// ─── Homes (local HostAdapter fixture) ───

// HomesConfig points at the YAML inventory fixture consumed by
// internal/hostadapter/fileadapter when no live HostAdapter is wired in.
type HomesConfig struct {
	InventoryPath string `mapstructure:"inventory_path"`
}

// configRoot is the top-level wrapper matching the YAML structure `cyncbridge: ...`.
type configRoot struct {
	CyncBridge GlobalConfig `mapstructure:"cyncbridge"`
}

// ValidateAndApplyDefaults validates configuration and fills in defaults that
// viper's SetDefault cannot express (cross-field checks).
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}
	if cfg.Cloud.Host == "" {
		cfg.Cloud.Host = "cm.gelighting.com"
	}
	if cfg.Cloud.Port == 0 {
		cfg.Cloud.Port = 23778
	}
	if len(cfg.Cloud.Authorize) > 255 {
		return fmt.Errorf("cloud.authorize must be <= 255 bytes, got %d", len(cfg.Cloud.Authorize))
	}
	return nil
}
