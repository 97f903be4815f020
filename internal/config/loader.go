package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader holds the viper instance behind Load/Watch so a caller can
// re-read the same file on a later reload without re-resolving env vars
// and defaults from scratch.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader prepares a Loader for path without reading it yet.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("cyncbridge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return &Loader{v: v, path: path}
}

// Load reads path and returns the validated configuration.
func Load(path string) (*GlobalConfig, error) {
	return NewLoader(path).Read()
}

// Read (re-)reads the configured file and returns the validated result.
func (l *Loader) Read() (*GlobalConfig, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var root configRoot
	if err := l.v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.CyncBridge

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Watch arms fsnotify (via viper's WatchConfig) and invokes onChange with
// the freshly re-read, validated configuration each time the file is
// rewritten on disk. Errors re-reading or re-validating are logged by the
// caller's onChange rather than here, since Loader has no logger of its
// own; a failed re-read leaves the previous in-process config untouched.
func (l *Loader) Watch(onChange func(*GlobalConfig, error)) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		onChange(l.Read())
	})
	l.v.WatchConfig()
}

// setDefaults sets default values for configuration, all under the
// `cyncbridge.` prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cyncbridge.cloud.host", "cm.gelighting.com")
	v.SetDefault("cyncbridge.cloud.port", 23778)

	v.SetDefault("cyncbridge.timers.reconnect_floor", "10s")
	v.SetDefault("cyncbridge.timers.ping_interval", "180s")
	v.SetDefault("cyncbridge.timers.probe_interval", "300s")

	v.SetDefault("cyncbridge.control.socket", "/var/run/cyncbridge.sock")
	v.SetDefault("cyncbridge.control.pid_file", "/var/run/cyncbridge.pid")

	v.SetDefault("cyncbridge.log.level", "info")
	v.SetDefault("cyncbridge.log.format", "json")
	v.SetDefault("cyncbridge.log.outputs.file.enabled", false)
	v.SetDefault("cyncbridge.log.outputs.file.path", "/var/log/cyncbridge/cyncbridge.log")
	v.SetDefault("cyncbridge.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("cyncbridge.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("cyncbridge.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("cyncbridge.log.outputs.file.rotation.compress", true)

	v.SetDefault("cyncbridge.homes.inventory_path", "/etc/cyncbridge/homes.yml")
}
