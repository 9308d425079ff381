// Package config handles library paths and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/papershelf/papershelf/internal/metadata"
	"github.com/papershelf/papershelf/internal/registry"
)

// GlobalConfig represents configuration stored in
// ~/.config/papershelf/config.yml.
type GlobalConfig struct {
	DataDir            string  `yaml:"data_dir,omitempty"`
	RegistryMailTo     string  `yaml:"registry_mailto,omitempty"`
	HTTPTimeoutSeconds float64 `yaml:"http_timeout_seconds,omitempty"`
	HTTPRetries        int     `yaml:"http_retries,omitempty"`

	// LooseAbstractOverride lets any non-empty external abstract replace a
	// locally extracted one. By default the external record must be
	// complete (title, authors, year, abstract) first.
	LooseAbstractOverride bool `yaml:"loose_abstract_override,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "papershelf"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DataDirName is the default data directory under XDG_DATA_HOME.
	DataDirName = "papershelf"

	UploadsDir = "uploads"
	ThumbsDir  = "thumbs"
	DBFile     = "papers.db"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/papershelf/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataDir != "" {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// Save writes the global configuration file, creating its directory.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	globalConfigCache = nil
	return nil
}

// ResolveDataDir returns the library data directory. Precedence:
// PAPERSHELF_DATA env var, then the configured data_dir, then
// XDG_DATA_HOME/papershelf.
func (c *GlobalConfig) ResolveDataDir() string {
	if dir := os.Getenv("PAPERSHELF_DATA"); dir != "" {
		return ExpandTilde(dir)
	}
	if c.DataDir != "" {
		return c.DataDir
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DataDirName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, DataDirName)
}

// UploadsPath returns the absolute uploads directory.
func (c *GlobalConfig) UploadsPath() string {
	return filepath.Join(c.ResolveDataDir(), UploadsDir)
}

// ThumbsPath returns the absolute thumbnails directory.
func (c *GlobalConfig) ThumbsPath() string {
	return filepath.Join(c.ResolveDataDir(), ThumbsDir)
}

// DBPath returns the absolute catalog database path.
func (c *GlobalConfig) DBPath() string {
	return filepath.Join(c.ResolveDataDir(), DBFile)
}

// EnsureDataDirs creates the data, uploads, and thumbs directories.
func (c *GlobalConfig) EnsureDataDirs() error {
	for _, dir := range []string{c.ResolveDataDir(), c.UploadsPath(), c.ThumbsPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// RegistryConfig builds the fetcher configuration from global settings.
func (c *GlobalConfig) RegistryConfig() registry.Config {
	cfg := registry.DefaultConfig()
	cfg.MailTo = c.RegistryMailTo
	if c.HTTPTimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(c.HTTPTimeoutSeconds * float64(time.Second))
	}
	if c.HTTPRetries > 0 {
		cfg.Retries = c.HTTPRetries
	}
	return cfg
}

// MergePolicy builds the merge policy from global settings.
func (c *GlobalConfig) MergePolicy() metadata.Policy {
	return metadata.Policy{RequireCompleteOverride: !c.LooseAbstractOverride}
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
