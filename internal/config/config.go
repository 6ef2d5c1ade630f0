// Package config loads the TOML configuration and applies defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config is the full application configuration.
type Config struct {
	// Root is the directory tree holding the course videos.
	Root string `toml:"root"`
	// Listen is the HTTP bind address.
	Listen string `toml:"listen"`
	// DataDirName is the reserved subfolder under Root that holds the
	// database; the scanner never descends into it.
	DataDirName string `toml:"data_dir_name"`
	// CompletionThreshold is the watched fraction at which a video counts
	// as completed.
	CompletionThreshold float64 `toml:"completion_threshold"`
	// ScanIntervalMinutes is the periodic rescan cadence; 0 disables it.
	ScanIntervalMinutes int `toml:"scan_interval_minutes"`
	// Watch enables rescans triggered by filesystem events.
	Watch bool `toml:"watch"`
	// Password, when set, gates the API behind a login. Stored either as
	// a bcrypt hash or as plain text (hashed in memory at startup).
	Password string `toml:"password"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Root:                ".",
		Listen:              ":8080",
		DataDirName:         ".coursewatcher",
		CompletionThreshold: 0.9,
		ScanIntervalMinutes: 10,
		Watch:               true,
		LogLevel:            "info",
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the application cannot run with.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("config: root must not be empty")
	}
	if c.Listen == "" {
		return fmt.Errorf("config: listen must not be empty")
	}
	if c.DataDirName == "" || c.DataDirName == "." || c.DataDirName == ".." {
		return fmt.Errorf("config: data_dir_name %q is not usable", c.DataDirName)
	}
	if c.CompletionThreshold <= 0 || c.CompletionThreshold > 1 {
		return fmt.Errorf("config: completion_threshold %v is outside (0, 1]", c.CompletionThreshold)
	}
	if c.ScanIntervalMinutes < 0 {
		return fmt.Errorf("config: scan_interval_minutes must not be negative")
	}
	return nil
}

// DataDir is the absolute location of the reserved data subfolder.
func (c Config) DataDir() string {
	return filepath.Join(c.Root, c.DataDirName)
}

// WriteSample writes the annotated sample configuration to path, refusing
// to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
