// Package config resolves clipstack settings from the config file,
// CLIPSTACK_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/rcliao/clipstack/internal/model"
)

const (
	AppName = "clipstack"

	KeyDBDir          = "db_dir_path"
	KeyMaxDedupeDepth = "max_dedupe_depth"
	KeyMaxItems       = "max_items"
	KeyPreviewWidth   = "preview_width"
	KeyGenerateThumb  = "generate_thumb"
	KeyDedupeMode     = "dedupe_mode"
)

// Config is the effective configuration for one invocation.
type Config struct {
	DBDir          string           `json:"db_dir_path"`
	MaxDedupeDepth int              `json:"max_dedupe_depth"`
	MaxItems       int              `json:"max_items"`
	PreviewWidth   int              `json:"preview_width"`
	GenerateThumb  model.ThumbMode  `json:"generate_thumb"`
	DedupeMode     model.DedupeMode `json:"dedupe_mode"`
}

// DefaultPath returns $XDG_CONFIG_HOME/clipstack/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultDBDir returns $XDG_DATA_HOME/clipstack.
func DefaultDBDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// SetDefaults registers default values and the environment prefix on v.
func SetDefaults(v *viper.Viper) {
	setDefaultValues(v)
	v.SetEnvPrefix(AppName)
	v.AutomaticEnv()
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault(KeyDBDir, DefaultDBDir())
	v.SetDefault(KeyMaxDedupeDepth, 100)
	v.SetDefault(KeyMaxItems, 750)
	v.SetDefault(KeyPreviewWidth, 100)
	v.SetDefault(KeyGenerateThumb, string(model.ThumbNone))
	v.SetDefault(KeyDedupeMode, string(model.DedupeTouch))
}

// Load reads the config file at path into v, writing one with the defaults
// first if it does not exist yet, and returns the validated result.
func Load(v *viper.Viper, path string) (Config, error) {
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return Config{}, fmt.Errorf("create config dir: %w", err)
		}
		// flags and environment of this run must not leak into the file
		defaults := viper.New()
		setDefaultValues(defaults)
		if err := defaults.SafeWriteConfigAs(path); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
		slog.Info("default config written", "path", path)
	}

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromViper(v)
}

// FromViper converts the merged settings in v into a Config.
func FromViper(v *viper.Viper) (Config, error) {
	var errs []error
	toInt := func(key string) int {
		n, err := cast.ToIntE(v.Get(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}

	c := Config{
		DBDir:          ExpandTilde(cast.ToString(v.Get(KeyDBDir))),
		MaxDedupeDepth: toInt(KeyMaxDedupeDepth),
		MaxItems:       toInt(KeyMaxItems),
		PreviewWidth:   toInt(KeyPreviewWidth),
		GenerateThumb:  model.ThumbMode(strings.ToLower(cast.ToString(v.Get(KeyGenerateThumb)))),
		DedupeMode:     model.DedupeMode(strings.ToLower(cast.ToString(v.Get(KeyDedupeMode)))),
	}
	if err := errors.Join(errs...); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// Validate rejects settings the history cannot honor.
func (c Config) Validate() error {
	var errs []error
	if c.DBDir == "" {
		errs = append(errs, errors.New("db_dir_path can not be empty"))
	}
	if c.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("max_items must be at least 1, got %d", c.MaxItems))
	}
	if c.MaxDedupeDepth < 0 {
		errs = append(errs, fmt.Errorf("max_dedupe_depth can not be negative, got %d", c.MaxDedupeDepth))
	}
	if c.PreviewWidth < 1 {
		errs = append(errs, fmt.Errorf("preview_width must be at least 1, got %d", c.PreviewWidth))
	}
	if !model.ValidThumbModes[c.GenerateThumb] {
		errs = append(errs, fmt.Errorf("invalid generate_thumb %q (valid: none, wofi, rofi)", c.GenerateThumb))
	}
	if !model.ValidDedupeModes[c.DedupeMode] {
		errs = append(errs, fmt.Errorf("invalid dedupe_mode %q (valid: touch, reinsert)", c.DedupeMode))
	}
	return errors.Join(errs...)
}

// ExpandTilde replaces a leading ~ with the home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = xdg.Home
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
