// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"uqtools/internal/bytesize"
	"uqtools/internal/colorwheel"
	"uqtools/internal/issue"
	"uqtools/pkg/fspath"
	"uqtools/pkg/types"
)

const (
	// AppName is the suite name, used for the config directory.
	AppName = "uqtools"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"

	// maxConfigFileSize caps the config file fed to the CUE parser.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// configFilePathOverride is set via the --config flag; it bypasses the
// platform config directory entirely.
var configFilePathOverride string

// SetConfigFilePathOverride sets an explicit config file path for this
// process, taking precedence over the platform config directory.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// ConfigDir returns the uqtools configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (types.FilesystemPath, error) {
	var configDir types.FilesystemPath

	switch runtime.GOOS {
	case "windows":
		configDir = types.FilesystemPath(os.Getenv("APPDATA"))
		if configDir == "" {
			configDir = fspath.JoinStr(types.FilesystemPath(os.Getenv("USERPROFILE")), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = fspath.JoinStr(types.FilesystemPath(home), "Library", "Application Support")
	default: // Linux and others
		configDir = types.FilesystemPath(os.Getenv("XDG_CONFIG_HOME"))
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = fspath.JoinStr(types.FilesystemPath(home), ".config")
		}
	}

	return fspath.JoinStr(configDir, AppName), nil
}

// Load resolves the config file path (the --config override, then the
// platform config directory) and loads it. A missing config file is not an
// error; defaults apply.
func Load() (*Config, error) {
	path := configFilePathOverride
	if path == "" {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		candidate := fspath.JoinStr(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(candidate.String()) {
			path = candidate.String()
		}
	} else if !fileExists(path) {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Check that the file exists and is readable").
			Wrap(fmt.Errorf("config file not found: %s", path)).
			BuildError()
	}

	return loadFrom(path)
}

// loadFrom builds the effective configuration from defaults plus the config
// file at path. An empty path means defaults only.
func loadFrom(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("uq.max_input", defaults.UQ.MaxInput)
	v.SetDefault("ui.color", defaults.UI.Color)

	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate constraints the CUE schema already encodes, so a config
	// assembled purely from defaults and env overrides gets the same checks.
	if _, err := bytesize.Parse(cfg.UQ.MaxInput); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("uq.max_input must be a non-negative integer optionally followed by k, m, or g").
			Wrap(err).
			BuildError()
	}
	if _, err := colorwheel.ParseMode(cfg.UI.Color); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("ui.color must be auto, always, or never").
			Wrap(err).
			BuildError()
	}

	return &cfg, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper. Uses Concrete(false) because
// all config fields are optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (limit %d)", len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("invalid CUE: %w", userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
