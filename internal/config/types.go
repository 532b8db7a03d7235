// SPDX-License-Identifier: MPL-2.0

package config

import (
	"uqtools/internal/bytesize"
	"uqtools/internal/colorwheel"
)

type (
	// Config is the effective suite configuration: defaults overlaid with
	// the config file, if one exists.
	Config struct {
		UQ UQConfig `mapstructure:"uq"`
		UI UIConfig `mapstructure:"ui"`
	}

	// UQConfig holds uq-specific settings.
	UQConfig struct {
		// MaxInput is the default input-size ceiling in the human-readable
		// grammar ("256m"). The --max-input flag overrides it per invocation.
		MaxInput string `mapstructure:"max_input"`
	}

	// UIConfig holds settings shared by the color-capable tools.
	UIConfig struct {
		// Color is the default color mode for tint: auto, always, or never.
		Color string `mapstructure:"color"`
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		UQ: UQConfig{MaxInput: bytesize.DefaultMaxInput},
		UI: UIConfig{Color: string(colorwheel.ModeAuto)},
	}
}
