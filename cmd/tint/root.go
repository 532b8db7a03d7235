// SPDX-License-Identifier: MPL-2.0

// tint prints its arguments with rotating colors, one palette color per
// argument. Coloring is terminal-aware: output going anywhere but an
// interactive terminal stays plain unless --color=always is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"uqtools/internal/colorwheel"
	"uqtools/internal/config"
	"uqtools/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	colorFlag   string
	noNewline   bool
	paletteFlag string
	verboseFlag bool
	cfgFile     string

	rootCmd = &cobra.Command{
		Use:   "tint [ARG...]",
		Short: "Print arguments with rotating colors",
		Long: `tint echoes its arguments separated by spaces, cycling through a color
palette so each argument gets the next color in the rotation. When output is
not a terminal (or NO_COLOR is set), arguments are printed plain.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         runTint,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&colorFlag, "color", "", "when to color output: auto, always, or never (default from config, else auto)")
	flags.BoolVarP(&noNewline, "no-newline", "n", false, "do not print the trailing newline")
	flags.StringVar(&paletteFlag, "palette", "", "TOML file overriding the color palette")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose diagnostics")
	flags.StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitUsage))
	}
}

func runTint(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verboseFlag {
		logger.SetLevel(log.DebugLevel)
	}

	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Warn(err.Error())
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	modeText := colorFlag
	if modeText == "" {
		modeText = cfg.UI.Color
	}
	mode, err := colorwheel.ParseMode(modeText)
	if err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	var palette []lipgloss.Color
	if paletteFlag != "" {
		palette, err = loadPalette(paletteFlag)
		if err != nil {
			return &ExitError{Code: types.ExitUsage, Err: err}
		}
	}

	wheel := colorwheel.New(mode.Enabled(os.Stdout), palette...)
	logger.Debug("rendering", "args", len(args), "palette", wheel.Len(), "colored", mode.Enabled(os.Stdout))

	if err := render(os.Stdout, wheel, args, noNewline); err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	return nil
}

// render writes the painted arguments to w, separated by single spaces.
// The rotation cursor lives in the wheel, so rendering is free of any
// package-level counter state.
func render(w io.Writer, wheel *colorwheel.Wheel, args []string, skipNewline bool) error {
	for i, arg := range args {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		if _, err := io.WriteString(w, wheel.Paint(arg)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if !skipNewline {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
