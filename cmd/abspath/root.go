// SPDX-License-Identifier: MPL-2.0

// abspath resolves each of its arguments to an absolute, cleaned filesystem
// path. Resolution is delegated to the operating system's notion of the
// working directory via filepath.Abs; no symlinks are followed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"uqtools/internal/issue"
	"uqtools/pkg/fspath"
	"uqtools/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	zeroFlag    bool
	existFlag   bool
	verboseFlag bool

	rootCmd = &cobra.Command{
		Use:   "abspath [PATH...]",
		Short: "Resolve paths to absolute form",
		Long: `abspath prints the absolute, cleaned form of each path argument, one per
line. With no arguments it resolves the current directory.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         runAbspath,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&zeroFlag, "zero-terminated", "z", false, "terminate outputs with NUL instead of newline")
	flags.BoolVarP(&existFlag, "exist", "e", false, "require every path to exist")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose diagnostics")
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

func runAbspath(cmd *cobra.Command, args []string) error {
	paths := pathArgs(args)

	for _, p := range paths {
		if err := p.Validate(); err != nil {
			return &ExitError{Code: types.ExitUsage, Err: err}
		}
	}

	if existFlag {
		var failed bool
		for _, p := range paths {
			if _, err := os.Stat(p.String()); err != nil {
				ae := issue.NewErrorContext().
					WithOperation("resolve path").
					WithResource(p.String()).
					WithSuggestion("Check that the path exists, or drop --exist").
					Wrap(err).
					Build()
				fmt.Fprintln(os.Stderr, ae.Format(verboseFlag))
				failed = true
			}
		}
		if failed {
			return &ExitError{Code: types.ExitUsage, Err: errors.New("path validation failed")}
		}
	}

	if err := writeResolved(os.Stdout, paths, delimiter()); err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	return nil
}

// pathArgs maps the positional arguments to typed paths; no arguments means
// the current directory.
func pathArgs(args []string) []types.FilesystemPath {
	if len(args) == 0 {
		return []types.FilesystemPath{"."}
	}
	paths := make([]types.FilesystemPath, len(args))
	for i, a := range args {
		paths[i] = types.FilesystemPath(a)
	}
	return paths
}

func delimiter() byte {
	if zeroFlag {
		return 0x00
	}
	return '\n'
}

// writeResolved resolves each path to absolute form and writes it to w,
// terminated with delim.
func writeResolved(w io.Writer, paths []types.FilesystemPath, delim byte) error {
	for _, p := range paths {
		abs, err := fspath.Abs(p)
		if err != nil {
			return issue.WrapWithContext(err, "resolve path", p.String())
		}
		if _, err := fmt.Fprintf(w, "%s%c", abs, delim); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
