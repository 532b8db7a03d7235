// SPDX-License-Identifier: MPL-2.0

// uq is a non-adjacent line deduplication filter. It mimics uniq's output
// modes without requiring sorted input: every distinct record is tracked
// across the whole input, first-seen order is preserved, and output is
// formatted once all occurrence counts are known.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"uqtools/internal/bytesize"
	"uqtools/internal/config"
	"uqtools/internal/dedup"
	"uqtools/internal/issue"
	"uqtools/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	countFlag      bool
	repeatedFlag   bool
	uniqueFlag     bool
	ignoreCaseFlag bool
	zeroFlag       bool
	verboseFlag    bool
	allRepeated    string
	maxInputFlag   string
	cfgFile        string

	rootCmd = &cobra.Command{
		Use:   "uq [INPUT... [OUTPUT]]",
		Short: "Deduplicate lines without requiring sorted input",
		Long: `uq removes duplicate records from its input while preserving the order in
which each distinct record first appeared. Unlike uniq, duplicates do not
need to be adjacent, so the input does not need to be sorted.

With no arguments, uq reads standard input and writes standard output. With
one argument, it reads that file. With two or more, all but the last are
inputs (- means standard input) and the last is the output destination
(- means standard output).`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         runUQ,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&countFlag, "count", "c", false, "prefix each record with its occurrence count")
	flags.BoolVarP(&repeatedFlag, "repeated", "d", false, "only print records that occur more than once")
	flags.StringVarP(&allRepeated, "all-repeated", "D", "", "print every occurrence of repeated keys; optional method: none, prepend, separate")
	flags.Lookup("all-repeated").NoOptDefVal = string(dedup.MethodNone)
	flags.BoolVarP(&uniqueFlag, "unique", "u", false, "only print records that occur exactly once")
	flags.BoolVarP(&ignoreCaseFlag, "ignore-case", "i", false, "fold case when comparing records")
	flags.BoolVarP(&zeroFlag, "zero-terminated", "z", false, "records are NUL-terminated instead of newline-terminated")
	flags.StringVarP(&maxInputFlag, "max-input", "M", "", "maximum total input size, e.g. 10k, 256m, 2g (default from config, else "+bytesize.DefaultMaxInput+")")
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
		// Anything not wrapped in an ExitError came out of flag parsing.
		os.Exit(int(types.ExitUsage))
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verboseFlag {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// usageError wraps err as a usage failure. Validation and pre-flight
// problems exit 2; runtime failures after processing begins exit 1.
func usageError(err error) error {
	return &ExitError{Code: types.ExitUsage, Err: err}
}

func runUQ(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Warn(formatForDisplay(err, verboseFlag))
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	opts, err := buildOptions(cmd, cfg)
	if err != nil {
		return usageError(err)
	}
	if err := opts.Validate(); err != nil {
		return usageError(err)
	}
	if msg := opts.Advisory(); msg != "" {
		logger.Warn(msg)
	}

	streams := resolveStreams(args)
	logger.Debug("resolved streams", "inputs", streams.inputs, "output", streams.output)

	// Pre-flight: every declared input is checked before any input is read,
	// so the pass itself only ever aborts for the size ceiling.
	var preflightFailed bool
	for _, path := range streams.inputs {
		if path == stdStream {
			continue
		}
		if err := checkInputFile(path); err != nil {
			fmt.Fprintln(os.Stderr, formatForDisplay(err, verboseFlag))
			preflightFailed = true
		}
	}
	if preflightFailed {
		return &ExitError{Code: types.ExitUsage, Err: errors.New("input validation failed")}
	}

	readers := make([]io.Reader, 0, len(streams.inputs))
	closers := make([]io.Closer, 0, len(streams.inputs))
	for _, path := range streams.inputs {
		if path == stdStream {
			readers = append(readers, os.Stdin)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return usageError(issue.WrapWithContext(err, "open input file", path))
		}
		readers = append(readers, f)
		closers = append(closers, f)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	out := io.Writer(os.Stdout)
	if streams.output != stdStream {
		f, err := os.Create(streams.output)
		if err != nil {
			return &ExitError{Code: types.ExitFailure, Err: issue.WrapWithContext(err, "create output file", streams.output)}
		}
		defer f.Close()
		out = f
	}

	engine := dedup.New(opts, logger)
	if err := engine.Consume(io.MultiReader(readers...)); err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}
	if err := engine.WriteOutput(out); err != nil {
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	return nil
}

// buildOptions assembles the engine option set from flags, falling back to
// the config file for the input ceiling.
func buildOptions(cmd *cobra.Command, cfg *config.Config) (dedup.Options, error) {
	opts := dedup.DefaultOptions()
	opts.Count = countFlag
	opts.OnlyRepeated = repeatedFlag
	opts.OnlyUnique = uniqueFlag
	opts.IgnoreCase = ignoreCaseFlag
	opts.ZeroTerminated = zeroFlag

	if cmd.Flags().Changed("all-repeated") {
		method, err := dedup.ParseSeparatorMethod(allRepeated)
		if err != nil {
			return dedup.Options{}, err
		}
		opts.AllRepeated = true
		opts.Method = method
	}

	maxText := maxInputFlag
	if maxText == "" {
		maxText = cfg.UQ.MaxInput
	}
	limit, err := bytesize.Parse(maxText)
	if err != nil {
		return dedup.Options{}, issue.NewErrorContext().
			WithOperation("parse max-input size").
			WithResource(maxText).
			WithSuggestion("Use a non-negative integer, optionally followed by k, m, or g").
			Wrap(err).
			BuildError()
	}
	opts.MaxInput = limit
	opts.MaxInputText = maxText

	return opts, nil
}

// formatForDisplay renders an error for the user. ActionableErrors include
// their suggestions; verbose mode adds the full error chain.
func formatForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
