// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"io/fs"
	"os"

	"uqtools/internal/issue"
)

// stdStream is the positional-argument spelling for stdin/stdout.
const stdStream = "-"

// streamSet is the resolved input/output assignment for one invocation.
type streamSet struct {
	// inputs are read and concatenated in order; stdStream means stdin.
	inputs []string
	// output is the single destination; stdStream means stdout.
	output string
}

// resolveStreams maps positional arguments to inputs and output: no
// arguments reads stdin and writes stdout; one argument is a single input
// file; with two or more, all but the last are inputs and the last is the
// output destination.
func resolveStreams(args []string) streamSet {
	switch len(args) {
	case 0:
		return streamSet{inputs: []string{stdStream}, output: stdStream}
	case 1:
		return streamSet{inputs: []string{args[0]}, output: stdStream}
	default:
		return streamSet{inputs: args[:len(args)-1], output: args[len(args)-1]}
	}
}

// checkInputFile validates one declared input file before the pass begins:
// it must exist, must not be a directory, must be a regular file, and must
// be readable. Each violation is a distinct error naming the file.
func checkInputFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return issue.NewErrorContext().
			WithOperation("open input file").
			WithResource(path).
			WithSuggestion("Check that the path is spelled correctly").
			Wrap(errors.New("file does not exist")).
			BuildError()
	case err != nil:
		return issue.WrapWithContext(err, "open input file", path)
	case info.IsDir():
		return issue.NewErrorContext().
			WithOperation("open input file").
			WithResource(path).
			WithSuggestion("Pass a file, not a directory").
			Wrap(errors.New("is a directory")).
			BuildError()
	case !info.Mode().IsRegular():
		return issue.NewErrorContext().
			WithOperation("open input file").
			WithResource(path).
			WithSuggestion("Only regular files can be used as inputs").
			Wrap(errors.New("is not a regular file")).
			BuildError()
	}

	f, err := os.Open(path)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("open input file").
			WithResource(path).
			WithSuggestion("Check the file's read permissions").
			Wrap(err).
			BuildError()
	}
	f.Close()

	return nil
}
