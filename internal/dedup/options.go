// SPDX-License-Identifier: MPL-2.0

package dedup

import (
	"errors"
	"fmt"

	"uqtools/internal/bytesize"
)

const (
	// MethodNone emits no separators between repeated groups.
	MethodNone SeparatorMethod = "none"
	// MethodPrepend emits a blank record before every group, including the
	// first.
	MethodPrepend SeparatorMethod = "prepend"
	// MethodSeparate emits a blank record only between two different groups.
	MethodSeparate SeparatorMethod = "separate"
)

var (
	// ErrConflictingOptions is the sentinel error wrapped by option-conflict errors.
	ErrConflictingOptions = errors.New("conflicting options")

	// ErrInvalidSeparatorMethod is returned for unrecognized --all-repeated values.
	ErrInvalidSeparatorMethod = errors.New("invalid separator method")
)

type (
	// SeparatorMethod controls blank-record separation between distinct
	// repeated groups in all-repeated mode.
	SeparatorMethod string

	// Options is the resolved, validated option set for one engine pass.
	// All fields are plain values; there is no hidden state behind them.
	Options struct {
		// Count prefixes every emitted record with its occurrence count,
		// right-justified in a fixed-width field.
		Count bool

		// OnlyRepeated emits only records whose key occurs at least twice.
		OnlyRepeated bool

		// AllRepeated traverses the original sequence instead of the
		// deduplicated one, so every physical occurrence is emitted.
		AllRepeated bool

		// Method selects group separation in all-repeated mode.
		Method SeparatorMethod

		// OnlyUnique emits only records whose key occurs exactly once.
		OnlyUnique bool

		// IgnoreCase folds the comparison key to lower case. The record's
		// original casing is still what gets printed.
		IgnoreCase bool

		// ZeroTerminated switches the record delimiter from newline to NUL,
		// for both input splitting and output termination.
		ZeroTerminated bool

		// MaxInput is the input-size ceiling in bytes. Exceeding it aborts
		// the whole pass.
		MaxInput int64

		// MaxInputText is the human-readable form of MaxInput, echoed in the
		// abort message.
		MaxInputText string
	}
)

// ParseSeparatorMethod validates an --all-repeated method value.
func ParseSeparatorMethod(s string) (SeparatorMethod, error) {
	switch SeparatorMethod(s) {
	case MethodNone, MethodPrepend, MethodSeparate:
		return SeparatorMethod(s), nil
	}
	return "", fmt.Errorf("%w: %q (must be none, prepend, or separate)", ErrInvalidSeparatorMethod, s)
}

// DefaultOptions returns an Options value with the default input ceiling and
// separator method set. Callers flip the mode booleans on top of this.
func DefaultOptions() Options {
	limit, err := bytesize.Parse(bytesize.DefaultMaxInput)
	if err != nil {
		// DefaultMaxInput is a package constant; failing to parse it is a bug.
		panic(err)
	}
	return Options{
		Method:       MethodNone,
		MaxInput:     limit,
		MaxInputText: bytesize.DefaultMaxInput,
	}
}

// Validate enforces the mutual exclusions between output modes. It must be
// called before any input is read; a conflict is a usage error.
func (o Options) Validate() error {
	if o.OnlyUnique && o.OnlyRepeated {
		return fmt.Errorf("%w: --unique cannot be combined with --repeated", ErrConflictingOptions)
	}
	if o.OnlyUnique && o.AllRepeated {
		return fmt.Errorf("%w: --unique cannot be combined with --all-repeated", ErrConflictingOptions)
	}
	if _, err := ParseSeparatorMethod(string(o.Method)); err != nil {
		return err
	}
	if o.MaxInput < 0 {
		return fmt.Errorf("%w: max-input must be non-negative", ErrConflictingOptions)
	}
	return nil
}

// Advisory returns a non-empty warning when the option set is valid but
// pointless: all-repeated with no separators and neither counting nor
// repeated-filtering reduces to a plain copy of the input.
func (o Options) Advisory() string {
	if o.AllRepeated && o.Method == MethodNone && !o.Count && !o.OnlyRepeated {
		return "--all-repeated=none without --count or --repeated copies the input unchanged"
	}
	return ""
}

// delimiter returns the record terminator byte for this option set.
func (o Options) delimiter() byte {
	if o.ZeroTerminated {
		return 0x00
	}
	return '\n'
}
