// SPDX-License-Identifier: MPL-2.0

// Package bytesize parses human-readable byte-size strings of the form
// "<non-negative integer>[k|m|g]", with 1024-based multipliers. This is the
// grammar accepted by uq's --max-input option.
package bytesize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// DefaultMaxInput is the default input-size ceiling for uq.
const DefaultMaxInput = "256m"

// ErrInvalidSize is the sentinel error wrapped by InvalidSizeError.
var ErrInvalidSize = errors.New("invalid size")

// InvalidSizeError is returned when a size string does not match the
// accepted grammar or overflows int64 after applying the multiplier.
type InvalidSizeError struct {
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid size %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidSize for errors.Is() compatibility.
func (e *InvalidSizeError) Unwrap() error { return ErrInvalidSize }

// Parse converts a size string to a byte count. The string must be a
// non-negative decimal integer, optionally followed by exactly one of the
// suffixes k (1024), m (1024²), or g (1024³). Anything else is rejected.
func Parse(s string) (int64, error) {
	if s == "" {
		return 0, &InvalidSizeError{Value: s, Reason: "empty string"}
	}

	digits := s
	var multiplier int64 = 1
	switch s[len(s)-1] {
	case 'k':
		multiplier = 1 << 10
		digits = s[:len(s)-1]
	case 'm':
		multiplier = 1 << 20
		digits = s[:len(s)-1]
	case 'g':
		multiplier = 1 << 30
		digits = s[:len(s)-1]
	}
	if digits == "" {
		return 0, &InvalidSizeError{Value: s, Reason: "missing integer before suffix"}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, &InvalidSizeError{Value: s, Reason: "must be a non-negative integer optionally followed by k, m, or g"}
	}
	if n > math.MaxInt64/multiplier {
		return 0, &InvalidSizeError{Value: s, Reason: "value overflows"}
	}

	return n * multiplier, nil
}
