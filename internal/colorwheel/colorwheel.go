// SPDX-License-Identifier: MPL-2.0

// Package colorwheel provides a rotating color palette for terminal output.
// A Wheel hands out one color per call, cycling through its palette; the
// rotation cursor is explicit per-Wheel state, never package-global, so
// independent outputs never interleave their rotations.
package colorwheel

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	// ModeAuto colors output only when the destination is a terminal and
	// NO_COLOR is unset.
	ModeAuto Mode = "auto"
	// ModeAlways colors output unconditionally.
	ModeAlways Mode = "always"
	// ModeNever disables coloring.
	ModeNever Mode = "never"
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid color mode")

// DefaultPalette is the rotation used when no palette override is given.
// The hex values match the suite's shared lipgloss theme.
var DefaultPalette = []lipgloss.Color{
	lipgloss.Color("#7C3AED"), // purple
	lipgloss.Color("#3B82F6"), // blue
	lipgloss.Color("#10B981"), // green
	lipgloss.Color("#F59E0B"), // amber
	lipgloss.Color("#EF4444"), // red
	lipgloss.Color("#6B7280"), // gray
}

type (
	// Mode selects when output gets colored.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value string
	}

	// Wheel rotates through a color palette, one color per painted string.
	// A disabled Wheel passes strings through unchanged but still advances
	// its cursor, so enabling color never changes the color assignment.
	Wheel struct {
		styles  []lipgloss.Style
		colors  []lipgloss.Color
		cursor  int
		enabled bool
	}
)

// Error implements the error interface for InvalidModeError.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid color mode %q: must be auto, always, or never", e.Value)
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

// ParseMode validates a --color flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeAlways, ModeNever:
		return Mode(s), nil
	}
	return "", &InvalidModeError{Value: s}
}

// Enabled reports whether output to f should be colored under this mode.
// ModeAuto honors the NO_COLOR convention and requires f to be a terminal.
func (m Mode) Enabled(f *os.File) bool {
	switch m {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return f != nil && term.IsTerminal(int(f.Fd()))
	}
}

// New creates a Wheel over the given palette. An empty palette falls back
// to DefaultPalette.
func New(enabled bool, palette ...lipgloss.Color) *Wheel {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	styles := make([]lipgloss.Style, len(palette))
	for i, c := range palette {
		styles[i] = lipgloss.NewStyle().Foreground(c)
	}
	return &Wheel{styles: styles, colors: palette, enabled: enabled}
}

// Len returns the palette size.
func (w *Wheel) Len() int { return len(w.colors) }

// NextColor returns the color at the cursor and advances the rotation.
func (w *Wheel) NextColor() lipgloss.Color {
	c := w.colors[w.cursor]
	w.cursor = (w.cursor + 1) % len(w.colors)
	return c
}

// Paint styles s with the color at the cursor and advances the rotation
// through NextColor, so painting and direct color draws share one cursor.
// When the Wheel is disabled, s is returned unchanged.
func (w *Wheel) Paint(s string) string {
	i := w.cursor
	w.NextColor()
	if !w.enabled {
		return s
	}
	return w.styles[i].Render(s)
}
