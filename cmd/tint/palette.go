// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"uqtools/internal/issue"
)

// paletteFile is the on-disk shape of a --palette override:
//
//	colors = ["#ff8800", "#00ccff"]
type paletteFile struct {
	Colors []string `toml:"colors"`
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// loadPalette reads a TOML palette override and converts it to lipgloss
// colors. The file must declare at least one color, each a six-digit hex
// value.
func loadPalette(path string) ([]lipgloss.Color, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load palette").
			WithResource(path).
			WithSuggestion("Check that the palette file exists and is readable").
			Wrap(err).
			BuildError()
	}

	var pf paletteFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load palette").
			WithResource(path).
			WithSuggestion(`The palette file is TOML with a single key: colors = ["#ff8800", ...]`).
			Wrap(err).
			BuildError()
	}

	if len(pf.Colors) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("load palette").
			WithResource(path).
			WithSuggestion("Declare at least one color in the colors list").
			Wrap(errors.New("palette is empty")).
			BuildError()
	}

	colors := make([]lipgloss.Color, len(pf.Colors))
	for i, c := range pf.Colors {
		if !hexColorPattern.MatchString(c) {
			return nil, issue.NewErrorContext().
				WithOperation("load palette").
				WithResource(path).
				WithSuggestion("Colors must be six-digit hex values like #ff8800").
				Wrap(errors.New("invalid color " + c)).
				BuildError()
		}
		colors[i] = lipgloss.Color(c)
	}
	return colors, nil
}
