// SPDX-License-Identifier: MPL-2.0

// Package config loads the uqtools configuration: built-in defaults merged
// with an optional config.cue file from the platform config directory,
// validated against an embedded CUE schema.
package config
