// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so path operations stay typed-in
// and typed-out across the suite.
package fspath

import (
	"fmt"
	"path/filepath"

	"uqtools/pkg/types"
)

// Join wraps filepath.Join, accepting and returning types.FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr joins a typed base path with raw string segments. Use this when
// joining a validated path with literal constants (e.g., "config.cue") or
// OS-provided values (e.g., environment variables, os.ReadDir names).
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]types.FilesystemPath, 1, 1+len(elem))
	parts[0] = base
	for _, e := range elem {
		parts = append(parts, types.FilesystemPath(e))
	}
	return Join(parts...)
}

// Abs wraps filepath.Abs for FilesystemPath. The result is also cleaned,
// per filepath.Abs semantics. Returns an error if the underlying OS call
// fails (the working directory cannot be determined).
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}
