// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package vfs implements the read-only VirtualFS capability the core
// components (route evaluator, controller analyzer) are given: list paths
// under a prefix, read a path's bytes. The core never writes and never
// resolves a path outside what it is handed here.
package vfs

import "errors"

// ErrNotFound is returned by Read when path does not exist.
var ErrNotFound = errors.New("vfs: not found")

// FS is the capability contract between the harness and the core. Prefixes
// and paths are always slash-separated and relative to the root the FS was
// constructed with.
type FS interface {
	// List returns every file path under prefix, in deterministic
	// (lexicographic) order.
	List(prefix string) ([]string, error)

	// Read returns a path's full contents, or ErrNotFound.
	Read(path string) ([]byte, error)
}
